package faster

import "os"

// Detector is anything that can locate corners in a grayscale image at a
// given threshold, the common surface both the bytecode-compiled learned
// detector and any reference detector registered for comparison share
// (A4, §4.13).
type Detector interface {
	DetectCorners(img *GrayImage, threshold int) []Point
}

// BytecodeDetector wraps a compiled program plus the offset table and
// image width it was compiled against, implementing Detector.
type BytecodeDetector struct {
	Prog    []Instruction
	Offsets *OffsetTable
	Width   int
}

// NewBytecodeDetector compiles tree for width and wraps the result.
func NewBytecodeDetector(tree *Node, offsets *OffsetTable, width int) *BytecodeDetector {
	return &BytecodeDetector{Prog: Compile(tree, offsets, width), Offsets: offsets, Width: width}
}

// DetectCorners runs the full detect/score/suppress pipeline. If img's
// width differs from the program this detector was compiled for, the
// caller must build a new BytecodeDetector first: OffsetPixels deltas are
// baked in for one specific row stride (§4.4).
func (d *BytecodeDetector) DetectCorners(img *GrayImage, threshold int) []Point {
	return DetectAndSuppress(d.Prog, img, d.Offsets, threshold)
}

// Registry maps a detector name (as named on the command line or in a
// config file's "detector" key) to a constructor, the Go-native
// replacement for the original's get_detector factory switch.
type Registry struct {
	ctors map[string]func(*Store) (Detector, error)
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{ctors: map[string]func(*Store) (Detector, error){}}
}

// Register adds a named detector constructor.
func (r *Registry) Register(name string, ctor func(*Store) (Detector, error)) {
	r.ctors[name] = ctor
}

// Get builds the detector named by cfg's "detector" key.
func (r *Registry) Get(cfg *Store) (Detector, error) {
	name := cfg.StringOr("detector", "faster")
	ctor, ok := r.ctors[name]
	if !ok {
		return nil, &ConfigError{Key: "detector", Msg: "unknown detector \"" + name + "\""}
	}
	return ctor(cfg)
}

// DefaultRegistry returns a Registry with the bytecode-compiled FAST-ER
// detector registered under "faster": it loads a tree from the path named
// by the "tree" config key, builds an OffsetTable from the "min_radius"/
// "max_radius" keys, and compiles for "image_width".
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register("faster", func(cfg *Store) (Detector, error) {
		path := cfg.StringOr("tree", "")
		if path == "" {
			return nil, &ConfigError{Key: "tree", Msg: "not set"}
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, &ConfigError{Key: "tree", Msg: err.Error()}
		}
		defer f.Close()

		tree, err := Deserialize(f, path)
		if err != nil {
			return nil, err
		}

		minR := cfg.FloatOr("min_radius", 2.5)
		maxR := cfg.FloatOr("max_radius", 3.5)
		offsets := NewOffsetTable(minR, maxR)

		width := cfg.IntOr("image_width", 0)
		if width == 0 {
			return nil, &ConfigError{Key: "image_width", Msg: "not set"}
		}
		return NewBytecodeDetector(tree, offsets, width), nil
	})
	return r
}
