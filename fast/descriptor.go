// Package fast implements the standalone FAST feature enumerator, ID3 tree
// builder and pretty printer (C9-C11): a separate, simpler decision-tree
// subsystem from the core FAST-ER bytecode tree, built over fixed-length
// ternary descriptors rather than a ring walked adaptively at each node.
package fast

import "github.com/esimov/faster"

// Descriptor is a fixed-length ternary feature vector: the result of
// comparing a centre pixel against every offset in a ring, one trit per
// offset, in ring order (C9, §4.9).
type Descriptor []faster.Trit

// String renders a descriptor using the corpus's single-character trit
// encoding, e.g. "bbdssbdd...".
func (d Descriptor) String() string {
	buf := make([]byte, len(d))
	for i, t := range d {
		buf[i] = t.String()[0]
	}
	return string(buf)
}

// ComputeDescriptor builds the descriptor for one ring of offsets around
// (x, y) in img at the given threshold.
func ComputeDescriptor(img *faster.GrayImage, offsets []faster.Point, x, y, threshold int) Descriptor {
	c := int(img.At(x, y))
	d := make(Descriptor, len(offsets))
	for i, off := range offsets {
		p := int(img.At(x+off.X, y+off.Y))
		d[i] = faster.Compare(c, p, threshold)
	}
	return d
}

// IsCorner applies the contiguous-arc classification rule (§4.9): the
// descriptor, read circularly, is a corner iff it contains a run of at
// least arcLength consecutive Brighter trits or at least arcLength
// consecutive Darker trits.
func (d Descriptor) IsCorner(arcLength int) bool {
	return d.hasArc(faster.Brighter, arcLength) || d.hasArc(faster.Darker, arcLength)
}

func (d Descriptor) hasArc(want faster.Trit, arcLength int) bool {
	n := len(d)
	if n == 0 || arcLength > n {
		return false
	}
	// A circular run can wrap past index n-1 back to 0; scanning arcLength-1
	// steps past a full revolution is enough to detect every such run
	// without overcounting an all-matching descriptor.
	run := 0
	for i := 0; i < n+arcLength-1; i++ {
		if d[i%n] == want {
			run++
			if run >= arcLength {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

// LabeledDescriptor pairs a descriptor with how many times it occurred and
// its resulting class, the output shape C9 produces and C10 consumes
// (§4.9, grounded on original_source/learn_fast_tree.cc's datapoint).
type LabeledDescriptor struct {
	Features Descriptor
	Count    uint64
	Corner   bool
}

// EnumerateAll generates every one of the 3^n ternary descriptors of
// length n and labels each via the contiguous-arc rule, each with an
// occurrence count of 1 (§4.9's "enumerate all 3^N descriptors" mode).
// Feasible only for modest n (N=16 as used by the reference FAST-9/FAST-16
// setup yields 3^16 descriptors); callers enumerating larger rings should
// use SampleCorpus instead.
func EnumerateAll(n, arcLength int) []LabeledDescriptor {
	total := 1
	for i := 0; i < n; i++ {
		total *= 3
	}
	out := make([]LabeledDescriptor, total)
	d := make(Descriptor, n)
	for i := 0; i < total; i++ {
		v := i
		for k := 0; k < n; k++ {
			d[k] = faster.Trit(v % 3)
			v /= 3
		}
		cp := make(Descriptor, n)
		copy(cp, d)
		out[i] = LabeledDescriptor{Features: cp, Count: 1, Corner: cp.IsCorner(arcLength)}
	}
	return out
}

// SampleCorpus computes the descriptor of every pixel far enough from the
// border for the offsets to stay in bounds, across every image in imgs,
// and aggregates identical descriptors into a single count (§4.9's
// "compute the descriptor of every suitable pixel in a corpus" mode).
func SampleCorpus(imgs []*faster.GrayImage, offsets []faster.Point, threshold, arcLength int) []LabeledDescriptor {
	var minX, minY, maxX, maxY int
	for _, o := range offsets {
		if o.X < minX {
			minX = o.X
		}
		if o.X > maxX {
			maxX = o.X
		}
		if o.Y < minY {
			minY = o.Y
		}
		if o.Y > maxY {
			maxY = o.Y
		}
	}

	counts := map[string]*LabeledDescriptor{}
	for _, img := range imgs {
		xlo, xhi := -minX, img.Width-1-maxX
		ylo, yhi := -minY, img.Height-1-maxY
		for y := ylo; y <= yhi; y++ {
			for x := xlo; x <= xhi; x++ {
				d := ComputeDescriptor(img, offsets, x, y, threshold)
				key := d.String()
				if e, ok := counts[key]; ok {
					e.Count++
				} else {
					counts[key] = &LabeledDescriptor{Features: d, Count: 1, Corner: d.IsCorner(arcLength)}
				}
			}
		}
	}

	out := make([]LabeledDescriptor, 0, len(counts))
	for _, e := range counts {
		out = append(out, *e)
	}
	return out
}
