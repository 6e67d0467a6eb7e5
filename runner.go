package faster

import (
	"fmt"
	"io"

	"github.com/esimov/faster/utils"
)

// DetectRegion derives the rectangle within which every offset access of a
// compiled program stays in-bounds for a width x height image (§4.5). When
// the image is smaller than the offset table's border requires, xmax and
// ymax are clamped to xmin-1 and ymin-1, giving an empty region.
func DetectRegion(offsets *OffsetTable, width, height int) (xmin, ymin, xmax, ymax int) {
	left, top, right, bottom := offsets.Border()
	xmax = utils.Max(left-1, width-1-right)
	ymax = utils.Max(top-1, height-1-bottom)
	return left, top, xmax, ymax
}

// runAt walks the program for a single pixel (idx is its flat row-major
// index, c its value) at the given threshold, returning whether the
// terminal reached classifies it as a corner.
func runAt(prog []Instruction, pix []uint8, idx, c, threshold int) bool {
	pc := 0
	for {
		ins := prog[pc]
		if ins.IsTerminal() {
			return ins.TerminalIsCorner()
		}
		p := int(pix[idx+ins.OffsetPixels])
		switch {
		case p > c+threshold:
			pc = ins.GT
		case p < c-threshold:
			pc = ins.LT
		default:
			pc = ins.EQ
		}
	}
}

// Detect walks the flat program at every (x, y) in the rectangle
// [xmin,xmax] x [ymin,ymax], returning the positions classified as
// corners (C5, §4.5).
func Detect(prog []Instruction, img *GrayImage, threshold int, xmin, ymin, xmax, ymax int) []Point {
	var out []Point
	for y := ymin; y <= ymax; y++ {
		row := y * img.Width
		for x := xmin; x <= xmax; x++ {
			idx := row + x
			if runAt(prog, img.Pix, idx, int(img.Pix[idx]), threshold) {
				out = append(out, Point{x, y})
			}
		}
	}
	return out
}

// Score returns the largest amount by which threshold can be raised at pos
// with the program still classifying it as a corner (0 if it is not a
// corner at threshold), over all orientations and polarities; it is at
// least one less than Evaluate's single-path margin. Rather than a plain linear
// probe it exponentially searches for an upper bound and then binary
// searches it down, mirroring original_source/faster_bytecode.cc's
// doubling threshold search.
func Score(prog []Instruction, img *GrayImage, pos Point, threshold int) int {
	idx := img.Index(pos.X, pos.Y)
	c := int(img.Pix[idx])
	corner := func(extra int) bool { return runAt(prog, img.Pix, idx, c, threshold+extra) }

	if !corner(0) {
		return 0
	}

	lo, hi := 0, 1
	for corner(hi) {
		lo = hi
		hi *= 2
		if hi > 1<<16 {
			return lo
		}
	}
	for lo+1 < hi {
		mid := (lo + hi) / 2
		if corner(mid) {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

// ScoreImage runs Score at every candidate position and paints threshold
// plus that score into a same-size score grid; positions not in candidates are left 0, as
// §4.5 requires for non-maximal suppression.
func ScoreImage(prog []Instruction, img *GrayImage, threshold int, candidates []Point) grid[int] {
	sc := newGrid[int](img.Width, img.Height)
	for _, p := range candidates {
		sc.Set(p.X, p.Y, threshold+Score(prog, img, p, threshold))
	}
	return sc
}

var nmsNeighbors = [8]Point{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}

// NonMaxSuppress keeps only the positions whose score strictly exceeds all
// 8 immediate neighbors' scores in the given score grid (§4.5).
func NonMaxSuppress(sc *grid[int]) []Point {
	var out []Point
	for y := 0; y < sc.Height; y++ {
		for x := 0; x < sc.Width; x++ {
			s := sc.At(x, y)
			if s == 0 {
				continue
			}
			keep := true
			for _, d := range nmsNeighbors {
				nx, ny := x+d.X, y+d.Y
				if sc.InBounds(nx, ny) && sc.At(nx, ny) >= s {
					keep = false
					break
				}
			}
			if keep {
				out = append(out, Point{x, y})
			}
		}
	}
	return out
}

// DetectAndSuppress runs the full C5 pipeline: detect, score, non-maximal
// suppression, returning the final corner list for one image.
func DetectAndSuppress(prog []Instruction, img *GrayImage, offsets *OffsetTable, threshold int) []Point {
	xmin, ymin, xmax, ymax := DetectRegion(offsets, img.Width, img.Height)
	if xmin > xmax || ymin > ymax {
		return nil
	}
	raw := Detect(prog, img, threshold, xmin, ymin, xmax, ymax)
	sc := ScoreImage(prog, img, threshold, raw)
	return NonMaxSuppress(&sc)
}

// PrettyPrint emits the §6 bytecode pretty-print grammar: one line per
// instruction, either "Block N (x,y) G E L" for a test or "Block N
// corner"/"Block N non_corner" for a terminal.
func PrettyPrint(w io.Writer, prog []Instruction) error {
	for i, ins := range prog {
		var err error
		if ins.IsTerminal() {
			if ins.TerminalIsCorner() {
				_, err = fmt.Fprintf(w, "Block %d corner\n", i)
			} else {
				_, err = fmt.Fprintf(w, "Block %d non_corner\n", i)
			}
		} else {
			_, err = fmt.Fprintf(w, "Block %d (%d,%d) %d %d %d\n", i, ins.Dx, ins.Dy, ins.GT, ins.EQ, ins.LT)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
