package faster

import "image"

// NumOrientations is the fixed count of symmetries the offset table
// replicates: 4 rotations x {identity, y-reflection}.
const NumOrientations = 8

// Point is an integer 2D offset or pixel position.
type Point struct {
	X, Y int
}

// OffsetTable supplies the 8 orientation variants of a single annulus of
// pixel offsets (C1, §4.1), grounded on original_source/offsets.cc's
// create_offsets: orientation 0 is the raw annulus, 1-3 are its 90/180/270
// degree rotations, 4-7 are the same four (0/90/180/270 degree) rotations
// composed with a y-reflection.
type OffsetTable struct {
	offsets     [NumOrientations][]Point
	numOffsets  int
	bboxMin     Point
	bboxMax     Point
}

// NewOffsetTable enumerates every integer (x, y) whose squared distance
// from the origin falls in [minRadius^2, maxRadius^2] and builds all 8
// orientation variants. Mirrors the scan box of the original: a square of
// half-width ceil(maxRadius+1) centred on the origin.
func NewOffsetTable(minRadius, maxRadius float64) *OffsetTable {
	half := int(ceil(maxRadius + 1))
	min := Point{-half, -half}
	max := Point{half, half}

	var base []Point
	minR2 := minRadius * minRadius
	maxR2 := maxRadius * maxRadius
	for y := min.Y; y <= max.Y; y++ {
		for x := min.X; x <= max.X; x++ {
			d := float64(x*x + y*y)
			if d >= minR2 && d <= maxR2 {
				base = append(base, Point{x, y})
			}
		}
	}

	t := &OffsetTable{numOffsets: len(base), bboxMin: min, bboxMax: max}
	t.offsets[0] = base
	t.offsets[1] = rotateOffsets(base, 1, false)
	t.offsets[2] = rotateOffsets(base, 2, false)
	t.offsets[3] = rotateOffsets(base, 3, false)
	t.offsets[4] = rotateOffsets(base, 0, true)
	t.offsets[5] = rotateOffsets(base, 1, true)
	t.offsets[6] = rotateOffsets(base, 2, true)
	t.offsets[7] = rotateOffsets(base, 3, true)
	return t
}

func ceil(f float64) float64 {
	i := int(f)
	if float64(i) < f {
		i++
	}
	return float64(i)
}

// rotateOffsets applies a quarter*90 degree rotation, optionally preceded
// by a y-reflection, to every offset. The rotation matrices for multiples
// of 90 degrees are exact integers, so this avoids the floating-point
// rounding the original's generic sin/cos matrix needed.
func rotateOffsets(in []Point, quarters int, reflect bool) []Point {
	out := make([]Point, len(in))
	for i, p := range in {
		x, y := p.X, p.Y
		if reflect {
			y = -y
		}
		switch quarters % 4 {
		case 0:
			// identity
		case 1:
			x, y = y, -x
		case 2:
			x, y = -x, -y
		case 3:
			x, y = -y, x
		}
		out[i] = Point{x, y}
	}
	return out
}

// NumOffsets is the number of offsets in each of the 8 orientation sets.
func (t *OffsetTable) NumOffsets() int { return t.numOffsets }

// Offset returns the (dx, dy) offset at orientation n, index i.
func (t *OffsetTable) Offset(n, i int) Point { return t.offsets[n][i] }

// Orientation returns the full offset slice for orientation n (0..7).
func (t *OffsetTable) Orientation(n int) []Point { return t.offsets[n] }

// BoundingBox returns the shared bounding box over all orientations, used
// to derive the detector's required image border.
func (t *OffsetTable) BoundingBox() image.Rectangle {
	return image.Rect(t.bboxMin.X, t.bboxMin.Y, t.bboxMax.X+1, t.bboxMax.Y+1)
}

// Border returns the number of pixels on each side that must be excluded
// from detection so every offset access stays in-bounds.
func (t *OffsetTable) Border() (left, top, right, bottom int) {
	b := t.BoundingBox()
	return -b.Min.X, -b.Min.Y, b.Max.X - 1, b.Max.Y - 1
}
