package faster

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
)

func TestNewOffsetTable_SymmetricAcrossOrientations(t *testing.T) {
	ot := NewOffsetTable(2.5, 3.5)
	for n := 0; n < NumOrientations; n++ {
		assert.Equal(t, ot.NumOffsets(), len(ot.Orientation(n)), "orientation %d", n)
	}
}

func TestRotateOffsets_180TwiceIsIdentity(t *testing.T) {
	ot := NewOffsetTable(2.5, 3.5)
	base := ot.Orientation(0)
	twice := rotateOffsets(rotateOffsets(base, 2, false), 2, false)
	assert.Equal(t, base, twice)
}

func TestRotateOffsets_FourQuartersIsIdentity(t *testing.T) {
	ot := NewOffsetTable(2.5, 3.5)
	base := ot.Orientation(0)
	rotated := base
	for i := 0; i < 4; i++ {
		rotated = rotateOffsets(rotated, 1, false)
	}
	assert.Equal(t, base, rotated)
}

func TestRotateOffsets_PreservesMagnitude(t *testing.T) {
	ot := NewOffsetTable(2.5, 3.5)
	for n := 0; n < NumOrientations; n++ {
		for i, p := range ot.Orientation(n) {
			base := ot.Orientation(0)[i]
			assert.Equal(t, base.X*base.X+base.Y*base.Y, p.X*p.X+p.Y*p.Y)
		}
	}
}

func grayValueAt(img image.Image, x, y int) uint8 {
	return color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
}

// TestOrientationSymmetry verifies property 4: rotating the image 90 degrees
// and remapping the offset-orientation index accordingly reproduces the same
// pixel comparisons, hence the same corner classifications. Rather than
// hardcoding disintegration/imaging's rotation chirality, the test discovers
// which orientation quarter corresponds to Rotate90 by using a uniquely
// valued pixel grid as its own coordinate map.
func TestOrientationSymmetry(t *testing.T) {
	const size = 16
	src := image.NewGray(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			src.SetGray(x, y, color.Gray{Y: uint8((y*size + x) % 256)})
		}
	}

	rotated := imaging.Rotate90(src)
	assert.Equal(t, size, rotated.Bounds().Dx())
	assert.Equal(t, size, rotated.Bounds().Dy())

	// posOf[v] locates the pixel in the rotated image carrying value v,
	// recovering the coordinate correspondence empirically.
	posOf := make([]Point, size*size)
	for y := 0; y < rotated.Bounds().Dy(); y++ {
		for x := 0; x < rotated.Bounds().Dx(); x++ {
			posOf[grayValueAt(rotated, x, y)] = Point{x, y}
		}
	}
	remap := func(p Point) Point {
		return posOf[uint8((p.Y*size+p.X)%256)]
	}

	ot := NewOffsetTable(2.5, 3.5)
	centre := Point{size / 2, size / 2}
	rCentre := remap(centre)

	// Find which quarter-turn orientation (1, 2 or 3) matches every offset
	// in the ring under the rotation Rotate90 actually performed.
	var matchQuarter = -1
	for q := 1; q <= 3; q++ {
		allMatch := true
		for i := 0; i < ot.NumOffsets() && allMatch; i++ {
			o := ot.Offset(0, i)
			src := Point{centre.X + o.X, centre.Y + o.Y}
			if src.X < 0 || src.X >= size || src.Y < 0 || src.Y >= size {
				continue
			}
			rSrc := remap(src)
			want := ot.Offset(q, i)
			got := Point{rSrc.X - rCentre.X, rSrc.Y - rCentre.Y}
			if got != want {
				allMatch = false
			}
		}
		if allMatch {
			matchQuarter = q
			break
		}
	}
	assert.NotEqual(t, -1, matchQuarter, "no orientation quarter matched Rotate90's geometry")

	// Now confirm every pixel comparison under orientation 0 on the
	// original image equals the corresponding comparison under the
	// matched orientation on the rotated image.
	gray := rgbToGray(src)
	rotGray := rgbToGray(rotated)
	threshold := 10

	for i := 0; i < ot.NumOffsets(); i++ {
		o := ot.Offset(0, i)
		src := Point{centre.X + o.X, centre.Y + o.Y}
		if src.X < 0 || src.X >= size || src.Y < 0 || src.Y >= size {
			continue
		}
		rSrc := remap(src)

		c1 := int(gray.At(centre.X, centre.Y))
		p1 := int(gray.At(src.X, src.Y))
		c2 := int(rotGray.At(rCentre.X, rCentre.Y))
		p2 := int(rotGray.At(rSrc.X, rSrc.Y))

		assert.Equal(t, Compare(c1, p1, threshold), Compare(c2, p2, threshold))
	}
}
