package faster

import (
	"bytes"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestWarpPNG_SentinelRoundTrip verifies property 5's sentinel case: the
// sentinel (-1,-1) survives an encode/decode round trip exactly.
func TestWarpPNG_SentinelRoundTrip(t *testing.T) {
	r, g, _ := EncodeWarpPixel(InvalidWarp)
	got := DecodeWarpPixel(r, g)
	assert.Equal(t, InvalidWarp, got)
}

// TestWarpPNG_IntegralRoundTrip verifies property 5's general case: any
// (x, y) in [-10, 1013] whose (·+10)*64 is already integral round-trips
// exactly through the 16-bit PNG encoding.
func TestWarpPNG_IntegralRoundTrip(t *testing.T) {
	samples := []WarpPoint{
		{0, 0}, {-10, -10}, {1013, 1013}, {100.25, 200.5}, {-9.984375, 500},
	}
	for _, w := range samples {
		r, g, _ := EncodeWarpPixel(w)
		got := DecodeWarpPixel(r, g)
		assert.Equal(t, w.X, got.X)
		assert.Equal(t, w.Y, got.Y)
	}
}

// TestWarpPNG_FieldRoundTrip is scenario S4: encode the warp field
// (x, y) -> (x+0.5, y+0.25) for a 4x4 image, decode, and check every entry
// is within 1/MULT of the original.
func TestWarpPNG_FieldRoundTrip(t *testing.T) {
	const w, h = 4, 4
	field := newGrid[WarpPoint](w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			field.Set(x, y, WarpPoint{float64(x) + 0.5, float64(y) + 0.25})
		}
	}

	var buf bytes.Buffer
	assert.NoError(t, SaveWarpPNG(&buf, field))

	img, err := png.Decode(&buf)
	assert.NoError(t, err)
	rgba, ok := img.(*image.RGBA64)
	assert.True(t, ok, "SaveWarpPNG must encode a 16-bit RGBA image")
	assert.Equal(t, w, rgba.Bounds().Dx())
	assert.Equal(t, h, rgba.Bounds().Dy())

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := rgba.RGBA64At(x, y)
			got := DecodeWarpPixel(c.R, c.G)
			want := field.At(x, y)
			assert.InDelta(t, want.X, got.X, 1.0/warpMult)
			assert.InDelta(t, want.Y, got.Y, 1.0/warpMult)
		}
	}
}

func TestHomography_InvertAndProject(t *testing.T) {
	h := Identity3()
	inv, err := h.Invert()
	assert.NoError(t, err)
	assert.Equal(t, h, inv)

	x, y := h.Project(3, 4)
	assert.Equal(t, 3.0, x)
	assert.Equal(t, 4.0, y)
}

func TestHomography_Singular(t *testing.T) {
	var zero Homography
	_, err := zero.Invert()
	assert.Error(t, err)
}

func TestSynthesizeVGGWarp_IdentityComposition(t *testing.T) {
	h1 := Identity3()
	// A pure translation by (1,1): standard 3x3 form.
	h2 := Homography{1, 0, 1, 0, 1, 1, 0, 0, 1}

	warp, err := SynthesizeVGGWarp(h1, h2, 8, 8)
	assert.NoError(t, err)
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			w := warp.At(x, y)
			assert.False(t, w.IsSentinel())
			assert.InDelta(t, float64(x+1), w.X, 1e-9)
			assert.InDelta(t, float64(y+1), w.Y, 1e-9)
		}
	}
	// Last row/column translate out of bounds and must be the sentinel.
	assert.True(t, warp.At(7, 7).IsSentinel())
}

func TestWarpPoint_OutOfBounds(t *testing.T) {
	assert.True(t, WarpPoint{-1, -1}.OutOfBounds(10, 10))
	assert.True(t, WarpPoint{10, 5}.OutOfBounds(10, 10))
	assert.False(t, WarpPoint{9, 9}.OutOfBounds(10, 10))
}

func TestLoadWarpText_MissingFile(t *testing.T) {
	_, err := LoadWarpText("/nonexistent/path/warp.warp", 4, 4)
	assert.Error(t, err)
}

