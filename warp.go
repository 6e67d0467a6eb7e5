package faster

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
)

// WarpPoint is a real-valued destination coordinate, or the sentinel
// meaning "does not map into the destination image" (§3).
type WarpPoint struct {
	X, Y float64
}

// InvalidWarp is the conventional sentinel for "not in destination".
var InvalidWarp = WarpPoint{-1, -1}

// IsSentinel reports whether w is the "does not map" marker.
func (w WarpPoint) IsSentinel() bool { return w == InvalidWarp }

// OutOfBounds reports whether w's rounded destination falls outside a
// width x height image.
func (w WarpPoint) OutOfBounds(width, height int) bool {
	x := int(math.Round(w.X))
	y := int(math.Round(w.Y))
	return x < 0 || y < 0 || x >= width || y >= height
}

// PNG warp codec constants (§6): red encodes x as round((x+SHIFT)*MULT),
// green encodes y the same way, blue is unused.
const (
	warpShift = 10.0
	warpMult  = 64.0
)

// LoadWarpText reads the plain-ASCII text warp form: one "<x> <y>" line
// per destination-image pixel in row-major order (§6).
func LoadWarpText(path string, width, height int) (grid[WarpPoint], error) {
	f, err := os.Open(path)
	if err != nil {
		return grid[WarpPoint]{}, &DatasetError{Path: path, Msg: err.Error()}
	}
	defer f.Close()

	w := newGrid[WarpPoint](width, height)
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	n := width * height
	for i := 0; i < n; i++ {
		if !sc.Scan() {
			return grid[WarpPoint]{}, &DatasetError{Path: path, Msg: fmt.Sprintf("warp file ended after %d of %d pixels", i, n)}
		}
		var x, y float64
		if _, err := fmt.Sscanf(sc.Text(), "%g %g", &x, &y); err != nil {
			return grid[WarpPoint]{}, &ParseError{Source: path, Line: i + 1, Msg: "malformed warp line"}
		}
		w.Pix[i] = WarpPoint{x, y}
	}
	return w, nil
}

// SaveWarpText writes the plain-ASCII text warp form.
func SaveWarpText(w io.Writer, warp grid[WarpPoint]) error {
	bw := bufio.NewWriter(w)
	for _, p := range warp.Pix {
		if _, err := fmt.Fprintf(bw, "%g %g\n", p.X, p.Y); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// EncodeWarpPixel maps a warp destination to the 16-bit RGB triple the PNG
// warp form stores it as. The sentinel (-1,-1) round-trips to
// (9*MULT, 9*MULT, 0), matching §6.
func EncodeWarpPixel(w WarpPoint) (r, g, b uint16) {
	r = uint16(math.Round((w.X + warpShift) * warpMult))
	g = uint16(math.Round((w.Y + warpShift) * warpMult))
	return r, g, 0
}

// DecodeWarpPixel is the inverse of EncodeWarpPixel.
func DecodeWarpPixel(r, g uint16) WarpPoint {
	return WarpPoint{
		X: float64(r)/warpMult - warpShift,
		Y: float64(g)/warpMult - warpShift,
	}
}

// LoadWarpPNG reads the 16-bit-per-channel RGB PNG warp form (§6).
func LoadWarpPNG(path string, width, height int) (grid[WarpPoint], error) {
	f, err := os.Open(path)
	if err != nil {
		return grid[WarpPoint]{}, &DatasetError{Path: path, Msg: err.Error()}
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return grid[WarpPoint]{}, &DatasetError{Path: path, Msg: wrapf(err, "decoding warp png").Error()}
	}
	b := img.Bounds()
	if b.Dx() != width || b.Dy() != height {
		return grid[WarpPoint]{}, &DatasetError{Path: path, Msg: "warp png is the wrong size"}
	}

	w := newGrid[WarpPoint](width, height)
	rgba, ok := img.(*image.RGBA64)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			var r, g uint32
			if ok {
				c := rgba.RGBA64At(b.Min.X+x, b.Min.Y+y)
				r, g = uint32(c.R), uint32(c.G)
			} else {
				c := color.RGBA64Model.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.RGBA64)
				r, g = uint32(c.R), uint32(c.G)
			}
			w.Set(x, y, DecodeWarpPixel(uint16(r), uint16(g)))
		}
	}
	return w, nil
}

// SaveWarpPNG writes the 16-bit-per-channel RGB PNG warp form.
func SaveWarpPNG(w io.Writer, warp grid[WarpPoint]) error {
	img := image.NewRGBA64(image.Rect(0, 0, warp.Width, warp.Height))
	for y := 0; y < warp.Height; y++ {
		for x := 0; x < warp.Width; x++ {
			r, g, b := EncodeWarpPixel(warp.At(x, y))
			img.SetRGBA64(x, y, color.RGBA64{R: r, G: g, B: b, A: 0xffff})
		}
	}
	return png.Encode(w, img)
}

// Homography is a row-major 3x3 projective transform.
type Homography [9]float64

// Identity3 returns the identity homography.
func Identity3() Homography {
	return Homography{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Mul multiplies two homographies, a*b.
func (a Homography) Mul(b Homography) Homography {
	var r Homography
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += a[i*3+k] * b[k*3+j]
			}
			r[i*3+j] = s
		}
	}
	return r
}

// Invert computes the inverse of a 3x3 matrix via the adjugate/determinant
// formula (small, fixed-size, so a closed-form inverse is simpler and more
// idiomatic than pulling in a general linear-algebra dependency for a
// single 3x3 solve -- no pack library offers a bare 3x3 inverse helper).
func (a Homography) Invert() (Homography, error) {
	m := a
	det := m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
	if det == 0 {
		return Homography{}, fmt.Errorf("singular homography")
	}
	invDet := 1 / det
	var r Homography
	r[0] = (m[4]*m[8] - m[5]*m[7]) * invDet
	r[1] = (m[2]*m[7] - m[1]*m[8]) * invDet
	r[2] = (m[1]*m[5] - m[2]*m[4]) * invDet
	r[3] = (m[5]*m[6] - m[3]*m[8]) * invDet
	r[4] = (m[0]*m[8] - m[2]*m[6]) * invDet
	r[5] = (m[2]*m[3] - m[0]*m[5]) * invDet
	r[6] = (m[3]*m[7] - m[4]*m[6]) * invDet
	r[7] = (m[1]*m[6] - m[0]*m[7]) * invDet
	r[8] = (m[0]*m[4] - m[1]*m[3]) * invDet
	return r, nil
}

// Project applies the homography to (x, y, 1) and returns the projected
// 2D point after the perspective divide.
func (a Homography) Project(x, y float64) (float64, float64) {
	px := a[0]*x + a[1]*y + a[2]
	py := a[3]*x + a[4]*y + a[5]
	pw := a[6]*x + a[7]*y + a[8]
	return px / pw, py / pw
}

// LoadHomography parses the VGG "H1to<i>p" whitespace-separated 3x3
// homography file form (§6).
func LoadHomography(path string) (Homography, error) {
	f, err := os.Open(path)
	if err != nil {
		return Homography{}, &DatasetError{Path: path, Msg: err.Error()}
	}
	defer f.Close()

	var h Homography
	for i := range h {
		if _, err := fmt.Fscan(f, &h[i]); err != nil {
			return Homography{}, &ParseError{Source: path, Msg: "malformed homography"}
		}
	}
	return h, nil
}

// SynthesizeVGGWarp builds the pixel-to-pixel warp from image `from` to
// image `to` given their homographies relative to image 1, per §9's
// supplemented feature: H_{from->to} = H_{1->to} . H_{1->from}^-1,
// projecting each source pixel through the resulting 3x3 matrix and
// discarding destinations that fall outside the image (original_source/
// image_warp.cc / load_data.cc's load_warps_vgg).
func SynthesizeVGGWarp(h1From, h1To Homography, width, height int) (grid[WarpPoint], error) {
	fromToOne, err := h1From.Invert()
	if err != nil {
		return grid[WarpPoint]{}, err
	}
	fromToTo := h1To.Mul(fromToOne)

	w := newGrid[WarpPoint](width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			px, py := fromToTo.Project(float64(x), float64(y))
			wp := WarpPoint{px, py}
			if wp.OutOfBounds(width, height) {
				wp = InvalidWarp
			}
			w.Set(x, y, wp)
		}
	}
	return w, nil
}
