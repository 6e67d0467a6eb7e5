package faster

import "image"

// GrayImage is an 8-bit grayscale image stored as a flat row-major byte
// buffer, the same shape the teacher's sobel.go walks with getImageData:
// a 1D array addressed by integer row-major deltas rather than a 2D
// image.Image. The bytecode compiler's offset_pixels delta (§4.4) is
// defined in exactly these terms, so every pixel access in the detector
// core goes through this type instead of image.Image.At.
type GrayImage struct {
	Width, Height int
	Pix           []uint8
}

// NewGrayImage allocates a zeroed width x height grayscale buffer.
func NewGrayImage(width, height int) *GrayImage {
	return &GrayImage{Width: width, Height: height, Pix: make([]uint8, width*height)}
}

// At returns the pixel value at (x, y). Callers on a hot path that have
// already bounds-checked should index Pix directly via Index.
func (g *GrayImage) At(x, y int) uint8 {
	return g.Pix[y*g.Width+x]
}

// Set writes the pixel value at (x, y).
func (g *GrayImage) Set(x, y int, v uint8) {
	g.Pix[y*g.Width+x] = v
}

// InBounds reports whether (x, y) addresses a real pixel.
func (g *GrayImage) InBounds(x, y int) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// Index returns the flat row-major offset of (x, y), the base for every
// offset_pixels delta the bytecode compiler emits.
func (g *GrayImage) Index(x, y int) int {
	return y*g.Width + x
}

// Delta returns the row-major memory delta of a pixel offset (dx, dy) for
// this image's width -- the exact "offset_pixels" quantity §4.4 names.
func (g *GrayImage) Delta(dx, dy int) int {
	return dy*g.Width + dx
}

// rgbToGray converts a decoded color image to a GrayImage using the
// luminance weights the teacher's Grayscale used (0.299/0.587/0.114),
// needed for VGG .ppm (color) frames; Cambridge .pgm frames are already
// single-channel and decode straight into a GrayImage.
func rgbToGray(img image.Image) *GrayImage {
	b := img.Bounds()
	out := NewGrayImage(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			lum := float32(r)*0.299 + float32(g)*0.587 + float32(bl)*0.114
			out.Set(x, y, uint8(lum/256))
		}
	}
	return out
}
