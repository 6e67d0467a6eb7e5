package faster

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// LoadImage decodes a dataset frame to a GrayImage, dispatching on file
// extension the way the teacher's decodeImg dispatches on content type:
// ".pgm" (Cambridge, already single-channel) and ".ppm" (VGG, RGB --
// converted with the teacher's luminance weights). Neither format has a
// decoder in the standard library or anywhere in the example corpus, so
// this is a direct, minimal implementation of the netpbm binary forms.
func LoadImage(path string) (*GrayImage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DatasetError{Path: path, Msg: err.Error()}
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pgm":
		return decodePGM(f, path)
	case ".ppm":
		img, err := decodePPM(f, path)
		if err != nil {
			return nil, err
		}
		return rgbToGray(img), nil
	default:
		return nil, &DatasetError{Path: path, Msg: "unsupported image format"}
	}
}

// netpbmHeader reads the common "P<n>\n[#comment\n]*<w> <h>\n<maxval>\n"
// preamble shared by PGM and PPM binary (P5/P6) files.
func netpbmHeader(r *bufio.Reader, path string, want byte) (width, height, maxval int, err error) {
	magic, err := readToken(r)
	if err != nil {
		return 0, 0, 0, &ParseError{Source: path, Msg: "missing magic number"}
	}
	if len(magic) != 2 || magic[0] != 'P' || magic[1] != want {
		return 0, 0, 0, &ParseError{Source: path, Msg: fmt.Sprintf("expected P%c magic, got %q", want, magic)}
	}

	fields := make([]int, 0, 3)
	for len(fields) < 3 {
		tok, err := readToken(r)
		if err != nil {
			return 0, 0, 0, &ParseError{Source: path, Msg: "truncated netpbm header"}
		}
		v, err := strconv.Atoi(tok)
		if err != nil {
			return 0, 0, 0, &ParseError{Source: path, Msg: "malformed netpbm header field"}
		}
		fields = append(fields, v)
	}
	return fields[0], fields[1], fields[2], nil
}

// readToken reads one whitespace-delimited token, skipping '#' comments
// that run to end of line, as the netpbm format requires.
func readToken(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		c, err := r.ReadByte()
		if err != nil {
			if b.Len() > 0 {
				return b.String(), nil
			}
			return "", err
		}
		if c == '#' {
			for {
				c, err := r.ReadByte()
				if err != nil || c == '\n' {
					break
				}
			}
			continue
		}
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' {
			if b.Len() > 0 {
				return b.String(), nil
			}
			continue
		}
		b.WriteByte(c)
	}
}

func decodePGM(f *os.File, path string) (*GrayImage, error) {
	r := bufio.NewReader(f)
	w, h, maxval, err := netpbmHeader(r, path, '5')
	if err != nil {
		return nil, err
	}
	img := NewGrayImage(w, h)
	if err := readRaster(r, img.Pix, path, maxval, 1); err != nil {
		return nil, err
	}
	return img, nil
}

func decodePPM(f *os.File, path string) (image.Image, error) {
	r := bufio.NewReader(f)
	w, h, maxval, err := netpbmHeader(r, path, '6')
	if err != nil {
		return nil, err
	}
	raw := make([]uint8, w*h*3)
	if err := readRaster(r, raw, path, maxval, 3); err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < w*h; i++ {
		img.Set(i%w, i/w, color.RGBA{R: raw[i*3], G: raw[i*3+1], B: raw[i*3+2], A: 255})
	}
	return img, nil
}

// readRaster reads w*h*channels samples, scaling down from a >255 maxval
// the way a conforming netpbm reader must (16-bit samples are big-endian).
func readRaster(r *bufio.Reader, out []uint8, path string, maxval, channels int) error {
	if maxval <= 0 {
		return &ParseError{Source: path, Msg: "invalid maxval"}
	}
	if maxval < 256 {
		n, err := readFull(r, out)
		if err != nil || n != len(out) {
			return &DatasetError{Path: path, Msg: "raster ended before expected"}
		}
		if maxval != 255 {
			for i, v := range out {
				out[i] = uint8(int(v) * 255 / maxval)
			}
		}
		return nil
	}
	buf := make([]uint8, len(out)*2)
	n, err := readFull(r, buf)
	if err != nil || n != len(buf) {
		return &DatasetError{Path: path, Msg: "raster ended before expected"}
	}
	for i := range out {
		v := int(buf[2*i])<<8 | int(buf[2*i+1])
		out[i] = uint8(v * 255 / maxval)
	}
	return nil
}

func readFull(r *bufio.Reader, buf []uint8) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := r.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
