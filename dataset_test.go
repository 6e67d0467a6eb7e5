package faster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func writePGM(t *testing.T, path string, w, h int, pix []uint8) {
	t.Helper()
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	data := []byte("P5\n")
	data = append(data, []byte(itoa(w)+" "+itoa(h)+"\n255\n")...)
	data = append(data, pix...)
	assert.NoError(t, os.WriteFile(path, data, 0o644))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var b []byte
	for n > 0 {
		b = append([]byte{byte('0' + n%10)}, b...)
		n /= 10
	}
	if neg {
		b = append([]byte{'-'}, b...)
	}
	return string(b)
}

func writeWarpText(t *testing.T, path string, w, h int, f func(x, y int) (float64, float64)) {
	t.Helper()
	assert.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	var buf []byte
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			wx, wy := f(x, y)
			buf = append(buf, []byte(ftoa(wx)+" "+ftoa(wy)+"\n")...)
		}
	}
	assert.NoError(t, os.WriteFile(path, buf, 0o644))
}

func ftoa(f float64) string {
	if f == float64(int(f)) {
		return itoa(int(f))
	}
	return itoa(int(f)) + ".5"
}

func TestLoadDataset_Cambridge(t *testing.T) {
	dir := t.TempDir()
	writePGM(t, filepath.Join(dir, "frames", "frame_0.pgm"), 2, 2, []uint8{1, 2, 3, 4})
	writePGM(t, filepath.Join(dir, "frames", "frame_1.pgm"), 2, 2, []uint8{5, 6, 7, 8})
	writeWarpText(t, filepath.Join(dir, "warps", "warp_0_1.warp"), 2, 2, func(x, y int) (float64, float64) {
		return float64(x), float64(y)
	})
	writeWarpText(t, filepath.Join(dir, "warps", "warp_1_0.warp"), 2, 2, func(x, y int) (float64, float64) {
		return float64(x), float64(y)
	})

	ds, err := LoadDataset(dir, 2, "")
	assert.NoError(t, err)
	assert.Len(t, ds.Images, 2)
	assert.Equal(t, 2, ds.Width)
	assert.Equal(t, 2, ds.Height)
	assert.Equal(t, uint8(1), ds.Images[0].At(0, 0))
	assert.Equal(t, uint8(8), ds.Images[1].At(1, 1))
	assert.Equal(t, WarpPoint{0, 0}, ds.Warps[0][1].At(0, 0))
}

func TestLoadDataset_MismatchedImageSize(t *testing.T) {
	dir := t.TempDir()
	writePGM(t, filepath.Join(dir, "frames", "frame_0.pgm"), 2, 2, []uint8{1, 2, 3, 4})
	writePGM(t, filepath.Join(dir, "frames", "frame_1.pgm"), 3, 3, make([]uint8, 9))

	_, err := LoadDataset(dir, 2, "")
	assert.Error(t, err)
	var de *DatasetError
	assert.ErrorAs(t, err, &de)
}

func TestLoadDataset_ZeroCount(t *testing.T) {
	_, err := LoadDataset(t.TempDir(), 0, "")
	assert.Error(t, err)
}

func TestDataset_Prune(t *testing.T) {
	warp := newGrid[WarpPoint](2, 2)
	warp.Set(0, 0, WarpPoint{0, 0})
	warp.Set(1, 0, WarpPoint{5, 5}) // out of a 2x2 bounds
	warp.Set(0, 1, InvalidWarp)
	warp.Set(1, 1, WarpPoint{1, 1})

	ds := &Dataset{
		Images: []*GrayImage{NewGrayImage(2, 2), NewGrayImage(2, 2)},
		Warps:  [][]grid[WarpPoint]{{{}, warp}, {{}, {}}},
		Width:  2,
		Height: 2,
	}
	ds.Prune()

	assert.Equal(t, WarpPoint{0, 0}, ds.Warps[0][1].At(0, 0))
	assert.Equal(t, InvalidWarp, ds.Warps[0][1].At(1, 0))
	assert.Equal(t, InvalidWarp, ds.Warps[0][1].At(0, 1))
	assert.Equal(t, WarpPoint{1, 1}, ds.Warps[0][1].At(1, 1))
}
