package fast

import (
	"testing"

	"github.com/esimov/faster"
	"github.com/stretchr/testify/assert"
)

func ring(n int, pattern []faster.Trit) Descriptor {
	d := make(Descriptor, n)
	copy(d, pattern)
	return d
}

// TestDescriptor_ContiguousArc verifies property 8: N=16, M=9 -- a run of
// 9 consecutive Brighter trits is a corner, exactly 8 is not.
func TestDescriptor_ContiguousArc(t *testing.T) {
	const n, arc = 16, 9

	nine := make(Descriptor, n)
	for i := range nine {
		nine[i] = faster.Similar
	}
	for i := 0; i < 9; i++ {
		nine[i] = faster.Brighter
	}
	assert.True(t, nine.IsCorner(arc))

	eight := make(Descriptor, n)
	for i := range eight {
		eight[i] = faster.Similar
	}
	for i := 0; i < 8; i++ {
		eight[i] = faster.Brighter
	}
	assert.False(t, eight.IsCorner(arc))
}

// TestDescriptor_ContiguousArc_WrapsCircularly checks a run that wraps
// past the end of the descriptor back to index 0 still counts.
func TestDescriptor_ContiguousArc_WrapsCircularly(t *testing.T) {
	const n, arc = 16, 9
	d := make(Descriptor, n)
	for i := range d {
		d[i] = faster.Similar
	}
	// Run of 9 Darker trits split across the wrap: indices 12..15 and 0..4.
	for _, i := range []int{12, 13, 14, 15, 0, 1, 2, 3, 4} {
		d[i] = faster.Darker
	}
	assert.True(t, d.IsCorner(arc))
}

// TestDescriptor_RotationPreservesLabel verifies property 8's rotation
// invariance: cyclically shifting a descriptor never changes whether the
// contiguous-arc rule calls it a corner.
func TestDescriptor_RotationPreservesLabel(t *testing.T) {
	const n, arc = 16, 9
	base := make(Descriptor, n)
	for i := range base {
		base[i] = faster.Similar
	}
	for i := 0; i < 10; i++ {
		base[i] = faster.Brighter
	}
	want := base.IsCorner(arc)

	for shift := 1; shift < n; shift++ {
		rotated := make(Descriptor, n)
		for i := range base {
			rotated[(i+shift)%n] = base[i]
		}
		assert.Equal(t, want, rotated.IsCorner(arc), "shift %d", shift)
	}
}

func TestDescriptor_NoArcOnAllSimilar(t *testing.T) {
	d := make(Descriptor, 16)
	for i := range d {
		d[i] = faster.Similar
	}
	assert.False(t, d.IsCorner(9))
}

func TestDescriptor_String(t *testing.T) {
	d := Descriptor{faster.Brighter, faster.Similar, faster.Darker}
	assert.Equal(t, "bsd", d.String())
}

func TestEnumerateAll_Count(t *testing.T) {
	const n = 4
	out := EnumerateAll(n, 3)
	assert.Len(t, out, 81) // 3^4
	total := uint64(0)
	for _, e := range out {
		total += e.Count
		assert.Len(t, e.Features, n)
	}
	assert.Equal(t, uint64(81), total)
}

func TestComputeDescriptor(t *testing.T) {
	img := faster.NewGrayImage(5, 5)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			img.Set(x, y, uint8(10*y+x))
		}
	}
	// Centre (2,2) = 22. (3,2)=23 brighter, (1,2)=21 darker, (2,3)=32
	// brighter, (2,1)=12 darker, all by more than threshold 0.
	offsets := []faster.Point{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	d := ComputeDescriptor(img, offsets, 2, 2, 0)
	assert.Equal(t, Descriptor{faster.Brighter, faster.Darker, faster.Brighter, faster.Darker}, d)
}
