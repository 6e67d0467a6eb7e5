package faster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompare(t *testing.T) {
	cases := []struct {
		c, p, threshold int
		want            Trit
	}{
		{100, 140, 30, Brighter},
		{100, 60, 30, Darker},
		{100, 110, 30, Similar},
		{100, 130, 30, Similar}, // exactly at the boundary: not strictly >
		{100, 70, 30, Similar},  // exactly at the boundary: not strictly <
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Compare(c.c, c.p, c.threshold))
	}
}

func TestTritFromByte(t *testing.T) {
	for b, want := range map[byte]Trit{'b': Brighter, 'B': Brighter, 'd': Darker, 'D': Darker, 's': Similar, 'S': Similar} {
		got, ok := TritFromByte(b)
		assert.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := TritFromByte('x')
	assert.False(t, ok)
}

func TestTritString(t *testing.T) {
	assert.Equal(t, "b", Brighter.String())
	assert.Equal(t, "d", Darker.String())
	assert.Equal(t, "s", Similar.String())
}
