package set

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitmap(t *testing.T) {
	var s Bitmap

	s.Set(3)
	s.Set(64)
	s.Set(130)

	assert.True(t, s.IsSet(3))
	assert.True(t, s.IsSet(64))
	assert.False(t, s.IsSet(4))
	assert.False(t, s.IsSet(-1))
	assert.False(t, s.IsSet(1000))
	assert.Equal(t, 3, s.Size())

	var got []int

	s.Range(func(i int) bool {
		got = append(got, i)
		return true
	})

	assert.Equal(t, []int{3, 64, 130}, got)

	s.Clear(64)
	s.Clear(1000)

	assert.False(t, s.IsSet(64))
	assert.Equal(t, 2, s.Size())
}

func TestMakeBitmap(t *testing.T) {
	s := MakeBitmap(200)

	s.Set(199)

	assert.True(t, s.IsSet(199))
	assert.Equal(t, 1, s.Size())
}
