package memory

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_ReadVirtual(t *testing.T) {
	b := NewBuffer(0xffff880000000000, []byte{1, 2, 3, 4, 5, 6, 7, 8})

	t.Run("read_inside_region", func(t *testing.T) {
		buf := make([]byte, 4)
		require.NoError(t, b.ReadVirtual(0xffff880000000002, buf))
		assert.Equal(t, []byte{3, 4, 5, 6}, buf)
	})

	t.Run("read_below_base", func(t *testing.T) {
		buf := make([]byte, 1)
		err := b.ReadVirtual(0xffff87ffffffffff, buf)
		assert.True(t, errors.Is(err, ErrNotMapped))
	})

	t.Run("read_past_end", func(t *testing.T) {
		buf := make([]byte, 2)
		err := b.ReadVirtual(0xffff880000000007, buf)
		assert.True(t, errors.Is(err, ErrNotMapped))
	})

	// An address near the top of the space makes off + len(buf) wrap
	// around zero; the check must not rely on that sum.
	t.Run("read_near_top_of_space", func(t *testing.T) {
		buf := make([]byte, 8)
		err := b.ReadVirtual(0xffffffffffffffff, buf)
		assert.True(t, errors.Is(err, ErrNotMapped))
	})
}

func TestBuffer_ReadPhysical(t *testing.T) {
	b := NewBuffer(0, []byte{0xde, 0xad, 0xbe, 0xef})

	buf := make([]byte, 2)
	require.NoError(t, b.ReadPhysical(2, buf))
	assert.Equal(t, []byte{0xbe, 0xef}, buf)

	err := b.ReadPhysical(3, buf)
	assert.True(t, errors.Is(err, ErrOutOfRange))
}

// A corrupted page pointer can translate to an offset a few KiB below
// 2^64. Adding the read length to it wraps, so the bounds check has to
// subtract instead.
func TestBuffer_ReadPhysical_OffsetNearOverflow(t *testing.T) {
	b := NewBuffer(0, make([]byte, 64))

	for _, off := range []PhysicalAddress{
		0xfffffffffffff000,
		0xffffffffffffffff,
		64,
	} {
		err := b.ReadPhysical(off, make([]byte, 4096))
		assert.True(t, errors.Is(err, ErrOutOfRange), "offset 0x%x", off)
	}
}
