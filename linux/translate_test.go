package linux

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openforensics/linmem/memory"
)

func TestPagePhysical_FlatModel(t *testing.T) {
	f := newFixture()
	memMap := f.alloc(8)
	pageArray := f.alloc(64 * 16)
	f.putPtr(memMap, pageArray)
	f.sym("mem_map", memMap)
	s := f.session()

	t.Run("page_index_scales_by_struct_size", func(t *testing.T) {
		phys, err := s.PagePhysical(pageArray + 3*64)
		require.NoError(t, err)
		assert.Equal(t, memory.PhysicalAddress(3<<12), phys)
	})

	t.Run("first_page", func(t *testing.T) {
		phys, err := s.PagePhysical(pageArray)
		require.NoError(t, err)
		assert.Equal(t, memory.PhysicalAddress(0), phys)
	})

	t.Run("pointer_below_array_base", func(t *testing.T) {
		_, err := s.PagePhysical(pageArray - 64)
		assert.Error(t, err)
	})
}

func TestPagePhysical_SparseModel(t *testing.T) {
	f := newFixture()
	// Only mem_section resolves; the base is the fixed vmemmap address.
	f.sym("mem_section", f.alloc(8))
	s := f.session()

	phys, err := s.PagePhysical(vmemmapBase + 5*64)
	require.NoError(t, err)
	assert.Equal(t, memory.PhysicalAddress(5<<12), phys)
}

func TestPagePhysical_NoModelSymbol(t *testing.T) {
	f := newFixture()
	s := f.session()

	_, err := s.PagePhysical(0xffff880000000000)
	assert.True(t, errors.Is(err, ErrUnresolvableMemoryModel))
}

func TestPagePhysical_ModelResolvedOnce(t *testing.T) {
	f := newFixture()
	memMap := f.alloc(8)
	pageArray := f.alloc(64)
	f.putPtr(memMap, pageArray)
	f.sym("mem_map", memMap)
	s := f.session()

	_, err := s.PagePhysical(pageArray)
	require.NoError(t, err)

	// Removing the symbol after the first translation must not matter.
	delete(f.sch.Symbols["kernel"], "mem_map")
	phys, err := s.PagePhysical(pageArray + 64)
	require.NoError(t, err)
	assert.Equal(t, memory.PhysicalAddress(1<<12), phys)
}
