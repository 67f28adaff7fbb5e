package schema

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openforensics/linmem/memory"
)

func testStatic() *Static {
	return &Static{
		PtrSize: 8,
		Symbols: map[string]map[string]memory.VirtualAddress{
			KernelModule: {"_text": 0xffffffff81000000},
			"ext4":       {"ext4_file_read": 0xffffffffa0100000},
		},
		Structs: map[string]StructLayout{
			"dentry": {
				Size: 0xc0,
				Fields: map[string]FieldInfo{
					"d_parent": {Offset: 0x18, Size: 8},
					"d_name":   {Offset: 0x20, Size: 16},
				},
			},
		},
	}
}

func TestStatic_Symbol(t *testing.T) {
	s := testStatic()

	addr, ok := s.Symbol("_text", KernelModule)
	require.True(t, ok)
	assert.Equal(t, memory.VirtualAddress(0xffffffff81000000), addr)

	addr, ok = s.Symbol("ext4_file_read", "ext4")
	require.True(t, ok)
	assert.Equal(t, memory.VirtualAddress(0xffffffffa0100000), addr)

	_, ok = s.Symbol("no_such_symbol", KernelModule)
	assert.False(t, ok)
}

func TestStatic_Layouts(t *testing.T) {
	s := testStatic()

	off, err := s.FieldOffset("dentry", "d_parent")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x18), off)

	sz, err := s.FieldSize("dentry", "d_name")
	require.NoError(t, err)
	assert.Equal(t, uint64(16), sz)

	total, err := s.TypeSize("dentry")
	require.NoError(t, err)
	assert.Equal(t, uint64(0xc0), total)

	_, err = s.FieldOffset("dentry", "d_subdirs")
	assert.True(t, errors.Is(err, ErrUnknownField))

	_, err = s.TypeSize("task_struct")
	assert.True(t, errors.Is(err, ErrUnknownStruct))
}

func TestProfile_ComposesSymbolsAndLayouts(t *testing.T) {
	tab, err := ParseSymbolTable(&mockLoader{lines: []string{
		"ffffffff81000000 T _text",
	}})
	require.NoError(t, err)

	p := &Profile{Syms: tab, Layouts: testStatic(), PtrSize: 8}

	addr, ok := p.Symbol("_text", KernelModule)
	require.True(t, ok)
	assert.Equal(t, memory.VirtualAddress(0xffffffff81000000), addr)

	off, err := p.FieldOffset("dentry", "d_parent")
	require.NoError(t, err)
	assert.Equal(t, uint64(0x18), off)
	assert.Equal(t, uint64(8), p.PointerSize())
}
