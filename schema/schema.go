// Package schema supplies the ground truth the engine interprets memory
// against: a per-capture symbol table and a struct layout table. The engine
// never hardcodes byte offsets; every field access indirects through a
// Schema.
package schema

import (
	"errors"
	"fmt"

	"github.com/openforensics/linmem/memory"
)

var (
	ErrUnknownStruct = errors.New("struct not present in layout table")
	ErrUnknownField  = errors.New("field not present in struct layout")
)

// KernelModule is the module name under which core kernel symbols live.
const KernelModule = "kernel"

// LayoutSource answers struct layout queries. Offsets and sizes are in
// bytes.
type LayoutSource interface {
	FieldOffset(structName, field string) (uint64, error)
	FieldSize(structName, field string) (uint64, error)
	TypeSize(structName string) (uint64, error)
}

// Schema is the full per-session view: symbols plus layouts plus the
// pointer width of the captured kernel. Implementations must be immutable
// once built; the engine reads them from a single goroutine per session but
// may share one Schema across sessions.
type Schema interface {
	// Symbol resolves name within module to a virtual address. The second
	// return is false when the symbol is not in the table.
	Symbol(name, module string) (memory.VirtualAddress, bool)
	LayoutSource
	// PointerSize is the captured kernel's pointer width in bytes (4 or 8).
	PointerSize() uint64
}

// FieldInfo describes one field of a struct layout.
type FieldInfo struct {
	Offset uint64
	Size   uint64
}

// StructLayout is one entry in a map-backed layout table.
type StructLayout struct {
	Size   uint64
	Fields map[string]FieldInfo
}

// Static is a fully map-backed Schema, the form produced by profile
// generators and by test fixtures.
type Static struct {
	PtrSize uint64
	// Symbols maps module name -> symbol name -> address. Core kernel
	// symbols live under KernelModule.
	Symbols map[string]map[string]memory.VirtualAddress
	Structs map[string]StructLayout
}

func (s *Static) Symbol(name, module string) (memory.VirtualAddress, bool) {
	addr, ok := s.Symbols[module][name]
	return addr, ok
}

func (s *Static) field(structName, field string) (FieldInfo, error) {
	layout, ok := s.Structs[structName]
	if !ok {
		return FieldInfo{}, fmt.Errorf("%w: %s", ErrUnknownStruct, structName)
	}
	fi, ok := layout.Fields[field]
	if !ok {
		return FieldInfo{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, structName, field)
	}
	return fi, nil
}

func (s *Static) FieldOffset(structName, field string) (uint64, error) {
	fi, err := s.field(structName, field)
	return fi.Offset, err
}

func (s *Static) FieldSize(structName, field string) (uint64, error) {
	fi, err := s.field(structName, field)
	return fi.Size, err
}

func (s *Static) TypeSize(structName string) (uint64, error) {
	layout, ok := s.Structs[structName]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownStruct, structName)
	}
	return layout.Size, nil
}

func (s *Static) PointerSize() uint64 {
	if s.PtrSize == 0 {
		return 8
	}
	return s.PtrSize
}

// Profile combines a parsed symbol table with an independent layout source
// (typically BTF for modern captures) into one Schema.
type Profile struct {
	Syms    *SymbolTable
	Layouts LayoutSource
	PtrSize uint64
}

func (p *Profile) Symbol(name, module string) (memory.VirtualAddress, bool) {
	return p.Syms.Lookup(name, module)
}

func (p *Profile) FieldOffset(structName, field string) (uint64, error) {
	return p.Layouts.FieldOffset(structName, field)
}

func (p *Profile) FieldSize(structName, field string) (uint64, error) {
	return p.Layouts.FieldSize(structName, field)
}

func (p *Profile) TypeSize(structName string) (uint64, error) {
	return p.Layouts.TypeSize(structName)
}

func (p *Profile) PointerSize() uint64 {
	if p.PtrSize == 0 {
		return 8
	}
	return p.PtrSize
}
