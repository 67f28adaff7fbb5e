// Package object provides schema-driven, read-only views over structs in a
// captured address space. Field access never caches: every call re-reads
// the underlying bytes, which keeps views honest over inconsistent or
// deliberately modified captures. Captures are interpreted little-endian.
package object

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/openforensics/linmem/memory"
	"github.com/openforensics/linmem/schema"
)

// Resolver binds a Schema to an AddressSpace and hands out Objects.
type Resolver struct {
	schema schema.Schema
	mem    memory.AddressSpace
}

func NewResolver(sch schema.Schema, mem memory.AddressSpace) *Resolver {
	return &Resolver{schema: sch, mem: mem}
}

func (r *Resolver) PointerSize() uint64 { return r.schema.PointerSize() }

// ReadObject returns a view of structName at addr. The first byte of the
// struct is probed so an unmapped address fails here rather than on every
// later field access.
func (r *Resolver) ReadObject(structName string, addr memory.VirtualAddress) (*Object, error) {
	if _, err := r.schema.TypeSize(structName); err != nil {
		return nil, err
	}
	var probe [1]byte
	if err := r.mem.ReadVirtual(addr, probe[:]); err != nil {
		return nil, fmt.Errorf("reading %s at 0x%x: %w", structName, addr, err)
	}
	return &Object{Struct: structName, Addr: addr, r: r}, nil
}

// ReadPointer reads a pointer-sized value at addr.
func (r *Resolver) ReadPointer(addr memory.VirtualAddress) (memory.VirtualAddress, error) {
	v, err := r.readUint(addr, r.schema.PointerSize())
	return memory.VirtualAddress(v), err
}

// ReadCString reads a NUL-terminated string at addr, capped at max bytes.
func (r *Resolver) ReadCString(addr memory.VirtualAddress, max int) (string, error) {
	buf := make([]byte, max)
	if err := r.mem.ReadVirtual(addr, buf); err != nil {
		return "", err
	}
	if i := bytes.IndexByte(buf, 0); i >= 0 {
		buf = buf[:i]
	}
	return string(buf), nil
}

func (r *Resolver) readUint(addr memory.VirtualAddress, size uint64) (uint64, error) {
	buf := make([]byte, size)
	if err := r.mem.ReadVirtual(addr, buf); err != nil {
		return 0, err
	}
	switch size {
	case 1:
		return uint64(buf[0]), nil
	case 2:
		return uint64(binary.LittleEndian.Uint16(buf)), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(buf)), nil
	case 8:
		return binary.LittleEndian.Uint64(buf), nil
	}
	return 0, fmt.Errorf("unsupported integer width %d at 0x%x", size, addr)
}

// Object is a read-only view of one struct instance. It holds no field
// data; accessors go back to memory on every call.
type Object struct {
	Struct string
	Addr   memory.VirtualAddress
	r      *Resolver
}

func (o *Object) fieldAddr(field string) (memory.VirtualAddress, uint64, error) {
	off, err := o.r.schema.FieldOffset(o.Struct, field)
	if err != nil {
		return 0, 0, err
	}
	size, err := o.r.schema.FieldSize(o.Struct, field)
	if err != nil {
		return 0, 0, err
	}
	return o.Addr + memory.VirtualAddress(off), size, nil
}

// Uint reads field as an unsigned integer of its declared width.
func (o *Object) Uint(field string) (uint64, error) {
	addr, size, err := o.fieldAddr(field)
	if err != nil {
		return 0, err
	}
	return o.r.readUint(addr, size)
}

// Int reads field as a signed integer, sign-extending from its declared
// width.
func (o *Object) Int(field string) (int64, error) {
	addr, size, err := o.fieldAddr(field)
	if err != nil {
		return 0, err
	}
	v, err := o.r.readUint(addr, size)
	if err != nil {
		return 0, err
	}
	shift := 64 - size*8
	return int64(v<<shift) >> shift, nil
}

// Pointer reads field as a pointer-sized address regardless of the layout
// table's declared field size.
func (o *Object) Pointer(field string) (memory.VirtualAddress, error) {
	addr, _, err := o.fieldAddr(field)
	if err != nil {
		return 0, err
	}
	return o.r.ReadPointer(addr)
}

// PointerIndex reads element i of a pointer array field.
func (o *Object) PointerIndex(field string, i uint64) (memory.VirtualAddress, error) {
	addr, _, err := o.fieldAddr(field)
	if err != nil {
		return 0, err
	}
	return o.r.ReadPointer(addr + memory.VirtualAddress(i*o.r.schema.PointerSize()))
}

// Bytes reads n raw bytes starting at field.
func (o *Object) Bytes(field string, n int) ([]byte, error) {
	addr, _, err := o.fieldAddr(field)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if err := o.r.mem.ReadVirtual(addr, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Embedded returns a view of a struct-typed field in place (no pointer
// dereference).
func (o *Object) Embedded(field, structName string) (*Object, error) {
	addr, _, err := o.fieldAddr(field)
	if err != nil {
		return nil, err
	}
	return &Object{Struct: structName, Addr: addr, r: o.r}, nil
}

// Deref reads field as a pointer and returns a view of structName at its
// target.
func (o *Object) Deref(field, structName string) (*Object, error) {
	target, err := o.Pointer(field)
	if err != nil {
		return nil, err
	}
	return o.r.ReadObject(structName, target)
}

// ContainerOf returns the outer struct enclosing an embedded member, given
// the member's address. The classic container_of: outer address is member
// address minus the member's offset in the outer layout.
func (r *Resolver) ContainerOf(member memory.VirtualAddress, outerStruct, memberField string) (*Object, error) {
	off, err := r.schema.FieldOffset(outerStruct, memberField)
	if err != nil {
		return nil, err
	}
	return r.ReadObject(outerStruct, member-memory.VirtualAddress(off))
}
