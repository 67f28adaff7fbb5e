package memory

// Buffer is an in-memory AddressSpace backed by a contiguous byte slice.
// Virtual reads resolve at Base + displacement, physical reads at the raw
// slice offset. It backs small fixture captures in tests and is useful for
// interpreting already-extracted regions.
type Buffer struct {
	Base VirtualAddress
	Data []byte
}

func NewBuffer(base VirtualAddress, data []byte) *Buffer {
	return &Buffer{Base: base, Data: data}
}

func (b *Buffer) ReadVirtual(addr VirtualAddress, buf []byte) error {
	if addr < b.Base {
		return ErrNotMapped
	}
	off := uint64(addr - b.Base)
	if off >= uint64(len(b.Data)) || uint64(len(buf)) > uint64(len(b.Data))-off {
		return ErrNotMapped
	}
	copy(buf, b.Data[off:])
	return nil
}

func (b *Buffer) ReadPhysical(off PhysicalAddress, buf []byte) error {
	if uint64(off) >= uint64(len(b.Data)) || uint64(len(buf)) > uint64(len(b.Data))-uint64(off) {
		return ErrOutOfRange
	}
	copy(buf, b.Data[off:])
	return nil
}
