package linux

import (
	"fmt"

	"github.com/openforensics/linmem/memory"
)

type memModel int

const (
	modelUnset memModel = iota
	modelFlat
	modelSparse
)

// vmemmapBase is where SPARSEMEM_VMEMMAP kernels place the virtual page
// array. Hardcoded in the kernel; truncated to its 48-bit form.
const vmemmapBase = memory.VirtualAddress(0xea0000000000)

const pageShift = 12

func (s *Session) resolveMemoryModel() error {
	pageSize, err := s.schema.TypeSize("page")
	if err != nil {
		return fmt.Errorf("page layout unavailable: %v", err)
	}
	if pageSize == 0 {
		return fmt.Errorf("page layout has zero size")
	}

	if addr, ok := s.Symbol("mem_map"); ok {
		// FLATMEM kernels, usually 32 bit: the base is stored behind the
		// mem_map symbol.
		base, err := s.objects.ReadPointer(addr)
		if err != nil {
			return fmt.Errorf("reading mem_map base: %w", err)
		}
		s.model, s.pageBase, s.pageSize = modelFlat, base, pageSize
		return nil
	}
	if _, ok := s.Symbol("mem_section"); ok {
		// Sparse kernels, usually 64 bit: the page array lives at the
		// fixed vmemmap address.
		s.model, s.pageBase, s.pageSize = modelSparse, vmemmapBase, pageSize
		return nil
	}
	return fmt.Errorf("%w: neither mem_map nor mem_section resolves", ErrUnresolvableMemoryModel)
}

// PagePhysical translates a struct page pointer into the physical offset
// of the 4 KiB page frame it describes.
func (s *Session) PagePhysical(page memory.VirtualAddress) (memory.PhysicalAddress, error) {
	if s.model == modelUnset {
		if err := s.resolveMemoryModel(); err != nil {
			return 0, err
		}
	}
	if page < s.pageBase {
		return 0, fmt.Errorf("page pointer 0x%x below page array base 0x%x", page, s.pageBase)
	}
	idx := uint64(page-s.pageBase) / s.pageSize
	return memory.PhysicalAddress(idx << pageShift), nil
}
