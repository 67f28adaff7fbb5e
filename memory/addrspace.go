// Package memory defines the address types and raw read contract the
// interpretation engine works against. A capture is read-only; all
// translation between the two address kinds is explicit and fallible.
package memory

import "errors"

// VirtualAddress is an address in the captured kernel's virtual address
// space. PhysicalAddress is an offset into the physical capture. The two
// are deliberately distinct types: converting one into the other is always
// an explicit operation that can fail.
type VirtualAddress uint64

type PhysicalAddress uint64

var (
	// ErrNotMapped reports a virtual address with no backing in the capture.
	ErrNotMapped = errors.New("address not mapped in capture")
	// ErrOutOfRange reports a physical read past the end of the capture.
	ErrOutOfRange = errors.New("physical offset out of capture range")
)

// AddressSpace is the raw byte source for one capture. Implementations are
// expected to tolerate arbitrary addresses and report failures through
// ErrNotMapped/ErrOutOfRange rather than panicking; the data under analysis
// is possibly corrupt and often hostile.
//
// An AddressSpace is owned by a single session and is not safe for
// concurrent mutation. Independent sessions over independent captures may
// run in parallel.
type AddressSpace interface {
	// ReadVirtual fills buf with bytes starting at addr in the captured
	// kernel's virtual address space.
	ReadVirtual(addr VirtualAddress, buf []byte) error
	// ReadPhysical fills buf with bytes starting at off in the raw capture.
	ReadPhysical(off PhysicalAddress, buf []byte) error
}
