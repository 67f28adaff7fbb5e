package linux

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/openforensics/linmem/memory"
	"github.com/openforensics/linmem/object"
)

// Classification of a code pointer against the capture's known code.
type Classification int

const (
	ClassUnknown Classification = iota
	ClassKernel
	ClassModule
)

func (c Classification) String() string {
	switch c {
	case ClassKernel:
		return "kernel"
	case ClassModule:
		return "module"
	}
	return "unknown"
}

// AddrClass pairs a classification with the owning module's name when the
// address fell inside a module range.
type AddrClass struct {
	Class  Classification
	Module string
}

// ModuleRange is one loaded module's code extent, supplied by the caller
// from its module-list walk.
type ModuleRange struct {
	Name       string
	Start, End memory.VirtualAddress
}

func (s *Session) textBounds() (lo, hi memory.VirtualAddress, err error) {
	lo, ok := s.Symbol("_text")
	if !ok {
		return 0, 0, fmt.Errorf("%w: _text", ErrMissingSymbol)
	}
	hi, ok = s.Symbol("_etext")
	if !ok {
		return 0, 0, fmt.Errorf("%w: _etext", ErrMissingSymbol)
	}
	return lo, hi, nil
}

// ClassifyAddress reports whether addr points into kernel text, a named
// module's range, or nowhere known. Results are memoized in the session's
// known-address cache: rootkit scans classify the same handful of function
// pointers over and over.
func (s *Session) ClassifyAddress(addr memory.VirtualAddress, modules []ModuleRange) (AddrClass, error) {
	if c, ok := s.knownAddrs[addr]; ok {
		return c, nil
	}
	lo, hi, err := s.textBounds()
	if err != nil {
		return AddrClass{}, err
	}

	c := AddrClass{Class: ClassUnknown}
	if addr >= lo && addr < hi {
		c = AddrClass{Class: ClassKernel}
	} else {
		for _, m := range modules {
			if addr >= m.Start && addr < m.End {
				c = AddrClass{Class: ClassModule, Module: m.Name}
				break
			}
		}
	}
	s.knownAddrs[addr] = c
	return c, nil
}

// VerifyOps scans an operations table (file_operations and friends) and
// yields every non-null member whose target classifies as unknown code.
// A function pointer redirected outside kernel and module text is the
// classic hooking indicator. The sequence is lazy, finite, and
// restartable.
func (s *Session) VerifyOps(ops *object.Object, members []string, modules []ModuleRange) iter.Seq2[string, memory.VirtualAddress] {
	return func(yield func(string, memory.VirtualAddress) bool) {
		for _, member := range members {
			addr, err := ops.Pointer(member)
			if err != nil {
				slog.Warn("Unreadable operation pointer", "struct", ops.Struct, "member", member, "error", err)
				continue
			}
			if addr == 0 {
				continue
			}
			cls, err := s.ClassifyAddress(addr, modules)
			if err != nil {
				slog.Warn("Cannot classify operation pointers", "struct", ops.Struct, "error", err)
				return
			}
			if cls.Class == ClassUnknown {
				if !yield(member, addr) {
					return
				}
			}
		}
	}
}
