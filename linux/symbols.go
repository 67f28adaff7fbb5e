package linux

import (
	"github.com/openforensics/linmem/memory"
	"github.com/openforensics/linmem/schema"
)

// Symbol resolves a core kernel symbol.
func (s *Session) Symbol(name string) (memory.VirtualAddress, bool) {
	return s.schema.Symbol(name, schema.KernelModule)
}

// ModuleSymbol resolves a symbol within a named module.
func (s *Session) ModuleSymbol(name, module string) (memory.VirtualAddress, bool) {
	return s.schema.Symbol(name, module)
}

// PerCPUSymbol resolves name, falling back to the "per_cpu__" spelling.
// Kernels around 2.6.3x renamed per-CPU variables, so both forms must be
// tried, exact name first.
func (s *Session) PerCPUSymbol(name string) (memory.VirtualAddress, bool) {
	if addr, ok := s.Symbol(name); ok {
		return addr, true
	}
	return s.Symbol("per_cpu__" + name)
}
