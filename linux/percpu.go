package linux

import (
	"fmt"
	"iter"
	"log/slog"

	"github.com/openforensics/linmem/memory"
	"github.com/openforensics/linmem/object"
)

// maxCPUBits is how many CPU indices the online bitmap read covers: one
// machine word, low bits first.
const maxCPUBits = 8

// OnlineCPUs returns the processor numbers marked online in the capture,
// ascending. Later kernels expose cpu_online_bits; older ones only
// cpu_present_map.
func (s *Session) OnlineCPUs() ([]int, error) {
	addr, ok := s.Symbol("cpu_online_bits")
	if !ok {
		addr, ok = s.Symbol("cpu_present_map")
	}
	if !ok {
		return nil, fmt.Errorf("%w: cpu_online_bits / cpu_present_map", ErrMissingSymbol)
	}
	bmap, err := s.objects.ReadPointer(addr)
	if err != nil {
		return nil, fmt.Errorf("reading online CPU bitmap: %w", err)
	}
	var cpus []int
	for i := 0; i < maxCPUBits; i++ {
		if bmap&(1<<i) != 0 {
			cpus = append(cpus, i)
		}
	}
	return cpus, nil
}

// ForEachCPU yields (cpu, view) for every online CPU's instance of the
// per-CPU variable symbol, typed as structName. The per-CPU offset table
// is read up front, so the returned sequence is finite and restartable.
func (s *Session) ForEachCPU(symbol, structName string) (iter.Seq2[int, *object.Object], error) {
	cpus, err := s.OnlineCPUs()
	if err != nil {
		return nil, err
	}
	if len(cpus) == 0 {
		return func(yield func(int, *object.Object) bool) {}, nil
	}
	maxCPU := cpus[len(cpus)-1] + 1

	tableAddr, ok := s.Symbol("__per_cpu_offset")
	if !ok {
		return nil, fmt.Errorf("%w: __per_cpu_offset", ErrMissingSymbol)
	}
	varAddr, ok := s.PerCPUSymbol(symbol)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingSymbol, symbol)
	}

	ptrSize := s.objects.PointerSize()
	offsets := make([]memory.VirtualAddress, maxCPU)
	for i := range offsets {
		off, err := s.objects.ReadPointer(tableAddr + memory.VirtualAddress(uint64(i)*ptrSize))
		if err != nil {
			return nil, fmt.Errorf("reading __per_cpu_offset[%d]: %w", i, err)
		}
		offsets[i] = off
	}

	return func(yield func(int, *object.Object) bool) {
		for _, cpu := range cpus {
			obj, err := s.objects.ReadObject(structName, varAddr+offsets[cpu])
			if err != nil {
				slog.Warn("Skipping unreadable per-CPU instance", "symbol", symbol, "cpu", cpu, "error", err)
				continue
			}
			if !yield(cpu, obj) {
				return
			}
		}
	}, nil
}
