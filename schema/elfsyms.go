package schema

import (
	"debug/elf"
	"fmt"
	"log/slog"

	"github.com/openforensics/linmem/memory"
)

// LoadELFSymbols reads the symbol table of a vmlinux image (or a module's
// .ko, with module naming the namespace to file them under) taken from the
// same build as the capture. Symbols without a value and section entries
// are skipped.
func LoadELFSymbols(path, module string) (*SymbolTable, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ELF %s: %v", path, err)
	}
	defer f.Close()

	syms, err := f.Symbols()
	if err != nil {
		return nil, fmt.Errorf("no symbol table in %s: %v", path, err)
	}

	t := NewSymbolTable()
	count := 0
	for _, sym := range syms {
		if sym.Name == "" || sym.Value == 0 {
			continue
		}
		if elf.ST_TYPE(sym.Info) == elf.STT_SECTION || elf.ST_TYPE(sym.Info) == elf.STT_FILE {
			continue
		}
		t.Add(module, sym.Name, memory.VirtualAddress(sym.Value))
		count++
	}
	slog.Info("Loaded ELF symbols", "path", path, "module", module, "symbols", count)
	return t, nil
}
