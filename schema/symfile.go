package schema

import (
	"bufio"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/openforensics/linmem/memory"
)

// SymbolLoader yields the raw lines of a symbol listing (System.map or a
// saved kallsyms dump taken alongside the capture).
type SymbolLoader interface {
	ReadLines() ([]string, error)
}

type SymbolFileLoader struct {
	Path string
}

func NewSymbolFileLoader(path string) *SymbolFileLoader {
	return &SymbolFileLoader{Path: path}
}

func (l *SymbolFileLoader) ReadLines() ([]string, error) {
	slog.Debug("Loading symbol listing", "path", l.Path)
	f, err := os.Open(l.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	s := bufio.NewScanner(f)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// SymbolTable is a parsed symbol listing, keyed by module then name.
type SymbolTable struct {
	byModule map[string]map[string]memory.VirtualAddress
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{byModule: make(map[string]map[string]memory.VirtualAddress)}
}

func (t *SymbolTable) Add(module, name string, addr memory.VirtualAddress) {
	mod, ok := t.byModule[module]
	if !ok {
		mod = make(map[string]memory.VirtualAddress)
		t.byModule[module] = mod
	}
	mod[name] = addr
}

// Merge folds other's symbols into t, other winning on collisions. Used to
// layer module listings over the kernel table.
func (t *SymbolTable) Merge(other *SymbolTable) {
	for module, syms := range other.byModule {
		for name, addr := range syms {
			t.Add(module, name, addr)
		}
	}
}

// ParseSymbolTable parses "addr type name [module]" lines. Malformed lines
// are skipped rather than failing the whole table: listings taken from a
// compromised or dying machine are routinely truncated mid-line.
func ParseSymbolTable(loader SymbolLoader) (*SymbolTable, error) {
	lines, err := loader.ReadLines()
	if err != nil {
		return nil, err
	}
	t := NewSymbolTable()
	count := 0
	for _, line := range lines {
		parts := strings.Fields(line)
		if len(parts) < 3 {
			continue
		}
		addr, err := strconv.ParseUint(parts[0], 16, 64)
		if err != nil {
			continue
		}
		name := parts[2]
		module := KernelModule
		if len(parts) >= 4 && strings.HasPrefix(parts[3], "[") && strings.HasSuffix(parts[3], "]") {
			module = strings.Trim(parts[3], "[]")
		}
		t.Add(module, name, memory.VirtualAddress(addr))
		count++
	}
	slog.Info("Loaded symbol table", "symbols", count, "modules", len(t.byModule))
	return t, nil
}

func (t *SymbolTable) Lookup(name, module string) (memory.VirtualAddress, bool) {
	addr, ok := t.byModule[module][name]
	return addr, ok
}
