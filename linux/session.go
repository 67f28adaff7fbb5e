package linux

import (
	"errors"

	"github.com/openforensics/linmem/memory"
	"github.com/openforensics/linmem/object"
	"github.com/openforensics/linmem/schema"
)

var (
	// ErrMissingSymbol reports a symbol the dependent computation cannot
	// do without. It aborts that computation only, never the session.
	ErrMissingSymbol = errors.New("required symbol not in schema")
	// ErrUnresolvableMemoryModel reports a capture where neither the flat
	// nor the sparse page-array symbol resolves, making physical
	// translation impossible.
	ErrUnresolvableMemoryModel = errors.New("unable to determine kernel memory model")
)

const (
	// DefaultMaxPathDepth bounds dentry/mount parent-chain walks. Real
	// paths are far shallower; the bound exists to terminate corrupted
	// chains that never reach a root.
	DefaultMaxPathDepth = 64
	// DefaultMaxListLen bounds linked-list walks the same way.
	DefaultMaxListLen = 4096
	// DefaultMaxFileSize bounds page-cache file reassembly. An i_size
	// beyond it came from a trashed inode, not a file the capture could
	// hold resident.
	DefaultMaxFileSize = uint64(1) << 30
)

// Session is the per-invocation context: one schema, one address space,
// one known-address cache, and the traversal bounds. It is threaded
// explicitly through every computation rather than held globally.
type Session struct {
	schema  schema.Schema
	mem     memory.AddressSpace
	objects *object.Resolver

	MaxPathDepth int
	MaxListLen   int
	MaxFileSize  uint64

	knownAddrs map[memory.VirtualAddress]AddrClass

	model    memModel
	pageBase memory.VirtualAddress
	pageSize uint64
}

func NewSession(sch schema.Schema, mem memory.AddressSpace) *Session {
	return &Session{
		schema:       sch,
		mem:          mem,
		objects:      object.NewResolver(sch, mem),
		MaxPathDepth: DefaultMaxPathDepth,
		MaxListLen:   DefaultMaxListLen,
		MaxFileSize:  DefaultMaxFileSize,
		knownAddrs:   make(map[memory.VirtualAddress]AddrClass),
	}
}

// Objects exposes the session's typed reader for callers that need views
// beyond what the engine reconstructs itself.
func (s *Session) Objects() *object.Resolver { return s.objects }
