//go:build linux

package memory

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/sys/unix"
)

// MmapFile is a physical AddressSpace over a raw (flat) capture file,
// mapped read-only. It has no notion of the captured kernel's page tables,
// so virtual reads always fail with ErrNotMapped; callers needing virtual
// resolution must layer a translating address space on top.
type MmapFile struct {
	path string
	data []byte
}

func OpenMmapFile(path string) (*MmapFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if st.Size() == 0 {
		return nil, fmt.Errorf("capture file is empty: %s", path)
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(st.Size()), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s: %v", path, err)
	}
	slog.Debug("Mapped raw capture", "path", path, "size", st.Size())
	return &MmapFile{path: path, data: data}, nil
}

func (m *MmapFile) Close() error {
	if m.data == nil {
		return nil
	}
	data := m.data
	m.data = nil
	return unix.Munmap(data)
}

func (m *MmapFile) Size() uint64 { return uint64(len(m.data)) }

func (m *MmapFile) ReadVirtual(addr VirtualAddress, buf []byte) error {
	return ErrNotMapped
}

func (m *MmapFile) ReadPhysical(off PhysicalAddress, buf []byte) error {
	if m.data == nil {
		return fmt.Errorf("capture %s is closed", m.path)
	}
	if uint64(off) >= uint64(len(m.data)) || uint64(len(buf)) > uint64(len(m.data))-uint64(off) {
		return ErrOutOfRange
	}
	copy(buf, m.data[off:])
	return nil
}
