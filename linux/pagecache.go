package linux

import (
	"errors"
	"fmt"

	"github.com/openforensics/linmem/memory"
	"github.com/openforensics/linmem/object"
)

// PageDataSize is the data payload of one page frame.
const PageDataSize = 4096

// ReadPage fetches page index of inode's cached data. A page missing from
// the cache (sparse file, evicted page, torn mapping) comes back
// zero-filled; that is the normal case for cached-out content, not an
// error. Translation failures and reads past the capture propagate.
func (s *Session) ReadPage(inode *object.Object, index uint64) ([]byte, error) {
	mapping, err := inode.Deref("i_mapping", "address_space")
	if err != nil {
		if errors.Is(err, memory.ErrNotMapped) {
			return make([]byte, PageDataSize), nil
		}
		return nil, err
	}
	tree, err := mapping.Embedded("page_tree", "radix_tree_root")
	if err != nil {
		return nil, err
	}
	page, ok, err := s.RadixTreeLookup(tree, index)
	if err != nil {
		return nil, err
	}
	if !ok {
		return make([]byte, PageDataSize), nil
	}

	phys, err := s.PagePhysical(page)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, PageDataSize)
	if err := s.mem.ReadPhysical(phys, buf); err != nil {
		return nil, fmt.Errorf("reading page %d of inode 0x%x: %w", index, inode.Addr, err)
	}
	return buf, nil
}

// ReadFile reassembles inode's data from the page cache. The result is
// exactly i_size bytes long regardless of which pages are resident:
// missing pages contribute zeros, never a gap or a shift.
func (s *Session) ReadFile(inode *object.Object) ([]byte, error) {
	size, err := inode.Uint("i_size")
	if err != nil {
		return nil, err
	}
	if size > s.MaxFileSize {
		return nil, fmt.Errorf("inode 0x%x declares implausible i_size %d", inode.Addr, size)
	}
	pages := (size + PageDataSize - 1) / PageDataSize

	data := make([]byte, 0, pages*PageDataSize)
	for idx := uint64(0); idx < pages; idx++ {
		page, err := s.ReadPage(inode, idx)
		if err != nil {
			return nil, err
		}
		data = append(data, page...)
	}
	return data[:size], nil
}
