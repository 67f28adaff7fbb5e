package linux

import (
	"errors"

	"github.com/openforensics/linmem/memory"
	"github.com/openforensics/linmem/object"
)

const (
	radixTreeMapShift = 6
	radixTreeMapSize  = 1 << radixTreeMapShift
	radixTreeMapMask  = radixTreeMapSize - 1

	// A 64-bit index consumes at most ceil(64/6) levels; any stored
	// height beyond that is corruption.
	radixTreeMaxHeight = 11
)

// radixPointer is a radix tree slot value with its low-bit tag decoded.
// The tag marks a pointer to an interior radix_tree_node as opposed to a
// direct data entry. Decoding happens once per slot read; traversal logic
// never touches the raw bit.
type radixPointer struct {
	indirect bool
	addr     memory.VirtualAddress
}

func decodeRadixPointer(raw memory.VirtualAddress) radixPointer {
	return radixPointer{indirect: raw&1 != 0, addr: raw &^ 1}
}

// RadixTreeLookup descends the radix tree under root (a radix_tree_root
// view) to the slot for index. The second return is false when the index
// has no entry, including every corruption case: an unreadable node, an
// out-of-range height, a nil interior slot. Height strictly decreases each
// level, so traversal terminates on self-referential node graphs.
func (s *Session) RadixTreeLookup(root *object.Object, index uint64) (memory.VirtualAddress, bool, error) {
	raw, err := root.Pointer("rnode")
	if err != nil {
		return 0, false, softAbsent(err)
	}
	ptr := decodeRadixPointer(raw)
	if !ptr.indirect {
		// Degenerate single-entry tree: the root holds the entry itself.
		if index > 0 || ptr.addr == 0 {
			return 0, false, nil
		}
		return ptr.addr, true, nil
	}

	node, err := s.objects.ReadObject("radix_tree_node", ptr.addr)
	if err != nil {
		return 0, false, softAbsent(err)
	}
	height, err := node.Uint("height")
	if err != nil {
		return 0, false, softAbsent(err)
	}
	if height == 0 || height > radixTreeMaxHeight {
		return 0, false, nil
	}

	shift := (height - 1) * radixTreeMapShift
	for {
		idx := (index >> shift) & radixTreeMapMask
		slot, err := node.PointerIndex("slots", idx)
		if err != nil {
			return 0, false, softAbsent(err)
		}
		if slot == 0 {
			return 0, false, nil
		}
		height--
		if height == 0 {
			return slot, true, nil
		}
		shift -= radixTreeMapShift

		next := decodeRadixPointer(slot)
		node, err = s.objects.ReadObject("radix_tree_node", next.addr)
		if err != nil {
			return 0, false, softAbsent(err)
		}
	}
}

// softAbsent turns unreadable-memory failures into "not found": a torn or
// swapped-out tree node means the entry is unrecoverable, not that the
// whole analysis failed. Schema insufficiency still propagates.
func softAbsent(err error) error {
	if errors.Is(err, memory.ErrNotMapped) {
		return nil
	}
	return err
}
