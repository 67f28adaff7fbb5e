package linux

import (
	"iter"
	"log/slog"

	"github.com/openforensics/linmem/memory"
	"github.com/openforensics/linmem/object"
)

// WalkList follows a struct-internal forward pointer chain: each entry is
// a structName instance whose member field points at the next entry head.
// The walk stops at a null pointer, an unreadable entry, or MaxListLen
// entries, whichever comes first; the cap is what terminates a chain that
// has been looped back on itself.
func (s *Session) WalkList(structName, member string, head memory.VirtualAddress) iter.Seq[*object.Object] {
	return func(yield func(*object.Object) bool) {
		cur := head
		for n := 0; cur != 0 && n < s.MaxListLen; n++ {
			obj, err := s.objects.ReadObject(structName, cur)
			if err != nil {
				slog.Warn("Stopping list walk at unreadable entry", "struct", structName, "addr", cur, "error", err)
				return
			}
			if !yield(obj) {
				return
			}
			next, err := obj.Pointer(member)
			if err != nil {
				return
			}
			cur = next
		}
	}
}
