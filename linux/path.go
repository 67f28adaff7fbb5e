package linux

import (
	"fmt"
	"strings"

	"github.com/openforensics/linmem/memory"
	"github.com/openforensics/linmem/object"
)

// MaxNameLength caps one dentry name read, matching the kernel's own
// d_name sizing expectations.
const MaxNameLength = 256

func (s *Session) dentryName(d *object.Object) (string, bool) {
	q, err := d.Embedded("d_name", "qstr")
	if err != nil {
		return "", false
	}
	ptr, err := q.Pointer("name")
	if err != nil || ptr == 0 {
		return "", false
	}
	name, err := s.objects.ReadCString(ptr, MaxNameLength)
	if err != nil {
		return "", false
	}
	return name, true
}

// Path reconstructs the absolute path of (dentry, mnt) relative to the
// task's root (rootDentry, rootMnt), walking parent links upward and
// crossing mount boundaries where the dentry is its mount's filesystem
// root. The walk is capped at MaxPathDepth so cyclic parent chains in a
// corrupted capture terminate; a walk that never produces a segment
// returns ("", false).
func (s *Session) Path(rootDentry, rootMnt, dentryAddr, mntAddr memory.VirtualAddress) (string, bool) {
	leaf, err := s.objects.ReadObject("dentry", dentryAddr)
	if err != nil {
		return "", false
	}
	if _, err := s.objects.ReadObject("dentry", rootDentry); err != nil {
		return "", false
	}

	var ino uint64
	if inode, err := leaf.Deref("d_inode", "inode"); err == nil {
		ino, _ = inode.Uint("i_ino")
	}

	var segs []string
	dentry, mnt := dentryAddr, mntAddr
	for depth := 0; depth < s.MaxPathDepth; depth++ {
		if dentry == rootDentry && mnt == rootMnt {
			break
		}
		d, err := s.objects.ReadObject("dentry", dentry)
		if err != nil {
			break
		}
		name, ok := s.dentryName(d)
		if !ok {
			break
		}
		segs = append(segs, strings.Trim(name, "/"))

		parent, err := d.Pointer("d_parent")
		if err != nil {
			break
		}
		m, err := s.objects.ReadObject("vfsmount", mnt)
		if err != nil {
			break
		}
		mntRoot, err := m.Pointer("mnt_root")
		if err != nil {
			break
		}
		if dentry == mntRoot || dentry == parent {
			mntParent, err := m.Pointer("mnt_parent")
			if err != nil || mntParent == mnt {
				// Global root: nowhere further up to go.
				break
			}
			dentry, err = m.Pointer("mnt_mountpoint")
			if err != nil {
				break
			}
			mnt = mntParent
			continue
		}
		dentry = parent
	}

	if len(segs) == 0 {
		return "", false
	}
	var parts []string
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i] != "" {
			parts = append(parts, segs[i])
		}
	}
	return formatPath(strings.Join(parts, "/"), ino), true
}

// formatPath applies the pseudo-file naming rules: socket/pipe paths carry
// their inode number in brackets, the anonymous inotify node stays bare,
// everything else is rooted with a slash.
func formatPath(path string, ino uint64) string {
	switch {
	case strings.HasPrefix(path, "socket:") || strings.HasPrefix(path, "pipe:"):
		if !strings.Contains(path, "]") {
			path = fmt.Sprintf("%s:[%d]", path[:len(path)-1], ino)
		} else {
			path = strings.ReplaceAll(path, "/", "")
		}
	case path == "inotify":
	default:
		path = "/" + path
	}
	return path
}

// PartialPath walks d_parent links alone, for callers holding a dentry but
// no vfsmount. The result is relative (no leading slash) and stops at the
// first self-parented dentry or the depth bound.
func (s *Session) PartialPath(dentryAddr memory.VirtualAddress) string {
	var segs []string
	cur := dentryAddr
	for depth := 0; cur != 0 && depth < s.MaxPathDepth; depth++ {
		d, err := s.objects.ReadObject("dentry", cur)
		if err != nil {
			break
		}
		parent, err := d.Pointer("d_parent")
		if err != nil || cur == parent {
			break
		}
		if name, ok := s.dentryName(d); ok {
			segs = append(segs, name)
		}
		cur = parent
	}
	var parts []string
	for i := len(segs) - 1; i >= 0; i-- {
		parts = append(parts, segs[i])
	}
	return strings.Join(parts, "/")
}
