package linux

import (
	"encoding/binary"

	"github.com/openforensics/linmem/memory"
	"github.com/openforensics/linmem/schema"
)

// fixture builds a tiny synthetic capture: a flat buffer serving as both
// the virtual and the physical view, plus a map-backed schema with the
// layouts the engine touches.
type fixture struct {
	sch  *schema.Static
	buf  *memory.Buffer
	next uint64
}

const fixtureBase = memory.VirtualAddress(0x100000)

func testLayouts() map[string]schema.StructLayout {
	return map[string]schema.StructLayout{
		"timespec": {Size: 16, Fields: map[string]schema.FieldInfo{
			"tv_sec":  {Offset: 0, Size: 8},
			"tv_nsec": {Offset: 8, Size: 8},
		}},
		"timekeeper": {Size: 64, Fields: map[string]schema.FieldInfo{
			"wall_to_monotonic": {Offset: 0, Size: 16},
			"total_sleep_time":  {Offset: 16, Size: 16},
		}},
		"radix_tree_root": {Size: 16, Fields: map[string]schema.FieldInfo{
			"rnode": {Offset: 8, Size: 8},
		}},
		"radix_tree_node": {Size: 0x250, Fields: map[string]schema.FieldInfo{
			"height": {Offset: 0, Size: 8},
			"slots":  {Offset: 16, Size: 512},
		}},
		"page": {Size: 64, Fields: map[string]schema.FieldInfo{}},
		"address_space": {Size: 32, Fields: map[string]schema.FieldInfo{
			"page_tree": {Offset: 8, Size: 16},
		}},
		"inode": {Size: 64, Fields: map[string]schema.FieldInfo{
			"i_mapping": {Offset: 0, Size: 8},
			"i_size":    {Offset: 8, Size: 8},
			"i_ino":     {Offset: 16, Size: 8},
			"i_mode":    {Offset: 24, Size: 4},
		}},
		"dentry": {Size: 64, Fields: map[string]schema.FieldInfo{
			"d_parent": {Offset: 0, Size: 8},
			"d_name":   {Offset: 8, Size: 16},
			"d_inode":  {Offset: 24, Size: 8},
		}},
		"qstr": {Size: 16, Fields: map[string]schema.FieldInfo{
			"name": {Offset: 8, Size: 8},
		}},
		"vfsmount": {Size: 32, Fields: map[string]schema.FieldInfo{
			"mnt_root":       {Offset: 0, Size: 8},
			"mnt_mountpoint": {Offset: 8, Size: 8},
			"mnt_parent":     {Offset: 16, Size: 8},
		}},
		"task_struct": {Size: 64, Fields: map[string]schema.FieldInfo{
			"start_time": {Offset: 0, Size: 16},
			"pid":        {Offset: 16, Size: 4},
			"comm":       {Offset: 32, Size: 16},
		}},
		"file_operations": {Size: 32, Fields: map[string]schema.FieldInfo{
			"read":   {Offset: 0, Size: 8},
			"write":  {Offset: 8, Size: 8},
			"llseek": {Offset: 16, Size: 8},
		}},
		"rq": {Size: 16, Fields: map[string]schema.FieldInfo{
			"curr": {Offset: 0, Size: 8},
		}},
	}
}

func newFixture() *fixture {
	return &fixture{
		sch: &schema.Static{
			PtrSize: 8,
			Symbols: map[string]map[string]memory.VirtualAddress{
				schema.KernelModule: {},
			},
			Structs: testLayouts(),
		},
		// Allocations start at 0x10000 so the low raw offsets stay free
		// for physical page payloads in page-cache tests.
		buf:  memory.NewBuffer(fixtureBase, make([]byte, 0x40000)),
		next: 0x10000,
	}
}

func (f *fixture) session() *Session { return NewSession(f.sch, f.buf) }

func (f *fixture) sym(name string, addr memory.VirtualAddress) {
	f.sch.Symbols[schema.KernelModule][name] = addr
}

// alloc reserves n bytes in the fixture buffer and returns the virtual
// address of the region.
func (f *fixture) alloc(n uint64) memory.VirtualAddress {
	addr := fixtureBase + memory.VirtualAddress(f.next)
	f.next += (n + 15) &^ 15
	return addr
}

func (f *fixture) off(addr memory.VirtualAddress) uint64 {
	return uint64(addr - fixtureBase)
}

func (f *fixture) putU64(addr memory.VirtualAddress, v uint64) {
	binary.LittleEndian.PutUint64(f.buf.Data[f.off(addr):], v)
}

func (f *fixture) putPtr(addr, v memory.VirtualAddress) {
	f.putU64(addr, uint64(v))
}

func (f *fixture) putI64(addr memory.VirtualAddress, v int64) {
	f.putU64(addr, uint64(v))
}

func (f *fixture) putBytes(addr memory.VirtualAddress, b []byte) {
	copy(f.buf.Data[f.off(addr):], b)
}

func (f *fixture) putPhys(off uint64, b []byte) {
	copy(f.buf.Data[off:], b)
}

// cstr stores a NUL-terminated string and returns its address.
func (f *fixture) cstr(s string) memory.VirtualAddress {
	addr := f.alloc(uint64(len(s)) + 1)
	f.putBytes(addr, append([]byte(s), 0))
	return addr
}

// dentry stores a dentry with the given name and parent and returns its
// address. A zero parent is patched afterwards for self-parented roots.
func (f *fixture) dentry(name string, parent memory.VirtualAddress) memory.VirtualAddress {
	d := f.alloc(64)
	p := parent
	if p == 0 {
		p = d
	}
	f.putPtr(d, p)               // d_parent
	f.putPtr(d+16, f.cstr(name)) // d_name.name
	return d
}

// timespec stores a timespec and returns its address.
func (f *fixture) timespec(sec, nsec int64) memory.VirtualAddress {
	ts := f.alloc(16)
	f.putI64(ts, sec)
	f.putI64(ts+8, nsec)
	return ts
}
