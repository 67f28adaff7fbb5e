package schema

import (
	"fmt"

	"github.com/cilium/ebpf/btf"
)

// BTFLayouts serves struct layout queries from a kernel BTF blob
// (/sys/kernel/btf/vmlinux saved alongside the capture, or a vmlinux BTF
// section). BTF is how modern kernels ship exactly the offset/size table
// this engine needs, so captures from BTF-enabled kernels need no
// hand-built layout profile.
type BTFLayouts struct {
	spec *btf.Spec
}

func LoadBTFLayouts(path string) (*BTFLayouts, error) {
	spec, err := btf.LoadSpec(path)
	if err != nil {
		return nil, fmt.Errorf("loading BTF from %s: %w", path, err)
	}
	return &BTFLayouts{spec: spec}, nil
}

func NewBTFLayouts(spec *btf.Spec) *BTFLayouts {
	return &BTFLayouts{spec: spec}
}

func (b *BTFLayouts) structByName(structName string) (*btf.Struct, error) {
	typ, err := b.spec.AnyTypeByName(structName)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownStruct, structName)
	}
	st, ok := btf.UnderlyingType(typ).(*btf.Struct)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a struct", ErrUnknownStruct, structName)
	}
	return st, nil
}

func (b *BTFLayouts) member(structName, field string) (*btf.Member, error) {
	st, err := b.structByName(structName)
	if err != nil {
		return nil, err
	}
	for i := range st.Members {
		if st.Members[i].Name == field {
			return &st.Members[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %s.%s", ErrUnknownField, structName, field)
}

func (b *BTFLayouts) FieldOffset(structName, field string) (uint64, error) {
	m, err := b.member(structName, field)
	if err != nil {
		return 0, err
	}
	if m.Offset%8 != 0 {
		return 0, fmt.Errorf("%w: %s.%s is a bitfield", ErrUnknownField, structName, field)
	}
	return uint64(m.Offset.Bytes()), nil
}

func (b *BTFLayouts) FieldSize(structName, field string) (uint64, error) {
	m, err := b.member(structName, field)
	if err != nil {
		return 0, err
	}
	sz, err := btf.Sizeof(m.Type)
	if err != nil {
		return 0, fmt.Errorf("sizing %s.%s: %v", structName, field, err)
	}
	return uint64(sz), nil
}

func (b *BTFLayouts) TypeSize(structName string) (uint64, error) {
	st, err := b.structByName(structName)
	if err != nil {
		return 0, err
	}
	return uint64(st.Size), nil
}
