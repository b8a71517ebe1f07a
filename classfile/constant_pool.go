package classfile

type ConstantPoolEntry interface {
	Tag() ConstantTag
}

type ConstantUtf8Info struct {
	Value string
}

type ConstantIntegerInfo struct {
	Value int32
}

type ConstantFloatInfo struct {
	Value float32
}

type ConstantLongInfo struct {
	Value int64
}

type ConstantDoubleInfo struct {
	Value float64
}

type ConstantClassInfo struct {
	NameIndex uint16
}

type ConstantStringInfo struct {
	StringIndex uint16
}

// ConstantRefInfo covers Fieldref, Methodref and InterfaceMethodref, which
// share a layout and differ only in their tag.
type ConstantRefInfo struct {
	Kind             ConstantTag
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

type ConstantNameAndTypeInfo struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

type ConstantMethodHandleInfo struct {
	ReferenceKind  MethodHandleKind
	ReferenceIndex uint16
}

type ConstantMethodTypeInfo struct {
	DescriptorIndex uint16
}

// ConstantDynamicInfo covers both Dynamic and InvokeDynamic.
type ConstantDynamicInfo struct {
	Kind                     ConstantTag
	BootstrapMethodAttrIndex uint16
	NameAndTypeIndex         uint16
}

// ConstantNamedInfo covers Module and Package entries.
type ConstantNamedInfo struct {
	Kind      ConstantTag
	NameIndex uint16
}

func (c *ConstantUtf8Info) Tag() ConstantTag         { return ConstantUtf8 }
func (c *ConstantIntegerInfo) Tag() ConstantTag      { return ConstantInteger }
func (c *ConstantFloatInfo) Tag() ConstantTag        { return ConstantFloat }
func (c *ConstantLongInfo) Tag() ConstantTag         { return ConstantLong }
func (c *ConstantDoubleInfo) Tag() ConstantTag       { return ConstantDouble }
func (c *ConstantClassInfo) Tag() ConstantTag        { return ConstantClass }
func (c *ConstantStringInfo) Tag() ConstantTag       { return ConstantString }
func (c *ConstantRefInfo) Tag() ConstantTag          { return c.Kind }
func (c *ConstantNameAndTypeInfo) Tag() ConstantTag  { return ConstantNameAndType }
func (c *ConstantMethodHandleInfo) Tag() ConstantTag { return ConstantMethodHandle }
func (c *ConstantMethodTypeInfo) Tag() ConstantTag   { return ConstantMethodType }
func (c *ConstantDynamicInfo) Tag() ConstantTag      { return c.Kind }
func (c *ConstantNamedInfo) Tag() ConstantTag        { return c.Kind }

// ConstantPool is indexed from 1 like the class file; slot 0 of the slice
// holds entry 1. The slot after a long or double is nil.
type ConstantPool []ConstantPoolEntry

func lookup[T ConstantPoolEntry](cp ConstantPool, index uint16) (T, bool) {
	var zero T
	if index == 0 || int(index) > len(cp) {
		return zero, false
	}
	entry, ok := cp[index-1].(T)
	return entry, ok
}

func (cp ConstantPool) Entry(index uint16) ConstantPoolEntry {
	if index == 0 || int(index) > len(cp) {
		return nil
	}
	return cp[index-1]
}

func (cp ConstantPool) GetUtf8(index uint16) string {
	if e, ok := lookup[*ConstantUtf8Info](cp, index); ok {
		return e.Value
	}
	return ""
}

func (cp ConstantPool) GetClassName(index uint16) string {
	if e, ok := lookup[*ConstantClassInfo](cp, index); ok {
		return cp.GetUtf8(e.NameIndex)
	}
	return ""
}

func (cp ConstantPool) GetString(index uint16) string {
	if e, ok := lookup[*ConstantStringInfo](cp, index); ok {
		return cp.GetUtf8(e.StringIndex)
	}
	return ""
}

func (cp ConstantPool) GetNameAndType(index uint16) (name, descriptor string) {
	if e, ok := lookup[*ConstantNameAndTypeInfo](cp, index); ok {
		return cp.GetUtf8(e.NameIndex), cp.GetUtf8(e.DescriptorIndex)
	}
	return "", ""
}

// GetRef resolves any of the three member reference kinds.
func (cp ConstantPool) GetRef(index uint16) (className, name, descriptor string, ok bool) {
	e, ok := lookup[*ConstantRefInfo](cp, index)
	if !ok {
		return "", "", "", false
	}
	name, descriptor = cp.GetNameAndType(e.NameAndTypeIndex)
	return cp.GetClassName(e.ClassIndex), name, descriptor, true
}

func (cp ConstantPool) GetMethodType(index uint16) string {
	if e, ok := lookup[*ConstantMethodTypeInfo](cp, index); ok {
		return cp.GetUtf8(e.DescriptorIndex)
	}
	return ""
}

func (cp ConstantPool) GetMethodHandle(index uint16) *ConstantMethodHandleInfo {
	e, _ := lookup[*ConstantMethodHandleInfo](cp, index)
	return e
}

func (cp ConstantPool) GetDynamic(index uint16) *ConstantDynamicInfo {
	e, _ := lookup[*ConstantDynamicInfo](cp, index)
	return e
}

// GetValue returns the Go value of a loadable numeric or string constant.
func (cp ConstantPool) GetValue(index uint16) (any, bool) {
	switch e := cp.Entry(index).(type) {
	case *ConstantIntegerInfo:
		return e.Value, true
	case *ConstantFloatInfo:
		return e.Value, true
	case *ConstantLongInfo:
		return e.Value, true
	case *ConstantDoubleInfo:
		return e.Value, true
	case *ConstantStringInfo:
		return cp.GetUtf8(e.StringIndex), true
	}
	return nil, false
}
