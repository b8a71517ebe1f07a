package classfile

type FieldInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func (f *FieldInfo) Name(cp ConstantPool) string {
	return cp.GetUtf8(f.NameIndex)
}

func (f *FieldInfo) Descriptor(cp ConstantPool) string {
	return cp.GetUtf8(f.DescriptorIndex)
}

func (f *FieldInfo) GetAttribute(cp ConstantPool, name string) *AttributeInfo {
	return findAttribute(f.Attributes, cp, name)
}

// ConstantValue returns the initial value of a static final field.
func (f *FieldInfo) ConstantValue(cp ConstantPool) (any, bool) {
	cv := f.GetAttribute(cp, "ConstantValue").AsConstantValue()
	if cv == nil {
		return nil, false
	}
	return cp.GetValue(cv.ConstantValueIndex)
}

func (f *FieldInfo) Signature(cp ConstantPool) string {
	if sig := f.GetAttribute(cp, "Signature").AsSignature(); sig != nil {
		return cp.GetUtf8(sig.SignatureIndex)
	}
	return ""
}
