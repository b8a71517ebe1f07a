package classfile

type MethodInfo struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func (m *MethodInfo) Name(cp ConstantPool) string {
	return cp.GetUtf8(m.NameIndex)
}

func (m *MethodInfo) Descriptor(cp ConstantPool) string {
	return cp.GetUtf8(m.DescriptorIndex)
}

func (m *MethodInfo) GetAttribute(cp ConstantPool, name string) *AttributeInfo {
	return findAttribute(m.Attributes, cp, name)
}

func (m *MethodInfo) GetCodeAttribute(cp ConstantPool) *CodeAttribute {
	return m.GetAttribute(cp, "Code").AsCode()
}

// ExceptionNames lists the classes named in the throws clause.
func (m *MethodInfo) ExceptionNames(cp ConstantPool) []string {
	ex := m.GetAttribute(cp, "Exceptions").AsExceptions()
	if ex == nil {
		return nil
	}
	names := make([]string, len(ex.ExceptionIndexTable))
	for i, idx := range ex.ExceptionIndexTable {
		names[i] = cp.GetClassName(idx)
	}
	return names
}

func (m *MethodInfo) IsConstructor(cp ConstantPool) bool {
	return m.Name(cp) == "<init>"
}

func (m *MethodInfo) IsStaticInitializer(cp ConstantPool) bool {
	return m.Name(cp) == "<clinit>"
}
