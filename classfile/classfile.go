package classfile

type ClassFile struct {
	MinorVersion uint16
	MajorVersion uint16
	ConstantPool ConstantPool
	AccessFlags  AccessFlags
	ThisClass    uint16
	SuperClass   uint16
	Interfaces   []uint16
	Fields       []FieldInfo
	Methods      []MethodInfo
	Attributes   []AttributeInfo
}

func (cf *ClassFile) ClassName() string {
	return cf.ConstantPool.GetClassName(cf.ThisClass)
}

// SuperClassName is empty for java/lang/Object and module-info.
func (cf *ClassFile) SuperClassName() string {
	if cf.SuperClass == 0 {
		return ""
	}
	return cf.ConstantPool.GetClassName(cf.SuperClass)
}

func (cf *ClassFile) InterfaceNames() []string {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		names[i] = cf.ConstantPool.GetClassName(idx)
	}
	return names
}

func (cf *ClassFile) GetAttribute(name string) *AttributeInfo {
	return findAttribute(cf.Attributes, cf.ConstantPool, name)
}

func (cf *ClassFile) SourceFile() string {
	if sf := cf.GetAttribute("SourceFile").AsSourceFile(); sf != nil {
		return cf.ConstantPool.GetUtf8(sf.SourceFileIndex)
	}
	return ""
}

// InnerClasses returns the entries of the InnerClasses attribute in
// declaration order, or nil when the class has none.
func (cf *ClassFile) InnerClasses() []InnerClassEntry {
	if ic := cf.GetAttribute("InnerClasses").AsInnerClasses(); ic != nil {
		return ic.Classes
	}
	return nil
}

func (cf *ClassFile) GetField(name string) *FieldInfo {
	for i := range cf.Fields {
		if cf.Fields[i].Name(cf.ConstantPool) == name {
			return &cf.Fields[i]
		}
	}
	return nil
}

// GetMethod finds a method by name and, if descriptor is not empty, by
// descriptor.
func (cf *ClassFile) GetMethod(name, descriptor string) *MethodInfo {
	for i := range cf.Methods {
		m := &cf.Methods[i]
		if m.Name(cf.ConstantPool) == name && (descriptor == "" || m.Descriptor(cf.ConstantPool) == descriptor) {
			return m
		}
	}
	return nil
}
