package java

import (
	"fmt"

	"github.com/dhamidi/jda/bytecode"
	"github.com/dhamidi/jda/classfile"
)

func ClassModelFromFile(path string) (*ClassModel, error) {
	cf, err := classfile.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return ClassModelFromClassFile(cf), nil
}

func ClassModelFromBytes(data []byte) (*ClassModel, error) {
	cf, err := classfile.ParseBytes(data)
	if err != nil {
		return nil, err
	}
	return ClassModelFromClassFile(cf), nil
}

// ClassModelFromClassFile keeps every member and every InnerClasses entry in
// file order, synthetic ones included. The entry describing the class
// itself is kept as well; renderers skip it.
func ClassModelFromClassFile(cf *classfile.ClassFile) *ClassModel {
	cp := cf.ConstantPool
	model := &ClassModel{
		Name:         cf.ClassName(),
		Access:       uint32(cf.AccessFlags),
		SuperName:    cf.SuperClassName(),
		SourceFile:   cf.SourceFile(),
		MajorVersion: cf.MajorVersion,
		MinorVersion: cf.MinorVersion,
	}
	if names := cf.InterfaceNames(); len(names) > 0 {
		model.Interfaces = names
	}

	for i := range cf.Fields {
		model.Fields = append(model.Fields, fieldModelFromFieldInfo(&cf.Fields[i], cp))
	}
	for i := range cf.Methods {
		model.Methods = append(model.Methods, methodModelFromMethodInfo(&cf.Methods[i], cp))
	}
	for _, e := range cf.InnerClasses() {
		model.InnerClasses = append(model.InnerClasses, InnerClassRef{
			Name:      cp.GetClassName(e.InnerClassInfoIndex),
			OuterName: cp.GetClassName(e.OuterClassInfoIndex),
			InnerName: cp.GetUtf8(e.InnerNameIndex),
			Access:    uint32(e.InnerClassAccessFlags),
		})
	}
	return model
}

func fieldModelFromFieldInfo(f *classfile.FieldInfo, cp classfile.ConstantPool) FieldModel {
	model := FieldModel{
		Name:       f.Name(cp),
		Descriptor: f.Descriptor(cp),
		Access:     uint32(f.AccessFlags),
		Signature:  f.Signature(cp),
	}
	if v, ok := f.ConstantValue(cp); ok {
		model.ConstantValue = v
	}
	return model
}

func methodModelFromMethodInfo(m *classfile.MethodInfo, cp classfile.ConstantPool) MethodModel {
	model := MethodModel{
		Name:       m.Name(cp),
		Descriptor: m.Descriptor(cp),
		Access:     uint32(m.AccessFlags),
		Exceptions: m.ExceptionNames(cp),
	}
	if sig := m.GetAttribute(cp, "Signature").AsSignature(); sig != nil {
		model.Signature = cp.GetUtf8(sig.SignatureIndex)
	}
	if code := m.GetCodeAttribute(cp); code != nil {
		model.Code = codeModelFromAttribute(code, cp)
	}
	return model
}

func codeModelFromAttribute(code *classfile.CodeAttribute, cp classfile.ConstantPool) *CodeModel {
	model := &CodeModel{
		MaxStack:  int(code.MaxStack),
		MaxLocals: int(code.MaxLocals),
	}
	insns, err := bytecode.Disassemble(code.Code, cp)
	model.Instructions = insns
	if err != nil {
		model.Err = fmt.Sprintf("disassemble: %v", err)
	}
	for _, h := range code.ExceptionTable {
		handler := HandlerModel{
			Start:   int(h.StartPC),
			End:     int(h.EndPC),
			Handler: int(h.HandlerPC),
		}
		if h.CatchType != 0 {
			handler.Type = cp.GetClassName(h.CatchType)
		}
		model.Handlers = append(model.Handlers, handler)
	}
	if lines := code.LineNumbers(cp); len(lines) > 0 {
		model.Lines = make(map[int]int, len(lines))
		for pc, line := range lines {
			model.Lines[int(pc)] = int(line)
		}
	}
	return model
}
