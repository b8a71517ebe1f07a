package classfile

import "bytes"

// AttributeInfo keeps the raw bytes of every attribute. Parsed is set for
// the attributes the listing needs and nil for everything else.
type AttributeInfo struct {
	NameIndex uint16
	Info      []byte
	Parsed    any
}

type CodeAttribute struct {
	MaxStack       uint16
	MaxLocals      uint16
	Code           []byte
	ExceptionTable []ExceptionTableEntry
	Attributes     []AttributeInfo
}

type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

type LineNumberTableAttribute struct {
	LineNumberTable []LineNumberEntry
}

type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

type SourceFileAttribute struct {
	SourceFileIndex uint16
}

type ConstantValueAttribute struct {
	ConstantValueIndex uint16
}

type ExceptionsAttribute struct {
	ExceptionIndexTable []uint16
}

type InnerClassesAttribute struct {
	Classes []InnerClassEntry
}

type InnerClassEntry struct {
	InnerClassInfoIndex   uint16
	OuterClassInfoIndex   uint16
	InnerNameIndex        uint16
	InnerClassAccessFlags AccessFlags
}

type SignatureAttribute struct {
	SignatureIndex uint16
}

type DeprecatedAttribute struct{}

func parsedAs[T any](a *AttributeInfo) *T {
	if a == nil {
		return nil
	}
	v, _ := a.Parsed.(*T)
	return v
}

func (a *AttributeInfo) AsCode() *CodeAttribute { return parsedAs[CodeAttribute](a) }
func (a *AttributeInfo) AsLineNumberTable() *LineNumberTableAttribute {
	return parsedAs[LineNumberTableAttribute](a)
}
func (a *AttributeInfo) AsSourceFile() *SourceFileAttribute { return parsedAs[SourceFileAttribute](a) }
func (a *AttributeInfo) AsConstantValue() *ConstantValueAttribute {
	return parsedAs[ConstantValueAttribute](a)
}
func (a *AttributeInfo) AsExceptions() *ExceptionsAttribute { return parsedAs[ExceptionsAttribute](a) }
func (a *AttributeInfo) AsInnerClasses() *InnerClassesAttribute {
	return parsedAs[InnerClassesAttribute](a)
}
func (a *AttributeInfo) AsSignature() *SignatureAttribute { return parsedAs[SignatureAttribute](a) }

func findAttribute(attrs []AttributeInfo, cp ConstantPool, name string) *AttributeInfo {
	for i := range attrs {
		if cp.GetUtf8(attrs[i].NameIndex) == name {
			return &attrs[i]
		}
	}
	return nil
}

// parseAttribute decodes the attributes listed below. A malformed body
// leaves Parsed nil rather than failing the whole class.
func parseAttribute(name string, info []byte, cp ConstantPool) any {
	r := &reader{r: bytes.NewReader(info)}
	var v any
	switch name {
	case "Code":
		v = parseCode(r, cp)
	case "LineNumberTable":
		t := &LineNumberTableAttribute{LineNumberTable: make([]LineNumberEntry, r.u2())}
		for i := range t.LineNumberTable {
			t.LineNumberTable[i] = LineNumberEntry{StartPC: r.u2(), LineNumber: r.u2()}
		}
		v = t
	case "SourceFile":
		v = &SourceFileAttribute{SourceFileIndex: r.u2()}
	case "ConstantValue":
		v = &ConstantValueAttribute{ConstantValueIndex: r.u2()}
	case "Signature":
		v = &SignatureAttribute{SignatureIndex: r.u2()}
	case "Exceptions":
		e := &ExceptionsAttribute{ExceptionIndexTable: make([]uint16, r.u2())}
		for i := range e.ExceptionIndexTable {
			e.ExceptionIndexTable[i] = r.u2()
		}
		v = e
	case "InnerClasses":
		ic := &InnerClassesAttribute{Classes: make([]InnerClassEntry, r.u2())}
		for i := range ic.Classes {
			ic.Classes[i] = InnerClassEntry{
				InnerClassInfoIndex:   r.u2(),
				OuterClassInfoIndex:   r.u2(),
				InnerNameIndex:        r.u2(),
				InnerClassAccessFlags: AccessFlags(r.u2()),
			}
		}
		v = ic
	case "Deprecated":
		v = &DeprecatedAttribute{}
	default:
		return nil
	}
	if r.err != nil {
		return nil
	}
	return v
}

func parseCode(r *reader, cp ConstantPool) *CodeAttribute {
	code := &CodeAttribute{
		MaxStack:  r.u2(),
		MaxLocals: r.u2(),
	}
	code.Code = r.bytes(int(r.u4()))
	code.ExceptionTable = make([]ExceptionTableEntry, r.u2())
	for i := range code.ExceptionTable {
		code.ExceptionTable[i] = ExceptionTableEntry{
			StartPC:   r.u2(),
			EndPC:     r.u2(),
			HandlerPC: r.u2(),
			CatchType: r.u2(),
		}
	}
	attrs, err := readAttributes(r, cp)
	if err != nil {
		return nil
	}
	code.Attributes = attrs
	return code
}

func (c *CodeAttribute) GetAttribute(cp ConstantPool, name string) *AttributeInfo {
	return findAttribute(c.Attributes, cp, name)
}

// LineNumbers merges every LineNumberTable of the code attribute, keyed by
// bytecode offset.
func (c *CodeAttribute) LineNumbers(cp ConstantPool) map[uint16]uint16 {
	lines := make(map[uint16]uint16)
	for i := range c.Attributes {
		if cp.GetUtf8(c.Attributes[i].NameIndex) != "LineNumberTable" {
			continue
		}
		if t := c.Attributes[i].AsLineNumberTable(); t != nil {
			for _, e := range t.LineNumberTable {
				lines[e.StartPC] = e.LineNumber
			}
		}
	}
	return lines
}
