package classfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
)

var ErrBadMagic = errors.New("not a class file")

// reader remembers the first error; every read after it is a no-op
// returning zero, so callers check err once per logical step.
type reader struct {
	r   io.Reader
	err error
}

func (r *reader) u1() uint8 {
	b := r.bytes(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u2() uint16 {
	b := r.bytes(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (r *reader) u4() uint32 {
	b := r.bytes(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r.r, buf); err != nil {
		r.err = err
		return nil
	}
	return buf
}

func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open class file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

func ParseBytes(data []byte) (*ClassFile, error) {
	return Parse(bytes.NewReader(data))
}

func Parse(rd io.Reader) (*ClassFile, error) {
	r := &reader{r: rd}

	magic := r.u4()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read magic: %w", r.err)
	}
	if magic != Magic {
		return nil, fmt.Errorf("%w: magic 0x%X", ErrBadMagic, magic)
	}

	cf := &ClassFile{
		MinorVersion: r.u2(),
		MajorVersion: r.u2(),
	}
	if r.err != nil {
		return nil, fmt.Errorf("failed to read version: %w", r.err)
	}

	cp, err := readConstantPool(r)
	if err != nil {
		return nil, err
	}
	cf.ConstantPool = cp

	cf.AccessFlags = AccessFlags(r.u2())
	cf.ThisClass = r.u2()
	cf.SuperClass = r.u2()
	cf.Interfaces = make([]uint16, r.u2())
	for i := range cf.Interfaces {
		cf.Interfaces[i] = r.u2()
	}
	if r.err != nil {
		return nil, fmt.Errorf("failed to read class info: %w", r.err)
	}

	cf.Fields = make([]FieldInfo, r.u2())
	for i := range cf.Fields {
		m, err := readMember(r, cp)
		if err != nil {
			return nil, fmt.Errorf("failed to read field %d: %w", i, err)
		}
		cf.Fields[i] = FieldInfo(m)
	}

	cf.Methods = make([]MethodInfo, r.u2())
	for i := range cf.Methods {
		m, err := readMember(r, cp)
		if err != nil {
			return nil, fmt.Errorf("failed to read method %d: %w", i, err)
		}
		cf.Methods[i] = MethodInfo(m)
	}

	cf.Attributes, err = readAttributes(r, cp)
	if err != nil {
		return nil, fmt.Errorf("failed to read class attributes: %w", err)
	}
	return cf, nil
}

func readConstantPool(r *reader) (ConstantPool, error) {
	count := r.u2()
	if r.err != nil {
		return nil, fmt.Errorf("failed to read constant pool count: %w", r.err)
	}
	if count == 0 {
		return ConstantPool{}, nil
	}

	cp := make(ConstantPool, count-1)
	for i := 1; i < int(count); i++ {
		entry, wide, err := readConstant(r)
		if err != nil {
			return nil, fmt.Errorf("failed to read constant pool entry %d: %w", i, err)
		}
		cp[i-1] = entry
		if wide {
			// longs and doubles take two slots; the second one stays nil
			i++
		}
	}
	return cp, nil
}

func readConstant(r *reader) (entry ConstantPoolEntry, wide bool, err error) {
	tag := ConstantTag(r.u1())
	switch tag {
	case ConstantUtf8:
		entry = &ConstantUtf8Info{Value: decodeModifiedUtf8(r.bytes(int(r.u2())))}
	case ConstantInteger:
		entry = &ConstantIntegerInfo{Value: int32(r.u4())}
	case ConstantFloat:
		entry = &ConstantFloatInfo{Value: math.Float32frombits(r.u4())}
	case ConstantLong:
		hi, lo := r.u4(), r.u4()
		entry, wide = &ConstantLongInfo{Value: int64(uint64(hi)<<32 | uint64(lo))}, true
	case ConstantDouble:
		hi, lo := r.u4(), r.u4()
		entry, wide = &ConstantDoubleInfo{Value: math.Float64frombits(uint64(hi)<<32 | uint64(lo))}, true
	case ConstantClass:
		entry = &ConstantClassInfo{NameIndex: r.u2()}
	case ConstantString:
		entry = &ConstantStringInfo{StringIndex: r.u2()}
	case ConstantFieldref, ConstantMethodref, ConstantInterfaceMethodref:
		entry = &ConstantRefInfo{Kind: tag, ClassIndex: r.u2(), NameAndTypeIndex: r.u2()}
	case ConstantNameAndType:
		entry = &ConstantNameAndTypeInfo{NameIndex: r.u2(), DescriptorIndex: r.u2()}
	case ConstantMethodHandle:
		entry = &ConstantMethodHandleInfo{ReferenceKind: MethodHandleKind(r.u1()), ReferenceIndex: r.u2()}
	case ConstantMethodType:
		entry = &ConstantMethodTypeInfo{DescriptorIndex: r.u2()}
	case ConstantDynamic, ConstantInvokeDynamic:
		entry = &ConstantDynamicInfo{Kind: tag, BootstrapMethodAttrIndex: r.u2(), NameAndTypeIndex: r.u2()}
	case ConstantModule, ConstantPackage:
		entry = &ConstantNamedInfo{Kind: tag, NameIndex: r.u2()}
	default:
		if r.err == nil {
			return nil, false, fmt.Errorf("unknown constant pool tag: %d", tag)
		}
	}
	if r.err != nil {
		return nil, false, r.err
	}
	return entry, wide, nil
}

type member struct {
	AccessFlags     AccessFlags
	NameIndex       uint16
	DescriptorIndex uint16
	Attributes      []AttributeInfo
}

func readMember(r *reader, cp ConstantPool) (member, error) {
	m := member{
		AccessFlags:     AccessFlags(r.u2()),
		NameIndex:       r.u2(),
		DescriptorIndex: r.u2(),
	}
	if r.err != nil {
		return m, r.err
	}
	attrs, err := readAttributes(r, cp)
	if err != nil {
		return m, err
	}
	m.Attributes = attrs
	return m, nil
}

func readAttributes(r *reader, cp ConstantPool) ([]AttributeInfo, error) {
	attrs := make([]AttributeInfo, r.u2())
	for i := range attrs {
		attrs[i] = AttributeInfo{NameIndex: r.u2()}
		attrs[i].Info = r.bytes(int(r.u4()))
		if r.err != nil {
			return nil, r.err
		}
		attrs[i].Parsed = parseAttribute(cp.GetUtf8(attrs[i].NameIndex), attrs[i].Info, cp)
	}
	if r.err != nil {
		return nil, r.err
	}
	return attrs, nil
}

func decodeModifiedUtf8(b []byte) string {
	runes := make([]rune, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c&0x80 == 0:
			runes = append(runes, rune(c))
			i++
		case c&0xE0 == 0xC0 && i+1 < len(b):
			runes = append(runes, rune(c&0x1F)<<6|rune(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0 && i+2 < len(b):
			r := rune(c&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F)
			// surrogate pairs are encoded as two three-byte sequences
			if r >= 0xD800 && r <= 0xDBFF && i+5 < len(b) && b[i+3] == 0xED {
				low := rune(b[i+3]&0x0F)<<12 | rune(b[i+4]&0x3F)<<6 | rune(b[i+5]&0x3F)
				if low >= 0xDC00 && low <= 0xDFFF {
					runes = append(runes, 0x10000+((r-0xD800)<<10)+(low-0xDC00))
					i += 6
					continue
				}
			}
			runes = append(runes, r)
			i += 3
		default:
			runes = append(runes, rune(c))
			i++
		}
	}
	return string(runes)
}
