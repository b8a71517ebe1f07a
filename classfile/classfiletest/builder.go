// Package classfiletest writes small, valid class files in memory so tests
// do not depend on a JDK or checked-in binaries.
package classfiletest

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/dhamidi/jda/classfile"
)

type Builder struct {
	Name       string
	Super      string
	Interfaces []string
	Access     classfile.AccessFlags
	Major      uint16
	Source     string

	pool    bytes.Buffer
	count   uint16
	indices map[string]uint16

	fields  []member
	methods []member
	inner   []innerEntry
}

type member struct {
	access   classfile.AccessFlags
	name     string
	desc     string
	constant uint16
	code     *Code
	throws   []string
}

type innerEntry struct {
	inner, outer, name string
	access             classfile.AccessFlags
}

// Code is the body of a method. Offsets in Handlers and Lines are byte
// offsets into Bytes.
type Code struct {
	MaxStack  uint16
	MaxLocals uint16
	Bytes     []byte
	Handlers  []Handler
	Lines     []Line
}

type Handler struct {
	Start, End, Handler uint16
	// Catch is the internal name of the caught class, empty for finally.
	Catch string
}

type Line struct {
	PC, Line uint16
}

// New starts a public class extending java/lang/Object.
func New(name string) *Builder {
	return &Builder{
		Name:    name,
		Super:   "java/lang/Object",
		Access:  classfile.AccPublic | classfile.AccSuper,
		Major:   52,
		count:   1,
		indices: make(map[string]uint16),
	}
}

func (b *Builder) add(key string, slots uint16, write func(w *bytes.Buffer)) uint16 {
	if idx, ok := b.indices[key]; ok {
		return idx
	}
	idx := b.count
	write(&b.pool)
	b.count += slots
	b.indices[key] = idx
	return idx
}

func u1(w *bytes.Buffer, v uint8)  { w.WriteByte(v) }
func u2(w *bytes.Buffer, v uint16) { _ = binary.Write(w, binary.BigEndian, v) }
func u4(w *bytes.Buffer, v uint32) { _ = binary.Write(w, binary.BigEndian, v) }

func (b *Builder) Utf8(s string) uint16 {
	return b.add("U"+s, 1, func(w *bytes.Buffer) {
		u1(w, uint8(classfile.ConstantUtf8))
		u2(w, uint16(len(s)))
		w.WriteString(s)
	})
}

func (b *Builder) Class(name string) uint16 {
	n := b.Utf8(name)
	return b.add("C"+name, 1, func(w *bytes.Buffer) {
		u1(w, uint8(classfile.ConstantClass))
		u2(w, n)
	})
}

func (b *Builder) String(s string) uint16 {
	n := b.Utf8(s)
	return b.add("S"+s, 1, func(w *bytes.Buffer) {
		u1(w, uint8(classfile.ConstantString))
		u2(w, n)
	})
}

func (b *Builder) Int(v int32) uint16 {
	return b.add(fmt.Sprintf("I%d", v), 1, func(w *bytes.Buffer) {
		u1(w, uint8(classfile.ConstantInteger))
		u4(w, uint32(v))
	})
}

func (b *Builder) Float(v float32) uint16 {
	return b.add(fmt.Sprintf("F%v", v), 1, func(w *bytes.Buffer) {
		u1(w, uint8(classfile.ConstantFloat))
		u4(w, math.Float32bits(v))
	})
}

func (b *Builder) Long(v int64) uint16 {
	return b.add(fmt.Sprintf("J%d", v), 2, func(w *bytes.Buffer) {
		u1(w, uint8(classfile.ConstantLong))
		u4(w, uint32(uint64(v)>>32))
		u4(w, uint32(v))
	})
}

func (b *Builder) Double(v float64) uint16 {
	return b.add(fmt.Sprintf("D%v", v), 2, func(w *bytes.Buffer) {
		bits := math.Float64bits(v)
		u1(w, uint8(classfile.ConstantDouble))
		u4(w, uint32(bits>>32))
		u4(w, uint32(bits))
	})
}

func (b *Builder) NameAndType(name, desc string) uint16 {
	n, d := b.Utf8(name), b.Utf8(desc)
	return b.add("N"+name+":"+desc, 1, func(w *bytes.Buffer) {
		u1(w, uint8(classfile.ConstantNameAndType))
		u2(w, n)
		u2(w, d)
	})
}

func (b *Builder) ref(tag classfile.ConstantTag, owner, name, desc string) uint16 {
	c, nt := b.Class(owner), b.NameAndType(name, desc)
	return b.add(fmt.Sprintf("R%d%s.%s:%s", tag, owner, name, desc), 1, func(w *bytes.Buffer) {
		u1(w, uint8(tag))
		u2(w, c)
		u2(w, nt)
	})
}

func (b *Builder) FieldRef(owner, name, desc string) uint16 {
	return b.ref(classfile.ConstantFieldref, owner, name, desc)
}

func (b *Builder) MethodRef(owner, name, desc string) uint16 {
	return b.ref(classfile.ConstantMethodref, owner, name, desc)
}

func (b *Builder) InterfaceMethodRef(owner, name, desc string) uint16 {
	return b.ref(classfile.ConstantInterfaceMethodref, owner, name, desc)
}

func (b *Builder) Field(access classfile.AccessFlags, name, desc string) *Builder {
	b.fields = append(b.fields, member{access: access, name: name, desc: desc})
	return b
}

// ConstantField adds a field with a ConstantValue attribute pointing at the
// pool entry idx.
func (b *Builder) ConstantField(access classfile.AccessFlags, name, desc string, idx uint16) *Builder {
	b.fields = append(b.fields, member{access: access, name: name, desc: desc, constant: idx})
	return b
}

func (b *Builder) Method(access classfile.AccessFlags, name, desc string, code *Code, throws ...string) *Builder {
	b.methods = append(b.methods, member{access: access, name: name, desc: desc, code: code, throws: throws})
	return b
}

// Inner records an InnerClasses entry. outer and name may be empty for
// local and anonymous classes.
func (b *Builder) Inner(inner, outer, name string, access classfile.AccessFlags) *Builder {
	b.inner = append(b.inner, innerEntry{inner: inner, outer: outer, name: name, access: access})
	return b
}

func (b *Builder) attribute(w *bytes.Buffer, name string, body []byte) {
	u2(w, b.Utf8(name))
	u4(w, uint32(len(body)))
	w.Write(body)
}

func (b *Builder) memberBytes(w *bytes.Buffer, m member) {
	u2(w, uint16(m.access))
	u2(w, b.Utf8(m.name))
	u2(w, b.Utf8(m.desc))

	var attrs bytes.Buffer
	n := uint16(0)
	if m.constant != 0 {
		var body bytes.Buffer
		u2(&body, m.constant)
		b.attribute(&attrs, "ConstantValue", body.Bytes())
		n++
	}
	if m.code != nil {
		b.attribute(&attrs, "Code", b.codeBytes(m.code))
		n++
	}
	if len(m.throws) > 0 {
		var body bytes.Buffer
		u2(&body, uint16(len(m.throws)))
		for _, t := range m.throws {
			u2(&body, b.Class(t))
		}
		b.attribute(&attrs, "Exceptions", body.Bytes())
		n++
	}
	u2(w, n)
	w.Write(attrs.Bytes())
}

func (b *Builder) codeBytes(c *Code) []byte {
	var w bytes.Buffer
	u2(&w, c.MaxStack)
	u2(&w, c.MaxLocals)
	u4(&w, uint32(len(c.Bytes)))
	w.Write(c.Bytes)
	u2(&w, uint16(len(c.Handlers)))
	for _, h := range c.Handlers {
		u2(&w, h.Start)
		u2(&w, h.End)
		u2(&w, h.Handler)
		if h.Catch == "" {
			u2(&w, 0)
		} else {
			u2(&w, b.Class(h.Catch))
		}
	}
	if len(c.Lines) == 0 {
		u2(&w, 0)
		return w.Bytes()
	}
	var table bytes.Buffer
	u2(&table, uint16(len(c.Lines)))
	for _, l := range c.Lines {
		u2(&table, l.PC)
		u2(&table, l.Line)
	}
	u2(&w, 1)
	b.attribute(&w, "LineNumberTable", table.Bytes())
	return w.Bytes()
}

// Bytes serialises the class. Pool entries referenced only by the body are
// added while the body is written, so the pool is emitted last into the
// final buffer.
func (b *Builder) Bytes() []byte {
	var body bytes.Buffer
	u2(&body, uint16(b.Access))
	u2(&body, b.Class(b.Name))
	if b.Super == "" {
		u2(&body, 0)
	} else {
		u2(&body, b.Class(b.Super))
	}
	u2(&body, uint16(len(b.Interfaces)))
	for _, i := range b.Interfaces {
		u2(&body, b.Class(i))
	}
	u2(&body, uint16(len(b.fields)))
	for _, f := range b.fields {
		b.memberBytes(&body, f)
	}
	u2(&body, uint16(len(b.methods)))
	for _, m := range b.methods {
		b.memberBytes(&body, m)
	}

	var attrs bytes.Buffer
	n := uint16(0)
	if b.Source != "" {
		var sf bytes.Buffer
		u2(&sf, b.Utf8(b.Source))
		b.attribute(&attrs, "SourceFile", sf.Bytes())
		n++
	}
	if len(b.inner) > 0 {
		var ic bytes.Buffer
		u2(&ic, uint16(len(b.inner)))
		for _, e := range b.inner {
			u2(&ic, b.Class(e.inner))
			if e.outer == "" {
				u2(&ic, 0)
			} else {
				u2(&ic, b.Class(e.outer))
			}
			if e.name == "" {
				u2(&ic, 0)
			} else {
				u2(&ic, b.Utf8(e.name))
			}
			u2(&ic, uint16(e.access))
		}
		b.attribute(&attrs, "InnerClasses", ic.Bytes())
		n++
	}
	u2(&body, n)
	body.Write(attrs.Bytes())

	var out bytes.Buffer
	u4(&out, classfile.Magic)
	u2(&out, 0)
	u2(&out, b.Major)
	u2(&out, b.count)
	out.Write(b.pool.Bytes())
	out.Write(body.Bytes())
	return out.Bytes()
}
