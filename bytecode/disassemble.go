// Package bytecode decodes the code array of a JVM method into a flat
// instruction list with constant pool operands already rendered as text.
package bytecode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dhamidi/jda/classfile"
)

var (
	ErrTruncated = errors.New("truncated instruction")
	ErrInvalid   = errors.New("invalid opcode")
)

type Instruction struct {
	Offset int    `yaml:"offset"`
	Opcode Opcode `yaml:"opcode"`
	// Operand is the rendered operand text, empty for operand-less
	// instructions.
	Operand string `yaml:"operand,omitempty"`
	// Targets holds absolute jump offsets: the branch target, or the
	// default followed by every case of a switch.
	Targets []int `yaml:"targets,omitempty"`
	// Keys holds the case keys of a switch, parallel to Targets[1:].
	Keys []int32 `yaml:"keys,omitempty"`
}

func (in Instruction) Mnemonic() string {
	return in.Opcode.String()
}

// Stream is the decoded body of one method.
type Stream []Instruction

// Targets returns the set of offsets other instructions jump to.
func (s Stream) Targets() map[int]bool {
	targets := make(map[int]bool)
	for _, in := range s {
		for _, t := range in.Targets {
			targets[t] = true
		}
	}
	return targets
}

type decoder struct {
	code []byte
	pc   int
	cp   classfile.ConstantPool
}

func (d *decoder) need(n int) error {
	if d.pc+n > len(d.code) {
		return fmt.Errorf("%w at offset %d", ErrTruncated, d.pc)
	}
	return nil
}

func (d *decoder) u1() int {
	v := d.code[d.pc]
	d.pc++
	return int(v)
}

func (d *decoder) s1() int {
	return int(int8(d.u1()))
}

func (d *decoder) u2() uint16 {
	v := binary.BigEndian.Uint16(d.code[d.pc:])
	d.pc += 2
	return v
}

func (d *decoder) s2() int {
	return int(int16(d.u2()))
}

func (d *decoder) s4() int32 {
	v := binary.BigEndian.Uint32(d.code[d.pc:])
	d.pc += 4
	return int32(v)
}

// Disassemble decodes code. On malformed input it returns every instruction
// decoded before the problem together with the error.
func Disassemble(code []byte, cp classfile.ConstantPool) (Stream, error) {
	d := &decoder{code: code, cp: cp}
	var out Stream
	for d.pc < len(code) {
		in, err := d.next()
		if err != nil {
			return out, err
		}
		out = append(out, in)
	}
	return out, nil
}

func (d *decoder) next() (Instruction, error) {
	start := d.pc
	op := Opcode(d.u1())
	in := Instruction{Offset: start, Opcode: op}
	if mnemonics[op] == "" {
		return in, fmt.Errorf("%w 0x%02x at offset %d", ErrInvalid, byte(op), start)
	}

	var err error
	switch {
	case op == Bipush:
		if err = d.need(1); err == nil {
			in.Operand = strconv.Itoa(d.s1())
		}
	case op == Sipush:
		if err = d.need(2); err == nil {
			in.Operand = strconv.Itoa(d.s2())
		}
	case op == Ldc:
		if err = d.need(1); err == nil {
			in.Operand = d.constant(uint16(d.u1()))
		}
	case op == LdcW || op == Ldc2W:
		if err = d.need(2); err == nil {
			in.Operand = d.constant(d.u2())
		}
	case op.hasLocalIndex():
		if err = d.need(1); err == nil {
			in.Operand = strconv.Itoa(d.u1())
		}
	case op == Iinc:
		if err = d.need(2); err == nil {
			idx := d.u1()
			in.Operand = fmt.Sprintf("%d %d", idx, d.s1())
		}
	case op == GotoW || op == JsrW:
		if err = d.need(4); err == nil {
			in.Targets = []int{start + int(d.s4())}
		}
	case op.IsBranch():
		if err = d.need(2); err == nil {
			in.Targets = []int{start + d.s2()}
		}
	case op == Tableswitch:
		err = d.tableswitch(&in)
	case op == Lookupswitch:
		err = d.lookupswitch(&in)
	case op.isMemberRef():
		if err = d.need(2); err == nil {
			in.Operand = d.memberRef(d.u2())
		}
	case op == Invokeinterface:
		if err = d.need(4); err == nil {
			in.Operand = d.memberRef(d.u2())
			d.pc += 2
		}
	case op == Invokedynamic:
		if err = d.need(4); err == nil {
			in.Operand = d.dynamic(d.u2())
			d.pc += 2
		}
	case op == New || op == Anewarray || op == Checkcast || op == Instanceof:
		if err = d.need(2); err == nil {
			in.Operand = d.cp.GetClassName(d.u2())
		}
	case op == Newarray:
		if err = d.need(1); err == nil {
			t := byte(d.u1())
			in.Operand = arrayTypes[t]
			if in.Operand == "" {
				in.Operand = "type" + strconv.Itoa(int(t))
			}
		}
	case op == Multianewarray:
		if err = d.need(3); err == nil {
			class := d.cp.GetClassName(d.u2())
			in.Operand = fmt.Sprintf("%s %d", class, d.u1())
		}
	case op == Wide:
		err = d.wide(&in)
	}
	return in, err
}

func (d *decoder) wide(in *Instruction) error {
	if err := d.need(3); err != nil {
		return err
	}
	op := Opcode(d.u1())
	idx := d.u2()
	if op == Iinc {
		if err := d.need(2); err != nil {
			return err
		}
		in.Operand = fmt.Sprintf("iinc %d %d", idx, d.s2())
		return nil
	}
	if !op.hasLocalIndex() {
		return fmt.Errorf("%w: wide %s at offset %d", ErrInvalid, op, in.Offset)
	}
	in.Operand = fmt.Sprintf("%s %d", op, idx)
	return nil
}

// align skips the 0-3 padding bytes that put switch operands on a four
// byte boundary relative to the start of the code array.
func (d *decoder) align() {
	for d.pc%4 != 0 {
		d.pc++
	}
}

func (d *decoder) tableswitch(in *Instruction) error {
	d.align()
	if err := d.need(12); err != nil {
		return err
	}
	def, low, high := d.s4(), d.s4(), d.s4()
	if high < low {
		return fmt.Errorf("%w: tableswitch bounds %d..%d at offset %d", ErrInvalid, low, high, in.Offset)
	}
	n := int(int64(high) - int64(low) + 1)
	if err := d.need(4 * n); err != nil {
		return err
	}
	in.Targets = append(in.Targets, in.Offset+int(def))
	for i := 0; i < n; i++ {
		in.Keys = append(in.Keys, low+int32(i))
		in.Targets = append(in.Targets, in.Offset+int(d.s4()))
	}
	return nil
}

func (d *decoder) lookupswitch(in *Instruction) error {
	d.align()
	if err := d.need(8); err != nil {
		return err
	}
	def, n := d.s4(), d.s4()
	if n < 0 {
		return fmt.Errorf("%w: lookupswitch with %d pairs at offset %d", ErrInvalid, n, in.Offset)
	}
	if err := d.need(8 * int(n)); err != nil {
		return err
	}
	in.Targets = append(in.Targets, in.Offset+int(def))
	for i := int32(0); i < n; i++ {
		in.Keys = append(in.Keys, d.s4())
		in.Targets = append(in.Targets, in.Offset+int(d.s4()))
	}
	return nil
}

func (d *decoder) constant(idx uint16) string {
	switch e := d.cp.Entry(idx).(type) {
	case *classfile.ConstantStringInfo:
		return strconv.Quote(d.cp.GetUtf8(e.StringIndex))
	case *classfile.ConstantIntegerInfo:
		return strconv.FormatInt(int64(e.Value), 10)
	case *classfile.ConstantLongInfo:
		return strconv.FormatInt(e.Value, 10) + "L"
	case *classfile.ConstantFloatInfo:
		return strconv.FormatFloat(float64(e.Value), 'g', -1, 32) + "F"
	case *classfile.ConstantDoubleInfo:
		return strconv.FormatFloat(e.Value, 'g', -1, 64) + "D"
	case *classfile.ConstantClassInfo:
		return d.cp.GetUtf8(e.NameIndex) + ".class"
	case *classfile.ConstantMethodTypeInfo:
		return d.cp.GetUtf8(e.DescriptorIndex)
	case *classfile.ConstantMethodHandleInfo:
		return e.ReferenceKind.String() + " " + d.memberRef(e.ReferenceIndex)
	case *classfile.ConstantDynamicInfo:
		return d.dynamic(idx)
	}
	return "#" + strconv.Itoa(int(idx))
}

func (d *decoder) memberRef(idx uint16) string {
	owner, name, desc, ok := d.cp.GetRef(idx)
	if !ok {
		return "#" + strconv.Itoa(int(idx))
	}
	if strings.HasPrefix(desc, "(") {
		return owner + "." + name + desc
	}
	return owner + "." + name + " : " + desc
}

func (d *decoder) dynamic(idx uint16) string {
	e := d.cp.GetDynamic(idx)
	if e == nil {
		return "#" + strconv.Itoa(int(idx))
	}
	name, desc := d.cp.GetNameAndType(e.NameAndTypeIndex)
	return fmt.Sprintf("%s%s [bootstrap %d]", name, desc, e.BootstrapMethodAttrIndex)
}
