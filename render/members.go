package render

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/dhamidi/jda/access"
	"github.com/dhamidi/jda/bytecode"
	"github.com/dhamidi/jda/classfile"
	"github.com/dhamidi/jda/java"
	"github.com/dhamidi/jda/settings"
)

const bodyIndent = indent + indent

// BytecodeMembers renders fields as declarations and methods as
// disassembled instruction listings. It reads the label, descriptor and
// debug toggles on every call, so toggling takes effect on the next render.
type BytecodeMembers struct {
	settings *settings.Registry
}

func NewBytecodeMembers(reg *settings.Registry) *BytecodeMembers {
	if reg == nil {
		reg = settings.Default
	}
	RegisterToggles(reg)
	return &BytecodeMembers{settings: reg}
}

func (b *BytecodeMembers) RenderField(f *java.FieldModel) string {
	var sb strings.Builder
	writeModifiers(&sb, access.MemberTokens(f.Access, access.Field))
	sb.WriteString(sourceType(f.Descriptor))
	sb.WriteString(" ")
	sb.WriteString(f.Name)
	if f.ConstantValue != nil {
		sb.WriteString(" = ")
		sb.WriteString(formatConstant(f.Descriptor, f.ConstantValue))
	}
	sb.WriteString(";")
	return sb.String()
}

func writeModifiers(sb *strings.Builder, tokens []string) {
	for _, t := range tokens {
		sb.WriteString(t)
		sb.WriteString(" ")
	}
}

func sourceType(desc string) string {
	if ft := classfile.ParseFieldDescriptor(desc); ft != nil {
		return ft.String()
	}
	return desc
}

// formatConstant follows the descriptor rather than the Go type, so values
// decoded from a YAML snapshot print the same as values read from a class.
func formatConstant(desc string, v any) string {
	switch v := v.(type) {
	case string:
		return strconv.Quote(v)
	case int32:
		return formatInteger(desc, int64(v))
	case int:
		return formatInteger(desc, int64(v))
	case int64:
		return formatInteger(desc, v)
	case float32:
		return formatFloat(desc, float64(v), 32)
	case float64:
		bits := 64
		if desc == "F" {
			bits = 32
		}
		return formatFloat(desc, v, bits)
	}
	return fmt.Sprint(v)
}

func formatInteger(desc string, n int64) string {
	switch desc {
	case "Z":
		return strconv.FormatBool(n != 0)
	case "C":
		return strconv.QuoteRune(rune(n))
	case "J":
		return strconv.FormatInt(n, 10) + "L"
	}
	return strconv.FormatInt(n, 10)
}

func formatFloat(desc string, f float64, bits int) string {
	suffix := "D"
	if desc == "F" {
		suffix = "F"
	}
	return strconv.FormatFloat(f, 'g', -1, bits) + suffix
}

func (b *BytecodeMembers) RenderMethod(c *java.ClassModel, m *java.MethodModel) string {
	var sb strings.Builder
	sb.WriteString(indent)
	writeModifiers(&sb, access.MemberTokens(m.Access, access.Method))
	sb.WriteString(b.signature(m))
	if len(m.Exceptions) > 0 {
		sb.WriteString(" throws ")
		sb.WriteString(strings.Join(m.Exceptions, ", "))
	}
	if m.Code == nil {
		sb.WriteString(";\n")
		return sb.String()
	}
	sb.WriteString(" {\n")
	b.writeBody(&sb, m.Code)
	sb.WriteString(indent)
	sb.WriteString("}\n")
	return sb.String()
}

func (b *BytecodeMembers) signature(m *java.MethodModel) string {
	md := classfile.ParseMethodDescriptor(m.Descriptor)
	if b.settings.IsSelected(ShowMethodDescriptors.ID) || md == nil {
		return m.Name + m.Descriptor
	}
	return md.ReturnString() + " " + m.Name + "(" + strings.Join(md.ParameterStrings(), ", ") + ")"
}

// labels numbers every jump target and handler boundary in offset order.
func labels(code *java.CodeModel) map[int]string {
	offsets := code.Instructions.Targets()
	for _, h := range code.Handlers {
		offsets[h.Start] = true
		offsets[h.End] = true
		offsets[h.Handler] = true
	}
	sorted := make([]int, 0, len(offsets))
	for off := range offsets {
		sorted = append(sorted, off)
	}
	sort.Ints(sorted)
	names := make(map[int]string, len(sorted))
	for i, off := range sorted {
		names[off] = "L" + strconv.Itoa(i)
	}
	return names
}

// body tracks the open label block while instructions are written.
type body struct {
	sb       *strings.Builder
	brackets bool
	open     bool
}

func (w *body) line(text string) {
	w.sb.WriteString(bodyIndent)
	if w.open {
		w.sb.WriteString(indent)
	}
	w.sb.WriteString(text)
	w.sb.WriteString("\n")
}

func (w *body) label(name string) {
	if !w.brackets {
		w.line(name + ":")
		return
	}
	w.close()
	w.line(name + " {")
	w.open = true
}

func (w *body) close() {
	if w.open {
		w.open = false
		w.line("}")
	}
}

func (b *BytecodeMembers) writeBody(sb *strings.Builder, code *java.CodeModel) {
	debug := b.settings.IsSelected(DebugHelpers.ID)
	w := &body{sb: sb, brackets: b.settings.IsSelected(AppendBracketsToLabels.ID)}
	names := labels(code)

	if debug {
		w.line(fmt.Sprintf("// max stack: %d, max locals: %d", code.MaxStack, code.MaxLocals))
	}

	emitted := make(map[int]bool)
	for _, in := range code.Instructions {
		if name, ok := names[in.Offset]; ok {
			w.label(name)
			emitted[in.Offset] = true
		}
		if line, ok := code.Lines[in.Offset]; ok && debug {
			w.line("// line " + strconv.Itoa(line))
		}
		text := instructionText(in, names)
		if debug {
			text = strconv.Itoa(in.Offset) + ": " + text
		}
		w.line(text)
	}

	// Labels past the last instruction, such as the end of a handler range
	// that covers the whole method.
	var trailing []int
	for off := range names {
		if !emitted[off] {
			trailing = append(trailing, off)
		}
	}
	sort.Ints(trailing)
	for _, off := range trailing {
		w.label(names[off])
	}
	w.close()

	for _, h := range code.Handlers {
		catch := h.Type
		if catch == "" {
			catch = "finally"
		}
		w.line(fmt.Sprintf("// try %s %s handler %s %s", names[h.Start], names[h.End], names[h.Handler], catch))
	}
	if code.Err != "" {
		w.line("// " + code.Err)
	}
}

func instructionText(in bytecode.Instruction, names map[int]string) string {
	mnemonic := in.Mnemonic()
	switch {
	case in.Opcode == bytecode.Tableswitch || in.Opcode == bytecode.Lookupswitch:
		if len(in.Targets) == 0 || len(in.Keys) != len(in.Targets)-1 {
			return mnemonic + " // malformed switch"
		}
		parts := make([]string, 0, len(in.Targets))
		for i, key := range in.Keys {
			parts = append(parts, fmt.Sprintf("%d: %s", key, names[in.Targets[i+1]]))
		}
		parts = append(parts, "default: "+names[in.Targets[0]])
		return mnemonic + " " + strings.Join(parts, ", ")
	case len(in.Targets) > 0:
		return mnemonic + " " + names[in.Targets[0]]
	case in.Operand != "":
		return mnemonic + " " + in.Operand
	}
	return mnemonic
}
