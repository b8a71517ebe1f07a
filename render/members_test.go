package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/jda/bytecode"
	"github.com/dhamidi/jda/classfile"
	"github.com/dhamidi/jda/classfile/classfiletest"
	"github.com/dhamidi/jda/java"
	"github.com/dhamidi/jda/render"
	"github.com/dhamidi/jda/settings"
)

func members(t *testing.T, assignments ...string) *render.BytecodeMembers {
	t.Helper()
	reg := settings.New()
	m := render.NewBytecodeMembers(reg)
	require.NoError(t, reg.Apply(assignments))
	return m
}

func TestRenderField(t *testing.T) {
	tests := []struct {
		name  string
		field java.FieldModel
		want  string
	}{
		{"package private", java.FieldModel{Name: "count", Descriptor: "I"}, "int count;"},
		{"array", java.FieldModel{Name: "xs", Descriptor: "[[J", Access: uint32(classfile.AccPrivate)}, "private long[][] xs;"},
		{"string constant", java.FieldModel{
			Name: "NAME", Descriptor: "Ljava/lang/String;", ConstantValue: "outer",
			Access: uint32(classfile.AccPublic | classfile.AccStatic | classfile.AccFinal),
		}, `public static final java.lang.String NAME = "outer";`},
		{"boolean constant", java.FieldModel{Name: "on", Descriptor: "Z", ConstantValue: int32(1)}, "boolean on = true;"},
		{"long constant", java.FieldModel{Name: "big", Descriptor: "J", ConstantValue: int64(5)}, "long big = 5L;"},
		{"bad descriptor", java.FieldModel{Name: "odd", Descriptor: "Q"}, "Q odd;"},
	}
	m := members(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, m.RenderField(&tt.field))
		})
	}
}

func branchy() *java.MethodModel {
	return &java.MethodModel{
		Name:       "m",
		Descriptor: "(ILjava/lang/String;)V",
		Access:     uint32(classfile.AccPublic | classfile.AccStatic),
		Code: &java.CodeModel{
			MaxStack:  1,
			MaxLocals: 2,
			Instructions: bytecode.Stream{
				{Offset: 0, Opcode: bytecode.Opcode(0x1a)},
				{Offset: 1, Opcode: bytecode.Ifeq, Targets: []int{5}},
				{Offset: 4, Opcode: bytecode.Return},
				{Offset: 5, Opcode: bytecode.Return},
			},
			Lines: map[int]int{0: 3, 5: 4},
		},
	}
}

func TestRenderMethodBracketLabels(t *testing.T) {
	want := "     public static m(ILjava/lang/String;)V {\n" +
		"          iload_0\n" +
		"          ifeq L0\n" +
		"          return\n" +
		"          L0 {\n" +
		"               return\n" +
		"          }\n" +
		"     }\n"
	assert.Equal(t, want, members(t).RenderMethod(nil, branchy()))
}

func TestRenderMethodPlainLabels(t *testing.T) {
	want := "     public static m(ILjava/lang/String;)V {\n" +
		"          iload_0\n" +
		"          ifeq L0\n" +
		"          return\n" +
		"          L0:\n" +
		"          return\n" +
		"     }\n"
	got := members(t, "append-brackets-to-labels=false").RenderMethod(nil, branchy())
	assert.Equal(t, want, got)
}

func TestRenderMethodWithoutDescriptors(t *testing.T) {
	got := members(t, "show-method-descriptors=false").RenderMethod(nil, branchy())
	assert.Contains(t, got, "     public static void m(int, java.lang.String) {\n")
}

func TestRenderMethodDebugHelpers(t *testing.T) {
	want := "     public static m(ILjava/lang/String;)V {\n" +
		"          // max stack: 1, max locals: 2\n" +
		"          // line 3\n" +
		"          0: iload_0\n" +
		"          1: ifeq L0\n" +
		"          4: return\n" +
		"          L0:\n" +
		"          // line 4\n" +
		"          5: return\n" +
		"     }\n"
	got := members(t, "debug-helpers", "append-brackets-to-labels=false").RenderMethod(nil, branchy())
	assert.Equal(t, want, got)
}

func TestRenderMethodWithoutBody(t *testing.T) {
	m := &java.MethodModel{
		Name:       "run",
		Descriptor: "()V",
		Access:     uint32(classfile.AccPublic | classfile.AccAbstract),
		Exceptions: []string{"java/io/IOException", "java/lang/InterruptedException"},
	}
	got := members(t).RenderMethod(nil, m)
	assert.Equal(t, "     public abstract run()V throws java/io/IOException, java/lang/InterruptedException;\n", got)
}

func TestRenderMethodHandlers(t *testing.T) {
	m := &java.MethodModel{
		Name:       "risky",
		Descriptor: "()V",
		Code: &java.CodeModel{
			Instructions: bytecode.Stream{
				{Offset: 0, Opcode: bytecode.Opcode(0x00)},
				{Offset: 1, Opcode: bytecode.Return},
				{Offset: 2, Opcode: bytecode.Opcode(0x4c)},
				{Offset: 3, Opcode: bytecode.Return},
			},
			Handlers: []java.HandlerModel{
				{Start: 0, End: 1, Handler: 2, Type: "java/lang/Exception"},
				{Start: 0, End: 4, Handler: 2},
			},
		},
	}
	want := "     risky()V {\n" +
		"          L0:\n" +
		"          nop\n" +
		"          L1:\n" +
		"          return\n" +
		"          L2:\n" +
		"          astore_1\n" +
		"          return\n" +
		"          L3:\n" +
		"          // try L0 L1 handler L2 java/lang/Exception\n" +
		"          // try L0 L3 handler L2 finally\n" +
		"     }\n"
	assert.Equal(t, want, members(t, "append-brackets-to-labels=false").RenderMethod(nil, m))
}

func TestRenderMethodSwitch(t *testing.T) {
	m := &java.MethodModel{
		Name:       "s",
		Descriptor: "(I)V",
		Code: &java.CodeModel{
			Instructions: bytecode.Stream{
				{Offset: 0, Opcode: bytecode.Lookupswitch, Keys: []int32{1, 7}, Targets: []int{20, 20, 21}},
				{Offset: 20, Opcode: bytecode.Return},
				{Offset: 21, Opcode: bytecode.Return},
			},
		},
	}
	got := members(t, "append-brackets-to-labels=false").RenderMethod(nil, m)
	assert.Contains(t, got, "          lookupswitch 1: L0, 7: L1, default: L0\n")
}

func TestRenderMethodMalformedSwitch(t *testing.T) {
	tests := []struct {
		name string
		in   bytecode.Instruction
	}{
		{"more keys than targets", bytecode.Instruction{Opcode: bytecode.Lookupswitch, Targets: []int{4}, Keys: []int32{1, 2}}},
		{"no default", bytecode.Instruction{Opcode: bytecode.Tableswitch}},
		{"more targets than keys", bytecode.Instruction{Opcode: bytecode.Tableswitch, Targets: []int{4, 4, 4}, Keys: []int32{0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &java.MethodModel{
				Name:       "s",
				Descriptor: "(I)V",
				Code: &java.CodeModel{
					Instructions: bytecode.Stream{tt.in, {Offset: 4, Opcode: bytecode.Return}},
				},
			}
			var got string
			require.NotPanics(t, func() {
				got = members(t, "append-brackets-to-labels=false").RenderMethod(nil, m)
			})
			assert.Contains(t, got, tt.in.Mnemonic()+" // malformed switch\n")
		})
	}
}

func TestRenderMethodRecordsDecodeError(t *testing.T) {
	m := &java.MethodModel{Name: "b", Descriptor: "()V", Code: &java.CodeModel{Err: "disassemble: truncated instruction at offset 1"}}
	got := members(t).RenderMethod(nil, m)
	assert.Contains(t, got, "          // disassemble: truncated instruction at offset 1\n")
}

func TestRenderClassFile(t *testing.T) {
	b := classfiletest.New("demo/Hello")
	b.ConstantField(classfile.AccPublic|classfile.AccStatic|classfile.AccFinal, "GREETING", "Ljava/lang/String;", b.String("hi"))
	b.Method(classfile.AccPublic|classfile.AccStatic, "main", "([Ljava/lang/String;)V", &classfiletest.Code{
		MaxStack: 2, MaxLocals: 1,
		Bytes: []byte{
			0xb2, 0x00, byte(b.FieldRef("java/lang/System", "out", "Ljava/io/PrintStream;")),
			0x12, byte(b.String("hi")),
			0xb6, 0x00, byte(b.MethodRef("java/io/PrintStream", "println", "(Ljava/lang/String;)V")),
			0xb1,
		},
	})
	b.Inner("demo/Hello$1", "", "", 0)
	cls, err := java.ClassModelFromBytes(b.Bytes())
	require.NoError(t, err)

	r := render.NewClassRenderer(nil, render.WithSettings(settings.New()), render.WithLineSeparator("\n"))
	want := "public class demo/Hello {\n" +
		`     public static final java.lang.String GREETING = "hi";` + "\n" +
		"\n" +
		"     public static main([Ljava/lang/String;)V {\n" +
		"          getstatic java/lang/System.out : Ljava/io/PrintStream;\n" +
		`          ldc "hi"` + "\n" +
		"          invokevirtual java/io/PrintStream.println(Ljava/lang/String;)V\n" +
		"          return\n" +
		"     }\n" +
		"// The following inner classes couldn't be decompiled: demo/Hello$1 \n" +
		"}"
	assert.Equal(t, want, r.Render("hello.jar", cls))
}
