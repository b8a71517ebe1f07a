package classfile_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/dhamidi/jda/classfile"
	"github.com/dhamidi/jda/classfile/classfiletest"
)

func testClass() []byte {
	b := classfiletest.New("testdata/TestClass")
	b.Interfaces = []string{"java/lang/Runnable"}
	b.Source = "TestClass.java"
	b.ConstantField(classfile.AccPublic|classfile.AccStatic|classfile.AccFinal, "CONSTANT_VALUE", "I", b.Int(42))
	b.Field(classfile.AccPrivate, "name", "Ljava/lang/String;")
	b.Field(classfile.AccProtected, "count", "J")
	b.Method(classfile.AccPublic, "<init>", "()V", &classfiletest.Code{
		MaxStack: 1, MaxLocals: 1,
		Bytes: []byte{0x2a, 0xb7, 0x00, byte(b.MethodRef("java/lang/Object", "<init>", "()V")), 0xb1},
		Lines: []classfiletest.Line{{PC: 0, Line: 3}, {PC: 4, Line: 4}},
	})
	b.Method(classfile.AccPublic, "getName", "()Ljava/lang/String;", &classfiletest.Code{
		MaxStack: 1, MaxLocals: 1,
		Bytes: []byte{0x2a, 0xb4, 0x00, byte(b.FieldRef("testdata/TestClass", "name", "Ljava/lang/String;")), 0xb0},
	})
	b.Method(classfile.AccPublic|classfile.AccAbstract, "run", "()V", nil, "java/io/IOException")
	b.Inner("testdata/TestClass$Inner", "testdata/TestClass", "Inner", classfile.AccPrivate|classfile.AccStatic)
	return b.Bytes()
}

func TestParseClassFile(t *testing.T) {
	cf, err := classfile.ParseBytes(testClass())
	if err != nil {
		t.Fatalf("Failed to parse class file: %v", err)
	}

	t.Run("class name", func(t *testing.T) {
		expected := "testdata/TestClass"
		if got := cf.ClassName(); got != expected {
			t.Errorf("ClassName() = %q, want %q", got, expected)
		}
	})

	t.Run("super class", func(t *testing.T) {
		expected := "java/lang/Object"
		if got := cf.SuperClassName(); got != expected {
			t.Errorf("SuperClassName() = %q, want %q", got, expected)
		}
	})

	t.Run("interfaces", func(t *testing.T) {
		interfaces := cf.InterfaceNames()
		if len(interfaces) != 1 {
			t.Fatalf("Expected 1 interface, got %d", len(interfaces))
		}
		if interfaces[0] != "java/lang/Runnable" {
			t.Errorf("Interface[0] = %q, want %q", interfaces[0], "java/lang/Runnable")
		}
	})

	t.Run("access flags", func(t *testing.T) {
		if !cf.AccessFlags.Has(classfile.AccPublic) {
			t.Error("Expected class to be public")
		}
		if cf.AccessFlags.Has(classfile.AccFinal) {
			t.Error("Expected class to not be final")
		}
	})

	t.Run("fields", func(t *testing.T) {
		if len(cf.Fields) != 3 {
			t.Fatalf("Expected 3 fields, got %d", len(cf.Fields))
		}

		constant := cf.GetField("CONSTANT_VALUE")
		if constant == nil {
			t.Fatal("Expected to find CONSTANT_VALUE field")
		}
		if constant.Descriptor(cf.ConstantPool) != "I" {
			t.Errorf("CONSTANT_VALUE descriptor = %q, want %q", constant.Descriptor(cf.ConstantPool), "I")
		}
		v, ok := constant.ConstantValue(cf.ConstantPool)
		if !ok || v != int32(42) {
			t.Errorf("ConstantValue() = %v, %v, want 42, true", v, ok)
		}

		if f := cf.GetField("count"); f == nil || f.Descriptor(cf.ConstantPool) != "J" {
			t.Error("Expected count field of type long")
		}
		if _, ok := cf.GetField("name").ConstantValue(cf.ConstantPool); ok {
			t.Error("name should not have a constant value")
		}
	})

	t.Run("methods", func(t *testing.T) {
		if len(cf.Methods) != 3 {
			t.Fatalf("Expected 3 methods, got %d", len(cf.Methods))
		}
		if !cf.Methods[0].IsConstructor(cf.ConstantPool) {
			t.Error("Expected first method to be the constructor")
		}
		run := cf.GetMethod("run", "()V")
		if run == nil {
			t.Fatal("Expected to find run method")
		}
		if run.GetCodeAttribute(cf.ConstantPool) != nil {
			t.Error("abstract run should have no code")
		}
		if got := run.ExceptionNames(cf.ConstantPool); len(got) != 1 || got[0] != "java/io/IOException" {
			t.Errorf("ExceptionNames() = %v", got)
		}
		if cf.GetMethod("getName", "()V") != nil {
			t.Error("descriptor mismatch should not match")
		}
	})

	t.Run("method code attribute", func(t *testing.T) {
		code := cf.GetMethod("<init>", "").GetCodeAttribute(cf.ConstantPool)
		if code == nil {
			t.Fatal("Expected <init> to have Code attribute")
		}
		if code.MaxStack != 1 || code.MaxLocals != 1 {
			t.Errorf("MaxStack/MaxLocals = %d/%d, want 1/1", code.MaxStack, code.MaxLocals)
		}
		if len(code.Code) != 5 {
			t.Errorf("len(Code) = %d, want 5", len(code.Code))
		}
		lines := code.LineNumbers(cf.ConstantPool)
		if lines[0] != 3 || lines[4] != 4 {
			t.Errorf("LineNumbers() = %v", lines)
		}
	})

	t.Run("source file attribute", func(t *testing.T) {
		if got := cf.SourceFile(); got != "TestClass.java" {
			t.Errorf("SourceFile() = %q, want %q", got, "TestClass.java")
		}
	})

	t.Run("inner classes attribute", func(t *testing.T) {
		inner := cf.InnerClasses()
		if len(inner) != 1 {
			t.Fatalf("Expected 1 inner class entry, got %d", len(inner))
		}
		if got := cf.ConstantPool.GetClassName(inner[0].InnerClassInfoIndex); got != "testdata/TestClass$Inner" {
			t.Errorf("inner class = %q", got)
		}
		if got := cf.ConstantPool.GetUtf8(inner[0].InnerNameIndex); got != "Inner" {
			t.Errorf("inner name = %q", got)
		}
	})
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := classfile.Parse(bytes.NewReader([]byte{0xDE, 0xAD, 0xBE, 0xEF, 0, 0, 0, 52}))
	if !errors.Is(err, classfile.ErrBadMagic) {
		t.Errorf("Parse() error = %v, want ErrBadMagic", err)
	}

	data := testClass()
	if _, err := classfile.ParseBytes(data[:len(data)/2]); err == nil {
		t.Error("Expected truncated class file to fail")
	}
}

func TestWideConstants(t *testing.T) {
	b := classfiletest.New("W")
	l := b.Long(1 << 40)
	d := b.Double(2.5)
	s := b.String("after")
	cf, err := classfile.ParseBytes(b.Bytes())
	if err != nil {
		t.Fatalf("ParseBytes() error = %v", err)
	}
	if v, _ := cf.ConstantPool.GetValue(l); v != int64(1<<40) {
		t.Errorf("long = %v", v)
	}
	if v, _ := cf.ConstantPool.GetValue(d); v != 2.5 {
		t.Errorf("double = %v", v)
	}
	if got := cf.ConstantPool.GetString(s); got != "after" {
		t.Errorf("string after wide entries = %q", got)
	}
	if cf.ConstantPool.Entry(l+1) != nil {
		t.Error("second slot of a long should be empty")
	}
}

func TestParseFieldDescriptor(t *testing.T) {
	tests := []struct {
		desc       string
		baseType   string
		className  string
		arrayDepth int
		source     string
	}{
		{"I", "int", "", 0, "int"},
		{"Z", "boolean", "", 0, "boolean"},
		{"Ljava/lang/String;", "", "java/lang/String", 0, "java.lang.String"},
		{"[I", "int", "", 1, "int[]"},
		{"[[D", "double", "", 2, "double[][]"},
		{"[Ljava/lang/Object;", "", "java/lang/Object", 1, "java.lang.Object[]"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			ft := classfile.ParseFieldDescriptor(tt.desc)
			if ft == nil {
				t.Fatalf("ParseFieldDescriptor(%q) returned nil", tt.desc)
			}
			if ft.BaseType != tt.baseType {
				t.Errorf("BaseType = %q, want %q", ft.BaseType, tt.baseType)
			}
			if ft.ClassName != tt.className {
				t.Errorf("ClassName = %q, want %q", ft.ClassName, tt.className)
			}
			if ft.ArrayDepth != tt.arrayDepth {
				t.Errorf("ArrayDepth = %d, want %d", ft.ArrayDepth, tt.arrayDepth)
			}
			if got := ft.String(); got != tt.source {
				t.Errorf("String() = %q, want %q", got, tt.source)
			}
		})
	}

	for _, bad := range []string{"", "X", "L;", "Ljava/lang/String", "II"} {
		if classfile.ParseFieldDescriptor(bad) != nil {
			t.Errorf("ParseFieldDescriptor(%q) should fail", bad)
		}
	}
}

func TestParseMethodDescriptor(t *testing.T) {
	tests := []struct {
		desc       string
		numParams  int
		returnType string
	}{
		{"()V", 0, "void"},
		{"()I", 0, "int"},
		{"(I)V", 1, "void"},
		{"(II)I", 2, "int"},
		{"(Ljava/lang/String;)V", 1, "void"},
		{"(IDLjava/lang/Thread;)Ljava/lang/Object;", 3, "java.lang.Object"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			md := classfile.ParseMethodDescriptor(tt.desc)
			if md == nil {
				t.Fatalf("ParseMethodDescriptor(%q) returned nil", tt.desc)
			}
			if len(md.Parameters) != tt.numParams {
				t.Errorf("len(Parameters) = %d, want %d", len(md.Parameters), tt.numParams)
			}
			if got := md.ReturnString(); got != tt.returnType {
				t.Errorf("ReturnString() = %q, want %q", got, tt.returnType)
			}
		})
	}

	for _, bad := range []string{"", "V", "(", "(I", "(I)", "(Q)V"} {
		if classfile.ParseMethodDescriptor(bad) != nil {
			t.Errorf("ParseMethodDescriptor(%q) should fail", bad)
		}
	}
}
