// Package java holds the structural models the listing is rendered from.
// Models are plain data: they can be built from a class file, decoded from a
// YAML snapshot or constructed by hand in tests.
package java

import (
	"strings"

	"github.com/dhamidi/jda/bytecode"
)

// ObjectClass is the universal base type. A class extending it is listed
// without an extends clause.
const ObjectClass = "java/lang/Object"

type ClassModel struct {
	// Name is the internal, slash separated name.
	Name         string          `yaml:"name"`
	Access       uint32          `yaml:"access"`
	SuperName    string          `yaml:"super,omitempty"`
	Interfaces   []string        `yaml:"interfaces,omitempty"`
	Fields       []FieldModel    `yaml:"fields,omitempty"`
	Methods      []MethodModel   `yaml:"methods,omitempty"`
	InnerClasses []InnerClassRef `yaml:"inner_classes,omitempty"`
	SourceFile   string          `yaml:"source_file,omitempty"`
	MajorVersion uint16          `yaml:"major,omitempty"`
	MinorVersion uint16          `yaml:"minor,omitempty"`
}

// ExplicitSuper reports whether the class names a superclass other than
// java/lang/Object.
func (c *ClassModel) ExplicitSuper() bool {
	return c.SuperName != "" && c.SuperName != ObjectClass
}

// Package returns the dotted package name, empty for the default package.
func (c *ClassModel) Package() string {
	pkg, _ := splitClassName(c.Name)
	return strings.ReplaceAll(pkg, "/", ".")
}

func (c *ClassModel) SimpleName() string {
	_, simple := splitClassName(c.Name)
	return simple
}

func splitClassName(name string) (pkg, simpleName string) {
	last := strings.LastIndex(name, "/")
	if last == -1 {
		return "", name
	}
	return name[:last], name[last+1:]
}

type FieldModel struct {
	Name       string `yaml:"name"`
	Descriptor string `yaml:"descriptor"`
	Access     uint32 `yaml:"access"`
	Signature  string `yaml:"signature,omitempty"`
	// ConstantValue is int32, int64, float32, float64 or string when the
	// field has a ConstantValue attribute.
	ConstantValue any `yaml:"constant,omitempty"`
}

type MethodModel struct {
	Name       string     `yaml:"name"`
	Descriptor string     `yaml:"descriptor"`
	Access     uint32     `yaml:"access"`
	Signature  string     `yaml:"signature,omitempty"`
	Exceptions []string   `yaml:"exceptions,omitempty"`
	Code       *CodeModel `yaml:"code,omitempty"`
}

type CodeModel struct {
	MaxStack     int             `yaml:"max_stack"`
	MaxLocals    int             `yaml:"max_locals"`
	Instructions bytecode.Stream `yaml:"instructions,omitempty"`
	Handlers     []HandlerModel  `yaml:"handlers,omitempty"`
	// Lines maps bytecode offsets to source line numbers.
	Lines map[int]int `yaml:"lines,omitempty"`
	// Err is set when the code array could not be decoded completely;
	// Instructions then holds everything before the problem.
	Err string `yaml:"error,omitempty"`
}

type HandlerModel struct {
	Start   int `yaml:"start"`
	End     int `yaml:"end"`
	Handler int `yaml:"handler"`
	// Type is the internal name of the caught class, empty for finally.
	Type string `yaml:"type,omitempty"`
}

// InnerClassRef is one InnerClasses entry. It names the nested class only;
// the model itself is found through a resolver and may not exist.
type InnerClassRef struct {
	Name      string `yaml:"name"`
	OuterName string `yaml:"outer,omitempty"`
	InnerName string `yaml:"inner,omitempty"`
	Access    uint32 `yaml:"access,omitempty"`
}
