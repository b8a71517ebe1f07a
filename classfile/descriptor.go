package classfile

import "strings"

var baseTypes = map[byte]string{
	'B': "byte",
	'C': "char",
	'D': "double",
	'F': "float",
	'I': "int",
	'J': "long",
	'S': "short",
	'Z': "boolean",
}

type FieldType struct {
	BaseType   string
	ClassName  string
	ArrayDepth int
}

// String renders the type in source form, e.g. "java.lang.String[][]".
func (ft *FieldType) String() string {
	name := ft.BaseType
	if name == "" {
		name = InternalToSourceName(ft.ClassName)
	}
	return name + strings.Repeat("[]", ft.ArrayDepth)
}

type MethodDescriptor struct {
	Parameters []FieldType
	// ReturnType is nil for void.
	ReturnType *FieldType
}

func (md *MethodDescriptor) ReturnString() string {
	if md.ReturnType == nil {
		return "void"
	}
	return md.ReturnType.String()
}

func (md *MethodDescriptor) ParameterStrings() []string {
	out := make([]string, len(md.Parameters))
	for i := range md.Parameters {
		out[i] = md.Parameters[i].String()
	}
	return out
}

func ParseFieldDescriptor(desc string) *FieldType {
	ft, n := parseFieldType(desc, 0)
	if ft == nil || n != len(desc) {
		return nil
	}
	return ft
}

// ParseMethodDescriptor returns nil for anything that is not a well formed
// method descriptor.
func ParseMethodDescriptor(desc string) *MethodDescriptor {
	if !strings.HasPrefix(desc, "(") {
		return nil
	}
	md := &MethodDescriptor{}
	i := 1
	for i < len(desc) && desc[i] != ')' {
		ft, n := parseFieldType(desc, i)
		if ft == nil {
			return nil
		}
		md.Parameters = append(md.Parameters, *ft)
		i += n
	}
	if i >= len(desc) {
		return nil
	}
	i++
	if desc[i:] == "V" {
		return md
	}
	ft, n := parseFieldType(desc, i)
	if ft == nil || i+n != len(desc) {
		return nil
	}
	md.ReturnType = ft
	return md
}

func parseFieldType(desc string, start int) (*FieldType, int) {
	ft := &FieldType{}
	i := start
	for i < len(desc) && desc[i] == '[' {
		ft.ArrayDepth++
		i++
	}
	if i >= len(desc) {
		return nil, 0
	}
	if base, ok := baseTypes[desc[i]]; ok {
		ft.BaseType = base
		return ft, i - start + 1
	}
	if desc[i] != 'L' {
		return nil, 0
	}
	end := strings.IndexByte(desc[i:], ';')
	if end <= 1 {
		return nil, 0
	}
	ft.ClassName = desc[i+1 : i+end]
	return ft, i - start + end + 1
}

func InternalToSourceName(name string) string {
	return strings.ReplaceAll(name, "/", ".")
}

func SourceToInternalName(name string) string {
	return strings.ReplaceAll(name, ".", "/")
}
