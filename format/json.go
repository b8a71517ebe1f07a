package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/jda/access"
	"github.com/dhamidi/jda/classfile"
	"github.com/dhamidi/jda/java"
)

// JSONEncoder writes a summary of the class: names, modifiers and
// signatures in source form, without instructions.
type JSONEncoder struct {
	w     io.Writer
	class *java.ClassModel
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(class *java.ClassModel) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *JSONEncoder) MarshalText() ([]byte, error) {
	data := e.buildClassData()
	return json.MarshalIndent(data, "", "  ")
}

type jsonClass struct {
	Name         string       `json:"name"`
	SimpleName   string       `json:"simpleName"`
	Package      string       `json:"package"`
	SuperClass   string       `json:"superClass,omitempty"`
	Interfaces   []string     `json:"interfaces,omitempty"`
	Modifiers    []string     `json:"modifiers"`
	SourceFile   string       `json:"sourceFile,omitempty"`
	Version      jsonVersion  `json:"version"`
	Fields       []jsonField  `json:"fields,omitempty"`
	Methods      []jsonMethod `json:"methods,omitempty"`
	InnerClasses []string     `json:"innerClasses,omitempty"`
}

type jsonVersion struct {
	Major uint16 `json:"major"`
	Minor uint16 `json:"minor"`
}

type jsonField struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Modifiers []string `json:"modifiers,omitempty"`
	Constant  any      `json:"constant,omitempty"`
}

type jsonMethod struct {
	Name         string   `json:"name"`
	Descriptor   string   `json:"descriptor"`
	ReturnType   string   `json:"returnType,omitempty"`
	Parameters   []string `json:"parameters,omitempty"`
	Modifiers    []string `json:"modifiers,omitempty"`
	Exceptions   []string `json:"exceptions,omitempty"`
	Instructions int      `json:"instructions,omitempty"`
}

func (e *JSONEncoder) buildClassData() jsonClass {
	c := e.class
	data := jsonClass{
		Name:       classfile.InternalToSourceName(c.Name),
		SimpleName: c.SimpleName(),
		Package:    c.Package(),
		Interfaces: sourceNames(c.Interfaces),
		Modifiers:  access.Tokens(c.Access),
		SourceFile: c.SourceFile,
		Version: jsonVersion{
			Major: c.MajorVersion,
			Minor: c.MinorVersion,
		},
		Fields:  e.buildFields(),
		Methods: e.buildMethods(),
	}
	if c.ExplicitSuper() {
		data.SuperClass = classfile.InternalToSourceName(c.SuperName)
	}
	for _, ref := range c.InnerClasses {
		if ref.Name != c.Name {
			data.InnerClasses = append(data.InnerClasses, classfile.InternalToSourceName(ref.Name))
		}
	}
	return data
}

func sourceNames(internal []string) []string {
	if len(internal) == 0 {
		return nil
	}
	out := make([]string, len(internal))
	for i, n := range internal {
		out[i] = classfile.InternalToSourceName(n)
	}
	return out
}

func (e *JSONEncoder) buildFields() []jsonField {
	result := make([]jsonField, len(e.class.Fields))
	for i, f := range e.class.Fields {
		t := f.Descriptor
		if ft := classfile.ParseFieldDescriptor(f.Descriptor); ft != nil {
			t = ft.String()
		}
		result[i] = jsonField{
			Name:      f.Name,
			Type:      t,
			Modifiers: access.MemberTokens(f.Access, access.Field),
			Constant:  f.ConstantValue,
		}
	}
	return result
}

func (e *JSONEncoder) buildMethods() []jsonMethod {
	result := make([]jsonMethod, len(e.class.Methods))
	for i, m := range e.class.Methods {
		jm := jsonMethod{
			Name:       m.Name,
			Descriptor: m.Descriptor,
			Modifiers:  access.MemberTokens(m.Access, access.Method),
			Exceptions: sourceNames(m.Exceptions),
		}
		if md := classfile.ParseMethodDescriptor(m.Descriptor); md != nil {
			jm.ReturnType = md.ReturnString()
			jm.Parameters = md.ParameterStrings()
		}
		if m.Code != nil {
			jm.Instructions = len(m.Code.Instructions)
		}
		result[i] = jm
	}
	return result
}
