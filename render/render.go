// Package render produces the bytecode-style listing of a class model.
//
// A ClassRenderer walks a class, its fields, its methods and, recursively,
// every inner class a Resolver can find, writing everything into a single
// textbuf.Buffer. Member text comes from a MemberRenderer; BytecodeMembers is
// the default one.
package render

import (
	"github.com/dhamidi/jda/java"
	"github.com/dhamidi/jda/settings"
)

// Resolver finds the model of a class inside a container. Lookups must be
// deterministic for a given container snapshot.
type Resolver interface {
	Resolve(containerID, className string) (*java.ClassModel, bool)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(containerID, className string) (*java.ClassModel, bool)

func (f ResolverFunc) Resolve(containerID, className string) (*java.ClassModel, bool) {
	return f(containerID, className)
}

// MemberRenderer renders single fields and methods. RenderField returns one
// line without a line break; RenderMethod returns as many lines as it needs,
// separated by "\n".
type MemberRenderer interface {
	RenderField(f *java.FieldModel) string
	RenderMethod(c *java.ClassModel, m *java.MethodModel) string
}

var (
	DebugHelpers           = settings.Toggle{ID: "debug-helpers", Label: "Debug Helpers", Default: false}
	AppendBracketsToLabels = settings.Toggle{ID: "append-brackets-to-labels", Label: "Append Brackets to Labels", Default: true}
	ShowMethodDescriptors  = settings.Toggle{ID: "show-method-descriptors", Label: "Show Method Descriptors", Default: true}
	DecompileInnerClasses  = settings.Toggle{ID: "decompile-inner-classes", Label: "Decompile Inner Classes", Default: true}
)

// Toggles lists the renderer toggles in display order.
func Toggles() []settings.Toggle {
	return []settings.Toggle{DebugHelpers, AppendBracketsToLabels, ShowMethodDescriptors, DecompileInnerClasses}
}

// RegisterToggles adds the renderer toggles to reg. It is safe to call more
// than once.
func RegisterToggles(reg *settings.Registry) {
	for _, t := range Toggles() {
		reg.Register(t)
	}
}
