package render

import (
	"strings"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/jda/access"
	"github.com/dhamidi/jda/java"
	"github.com/dhamidi/jda/settings"
	"github.com/dhamidi/jda/textbuf"
)

const (
	// indent is the fixed step for field lines and nested classes.
	indent = "     "

	unresolvedComment = "// The following inner classes couldn't be decompiled: "
	unavailable       = "// class model unavailable"
)

var log = commonlog.GetLogger("jda.render")

type ClassRenderer struct {
	resolver Resolver
	settings *settings.Registry
	members  MemberRenderer
	sep      string
}

type Option func(*ClassRenderer)

// WithSettings makes the renderer consult reg instead of settings.Default.
func WithSettings(reg *settings.Registry) Option {
	return func(r *ClassRenderer) {
		r.settings = reg
	}
}

func WithMembers(m MemberRenderer) Option {
	return func(r *ClassRenderer) {
		r.members = m
	}
}

// WithLineSeparator overrides the host line separator.
func WithLineSeparator(sep string) Option {
	return func(r *ClassRenderer) {
		r.sep = sep
	}
}

// NewClassRenderer registers the renderer toggles in its registry. A nil
// resolver resolves nothing, so every inner class is reported as unresolved.
func NewClassRenderer(resolver Resolver, opts ...Option) *ClassRenderer {
	r := &ClassRenderer{
		resolver: resolver,
		settings: settings.Default,
	}
	for _, opt := range opts {
		opt(r)
	}
	RegisterToggles(r.settings)
	if r.members == nil {
		r.members = NewBytecodeMembers(r.settings)
	}
	return r
}

func (r *ClassRenderer) Settings() *settings.Registry {
	return r.settings
}

// Render returns the listing of cls and every inner class reachable from it.
func (r *ClassRenderer) Render(containerID string, cls *java.ClassModel) string {
	buf := textbuf.New(textbuf.WithLineSeparator(r.sep))
	return r.RenderTo(buf, containerID, cls).String()
}

// RenderTo writes the listing into buf starting at the current position and
// prefix, and returns buf.
func (r *ClassRenderer) RenderTo(buf *textbuf.Buffer, containerID string, cls *java.ClassModel) *textbuf.Buffer {
	if cls == nil {
		return buf.Append(unavailable)
	}
	st := &state{buf: buf, rendered: newNameSet()}
	r.render(st, containerID, cls)
	log.Debugf("rendered %s from %q: %s", cls.Name, containerID, strings.Join(st.rendered.order, ", "))
	return buf
}

// state lives for one top-level render.
type state struct {
	buf      *textbuf.Buffer
	rendered *nameSet
}

// nameSet remembers insertion order so the debug log lists classes in the
// order they were written.
type nameSet struct {
	order []string
	seen  map[string]bool
}

func newNameSet() *nameSet {
	return &nameSet{seen: make(map[string]bool)}
}

func (s *nameSet) add(name string) {
	if s.seen[name] {
		return
	}
	s.seen[name] = true
	s.order = append(s.order, name)
}

func (s *nameSet) has(name string) bool {
	return s.seen[name]
}

func (r *ClassRenderer) render(st *state, containerID string, cls *java.ClassModel) {
	buf := st.buf
	st.rendered.add(cls.Name)

	buf.Append(access.String(cls.Access)).Append(" ").Append(cls.Name)
	if cls.ExplicitSuper() {
		buf.Append(" extends ").Append(cls.SuperName)
	}
	if len(cls.Interfaces) > 0 {
		buf.Append(" implements ").Append(strings.Join(cls.Interfaces, ", "))
	}
	buf.Append(" {").Newline()

	for i := range cls.Fields {
		buf.Append(indent).AppendBlock(r.members.RenderField(&cls.Fields[i])).Newline()
		if i == len(cls.Fields)-1 {
			buf.Newline()
		}
	}

	for i := range cls.Methods {
		buf.AppendBlock(r.members.RenderMethod(cls, &cls.Methods[i]))
		if i < len(cls.Methods)-1 {
			buf.Newline()
		}
	}

	var unresolved []string
	if r.settings.IsSelected(DecompileInnerClasses.ID) {
		for _, ref := range cls.InnerClasses {
			if ref.Name == "" || st.rendered.has(ref.Name) {
				continue
			}
			st.rendered.add(ref.Name)
			inner, ok := r.resolve(containerID, ref.Name)
			if !ok {
				log.Debugf("inner class %s of %s not found in %q", ref.Name, cls.Name, containerID)
				unresolved = append(unresolved, ref.Name)
				continue
			}
			buf.Indent(indent, func() {
				buf.Append(buf.LineSeparator()).Newline()
				r.render(st, containerID, inner)
			})
			buf.Newline()
		}
	}

	if len(unresolved) > 0 {
		buf.Append(unresolvedComment)
		for _, name := range unresolved {
			buf.Append(name).Append(" ")
		}
		buf.Newline()
	}

	buf.Append("}")
}

func (r *ClassRenderer) resolve(containerID, name string) (*java.ClassModel, bool) {
	if r.resolver == nil {
		return nil, false
	}
	cls, ok := r.resolver.Resolve(containerID, name)
	return cls, ok && cls != nil
}
