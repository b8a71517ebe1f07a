// Package textbuf provides the append-only buffer the class renderer writes
// into. The buffer carries an indentation prefix that is written after every
// line break emitted through Newline, which is how nested listings end up
// indented without the renderer tracking depth itself.
package textbuf

import (
	"runtime"
	"strings"
)

// LineSeparator is the host platform's line separator.
var LineSeparator = func() string {
	if runtime.GOOS == "windows" {
		return "\r\n"
	}
	return "\n"
}()

type Buffer struct {
	sb     strings.Builder
	prefix string
	sep    string
}

type Option func(*Buffer)

func WithLineSeparator(sep string) Option {
	return func(b *Buffer) {
		if sep != "" {
			b.sep = sep
		}
	}
}

func New(opts ...Option) *Buffer {
	b := &Buffer{sep: LineSeparator}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Append writes text as is. The prefix is not applied.
func (b *Buffer) Append(text string) *Buffer {
	b.sb.WriteString(text)
	return b
}

// Newline writes the line separator followed by the current prefix.
func (b *Buffer) Newline() *Buffer {
	b.sb.WriteString(b.sep)
	b.sb.WriteString(b.prefix)
	return b
}

// AppendBlock writes multi-line text. Every "\n" inside text is replaced by
// Newline so each line lands at the current indentation.
func (b *Buffer) AppendBlock(text string) *Buffer {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			b.Newline()
		}
		b.sb.WriteString(line)
	}
	return b
}

func (b *Buffer) PushPrefix(text string) {
	b.prefix += text
}

// PopPrefix drops the last n bytes of the prefix. Callers must pass the
// length they pushed.
func (b *Buffer) PopPrefix(n int) {
	if n >= len(b.prefix) {
		b.prefix = ""
		return
	}
	if n > 0 {
		b.prefix = b.prefix[:len(b.prefix)-n]
	}
}

// Indent runs fn with text pushed onto the prefix and pops it afterwards,
// even if fn panics.
func (b *Buffer) Indent(text string, fn func()) {
	b.PushPrefix(text)
	defer b.PopPrefix(len(text))
	fn()
}

func (b *Buffer) Prefix() string {
	return b.prefix
}

func (b *Buffer) LineSeparator() string {
	return b.sep
}

func (b *Buffer) Len() int {
	return b.sb.Len()
}

func (b *Buffer) String() string {
	return b.sb.String()
}
