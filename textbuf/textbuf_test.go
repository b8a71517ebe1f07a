package textbuf

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppendIsVerbatim(t *testing.T) {
	b := New(WithLineSeparator("\n"))
	b.PushPrefix("  ")
	b.Append("a\nb")
	assert.Equal(t, "a\nb", b.String())
}

func TestNewlineWritesPrefix(t *testing.T) {
	b := New(WithLineSeparator("\n"))
	b.Append("x {")
	b.PushPrefix("     ")
	b.Newline().Append("y")
	b.PopPrefix(5)
	b.Newline().Append("}")
	assert.Equal(t, "x {\n     y\n}", b.String())
}

func TestAppendBlock(t *testing.T) {
	b := New(WithLineSeparator("\r\n"))
	b.PushPrefix(">")
	b.AppendBlock("one\ntwo\r\nthree\n")
	assert.Equal(t, "one\r\n>two\r\n>three\r\n>", b.String())
}

func TestPushPopBalanced(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		b := New()
		b.PushPrefix("base")
		before := b.Prefix()

		var pushed []string
		for j := 0; j < r.Intn(20); j++ {
			s := strings.Repeat(" ", r.Intn(8))
			b.PushPrefix(s)
			pushed = append(pushed, s)
		}
		for j := len(pushed) - 1; j >= 0; j-- {
			b.PopPrefix(len(pushed[j]))
		}

		assert.Equal(t, before, b.Prefix())
	}
}

func TestPopPastEmptyClears(t *testing.T) {
	b := New()
	b.PushPrefix("ab")
	b.PopPrefix(10)
	assert.Equal(t, "", b.Prefix())
	b.PopPrefix(1)
	assert.Equal(t, "", b.Prefix())
}

func TestIndentRestoresOnPanic(t *testing.T) {
	b := New()
	b.PushPrefix("  ")
	func() {
		defer func() { _ = recover() }()
		b.Indent("     ", func() {
			assert.Equal(t, "       ", b.Prefix())
			panic("boom")
		})
	}()
	assert.Equal(t, "  ", b.Prefix())
}

func TestDefaultSeparator(t *testing.T) {
	assert.Equal(t, LineSeparator, New().LineSeparator())
	assert.Equal(t, LineSeparator, New(WithLineSeparator("")).LineSeparator())
}
