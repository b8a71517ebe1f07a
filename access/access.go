// Package access turns JVM access bitmasks into modifier keywords.
package access

import (
	"strings"

	"github.com/dhamidi/jda/classfile"
)

// ErrorToken replaces the keyword list when a mask decodes to nothing.
const ErrorToken = "[Error parsing]"

type Kind int

const (
	Field Kind = iota
	Method
)

type rule struct {
	bit   classfile.AccessFlags
	token string
}

// classRules is the fixed priority order for class modifiers. ACC_SUPER is
// left out on purpose, every modern compiler sets it.
var classRules = []rule{
	{classfile.AccPublic, "public"},
	{classfile.AccPrivate, "private"},
	{classfile.AccProtected, "protected"},
	{classfile.AccFinal, "final"},
	{classfile.AccSynthetic, "synthetic"},
	{classfile.AccAbstract, "abstract"},
}

// kindRules picks the single kind keyword. Annotation types also carry
// ACC_INTERFACE, so the most specific bit is tested first.
var kindRules = []rule{
	{classfile.AccAnnotation, "annotation"},
	{classfile.AccEnum, "enum"},
	{classfile.AccInterface, "interface"},
}

var fieldRules = []rule{
	{classfile.AccPublic, "public"},
	{classfile.AccPrivate, "private"},
	{classfile.AccProtected, "protected"},
	{classfile.AccStatic, "static"},
	{classfile.AccFinal, "final"},
	{classfile.AccVolatile, "volatile"},
	{classfile.AccTransient, "transient"},
	{classfile.AccSynthetic, "synthetic"},
	{classfile.AccEnum, "enum"},
}

var methodRules = []rule{
	{classfile.AccPublic, "public"},
	{classfile.AccPrivate, "private"},
	{classfile.AccProtected, "protected"},
	{classfile.AccStatic, "static"},
	{classfile.AccFinal, "final"},
	{classfile.AccSynchronized, "synchronized"},
	{classfile.AccBridge, "bridge"},
	{classfile.AccVarargs, "varargs"},
	{classfile.AccNative, "native"},
	{classfile.AccAbstract, "abstract"},
	{classfile.AccStrict, "strictfp"},
	{classfile.AccSynthetic, "synthetic"},
}

func set(flags uint32, bit classfile.AccessFlags) bool {
	return flags&uint32(bit) != 0
}

// Tokens decodes a class access mask. Exactly one of class, interface, enum
// or annotation is always the last token.
func Tokens(flags uint32) []string {
	var tokens []string
	for _, r := range classRules {
		if set(flags, r.bit) {
			tokens = append(tokens, r.token)
		}
	}
	tokens = append(tokens, kind(flags))
	if len(tokens) == 0 {
		return []string{ErrorToken}
	}
	return tokens
}

func kind(flags uint32) string {
	for _, r := range kindRules {
		if set(flags, r.bit) {
			return r.token
		}
	}
	return "class"
}

// String is Tokens joined by single spaces.
func String(flags uint32) string {
	return strings.Join(Tokens(flags), " ")
}

// MemberTokens decodes the modifiers of a field or method. Unlike class
// masks an empty result is legal here: package-private members carry no
// keyword at all.
func MemberTokens(flags uint32, kind Kind) []string {
	rules := fieldRules
	if kind == Method {
		rules = methodRules
	}
	var tokens []string
	for _, r := range rules {
		if set(flags, r.bit) {
			tokens = append(tokens, r.token)
		}
	}
	return tokens
}
