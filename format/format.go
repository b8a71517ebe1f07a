// Package format encodes class models for tools that read them instead of
// the listing.
package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/jda/java"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(class *java.ClassModel) error
}

// NewEncoder returns the encoder registered under name, "json" or "yaml".
func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "json":
		return NewJSONEncoder(w), nil
	case "yaml":
		return NewYAMLEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format %q, want json or yaml", name)
}
