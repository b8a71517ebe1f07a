package format

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/dhamidi/jda/java"
)

// YAMLEncoder writes the full model, instructions included, in the form
// container snapshots use.
type YAMLEncoder struct {
	w     io.Writer
	class *java.ClassModel
}

func NewYAMLEncoder(w io.Writer) *YAMLEncoder {
	return &YAMLEncoder{w: w}
}

func (e *YAMLEncoder) Encode(class *java.ClassModel) error {
	e.class = class
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *YAMLEncoder) MarshalText() ([]byte, error) {
	return yaml.Marshal(e.class)
}
