package yaml

import (
	"errors"
	"io"

	"github.com/goccy/go-yaml"
)

// Decoder wraps [yaml.Decoder] and converts goccy errors into [*Error].
type Decoder struct {
	d *yaml.Decoder
}

func NewDecoder(r io.Reader, opts ...yaml.DecodeOption) *Decoder {
	return &Decoder{
		d: yaml.NewDecoder(r, opts...),
	}
}

// NewStrictDecoder returns a [Decoder] that rejects fields which do not
// exist in the destination struct.
func NewStrictDecoder(r io.Reader) *Decoder {
	return NewDecoder(r, yaml.DisallowUnknownField())
}

func (d *Decoder) Decode(v any) error {
	err := d.d.Decode(v)
	if err == nil {
		return nil
	}

	var yamlErr yaml.Error
	if errors.As(err, &yamlErr) {
		return &Error{
			Err:   errors.New(yamlErr.GetMessage()),
			Token: yamlErr.GetToken(),
		}
	}

	//nolint:wrapcheck // Return the original error if it's not a [yaml.Error].
	return err
}
