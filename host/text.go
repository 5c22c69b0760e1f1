package host

import (
	"unicode/utf8"

	"golang.org/x/text/encoding"

	"github.com/dynffi/dynffi/errors"
)

// Codec is the text-encoding boundary for the read-only character
// pointer convenience path. The zero Codec encodes UTF-8; NewCodec
// selects any x/text encoding instead.
type Codec struct {
	enc  encoding.Encoding
	name string
}

// UTF8 is the default codec.
var UTF8 = &Codec{name: "utf-8"}

func NewCodec(name string, enc encoding.Encoding) *Codec {
	return &Codec{enc: enc, name: name}
}

func (c *Codec) Name() string { return c.name }

// EncodeZ encodes s and appends a terminator byte. Text the codec
// cannot represent fails with an encoding type error.
func (c *Codec) EncodeZ(s string) ([]byte, error) {
	if !utf8.ValidString(s) {
		return nil, errors.InvalidUTF8(errors.PhaseConvert, nil, []byte(s))
	}
	raw := []byte(s)
	if c.enc != nil {
		out, err := c.enc.NewEncoder().Bytes(raw)
		if err != nil {
			return nil, errors.New(errors.PhaseConvert, errors.KindInvalidUTF8).
				Detail("unable to encode string contents with %s", c.name).
				Cause(err).
				Build()
		}
		raw = out
	}
	return append(raw, 0), nil
}

// Decode converts encoded bytes back to a host string.
func (c *Codec) Decode(b []byte) (string, error) {
	if c.enc == nil {
		if !utf8.Valid(b) {
			return "", errors.InvalidUTF8(errors.PhaseRead, nil, b)
		}
		return string(b), nil
	}
	out, err := c.enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", errors.New(errors.PhaseRead, errors.KindInvalidUTF8).
			Detail("unable to decode string contents with %s", c.name).
			Cause(err).
			Build()
	}
	return string(out), nil
}
