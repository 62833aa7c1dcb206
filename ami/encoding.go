package ami

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// DefaultEncoding is a permissive single-byte encoding: every byte decodes,
// undefined ones become U+FFFD.
const DefaultEncoding = "us-ascii"

// Decoder converts frame bytes into text. It never fails on invalid input.
type Decoder struct {
	name string
	enc  encoding.Encoding
}

// NewDecoder looks up the encoding by its WHATWG label ("us-ascii",
// "iso-8859-1", "windows-1252", "utf-8", ...). An empty name selects
// DefaultEncoding.
func NewDecoder(name string) (*Decoder, error) {
	if strings.TrimSpace(name) == "" {
		name = DefaultEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", name, ErrUnknownEncoding)
	}
	return &Decoder{name: name, enc: enc}, nil
}

func (d *Decoder) Name() string {
	return d.name
}

func (d *Decoder) Decode(b []byte) string {
	out, err := d.enc.NewDecoder().Bytes(b)
	if err != nil {
		// Decoders from htmlindex substitute instead of failing; keep the bytes
		// with invalid sequences replaced if one ever does.
		return strings.ToValidUTF8(string(b), "�")
	}
	return string(out)
}
