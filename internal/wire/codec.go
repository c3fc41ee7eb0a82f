package wire

import (
	"encoding/json"
	"io"
)

// Write encodes v as one JSON document terminated by a newline.
func Write(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

// Read decodes exactly one JSON value from r. A complete value ends the
// message whether or not a newline follows, so peers that send a bare
// document without a terminator are still understood.
func Read(r io.Reader, v any) error {
	return json.NewDecoder(r).Decode(v)
}
