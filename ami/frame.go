package ami

import (
	"bytes"
	"fmt"
)

// Splitter turns a fragmented byte stream into complete frames. The bytes after
// the last delimiter are retained until the next Feed.
type Splitter struct {
	// MaxRemainder bounds the retained incomplete frame. Zero means unbounded.
	MaxRemainder int

	remainder []byte
}

func NewSplitter(maxRemainder int) *Splitter {
	return &Splitter{MaxRemainder: maxRemainder}
}

// Feed appends chunk to the retained remainder and returns every complete frame,
// trimmed of surrounding whitespace. Empty frames are returned too; the parser
// skips them. Frames may alias chunk and are only valid until the next Feed.
//
// When the incomplete tail exceeds MaxRemainder, Feed still returns the
// complete frames before it, together with ErrFrameTooLarge, and drops the tail.
func (s *Splitter) Feed(chunk []byte) ([][]byte, error) {
	data := chunk
	if len(s.remainder) > 0 {
		data = append(s.remainder, chunk...)
	}

	parts := bytes.Split(data, delimiter)
	frames := make([][]byte, 0, len(parts)-1)
	for _, part := range parts[:len(parts)-1] {
		// The peer sometimes terminates with a single EOL, trimming keeps the
		// content and drops the stray line break.
		frames = append(frames, bytes.TrimSpace(part))
	}

	last := parts[len(parts)-1]
	if s.MaxRemainder > 0 && len(last) > s.MaxRemainder {
		s.remainder = nil
		return frames, fmt.Errorf("%d bytes without delimiter, limit %d: %w", len(last), s.MaxRemainder, ErrFrameTooLarge)
	}

	// Copy, the caller may reuse chunk for the next read.
	s.remainder = append(s.remainder[:0:0], last...)
	return frames, nil
}

// Remainder returns the bytes of the incomplete frame retained so far.
func (s *Splitter) Remainder() []byte {
	return s.remainder
}
