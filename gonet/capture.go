package gonet

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// Capture appends the raw received stream to a file. It is diagnostic only and
// never read back. A nil Capture discards everything.
type Capture struct {
	f   *os.File
	log zerolog.Logger
}

func OpenCapture(path string, log zerolog.Logger) (*Capture, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening stream capture %s: %w", path, err)
	}
	return &Capture{f: f, log: log}, nil
}

func (c *Capture) Write(p []byte) {
	if c == nil {
		return
	}
	if _, err := c.f.Write(p); err != nil {
		c.log.Warn().Err(err).Str("path", c.f.Name()).Msg("stream capture write failed")
	}
}

func (c *Capture) Close() error {
	if c == nil {
		return nil
	}
	return c.f.Close()
}
