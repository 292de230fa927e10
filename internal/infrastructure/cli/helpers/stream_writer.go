package helpers

import (
	"io"
	"strings"
)

// StreamWriter relays inference tokens to a writer as they arrive.
type StreamWriter struct {
	out     io.Writer
	written int
	lastNL  bool
	onFirst func()
}

// NewStreamWriter builds a StreamWriter. onFirst, if set, runs once before the
// first token is written (used to clear a spinner).
func NewStreamWriter(out io.Writer, onFirst func()) *StreamWriter {
	return &StreamWriter{out: out, onFirst: onFirst}
}

// WriteChunk writes text verbatim. Write errors are ignored; the full text is
// still accumulated by the inference client.
func (s *StreamWriter) WriteChunk(text string) {
	if text == "" {
		return
	}
	if s.onFirst != nil {
		s.onFirst()
		s.onFirst = nil
	}
	n, _ := io.WriteString(s.out, text)
	s.written += n
	s.lastNL = strings.HasSuffix(text, "\n")
}

// Done terminates the output with a newline when the stream did not.
func (s *StreamWriter) Done() {
	if s.written > 0 && !s.lastNL {
		_, _ = io.WriteString(s.out, "\n")
	}
}

// Written reports how many bytes were relayed.
func (s *StreamWriter) Written() int {
	return s.written
}
