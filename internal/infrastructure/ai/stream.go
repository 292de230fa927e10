package ai

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/doeshing/gitscribe-go/internal/domain"
	"github.com/doeshing/gitscribe-go/internal/ports"
)

const readChunkSize = 4096

// TokenStream drains a streaming generate response. Tokens drives the read
// loop; Text and Err are meaningful once the sequence has finished.
type TokenStream struct {
	body     io.ReadCloser
	endpoint string
	logger   ports.Logger
	lines    lineSplitter
	text     strings.Builder
	err      error
	finished bool
	closed   bool
}

func newTokenStream(body io.ReadCloser, endpoint string, logger ports.Logger) *TokenStream {
	return &TokenStream{body: body, endpoint: endpoint, logger: logger}
}

// Tokens yields each decoded "response" fragment in arrival order. Ranging a
// second time yields nothing.
func (s *TokenStream) Tokens() iter.Seq[string] {
	return func(yield func(string) bool) {
		if s.finished {
			return
		}
		defer s.finish()

		buf := make([]byte, readChunkSize)
		for {
			n, readErr := s.body.Read(buf)
			if n > 0 {
				for _, line := range s.lines.Feed(buf[:n]) {
					if !s.handleLine(line, yield) {
						return
					}
				}
			}
			if readErr == io.EOF {
				if line, ok := s.lines.Flush(); ok {
					s.handleLine(line, yield)
				}
				return
			}
			if readErr != nil {
				s.err = &domain.InferenceTransportError{Endpoint: s.endpoint, Err: fmt.Errorf("read stream: %w", readErr)}
				return
			}
		}
	}
}

// handleLine decodes one complete line. It returns false when the stream
// should stop: done marker, server-reported error, or the consumer quit.
func (s *TokenStream) handleLine(line string, yield func(string) bool) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}

	var chunk struct {
		Response *string `json:"response"`
		Done     bool    `json:"done"`
		Error    string  `json:"error"`
	}
	if err := json.Unmarshal([]byte(line), &chunk); err != nil {
		s.logger.Debug("skipping malformed stream line", map[string]interface{}{"error": err.Error(), "line": line})
		return true
	}
	if chunk.Error != "" {
		s.err = &domain.InferenceProtocolError{Reason: "server error: " + chunk.Error}
		return false
	}
	if chunk.Response != nil && *chunk.Response != "" {
		s.text.WriteString(*chunk.Response)
		if !yield(*chunk.Response) {
			return false
		}
	}
	return !chunk.Done
}

func (s *TokenStream) finish() {
	s.finished = true
	_ = s.Close()
}

// Text returns everything accumulated so far.
func (s *TokenStream) Text() string {
	return s.text.String()
}

// Err returns the first transport or protocol failure seen while draining.
func (s *TokenStream) Err() error {
	return s.err
}

// Close releases the response body. It is safe to call more than once.
func (s *TokenStream) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.body.Close()
}

// lineSplitter turns arbitrary byte chunks into complete lines, carrying any
// trailing partial line over to the next chunk. Splitting happens on raw
// bytes so multi-byte runes cut by a chunk boundary survive intact.
type lineSplitter struct {
	pending []byte
}

// Feed appends chunk and returns every line it completed.
func (l *lineSplitter) Feed(chunk []byte) []string {
	l.pending = append(l.pending, chunk...)
	var lines []string
	for {
		i := bytes.IndexByte(l.pending, '\n')
		if i < 0 {
			break
		}
		lines = append(lines, decodeLine(l.pending[:i]))
		l.pending = l.pending[i+1:]
	}
	if len(lines) > 0 {
		l.pending = append([]byte(nil), l.pending...)
	}
	return lines
}

// Flush returns the unterminated remainder, if any.
func (l *lineSplitter) Flush() (string, bool) {
	if len(bytes.TrimSpace(l.pending)) == 0 {
		l.pending = nil
		return "", false
	}
	line := decodeLine(l.pending)
	l.pending = nil
	return line, true
}

func decodeLine(b []byte) string {
	return strings.ToValidUTF8(strings.TrimSuffix(string(b), "\r"), "\uFFFD")
}
