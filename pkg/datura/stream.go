package datura

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/tidwall/gjson"
)

const doneSentinel = "[DONE]"

// Stream is a lazy, finite, non-restartable sequence of response chunks from
// a streaming AI search. Chunks are read from the wire on demand; the body is
// never buffered whole.
//
// A Stream is not safe for concurrent use. Callers must either drain it with
// Recv until io.EOF or abort it with Close, which terminates the in-flight
// read and releases the connection.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner

	mu     sync.Mutex
	closed bool
	done   bool
	err    error
}

// newStream wraps a streaming response body.
func newStream(body io.ReadCloser) *Stream {
	scanner := bufio.NewScanner(body)
	// Individual chunks can exceed bufio's default 64KB line limit.
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	return &Stream{
		body:    body,
		scanner: scanner,
	}
}

// Recv returns the next chunk in arrival order. It blocks until the
// transport delivers one, returns io.EOF once the server closes the
// connection or signals completion, and returns a transport error when the
// connection drops mid-stream.
//
// SSE-framed lines have their "data: " prefix stripped; comment and blank
// lines are skipped; any other non-empty line is delivered as-is.
func (s *Stream) Recv() (*Chunk, error) {
	s.mu.Lock()
	closed, done, err := s.closed, s.done, s.err
	s.mu.Unlock()

	if closed || done {
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}

	for s.scanner.Scan() {
		line := s.scanner.Text()

		// Skip SSE keep-alive comments and event separators.
		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}

		payload, framed := strings.CutPrefix(line, "data: ")
		if !framed {
			payload = line
		}

		if payload == doneSentinel {
			s.finish()
			return nil, io.EOF
		}

		return &Chunk{raw: []byte(payload)}, nil
	}

	if err := s.scanner.Err(); err != nil {
		s.mu.Lock()
		// Close aborts the read; that is termination, not failure.
		if s.closed {
			s.mu.Unlock()
			return nil, io.EOF
		}
		s.err = NewTransportError(err)
		err = s.err
		s.mu.Unlock()
		return nil, err
	}

	// Server closed the connection: the sequence is complete.
	s.finish()
	return nil, io.EOF
}

// finish marks the stream complete and releases the connection.
func (s *Stream) finish() {
	s.mu.Lock()
	alreadyDone := s.done
	s.done = true
	s.mu.Unlock()

	if !alreadyDone {
		s.body.Close()
	}
}

// Close aborts the stream. Any blocked or subsequent Recv returns io.EOF.
// Closing a drained or already-closed stream is a no-op.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed || s.done {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	return s.body.Close()
}

// Chunk is a single partially-decoded unit of a streaming response. The
// service defines the chunk contents; most are JSON fragments, but plain
// text lines are preserved verbatim.
type Chunk struct {
	raw []byte
}

// Raw returns the chunk payload with transport framing removed.
func (c *Chunk) Raw() []byte {
	return c.raw
}

// Text returns the chunk payload as a string.
func (c *Chunk) Text() string {
	return string(c.raw)
}

// JSON reports whether the chunk is a complete JSON document.
func (c *Chunk) JSON() bool {
	return json.Valid(c.raw)
}

// Get returns the value at the given gjson path within the chunk. The zero
// gjson.Result is returned for non-JSON chunks or missing paths.
func (c *Chunk) Get(path string) gjson.Result {
	return gjson.GetBytes(c.raw, path)
}
