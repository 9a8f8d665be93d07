package sse

import (
	"errors"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
)

// ErrStreamClosed is returned when writing to a closed stream.
var ErrStreamClosed = errors.New("sse: stream closed")

// Handle is an open outbound stream for one connected client.
type Handle interface {
	// Send writes one payload as a data frame.
	Send(payload []byte) error
	// Close asks the stream to end. It must be idempotent.
	Close() error
}

// Stream is the Handle bound to an HTTP response. Writes are serialized and
// refused once Close or Finish has been called.
type Stream struct {
	mu      sync.Mutex
	w       io.Writer
	flusher http.Flusher

	closed   atomic.Bool
	finished bool
	done     chan struct{}
	once     sync.Once
}

// NewStream wraps a response writer that supports flushing.
func NewStream(w io.Writer, flusher http.Flusher) *Stream {
	return &Stream{
		w:       w,
		flusher: flusher,
		done:    make(chan struct{}),
	}
}

// Send writes payload as a data frame and flushes it.
func (s *Stream) Send(payload []byte) error {
	return s.write(EncodeFrame(payload))
}

// SendJSON marshals v and writes it as a data frame.
func (s *Stream) SendJSON(v interface{}) error {
	frame, err := EncodeJSON(v)
	if err != nil {
		return err
	}
	return s.write(frame)
}

// Comment writes a comment frame, used for heartbeats.
func (s *Stream) Comment(text string) error {
	return s.write(EncodeComment(text))
}

func (s *Stream) write(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.finished || s.closed.Load() {
		return ErrStreamClosed
	}
	if _, err := s.w.Write(frame); err != nil {
		return err
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// Close signals the owning handler to end the stream. It never blocks on an
// in-flight write.
func (s *Stream) Close() error {
	s.closed.Store(true)
	s.once.Do(func() { close(s.done) })
	return nil
}

// Done is closed once Close has been called.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Finish waits for any in-flight write and rejects all later ones. The HTTP
// handler calls it before returning so the response writer is never touched
// after ServeHTTP ends.
func (s *Stream) Finish() {
	_ = s.Close()
	s.mu.Lock()
	s.finished = true
	s.mu.Unlock()
}
