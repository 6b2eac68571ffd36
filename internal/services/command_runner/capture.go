package command_runner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"golang-admin-command-runner/internal/services/operations"
)

// Sink accumulates one output stream of an invocation.
type Sink interface {
	io.Writer
	String() string
	Truncated() bool
}

// SinkFactory builds a sink holding at most limit bytes; zero means unbounded.
type SinkFactory func(limit int) Sink

type boundedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func NewBoundedBuffer(limit int) Sink {
	return &boundedBuffer{limit: limit}
}

// Write keeps at most limit bytes and silently drops the rest, so operations
// never fail because their output was too long.
func (b *boundedBuffer) Write(p []byte) (int, error) {
	if b.limit > 0 {
		remaining := b.limit - b.buf.Len()
		if remaining <= 0 {
			b.truncated = b.truncated || len(p) > 0
			return len(p), nil
		}
		if len(p) > remaining {
			b.buf.Write(p[:remaining])
			b.truncated = true
			return len(p), nil
		}
	}
	return b.buf.Write(p)
}

func (b *boundedBuffer) String() string { return b.buf.String() }

func (b *boundedBuffer) Truncated() bool { return b.truncated }

// CaptureScope owns the output destinations of exactly one invocation.
// Writers handed out by Streams stop accepting data once the scope is closed.
type CaptureScope struct {
	stdout Sink
	stderr Sink
	fault  error
	closed bool
	mutex  sync.Mutex
}

func OpenCaptureScope(limit int, newSink SinkFactory) *CaptureScope {
	if newSink == nil {
		newSink = NewBoundedBuffer
	}
	return &CaptureScope{
		stdout: newSink(limit),
		stderr: newSink(limit),
	}
}

func (s *CaptureScope) Streams() operations.Streams {
	return operations.Streams{
		Stdout: &scopeWriter{scope: s, sink: s.stdout, name: "stdout"},
		Stderr: &scopeWriter{scope: s, sink: s.stderr, name: "stderr"},
	}
}

// Close detaches the scope. It reports a fault recorded by a sink, and
// closing twice is itself a fault.
func (s *CaptureScope) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.closed {
		return &RedirectionFaultError{Op: "close", Err: errors.New("capture scope closed twice")}
	}
	s.closed = true
	return s.fault
}

func (s *CaptureScope) Stdout() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.stdout.String()
}

func (s *CaptureScope) Stderr() string {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.stderr.String()
}

func (s *CaptureScope) Truncated() bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.stdout.Truncated() || s.stderr.Truncated()
}

type scopeWriter struct {
	scope *CaptureScope
	sink  Sink
	name  string
}

func (w *scopeWriter) Write(p []byte) (n int, err error) {
	w.scope.mutex.Lock()
	defer w.scope.mutex.Unlock()

	if w.scope.closed {
		return 0, ErrCaptureClosed
	}
	if w.scope.fault != nil {
		return 0, w.scope.fault
	}

	// bytes.Buffer panics with ErrTooLarge when it cannot grow
	defer func() {
		if r := recover(); r != nil {
			w.scope.fault = &RedirectionFaultError{
				Op:  "write " + w.name,
				Err: fmt.Errorf("%v", r),
			}
			n, err = 0, w.scope.fault
		}
	}()
	n, err = w.sink.Write(p)
	if err != nil {
		w.scope.fault = &RedirectionFaultError{Op: "write " + w.name, Err: err}
		return n, w.scope.fault
	}
	return n, nil
}
