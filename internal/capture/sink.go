package capture

import (
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// DefaultCodec is the FourCC used for annotated output videos.
const DefaultCodec = "mp4v"

// Sink defines the interface for annotated frame writers.
type Sink interface {
	WriteFrame(frame *gocv.Mat) error
	Close() error
}

// VideoWriter writes frames to a video file using GoCV.
type VideoWriter struct {
	writer *gocv.VideoWriter
	path   string
	mu     sync.Mutex
	frames int
}

// NewVideoWriter opens path for writing with the same frame rate and
// resolution as the input.
func NewVideoWriter(path string, fps float64, width, height int) (*VideoWriter, error) {
	w, err := gocv.VideoWriterFile(path, DefaultCodec, fps, width, height, true)
	if err != nil {
		return nil, fmt.Errorf("open writer %s: %w", path, err)
	}
	if !w.IsOpened() {
		w.Close()
		return nil, fmt.Errorf("open writer %s: %w", path, ErrSourceNotOpen)
	}
	return &VideoWriter{writer: w, path: path}, nil
}

// WriteFrame appends one frame to the output file.
func (v *VideoWriter) WriteFrame(frame *gocv.Mat) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.writer == nil {
		return ErrSourceNotOpen
	}
	if err := v.writer.Write(*frame); err != nil {
		return fmt.Errorf("write frame %d: %w", v.frames, err)
	}
	v.frames++
	return nil
}

// Frames returns the number of frames written so far.
func (v *VideoWriter) Frames() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.frames
}

// Close flushes and closes the output file. Calling Close twice is safe.
func (v *VideoWriter) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.writer == nil {
		return nil
	}
	err := v.writer.Close()
	v.writer = nil
	return err
}

// MockSink counts written frames for testing.
type MockSink struct {
	mu     sync.Mutex
	frames int
	closed bool
	err    error
}

// NewMockSink creates a new MockSink.
func NewMockSink() *MockSink {
	return &MockSink{}
}

// SetError makes every WriteFrame fail with err.
func (s *MockSink) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *MockSink) WriteFrame(frame *gocv.Mat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.frames++
	return nil
}

func (s *MockSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Frames returns the number of frames written.
func (s *MockSink) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Closed reports whether Close was called.
func (s *MockSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
