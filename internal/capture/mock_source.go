package capture

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockSource plays back a fixed number of blank frames for testing.
type MockSource struct {
	count    int
	width    int
	height   int
	fps      float64
	index    int
	rewinds  int
	mu       sync.Mutex
	running  bool
	openErr  error
	failFrom int
}

// NewMockSource creates a source yielding count blank frames of the given size.
func NewMockSource(count, width, height int, fps float64) *MockSource {
	return &MockSource{
		count:    count,
		width:    width,
		height:   height,
		fps:      fps,
		failFrom: -1,
	}
}

// SetOpenError makes Open fail with err.
func (s *MockSource) SetOpenError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.openErr = err
}

// FailFrom makes every read at or after frame index n fail.
func (s *MockSource) FailFrom(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failFrom = n
}

func (s *MockSource) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openErr != nil {
		return s.openErr
	}
	s.running = true
	s.index = 0
	return nil
}

func (s *MockSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = false
	return nil
}

func (s *MockSource) ReadFrame() (*gocv.Mat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil, ErrSourceNotOpen
	}
	if s.index >= s.count || (s.failFrom >= 0 && s.index >= s.failFrom) {
		return nil, ErrEndOfStream
	}

	frame := gocv.NewMatWithSize(s.height, s.width, gocv.MatTypeCV8UC3)
	s.index++

	return &frame, nil
}

// Rewind restarts playback from the beginning
func (s *MockSource) Rewind() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return ErrSourceNotOpen
	}
	s.index = 0
	s.rewinds++
	return nil
}

func (s *MockSource) Position() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Rewinds reports how many times Rewind has been called.
func (s *MockSource) Rewinds() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rewinds
}

func (s *MockSource) FPS() float64     { return s.fps }
func (s *MockSource) Size() (int, int) { return s.width, s.height }
func (s *MockSource) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
