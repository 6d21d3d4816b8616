// Package capture provides video file frame sources and sinks using GoCV (OpenCV).
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

// DefaultFPS is used when a container does not report a usable frame rate.
const DefaultFPS = 30.0

var (
	// ErrSourceNotOpen is returned when trying to read from a source that is not open.
	ErrSourceNotOpen = errors.New("video source is not open")

	// ErrEndOfStream is returned when no further frame can be read.
	ErrEndOfStream = errors.New("end of video stream")
)

// Source defines the interface for rewindable frame sources.
type Source interface {
	Open() error
	Close() error
	// ReadFrame reads the next frame. The caller is responsible for closing
	// the returned Mat. ErrEndOfStream marks exhaustion or a read failure.
	ReadFrame() (*gocv.Mat, error)
	// Rewind moves the read position back to the first frame.
	Rewind() error
	// Position returns the index of the next frame to be read.
	Position() int
	FPS() float64
	Size() (width, height int)
	IsOpen() bool
}

// videoFile reads frames from a video file using GoCV.
type videoFile struct {
	path     string
	capture  *gocv.VideoCapture
	mu       sync.Mutex
	running  bool
	fps      float64
	width    int
	height   int
	position int
}

// NewVideoFile creates a new Source for the video file at path.
func NewVideoFile(path string) Source {
	return &videoFile{
		path: path,
		fps:  DefaultFPS,
	}
}

// Open opens the file and reads its frame rate and resolution.
func (v *videoFile) Open() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.running {
		return nil
	}

	capture, err := gocv.OpenVideoCapture(v.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", v.path, err)
	}
	if !capture.IsOpened() {
		capture.Close()
		return fmt.Errorf("open %s: %w", v.path, ErrSourceNotOpen)
	}

	if fps := capture.Get(gocv.VideoCaptureFPS); fps > 0 {
		v.fps = fps
	}
	v.width = int(capture.Get(gocv.VideoCaptureFrameWidth))
	v.height = int(capture.Get(gocv.VideoCaptureFrameHeight))

	v.capture = capture
	v.running = true
	v.position = 0

	return nil
}

// Close closes the file and releases resources.
func (v *videoFile) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running || v.capture == nil {
		v.running = false
		return nil
	}

	err := v.capture.Close()
	v.capture = nil
	v.running = false

	return err
}

// ReadFrame reads the next frame from the file.
func (v *videoFile) ReadFrame() (*gocv.Mat, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running || v.capture == nil {
		return nil, ErrSourceNotOpen
	}

	mat := gocv.NewMat()
	if ok := v.capture.Read(&mat); !ok || mat.Empty() {
		mat.Close()
		return nil, ErrEndOfStream
	}

	v.position++
	return &mat, nil
}

// Rewind seeks back to frame 0.
func (v *videoFile) Rewind() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if !v.running || v.capture == nil {
		return ErrSourceNotOpen
	}

	v.capture.Set(gocv.VideoCapturePosFrames, 0)
	v.position = 0
	return nil
}

// Position returns the index of the next frame to be read.
func (v *videoFile) Position() int {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.position
}

// FPS returns the frame rate reported by the container.
func (v *videoFile) FPS() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.fps
}

// Size returns the frame resolution.
func (v *videoFile) Size() (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.width, v.height
}

// IsOpen returns true if the file is currently open.
func (v *videoFile) IsOpen() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	return v.running
}
