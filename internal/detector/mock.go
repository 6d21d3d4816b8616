package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockBoxDetector is a test implementation of the BoxDetector interface.
// It allows tests to control the detection results frame by frame.
type MockBoxDetector struct {
	mu         sync.Mutex
	detections []Detection
	script     [][]Detection
	err        error
	calls      int
}

// NewMockBoxDetector creates a new MockBoxDetector instance.
func NewMockBoxDetector() *MockBoxDetector {
	return &MockBoxDetector{}
}

// SetDetections sets the detections returned once the script is exhausted.
func (m *MockBoxDetector) SetDetections(detections []Detection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.detections = detections
}

// SetScript sets per-call results: call i returns script[i].
func (m *MockBoxDetector) SetScript(script [][]Detection) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = script
	m.calls = 0
}

// SetError sets the error that will be returned by Detect.
func (m *MockBoxDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been invoked.
func (m *MockBoxDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the scripted detections or error.
func (m *MockBoxDetector) Detect(frame *gocv.Mat) ([]Detection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := m.calls
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	if call < len(m.script) {
		return m.script[call], nil
	}
	return m.detections, nil
}

// Close is a no-op for the mock detector.
func (m *MockBoxDetector) Close() error {
	return nil
}

// MockPoseDetector is a test implementation of the PoseDetector interface.
type MockPoseDetector struct {
	mu     sync.Mutex
	people []Person
	script [][]Person
	err    error
	calls  int
}

// NewMockPoseDetector creates a new MockPoseDetector instance.
func NewMockPoseDetector() *MockPoseDetector {
	return &MockPoseDetector{}
}

// SetPeople sets the people returned once the script is exhausted.
func (m *MockPoseDetector) SetPeople(people []Person) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.people = people
}

// SetScript sets per-call results: call i returns script[i].
func (m *MockPoseDetector) SetScript(script [][]Person) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = script
	m.calls = 0
}

// SetError sets the error that will be returned by DetectPose.
func (m *MockPoseDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// DetectPose returns the scripted people or error.
func (m *MockPoseDetector) DetectPose(frame *gocv.Mat) ([]Person, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	call := m.calls
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	if call < len(m.script) {
		return m.script[call], nil
	}
	return m.people, nil
}

// Close is a no-op for the mock detector.
func (m *MockPoseDetector) Close() error {
	return nil
}

// BoxAt returns a detection of the given size centered on (cx, cy).
func BoxAt(cx, cy, width, height, confidence float64) Detection {
	return Detection{
		Box: Box{
			X1: cx - width/2,
			Y1: cy - height/2,
			X2: cx + width/2,
			Y2: cy + height/2,
		},
		Confidence: confidence,
	}
}

// PersonWithWrists returns a Person with a full COCO keypoint set where only
// the wrists carry meaningful positions and confidences.
func PersonWithWrists(left, right Keypoint) Person {
	p := Person{Keypoints: make([]Keypoint, NumKeypoints)}
	p.Keypoints[LeftWrist] = left
	p.Keypoints[RightWrist] = right
	return p
}
