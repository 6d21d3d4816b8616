package detector

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// idleTimeout is how long an unused inference process is kept alive.
const idleTimeout = 30 * time.Second

// YOLODetector implements BoxDetector and PoseDetector using a Python
// inference subprocess that serves one YOLO model.
//
// Each frame is sent as a 4-byte big-endian length followed by JPEG bytes;
// the service answers with one JSON line.
type YOLODetector struct {
	config    Config
	script    string
	classID   int
	cmd       *exec.Cmd
	stdin     io.WriteCloser
	stdout    *bufio.Reader
	mu        sync.Mutex
	started   bool
	idleTimer *time.Timer
}

// NewYOLODetector creates a new detector for the configured model.
// The Python process is started lazily on first detection.
func NewYOLODetector(config Config) (*YOLODetector, error) {
	script := config.Script
	if script == "" {
		script = findServiceScript()
	}
	if script == "" {
		return nil, fmt.Errorf("yolo_service.py not found")
	}
	if _, err := os.Stat(script); err != nil {
		return nil, fmt.Errorf("inference script: %w", err)
	}
	if config.Python == "" {
		config.Python = "python3"
	}

	return &YOLODetector{
		config:  config,
		script:  script,
		classID: config.ClassID,
	}, nil
}

// Detect runs the box model on a frame and returns detections that pass the
// confidence threshold and class filter.
func (d *YOLODetector) Detect(frame *gocv.Mat) ([]Detection, error) {
	resp, err := d.infer(frame)
	if err != nil {
		return nil, err
	}

	result := make([]Detection, 0, len(resp.Detections))
	for _, jd := range resp.Detections {
		det := jd.toDetection()
		if det.Confidence < d.config.MinConfidence {
			continue
		}
		if d.classID != AnyClass && det.ClassID != d.classID {
			continue
		}
		result = append(result, det)
	}
	return result, nil
}

// DetectPose runs the pose model on a frame and returns one Person per body.
func (d *YOLODetector) DetectPose(frame *gocv.Mat) ([]Person, error) {
	resp, err := d.infer(frame)
	if err != nil {
		return nil, err
	}

	result := make([]Person, len(resp.People))
	for i, p := range resp.People {
		result[i] = p.toPerson()
	}
	return result, nil
}

// Close shuts down the Python process.
func (d *YOLODetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shutdown()
}

func (d *YOLODetector) infer(frame *gocv.Mat) (*jsonResponse, error) {
	if frame == nil || frame.Empty() {
		return &jsonResponse{}, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.ensureStarted(); err != nil {
		return nil, err
	}

	buf, err := gocv.IMEncode(".jpg", *frame)
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	data := buf.GetBytes()

	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))

	if _, err := d.stdin.Write(length); err != nil {
		return nil, fmt.Errorf("write length: %w", err)
	}
	if _, err := d.stdin.Write(data); err != nil {
		return nil, fmt.Errorf("write data: %w", err)
	}

	line, err := d.stdout.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	resp, err := parseResponse([]byte(line))
	if err != nil {
		return nil, err
	}

	d.resetIdleTimer()
	return resp, nil
}

func (d *YOLODetector) ensureStarted() error {
	if d.started {
		return nil
	}

	args := []string{
		d.script,
		"--model", d.config.Model,
		"--conf", strconv.FormatFloat(d.config.MinConfidence, 'f', -1, 64),
	}
	d.cmd = exec.Command(d.config.Python, args...)

	stdin, err := d.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}

	stdout, err := d.cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("create stdout pipe: %w", err)
	}

	d.cmd.Stderr = os.Stderr

	if err := d.cmd.Start(); err != nil {
		return fmt.Errorf("start inference service %s: %w", d.config.Model, err)
	}

	d.stdin = stdin
	d.stdout = bufio.NewReader(stdout)
	d.started = true

	// The service announces the model's class names before any frame.
	line, err := d.stdout.ReadString('\n')
	if err != nil {
		d.shutdown()
		return fmt.Errorf("read model classes: %w", err)
	}
	hello, err := parseHello([]byte(line))
	if err != nil {
		d.shutdown()
		return err
	}
	d.classID = resolveClass(hello.Names, d.config.ClassNames, d.config.ClassID)

	return nil
}

func (d *YOLODetector) shutdown() error {
	if !d.started {
		return nil
	}

	if d.idleTimer != nil {
		d.idleTimer.Stop()
		d.idleTimer = nil
	}

	if d.stdin != nil {
		d.stdin.Close()
	}

	err := d.cmd.Wait()
	d.started = false
	d.cmd = nil
	d.stdin = nil
	d.stdout = nil

	return err
}

func (d *YOLODetector) resetIdleTimer() {
	if d.idleTimer != nil {
		d.idleTimer.Stop()
	}
	d.idleTimer = time.AfterFunc(idleTimeout, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.shutdown()
	})
}

func findServiceScript() string {
	execPath, err := os.Executable()
	var execDir string
	if err == nil {
		execDir = filepath.Dir(execPath)
	}

	candidates := []string{
		"scripts/yolo_service.py",
		"../scripts/yolo_service.py",
		filepath.Join(execDir, "scripts/yolo_service.py"),
		filepath.Join(os.Getenv("HOME"), ".battrack/scripts/yolo_service.py"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				return absPath
			}
			return path
		}
	}
	return ""
}

// jsonHello is the first line written by the inference service.
type jsonHello struct {
	Names map[int]string `json:"names"`
}

func parseHello(line []byte) (*jsonHello, error) {
	var hello jsonHello
	if err := json.Unmarshal(line, &hello); err != nil {
		return nil, fmt.Errorf("parse model classes: %w", err)
	}
	return &hello, nil
}

// resolveClass returns the lowest class index whose name matches one of
// wanted, case-insensitively. fallback is returned when nothing matches.
func resolveClass(names map[int]string, wanted []string, fallback int) int {
	if len(wanted) == 0 {
		return fallback
	}

	ids := make([]int, 0, len(names))
	for id := range names {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		name := strings.ToLower(names[id])
		for _, w := range wanted {
			if name == strings.ToLower(w) {
				return id
			}
		}
	}
	return fallback
}

// jsonResponse is the JSON line written by the inference service.
type jsonResponse struct {
	Detections []jsonDetection `json:"detections"`
	People     []jsonPerson    `json:"people"`
}

type jsonDetection struct {
	Box        [4]float64 `json:"box"` // x1, y1, x2, y2
	Confidence float64    `json:"confidence"`
	Class      int        `json:"class"`
}

// jsonPerson holds keypoints as [x, y, confidence] triples.
type jsonPerson struct {
	Keypoints [][3]float64 `json:"keypoints"`
}

func parseResponse(line []byte) (*jsonResponse, error) {
	var resp jsonResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	return &resp, nil
}

func (j jsonDetection) toDetection() Detection {
	return Detection{
		Box:        Box{X1: j.Box[0], Y1: j.Box[1], X2: j.Box[2], Y2: j.Box[3]},
		Confidence: j.Confidence,
		ClassID:    j.Class,
	}
}

func (j jsonPerson) toPerson() Person {
	p := Person{Keypoints: make([]Keypoint, len(j.Keypoints))}
	for i, kp := range j.Keypoints {
		p.Keypoints[i] = Keypoint{X: kp[0], Y: kp[1], Confidence: kp[2]}
	}
	return p
}
