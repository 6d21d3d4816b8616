package detector

import "gocv.io/x/gocv"

// BoxDetector defines the interface for bounding-box object detectors
// (bat, ball, stumps).
type BoxDetector interface {
	// Detect analyzes a video frame and returns the detections in model order.
	// Returns an empty slice if nothing is detected.
	Detect(frame *gocv.Mat) ([]Detection, error)

	// Close releases any resources held by the detector.
	Close() error
}

// PoseDetector defines the interface for person keypoint detectors.
type PoseDetector interface {
	// DetectPose analyzes a video frame and returns one Person per detected
	// body, each carrying the model's keypoints in landmark order.
	DetectPose(frame *gocv.Mat) ([]Person, error)

	// Close releases any resources held by the detector.
	Close() error
}

// AnyClass disables class filtering on a BoxDetector.
const AnyClass = -1

// Class names looked up in the ball and stump models.
var (
	BallClassNames  = []string{"sports ball", "ball", "cricket_ball", "cricket-ball"}
	StumpClassNames = []string{"stumps", "stump"}
)

// Config holds configuration options for one detection model.
type Config struct {
	// Model is the path of the model weights handed to the inference service.
	Model string

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// ClassID keeps only detections of this class. AnyClass keeps everything.
	// When ClassNames is set, ClassID is the fallback used if no model class
	// carries one of those names.
	ClassID int

	// ClassNames are matched against the model's class names to pick the
	// class to keep.
	ClassNames []string

	// Python is the interpreter used to run the inference service.
	Python string

	// Script is the inference service script path.
	Script string
}

// Default confidence thresholds per model.
const (
	BatConfidence   = 0.25
	BallConfidence  = 0.15
	StumpConfidence = 0.25
	PoseConfidence  = 0.25
)

// BatConfig returns the default configuration for the bat model.
func BatConfig() Config {
	return Config{
		Model:         "runs/detect/train/weights/best.pt",
		MinConfidence: BatConfidence,
		ClassID:       AnyClass,
		Python:        "python3",
	}
}

// BallConfig returns the default configuration for the ball model.
func BallConfig() Config {
	return Config{
		Model:         "runs/detect/train/weights/ball.pt",
		MinConfidence: BallConfidence,
		ClassID:       AnyClass,
		ClassNames:    BallClassNames,
		Python:        "python3",
	}
}

// StumpConfig returns the default configuration for the stump model.
func StumpConfig() Config {
	return Config{
		Model:         "runs/detect/train_stumps/weights/best.pt",
		MinConfidence: StumpConfidence,
		ClassID:       0,
		ClassNames:    StumpClassNames,
		Python:        "python3",
	}
}

// PoseConfig returns the default configuration for the pose model.
func PoseConfig() Config {
	return Config{
		Model:         "yolov8n-pose.pt",
		MinConfidence: PoseConfidence,
		ClassID:       AnyClass,
		Python:        "python3",
	}
}
