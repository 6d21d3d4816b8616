// Package detector provides object and pose detection interfaces and types
// for bat swing analysis.
package detector

import "image"

// Pose keypoint indices following the COCO convention used by YOLO pose models.
const (
	Nose          = 0
	LeftShoulder  = 5
	RightShoulder = 6
	LeftElbow     = 7
	RightElbow    = 8
	LeftWrist     = 9
	RightWrist    = 10
	NumKeypoints  = 17
)

// Box is an axis-aligned bounding box in pixel coordinates.
type Box struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Height returns the box height in pixels.
func (b Box) Height() float64 {
	return b.Y2 - b.Y1
}

// Width returns the box width in pixels.
func (b Box) Width() float64 {
	return b.X2 - b.X1
}

// Rect returns the box as an integer image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(int(b.X1), int(b.Y1), int(b.X2), int(b.Y2))
}

// Center returns the integer pixel center of the box. Corners are truncated
// to whole pixels before the midpoint is taken.
func (b Box) Center() image.Point {
	x1, y1 := int(b.X1), int(b.Y1)
	x2, y2 := int(b.X2), int(b.Y2)
	return image.Point{X: (x1 + x2) / 2, Y: (y1 + y2) / 2}
}

// Detection is a single bounding-box result from a BoxDetector.
type Detection struct {
	Box        Box     `json:"box"`
	Confidence float64 `json:"confidence"`
	ClassID    int     `json:"class_id"`
}

// Keypoint is one pose landmark with its detection confidence.
type Keypoint struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Confidence float64 `json:"confidence"`
}

// Person is the keypoint set of one detected body.
type Person struct {
	Keypoints []Keypoint `json:"keypoints"`
}

// Keypoint returns the keypoint at index i. A missing index yields a zero
// Keypoint, whose confidence never passes a gate.
func (p Person) Keypoint(i int) Keypoint {
	if i < 0 || i >= len(p.Keypoints) {
		return Keypoint{}
	}
	return p.Keypoints[i]
}

// LeftWrist returns the left wrist keypoint.
func (p Person) LeftWrist() Keypoint {
	return p.Keypoint(LeftWrist)
}

// RightWrist returns the right wrist keypoint.
func (p Person) RightWrist() Keypoint {
	return p.Keypoint(RightWrist)
}

// Centers returns the box centers of detections, preserving order.
func Centers(detections []Detection) []image.Point {
	if len(detections) == 0 {
		return nil
	}
	centers := make([]image.Point, len(detections))
	for i, d := range detections {
		centers[i] = d.Box.Center()
	}
	return centers
}

// Best returns the highest-confidence detection. The first one wins on ties.
func Best(detections []Detection) (Detection, bool) {
	if len(detections) == 0 {
		return Detection{}, false
	}
	best := detections[0]
	for _, d := range detections[1:] {
		if d.Confidence > best.Confidence {
			best = d
		}
	}
	return best, true
}
