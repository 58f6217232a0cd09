// Package detector provides the hand landmark source consumed by the painter.
package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a landmark position. X and Y are normalized to [0,1] of the
// source frame; Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Fingertip is a single fingertip sample in source pixel space (unmirrored).
type Fingertip struct {
	Finger Finger  `json:"finger"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
}

// Fingertips returns the five fingertip positions scaled to a width x height
// frame, in Fingers order.
func (h *HandLandmarks) Fingertips(width, height int) [NumFingers]Fingertip {
	var tips [NumFingers]Fingertip
	for i, f := range Fingers {
		p := h.Points[f.TipIndex()]
		tips[i] = Fingertip{
			Finger: f,
			X:      p.X * float64(width),
			Y:      p.Y * float64(height),
		}
	}
	return tips
}
