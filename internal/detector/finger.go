package detector

import "fmt"

// Finger identifies one of the five digits.
type Finger int

const (
	Thumb Finger = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers = 5
)

// Fingers lists every finger in emission order.
var Fingers = [NumFingers]Finger{Thumb, Index, Middle, Ring, Pinky}

var fingerNames = [NumFingers]string{"thumb", "index", "middle", "ring", "pinky"}

var fingerTips = [NumFingers]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}

// String returns the lowercase finger name.
func (f Finger) String() string {
	if f < 0 || int(f) >= NumFingers {
		return fmt.Sprintf("Finger(%d)", int(f))
	}
	return fingerNames[f]
}

// TipIndex returns the landmark index of the finger's tip.
func (f Finger) TipIndex() int {
	return fingerTips[f]
}

// MarshalText encodes the finger by name.
func (f Finger) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// ParseFinger returns the finger with the given name.
func ParseFinger(name string) (Finger, error) {
	for i, n := range fingerNames {
		if n == name {
			return Finger(i), nil
		}
	}
	return 0, fmt.Errorf("unknown finger %q", name)
}
