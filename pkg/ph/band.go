package ph

import "strconv"

// Band is an open voltage interval (mV).
type Band struct {
	Low  float32
	High float32
}

// Contains reports whether v lies strictly inside the band.
func (b Band) Contains(v float32) bool {
	return v > b.Low && v < b.High
}

var (
	// NeutralBand accepts samples taken in the pH 7.0 buffer.
	NeutralBand = Band{Low: 1322, High: 1678}
	// AcidBand accepts samples taken in the pH 4.0 buffer.
	AcidBand = Band{Low: 1854, High: 2210}
)

// Anchor identifies a calibration point.
type Anchor uint8

const (
	NoAnchor Anchor = iota
	Neutral
	Acid
)

func (a Anchor) String() string {
	if a == NoAnchor {
		return "none"
	}
	return strconv.FormatFloat(float64(a.PH()), 'f', 1, 32)
}

// PH returns the reference pH of the anchor.
func (a Anchor) PH() float32 {
	switch a {
	case Neutral:
		return NeutralPH
	case Acid:
		return AcidPH
	default:
		return 0
	}
}

// AnchorFor classifies a calibration sample.
func AnchorFor(v float32) (Anchor, bool) {
	switch {
	case NeutralBand.Contains(v):
		return Neutral, true
	case AcidBand.Contains(v):
		return Acid, true
	default:
		return NoAnchor, false
	}
}
