package taxi

import (
	"time"

	"github.com/paulmach/orb"
)

// Edge-association tags carried on a Position's EdgeIdx alongside real edge
// indices (>= 0).
const (
	// EdgeUnknown means no snap attempt has resolved this position yet.
	EdgeUnknown = -1
	// EdgeUnavail means a snap attempt found no edge, or the position was
	// synthesized and must never be re-snapped.
	EdgeUnavail = -2
)

// Phase tags a position with what the aircraft is doing there.
type Phase uint8

const (
	// PhaseNone is an untagged position.
	PhaseNone Phase = iota
	// PhaseTaxi marks a position on a taxiway.
	PhaseTaxi
	// PhaseTouchDown marks a computed landing point on a runway.
	PhaseTouchDown
)

// Position is a timestamped aircraft position report as handed over by the
// tracking-data channels, plus the edge association the snapper maintains.
type Position struct {
	Lat     float64
	Lon     float64
	AltM    float64
	TS      time.Time
	Heading float64
	Phase   Phase
	// EdgeIdx is the index of the edge this position was snapped to, or
	// EdgeUnknown / EdgeUnavail.
	EdgeIdx int
}

// NewPosition returns a position report with no edge association.
func NewPosition(lat, lon, altM float64, ts time.Time, heading float64) Position {
	return Position{Lat: lat, Lon: lon, AltM: altM, TS: ts, Heading: heading, EdgeIdx: EdgeUnknown}
}

// HasEdge reports whether the position is resolved to an edge.
func (p *Position) HasEdge() bool { return p.EdgeIdx >= 0 }

// Point returns the position as an orb point (lon/lat order).
func (p *Position) Point() orb.Point { return orb.Point{p.Lon, p.Lat} }

// Conversion factors between aviation units and SI.
const (
	// MSPerFpm converts feet per minute to meters per second.
	MSPerFpm = 0.00508
	// KtPerMS converts meters per second to knots.
	KtPerMS = 1.943844
)

// FlightModel carries the aircraft-performance numbers the snapping and
// runway-selection code depends on. It is an injected capability: the values
// come from whatever flight model the caller maintains per aircraft type.
type FlightModel struct {
	// VSIFinalFpm is the typical final-approach vertical speed in feet per
	// minute, negative for descent.
	VSIFinalFpm float64
	// FlapsDownSpeedKt is the flaps-down maneuvering speed in knots.
	FlapsDownSpeedKt float64
	// MaxTaxiSpeedMS is the maximum taxi speed in meters per second.
	MaxTaxiSpeedMS float64
	// PitchFlareDeg is the pitch to assume at touchdown.
	PitchFlareDeg float64
}

// DefaultFlightModel returns numbers suitable for a medium airliner.
func DefaultFlightModel() FlightModel {
	return FlightModel{
		VSIFinalFpm:      -600,
		FlapsDownSpeedKt: 140,
		MaxTaxiSpeedMS:   15,
		PitchFlareDeg:    6,
	}
}
