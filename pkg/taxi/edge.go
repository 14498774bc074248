package taxi

import (
	"math"

	"github.com/classicvalues/LiveTraffic/pkg/geo"
)

// EdgeType distinguishes runway from taxiway edges. AnyWay is only valid as
// a search filter.
type EdgeType uint8

const (
	// AnyWay matches every edge type in searches.
	AnyWay EdgeType = iota
	// Runway edges connect two runway endpoints.
	Runway
	// Taxiway edges connect two taxi nodes.
	Taxiway
)

func (t EdgeType) String() string {
	switch t {
	case Runway:
		return "runway"
	case Taxiway:
		return "taxiway"
	default:
		return "any"
	}
}

// Edge connects two network nodes by index. For Runway edges the indices
// point into Airport.RwyEnds, for Taxiway edges into Airport.Nodes; the type
// tag is the discriminant, there is no node subtyping.
//
// Angle is kept normalized to [0, 180), swapping A and B when necessary.
// After any endpoint mutation the edge must be renormalized before it is
// used in heading-indexed search.
type Edge struct {
	Type EdgeType
	A    int
	B    int
	// Angle is the heading from A to B in [0, 180) degrees.
	Angle float64
	// LenM is the edge length in meters.
	LenM float64
}

// normalize restores the angle invariant 0 <= Angle < 180.
func (e *Edge) normalize() {
	if e.Angle >= 180 {
		e.A, e.B = e.B, e.A
		e.Angle -= 180
	}
}

// AngleFrom returns the edge's heading pointing away from node n, which must
// be one of the edge's endpoints.
func (e *Edge) AngleFrom(n int) float64 {
	if n == e.A {
		return e.Angle
	}
	return e.Angle + 180
}

// AngleByHeading returns whichever direction of the edge is closest to the
// given heading.
func (e *Edge) AngleByHeading(heading float64) float64 {
	if math.Abs(geo.HeadingDiff(heading, e.Angle)) < 90 {
		return e.Angle
	}
	return e.Angle + 180
}

// StartByHeading returns the index of the node that is the edge's start when
// traveling in the given direction.
func (e *Edge) StartByHeading(heading float64) int {
	if math.Abs(geo.HeadingDiff(heading, e.Angle)) < 90 {
		return e.A
	}
	return e.B
}

// EndByHeading returns the index of the node that is the edge's end when
// traveling in the given direction.
func (e *Edge) EndByHeading(heading float64) int {
	if math.Abs(geo.HeadingDiff(heading, e.Angle)) < 90 {
		return e.B
	}
	return e.A
}

// Other returns the endpoint opposite to n.
func (e *Edge) Other(n int) int {
	if n == e.A {
		return e.B
	}
	return e.A
}

// setEnd replaces the edge's B node, used when splitting edges.
func (e *Edge) setEnd(b int, angle, lenM float64) {
	e.B = b
	e.Angle = angle
	e.LenM = lenM
	e.normalize()
}
