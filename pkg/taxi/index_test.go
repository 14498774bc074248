package taxi

import (
	"math"
	"testing"
)

func TestFindEdgesForHeading(t *testing.T) {
	a := NewAirport("TEST", nil)
	e5 := addSegment(t, a, 0.00, 0, 5, 60)
	e90 := addSegment(t, a, 0.01, 0, 90, 60)
	e175 := addSegment(t, a, 0.02, 0, 175, 60)
	a.SortEdges()

	has := func(found []int, want int) bool {
		for _, e := range found {
			if e == want {
				return true
			}
		}
		return false
	}

	cases := []struct {
		heading, tol float64
		want         []int
	}{
		{90, 5, []int{e90}},
		{85, 10, []int{e90}},
		// A window across 0/180 must pick up edges on both sides.
		{2, 10, []int{e5, e175}},
		{179, 8, []int{e5, e175}},
		// Reciprocal headings address the same undirected edges.
		{270, 5, []int{e90}},
		{182, 10, []int{e5, e175}},
		{45, 10, nil},
	}
	for _, c := range cases {
		found := a.FindEdgesForHeading(c.heading, c.tol, AnyWay)
		if len(found) != len(c.want) {
			t.Errorf("FindEdgesForHeading(%v, %v) = %v, want %v", c.heading, c.tol, found, c.want)
			continue
		}
		for _, w := range c.want {
			if !has(found, w) {
				t.Errorf("FindEdgesForHeading(%v, %v) = %v, missing edge %d", c.heading, c.tol, found, w)
			}
		}
	}
}

func TestFindEdgesForHeadingRestrict(t *testing.T) {
	a := NewAirport("TEST", nil)
	eTaxi := addSegment(t, a, 0, 0, 90, 60)
	a.AddRunway(0.01, 0, 0, "09", 0.01, 0.01, 0, "27")
	eRwy := len(a.Edges) - 1
	a.SortEdges()

	rwys := a.FindEdgesForHeading(90, 10, Runway)
	if len(rwys) != 1 || rwys[0] != eRwy {
		t.Errorf("runway-restricted search = %v, want [%d]", rwys, eRwy)
	}
	all := a.FindEdgesForHeading(90, 10, AnyWay)
	if len(all) != 2 {
		t.Errorf("unrestricted search = %v, want both %d and %d", all, eTaxi, eRwy)
	}
}

func TestFindClosestEdge(t *testing.T) {
	a := NewAirport("TEST", nil)
	eIdx := addSegment(t, a, 0, 0.001, 90, 200)
	a.SortEdges()

	// A couple of meters off the centerline snaps onto it.
	m, ok := a.FindClosestEdge(0.00003, 0.001, 92, 15, 30, 80, NodeNone)
	if !ok {
		t.Fatal("FindClosestEdge found no match near the edge")
	}
	if m.Edge != eIdx {
		t.Errorf("matched edge %d, want %d", m.Edge, eIdx)
	}
	if math.Abs(m.Lat) > 1e-7 || math.Abs(m.Lon-0.001) > 1e-7 {
		t.Errorf("base point (%v, %v), want (0, 0.001)", m.Lat, m.Lon)
	}

	// Too far off: no match.
	if _, ok := a.FindClosestEdge(0.001, 0.001, 90, 15, 30, 80, NodeNone); ok {
		t.Error("FindClosestEdge matched an edge ~110m away with maxDist 15")
	}

	// Heading off by more than the extended tolerance: no match.
	if _, ok := a.FindClosestEdge(0.00003, 0.001, 5, 15, 30, 80, NodeNone); ok {
		t.Error("FindClosestEdge matched despite ~85 deg heading difference")
	}

	// The edge itself can be excluded.
	if _, ok := a.FindClosestEdge(0.00003, 0.001, 92, 15, 30, 80, eIdx); ok {
		t.Error("FindClosestEdge returned the excluded edge")
	}
}

func TestFindClosestEdgePrefersAlignedHeading(t *testing.T) {
	a := NewAirport("TEST", nil)
	// Two candidates: one well aligned ~4m away, one poorly aligned (second
	// tier) ~1m away. The distance penalty on the second tier makes the
	// aligned edge win.
	aligned := addSegment(t, a, latNorthM(4), 0.001, 90, 200)
	addSegment(t, a, latNorthM(1), 0.001, 50, 200)
	a.SortEdges()

	m, ok := a.FindClosestEdge(0, 0.001, 90, 15, 30, 80, NodeNone)
	if !ok {
		t.Fatal("FindClosestEdge found no match")
	}
	if m.Edge != aligned {
		t.Errorf("matched edge %d, want aligned edge %d", m.Edge, aligned)
	}
}

// latNorthM converts meters north into degrees of latitude for test setup.
func latNorthM(m float64) float64 { return m / 111_194.9 }
