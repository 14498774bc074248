package taxi

import (
	"math"
	"testing"
)

// addSegment adds a taxiway edge of the given length and heading centered on
// (lat, lon) and returns its index.
func addSegment(t *testing.T, a *Airport, lat, lon, angleDeg, lenM float64) int {
	t.Helper()
	rad := angleDeg * math.Pi / 180
	dLat := math.Cos(rad) * lenM / 2 / 111_194.9
	dLon := math.Sin(rad) * lenM / 2 / 111_194.9 // near the equator
	n1 := a.AddNode(lat-dLat, lon-dLon, NodeNone)
	n2 := a.AddNode(lat+dLat, lon+dLon, NodeNone)
	eIdx, ok := a.AddEdge(n1, n2, math.NaN())
	if !ok {
		t.Fatalf("AddEdge(%d, %d) failed", n1, n2)
	}
	return eIdx
}

func TestAddNodeIdempotent(t *testing.T) {
	a := NewAirport("TEST", nil)

	i1 := a.AddNode(50.0, 8.0, NodeNone)
	i2 := a.AddNode(50.0, 8.0, NodeNone)
	if i1 != i2 {
		t.Fatalf("identical coords: got indices %d and %d, want equal", i1, i2)
	}

	// Still the same node when within the merge threshold (~1m off).
	i3 := a.AddNode(50.0+9e-6, 8.0, NodeNone)
	if i3 != i1 {
		t.Errorf("sub-threshold coords: got index %d, want %d", i3, i1)
	}

	// A new node when clearly apart.
	i4 := a.AddNode(50.001, 8.0, NodeNone)
	if i4 == i1 {
		t.Errorf("distant coords merged into node %d", i1)
	}

	// Excluding the match forces a new node.
	i5 := a.AddNode(50.0, 8.0, i1)
	if i5 == i1 {
		t.Errorf("exclusion ignored, got index %d", i5)
	}
}

func TestAddEdgeInvalidNodes(t *testing.T) {
	a := NewAirport("TEST", nil)
	n1 := a.AddNode(1.0, 1.0, NodeNone)

	if _, ok := a.AddEdge(n1, 99, math.NaN()); ok {
		t.Error("AddEdge accepted an out-of-range index")
	}

	// AddNodeAt leaves placeholder nodes without coordinates in gaps.
	a.AddNodeAt(1.001, 1.0, 5)
	if len(a.Nodes) != 6 {
		t.Fatalf("len(Nodes) = %d, want 6", len(a.Nodes))
	}
	if _, ok := a.AddEdge(n1, 3, math.NaN()); ok {
		t.Error("AddEdge accepted a placeholder node")
	}
	if _, ok := a.AddEdge(n1, 5, math.NaN()); !ok {
		t.Error("AddEdge rejected two valid nodes")
	}
}

func TestEdgeAngleInvariant(t *testing.T) {
	a := NewAirport("TEST", nil)
	for i, angle := range []float64{0, 45, 90, 135, 179, 180, 225, 270, 359} {
		addSegment(t, a, 0.01*float64(i), 0, angle, 60)
	}
	a.AddRunway(1.0, 1.0, 0, "09", 1.0, 1.01, 0, "27")
	a.AddRunway(2.01, 1.0, 0, "18", 2.0, 1.0, 0, "36") // laid out north to south

	for i := range a.Edges {
		e := &a.Edges[i]
		if e.Angle < 0 || e.Angle >= 180 {
			t.Errorf("edge %d: angle %v outside [0, 180)", i, e.Angle)
		}
		if e.LenM <= 0 {
			t.Errorf("edge %d: length %v", i, e.LenM)
		}
	}
}

func TestSplitEdge(t *testing.T) {
	a := NewAirport("TEST", nil)
	n1 := a.AddNode(0, 0, NodeNone)
	n2 := a.AddNode(0, 0.002, NodeNone)
	eIdx, _ := a.AddEdge(n1, n2, math.NaN())

	mid := a.AddNode(0, 0.001, NodeNone)
	a.SplitEdge(eIdx, mid)

	if len(a.Edges) != 2 {
		t.Fatalf("len(Edges) = %d, want 2", len(a.Edges))
	}
	if got := a.Edges[eIdx].B; got != mid {
		t.Errorf("first edge ends at node %d, want %d", got, mid)
	}

	// Incident-edge lists must stay consistent: no dangling back-reference
	// on the original far node.
	wantEdges := map[int][]int{n1: {0}, mid: {0, 1}, n2: {1}}
	for n, want := range wantEdges {
		got := a.Nodes[n].Edges
		if len(got) != len(want) {
			t.Errorf("node %d has edges %v, want %v", n, got, want)
			continue
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("node %d has edges %v, want %v", n, got, want)
			}
		}
	}

	// Splitting at an existing endpoint is a no-op.
	a.SplitEdge(eIdx, n1)
	if len(a.Edges) != 2 {
		t.Errorf("split at endpoint added an edge, len(Edges) = %d", len(a.Edges))
	}
}

func TestValid(t *testing.T) {
	a := NewAirport("", nil)
	if a.Valid() {
		t.Error("airport without id is valid")
	}
	a = NewAirport("EDDL", nil)
	if a.Valid() {
		t.Error("airport without edges is valid")
	}
	a.AddRunway(51.28, 6.75, 0, "05L", 51.30, 6.79, 0, "23R")
	if !a.Valid() {
		t.Error("airport with id and runway is not valid")
	}
}

func TestBoundsContainRunwayEnds(t *testing.T) {
	a := NewAirport("TEST", nil)
	a.AddRunway(0, 0, 0, "09", 0, 0.01, 0, "27")
	for i := range a.RwyEnds {
		if !a.Contains(a.RwyEnds[i].Point()) {
			t.Errorf("bounds do not contain runway end %q", a.RwyEnds[i].ID)
		}
	}
}
