package taxi

import (
	"math"

	"github.com/paulmach/orb"
	orbgeo "github.com/paulmach/orb/geo"

	"github.com/classicvalues/LiveTraffic/pkg/geo"
)

// coordAngle returns the initial bearing from point 1 to point 2 in [0, 360).
func coordAngle(lat1, lon1, lat2, lon2 float64) float64 {
	return geo.NormalizeHeading(orbgeo.Bearing(orb.Point{lon1, lat1}, orb.Point{lon2, lat2}))
}

// distLatLon returns the great-circle distance between two points in meters.
func distLatLon(lat1, lon1, lat2, lon2 float64) float64 {
	return orbgeo.Distance(orb.Point{lon1, lat1}, orb.Point{lon2, lat2})
}

// findSimilarNode returns the index of a taxi node within the node-merge
// distance of the given location, or NodeNone. The node at index `exclude`
// is never matched; pass NodeNone to match any node.
func (a *Airport) findSimilarNode(lat, lon float64, exclude int) int {
	latDiff := geo.MetersToLat(a.cfg.NodeMergeDistM)
	lonDiff := geo.MetersToLon(a.cfg.NodeMergeDistM, lat)
	for i := range a.Nodes {
		if i == exclude {
			continue
		}
		n := &a.Nodes[i]
		if math.Abs(n.Lat-lat) <= latDiff && math.Abs(n.Lon-lon) <= lonDiff {
			return i
		}
	}
	return NodeNone
}

// AddNode adds a taxi node at the given location and returns its index. If a
// node within the node-merge distance already exists, that node's index is
// returned instead; deduplication is threshold-based, not exact. The node at
// index `exclude` is never merged with (pass NodeNone for no exclusion).
func (a *Airport) AddNode(lat, lon float64, exclude int) int {
	if i := a.findSimilarNode(lat, lon, exclude); i != NodeNone {
		return i
	}
	a.extendBounds(lat, lon)
	a.Nodes = append(a.Nodes, TaxiNode{Lat: lat, Lon: lon})
	return len(a.Nodes) - 1
}

// AddNodeAt places a taxi node at an explicit index, growing the store as
// needed. Gaps are filled with placeholder nodes without coordinates. Used
// for route networks that come with their own node numbering.
func (a *Airport) AddNodeAt(lat, lon float64, idx int) {
	a.extendBounds(lat, lon)
	for idx >= len(a.Nodes) {
		a.Nodes = append(a.Nodes, TaxiNode{Lat: math.NaN(), Lon: math.NaN()})
	}
	a.Nodes[idx] = TaxiNode{Lat: lat, Lon: lon}
}

// AddEdge connects two existing taxi nodes with a taxiway edge and returns
// the edge's index. It fails (returning NodeNone, false) if either index is
// out of range or either node lacks coordinates. If lenM is NaN the length
// is computed from the node coordinates.
func (a *Airport) AddEdge(n1, n2 int, lenM float64) (int, bool) {
	if n1 < 0 || n1 >= len(a.Nodes) || n2 < 0 || n2 >= len(a.Nodes) {
		return NodeNone, false
	}
	na := &a.Nodes[n1]
	nb := &a.Nodes[n2]
	if !na.HasCoords() || !nb.HasCoords() {
		return NodeNone, false
	}

	if math.IsNaN(lenM) {
		lenM = distLatLon(na.Lat, na.Lon, nb.Lat, nb.Lon)
	}
	e := Edge{
		Type:  Taxiway,
		A:     n1,
		B:     n2,
		Angle: coordAngle(na.Lat, na.Lon, nb.Lat, nb.Lon),
		LenM:  lenM,
	}
	e.normalize()
	a.Edges = append(a.Edges, e)

	eIdx := len(a.Edges) - 1
	na.Edges = append(na.Edges, eIdx)
	nb.Edges = append(nb.Edges, eIdx)
	return eIdx, true
}

// RecalcEdge recomputes an edge's angle and length from its current endpoint
// coordinates and renormalizes it. Needed after a node was moved.
func (a *Airport) RecalcEdge(e *Edge) {
	na := a.NodeA(e)
	nb := a.NodeB(e)
	e.Angle = coordAngle(na.Lat, na.Lon, nb.Lat, nb.Lon)
	e.LenM = distLatLon(na.Lat, na.Lon, nb.Lat, nb.Lon)
	e.normalize()
}

// SplitEdge shortens edge eIdx to end at insNode and adds a second edge from
// insNode to the edge's original far endpoint. Both nodes' incident-edge
// lists are kept consistent. A no-op if insNode already is an endpoint.
func (a *Airport) SplitEdge(eIdx, insNode int) {
	e := &a.Edges[eIdx]
	if insNode == e.A || insNode == e.B {
		return
	}
	origB := e.B

	na := a.NodeA(e)
	nb := &a.Nodes[insNode]
	e.setEnd(insNode,
		coordAngle(na.Lat, na.Lon, nb.Lat, nb.Lon),
		distLatLon(na.Lat, na.Lon, nb.Lat, nb.Lon))

	// insNode gained a connection, the original far node lost one.
	nb.Edges = append(nb.Edges, eIdx)
	old := a.Nodes[origB].Edges
	kept := old[:0]
	for _, i := range old {
		if i != eIdx {
			kept = append(kept, i)
		}
	}
	a.Nodes[origB].Edges = kept

	a.AddEdge(insNode, origB, math.NaN())
}

// JoinOpenEnds connects dangling taxiway ends (nodes with exactly one edge)
// to nearby edges with a compatible heading. A match on a runway registers
// the node with the runway's endpoint; a match on a taxiway moves the node
// onto the matched edge and splits it there. This turns physically adjacent
// but non-coincident geometry into a topologically connected network.
func (a *Airport) JoinOpenEnds() {
	for i := range a.Nodes {
		if len(a.Nodes[i].Edges) != 1 {
			continue
		}
		eIdx := a.Nodes[i].Edges[0]
		if a.Edges[eIdx].Type == Runway {
			continue
		}

		// Heading along the taxiway, looking away from the dangling node.
		taxiAngle := a.Edges[eIdx].AngleFrom(i)

		n := &a.Nodes[i]
		m, ok := a.FindClosestEdge(n.Lat, n.Lon, a.Edges[eIdx].Angle,
			a.cfg.JoinMaxDistM,
			a.cfg.JoinAngleTolDeg,
			a.cfg.JoinAngleTolExtDeg,
			eIdx)
		if !ok {
			continue
		}

		je := &a.Edges[m.Edge]
		if je.Type == Runway {
			// Register the open node with the runway end it connects to.
			re := &a.RwyEnds[je.StartByHeading(taxiAngle)]
			re.TaxiNodes = append(re.TaxiNodes, i)
			continue
		}

		// Move the open node onto the matched edge, then split it there.
		// The move slightly changes the node's own edge, so that one is
		// recomputed; other edges are left as they are.
		n.Lat = m.Lat
		n.Lon = m.Lon
		a.RecalcEdge(&a.Edges[eIdx])
		a.SplitEdge(m.Edge, i)

		// Edge angles changed, keep the heading index usable.
		a.SortEdges()
	}
}

// Finalize prepares a fully parsed airport for publication: the bounding box
// gains the snap distance as margin so boundary-adjacent queries still
// match, the heading index is built, and open ends are joined.
func (a *Airport) Finalize() {
	if a.hasBounds {
		a.bounds = orbgeo.BoundPad(a.bounds, a.cfg.SnapMaxDistM)
	}
	a.SortEdges()
	a.JoinOpenEnds()
}
