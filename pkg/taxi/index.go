package taxi

import (
	"math"
	"sort"

	"github.com/classicvalues/LiveTraffic/pkg/geo"
)

// SortEdges (re)builds the indirect index over Edges sorted by angle, which
// FindEdgesForHeading's binary searches rely on. The index is rebuilt from
// scratch whenever its size diverged from the edge store.
func (a *Airport) SortEdges() {
	if len(a.edgesByAngle) != len(a.Edges) {
		a.edgesByAngle = make([]int, len(a.Edges))
		for i := range a.edgesByAngle {
			a.edgesByAngle[i] = i
		}
	}
	sort.Slice(a.edgesByAngle, func(i, j int) bool {
		return a.Edges[a.edgesByAngle[i]].Angle < a.Edges[a.edgesByAngle[j]].Angle
	})
}

// FindEdgesForHeading returns the indices of all edges whose angle lies
// within tol degrees of the given heading, optionally restricted to one edge
// type (pass AnyWay for no restriction).
//
// The search heading is normalized into [0, 180), so edges running the
// reverse compass direction on the same physical line still match. A
// tolerance window spilling below 0° or above 180° wraps around and is
// queried as two sub-ranges.
func (a *Airport) FindEdgesForHeading(heading, tol float64, restrict EdgeType) []int {
	heading = geo.HalfNormalizeHeading(heading)
	lo := heading - tol // may be < 0
	hi := heading + tol // may be >= 180

	var ranges [][2]float64
	switch {
	case lo >= 0 && hi < 180:
		ranges = [][2]float64{{lo, hi}}
	case lo < 0:
		ranges = [][2]float64{{0, hi}, {lo + 180, 180}}
	default: // hi >= 180
		ranges = [][2]float64{{0, hi - 180}, {lo, 180}}
	}

	var found []int
	for _, rng := range ranges {
		i := sort.Search(len(a.edgesByAngle), func(i int) bool {
			return a.Edges[a.edgesByAngle[i]].Angle >= rng[0]
		})
		for ; i < len(a.edgesByAngle); i++ {
			eIdx := a.edgesByAngle[i]
			if a.Edges[eIdx].Angle > rng[1] {
				break
			}
			if restrict == AnyWay || restrict == a.Edges[eIdx].Type {
				found = append(found, eIdx)
			}
		}
	}
	return found
}

// EdgeMatch is the result of FindClosestEdge: the matched edge's index and
// the perpendicular base point on it in world coordinates.
type EdgeMatch struct {
	Edge int
	Lat  float64
	Lon  float64
}

// FindClosestEdge finds the closest edge to the given position whose heading
// is compatible with the given one.
//
// Distances are computed in a planar frame local to the search position, so
// no per-candidate trigonometry is needed. Candidates within tol of the
// heading are preferred over those only within tolExt: second-tier matches
// carry a fixed penalty on their squared distance, which avoids square roots
// on this hot path. A candidate is rejected if its perpendicular distance
// exceeds maxDist or its base point overshoots the segment by more than
// maxDist. Pass skipEdge >= 0 to exclude one edge from matching.
func (a *Airport) FindClosestEdge(lat, lon, heading, maxDist, tol, tolExt float64, skipEdge int) (EdgeMatch, bool) {
	maxDist2 := maxDist * maxDist
	// Approximates the growth of a squared distance by the penalty
	// distance without taking a square root.
	penalty := 3*a.cfg.SnapExtPenaltyM + a.cfg.SnapExtPenaltyM*a.cfg.SnapExtPenaltyM

	headSearch := geo.HalfNormalizeHeading(heading)
	candidates := a.FindEdgesForHeading(headSearch, math.Max(tol, tolExt), AnyWay)
	if len(candidates) == 0 {
		return EdgeMatch{}, false
	}

	best := EdgeMatch{Edge: NodeNone}
	bestPrio := math.Inf(1)
	var bestSeg geo.SegDist
	var bestFromX, bestFromY, bestToX, bestToY float64

	for _, eIdx := range candidates {
		if eIdx == skipEdge {
			continue
		}
		e := &a.Edges[eIdx]
		from := a.Node(e, e.StartByHeading(headSearch))
		to := a.Node(e, e.EndByHeading(headSearch))
		edgeAngle := e.AngleByHeading(headSearch)

		// Local planar coordinates relative to the search position:
		// x eastward, y northward, in meters.
		fromX := geo.LonToMeters(from.Lon-lon, lat)
		fromY := geo.LatToMeters(from.Lat - lat)
		toX := geo.LonToMeters(to.Lon-lon, lat)
		toY := geo.LatToMeters(to.Lat - lat)

		seg := geo.DistPointToSegment(0, 0, fromX, fromY, toX, toY)
		if seg.Dist2 > maxDist2 {
			continue
		}

		prio := seg.Dist2
		if math.Abs(geo.HeadingDiff(edgeAngle, headSearch)) > tol {
			prio += penalty
		}
		if prio >= bestPrio {
			continue
		}
		if seg.Beyond2() > maxDist2 {
			continue
		}

		best.Edge = eIdx
		bestPrio = prio
		bestSeg = seg
		bestFromX, bestFromY = fromX, fromY
		bestToX, bestToY = toX, toY
	}

	if best.Edge == NodeNone {
		return EdgeMatch{}, false
	}

	// Base point on the matched edge, back in world coordinates.
	baseX, baseY := geo.BasePoint(bestFromX, bestFromY, bestToX, bestToY, bestSeg.T)
	best.Lon = lon + geo.MetersToLon(baseX, lat)
	best.Lat = lat + geo.MetersToLat(baseY)
	return best, true
}
