package taxi

import (
	"math"
	"time"
)

// Snap snaps a position report onto the airport's taxi network.
//
// pos is modified in place: on a match it is moved to the base point on the
// matched edge and tagged with the edge's index; if nothing is within snap
// distance it is tagged EdgeUnavail and left where it is.
//
// prev is the report's predecessor (the previous report in the aircraft's
// pending sequence, or its last confirmed position), nil if there is none.
// When prev resolves to a different edge than pos, the gap is filled with a
// shortest path through the network: the returned slice holds synthesized
// positions, in chronological order, to splice in immediately before pos.
// Their timestamps interpolate path length over the elapsed time, and they
// are tagged EdgeUnavail so they never get re-snapped. Runway matches are
// never path targets; rollout and liftoff semantics are handled elsewhere.
//
// The boolean result reports whether pos was snapped at all.
func (a *Airport) Snap(pos, prev *Position, mdl FlightModel) ([]Position, bool) {
	m, ok := a.FindClosestEdge(pos.Lat, pos.Lon, pos.Heading,
		a.cfg.SnapMaxDistM,
		a.cfg.SnapAngleTolDeg,
		a.cfg.SnapAngleTolExtDeg,
		NodeNone)
	if !ok {
		pos.EdgeIdx = EdgeUnavail
		return nil, false
	}

	pos.Lat = m.Lat
	pos.Lon = m.Lon
	pos.EdgeIdx = m.Edge

	e := &a.Edges[m.Edge]
	if e.Type == Runway {
		// On a runway; can't serve as a path destination, so stop here.
		return nil, true
	}
	pos.Phase = PhaseTaxi

	// Path insertion needs a predecessor resolved to a different edge.
	if prev == nil || !prev.HasEdge() || prev.EdgeIdx == pos.EdgeIdx {
		return nil, true
	}

	prevE := &a.Edges[prev.EdgeIdx]
	prevIsRwy := prevE.Type == Runway
	// The previous edge's relevant node: where we left a runway, that's the
	// runway's start; on a taxiway it's the edge's end in travel direction.
	var prevRelN int
	if prevIsRwy {
		prevRelN = prevE.StartByHeading(prev.Heading)
	} else {
		prevRelN = prevE.EndByHeading(prev.Heading)
	}
	curStartN := e.StartByHeading(pos.Heading)

	// The path must be physically taxiable within the elapsed time.
	elapsed := pos.TS.Sub(prev.TS).Seconds()
	maxLen := elapsed * mdl.MaxTaxiSpeedMS * a.cfg.TaxiSpeedSlackF

	path := a.ShortestPath(prevRelN, prevIsRwy, curStartN, maxLen)
	if len(path) < 2 {
		return nil, true
	}

	// Total length: network path plus the last leg from its end to pos.
	endN := &a.Nodes[path[0]]
	pathLen := endN.pathLen + distLatLon(endN.Lat, endN.Lon, pos.Lat, pos.Lon)

	var startTS time.Time
	if prevIsRwy {
		// The first taxi node can be well down the runway from prev, so the
		// start time is back-computed from taxi speed rather than
		// interpolated.
		taxiTime := pathLen / mdl.MaxTaxiSpeedMS
		startTS = pos.TS.Add(-secs(taxiTime))
		if earliest := prev.TS.Add(a.cfg.MinTimeGap); startTS.Before(earliest) {
			startTS = earliest
		}
	} else {
		startN := &a.Nodes[path[len(path)-1]]
		prevToStart := distLatLon(prev.Lat, prev.Lon, startN.Lat, startN.Lon)
		speed := (prevToStart + pathLen) / elapsed
		startTS = prev.TS.Add(secs(prevToStart / speed))
	}
	pathTime := pos.TS.Sub(startTS).Seconds()

	// The path runs end to start; synthesize positions in travel order.
	inserted := make([]Position, 0, len(path))
	for i := len(path) - 1; i >= 0; i-- {
		n := &a.Nodes[path[i]]
		inserted = append(inserted, Position{
			Lat:     n.Lat,
			Lon:     n.Lon,
			AltM:    math.NaN(),
			TS:      startTS.Add(secs(pathTime * n.pathLen / pathLen)),
			Phase:   PhaseTaxi,
			EdgeIdx: EdgeUnavail,
		})
	}
	return inserted, true
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
