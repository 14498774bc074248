// Package taxi models one airport's runway and taxiway network as read from
// apt.dat: node and edge stores referenced by index, an angle-sorted edge
// index for heading-windowed searches, a bounded shortest-path search, and
// the snapping of noisy position reports onto the network.
package taxi

import (
	"math"
	"strings"

	"github.com/paulmach/orb"
)

// Airport is one airport's taxi network. Taxi nodes and runway endpoints
// live in separate stores; an edge's type tag decides which store its
// endpoint indices refer to.
type Airport struct {
	// ID is the airport's identifier, typically the ICAO code.
	ID string

	// Nodes is the taxi-node store.
	Nodes []TaxiNode
	// RwyEnds is the runway-endpoint store.
	RwyEnds []RwyEnd
	// Edges is the edge store, runway and taxiway edges mixed.
	Edges []Edge

	// AltM is a representative airport altitude in meters, NaN until probed.
	AltM float64

	cfg *Config

	bounds    orb.Bound
	hasBounds bool

	// edgesByAngle indexes Edges sorted by Edge.Angle; rebuilt by SortEdges.
	edgesByAngle []int
}

// NewAirport creates an empty airport network using the given tolerances.
func NewAirport(id string, cfg *Config) *Airport {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Airport{ID: id, AltM: math.NaN(), cfg: cfg}
}

// HasID reports whether an identifier is defined; used as the indicator for
// "airport of interest" while reading apt.dat.
func (a *Airport) HasID() bool { return a.ID != "" }

// HasEdges reports whether any runway or taxiway edge is defined.
func (a *Airport) HasEdges() bool { return len(a.Edges) > 0 }

// HasRwyEnds reports whether any runway endpoint is defined.
func (a *Airport) HasRwyEnds() bool { return len(a.RwyEnds) > 0 }

// Valid reports whether the airport is usable: it needs an id, edges, and
// runway endpoints.
func (a *Airport) Valid() bool { return a.HasID() && a.HasEdges() && a.HasRwyEnds() }

// Bounds returns the airport's bounding box.
func (a *Airport) Bounds() orb.Bound { return a.bounds }

// Contains reports whether the point lies within the airport's bounds.
func (a *Airport) Contains(p orb.Point) bool {
	return a.hasBounds && a.bounds.Contains(p)
}

// extendBounds grows the bounding box to include the given location.
func (a *Airport) extendBounds(lat, lon float64) {
	p := orb.Point{lon, lat}
	if !a.hasBounds {
		a.bounds = orb.Bound{Min: p, Max: p}
		a.hasBounds = true
		return
	}
	a.bounds = a.bounds.Extend(p)
}

// Node resolves an endpoint index of the given edge to its node, dispatching
// on the edge's type tag.
func (a *Airport) Node(e *Edge, idx int) *TaxiNode {
	if e.Type == Runway {
		return &a.RwyEnds[idx].TaxiNode
	}
	return &a.Nodes[idx]
}

// NodeA returns the edge's A node.
func (a *Airport) NodeA(e *Edge) *TaxiNode { return a.Node(e, e.A) }

// NodeB returns the edge's B node.
func (a *Airport) NodeB(e *Edge) *TaxiNode { return a.Node(e, e.B) }

// RwyEndA returns the A endpoint of a runway edge.
func (a *Airport) RwyEndA(e *Edge) *RwyEnd { return &a.RwyEnds[e.A] }

// RwyEndB returns the B endpoint of a runway edge.
func (a *Airport) RwyEndB(e *Edge) *RwyEnd { return &a.RwyEnds[e.B] }

// RunwayEdges returns the indices of all runway edges.
func (a *Airport) RunwayEdges() []int {
	var rwys []int
	for i := range a.Edges {
		if a.Edges[i].Type == Runway {
			rwys = append(rwys, i)
		}
	}
	return rwys
}

// RwysString lists all runways like "09-27 / 16L-34R", for logging.
func (a *Airport) RwysString() string {
	var sb strings.Builder
	for _, i := range a.RunwayEdges() {
		if sb.Len() > 0 {
			sb.WriteString(" / ")
		}
		e := &a.Edges[i]
		sb.WriteString(a.RwyEndA(e).ID)
		sb.WriteByte('-')
		sb.WriteString(a.RwyEndB(e).ID)
	}
	return sb.String()
}
