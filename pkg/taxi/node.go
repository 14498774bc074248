package taxi

import (
	"math"

	"github.com/paulmach/orb"
)

// coordEps is the equality epsilon for geographic coordinates, roughly 10cm.
const coordEps = 1e-6

// Node index sentinels. Nodes and edges are always referenced by index, never
// by pointer, since the backing slices reallocate while the network grows.
const (
	// NodeNone marks "no node" (eg. no shortest-path predecessor).
	NodeNone = -1
	// nodeSeed marks a shortest-path start node.
	nodeSeed = -2
)

// TaxiNode is one point of the taxi network. Depending on scenery and search
// range there can be tens of thousands per airport, so it stays small.
type TaxiNode struct {
	Lat float64
	Lon float64
	// Edges lists the indices of all edges incident to this node.
	Edges []int

	// Shortest-path scratch fields, reset at the start of each search.
	pathLen float64
	prev    int
	visited bool
}

// HasCoords reports whether the node carries valid coordinates. Placeholder
// nodes created for gaps in explicit-index route networks do not.
func (n *TaxiNode) HasCoords() bool {
	return !math.IsNaN(n.Lat) && !math.IsNaN(n.Lon)
}

// SamePos reports whether the node sits at the given coordinates, within the
// coordinate epsilon.
func (n *TaxiNode) SamePos(lat, lon float64) bool {
	return math.Abs(n.Lat-lat) < coordEps && math.Abs(n.Lon-lon) < coordEps
}

// Point returns the node's location as an orb point (lon/lat order).
func (n *TaxiNode) Point() orb.Point { return orb.Point{n.Lon, n.Lat} }

func (n *TaxiNode) resetPath() {
	n.pathLen = math.Inf(1)
	n.prev = NodeNone
	n.visited = false
}

// RwyEnd is a runway endpoint: a network node that additionally carries the
// runway identifier, a lazily probed ground altitude, and the taxi nodes
// that join the runway at this end.
type RwyEnd struct {
	TaxiNode
	// ID is the runway identifier, like "23" or "05R".
	ID string
	// AltM is the ground altitude in meters, NaN until probed.
	AltM float64
	// TaxiNodes indexes the taxi nodes leaving the runway in this
	// direction; they seed shortest-path searches that start on the runway.
	TaxiNodes []int
}
