package taxi

import "slices"

// ShortestPath finds the shortest path through the taxi network from a start
// node to the given end node, Dijkstra style, with two deviations from the
// textbook form:
//
//   - The frontier is a plain slice rescanned linearly for the minimum. The
//     hard cutoff at maxLen keeps it short, so a priority queue would not
//     pay for its bookkeeping.
//   - If startIsRwy is set, start indexes Airport.RwyEnds and all taxi nodes
//     attached to that runway end are seeded at distance zero.
//
// Relaxations that would push a node's path length beyond maxLen are
// discarded outright, bounding both runtime and the physical plausibility of
// the result.
//
// The returned node indices run from end to start inclusive, in reverse
// order; nil if no path within maxLen exists.
func (a *Airport) ShortestPath(start int, startIsRwy bool, end int, maxLen float64) []int {
	if !startIsRwy && start == end {
		return nil
	}
	for i := range a.Nodes {
		a.Nodes[i].resetPath()
	}

	// Nodes that have a tentative distance but aren't finalized yet.
	var frontier []int
	seed := func(n int) {
		a.Nodes[n].pathLen = 0
		a.Nodes[n].prev = nodeSeed
		frontier = append(frontier, n)
	}
	if startIsRwy {
		for _, n := range a.RwyEnds[start].TaxiNodes {
			seed(n)
		}
	} else {
		seed(start)
	}

	for len(frontier) > 0 && a.Nodes[end].prev == NodeNone {
		// Take the frontier node with the shortest known distance.
		minI := 0
		for i := 1; i < len(frontier); i++ {
			if a.Nodes[frontier[i]].pathLen < a.Nodes[frontier[minI]].pathLen {
				minI = i
			}
		}
		curIdx := frontier[minI]
		frontier[minI] = frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]

		cur := &a.Nodes[curIdx]
		cur.visited = true

		for _, eIdx := range cur.Edges {
			e := &a.Edges[eIdx]
			othIdx := e.Other(curIdx)
			oth := &a.Nodes[othIdx]
			if oth.visited {
				continue
			}
			l := cur.pathLen + e.LenM
			if l > maxLen || oth.pathLen <= l {
				continue
			}
			oth.pathLen = l
			oth.prev = curIdx
			if othIdx == end {
				break
			}
			if !slices.Contains(frontier, othIdx) {
				frontier = append(frontier, othIdx)
			}
		}
	}

	if a.Nodes[end].prev == NodeNone {
		return nil
	}

	var path []int
	for n := end; ; n = a.Nodes[n].prev {
		path = append(path, n)
		if a.Nodes[n].prev == nodeSeed {
			return path
		}
	}
}

// PathLen returns the path length accumulated for a node by the most recent
// ShortestPath call.
func (a *Airport) PathLen(node int) float64 { return a.Nodes[node].pathLen }
