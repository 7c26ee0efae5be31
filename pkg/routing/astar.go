// Package routing runs the A* search over a *graph.ProcessedGraph, with a
// search state that carries the predecessor's external OSM id so that a
// phantom-cloned turn-restriction chain is respected without a runtime
// turn-lookup table.
package routing

import (
	"context"
	"errors"

	"github.com/paulmach/osm"

	"github.com/azybler/routecore/pkg/geo"
	"github.com/azybler/routecore/pkg/graph"
)

// ErrUnknownNode is returned when start or end is not present in the
// graph's node id map.
var ErrUnknownNode = errors.New("routing: start or end node not present in graph")

// Result is a found route: the OSM node ids along the path (duplicates
// may appear where a phantom and its original share an external id) and
// its total cost in the graph's cost units.
type Result struct {
	Nodes []osm.NodeID
	Cost  uint32
}

type options struct {
	maxIterations  uint32
	minPenaltyHint float64
}

// Option configures a single Route call.
type Option func(*options)

// WithMaxIterations caps the number of states popped before giving up and
// returning (nil, nil), guarding against pathological searches on a
// disconnected or adversarial graph. The cap is checked every 1024 pops,
// so a search may pop up to 1023 states more than n before it stops.
func WithMaxIterations(n uint32) Option {
	return func(o *options) { o.maxIterations = n }
}

// WithMinPenaltyHint sets the smallest penalty multiplier the profile used
// to build the graph can produce. The heuristic scales great-circle
// distance by this value to stay admissible; the default of 1.0 is safe
// whenever a profile's cheapest road class costs at least its physical
// distance, which is the case for every profile in this module.
func WithMinPenaltyHint(p float64) Option {
	return func(o *options) { o.minPenaltyHint = p }
}

func defaultOptions() options {
	return options{maxIterations: 2_000_000, minPenaltyHint: 1.0}
}

// stateKey identifies a distinct A* search state: a node plus the external
// id it was reached from (or hasPrev=false at the start state). Two states
// with the same node but a different prevExt are explored independently,
// per spec §4.4.
type stateKey struct {
	node    uint32
	prevExt osm.NodeID
	hasPrev bool
}

// Route finds the least-cost path from start to end over g, honoring
// every turn restriction g's build encoded via phantom-node cloning and
// forbidding immediate reversal through the same OSM node.
func Route(ctx context.Context, g *graph.ProcessedGraph, start, end osm.NodeID, opts ...Option) (*Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	startID, ok := g.NodeIDMap[start]
	if !ok {
		return nil, ErrUnknownNode
	}
	endID, ok := g.NodeIDMap[end]
	if !ok {
		return nil, ErrUnknownNode
	}

	heuristic := func(u uint32) uint32 { return heuristicCost(g, o, u, endID) }

	gScore := make(map[stateKey]uint32)
	cameFrom := make(map[stateKey]stateKey)

	start0 := stateKey{node: startID}
	gScore[start0] = 0

	open := &MinHeap{}
	open.Push(openItem{node: startID, g: 0, f: heuristic(startID)})

	var iterations uint32
	for open.Len() > 0 {
		iterations++
		if iterations&1023 == 0 {
			if ctx.Err() != nil {
				return nil, nil
			}
			if iterations > o.maxIterations {
				return nil, nil
			}
		}

		popped := open.Pop()
		cur := stateKey{node: popped.node, prevExt: popped.prevExt, hasPrev: popped.hasPrev}

		if popped.g > gScore[cur] {
			continue // stale entry
		}
		if popped.node == endID {
			return reconstruct(g, cameFrom, cur, popped.g), nil
		}

		curExt := g.Nodes[popped.node].ExternalID
		for _, e := range g.Edges[popped.node] {
			nbrExt := g.Nodes[e.To].ExternalID
			if cur.hasPrev && nbrExt == cur.prevExt {
				continue // no immediate reversal through the same OSM node
			}

			ng := saturatingAdd(popped.g, e.Cost)
			next := stateKey{node: e.To, prevExt: curExt, hasPrev: true}
			if existing, seen := gScore[next]; seen && ng >= existing {
				continue
			}
			gScore[next] = ng
			cameFrom[next] = cur
			open.Push(openItem{node: e.To, prevExt: curExt, hasPrev: true, g: ng, f: saturatingAdd(ng, heuristic(e.To))})
		}
	}

	return nil, nil
}

// heuristicCost estimates the remaining cost from u to goalID: great-circle
// distance scaled by the profile's minimum penalty hint, tightened by the
// graph's ALT landmark bound when present. Both terms are individually
// admissible (never overestimate the true remaining cost), so the max of
// the two stays admissible.
func heuristicCost(g *graph.ProcessedGraph, o options, u, goalID uint32) uint32 {
	goalLat, goalLon := g.Nodes[goalID].Lat, g.Nodes[goalID].Lon
	h := uint32(geo.Haversine(g.Nodes[u].Lat, g.Nodes[u].Lon, goalLat, goalLon) * o.minPenaltyHint)
	if g.Landmarks != nil {
		if lb := g.Landmarks.Bound(u, goalID); lb > h {
			h = lb
		}
	}
	return h
}

func saturatingAdd(a, b uint32) uint32 {
	sum := a + b
	if sum < a {
		return graph.MaxCost
	}
	return sum
}

// reconstruct walks cameFrom back from the goal state to the start state
// and maps each visited internal node to its external OSM id.
func reconstruct(g *graph.ProcessedGraph, cameFrom map[stateKey]stateKey, goal stateKey, cost uint32) *Result {
	var internal []uint32
	cur := goal
	for {
		internal = append(internal, cur.node)
		prev, ok := cameFrom[cur]
		if !ok {
			break
		}
		cur = prev
	}
	for i, j := 0, len(internal)-1; i < j; i, j = i+1, j-1 {
		internal[i], internal[j] = internal[j], internal[i]
	}

	nodes := make([]osm.NodeID, len(internal))
	for i, id := range internal {
		nodes[i] = g.Nodes[id].ExternalID
	}
	return &Result{Nodes: nodes, Cost: cost}
}
