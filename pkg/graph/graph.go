// Package graph builds a directed, weighted routing graph from raw OSM
// entities and a profile, materializing turn restrictions into the graph
// topology itself via phantom-node cloning.
package graph

import (
	"github.com/paulmach/osm"

	"github.com/azybler/routecore/pkg/spatial"
)

// Edge is a single outgoing arc: target internal node id and cost.
// Per-node adjacency is a slice of these rather than a map, since a real
// OSM junction's out-degree is almost always small enough that a linear
// scan is as fast as a map probe — see DESIGN.md for the full rationale.
type Edge struct {
	To   uint32
	Cost uint32
}

// RouteNode is one node in the processed graph: either a real OSM node or
// a phantom clone created to enforce a turn restriction topologically.
type RouteNode struct {
	ID         uint32
	ExternalID osm.NodeID
	Lat, Lon   float64
	Tags       osm.Tags
	IsPhantom  bool
}

// Warning is a non-fatal diagnostic produced while building the graph —
// almost always a turn restriction that failed to validate and was
// skipped (spec §4.2's failure semantics: never fatal to the build).
type Warning struct {
	RelationID osm.RelationID
	Reason     string
}

// ProcessedGraph is the immutable output of Build. Any number of routing
// and snapping queries may run against it concurrently without
// synchronization; nothing may mutate it after Build returns, apart from
// the caller attaching an optional LandmarkSet (see BuildLandmarks) before
// any query runs.
type ProcessedGraph struct {
	BuildID   string
	Nodes     []RouteNode
	NodeIDMap map[osm.NodeID]uint32
	Edges     [][]Edge
	WayIndex  *spatial.WayIndex
	Landmarks *LandmarkSet
}

// MaxCost is the saturation ceiling for edge and path costs.
const MaxCost = ^uint32(0)

// saturatingAdd adds a and b, clamping to MaxCost on overflow.
func saturatingAdd(a, b uint32) uint32 {
	sum := a + b
	if sum < a {
		return MaxCost
	}
	return sum
}

// findEdge returns the index into Edges[u] whose target's ExternalID
// equals extID, or -1 if there is none. Used while walking a restriction
// path to locate "the unique outgoing edge prev→x whose x.external_id ==
// osm_node_id" (spec §4.2 step 3).
func (g *ProcessedGraph) findEdge(u uint32, extID osm.NodeID) int {
	for i, e := range g.Edges[u] {
		if g.Nodes[e.To].ExternalID == extID {
			return i
		}
	}
	return -1
}
