package graph

import (
	"log"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/paulmach/osm"

	"github.com/azybler/routecore/pkg/geo"
	"github.com/azybler/routecore/pkg/profile"
	"github.com/azybler/routecore/pkg/spatial"
)

// wayInfo is an accepted way's surviving node sequence (in way order) and
// the profile decisions that applied to it, kept around after step 1 so
// step 3 can expand restriction members without re-evaluating the profile.
type wayInfo struct {
	ID                osm.WayID
	NodeRefs          []osm.NodeID
	Forward, Backward bool
	Penalty           float64
}

// Build turns a raw OSM entity set and a profile into a ProcessedGraph,
// per spec §4.2:
//
//  1. accept ways the profile finds accessible and penalizable, keeping
//     only the node references present in nodes;
//  2. materialize a compact internal node id for every node used by an
//     accepted way;
//  3. expand and apply every type=restriction relation by cloning phantom
//     nodes along its spliced member path;
//  4. bulk-load a spatial index over the accepted ways' geometry.
//
// Build never fails outright on a malformed relation; it collects a
// Warning and moves on, matching the rest of the OSM processing pipeline's
// posture of being liberal about bad input data.
func Build(nodes map[osm.NodeID]*osm.Node, ways map[osm.WayID]*osm.Way, relations map[osm.RelationID]*osm.Relation, prof *profile.Profile) (*ProcessedGraph, []Warning, error) {
	buildID := uuid.NewString()

	wayIDs := make([]osm.WayID, 0, len(ways))
	for id := range ways {
		wayIDs = append(wayIDs, id)
	}
	sort.Slice(wayIDs, func(i, j int) bool { return wayIDs[i] < wayIDs[j] })

	var infos []wayInfo
	for _, wid := range wayIDs {
		w := ways[wid]
		if !prof.IsAccessible(w.Tags) {
			continue
		}
		penalty, ok := prof.Penalty(w.Tags)
		if !ok {
			continue
		}
		fwd, bwd := prof.Direction(w.Tags)
		if !fwd && !bwd {
			continue
		}

		refs := make([]osm.NodeID, 0, len(w.Nodes))
		for _, wn := range w.Nodes {
			if _, ok := nodes[wn.ID]; ok {
				refs = append(refs, wn.ID)
			}
		}
		if len(refs) < 2 {
			continue
		}

		infos = append(infos, wayInfo{ID: wid, NodeRefs: refs, Forward: fwd, Backward: bwd, Penalty: penalty})
	}

	// Step 2: assign a compact internal id to every node touched by an
	// accepted way, in first-seen order (deterministic: infos is already
	// way-id sorted, and each way's refs are in way order).
	nodeSet := make(map[osm.NodeID]uint32)
	var nodeIDs []osm.NodeID
	addNode := func(id osm.NodeID) uint32 {
		if idx, ok := nodeSet[id]; ok {
			return idx
		}
		idx := uint32(len(nodeIDs))
		nodeSet[id] = idx
		nodeIDs = append(nodeIDs, id)
		return idx
	}
	for _, info := range infos {
		for _, id := range info.NodeRefs {
			addNode(id)
		}
	}

	routeNodes := make([]RouteNode, len(nodeIDs))
	for idx, extID := range nodeIDs {
		n := nodes[extID]
		routeNodes[idx] = RouteNode{ID: uint32(idx), ExternalID: extID, Lat: n.Lat, Lon: n.Lon, Tags: n.Tags}
	}

	edges := make([][]Edge, len(routeNodes))
	for _, info := range infos {
		for i := 0; i+1 < len(info.NodeRefs); i++ {
			u, v := nodeSet[info.NodeRefs[i]], nodeSet[info.NodeRefs[i+1]]
			un, vn := routeNodes[u], routeNodes[v]
			dist := geo.Haversine(un.Lat, un.Lon, vn.Lat, vn.Lon)
			cost := costFromDistance(dist, info.Penalty)
			if info.Forward {
				edges[u] = append(edges[u], Edge{To: v, Cost: cost})
			}
			if info.Backward {
				edges[v] = append(edges[v], Edge{To: u, Cost: cost})
			}
		}
	}

	g := &ProcessedGraph{
		BuildID:   buildID,
		Nodes:     routeNodes,
		NodeIDMap: nodeSet,
		Edges:     edges,
	}

	// Step 4: spatial index over the same accepted-way geometry.
	swWays := make([]spatial.Way, 0, len(infos))
	for _, info := range infos {
		wn := make([]spatial.WayNode, len(info.NodeRefs))
		for i, extID := range info.NodeRefs {
			rn := routeNodes[nodeSet[extID]]
			wn[i] = spatial.WayNode{ExternalID: extID, Lat: rn.Lat, Lon: rn.Lon}
		}
		swWays = append(swWays, spatial.Way{ID: info.ID, Nodes: wn})
	}
	g.WayIndex = spatial.NewWayIndex(swWays)

	// Step 3: turn restrictions, applied after edges and the node id map
	// exist but before the graph is handed back, so every caller sees a
	// fully topology-encoded graph.
	infoByID := make(map[osm.WayID]*wayInfo, len(infos))
	for i := range infos {
		infoByID[infos[i].ID] = &infos[i]
	}
	warnings := applyTurnRestrictions(g, infoByID, relations, prof)
	for _, w := range warnings {
		log.Printf("graph %s: relation %d skipped: %s", buildID, w.RelationID, w.Reason)
	}

	log.Printf("graph %s: %d nodes, %d accepted ways, %d relation warnings", buildID, len(routeNodes), len(infos), len(warnings))

	return g, warnings, nil
}

// costFromDistance converts a segment's physical distance and profile
// penalty into a saturating uint32 edge cost; every accepted edge costs at
// least 1 regardless of penalty (spec §4.2's "cost >= 1" invariant).
func costFromDistance(distanceM, penalty float64) uint32 {
	c := math.Round(distanceM * penalty)
	if c < 1 {
		return 1
	}
	if c >= float64(MaxCost) {
		return MaxCost
	}
	return uint32(c)
}
