package graph

import (
	"sort"
	"strings"

	"github.com/paulmach/osm"

	"github.com/azybler/routecore/pkg/profile"
)

type restrictionKind int

const (
	inapplicable restrictionKind = iota
	prohibitory
	mandatory
)

func classify(value string) restrictionKind {
	switch {
	case strings.HasPrefix(value, "no_"):
		return prohibitory
	case strings.HasPrefix(value, "only_"):
		return mandatory
	default:
		return inapplicable
	}
}

// applyTurnRestrictions runs spec §4.2 step 3 over every type=restriction
// relation, materializing each into the graph's topology via phantom-node
// cloning. Failures are collected as warnings; the build never aborts.
func applyTurnRestrictions(g *ProcessedGraph, ways map[osm.WayID]*wayInfo, relations map[osm.RelationID]*osm.Relation, prof *profile.Profile) []Warning {
	var warnings []Warning
	warn := func(id osm.RelationID, reason string) {
		warnings = append(warnings, Warning{RelationID: id, Reason: reason})
	}

	for _, rid := range sortedRelationIDs(relations) {
		rel := relations[rid]
		if rel.Tags.Find("type") != "restriction" {
			continue
		}

		value, ok := prof.RestrictionValue(rel.Tags)
		if !ok {
			continue
		}
		kind := classify(value)
		if kind == inapplicable {
			continue
		}

		if except := rel.Tags.Find("except"); except != "" {
			if prof.IsExempt(splitExcept(except)) {
				continue
			}
		}

		fromSeq, toSeq, viaSeqs, err := extractMembers(rel, ways)
		if err != "" {
			warn(rid, err)
			continue
		}

		segments := make([][]osm.NodeID, 0, 2+len(viaSeqs))
		segments = append(segments, fromSeq)
		segments = append(segments, viaSeqs...)
		segments = append(segments, toSeq)

		path, ok := spliceSegments(segments)
		if !ok {
			warn(rid, "via segments do not share endpoints with from/to ways")
			continue
		}
		if len(path) < 3 {
			warn(rid, "spliced restriction path shorter than 3 nodes")
			continue
		}

		if err := cloneRestrictionPath(g, path, kind); err != "" {
			warn(rid, err)
			continue
		}
	}

	return warnings
}

// extractMembers pulls the from-way, to-way, and ordered via segments out
// of a restriction relation, expanding each to its node sequence.
func extractMembers(rel *osm.Relation, ways map[osm.WayID]*wayInfo) (fromSeq, toSeq []osm.NodeID, viaSeqs [][]osm.NodeID, errReason string) {
	var fromWay, toWay *osm.WayID

	type pendingVia struct {
		isWay bool
		wayID osm.WayID
		node  osm.NodeID
	}
	var pending []pendingVia

	for _, m := range rel.Members {
		switch m.Role {
		case "from":
			if m.Type != osm.TypeWay {
				continue
			}
			if fromWay != nil {
				return nil, nil, nil, "duplicate from member"
			}
			id := osm.WayID(m.Ref)
			fromWay = &id
		case "to":
			if m.Type != osm.TypeWay {
				continue
			}
			if toWay != nil {
				return nil, nil, nil, "duplicate to member"
			}
			id := osm.WayID(m.Ref)
			toWay = &id
		case "via":
			switch m.Type {
			case osm.TypeNode:
				pending = append(pending, pendingVia{isWay: false, node: osm.NodeID(m.Ref)})
			case osm.TypeWay:
				pending = append(pending, pendingVia{isWay: true, wayID: osm.WayID(m.Ref)})
			}
		}
	}

	if fromWay == nil || toWay == nil {
		return nil, nil, nil, "missing from or to member"
	}
	if len(pending) == 0 {
		return nil, nil, nil, "missing via member"
	}

	fromInfo, ok := ways[*fromWay]
	if !ok {
		return nil, nil, nil, "from way not present in profile's graph"
	}
	toInfo, ok := ways[*toWay]
	if !ok {
		return nil, nil, nil, "to way not present in profile's graph"
	}

	viaSeqs = make([][]osm.NodeID, 0, len(pending))
	for _, p := range pending {
		if !p.isWay {
			viaSeqs = append(viaSeqs, []osm.NodeID{p.node})
			continue
		}
		viaInfo, ok := ways[p.wayID]
		if !ok {
			return nil, nil, nil, "via way not present in profile's graph"
		}
		viaSeqs = append(viaSeqs, append([]osm.NodeID{}, viaInfo.NodeRefs...))
	}

	return append([]osm.NodeID{}, fromInfo.NodeRefs...), append([]osm.NodeID{}, toInfo.NodeRefs...), viaSeqs, ""
}

// spliceSegments joins consecutive member node sequences end-to-end,
// reversing a segment where needed so adjacent members share their
// joining endpoint (spec §4.2 step 3).
func spliceSegments(segments [][]osm.NodeID) ([]osm.NodeID, bool) {
	if len(segments) < 2 {
		return nil, false
	}
	for _, s := range segments {
		if len(s) == 0 {
			return nil, false
		}
	}

	path, ok := joinOriented(segments[0], segments[1])
	if !ok {
		return nil, false
	}
	for _, seq := range segments[2:] {
		tail := path[len(path)-1]
		switch {
		case seq[0] == tail:
			path = append(path, seq[1:]...)
		case seq[len(seq)-1] == tail:
			path = append(path, reverseIDs(seq)[1:]...)
		default:
			return nil, false
		}
	}
	return path, true
}

// joinOriented tries all four endpoint pairings of a and b and returns the
// orientation under which they share a joining endpoint.
func joinOriented(a, b []osm.NodeID) ([]osm.NodeID, bool) {
	aLast, aFirst := a[len(a)-1], a[0]
	switch {
	case aLast == b[0]:
		return append(append([]osm.NodeID{}, a...), b[1:]...), true
	case aLast == b[len(b)-1]:
		return append(append([]osm.NodeID{}, a...), reverseIDs(b)[1:]...), true
	case aFirst == b[0]:
		ra := reverseIDs(a)
		return append(ra, b[1:]...), true
	case aFirst == b[len(b)-1]:
		ra := reverseIDs(a)
		return append(ra, reverseIDs(b)[1:]...), true
	}
	return nil, false
}

func reverseIDs(in []osm.NodeID) []osm.NodeID {
	out := make([]osm.NodeID, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

// cloneRestrictionPath walks the spliced OSM node path, cloning phantom
// nodes to topologically enforce the restriction (spec §4.2 step 3).
func cloneRestrictionPath(g *ProcessedGraph, path []osm.NodeID, kind restrictionKind) string {
	prev, ok := g.NodeIDMap[path[0]]
	if !ok {
		return "restriction path starts at an unknown node"
	}

	chain := make([]uint32, 0, len(path))
	chain = append(chain, prev)

	for i := 1; i < len(path); i++ {
		idx := g.findEdge(prev, path[i])
		if idx == -1 {
			return "no edge found along restriction path"
		}
		x := g.Edges[prev][idx].To
		isLast := i == len(path)-1

		if isLast || g.Nodes[x].IsPhantom {
			chain = append(chain, x)
			prev = x
			continue
		}

		y := g.clonePhantom(x)
		g.Edges[prev][idx].To = y
		chain = append(chain, y)
		prev = y
	}

	switch kind {
	case mandatory:
		for i := 0; i < len(chain)-1; i++ {
			cIdx := g.findEdge(chain[i], g.Nodes[chain[i+1]].ExternalID)
			if cIdx == -1 {
				return "restriction chain edge missing after cloning"
			}
			cost := g.Edges[chain[i]][cIdx].Cost
			g.Edges[chain[i]] = []Edge{{To: chain[i+1], Cost: cost}}
		}
	case prohibitory:
		last := len(chain) - 1
		cIdx := g.findEdge(chain[last-1], g.Nodes[chain[last]].ExternalID)
		if cIdx != -1 {
			g.Edges[chain[last-1]] = append(g.Edges[chain[last-1]][:cIdx], g.Edges[chain[last-1]][cIdx+1:]...)
		}
	}
	return ""
}

// clonePhantom appends a new RouteNode sharing x's geometry and OSM id,
// with an independent copy of x's current outgoing edges, and returns its
// internal id.
func (g *ProcessedGraph) clonePhantom(x uint32) uint32 {
	src := g.Nodes[x]
	id := uint32(len(g.Nodes))
	g.Nodes = append(g.Nodes, RouteNode{
		ID:         id,
		ExternalID: src.ExternalID,
		Lat:        src.Lat,
		Lon:        src.Lon,
		Tags:       src.Tags,
		IsPhantom:  true,
	})
	edgesCopy := make([]Edge, len(g.Edges[x]))
	copy(edgesCopy, g.Edges[x])
	g.Edges = append(g.Edges, edgesCopy)
	return id
}

func splitExcept(except string) []string {
	parts := strings.Split(except, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func sortedRelationIDs(relations map[osm.RelationID]*osm.Relation) []osm.RelationID {
	ids := make([]osm.RelationID, 0, len(relations))
	for id := range relations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
