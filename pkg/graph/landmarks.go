package graph

import "container/heap"

// LandmarkSet holds precomputed single-source distances from a handful of
// landmark nodes, used to tighten the A* heuristic via the triangle
// inequality (ALT: A*, Landmarks, Triangle inequality).
type LandmarkSet struct {
	Landmarks []uint32   // internal node ids of the chosen landmarks
	Dist      [][]uint32 // Dist[i][v] = shortest-path cost from Landmarks[i] to v
}

// Bound returns a lower bound on the shortest-path cost from u to v derived
// from the triangle inequality over every landmark: for landmark L,
// dist(L,v) - dist(L,u) <= dist(u,v). Dist holds costs from each landmark
// over a directed graph, so only that direction of the difference is a
// valid bound. The tightest such bound across all landmarks is still
// admissible and is usually far tighter than the plain great-circle
// heuristic.
func (ls *LandmarkSet) Bound(u, v uint32) uint32 {
	var best uint32
	for i := range ls.Landmarks {
		du, dv := ls.Dist[i][u], ls.Dist[i][v]
		if du == MaxCost || dv == MaxCost {
			continue
		}
		if dv > du && dv-du > best {
			best = dv - du
		}
	}
	return best
}

// BuildLandmarks picks up to count nodes spread across the graph by
// farthest-point seeding and runs a Dijkstra from each, recording the
// resulting distance row. The result is assigned by the caller to
// ProcessedGraph.Landmarks; Build itself never calls this, since landmark
// precomputation is opt-in (it costs O(count * E log V)).
func BuildLandmarks(g *ProcessedGraph, count int) *LandmarkSet {
	n := len(g.Nodes)
	if n == 0 || count <= 0 {
		return &LandmarkSet{}
	}
	if count > n {
		count = n
	}

	ls := &LandmarkSet{
		Landmarks: make([]uint32, 0, count),
		Dist:      make([][]uint32, 0, count),
	}

	// minDistToSet[v] = min over chosen landmarks of dist(landmark, v),
	// used to pick the next landmark as the node farthest from all
	// landmarks chosen so far.
	minDistToSet := make([]uint32, n)
	for i := range minDistToSet {
		minDistToSet[i] = MaxCost
	}

	next := uint32(0)
	for len(ls.Landmarks) < count {
		row := dijkstraAll(g, next)
		ls.Landmarks = append(ls.Landmarks, next)
		ls.Dist = append(ls.Dist, row)

		farthest := next
		var farthestDist uint32
		for v := 0; v < n; v++ {
			if row[v] < minDistToSet[v] {
				minDistToSet[v] = row[v]
			}
			if minDistToSet[v] != MaxCost && minDistToSet[v] >= farthestDist {
				farthestDist = minDistToSet[v]
				farthest = uint32(v)
			}
		}
		if farthest == next && len(ls.Landmarks) < count {
			// graph exhausted (e.g. disconnected remainder); stop early
			// rather than re-seed the same landmark.
			break
		}
		next = farthest
	}

	return ls
}

type dijkstraItem struct {
	node uint32
	dist uint32
}

type dijkstraHeap []dijkstraItem

func (h dijkstraHeap) Len() int            { return len(h) }
func (h dijkstraHeap) Less(i, j int) bool  { return h[i].dist < h[j].dist }
func (h dijkstraHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *dijkstraHeap) Push(x interface{}) { *h = append(*h, x.(dijkstraItem)) }
func (h *dijkstraHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// dijkstraAll runs a plain single-source Dijkstra over the whole graph and
// returns the distance from src to every node, MaxCost where unreachable.
func dijkstraAll(g *ProcessedGraph, src uint32) []uint32 {
	dist := make([]uint32, len(g.Nodes))
	for i := range dist {
		dist[i] = MaxCost
	}
	dist[src] = 0

	h := &dijkstraHeap{{node: src, dist: 0}}
	heap.Init(h)

	for h.Len() > 0 {
		item := heap.Pop(h).(dijkstraItem)
		if item.dist > dist[item.node] {
			continue // stale entry
		}
		for _, e := range g.Edges[item.node] {
			nd := saturatingAdd(item.dist, e.Cost)
			if nd < dist[e.To] {
				dist[e.To] = nd
				heap.Push(h, dijkstraItem{node: e.To, dist: nd})
			}
		}
	}
	return dist
}
