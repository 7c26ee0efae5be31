package spatial

import (
	"errors"
	"sort"

	"github.com/paulmach/osm"

	"github.com/azybler/routecore/pkg/geo"
)

// ErrNoCandidates is returned when no way lies anywhere near the query
// point, even after the index's widest search ring.
var ErrNoCandidates = errors.New("spatial: no candidate ways near point")

type candidate struct {
	nodeID osm.NodeID
	dist   float64
}

// Nearest returns up to limit OSM node ids nearest (lon, lat), sorted by
// ascending distance, per spec §4.3:
//  1. gather candidate way envelopes near the point,
//  2. for every segment of every candidate way, take the segment's
//     endpoint closer to the point, scored by the point-to-segment
//     distance in meters (a node keeps its smallest score),
//  3. sort ascending and, when limit > 1, drop candidates whose distance
//     from the point exceeds maxDistance (meters),
//  4. return the first limit ids.
func Nearest(idx *WayIndex, lon, lat float64, limit int, maxDistance float64) ([]osm.NodeID, error) {
	ways := idx.candidateWays(lon, lat)
	if len(ways) == 0 {
		return nil, ErrNoCandidates
	}

	best := make(map[osm.NodeID]float64)
	for _, w := range ways {
		for i := 0; i+1 < len(w.Nodes); i++ {
			a, b := w.Nodes[i], w.Nodes[i+1]
			dist, _ := geo.PointToSegmentDist(lat, lon, a.Lat, a.Lon, b.Lat, b.Lon)

			// Which endpoint is "closer" is a ranking decision, not the
			// returned distance, so the cheap planar approximation spec
			// §4.3 sanctions for candidate ranking is enough here; the
			// exact PointToSegmentDist value above is what's kept.
			near := a
			if geo.EquirectangularDist(lat, lon, b.Lat, b.Lon) < geo.EquirectangularDist(lat, lon, a.Lat, a.Lon) {
				near = b
			}
			if existing, ok := best[near.ExternalID]; !ok || dist < existing {
				best[near.ExternalID] = dist
			}
		}
	}

	candidates := make([]candidate, 0, len(best))
	for id, d := range best {
		candidates = append(candidates, candidate{nodeID: id, dist: d})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].nodeID < candidates[j].nodeID
	})

	if limit > 1 && len(candidates) > 0 {
		cutoff := maxDistance
		kept := candidates[:0:0]
		for _, c := range candidates {
			if c.dist > cutoff {
				break
			}
			kept = append(kept, c)
		}
		candidates = kept
	}

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]osm.NodeID, len(candidates))
	for i, c := range candidates {
		out[i] = c.nodeID
	}
	return out, nil
}
