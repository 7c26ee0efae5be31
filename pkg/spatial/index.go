// Package spatial provides an R-tree index over way bounding boxes and
// nearest-way/nearest-node lookups by coordinate.
package spatial

import (
	"math"

	"github.com/paulmach/osm"
	"github.com/tidwall/rtree"
)

// WayIndex is an R-tree keyed by way bounding box, used to find the ways
// nearest an (lon, lat) query point.
type WayIndex struct {
	tree rtree.RTree
}

// WayNode is one node on a way, in way order, used by Nearest to score
// candidate segments.
type WayNode struct {
	ExternalID osm.NodeID
	Lat, Lon   float64
}

// Way is the minimal shape the spatial index needs: an id and its
// surviving node sequence, in order.
type Way struct {
	ID    osm.WayID
	Nodes []WayNode
}

// NewWayIndex bulk-loads an R-tree from each way's axis-aligned envelope
// over its surviving node coordinates (spec §4.2 step 4).
func NewWayIndex(ways []Way) *WayIndex {
	idx := &WayIndex{}
	for _, w := range ways {
		if len(w.Nodes) == 0 {
			continue
		}
		minLon, minLat := math.Inf(1), math.Inf(1)
		maxLon, maxLat := math.Inf(-1), math.Inf(-1)
		for _, n := range w.Nodes {
			minLon = math.Min(minLon, n.Lon)
			minLat = math.Min(minLat, n.Lat)
			maxLon = math.Max(maxLon, n.Lon)
			maxLat = math.Max(maxLat, n.Lat)
		}
		idx.tree.Insert([2]float64{minLon, minLat}, [2]float64{maxLon, maxLat}, w)
	}
	return idx
}

// ringSizes are the successive half-widths (in degrees) tried when
// expanding the bounding-box query around a point until at least
// wantCandidates ways are found. ~0.01° is roughly 1.1km at the equator.
var ringSizes = []float64{0.002, 0.01, 0.05, 0.25, 1.0, 5.0, 45.0}

const wantCandidates = 100

// candidateWays returns every way whose envelope intersects the first
// search ring around (lon, lat) that holds at least wantCandidates ways
// (the result is not truncated to wantCandidates), or every way within the
// widest ring when no ring reaches that count.
func (idx *WayIndex) candidateWays(lon, lat float64) []Way {
	var found []Way
	seen := make(map[osm.WayID]bool)

	for _, r := range ringSizes {
		found = found[:0]
		for k := range seen {
			delete(seen, k)
		}
		idx.tree.Search(
			[2]float64{lon - r, lat - r},
			[2]float64{lon + r, lat + r},
			func(min, max [2]float64, data interface{}) bool {
				w := data.(Way)
				if seen[w.ID] {
					return true
				}
				seen[w.ID] = true
				found = append(found, w)
				return true
			},
		)
		if len(found) >= wantCandidates {
			break
		}
	}
	return found
}
