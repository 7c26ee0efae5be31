package spatial

import (
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/require"
)

// straightWay builds the S1 scenario geometry from spec §8:
// A=(0,0), B=(0,0.001), C=(0,0.002).
func straightWay() Way {
	return Way{
		ID: 1,
		Nodes: []WayNode{
			{ExternalID: 1, Lat: 0, Lon: 0},
			{ExternalID: 2, Lat: 0.001, Lon: 0},
			{ExternalID: 3, Lat: 0.002, Lon: 0},
		},
	}
}

func TestNewWayIndexEnvelope(t *testing.T) {
	idx := NewWayIndex([]Way{straightWay()})
	found := idx.candidateWays(0.0005, 0.0005)
	require.Len(t, found, 1)
	require.Equal(t, osm.WayID(1), found[0].ID)
}

func TestNearestOrdering(t *testing.T) {
	idx := NewWayIndex([]Way{straightWay()})

	// S6 (spec §8), adapted to meter-scale max_distance: query near A
	// should return [A, B] before C.
	got, err := Nearest(idx, 0.00005, 0.00005, 2, 1000)
	require.NoError(t, err)
	require.Equal(t, []osm.NodeID{1, 2}, got)
}

func TestNearestLimitOne(t *testing.T) {
	idx := NewWayIndex([]Way{straightWay()})

	got, err := Nearest(idx, 0, 0, 1, 1000)
	require.NoError(t, err)
	require.Equal(t, []osm.NodeID{1}, got)
}

func TestNearestNoCandidates(t *testing.T) {
	idx := NewWayIndex(nil)
	_, err := Nearest(idx, 0, 0, 1, 1000)
	require.ErrorIs(t, err, ErrNoCandidates)
}

func TestNearestMaxDistanceFilter(t *testing.T) {
	idx := NewWayIndex([]Way{straightWay()})

	// A generous limit but a tiny max distance should drop the far node.
	got, err := Nearest(idx, 0, 0, 3, 1e-9)
	require.NoError(t, err)
	require.Equal(t, []osm.NodeID{1}, got)
}
