package profile

import (
	"strings"
	"testing"

	"github.com/paulmach/osm"
	"github.com/stretchr/testify/require"
)

func tags(kv ...string) osm.Tags {
	var t osm.Tags
	for i := 0; i+1 < len(kv); i += 2 {
		t = append(t, osm.Tag{Key: kv[i], Value: kv[i+1]})
	}
	return t
}

func carProfile() *Profile {
	def := 1.0
	return &Profile{
		Key: "highway",
		Penalties: Penalties{
			Default: &def,
			ByValue: map[string]float64{
				"motorway":    1.0,
				"residential": 1.3,
			},
		},
		AccessTags: []string{"access", "motor_vehicle", "motorcar"},
		OnewayTags: []string{"oneway"},
		ExceptTags: []string{"bicycle"},
	}
}

func TestIsAccessible(t *testing.T) {
	p := carProfile()

	require.True(t, p.IsAccessible(tags("highway", "residential")))
	require.False(t, p.IsAccessible(tags("highway", "residential", "access", "private")))
	require.False(t, p.IsAccessible(tags("highway", "residential", "access", "yes", "motor_vehicle", "no")))
	require.True(t, p.IsAccessible(tags("highway", "residential", "access", "yes", "motor_vehicle", "yes")))
}

func TestPenalty(t *testing.T) {
	p := carProfile()

	cost, ok := p.Penalty(tags("highway", "residential"))
	require.True(t, ok)
	require.Equal(t, 1.3, cost)

	cost, ok = p.Penalty(tags("highway", "service"))
	require.True(t, ok)
	require.Equal(t, 1.0, cost)

	noDefault := &Profile{Key: "highway", Penalties: Penalties{ByValue: map[string]float64{"motorway": 1.0}}}
	_, ok = noDefault.Penalty(tags("highway", "residential"))
	require.False(t, ok)
}

func TestDirection(t *testing.T) {
	p := carProfile()

	fwd, bwd := p.Direction(tags("highway", "residential"))
	require.True(t, fwd)
	require.True(t, bwd)

	fwd, bwd = p.Direction(tags("highway", "residential", "oneway", "yes"))
	require.True(t, fwd)
	require.False(t, bwd)

	fwd, bwd = p.Direction(tags("highway", "residential", "oneway", "-1"))
	require.False(t, fwd)
	require.True(t, bwd)

	fwd, bwd = p.Direction(tags("junction", "roundabout"))
	require.True(t, fwd)
	require.False(t, bwd)

	// Unrecognized oneway value falls through to the bidirectional default.
	fwd, bwd = p.Direction(tags("highway", "residential", "oneway", "reversible"))
	require.True(t, fwd)
	require.True(t, bwd)
}

func TestRestrictionValue(t *testing.T) {
	p := carProfile()

	v, ok := p.RestrictionValue(tags("type", "restriction", "restriction:motorcar", "no_left_turn"))
	require.True(t, ok)
	require.Equal(t, "no_left_turn", v)

	v, ok = p.RestrictionValue(tags("type", "restriction", "restriction", "no_u_turn"))
	require.True(t, ok)
	require.Equal(t, "no_u_turn", v)

	// restriction:motorcar (last AccessTags entry) wins over restriction:access.
	v, ok = p.RestrictionValue(tags("restriction:access", "no_entry", "restriction:motorcar", "only_straight_on"))
	require.True(t, ok)
	require.Equal(t, "only_straight_on", v)

	_, ok = p.RestrictionValue(tags("type", "restriction"))
	require.False(t, ok)
}

func TestIsExempt(t *testing.T) {
	p := carProfile()

	require.True(t, p.IsExempt(strings.Split("bicycle;foot", ";")))
	require.False(t, p.IsExempt(strings.Split("foot", ";")))
	require.False(t, p.IsExempt(nil))
}
