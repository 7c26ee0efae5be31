// Package profile describes how a transport mode interprets OSM tags:
// which ways are accessible, how much a tag value costs, which direction
// a way can be traversed, and which turn-restriction exceptions apply.
package profile

import "github.com/paulmach/osm"

// Penalties maps a way's tag value to a cost multiplier.
type Penalties struct {
	Default *float64           `json:"default,omitempty"`
	ByValue map[string]float64 `json:"by_value,omitempty"`
}

// Profile is an immutable, mode-specific view over OSM tags.
type Profile struct {
	Name       string    `json:"name"`
	Key        string    `json:"key"`
	Penalties  Penalties `json:"penalties"`
	AccessTags []string  `json:"access_tags"`
	OnewayTags []string  `json:"oneway_tags"`
	ExceptTags []string  `json:"except_tags"`
}

var blockedAccessValues = map[string]bool{
	"no":      true,
	"private": true,
	"false":   true,
}

// IsAccessible scans AccessTags in order; the first tag present decides
// accessibility. Absent tags, or no tag present at all, default to true.
func (p *Profile) IsAccessible(tags osm.Tags) bool {
	for _, key := range p.AccessTags {
		if !tags.HasTag(key) {
			continue
		}
		return !blockedAccessValues[tags.Find(key)]
	}
	return true
}

// Penalty looks up the way's tag value against Penalties, falling back to
// Penalties.Default. It returns ok=false when neither applies, meaning the
// way is excluded from the graph.
func (p *Profile) Penalty(tags osm.Tags) (cost float64, ok bool) {
	value := tags.Find(p.Key)
	if value != "" {
		if c, found := p.Penalties.ByValue[value]; found {
			return c, true
		}
	}
	if p.Penalties.Default != nil {
		return *p.Penalties.Default, true
	}
	return 0, false
}

// Direction reports whether a way may be traversed forward (in node-ref
// order) and/or backward.
func (p *Profile) Direction(tags osm.Tags) (forward, backward bool) {
	junction := tags.Find("junction")
	if junction == "roundabout" || junction == "circular" {
		return true, false
	}

	for _, key := range p.OnewayTags {
		if !tags.HasTag(key) {
			continue
		}
		switch tags.Find(key) {
		case "yes", "true", "1":
			return true, false
		case "-1", "reverse":
			return false, true
		case "no":
			return true, true
		default:
			continue // value doesn't match a recognized oneway sense; try the next tag key
		}
	}
	return true, true
}

// RestrictionValue picks the most specific restriction value on a
// relation's tags for this profile: "restriction:<mode>" is checked for
// each of AccessTags, scanned last-to-first so a later-listed mode
// overrides an earlier one, falling back to the plain "restriction" tag.
// ok is false when neither is present.
func (p *Profile) RestrictionValue(relationTags osm.Tags) (value string, ok bool) {
	for i := len(p.AccessTags) - 1; i >= 0; i-- {
		key := "restriction:" + p.AccessTags[i]
		if relationTags.HasTag(key) {
			return relationTags.Find(key), true
		}
	}
	if relationTags.HasTag("restriction") {
		return relationTags.Find("restriction"), true
	}
	return "", false
}

// IsExempt reports whether the except tag's mode tokens (";"-separated)
// intersect ExceptTags, meaning a restriction carrying this except value
// does not apply to this profile.
func (p *Profile) IsExempt(exceptTokens []string) bool {
	if len(exceptTokens) == 0 || len(p.ExceptTags) == 0 {
		return false
	}
	exempt := make(map[string]bool, len(p.ExceptTags))
	for _, t := range p.ExceptTags {
		exempt[t] = true
	}
	for _, tok := range exceptTokens {
		if exempt[tok] {
			return true
		}
	}
	return false
}
