package surebet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectBest_PicksMaxPerSide(t *testing.T) {
	sm := Submarket{Key: "over_under:2.5", Sides: []SideQuotes{
		{Side: "over", Quotes: []Quote{{"a", 2.00}, {"b", 2.20}, {"c", 2.20}}},
		{Side: "under", Quotes: []Quote{{"a", 1.90}, {"c", 1.70}}},
	}}

	sel, reason := SelectBest(sm, Options{})

	assert.Equal(t, RejectNone, reason)
	assert.Equal(t, Leg{Side: "over", Quote: Quote{"b", 2.20}}, sel.Legs[0], "ties resolve to the first maximum")
	assert.Equal(t, Leg{Side: "under", Quote: Quote{"a", 1.90}}, sel.Legs[1])
	assert.False(t, sel.SameSource)
	assert.Equal(t, 2, sel.SideCount)
}

func TestSelectBest_RejectsSameSource(t *testing.T) {
	sm := Submarket{Key: "btts", Sides: []SideQuotes{
		{Side: "tak", Quotes: []Quote{{"sts", 2.5}, {"fortuna", 1.5}}},
		{Side: "nie", Quotes: []Quote{{"sts", 2.4}}},
	}}

	_, reason := SelectBest(sm, Options{})
	assert.Equal(t, RejectSameSource, reason)

	sel, reason := SelectBest(sm, Options{AllowSameSource: true})
	assert.Equal(t, RejectNone, reason)
	assert.True(t, sel.SameSource)

	sel, reason = SelectBest(sm, Options{ForceShowAll: true})
	assert.Equal(t, RejectNone, reason)
	assert.True(t, sel.SameSource)
}

func TestSelectBest_SideCount(t *testing.T) {
	one := Submarket{Key: "btts", Sides: []SideQuotes{{Side: "tak", Quotes: []Quote{{"a", 2}}}}}
	three := Submarket{Key: "1x2", Sides: []SideQuotes{
		{Side: "1", Quotes: []Quote{{"a", 2.5}}},
		{Side: "2", Quotes: []Quote{{"b", 3.1}}},
		{Side: "x", Quotes: []Quote{{"c", 3.3}}},
	}}

	_, reason := SelectBest(one, Options{})
	assert.Equal(t, RejectSideCount, reason)
	_, reason = SelectBest(one, Options{ForceShowAll: true})
	assert.Equal(t, RejectSideCount, reason, "a single side can never be paired")

	_, reason = SelectBest(three, Options{})
	assert.Equal(t, RejectSideCount, reason)

	sel, reason := SelectBest(three, Options{AllowNonBinary: true})
	assert.Equal(t, RejectNone, reason)
	assert.Equal(t, 3, sel.SideCount)
	assert.Equal(t, "1", sel.Legs[0].Side)
	assert.Equal(t, "2", sel.Legs[1].Side)
}
