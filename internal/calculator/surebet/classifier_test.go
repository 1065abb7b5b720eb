package surebet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name      string
		market    string
		selection string
		want      Classification
		ok        bool
	}{
		{"handicap plus line", "Handicap", "1 (+1.5)", Classification{"handicap:+1.5", "1"}, true},
		{"handicap minus line", "Asian handicap", "2 (-0.5)", Classification{"handicap:-0.5", "2"}, true},
		{"handicap unsigned line", "handicap 0", "1 (0)", Classification{"handicap:0", "1"}, true},
		{"handicap without line", "Handicap", "1 +1.5", Classification{}, false},
		{"handicap wins over binary", "handicap", "1", Classification{}, false},
		{"over en", "Over/Under 2.5", "Over 2.5", Classification{"over_under:2.5", SideOver}, true},
		{"under en", "under 2.5 goals", "under 2.5", Classification{"over_under:2.5", SideUnder}, true},
		{"over pl", "Liczba goli powyżej/poniżej", "Powyżej 1.5", Classification{"over_under:1.5", SideOver}, true},
		{"under pl", "poniżej 3.5", "poniżej 3.5", Classification{"over_under:3.5", SideUnder}, true},
		{"integer line", "over/under", "over 3", Classification{"over_under:3", SideOver}, true},
		{"over market bad selection", "over/under 2.5", "more than 2.5", Classification{}, false},
		{"over selection without line", "over/under", "over", Classification{}, false},
		{"over/under wins over binary", "over/under", "1", Classification{}, false},
		{"btts pl", "Obie drużyny strzelą gola", "Tak", Classification{"obie drużyny strzelą gola", "tak"}, true},
		{"btts en", "Both teams to score", " no ", Classification{"both teams to score", "no"}, true},
		{"draw no bet", "Remis bez zakładu", "2", Classification{"remis bez zakładu", "2"}, true},
		{"three way result", "1X2", "X", Classification{}, false},
		{"free text", "Correct score", "2:1", Classification{}, false},
		{"empty", "", "", Classification{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Classify(tt.market, tt.selection)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifier_IsPure(t *testing.T) {
	c := NewClassifier()
	first, ok1 := c.Classify("Handicap", "2 (+2.5)")
	c.Classify("over/under", "under 1.5")
	c.Classify("btts", "tak")
	second, ok2 := c.Classify("Handicap", "2 (+2.5)")

	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
	assert.Equal(t, first, func() Classification {
		got, _ := NewClassifier().Classify("Handicap", "2 (+2.5)")
		return got
	}())
}

func TestClassifier_CustomRuleOrder(t *testing.T) {
	// Binary first: the handicap selection "1" now classifies as a plain binary market.
	c := NewClassifier(BinaryRule(), HandicapRule())

	got, ok := c.Classify("handicap", "1")
	assert.True(t, ok)
	assert.Equal(t, Classification{"handicap", "1"}, got)
}

func TestRules_IndependentTriggers(t *testing.T) {
	assert.True(t, HandicapRule().Trigger("european handicap", ""))
	assert.False(t, HandicapRule().Trigger("total goals", ""))
	assert.True(t, OverUnderRule().Trigger("goals over/under", ""))
	assert.True(t, OverUnderRule().Trigger("poniżej", ""))
	assert.True(t, BinaryRule().Trigger("anything", "nie"))
	assert.False(t, BinaryRule().Trigger("anything", "draw"))
}
