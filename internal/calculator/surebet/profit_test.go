package surebet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProfitPercent_PinnedValues(t *testing.T) {
	tests := []struct {
		p1, p2 float64
		tax    float64
		want   float64
	}{
		{2.10, 2.05, 0.12, -8.71},
		{2.30, 2.40, 0.12, 3.35},
		{2.60, 2.40, 0.12, 9.82},
		{2.80, 2.60, 0.12, 18.64},
		{3.00, 2.50, 0.12, 20.00},
		{1.90, 2.20, 0.12, -10.28},
		{2.10, 2.05, 0, 3.73},
		{2.00, 2.00, 0, 0},
	}
	for _, tt := range tests {
		got := ProfitPercent(tt.p1, tt.p2, tt.tax)
		assert.Equalf(t, tt.want, got, "ProfitPercent(%v, %v, %v)", tt.p1, tt.p2, tt.tax)
	}
}

func TestProfitPercent_Symmetric(t *testing.T) {
	prices := []float64{1.01, 1.5, 1.85, 2.0, 2.05, 2.1, 2.75, 3.4, 7.5, 15}
	taxes := []float64{0, 0.05, 0.12, 0.5, 0.99}
	for _, tax := range taxes {
		for _, a := range prices {
			for _, b := range prices {
				assert.Equalf(t, ProfitPercent(a, b, tax), ProfitPercent(b, a, tax), "a=%v b=%v tax=%v", a, b, tax)
			}
		}
	}
}

func TestProfitPercent_EqualPrices(t *testing.T) {
	// With equal prices the profit is p*(1-tax)/2 - 1, negative while the taxed price stays below 2.
	for _, tax := range []float64{0.01, 0.12, 0.3} {
		for _, p := range []float64{1.2, 1.9, 2.0} {
			assert.Lessf(t, ProfitPercent(p, p, tax), 0.0, "p=%v tax=%v", p, tax)
		}
	}
	// Boundary: taxed price of exactly 2 breaks even.
	assert.Equal(t, 0.0, ProfitPercent(2.5, 2.5, 0.2))
	assert.Equal(t, 10.0, ProfitPercent(2.5, 2.5, 0.12))
}

func TestProfitPercent_RoundsHalfAwayFromZero(t *testing.T) {
	assert.Equal(t, 0.13, round2(0.125))
	assert.Equal(t, -0.13, round2(-0.125))
	assert.Equal(t, 2.68, round2(2.675))
	assert.Equal(t, 1.0, round2(0.999))
}

func TestStakes_EqualizePayouts(t *testing.T) {
	s1, s2 := Stakes(2.10, 2.05, 0.12, 100)
	assert.InDelta(t, 100, s1+s2, 1e-9)
	assert.InDelta(t, s1*2.10*0.88, s2*2.05*0.88, 1e-9)
	assert.Less(t, s1, s2)
}
