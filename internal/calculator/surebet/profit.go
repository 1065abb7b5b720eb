package surebet

import "github.com/shopspring/decimal"

// DefaultTaxRate is the flat turnover tax applied to every payout.
const DefaultTaxRate = 0.12

// stakeBank is the notional total stake used for reporting stakes and returns.
const stakeBank = 100.0

// ProfitPercent returns the guaranteed profit in percent of the total stake when the
// stake is split to equalize payouts. Each price is reduced by taxRate first.
// The result is rounded to 2 decimals, half away from zero. Non-positive values mean
// no arbitrage; the caller decides what to keep.
func ProfitPercent(price1, price2, taxRate float64) float64 {
	eff1, eff2 := effective(price1, taxRate), effective(price2, taxRate)
	stake1, stake2 := split(eff1, eff2, stakeBank)
	payout := min(stake1*eff1, stake2*eff2)
	return round2((payout - stakeBank) / stakeBank * 100)
}

// Stakes splits total between two prices proportionally to their inverse tax-adjusted
// prices, so that both outcomes pay the same.
func Stakes(price1, price2, taxRate, total float64) (float64, float64) {
	return split(effective(price1, taxRate), effective(price2, taxRate), total)
}

func effective(price, taxRate float64) float64 {
	return price * (1 - taxRate)
}

func split(eff1, eff2, total float64) (float64, float64) {
	inv1, inv2 := 1/eff1, 1/eff2
	sum := inv1 + inv2
	return total * inv1 / sum, total * inv2 / sum
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
