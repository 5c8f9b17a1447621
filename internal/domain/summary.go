package domain

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// PriceSummary is the header quote: spot price and its 24h change.
type PriceSummary struct {
	Currency       string  `json:"currency"`
	CurrentPrice   float64 `json:"current_price"`
	AbsoluteChange float64 `json:"absolute_change"`
	PercentChange  float64 `json:"percent_change"`
}

// NewPriceSummary derives the absolute change from the upstream percent change.
func NewPriceSummary(currency string, current, percentChange float64) PriceSummary {
	previous := current / (1 + percentChange/100)
	return PriceSummary{
		Currency:       currency,
		CurrentPrice:   current,
		AbsoluteChange: current - previous,
		PercentChange:  percentChange,
	}
}

// PreviousPrice is the implied price 24 hours ago.
func (s PriceSummary) PreviousPrice() float64 {
	return s.CurrentPrice - s.AbsoluteChange
}

// Negative reports whether the 24h change is below zero.
func (s PriceSummary) Negative() bool {
	return s.PercentChange < 0
}

// FormatChange renders the change as "+1536.59 (2.50%)" or "-1855.67 (-3.00%)".
// The absolute change always carries an explicit sign taken from the percent change.
func (s PriceSummary) FormatChange() string {
	sign := "+"
	if s.Negative() {
		sign = "-"
	}
	if !finite(s.AbsoluteChange) || !finite(s.PercentChange) {
		return "n/a"
	}
	abs := decimal.NewFromFloat(s.AbsoluteChange).Abs().StringFixed(2)
	pct := decimal.NewFromFloat(s.PercentChange).StringFixed(2)
	return fmt.Sprintf("%s%s (%s%%)", sign, abs, pct)
}

// FormatPrice renders the spot price with two decimals.
func (s PriceSummary) FormatPrice() string {
	if !finite(s.CurrentPrice) {
		return "n/a"
	}
	return decimal.NewFromFloat(s.CurrentPrice).StringFixed(2)
}

// Valid rejects quotes whose implied previous price is undefined.
func (s PriceSummary) Valid() error {
	if !finite(s.CurrentPrice) || !finite(s.PercentChange) || !finite(s.AbsoluteChange) {
		return fmt.Errorf("%w: non-finite value", ErrInvalidQuote)
	}
	if s.PercentChange <= -100 {
		return fmt.Errorf("%w: 24h change %v%%", ErrInvalidQuote, s.PercentChange)
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}
