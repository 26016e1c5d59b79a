package entities

import "github.com/shopspring/decimal"

// DerivedKPIs are the headline metrics for a trend restricted to a window.
// They are recomputed on demand and never stored.
type DerivedKPIs struct {
	Fulfilled   float64         `json:"fulfilled"`
	Unfulfilled float64         `json:"unfulfilled"`
	InstockRate float64         `json:"instock_rate"`
	LostSales   decimal.Decimal `json:"lost_sales"`
}
