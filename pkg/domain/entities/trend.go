package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InventoryTrend is the full daily series for a SKU, aligned by index with Days
type InventoryTrend struct {
	Days        []int           `json:"days"`
	Inventory   []float64       `json:"inventory"`
	Fulfilled   []float64       `json:"fulfilled"`
	Unfulfilled []float64       `json:"unfulfilled"`
	MeanDemand  []float64       `json:"mean_demand"`
	Price       decimal.Decimal `json:"price"`
}

// TrendPoint is one day of the series, as handed to the chart
type TrendPoint struct {
	Day         int     `json:"day"`
	Inventory   float64 `json:"inventory"`
	Fulfilled   float64 `json:"fulfilled"`
	Unfulfilled float64 `json:"unfulfilled"`
	MeanDemand  float64 `json:"mean_demand"`
}

// Validate checks every series is aligned with Days
func (t *InventoryTrend) Validate() error {
	if t == nil {
		return fmt.Errorf("inventory trend is nil")
	}
	n := len(t.Days)
	series := []struct {
		name string
		len  int
	}{
		{"inventory", len(t.Inventory)},
		{"fulfilled", len(t.Fulfilled)},
		{"unfulfilled", len(t.Unfulfilled)},
		{"mean_demand", len(t.MeanDemand)},
	}
	for _, s := range series {
		if s.len != n {
			return fmt.Errorf("%s has %d values, expected %d to match days", s.name, s.len, n)
		}
	}
	return nil
}

// IsEmpty reports whether there are no days to analyse
func (t *InventoryTrend) IsEmpty() bool {
	return t == nil || len(t.Days) == 0
}

// Point returns the i-th day of the series
func (t *InventoryTrend) Point(i int) TrendPoint {
	return TrendPoint{
		Day:         t.Days[i],
		Inventory:   valueAt(t.Inventory, i),
		Fulfilled:   valueAt(t.Fulfilled, i),
		Unfulfilled: valueAt(t.Unfulfilled, i),
		MeanDemand:  valueAt(t.MeanDemand, i),
	}
}

// Points returns the whole series in day order as received
func (t *InventoryTrend) Points() []TrendPoint {
	if t.IsEmpty() {
		return []TrendPoint{}
	}
	points := make([]TrendPoint, len(t.Days))
	for i := range t.Days {
		points[i] = t.Point(i)
	}
	return points
}

// DayBounds returns the first and last day present in the series
func (t *InventoryTrend) DayBounds() (int, int, bool) {
	if t.IsEmpty() {
		return 0, 0, false
	}
	lo, hi := t.Days[0], t.Days[0]
	for _, d := range t.Days[1:] {
		if d < lo {
			lo = d
		}
		if d > hi {
			hi = d
		}
	}
	return lo, hi, true
}

// AppendPoint adds one day to every series
func (t *InventoryTrend) AppendPoint(p TrendPoint) {
	t.Days = append(t.Days, p.Day)
	t.Inventory = append(t.Inventory, p.Inventory)
	t.Fulfilled = append(t.Fulfilled, p.Fulfilled)
	t.Unfulfilled = append(t.Unfulfilled, p.Unfulfilled)
	t.MeanDemand = append(t.MeanDemand, p.MeanDemand)
}

func valueAt(values []float64, i int) float64 {
	if i < 0 || i >= len(values) {
		return 0
	}
	return values[i]
}
