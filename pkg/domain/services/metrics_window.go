package services

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/skudiag/pkg/domain/entities"
)

// WindowedMetrics is a trend restricted to an analysis window.
// KPIs is nil when there is no trend data to aggregate.
type WindowedMetrics struct {
	Window entities.AnalysisWindow
	KPIs   *entities.DerivedKPIs
	Series []entities.TrendPoint
}

// HasKPIs reports whether there was data to aggregate
func (m WindowedMetrics) HasKPIs() bool {
	return m.KPIs != nil
}

// ComputeWindow aggregates fulfilled and unfulfilled demand for the days inside
// window and returns the matching slice of the series. It has no side effects.
func ComputeWindow(trend *entities.InventoryTrend, window entities.AnalysisWindow) WindowedMetrics {
	result := WindowedMetrics{
		Window: window,
		Series: []entities.TrendPoint{},
	}
	if trend.IsEmpty() {
		return result
	}

	var fulfilled, unfulfilled float64
	for i, day := range trend.Days {
		if !window.Contains(day) {
			continue
		}
		point := trend.Point(i)
		fulfilled += point.Fulfilled
		unfulfilled += point.Unfulfilled
		result.Series = append(result.Series, point)
	}

	result.KPIs = &entities.DerivedKPIs{
		Fulfilled:   fulfilled,
		Unfulfilled: unfulfilled,
		InstockRate: InstockRate(fulfilled, unfulfilled),
		LostSales:   LostSales(trend.Price, unfulfilled),
	}
	return result
}

// FilterSeries keeps the points whose day lies inside window, preserving order
func FilterSeries(points []entities.TrendPoint, window entities.AnalysisWindow) []entities.TrendPoint {
	filtered := make([]entities.TrendPoint, 0, len(points))
	for _, p := range points {
		if window.Contains(p.Day) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// InstockRate is the share of demand fulfilled, in percent.
// With no demand at all the denominator is taken as 1, giving 0 rather than NaN.
func InstockRate(fulfilled, unfulfilled float64) float64 {
	denominator := fulfilled + unfulfilled
	if denominator == 0 {
		denominator = 1
	}
	return 100 * fulfilled / denominator
}

// LostSales values unfulfilled demand at the SKU's unit price
func LostSales(price decimal.Decimal, unfulfilled float64) decimal.Decimal {
	return price.Mul(decimal.NewFromFloat(unfulfilled))
}
