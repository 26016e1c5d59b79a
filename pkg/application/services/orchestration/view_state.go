package orchestration

import (
	"github.com/vsinha/skudiag/pkg/domain/entities"
	"github.com/vsinha/skudiag/pkg/domain/services"
)

// InitialWindow is shown until the simulation range resolves
var InitialWindow = entities.AnalysisWindow{Start: 1, End: 1}

// Resource is one fetched dataset and where its request stands.
// Value is nil unless Status is Loaded, except for a failed root cause which
// carries the placeholder texts.
type Resource[T any] struct {
	Status entities.FetchStatus `json:"status"`
	Value  *T                   `json:"value,omitempty"`
	Err    error                `json:"-"`
}

// Error returns the failure message, or "" when the fetch did not fail
func (r Resource[T]) Error() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

func idle[T any]() Resource[T] {
	return Resource[T]{Status: entities.Idle}
}

func loading[T any]() Resource[T] {
	return Resource[T]{Status: entities.Loading}
}

// ViewState is everything the view knows for the current selection.
// Values reachable from a ViewState are never mutated after they are committed.
type ViewState struct {
	SKU        entities.SKU `json:"sku"`
	Generation uint64       `json:"generation"`

	Window           entities.AnalysisWindow `json:"window"`
	WindowOverridden bool                    `json:"window_overridden"`

	RangeResolved bool `json:"range_resolved"`
	RangeFallback bool `json:"range_fallback"`
	// SimulationDay is 0 until the simulation range resolves
	SimulationDay int `json:"simulation_day"`

	RootCause Resource[entities.RootCauseResult]   `json:"root_cause"`
	Vendor    Resource[entities.VendorPerformance] `json:"vendor"`
	Trend     Resource[entities.InventoryTrend]    `json:"trend"`
}

// DayKnown reports whether day-dependent requests may be issued
func (s ViewState) DayKnown() bool {
	return s.SimulationDay > 0
}

// Settled reports whether every request for the selection has finished
func (s ViewState) Settled() bool {
	if s.SKU.IsZero() {
		return s.RangeResolved
	}
	return s.RangeResolved &&
		s.RootCause.Status.Settled() &&
		s.Vendor.Status.Settled() &&
		s.Trend.Status.Settled()
}

// Metrics restricts the loaded trend to the current window
func (s ViewState) Metrics() services.WindowedMetrics {
	if s.Trend.Status != entities.Loaded {
		return services.ComputeWindow(nil, s.Window)
	}
	return services.ComputeWindow(s.Trend.Value, s.Window)
}
