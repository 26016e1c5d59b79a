package entities

import "fmt"

const (
	// FallbackMinDay is used when the simulation range cannot be fetched
	FallbackMinDay = 1
	// FallbackMaxDay is used when the simulation range cannot be fetched
	FallbackMaxDay = 30
)

// SimulationRange describes the days for which backend data exists
type SimulationRange struct {
	MaxDay      int  `json:"maxDay"`
	MinDay      *int `json:"minDay,omitempty"`
	LookbackMin *int `json:"lookbackMin,omitempty"`
}

// FallbackSimulationRange returns the range assumed when the backend is unreachable
func FallbackSimulationRange() SimulationRange {
	minDay := FallbackMinDay
	return SimulationRange{
		MaxDay: FallbackMaxDay,
		MinDay: &minDay,
	}
}

// Validate checks the range carries a usable upper bound
func (r SimulationRange) Validate() error {
	if r.MaxDay < 1 {
		return fmt.Errorf("maxDay must be positive, got %d", r.MaxDay)
	}
	return nil
}

// DefaultWindow derives the analysis window: lookbackMin, else minDay, else 1, up to maxDay.
// A zero lookbackMin or minDay counts as absent.
func (r SimulationRange) DefaultWindow() (AnalysisWindow, error) {
	if err := r.Validate(); err != nil {
		return AnalysisWindow{}, err
	}

	start := FallbackMinDay
	switch {
	case r.LookbackMin != nil && *r.LookbackMin != 0:
		start = *r.LookbackMin
	case r.MinDay != nil && *r.MinDay != 0:
		start = *r.MinDay
	}
	if start > r.MaxDay {
		start = r.MaxDay
	}

	return NewAnalysisWindow(start, r.MaxDay)
}
