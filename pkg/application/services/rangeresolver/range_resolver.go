package rangeresolver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/vsinha/skudiag/pkg/domain/entities"
	"github.com/vsinha/skudiag/pkg/domain/repositories"
)

// Resolution is the outcome of resolving the simulation range
type Resolution struct {
	Range         entities.SimulationRange
	Window        entities.AnalysisWindow
	SimulationDay int
	Fallback      bool
	Err           error
}

// RangeResolver fetches the simulation range once and derives the default
// analysis window from it. Failures fall back to days 1..30 and are never retried.
type RangeResolver struct {
	repo   repositories.SimulationRangeRepository
	logger *slog.Logger

	once       sync.Once
	resolution Resolution
}

// NewRangeResolver creates a resolver backed by repo
func NewRangeResolver(repo repositories.SimulationRangeRepository, logger *slog.Logger) *RangeResolver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &RangeResolver{
		repo:   repo,
		logger: logger,
	}
}

// Resolve returns the resolution, calling the backend on first use only.
// Concurrent callers block until the first call completes.
func (r *RangeResolver) Resolve(ctx context.Context) Resolution {
	r.once.Do(func() {
		r.resolution = r.resolve(ctx)
	})
	return r.resolution
}

func (r *RangeResolver) resolve(ctx context.Context) Resolution {
	rng, err := r.repo.GetSimulationRange(ctx)
	if err == nil && rng == nil {
		err = fmt.Errorf("empty simulation range response")
	}

	var window entities.AnalysisWindow
	if err == nil {
		window, err = rng.DefaultWindow()
	}

	if err != nil {
		fallback := Fallback()
		fallback.Err = fmt.Errorf("failed to resolve simulation range: %w", err)
		r.logger.Warn("simulation range unavailable, using default window",
			"window", fallback.Window.String(),
			"error", err,
		)
		return fallback
	}

	r.logger.Debug("simulation range resolved",
		"window", window.String(),
		"simulation_day", rng.MaxDay,
	)
	return Resolution{
		Range:         *rng,
		Window:        window,
		SimulationDay: rng.MaxDay,
	}
}

// Fallback returns the resolution used when the backend cannot supply a range
func Fallback() Resolution {
	rng := entities.FallbackSimulationRange()
	return Resolution{
		Range:         rng,
		Window:        entities.AnalysisWindow{Start: entities.FallbackMinDay, End: entities.FallbackMaxDay},
		SimulationDay: entities.FallbackMaxDay,
		Fallback:      true,
	}
}
