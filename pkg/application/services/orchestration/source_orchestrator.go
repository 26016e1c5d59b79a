package orchestration

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/vsinha/skudiag/pkg/application/services/rangeresolver"
	"github.com/vsinha/skudiag/pkg/domain/entities"
	"github.com/vsinha/skudiag/pkg/domain/repositories"
	"github.com/vsinha/skudiag/pkg/infrastructure/events"
)

// SourceOrchestrator reconciles the four backend datasets of the SKU view.
//
// Every selection starts a new generation. Requests carry the generation that
// issued them and a response is committed only while that generation is
// still current; anything later is discarded. Selecting a new SKU also
// cancels the previous generation's requests.
type SourceOrchestrator struct {
	backend  repositories.Backend
	resolver *rangeresolver.RangeResolver
	events   events.EventStore
	logger   *slog.Logger

	mutex            sync.Mutex
	state            ViewState
	mounted          bool
	closed           bool
	cancelRange      context.CancelFunc
	generationCtx    context.Context
	cancelGeneration context.CancelFunc

	// pending counts unsettled requests; settled is closed when it drops to zero
	pending int
	settled chan struct{}
}

// NewSourceOrchestrator creates an orchestrator. A nil resolver resolves the
// range from backend; a nil event store disables publishing.
func NewSourceOrchestrator(
	backend repositories.Backend,
	resolver *rangeresolver.RangeResolver,
	eventStore events.EventStore,
	logger *slog.Logger,
) *SourceOrchestrator {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if resolver == nil {
		resolver = rangeresolver.NewRangeResolver(backend, logger)
	}
	return &SourceOrchestrator{
		backend:  backend,
		resolver: resolver,
		events:   eventStore,
		logger:   logger,
		state: ViewState{
			Window:    InitialWindow,
			RootCause: idle[entities.RootCauseResult](),
			Vendor:    idle[entities.VendorPerformance](),
			Trend:     idle[entities.InventoryTrend](),
		},
	}
}

// Mount starts resolving the simulation range. Later calls do nothing.
func (o *SourceOrchestrator) Mount(ctx context.Context) {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.mounted || o.closed {
		return
	}
	o.mounted = true

	// the range belongs to the mount, only Close cancels it
	rangeCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.cancelRange = cancel
	o.beginLocked(1)
	go o.resolveRange(rangeCtx)
}

// Select switches the view to sku. Re-selecting the current SKU does
// nothing; the empty SKU clears the view.
func (o *SourceOrchestrator) Select(ctx context.Context, sku entities.SKU) {
	o.Mount(ctx)

	o.mutex.Lock()
	if o.closed || sku == o.state.SKU {
		o.mutex.Unlock()
		return
	}

	previous := o.state.SKU
	if o.cancelGeneration != nil {
		o.cancelGeneration()
		o.cancelGeneration = nil
		o.generationCtx = nil
	}
	o.state.Generation++
	o.state.SKU = sku
	generation := o.state.Generation

	if sku.IsZero() {
		o.state.RootCause = idle[entities.RootCauseResult]()
		o.state.Vendor = idle[entities.VendorPerformance]()
		o.state.Trend = idle[entities.InventoryTrend]()
		o.mutex.Unlock()

		o.logger.Debug("selection cleared", "previous", previous, "generation", generation)
		o.publish(events.NewSelectionChangedEvent(sku, previous, generation))
		return
	}

	o.generationCtx, o.cancelGeneration = context.WithCancel(ctx)
	o.state.RootCause = loading[entities.RootCauseResult]()
	o.state.Vendor = loading[entities.VendorPerformance]()
	o.state.Trend = loading[entities.InventoryTrend]()

	o.beginLocked(1)
	go o.fetchTrend(o.generationCtx, generation, sku)
	if o.state.DayKnown() {
		o.startDayFetchesLocked()
	}
	o.mutex.Unlock()

	o.logger.Debug("selection changed", "sku", sku, "previous", previous, "generation", generation)
	o.publish(events.NewSelectionChangedEvent(sku, previous, generation))
}

// SetWindow overrides the analysis window. The override survives a later
// range resolution.
func (o *SourceOrchestrator) SetWindow(window entities.AnalysisWindow) error {
	if _, err := entities.NewAnalysisWindow(window.Start, window.End); err != nil {
		return err
	}

	o.mutex.Lock()
	o.state.Window = window
	o.state.WindowOverridden = true
	sku := o.state.SKU
	o.mutex.Unlock()

	o.publish(events.NewWindowChangedEvent(sku, window))
	return nil
}

// Snapshot returns a copy of the current state
func (o *SourceOrchestrator) Snapshot() ViewState {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.state
}

// Wait blocks until every request issued so far has settled or ctx is done
func (o *SourceOrchestrator) Wait(ctx context.Context) error {
	o.mutex.Lock()
	settled := o.settled
	o.mutex.Unlock()
	if settled == nil {
		return nil
	}

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close cancels every outstanding request. Responses arriving afterwards are discarded.
func (o *SourceOrchestrator) Close() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	if o.closed {
		return
	}
	o.closed = true
	if o.cancelRange != nil {
		o.cancelRange()
	}
	if o.cancelGeneration != nil {
		o.cancelGeneration()
	}
}

// beginLocked registers n requests. The caller holds the mutex.
func (o *SourceOrchestrator) beginLocked(n int) {
	if o.pending == 0 {
		o.settled = make(chan struct{})
	}
	o.pending += n
}

// finish marks one request settled
func (o *SourceOrchestrator) finish() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.pending--
	if o.pending == 0 {
		close(o.settled)
		o.settled = nil
	}
}

func (o *SourceOrchestrator) resolveRange(ctx context.Context) {
	defer o.finish()

	resolution := o.resolver.Resolve(ctx)

	o.mutex.Lock()
	if o.closed {
		o.mutex.Unlock()
		return
	}
	o.state.RangeResolved = true
	o.state.RangeFallback = resolution.Fallback
	o.state.SimulationDay = resolution.SimulationDay
	if !o.state.WindowOverridden {
		o.state.Window = resolution.Window
	}
	if !o.state.SKU.IsZero() {
		o.state.RootCause = loading[entities.RootCauseResult]()
		o.state.Vendor = loading[entities.VendorPerformance]()
		o.startDayFetchesLocked()
	}
	o.mutex.Unlock()

	o.publish(events.NewRangeResolvedEvent(
		resolution.Window,
		resolution.SimulationDay,
		resolution.Fallback,
		resolution.Err,
	))
}

// startDayFetchesLocked issues the requests keyed on (SKU, simulation day).
// The caller holds the mutex and has checked the day is known.
func (o *SourceOrchestrator) startDayFetchesLocked() {
	ctx := o.generationCtx
	generation := o.state.Generation
	sku := o.state.SKU
	day := o.state.SimulationDay

	o.beginLocked(2)
	go o.fetchRootCause(ctx, generation, sku, day)
	go o.fetchVendor(ctx, generation, sku)
}

func (o *SourceOrchestrator) fetchRootCause(ctx context.Context, generation uint64, sku entities.SKU, day int) {
	defer o.finish()

	result, err := o.backend.GetRootCause(ctx, sku, day)
	resource := Resource[entities.RootCauseResult]{Status: entities.Loaded, Value: result}
	switch {
	case err != nil:
		resource = Resource[entities.RootCauseResult]{
			Status: entities.Failed,
			Value:  entities.FailedRootCauseResult(),
			Err:    err,
		}
	case result == nil:
		resource.Value = &entities.RootCauseResult{}
	}

	committed := o.commit(generation, sku, repositories.EndpointRootCause, func(s *ViewState) {
		s.RootCause = resource
	})
	if !committed {
		return
	}
	if err != nil {
		o.logger.Warn("root cause request failed", "sku", sku, "day", day, "generation", generation, "error", err)
	}
	o.publish(events.NewRootCauseSettledEvent(sku, generation, day, resource.Status, resource.Value, err))
}

func (o *SourceOrchestrator) fetchVendor(ctx context.Context, generation uint64, sku entities.SKU) {
	defer o.finish()

	vendor, err := o.backend.GetVendorPerformance(ctx, sku)
	resource := Resource[entities.VendorPerformance]{Status: entities.Loaded, Value: vendor}
	if err != nil {
		resource = Resource[entities.VendorPerformance]{Status: entities.Failed, Err: err}
	}

	committed := o.commit(generation, sku, repositories.EndpointVendor, func(s *ViewState) {
		s.Vendor = resource
	})
	if !committed {
		return
	}
	if err != nil {
		o.logger.Warn("vendor performance request failed", "sku", sku, "generation", generation, "error", err)
	}
	o.publish(events.NewVendorSettledEvent(sku, generation, resource.Status, resource.Value, err))
}

func (o *SourceOrchestrator) fetchTrend(ctx context.Context, generation uint64, sku entities.SKU) {
	defer o.finish()

	trend, err := o.backend.GetInventoryTrend(ctx, sku)
	if err == nil && trend == nil {
		err = errors.New("empty inventory trend response")
	}
	resource := Resource[entities.InventoryTrend]{Status: entities.Loaded, Value: trend}
	if err != nil {
		resource = Resource[entities.InventoryTrend]{Status: entities.Failed, Err: err}
	}

	committed := o.commit(generation, sku, repositories.EndpointTrend, func(s *ViewState) {
		s.Trend = resource
	})
	if !committed {
		return
	}
	if err != nil {
		o.logger.Warn("inventory trend request failed", "sku", sku, "generation", generation, "error", err)
	}
	o.publish(events.NewTrendSettledEvent(sku, generation, resource.Status, resource.Value, err))
}

// commit applies a response if its generation is still current
func (o *SourceOrchestrator) commit(
	generation uint64,
	sku entities.SKU,
	source repositories.Endpoint,
	apply func(*ViewState),
) bool {
	o.mutex.Lock()
	current := o.state.Generation
	if o.closed || generation != current {
		o.mutex.Unlock()
		o.logger.Debug("discarding stale response",
			"sku", sku,
			"endpoint", source,
			"generation", generation,
			"current_generation", current,
		)
		o.publish(events.NewResponseDiscardedEvent(sku, string(source), generation, current))
		return false
	}
	apply(&o.state)
	o.mutex.Unlock()
	return true
}

func (o *SourceOrchestrator) publish(event events.Event) {
	if o.events == nil {
		return
	}
	if err := o.events.AppendEvent(event.StreamID(), event); err != nil {
		o.logger.Warn("failed to publish view event", "type", event.Type(), "error", err)
	}
}
