// Package testing provides a scriptable backend for exercising the view
// orchestration under controlled timing.
package testing

import (
	"context"
	"sync"
	"time"

	"github.com/vsinha/skudiag/pkg/domain/entities"
	"github.com/vsinha/skudiag/pkg/domain/repositories"
)

// Call records one request made to the fake backend
type Call struct {
	Endpoint repositories.Endpoint
	SKU      entities.SKU
	Day      int
}

type callKey struct {
	endpoint repositories.Endpoint
	sku      entities.SKU
}

// FakeBackend wraps a real backend and lets tests hold responses, inject
// failures and inspect the requests made. The simulation range is keyed by
// the empty SKU.
type FakeBackend struct {
	inner repositories.Backend

	mutex        sync.Mutex
	gates        map[callKey]chan struct{}
	failures     map[callKey]error
	calls        []Call
	ignoreCancel bool
}

// NewFakeBackend wraps inner
func NewFakeBackend(inner repositories.Backend) *FakeBackend {
	return &FakeBackend{
		inner:    inner,
		gates:    make(map[callKey]chan struct{}),
		failures: make(map[callKey]error),
	}
}

// Verify interface compliance
var _ repositories.Backend = (*FakeBackend)(nil)

// IgnoreCancel makes held requests deliver their response even after the
// caller's context is cancelled, the way a server that already answered would.
func (f *FakeBackend) IgnoreCancel() *FakeBackend {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.ignoreCancel = true
	return f
}

// Hold blocks requests to endpoint for sku until the returned release is called
func (f *FakeBackend) Hold(endpoint repositories.Endpoint, sku entities.SKU) (release func()) {
	gate := make(chan struct{})
	f.mutex.Lock()
	f.gates[callKey{endpoint, sku}] = gate
	f.mutex.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

// Fail makes requests to endpoint for sku return err
func (f *FakeBackend) Fail(endpoint repositories.Endpoint, sku entities.SKU, err error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.failures[callKey{endpoint, sku}] = err
}

// Calls returns every request made so far, in arrival order
func (f *FakeBackend) Calls() []Call {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	calls := make([]Call, len(f.calls))
	copy(calls, f.calls)
	return calls
}

// CallCount counts the requests made to endpoint for sku
func (f *FakeBackend) CallCount(endpoint repositories.Endpoint, sku entities.SKU) int {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	count := 0
	for _, c := range f.calls {
		if c.Endpoint == endpoint && c.SKU == sku {
			count++
		}
	}
	return count
}

// WaitForCall waits until at least one request to endpoint for sku has arrived
func (f *FakeBackend) WaitForCall(endpoint repositories.Endpoint, sku entities.SKU, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if f.CallCount(endpoint, sku) > 0 {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return f.CallCount(endpoint, sku) > 0
}

func (f *FakeBackend) GetSimulationRange(ctx context.Context) (*entities.SimulationRange, error) {
	ctx, err := f.enter(ctx, Call{Endpoint: repositories.EndpointSimulationRange})
	if err != nil {
		return nil, err
	}
	return f.inner.GetSimulationRange(ctx)
}

func (f *FakeBackend) GetRootCause(ctx context.Context, sku entities.SKU, day int) (*entities.RootCauseResult, error) {
	ctx, err := f.enter(ctx, Call{Endpoint: repositories.EndpointRootCause, SKU: sku, Day: day})
	if err != nil {
		return nil, err
	}
	return f.inner.GetRootCause(ctx, sku, day)
}

func (f *FakeBackend) GetVendorPerformance(ctx context.Context, sku entities.SKU) (*entities.VendorPerformance, error) {
	ctx, err := f.enter(ctx, Call{Endpoint: repositories.EndpointVendor, SKU: sku})
	if err != nil {
		return nil, err
	}
	return f.inner.GetVendorPerformance(ctx, sku)
}

func (f *FakeBackend) GetInventoryTrend(ctx context.Context, sku entities.SKU) (*entities.InventoryTrend, error) {
	ctx, err := f.enter(ctx, Call{Endpoint: repositories.EndpointTrend, SKU: sku})
	if err != nil {
		return nil, err
	}
	return f.inner.GetInventoryTrend(ctx, sku)
}

func (f *FakeBackend) enter(ctx context.Context, call Call) (context.Context, error) {
	key := callKey{call.Endpoint, call.SKU}

	f.mutex.Lock()
	f.calls = append(f.calls, call)
	gate := f.gates[key]
	ignoreCancel := f.ignoreCancel
	f.mutex.Unlock()

	if ignoreCancel {
		ctx = context.WithoutCancel(ctx)
	}

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx, ctx.Err()
		}
	}

	f.mutex.Lock()
	err := f.failures[key]
	f.mutex.Unlock()
	return ctx, err
}
