package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/vsinha/skudiag/pkg/domain/entities"
	"github.com/vsinha/skudiag/pkg/domain/repositories"
)

// ErrNotFound is returned for SKUs the backend holds no data for
var ErrNotFound = errors.New("not found")

// Backend provides in-memory storage for every dataset of the SKU view
type Backend struct {
	mutex           sync.RWMutex
	simulationRange *entities.SimulationRange
	rootCauses      map[entities.SKU]entities.RootCauseResult
	vendors         map[entities.SKU]entities.VendorPerformance
	trends          map[entities.SKU]entities.InventoryTrend
}

// NewBackend creates an empty in-memory backend
func NewBackend(expectedSKUs int) *Backend {
	return &Backend{
		rootCauses: make(map[entities.SKU]entities.RootCauseResult, expectedSKUs),
		vendors:    make(map[entities.SKU]entities.VendorPerformance, expectedSKUs),
		trends:     make(map[entities.SKU]entities.InventoryTrend, expectedSKUs),
	}
}

// Verify interface compliance
var _ repositories.Backend = (*Backend)(nil)

// SetSimulationRange stores the simulation range
func (b *Backend) SetSimulationRange(rng entities.SimulationRange) error {
	if err := rng.Validate(); err != nil {
		return fmt.Errorf("invalid simulation range: %w", err)
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()
	stored := rng.Clone()
	b.simulationRange = &stored
	return nil
}

// SaveRootCause stores the diagnosis for a SKU
func (b *Backend) SaveRootCause(sku entities.SKU, result entities.RootCauseResult) error {
	if sku.IsZero() {
		return fmt.Errorf("sku cannot be empty")
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.rootCauses[sku] = result.Clone()
	return nil
}

// SaveVendorPerformance stores vendor performance for a SKU
func (b *Backend) SaveVendorPerformance(sku entities.SKU, vendor entities.VendorPerformance) error {
	if sku.IsZero() {
		return fmt.Errorf("sku cannot be empty")
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.vendors[sku] = vendor.Clone()
	return nil
}

// SaveInventoryTrend stores the daily series for a SKU
func (b *Backend) SaveInventoryTrend(sku entities.SKU, trend entities.InventoryTrend) error {
	if sku.IsZero() {
		return fmt.Errorf("sku cannot be empty")
	}
	if err := trend.Validate(); err != nil {
		return fmt.Errorf("invalid trend for %s: %w", sku, err)
	}
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.trends[sku] = trend.Clone()
	return nil
}

// GetSimulationRange returns the stored simulation range
func (b *Backend) GetSimulationRange(ctx context.Context) (*entities.SimulationRange, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	if b.simulationRange == nil {
		return nil, fmt.Errorf("simulation range: %w", ErrNotFound)
	}
	rng := b.simulationRange.Clone()
	return &rng, nil
}

// GetRootCause returns the diagnosis for a SKU. The day must lie inside the simulation range when one is set.
func (b *Backend) GetRootCause(ctx context.Context, sku entities.SKU, day int) (*entities.RootCauseResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	if b.simulationRange != nil && (day < 1 || day > b.simulationRange.MaxDay) {
		return nil, fmt.Errorf("day %d outside simulation range 1..%d", day, b.simulationRange.MaxDay)
	}
	stored, exists := b.rootCauses[sku]
	if !exists {
		return nil, fmt.Errorf("root cause for %s: %w", sku, ErrNotFound)
	}
	result := stored.Clone()
	return &result, nil
}

// GetVendorPerformance returns vendor performance for a SKU, or nil when none is stored
func (b *Backend) GetVendorPerformance(ctx context.Context, sku entities.SKU) (*entities.VendorPerformance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	stored, exists := b.vendors[sku]
	if !exists {
		return nil, nil
	}
	vendor := stored.Clone()
	return &vendor, nil
}

// GetInventoryTrend returns the daily series for a SKU
func (b *Backend) GetInventoryTrend(ctx context.Context, sku entities.SKU) (*entities.InventoryTrend, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	stored, exists := b.trends[sku]
	if !exists {
		return nil, fmt.Errorf("inventory trend for %s: %w", sku, ErrNotFound)
	}
	trend := stored.Clone()
	return &trend, nil
}

// SKUs returns every SKU with at least one dataset, sorted
func (b *Backend) SKUs() []entities.SKU {
	b.mutex.RLock()
	defer b.mutex.RUnlock()

	seen := make(map[entities.SKU]bool)
	for sku := range b.rootCauses {
		seen[sku] = true
	}
	for sku := range b.vendors {
		seen[sku] = true
	}
	for sku := range b.trends {
		seen[sku] = true
	}

	skus := make([]entities.SKU, 0, len(seen))
	for sku := range seen {
		skus = append(skus, sku)
	}
	sort.Slice(skus, func(i, j int) bool { return skus[i] < skus[j] })
	return skus
}
