package repositories

import (
	"context"
	"fmt"

	"github.com/vsinha/skudiag/pkg/domain/entities"
)

// SimulationRangeRepository provides the days for which backend data exists
type SimulationRangeRepository interface {
	GetSimulationRange(ctx context.Context) (*entities.SimulationRange, error)
}

// RootCauseRepository provides the diagnosis and suggested action for a SKU on a day
type RootCauseRepository interface {
	GetRootCause(ctx context.Context, sku entities.SKU, day int) (*entities.RootCauseResult, error)
}

// VendorRepository provides vendor delivery performance for a SKU.
// A nil result with a nil error means the backend has no vendor data.
type VendorRepository interface {
	GetVendorPerformance(ctx context.Context, sku entities.SKU) (*entities.VendorPerformance, error)
}

// TrendRepository provides the full daily inventory and demand series for a SKU
type TrendRepository interface {
	GetInventoryTrend(ctx context.Context, sku entities.SKU) (*entities.InventoryTrend, error)
}

// Backend groups every dataset the SKU view depends on
type Backend interface {
	SimulationRangeRepository
	RootCauseRepository
	VendorRepository
	TrendRepository
}

// Endpoint names one backend dataset
type Endpoint string

const (
	EndpointSimulationRange Endpoint = "simulation-range"
	EndpointRootCause       Endpoint = "sku-root-cause"
	EndpointVendor          Endpoint = "vendor-performance"
	EndpointTrend           Endpoint = "get_inventory_trend"
)

// Endpoints lists every dataset in the order the view requests them
var Endpoints = []Endpoint{
	EndpointSimulationRange,
	EndpointRootCause,
	EndpointVendor,
	EndpointTrend,
}

// ParseEndpoint maps a name back to its Endpoint
func ParseEndpoint(name string) (Endpoint, error) {
	for _, e := range Endpoints {
		if string(e) == name {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown endpoint: %s", name)
}
