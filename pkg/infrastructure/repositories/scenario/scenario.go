// Package scenario loads a fixture directory into an in-memory backend.
//
// A scenario directory holds scenario.yaml plus optional trend.csv and
// purchase_orders.csv files. The YAML file carries the simulation range and
// the per-SKU values that have no natural CSV shape.
package scenario

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/skudiag/pkg/domain/entities"
	"github.com/vsinha/skudiag/pkg/domain/repositories"
	"github.com/vsinha/skudiag/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/skudiag/pkg/infrastructure/repositories/memory"
)

const (
	ScenarioFile       = "scenario.yaml"
	TrendFile          = "trend.csv"
	PurchaseOrdersFile = "purchase_orders.csv"
)

// File is the YAML document describing a scenario
type File struct {
	Name            string             `yaml:"name"`
	SimulationRange *RangeSpec         `yaml:"simulation_range"`
	SKUs            map[string]SKUSpec `yaml:"skus"`
}

// RangeSpec mirrors the simulation-range response
type RangeSpec struct {
	MaxDay      int  `yaml:"max_day"`
	MinDay      *int `yaml:"min_day"`
	LookbackMin *int `yaml:"lookback_min"`
}

// SKUSpec holds the per-SKU values of a scenario
type SKUSpec struct {
	Price           string         `yaml:"price"`
	RootCause       *string        `yaml:"root_cause"`
	SuggestedAction *string        `yaml:"suggested_action"`
	AutoAction      *bool          `yaml:"auto_action"`
	Context         map[string]any `yaml:"context"`
	Vendor          *VendorSpec    `yaml:"vendor"`
	// Fail lists endpoints that should answer with a server error for this SKU
	Fail []string `yaml:"fail"`
}

// VendorSpec identifies the vendor. Averages are derived from the purchase
// orders when left out.
type VendorSpec struct {
	ID              string   `yaml:"id"`
	AverageDelay    *float64 `yaml:"average_delay"`
	AverageFillRate *float64 `yaml:"average_fill_rate"`
}

// Scenario is a loaded fixture set
type Scenario struct {
	Name     string
	Backend  *memory.Backend
	failures map[entities.SKU]map[repositories.Endpoint]bool
}

// ShouldFail reports whether the scenario scripts a failure of endpoint for sku
func (s *Scenario) ShouldFail(endpoint repositories.Endpoint, sku entities.SKU) bool {
	return s.failures[sku][endpoint]
}

// SKUs lists the SKUs the scenario defines
func (s *Scenario) SKUs() []entities.SKU {
	return s.Backend.SKUs()
}

// Load reads the scenario in dir
func Load(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, ScenarioFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ScenarioFile, err)
	}

	loader := csv.NewLoader()
	trends := map[entities.SKU]*entities.InventoryTrend{}
	if path, ok := optionalFile(dir, TrendFile); ok {
		if trends, err = loader.LoadTrends(path); err != nil {
			return nil, err
		}
	}
	orders := map[entities.SKU][]entities.PurchaseOrder{}
	if path, ok := optionalFile(dir, PurchaseOrdersFile); ok {
		if orders, err = loader.LoadPurchaseOrders(path); err != nil {
			return nil, err
		}
	}

	return Build(file, trends, orders)
}

// Build assembles a scenario from already parsed parts
func Build(
	file File,
	trends map[entities.SKU]*entities.InventoryTrend,
	orders map[entities.SKU][]entities.PurchaseOrder,
) (*Scenario, error) {
	backend := memory.NewBackend(len(file.SKUs))
	s := &Scenario{
		Name:     file.Name,
		Backend:  backend,
		failures: make(map[entities.SKU]map[repositories.Endpoint]bool),
	}

	if file.SimulationRange != nil {
		rng := entities.SimulationRange{
			MaxDay:      file.SimulationRange.MaxDay,
			MinDay:      file.SimulationRange.MinDay,
			LookbackMin: file.SimulationRange.LookbackMin,
		}
		if err := backend.SetSimulationRange(rng); err != nil {
			return nil, err
		}
	}

	names := make([]string, 0, len(file.SKUs))
	for name := range file.SKUs {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		sku, err := entities.ParseSKU(name)
		if err != nil {
			return nil, err
		}
		if err := s.addSKU(sku, file.SKUs[name], trends[sku], orders[sku]); err != nil {
			return nil, fmt.Errorf("sku %s: %w", sku, err)
		}
	}

	// CSV rows for SKUs the YAML never mentions still get served
	for sku, trend := range trends {
		if _, declared := file.SKUs[string(sku)]; declared {
			continue
		}
		if err := backend.SaveInventoryTrend(sku, *trend); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func (s *Scenario) addSKU(
	sku entities.SKU,
	spec SKUSpec,
	trend *entities.InventoryTrend,
	orders []entities.PurchaseOrder,
) error {
	for _, name := range spec.Fail {
		endpoint, err := repositories.ParseEndpoint(name)
		if err != nil {
			return err
		}
		if s.failures[sku] == nil {
			s.failures[sku] = make(map[repositories.Endpoint]bool)
		}
		s.failures[sku][endpoint] = true
	}

	if spec.RootCause != nil || spec.SuggestedAction != nil || spec.AutoAction != nil || len(spec.Context) > 0 {
		result := entities.RootCauseResult{
			RootCause:       spec.RootCause,
			SuggestedAction: spec.SuggestedAction,
			AutoAction:      spec.AutoAction,
			Extra:           spec.Context,
		}
		if err := s.Backend.SaveRootCause(sku, result); err != nil {
			return err
		}
	}

	if trend != nil {
		if spec.Price != "" {
			price, err := decimal.NewFromString(spec.Price)
			if err != nil {
				return fmt.Errorf("invalid price %q: %w", spec.Price, err)
			}
			trend.Price = price
		}
		if err := s.Backend.SaveInventoryTrend(sku, *trend); err != nil {
			return err
		}
	} else if spec.Price != "" {
		return errors.New("price given without a trend")
	}

	if spec.Vendor != nil || len(orders) > 0 {
		if err := s.Backend.SaveVendorPerformance(sku, buildVendor(spec.Vendor, orders)); err != nil {
			return err
		}
	}
	return nil
}

func buildVendor(spec *VendorSpec, orders []entities.PurchaseOrder) entities.VendorPerformance {
	vendor := entities.VendorPerformance{
		PurchaseOrders: orders,
	}
	if vendor.PurchaseOrders == nil {
		vendor.PurchaseOrders = []entities.PurchaseOrder{}
	}

	var delay, fill float64
	for _, po := range orders {
		delay += po.DelayDays
		fill += po.FillRate()
	}
	if n := float64(len(orders)); n > 0 {
		vendor.AverageDelay = delay / n
		vendor.AverageFillRate = fill / n
	}

	if spec != nil {
		vendor.VendorID = entities.VendorID(spec.ID)
		if spec.AverageDelay != nil {
			vendor.AverageDelay = *spec.AverageDelay
		}
		if spec.AverageFillRate != nil {
			vendor.AverageFillRate = *spec.AverageFillRate
		}
	}
	return vendor
}

func optionalFile(dir, name string) (string, bool) {
	path := filepath.Join(dir, name)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}
