package scenario

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/skudiag/pkg/domain/entities"
	"github.com/vsinha/skudiag/pkg/domain/repositories"
)

func TestLoad_SampleScenario(t *testing.T) {
	s, err := Load(filepath.Join("..", "..", "..", "..", "fixtures", "sample"))
	if err != nil {
		t.Fatalf("Failed to load sample scenario: %v", err)
	}
	ctx := context.Background()

	rng, err := s.Backend.GetSimulationRange(ctx)
	if err != nil {
		t.Fatalf("Failed to get range: %v", err)
	}
	if rng.MaxDay != 10 {
		t.Errorf("Expected maxDay 10, got %d", rng.MaxDay)
	}

	trend, err := s.Backend.GetInventoryTrend(ctx, "X")
	if err != nil {
		t.Fatalf("Failed to get trend: %v", err)
	}
	if !trend.Price.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Expected price 100, got %s", trend.Price)
	}
	if len(trend.Days) != 3 {
		t.Errorf("Expected 3 days for X, got %d", len(trend.Days))
	}

	vendor, err := s.Backend.GetVendorPerformance(ctx, "X")
	if err != nil || vendor == nil {
		t.Fatalf("Expected vendor for X, got %v, %v", vendor, err)
	}
	if vendor.VendorID != "V-17" || len(vendor.PurchaseOrders) != 2 {
		t.Errorf("Unexpected vendor: %+v", vendor)
	}
	if vendor.AverageDelay != 1 {
		t.Errorf("Expected average delay 1, got %v", vendor.AverageDelay)
	}

	empty, err := s.Backend.GetVendorPerformance(ctx, "NOVENDOR")
	if err != nil || empty == nil {
		t.Fatalf("Expected vendor record for NOVENDOR, got %v, %v", empty, err)
	}
	if empty.HasOrders() {
		t.Error("Expected NOVENDOR vendor without orders")
	}

	if !s.ShouldFail(repositories.EndpointRootCause, "BROKEN") {
		t.Error("Expected BROKEN root cause to be scripted as failing")
	}
	if s.ShouldFail(repositories.EndpointTrend, "BROKEN") {
		t.Error("Expected BROKEN trend to succeed")
	}

	auto, err := s.Backend.GetRootCause(ctx, "SKU-1001", 10)
	if err != nil {
		t.Fatalf("Failed to get root cause: %v", err)
	}
	if !auto.IsAutoAction() {
		t.Error("Expected SKU-1001 to carry an auto action")
	}
}

func TestLoad_YAMLOnly(t *testing.T) {
	dir := t.TempDir()
	content := `
simulation_range:
  max_day: 60
  lookback_min: 31
skus:
  A:
    root_cause: Late vendor.
`
	if err := os.WriteFile(filepath.Join(dir, ScenarioFile), []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write scenario: %v", err)
	}

	s, err := Load(dir)
	if err != nil {
		t.Fatalf("Failed to load scenario: %v", err)
	}

	rng, _ := s.Backend.GetSimulationRange(context.Background())
	window, err := rng.DefaultWindow()
	if err != nil {
		t.Fatalf("Unexpected window error: %v", err)
	}
	if window != (entities.AnalysisWindow{Start: 31, End: 60}) {
		t.Errorf("Expected window [31, 60], got %s", window)
	}

	vendor, err := s.Backend.GetVendorPerformance(context.Background(), "A")
	if err != nil || vendor != nil {
		t.Errorf("Expected no vendor data for A, got %v, %v", vendor, err)
	}
}

func TestBuild_Errors(t *testing.T) {
	testCases := []struct {
		name string
		file File
	}{
		{
			name: "unknown failing endpoint",
			file: File{SKUs: map[string]SKUSpec{"A": {Fail: []string{"nope"}}}},
		},
		{
			name: "price without trend",
			file: File{SKUs: map[string]SKUSpec{"A": {Price: "3"}}},
		},
		{
			name: "invalid range",
			file: File{SimulationRange: &RangeSpec{MaxDay: -1}},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Build(tc.file, nil, nil); err == nil {
				t.Error("Expected error, but got none")
			}
		})
	}
}
