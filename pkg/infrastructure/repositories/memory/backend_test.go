package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/skudiag/pkg/domain/entities"
)

func TestBackend_SaveAndGet(t *testing.T) {
	backend := NewBackend(4)
	ctx := context.Background()

	minDay := 1
	if err := backend.SetSimulationRange(entities.SimulationRange{MaxDay: 30, MinDay: &minDay}); err != nil {
		t.Fatalf("Failed to set simulation range: %v", err)
	}

	rootCause := "Vendor late"
	if err := backend.SaveRootCause("A", entities.RootCauseResult{RootCause: &rootCause}); err != nil {
		t.Fatalf("Failed to save root cause: %v", err)
	}

	trend := entities.InventoryTrend{
		Days:        []int{1, 2},
		Inventory:   []float64{3, 4},
		Fulfilled:   []float64{1, 1},
		Unfulfilled: []float64{0, 1},
		MeanDemand:  []float64{1, 2},
		Price:       decimal.NewFromInt(9),
	}
	if err := backend.SaveInventoryTrend("A", trend); err != nil {
		t.Fatalf("Failed to save trend: %v", err)
	}

	rng, err := backend.GetSimulationRange(ctx)
	if err != nil {
		t.Fatalf("Failed to get simulation range: %v", err)
	}
	if rng.MaxDay != 30 {
		t.Errorf("Expected maxDay 30, got %d", rng.MaxDay)
	}

	result, err := backend.GetRootCause(ctx, "A", 30)
	if err != nil {
		t.Fatalf("Failed to get root cause: %v", err)
	}
	if result.CallOutText() != "Vendor late" {
		t.Errorf("Expected root cause 'Vendor late', got %s", result.CallOutText())
	}

	got, err := backend.GetInventoryTrend(ctx, "A")
	if err != nil {
		t.Fatalf("Failed to get trend: %v", err)
	}
	if len(got.Days) != 2 || !got.Price.Equal(decimal.NewFromInt(9)) {
		t.Errorf("Unexpected trend: %+v", got)
	}
}

func TestBackend_NotFound(t *testing.T) {
	backend := NewBackend(0)
	ctx := context.Background()

	if _, err := backend.GetSimulationRange(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing range, got %v", err)
	}
	if _, err := backend.GetRootCause(ctx, "missing", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing root cause, got %v", err)
	}
	if _, err := backend.GetInventoryTrend(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for missing trend, got %v", err)
	}

	vendor, err := backend.GetVendorPerformance(ctx, "missing")
	if err != nil || vendor != nil {
		t.Errorf("Expected nil vendor without error, got %v, %v", vendor, err)
	}
}

func TestBackend_RootCauseDayOutsideRange(t *testing.T) {
	backend := NewBackend(1)
	_ = backend.SetSimulationRange(entities.SimulationRange{MaxDay: 10})
	_ = backend.SaveRootCause("A", entities.RootCauseResult{})

	if _, err := backend.GetRootCause(context.Background(), "A", 11); err == nil {
		t.Error("Expected error for a day past maxDay, but got none")
	}
}

func TestBackend_RejectsInvalidInput(t *testing.T) {
	backend := NewBackend(1)

	if err := backend.SetSimulationRange(entities.SimulationRange{MaxDay: 0}); err == nil {
		t.Error("Expected error for zero maxDay, but got none")
	}
	if err := backend.SaveRootCause("", entities.RootCauseResult{}); err == nil {
		t.Error("Expected error for empty SKU, but got none")
	}
	misaligned := entities.InventoryTrend{Days: []int{1, 2}, Inventory: []float64{1}}
	if err := backend.SaveInventoryTrend("A", misaligned); err == nil {
		t.Error("Expected error for misaligned trend, but got none")
	}
}

func TestBackend_CancelledContext(t *testing.T) {
	backend := NewBackend(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := backend.GetVendorPerformance(ctx, "A"); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestBackend_SKUs(t *testing.T) {
	backend := NewBackend(3)
	_ = backend.SaveRootCause("B", entities.RootCauseResult{})
	_ = backend.SaveVendorPerformance("A", entities.VendorPerformance{VendorID: "V1"})
	_ = backend.SaveInventoryTrend("C", entities.InventoryTrend{})
	_ = backend.SaveInventoryTrend("A", entities.InventoryTrend{})

	skus := backend.SKUs()
	if len(skus) != 3 || skus[0] != "A" || skus[1] != "B" || skus[2] != "C" {
		t.Errorf("Expected [A B C], got %v", skus)
	}
}

func TestBackend_ReturnsIndependentCopies(t *testing.T) {
	backend := NewBackend(1)
	ctx := context.Background()

	cause := "Vendor late"
	arrival := 6
	if err := backend.SaveRootCause("A", entities.RootCauseResult{
		RootCause: &cause,
		Extra:     map[string]any{"signals": []any{"late_po"}},
	}); err != nil {
		t.Fatalf("Failed to save root cause: %v", err)
	}
	if err := backend.SaveVendorPerformance("A", entities.VendorPerformance{
		VendorID: "V-1",
		PurchaseOrders: []entities.PurchaseOrder{
			{ID: "PO-1", ArrivalDay: &arrival, Extra: map[string]any{"carrier": "ACME"}},
		},
	}); err != nil {
		t.Fatalf("Failed to save vendor: %v", err)
	}
	if err := backend.SaveInventoryTrend("A", entities.InventoryTrend{
		Days:        []int{1},
		Inventory:   []float64{5},
		Fulfilled:   []float64{1},
		Unfulfilled: []float64{0},
		MeanDemand:  []float64{1},
	}); err != nil {
		t.Fatalf("Failed to save trend: %v", err)
	}

	// mutate everything a caller could reach
	cause = "changed by caller"
	arrival = 99
	first, _ := backend.GetRootCause(ctx, "A", 1)
	*first.RootCause = "changed"
	first.Extra["signals"].([]any)[0] = "changed"
	first.Extra["added"] = true
	vendor, _ := backend.GetVendorPerformance(ctx, "A")
	vendor.PurchaseOrders[0].ID = "changed"
	*vendor.PurchaseOrders[0].ArrivalDay = 42
	vendor.PurchaseOrders[0].Extra["carrier"] = "changed"
	trend, _ := backend.GetInventoryTrend(ctx, "A")
	trend.Inventory[0] = -1
	trend.Days[0] = 7

	again, _ := backend.GetRootCause(ctx, "A", 1)
	if again.CallOutText() != "Vendor late" {
		t.Errorf("Expected stored root cause unchanged, got %q", again.CallOutText())
	}
	if again.Extra["signals"].([]any)[0] != "late_po" || len(again.Extra) != 1 {
		t.Errorf("Expected stored extra fields unchanged, got %v", again.Extra)
	}

	vendorAgain, _ := backend.GetVendorPerformance(ctx, "A")
	po := vendorAgain.PurchaseOrders[0]
	if po.ID != "PO-1" || *po.ArrivalDay != 6 || po.Extra["carrier"] != "ACME" {
		t.Errorf("Expected stored purchase order unchanged, got %+v (arrival %d)", po, *po.ArrivalDay)
	}

	trendAgain, _ := backend.GetInventoryTrend(ctx, "A")
	if trendAgain.Inventory[0] != 5 || trendAgain.Days[0] != 1 {
		t.Errorf("Expected stored trend unchanged, got %+v", trendAgain)
	}
}
