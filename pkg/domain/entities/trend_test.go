package entities

import (
	"encoding/json"
	"testing"
)

func TestInventoryTrend_Validate(t *testing.T) {
	trend := &InventoryTrend{
		Days:        []int{1, 2, 3},
		Inventory:   []float64{5, 4, 3},
		Fulfilled:   []float64{1, 1, 1},
		Unfulfilled: []float64{0, 0, 0},
		MeanDemand:  []float64{1, 1, 1},
	}
	if err := trend.Validate(); err != nil {
		t.Fatalf("Expected aligned trend to validate: %v", err)
	}

	trend.MeanDemand = []float64{1, 1}
	err := trend.Validate()
	if err == nil {
		t.Fatal("Expected error for misaligned mean_demand, but got none")
	}
	if err.Error() != "mean_demand has 2 values, expected 3 to match days" {
		t.Errorf("Unexpected error message: %s", err.Error())
	}
}

func TestInventoryTrend_PriceAbsentDecodesToZero(t *testing.T) {
	body := `{"days":[1],"inventory":[3],"fulfilled":[2],"unfulfilled":[1],"mean_demand":[3]}`

	var trend InventoryTrend
	if err := json.Unmarshal([]byte(body), &trend); err != nil {
		t.Fatalf("Failed to decode trend: %v", err)
	}
	if !trend.Price.IsZero() {
		t.Errorf("Expected zero price, got %s", trend.Price)
	}

	if err := json.Unmarshal([]byte(`{"days":[],"price":12.25}`), &trend); err != nil {
		t.Fatalf("Failed to decode trend: %v", err)
	}
	if trend.Price.String() != "12.25" {
		t.Errorf("Expected price 12.25, got %s", trend.Price)
	}
}

func TestInventoryTrend_PointsAndBounds(t *testing.T) {
	trend := &InventoryTrend{}
	trend.AppendPoint(TrendPoint{Day: 4, Inventory: 10, Fulfilled: 2, Unfulfilled: 1, MeanDemand: 3})
	trend.AppendPoint(TrendPoint{Day: 2, Inventory: 12, Fulfilled: 3, Unfulfilled: 0, MeanDemand: 3})

	points := trend.Points()
	if len(points) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(points))
	}
	if points[0].Day != 4 || points[1].Day != 2 {
		t.Errorf("Expected points to keep received order, got days %d,%d", points[0].Day, points[1].Day)
	}

	lo, hi, ok := trend.DayBounds()
	if !ok || lo != 2 || hi != 4 {
		t.Errorf("Expected bounds 2..4, got %d..%d (ok=%v)", lo, hi, ok)
	}

	var empty *InventoryTrend
	if !empty.IsEmpty() {
		t.Error("Expected nil trend to be empty")
	}
	if len(empty.Points()) != 0 {
		t.Error("Expected nil trend to have no points")
	}
}
