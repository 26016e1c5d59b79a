package csv

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

func TestLoader_LoadTrends(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "trend.csv", `sku,day,inventory,fulfilled,unfulfilled,mean_demand
X,1,20,10,0,8
X,2,10,0,10,9
Y,1,5,1,1,2
X,3,15,5,5,10
`)

	trends, err := NewLoader().LoadTrends(path)
	if err != nil {
		t.Fatalf("Failed to load trends: %v", err)
	}

	if len(trends) != 2 {
		t.Fatalf("Expected 2 SKUs, got %d", len(trends))
	}

	x := trends["X"]
	if len(x.Days) != 3 || x.Days[2] != 3 {
		t.Errorf("Expected X days [1 2 3], got %v", x.Days)
	}
	if x.Unfulfilled[1] != 10 || x.MeanDemand[2] != 10 {
		t.Errorf("Unexpected X series: %+v", x)
	}
	if err := x.Validate(); err != nil {
		t.Errorf("Expected aligned series, got %v", err)
	}
}

func TestLoader_LoadTrends_Errors(t *testing.T) {
	testCases := []struct {
		name    string
		content string
	}{
		{"header only", "sku,day,inventory,fulfilled,unfulfilled,mean_demand\n"},
		{"wrong header", "sku,day,stock,fulfilled,unfulfilled,mean_demand\nX,1,1,1,1,1\n"},
		{"bad day", "sku,day,inventory,fulfilled,unfulfilled,mean_demand\nX,one,1,1,1,1\n"},
		{"bad value", "sku,day,inventory,fulfilled,unfulfilled,mean_demand\nX,1,1,lots,1,1\n"},
		{"empty sku", "sku,day,inventory,fulfilled,unfulfilled,mean_demand\n ,1,1,1,1,1\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "trend.csv", tc.content)
			if _, err := NewLoader().LoadTrends(path); err == nil {
				t.Error("Expected error, but got none")
			}
		})
	}
}

func TestLoader_LoadPurchaseOrders(t *testing.T) {
	path := writeFile(t, t.TempDir(), "purchase_orders.csv", `sku,po_id,order_day,expected_arrival_day,arrival_day,quantity_ordered,quantity_received
X,PO-1,1,5,7,100,90
X,PO-2,10,14,,50,0
`)

	orders, err := NewLoader().LoadPurchaseOrders(path)
	if err != nil {
		t.Fatalf("Failed to load purchase orders: %v", err)
	}

	x := orders["X"]
	if len(x) != 2 {
		t.Fatalf("Expected 2 orders for X, got %d", len(x))
	}
	if x[0].DelayDays != 2 {
		t.Errorf("Expected delay 2, got %v", x[0].DelayDays)
	}
	if x[1].ArrivalDay != nil {
		t.Errorf("Expected open order without arrival day, got %v", *x[1].ArrivalDay)
	}
	if x[1].DelayDays != 0 {
		t.Errorf("Expected no delay on open order, got %v", x[1].DelayDays)
	}
}

func TestLoader_MissingFile(t *testing.T) {
	if _, err := NewLoader().LoadPurchaseOrders(filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Error("Expected error for missing file, but got none")
	}
}
