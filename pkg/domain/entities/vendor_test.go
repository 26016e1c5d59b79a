package entities

import (
	"encoding/json"
	"testing"
)

func TestVendorPerformance_Decode(t *testing.T) {
	body := `{
		"vendor_id": 42,
		"purchase_orders": [
			{"po_id": "PO-1", "order_day": 3, "expected_arrival_day": 6, "arrival_day": 8,
			 "quantity_ordered": 100, "quantity_received": 90, "delay": 2, "carrier": "ACME"}
		],
		"average_delay": 2,
		"average_fill_rate": 0.9
	}`

	var vendor VendorPerformance
	if err := json.Unmarshal([]byte(body), &vendor); err != nil {
		t.Fatalf("Failed to decode vendor performance: %v", err)
	}

	if vendor.VendorID != "42" {
		t.Errorf("Expected vendor id 42, got %s", vendor.VendorID)
	}
	if !vendor.HasOrders() {
		t.Fatal("Expected vendor to have orders")
	}

	po := vendor.PurchaseOrders[0]
	if po.ID != "PO-1" {
		t.Errorf("Expected PO-1, got %s", po.ID)
	}
	if po.ArrivalDay == nil || *po.ArrivalDay != 8 {
		t.Errorf("Expected arrival day 8, got %v", po.ArrivalDay)
	}
	if po.FillRate() != 0.9 {
		t.Errorf("Expected fill rate 0.9, got %v", po.FillRate())
	}
	if po.Extra["carrier"] != "ACME" {
		t.Errorf("Expected carrier extra field, got %v", po.Extra)
	}
	if vendor.AverageDelayLabel() != "2.0 days" {
		t.Errorf("Unexpected delay label: %s", vendor.AverageDelayLabel())
	}
}

func TestVendorPerformance_EmptyOrders(t *testing.T) {
	var vendor VendorPerformance
	if err := json.Unmarshal([]byte(`{"vendor_id":"V9","purchase_orders":[]}`), &vendor); err != nil {
		t.Fatalf("Failed to decode vendor performance: %v", err)
	}
	if vendor.HasOrders() {
		t.Error("Expected no orders")
	}

	var missing *VendorPerformance
	if missing.HasOrders() {
		t.Error("Expected nil vendor to have no orders")
	}
}

func TestPurchaseOrder_MarshalKeepsExtras(t *testing.T) {
	po := PurchaseOrder{ID: "PO-2", OrderDay: 1, QuantityOrdered: 10, Extra: map[string]any{"lane": "sea"}}

	data, err := json.Marshal(po)
	if err != nil {
		t.Fatalf("Failed to encode: %v", err)
	}

	var decoded PurchaseOrder
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if decoded.ID != "PO-2" || decoded.Extra["lane"] != "sea" {
		t.Errorf("Unexpected round trip result: %+v", decoded)
	}
}

func TestVendorPerformance_CloneNilOrders(t *testing.T) {
	vendor := VendorPerformance{VendorID: "V-9"}
	clone := vendor.Clone()
	if clone.PurchaseOrders != nil {
		t.Errorf("Expected nil orders to stay nil, got %v", clone.PurchaseOrders)
	}
	if clone.HasOrders() {
		t.Error("Expected no orders")
	}
}
