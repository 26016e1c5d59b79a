package entities

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// VendorID identifies a supplier. The backend sends it as a string or a number.
type VendorID string

// UnmarshalJSON accepts both JSON strings and numbers
func (v *VendorID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = VendorID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("vendor_id must be a string or number: %w", err)
	}
	*v = VendorID(n.String())
	return nil
}

// PurchaseOrder is one replenishment order placed with the vendor
type PurchaseOrder struct {
	ID                 string         `json:"po_id,omitempty"`
	OrderDay           int            `json:"order_day"`
	ExpectedArrivalDay int            `json:"expected_arrival_day,omitempty"`
	ArrivalDay         *int           `json:"arrival_day,omitempty"`
	QuantityOrdered    float64        `json:"quantity_ordered"`
	QuantityReceived   float64        `json:"quantity_received"`
	DelayDays          float64        `json:"delay,omitempty"`
	Extra              map[string]any `json:"-"`
}

var purchaseOrderFields = map[string]bool{
	"po_id":                true,
	"order_day":            true,
	"expected_arrival_day": true,
	"arrival_day":          true,
	"quantity_ordered":     true,
	"quantity_received":    true,
	"delay":                true,
}

// FillRate returns received over ordered quantity, 0 when nothing was ordered
func (p PurchaseOrder) FillRate() float64 {
	if p.QuantityOrdered == 0 {
		return 0
	}
	return p.QuantityReceived / p.QuantityOrdered
}

// UnmarshalJSON decodes the known fields and keeps the rest in Extra
func (p *PurchaseOrder) UnmarshalJSON(data []byte) error {
	type plain PurchaseOrder
	var known plain
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		if purchaseOrderFields[key] {
			continue
		}
		var v any
		if err := json.Unmarshal(value, &v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if known.Extra == nil {
			known.Extra = make(map[string]any)
		}
		known.Extra[key] = v
	}

	*p = PurchaseOrder(known)
	return nil
}

// MarshalJSON writes the known fields next to the extra ones
func (p PurchaseOrder) MarshalJSON() ([]byte, error) {
	type plain PurchaseOrder
	data, err := json.Marshal(plain(p))
	if err != nil || len(p.Extra) == 0 {
		return data, err
	}

	merged := make(map[string]any, len(p.Extra)+len(purchaseOrderFields))
	for k, v := range p.Extra {
		merged[k] = v
	}
	var known map[string]any
	if err := json.Unmarshal(data, &known); err != nil {
		return nil, err
	}
	for k, v := range known {
		merged[k] = v
	}
	return json.Marshal(merged)
}

// VendorPerformance summarises how a SKU's vendor delivers
type VendorPerformance struct {
	VendorID        VendorID        `json:"vendor_id"`
	PurchaseOrders  []PurchaseOrder `json:"purchase_orders"`
	AverageDelay    float64         `json:"average_delay"`
	AverageFillRate float64         `json:"average_fill_rate"`
}

// HasOrders reports whether there is anything for the vendor component to show
func (v *VendorPerformance) HasOrders() bool {
	return v != nil && len(v.PurchaseOrders) > 0
}

// AverageDelayLabel formats the average delay in days
func (v *VendorPerformance) AverageDelayLabel() string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(v.AverageDelay, 'f', 1, 64) + " days"
}
