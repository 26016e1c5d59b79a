package entities

import "slices"

// cloneExtra copies decoded JSON values, including nested objects and arrays
func cloneExtra(extra map[string]any) map[string]any {
	if extra == nil {
		return nil
	}
	out := make(map[string]any, len(extra))
	for key, value := range extra {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		return cloneExtra(v)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Clone returns a copy sharing no slices with t
func (t InventoryTrend) Clone() InventoryTrend {
	return InventoryTrend{
		Days:        slices.Clone(t.Days),
		Inventory:   slices.Clone(t.Inventory),
		Fulfilled:   slices.Clone(t.Fulfilled),
		Unfulfilled: slices.Clone(t.Unfulfilled),
		MeanDemand:  slices.Clone(t.MeanDemand),
		Price:       t.Price,
	}
}

// Clone returns a copy sharing no orders, pointers or extra fields with v
func (v VendorPerformance) Clone() VendorPerformance {
	out := v
	if v.PurchaseOrders != nil {
		out.PurchaseOrders = make([]PurchaseOrder, len(v.PurchaseOrders))
		for i, po := range v.PurchaseOrders {
			po.ArrivalDay = clonePtr(po.ArrivalDay)
			po.Extra = cloneExtra(po.Extra)
			out.PurchaseOrders[i] = po
		}
	}
	return out
}

// Clone returns a copy sharing no pointers or extra fields with r
func (r RootCauseResult) Clone() RootCauseResult {
	return RootCauseResult{
		RootCause:       clonePtr(r.RootCause),
		SuggestedAction: clonePtr(r.SuggestedAction),
		AutoAction:      clonePtr(r.AutoAction),
		Extra:           cloneExtra(r.Extra),
	}
}

// Clone returns a copy sharing no pointers with r
func (r SimulationRange) Clone() SimulationRange {
	return SimulationRange{
		MaxDay:      r.MaxDay,
		MinDay:      clonePtr(r.MinDay),
		LookbackMin: clonePtr(r.LookbackMin),
	}
}
