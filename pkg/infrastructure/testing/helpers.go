package testing

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/skudiag/pkg/domain/entities"
	"github.com/vsinha/skudiag/pkg/infrastructure/repositories/memory"
)

// Sample SKUs stored by BuildSampleBackend
const (
	SuggestedSKU entities.SKU = "X"
	AutoSKU      entities.SKU = "AUTO-7"
	NoVendorSKU  entities.SKU = "NOVENDOR"
	BareSKU      entities.SKU = "BARE"
)

// ThreeDayTrend is the reference series: over days 1..3 it has an instock
// rate of 50% and lost sales of 1500 at a unit price of 100.
func ThreeDayTrend() entities.InventoryTrend {
	return entities.InventoryTrend{
		Days:        []int{1, 2, 3},
		Inventory:   []float64{20, 10, 15},
		Fulfilled:   []float64{10, 0, 5},
		Unfulfilled: []float64{0, 10, 5},
		MeanDemand:  []float64{8, 9, 10},
		Price:       decimal.NewFromInt(100),
	}
}

// BuildSampleBackend builds a backend covering each shape of view:
// a suggested action with vendor orders, an automatic action, a vendor
// without orders and a SKU with nothing but a trend.
func BuildSampleBackend() *memory.Backend {
	backend := memory.NewBackend(4)

	minDay := 1
	mustSucceed(backend.SetSimulationRange(entities.SimulationRange{MaxDay: 30, MinDay: &minDay}))

	mustSucceed(backend.SaveRootCause(SuggestedSKU, rootCause(
		"Vendor V-17 delivered late twice in the last week.",
		"Expedite PO-2.",
		false,
	)))
	mustSucceed(backend.SaveRootCause(AutoSKU, rootCause(
		"Demand spike exceeded safety stock.",
		"Placed an emergency order for 40 units.",
		true,
	)))
	mustSucceed(backend.SaveRootCause(NoVendorSKU, rootCause("Forecast bias.", "Lower the forecast.", false)))

	arrival := 6
	mustSucceed(backend.SaveVendorPerformance(SuggestedSKU, entities.VendorPerformance{
		VendorID: "V-17",
		PurchaseOrders: []entities.PurchaseOrder{
			{ID: "PO-1", OrderDay: 1, ExpectedArrivalDay: 4, ArrivalDay: &arrival, QuantityOrdered: 100, QuantityReceived: 90, DelayDays: 2},
		},
		AverageDelay:    2,
		AverageFillRate: 0.9,
	}))
	mustSucceed(backend.SaveVendorPerformance(NoVendorSKU, entities.VendorPerformance{
		VendorID:       "V-9",
		PurchaseOrders: []entities.PurchaseOrder{},
	}))

	for _, sku := range []entities.SKU{SuggestedSKU, AutoSKU, NoVendorSKU, BareSKU} {
		mustSucceed(backend.SaveInventoryTrend(sku, ThreeDayTrend()))
	}

	return backend
}

func rootCause(cause, action string, auto bool) entities.RootCauseResult {
	return entities.RootCauseResult{
		RootCause:       &cause,
		SuggestedAction: &action,
		AutoAction:      &auto,
	}
}

// mustSucceed is a helper for fixtures - panics on validation error
func mustSucceed(err error) {
	if err != nil {
		panic(err)
	}
}
