package presentation

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/skudiag/pkg/application/dto"
	"github.com/vsinha/skudiag/pkg/application/services/orchestration"
	"github.com/vsinha/skudiag/pkg/domain/entities"
	fixtures "github.com/vsinha/skudiag/pkg/infrastructure/testing"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func loadedState(window entities.AnalysisWindow) orchestration.ViewState {
	trend := fixtures.ThreeDayTrend()
	return orchestration.ViewState{
		SKU:           "X",
		Generation:    1,
		Window:        window,
		RangeResolved: true,
		SimulationDay: 30,
		RootCause: orchestration.Resource[entities.RootCauseResult]{
			Status: entities.Loaded,
			Value: &entities.RootCauseResult{
				RootCause:       strPtr("Late vendor."),
				SuggestedAction: strPtr("Expedite PO-2."),
				AutoAction:      boolPtr(false),
				Extra:           map[string]any{"confidence": 0.8},
			},
		},
		Vendor: orchestration.Resource[entities.VendorPerformance]{
			Status: entities.Loaded,
			Value: &entities.VendorPerformance{
				VendorID:       "V-17",
				PurchaseOrders: []entities.PurchaseOrder{{ID: "PO-1", QuantityOrdered: 10, QuantityReceived: 9}},
				AverageDelay:   2,
			},
		},
		Trend: orchestration.Resource[entities.InventoryTrend]{Status: entities.Loaded, Value: &trend},
	}
}

func TestAdapter_FullWindow(t *testing.T) {
	view := NewAdapter("").Build(loadedState(entities.AnalysisWindow{Start: 1, End: 3}))

	if view.Chart.Metrics == nil {
		t.Fatal("Expected metrics line")
	}
	if view.Chart.Metrics.Text != "Instock Rate: 50.0%, Lost Sales: $1.5k" {
		t.Errorf("Unexpected metrics line: %s", view.Chart.Metrics.Text)
	}
	if !view.Chart.Metrics.LostSales.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("Expected lost sales 1500, got %s", view.Chart.Metrics.LostSales)
	}
	if len(view.Chart.Series) != 3 {
		t.Errorf("Expected 3 points, got %d", len(view.Chart.Series))
	}
	if view.Chart.Heading != "Inventory Trend for X" || view.Chart.Title != "SKU X Inventory & Demand" {
		t.Errorf("Unexpected chart labels: %q, %q", view.Chart.Heading, view.Chart.Title)
	}
	if view.CallOut != "Late vendor." {
		t.Errorf("Expected call-out 'Late vendor.', got %q", view.CallOut)
	}
	if view.Action.Mode != dto.ActionSuggested || view.Action.Title != "Suggested Action" || view.Action.Text != "Expedite PO-2." {
		t.Errorf("Unexpected action block: %+v", view.Action)
	}
	if !view.Vendor.Available || view.Vendor.VendorID != "V-17" {
		t.Errorf("Expected vendor block, got %+v", view.Vendor)
	}
	if view.Chat.SKU != "X" || view.Chat.Context["confidence"] != 0.8 {
		t.Errorf("Expected chat input with context, got %+v", view.Chat)
	}
}

func TestAdapter_SingleDayWindow(t *testing.T) {
	view := NewAdapter("").Build(loadedState(entities.AnalysisWindow{Start: 2, End: 2}))

	if view.Chart.Metrics.Text != "Instock Rate: 0.0%, Lost Sales: $1.0k" {
		t.Errorf("Unexpected metrics line: %s", view.Chart.Metrics.Text)
	}
	if len(view.Chart.Series) != 1 || view.Chart.Series[0].Day != 2 || view.Chart.Series[0].MeanDemand != 9 {
		t.Errorf("Expected only day 2, got %+v", view.Chart.Series)
	}
}

func TestAdapter_RootCauseFailure(t *testing.T) {
	state := loadedState(entities.AnalysisWindow{Start: 1, End: 3})
	state.RootCause = orchestration.Resource[entities.RootCauseResult]{
		Status: entities.Failed,
		Value:  entities.FailedRootCauseResult(),
	}

	view := NewAdapter("").Build(state)
	if view.CallOut != "Failed to load root cause." {
		t.Errorf("Unexpected call-out: %q", view.CallOut)
	}
	if view.Action.Text != "Failed to load suggested action." || view.Action.Mode != dto.ActionSuggested {
		t.Errorf("Unexpected action block: %+v", view.Action)
	}
	if view.Chat.Context != nil {
		t.Errorf("Expected no chat context on failure, got %v", view.Chat.Context)
	}
}

func TestAdapter_VendorPlaceholder(t *testing.T) {
	testCases := []struct {
		name   string
		vendor orchestration.Resource[entities.VendorPerformance]
	}{
		{"empty purchase orders", orchestration.Resource[entities.VendorPerformance]{
			Status: entities.Loaded,
			Value:  &entities.VendorPerformance{VendorID: "V-9", PurchaseOrders: []entities.PurchaseOrder{}},
		}},
		{"no vendor data", orchestration.Resource[entities.VendorPerformance]{Status: entities.Loaded}},
		{"failed", orchestration.Resource[entities.VendorPerformance]{Status: entities.Failed}},
		{"loading", orchestration.Resource[entities.VendorPerformance]{Status: entities.Loading}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			state := loadedState(entities.AnalysisWindow{Start: 1, End: 3})
			state.Vendor = tc.vendor

			view := NewAdapter("").Build(state)
			if view.Vendor.Available || view.Vendor.Placeholder != "No vendor data available." {
				t.Errorf("Expected vendor placeholder, got %+v", view.Vendor)
			}
		})
	}
}

func TestAdapter_AutoAction(t *testing.T) {
	state := loadedState(entities.AnalysisWindow{Start: 1, End: 3})
	state.RootCause.Value.AutoAction = boolPtr(true)

	view := NewAdapter("Winky").Build(state)
	if view.Action.Mode != dto.ActionAuto || view.Action.Title != "Action taken by Winky" {
		t.Errorf("Unexpected action block: %+v", view.Action)
	}

	view = NewAdapter("").Build(state)
	if view.Action.Title != "Action taken by Dobby" {
		t.Errorf("Expected default assistant name, got %q", view.Action.Title)
	}
}

func TestAdapter_MissingTexts(t *testing.T) {
	state := loadedState(entities.AnalysisWindow{Start: 1, End: 3})
	state.RootCause.Value = &entities.RootCauseResult{}

	view := NewAdapter("").Build(state)
	if view.CallOut != "No analysis available." || view.Action.Text != "No action available." {
		t.Errorf("Expected default texts, got %q and %q", view.CallOut, view.Action.Text)
	}
}

func TestAdapter_TrendStates(t *testing.T) {
	testCases := []struct {
		name        string
		status      entities.FetchStatus
		placeholder string
	}{
		{"idle", entities.Idle, "Loading inventory trend..."},
		{"loading", entities.Loading, "Loading inventory trend..."},
		{"failed", entities.Failed, "Failed to load inventory trend."},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			state := loadedState(entities.AnalysisWindow{Start: 1, End: 3})
			state.Trend = orchestration.Resource[entities.InventoryTrend]{Status: tc.status}

			view := NewAdapter("").Build(state)
			if view.Chart.Available || view.Chart.Metrics != nil {
				t.Errorf("Expected no chart data, got %+v", view.Chart)
			}
			if view.Chart.Placeholder != tc.placeholder {
				t.Errorf("Expected placeholder %q, got %q", tc.placeholder, view.Chart.Placeholder)
			}
		})
	}
}

func TestAdapter_LoadingRootCause(t *testing.T) {
	state := loadedState(entities.AnalysisWindow{Start: 1, End: 3})
	state.RootCause = orchestration.Resource[entities.RootCauseResult]{Status: entities.Loading}

	view := NewAdapter("").Build(state)
	if view.CallOut != "Loading..." || view.Action.Text != "Loading..." {
		t.Errorf("Expected loading texts, got %q and %q", view.CallOut, view.Action.Text)
	}
}

func TestAdapter_EmptyTrendHasNoMetrics(t *testing.T) {
	state := loadedState(entities.AnalysisWindow{Start: 1, End: 3})
	state.Trend.Value = &entities.InventoryTrend{}

	view := NewAdapter("").Build(state)
	if !view.Chart.Available || view.Chart.Metrics != nil || len(view.Chart.Series) != 0 {
		t.Errorf("Expected empty chart without metrics, got %+v", view.Chart)
	}
}
