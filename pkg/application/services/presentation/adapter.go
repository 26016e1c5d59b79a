package presentation

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/vsinha/skudiag/pkg/application/dto"
	"github.com/vsinha/skudiag/pkg/application/services/orchestration"
	"github.com/vsinha/skudiag/pkg/domain/entities"
)

const (
	DefaultAssistantName = "Dobby"

	LoadingText           = "Loading..."
	SuggestedActionTitle  = "Suggested Action"
	TrendLoadingText      = "Loading inventory trend..."
	TrendFailedText       = "Failed to load inventory trend."
	NoVendorDataText      = "No vendor data available."
	autoActionTitleFormat = "Action taken by %s"
	chartHeadingFormat    = "Inventory Trend for %s"
	chartTitleFormat      = "SKU %s Inventory & Demand"
	metricsLineFormat     = "Instock Rate: %s%%, Lost Sales: $%sk"
)

var thousand = decimal.NewFromInt(1000)

// Adapter turns orchestrator state into display values
type Adapter struct {
	AssistantName string
}

// NewAdapter creates an adapter; an empty name falls back to DefaultAssistantName
func NewAdapter(assistantName string) *Adapter {
	if assistantName == "" {
		assistantName = DefaultAssistantName
	}
	return &Adapter{AssistantName: assistantName}
}

// Build renders state. It reads nothing but state and never fails.
func (a *Adapter) Build(state orchestration.ViewState) dto.SkuDetailView {
	return dto.SkuDetailView{
		SKU:           state.SKU,
		Window:        state.Window,
		SimulationDay: state.SimulationDay,
		CallOut:       a.callOut(state.RootCause),
		Action:        a.action(state.RootCause),
		Chart:         a.chart(state),
		Vendor:        a.vendor(state.Vendor),
		Chat:          a.chat(state),
	}
}

func (a *Adapter) callOut(rc orchestration.Resource[entities.RootCauseResult]) string {
	if !rc.Status.Settled() {
		return LoadingText
	}
	return rc.Value.CallOutText()
}

func (a *Adapter) action(rc orchestration.Resource[entities.RootCauseResult]) dto.ActionBlock {
	if !rc.Status.Settled() {
		return dto.ActionBlock{Mode: dto.ActionSuggested, Title: SuggestedActionTitle, Text: LoadingText}
	}
	if rc.Value.IsAutoAction() {
		return dto.ActionBlock{
			Mode:  dto.ActionAuto,
			Title: fmt.Sprintf(autoActionTitleFormat, a.AssistantName),
			Text:  rc.Value.ActionText(),
		}
	}
	return dto.ActionBlock{Mode: dto.ActionSuggested, Title: SuggestedActionTitle, Text: rc.Value.ActionText()}
}

func (a *Adapter) chart(state orchestration.ViewState) dto.ChartInput {
	chart := dto.ChartInput{
		Heading: fmt.Sprintf(chartHeadingFormat, state.SKU),
		Title:   fmt.Sprintf(chartTitleFormat, state.SKU),
		Series:  []entities.TrendPoint{},
	}

	switch state.Trend.Status {
	case entities.Loaded:
	case entities.Failed:
		chart.Placeholder = TrendFailedText
		return chart
	default:
		chart.Placeholder = TrendLoadingText
		return chart
	}

	metrics := state.Metrics()
	chart.Available = true
	chart.Series = metrics.Series
	if metrics.HasKPIs() {
		chart.Metrics = &dto.MetricsLine{
			InstockRate: metrics.KPIs.InstockRate,
			LostSales:   metrics.KPIs.LostSales,
			Fulfilled:   metrics.KPIs.Fulfilled,
			Unfulfilled: metrics.KPIs.Unfulfilled,
			Text:        FormatMetricsLine(metrics.KPIs),
		}
	}
	return chart
}

func (a *Adapter) vendor(v orchestration.Resource[entities.VendorPerformance]) dto.VendorBlock {
	if v.Status != entities.Loaded || !v.Value.HasOrders() {
		return dto.VendorBlock{Placeholder: NoVendorDataText}
	}
	return dto.VendorBlock{
		Available:       true,
		VendorID:        v.Value.VendorID,
		AverageDelay:    v.Value.AverageDelay,
		AverageFillRate: v.Value.AverageFillRate,
		PurchaseOrders:  v.Value.PurchaseOrders,
	}
}

func (a *Adapter) chat(state orchestration.ViewState) dto.ChatInput {
	chat := dto.ChatInput{SKU: state.SKU}
	if state.RootCause.Status == entities.Loaded && state.RootCause.Value != nil {
		chat.Context = state.RootCause.Value.Extra
	}
	return chat
}

// FormatMetricsLine renders KPIs as "Instock Rate: 50.0%, Lost Sales: $1.5k"
func FormatMetricsLine(kpis *entities.DerivedKPIs) string {
	if kpis == nil {
		return ""
	}
	return fmt.Sprintf(metricsLineFormat, FormatInstockRate(kpis.InstockRate), FormatLostSalesThousands(kpis.LostSales))
}

// FormatInstockRate renders a percentage with one decimal
func FormatInstockRate(rate float64) string {
	return strconv.FormatFloat(rate, 'f', 1, 64)
}

// FormatLostSalesThousands renders a currency amount in thousands with one decimal
func FormatLostSalesThousands(amount decimal.Decimal) string {
	return amount.Div(thousand).StringFixed(1)
}
