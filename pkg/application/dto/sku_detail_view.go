package dto

import (
	"github.com/shopspring/decimal"

	"github.com/vsinha/skudiag/pkg/domain/entities"
)

// ActionMode tells whether the action was already taken or only suggested
type ActionMode string

const (
	ActionAuto      ActionMode = "auto"
	ActionSuggested ActionMode = "suggested"
)

// SkuDetailView is everything the SKU page renders, resolved to display values
type SkuDetailView struct {
	SKU           entities.SKU            `json:"sku"`
	Window        entities.AnalysisWindow `json:"window"`
	SimulationDay int                     `json:"simulation_day,omitempty"`
	CallOut       string                  `json:"call_out"`
	Action        ActionBlock             `json:"action"`
	Chart         ChartInput              `json:"chart"`
	Vendor        VendorBlock             `json:"vendor"`
	Chat          ChatInput               `json:"chat"`
}

// ActionBlock is the taken or suggested action
type ActionBlock struct {
	Mode  ActionMode `json:"mode"`
	Title string     `json:"title"`
	Text  string     `json:"text"`
}

// MetricsLine summarises the KPIs of the analysis window
type MetricsLine struct {
	InstockRate float64         `json:"instock_rate"`
	LostSales   decimal.Decimal `json:"lost_sales"`
	Fulfilled   float64         `json:"fulfilled"`
	Unfulfilled float64         `json:"unfulfilled"`
	Text        string          `json:"text"`
}

// ChartInput is what the chart collaborator draws. Placeholder is set
// instead of a series when the trend is not available.
type ChartInput struct {
	Heading     string                `json:"heading"`
	Title       string                `json:"title"`
	Available   bool                  `json:"available"`
	Placeholder string                `json:"placeholder,omitempty"`
	Metrics     *MetricsLine          `json:"metrics,omitempty"`
	Series      []entities.TrendPoint `json:"series"`
}

// VendorBlock is handed to the vendor component
type VendorBlock struct {
	Available       bool                     `json:"available"`
	Placeholder     string                   `json:"placeholder,omitempty"`
	VendorID        entities.VendorID        `json:"vendor_id,omitempty"`
	AverageDelay    float64                  `json:"average_delay,omitempty"`
	AverageFillRate float64                  `json:"average_fill_rate,omitempty"`
	PurchaseOrders  []entities.PurchaseOrder `json:"purchase_orders,omitempty"`
}

// ChatInput is handed to the assistant chat widget
type ChatInput struct {
	SKU     entities.SKU   `json:"sku"`
	Context map[string]any `json:"context,omitempty"`
}
