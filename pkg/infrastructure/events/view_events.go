package events

import (
	"github.com/vsinha/skudiag/pkg/domain/entities"
)

const (
	SelectionChangedEvent = "selection.changed"
	RangeResolvedEvent    = "range.resolved"
	WindowChangedEvent    = "window.changed"

	RootCauseSettledEvent = "rootcause.settled"
	VendorSettledEvent    = "vendor.settled"
	TrendSettledEvent     = "trend.settled"

	ResponseDiscardedEvent = "response.discarded"
)

// SimulationStream is the stream that carries range resolution events
const SimulationStream = "simulation"

// AllViewEvents lists every event type published by the SKU view
var AllViewEvents = []string{
	SelectionChangedEvent,
	RangeResolvedEvent,
	WindowChangedEvent,
	RootCauseSettledEvent,
	VendorSettledEvent,
	TrendSettledEvent,
	ResponseDiscardedEvent,
}

type SelectionChanged struct {
	SKU        entities.SKU `json:"sku"`
	Previous   entities.SKU `json:"previous"`
	Generation uint64       `json:"generation"`
}

type RangeResolved struct {
	Window        entities.AnalysisWindow `json:"window"`
	SimulationDay int                     `json:"simulation_day"`
	Fallback      bool                    `json:"fallback"`
	Error         string                  `json:"error,omitempty"`
}

type WindowChanged struct {
	SKU    entities.SKU            `json:"sku"`
	Window entities.AnalysisWindow `json:"window"`
}

type RootCauseSettled struct {
	SKU        entities.SKU              `json:"sku"`
	Generation uint64                    `json:"generation"`
	Day        int                       `json:"day"`
	Status     entities.FetchStatus      `json:"status"`
	Result     *entities.RootCauseResult `json:"result,omitempty"`
	Error      string                    `json:"error,omitempty"`
}

type VendorSettled struct {
	SKU        entities.SKU                `json:"sku"`
	Generation uint64                      `json:"generation"`
	Status     entities.FetchStatus        `json:"status"`
	Vendor     *entities.VendorPerformance `json:"vendor,omitempty"`
	Error      string                      `json:"error,omitempty"`
}

type TrendSettled struct {
	SKU        entities.SKU         `json:"sku"`
	Generation uint64               `json:"generation"`
	Status     entities.FetchStatus `json:"status"`
	Days       int                  `json:"days"`
	Error      string               `json:"error,omitempty"`
}

type ResponseDiscarded struct {
	SKU               entities.SKU `json:"sku"`
	Source            string       `json:"source"`
	Generation        uint64       `json:"generation"`
	CurrentGeneration uint64       `json:"current_generation"`
}

func NewSelectionChangedEvent(sku, previous entities.SKU, generation uint64) Event {
	return NewEvent(SelectionChangedEvent, string(sku), SelectionChanged{
		SKU:        sku,
		Previous:   previous,
		Generation: generation,
	})
}

func NewRangeResolvedEvent(window entities.AnalysisWindow, simulationDay int, fallback bool, err error) Event {
	return NewEvent(RangeResolvedEvent, SimulationStream, RangeResolved{
		Window:        window,
		SimulationDay: simulationDay,
		Fallback:      fallback,
		Error:         errorText(err),
	})
}

func NewWindowChangedEvent(sku entities.SKU, window entities.AnalysisWindow) Event {
	return NewEvent(WindowChangedEvent, string(sku), WindowChanged{SKU: sku, Window: window})
}

func NewRootCauseSettledEvent(
	sku entities.SKU,
	generation uint64,
	day int,
	status entities.FetchStatus,
	result *entities.RootCauseResult,
	err error,
) Event {
	return NewEvent(RootCauseSettledEvent, string(sku), RootCauseSettled{
		SKU:        sku,
		Generation: generation,
		Day:        day,
		Status:     status,
		Result:     result,
		Error:      errorText(err),
	})
}

func NewVendorSettledEvent(
	sku entities.SKU,
	generation uint64,
	status entities.FetchStatus,
	vendor *entities.VendorPerformance,
	err error,
) Event {
	return NewEvent(VendorSettledEvent, string(sku), VendorSettled{
		SKU:        sku,
		Generation: generation,
		Status:     status,
		Vendor:     vendor,
		Error:      errorText(err),
	})
}

func NewTrendSettledEvent(
	sku entities.SKU,
	generation uint64,
	status entities.FetchStatus,
	trend *entities.InventoryTrend,
	err error,
) Event {
	days := 0
	if trend != nil {
		days = len(trend.Days)
	}
	return NewEvent(TrendSettledEvent, string(sku), TrendSettled{
		SKU:        sku,
		Generation: generation,
		Status:     status,
		Days:       days,
		Error:      errorText(err),
	})
}

func NewResponseDiscardedEvent(sku entities.SKU, source string, generation, current uint64) Event {
	return NewEvent(ResponseDiscardedEvent, string(sku), ResponseDiscarded{
		SKU:               sku,
		Source:            source,
		Generation:        generation,
		CurrentGeneration: current,
	})
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
