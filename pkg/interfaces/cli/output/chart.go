package output

import (
	"bytes"
	"fmt"
	"html"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/vsinha/skudiag/pkg/application/dto"
	"github.com/vsinha/skudiag/pkg/domain/entities"
)

// TrendChart lays out the inventory and demand series of one SKU
type TrendChart struct {
	Width    int
	Height   int
	FirstDay int
	LastDay  int
	MaxValue float64
}

// ChartSeries is one line of the chart
type ChartSeries struct {
	Label  string
	Color  drawing.Color
	Dashed bool
	Values func(entities.TrendPoint) float64
}

var chartSeries = []ChartSeries{
	{Label: "Inventory", Color: drawing.ColorFromHex("2196F3"), Values: func(p entities.TrendPoint) float64 { return p.Inventory }},
	{Label: "Fulfilled", Color: drawing.ColorFromHex("4CAF50"), Values: func(p entities.TrendPoint) float64 { return p.Fulfilled }},
	{Label: "Unfulfilled", Color: drawing.ColorFromHex("F44336"), Values: func(p entities.TrendPoint) float64 { return p.Unfulfilled }},
	{Label: "Mean demand", Color: drawing.ColorFromHex("FF9800"), Dashed: true, Values: func(p entities.TrendPoint) float64 { return p.MeanDemand }},
}

// NewTrendChart sizes a chart for the points of input
func NewTrendChart(input dto.ChartInput) *TrendChart {
	tc := &TrendChart{
		Width:  900,
		Height: 360,
	}
	if len(input.Series) == 0 {
		return tc
	}

	tc.FirstDay = input.Series[0].Day
	tc.LastDay = input.Series[0].Day
	for _, point := range input.Series {
		tc.FirstDay = min(tc.FirstDay, point.Day)
		tc.LastDay = max(tc.LastDay, point.Day)
		for _, series := range chartSeries {
			tc.MaxValue = max(tc.MaxValue, series.Values(point))
		}
	}
	if tc.MaxValue == 0 {
		tc.MaxValue = 1
	}
	// 10% headroom above the highest value
	tc.MaxValue = math.Ceil(tc.MaxValue + tc.MaxValue/10)
	return tc
}

// Chart builds the go-chart definition: one continuous series per line over simulation days
func (tc *TrendChart) Chart(input dto.ChartInput) chart.Chart {
	xs := make([]float64, len(input.Series))
	for i, point := range input.Series {
		xs[i] = float64(point.Day)
	}

	series := make([]chart.Series, 0, len(chartSeries))
	for _, line := range chartSeries {
		ys := make([]float64, len(input.Series))
		for i, point := range input.Series {
			ys[i] = line.Values(point)
		}
		style := chart.Style{
			StrokeColor: line.Color,
			StrokeWidth: 2,
		}
		if line.Dashed {
			style.StrokeDashArray = []float64{6, 4}
		}
		series = append(series, chart.ContinuousSeries{Name: line.Label, XValues: xs, YValues: ys, Style: style})
	}

	// a single day still needs a non-empty axis range
	lastDay := tc.LastDay
	if lastDay == tc.FirstDay {
		lastDay++
	}

	return chart.Chart{
		// the SVG renderer writes text bodies verbatim
		Title:      html.EscapeString(input.Title),
		Width:      tc.Width,
		Height:     tc.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "Simulation day",
			Range:          &chart.ContinuousRange{Min: float64(tc.FirstDay), Max: float64(lastDay)},
			ValueFormatter: chart.IntValueFormatter,
		},
		YAxis: chart.YAxis{
			Range:          &chart.ContinuousRange{Min: 0, Max: tc.MaxValue},
			ValueFormatter: quantityFormatter,
		},
		Series: series,
	}
}

// GenerateSVG renders the chart, or a placeholder panel when input holds no series
func (tc *TrendChart) GenerateSVG(input dto.ChartInput) (string, error) {
	if !input.Available || len(input.Series) == 0 {
		message := input.Placeholder
		if message == "" {
			message = "No trend data in this window"
		}
		return tc.generateEmptyChart(message), nil
	}

	var buf bytes.Buffer
	ch := tc.Chart(input)
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	if err := ch.Render(chart.SVG, &buf); err != nil {
		return "", fmt.Errorf("failed to render trend chart: %w", err)
	}
	return buf.String(), nil
}

func (tc *TrendChart) generateEmptyChart(message string) string {
	return fmt.Sprintf(`<svg width="%d" height="%d" xmlns="http://www.w3.org/2000/svg">
		<rect width="%d" height="%d" fill="white"/>
		<text x="%d" y="%d" class="title" text-anchor="middle">%s</text>
		<style>
			.title { font-family: Arial, sans-serif; font-size: 16px; fill: #666; }
		</style>
	</svg>`, tc.Width, tc.Height, tc.Width, tc.Height, tc.Width/2, tc.Height/2, html.EscapeString(message))
}

func quantityFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return formatQuantity(f)
	}
	return ""
}

func formatQuantity(value float64) string {
	if value == math.Trunc(value) {
		return fmt.Sprintf("%.0f", value)
	}
	return fmt.Sprintf("%.1f", value)
}
