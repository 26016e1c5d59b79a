package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vsinha/skudiag/pkg/application/dto"
	"github.com/vsinha/skudiag/pkg/domain/entities"
)

// Formats lists every supported output format
var Formats = []string{"text", "json", "csv", "xlsx", "html"}

// Config holds configuration for output generation
type Config struct {
	Format string
	Writer io.Writer
}

func (c Config) writer() io.Writer {
	if c.Writer == nil {
		return os.Stdout
	}
	return c.Writer
}

// Generate writes the view in the configured format
func Generate(view dto.SkuDetailView, config Config) error {
	switch config.Format {
	case "", "text":
		return generateTextOutput(view, config)
	case "json":
		return generateJSONOutput(view, config)
	case "csv":
		return generateCSVOutput(view, config)
	case "xlsx":
		return generateXLSXOutput(view, config)
	case "html":
		return generateHTMLOutput(view, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

var (
	headingStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	mutedStyle     = lipgloss.NewStyle().Faint(true)
	metricsStyle   = lipgloss.NewStyle().Bold(true)
	autoStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	suggestedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	panelStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1).
			Width(44)
)

func actionIcon(mode dto.ActionMode) string {
	if mode == dto.ActionAuto {
		return "🤖"
	}
	return "✅"
}

// RenderText lays the view out for a terminal
func RenderText(view dto.SkuDetailView) string {
	var b strings.Builder

	b.WriteString(headingStyle.Render(fmt.Sprintf("🔎 SKU %s", view.SKU)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(dayLabel(view)))
	b.WriteString("\n\n")

	actionTitle := suggestedStyle
	if view.Action.Mode == dto.ActionAuto {
		actionTitle = autoStyle
	}
	callOut := panelStyle.Render(headingStyle.Render("📣 Call-out") + "\n" + view.CallOut)
	action := panelStyle.Render(actionTitle.Render(actionIcon(view.Action.Mode)+" "+view.Action.Title) + "\n" + view.Action.Text)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, callOut, " ", action))
	b.WriteString("\n\n")

	b.WriteString(headingStyle.Render("📊 " + view.Chart.Heading))
	b.WriteString("\n")
	if !view.Chart.Available {
		b.WriteString(mutedStyle.Render(view.Chart.Placeholder))
		b.WriteString("\n")
	} else {
		b.WriteString(view.Chart.Title)
		b.WriteString("\n")
		if view.Chart.Metrics != nil {
			b.WriteString(metricsStyle.Render(view.Chart.Metrics.Text))
			b.WriteString("\n")
		}
		writeSeriesTable(&b, view.Chart.Series)
	}
	b.WriteString("\n")

	b.WriteString(headingStyle.Render("🚚 Vendor Performance"))
	b.WriteString("\n")
	if !view.Vendor.Available {
		b.WriteString(mutedStyle.Render(view.Vendor.Placeholder))
		b.WriteString("\n")
	} else {
		b.WriteString(fmt.Sprintf("Vendor %s: average delay %.1f days, average fill rate %.1f%%\n",
			view.Vendor.VendorID, view.Vendor.AverageDelay, 100*view.Vendor.AverageFillRate))
		writePurchaseOrderTable(&b, view.Vendor.PurchaseOrders)
	}

	return b.String()
}

func dayLabel(view dto.SkuDetailView) string {
	if view.SimulationDay == 0 {
		return fmt.Sprintf("Simulation day pending, window %s", view.Window)
	}
	return fmt.Sprintf("Simulation day %d, window %s", view.SimulationDay, view.Window)
}

func writeSeriesTable(b *strings.Builder, series []entities.TrendPoint) {
	if len(series) == 0 {
		b.WriteString(mutedStyle.Render("No trend data in this window"))
		b.WriteString("\n")
		return
	}
	fmt.Fprintf(b, "%-6s %-10s %-10s %-12s %-12s\n", "Day", "Inventory", "Fulfilled", "Unfulfilled", "Mean Demand")
	fmt.Fprintf(b, "%-6s %-10s %-10s %-12s %-12s\n", "------", "----------", "----------", "------------", "------------")
	for _, p := range series {
		fmt.Fprintf(b, "%-6d %-10s %-10s %-12s %-12s\n",
			p.Day,
			formatQuantity(p.Inventory),
			formatQuantity(p.Fulfilled),
			formatQuantity(p.Unfulfilled),
			formatQuantity(p.MeanDemand))
	}
}

func writePurchaseOrderTable(b *strings.Builder, orders []entities.PurchaseOrder) {
	fmt.Fprintf(b, "%-10s %-10s %-10s %-10s %-10s %-10s %-8s\n",
		"PO", "Order Day", "Expected", "Arrived", "Ordered", "Received", "Delay")
	fmt.Fprintf(b, "%-10s %-10s %-10s %-10s %-10s %-10s %-8s\n",
		"----------", "----------", "----------", "----------", "----------", "----------", "--------")
	for _, po := range orders {
		fmt.Fprintf(b, "%-10s %-10d %-10d %-10s %-10s %-10s %-8s\n",
			po.ID,
			po.OrderDay,
			po.ExpectedArrivalDay,
			arrivalLabel(po.ArrivalDay),
			formatQuantity(po.QuantityOrdered),
			formatQuantity(po.QuantityReceived),
			formatQuantity(po.DelayDays))
	}
}

func arrivalLabel(day *int) string {
	if day == nil {
		return "open"
	}
	return strconv.Itoa(*day)
}

// generateTextOutput creates human-readable text output
func generateTextOutput(view dto.SkuDetailView, config Config) error {
	if _, err := io.WriteString(config.writer(), RenderText(view)); err != nil {
		return fmt.Errorf("failed to write text output: %w", err)
	}
	return nil
}

// generateJSONOutput creates JSON output
func generateJSONOutput(view dto.SkuDetailView, config Config) error {
	jsonData, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonData = append(jsonData, '\n')

	if _, err := config.writer().Write(jsonData); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}

// generateCSVOutput writes the windowed series, one row per day
func generateCSVOutput(view dto.SkuDetailView, config Config) error {
	if !view.Chart.Available {
		return fmt.Errorf("no trend data for SKU %s: %s", view.SKU, view.Chart.Placeholder)
	}

	writer := csv.NewWriter(config.writer())
	if err := writer.Write([]string{"sku", "day", "inventory", "fulfilled", "unfulfilled", "mean_demand"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, p := range view.Chart.Series {
		record := []string{
			string(view.SKU),
			strconv.Itoa(p.Day),
			strconv.FormatFloat(p.Inventory, 'f', -1, 64),
			strconv.FormatFloat(p.Fulfilled, 'f', -1, 64),
			strconv.FormatFloat(p.Unfulfilled, 'f', -1, 64),
			strconv.FormatFloat(p.MeanDemand, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row for day %d: %w", p.Day, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
