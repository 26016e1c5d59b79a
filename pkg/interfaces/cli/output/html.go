package output

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/vsinha/skudiag/pkg/application/dto"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateData contains all data for rendering the HTML page
type TemplateData struct {
	dto.SkuDetailView
	ActionIcon  string
	ChartSVG    template.HTML
	DelayLabel  string
	FillLabel   string
	GeneratedAt string
}

// GenerateHTML renders a standalone page for the view
func GenerateHTML(view dto.SkuDetailView) (string, error) {
	svg, err := NewTrendChart(view.Chart).GenerateSVG(view.Chart)
	if err != nil {
		return "", err
	}

	data := &TemplateData{
		SkuDetailView: view,
		ActionIcon:    actionIcon(view.Action.Mode),
		ChartSVG:      template.HTML(svg),
		DelayLabel:    fmt.Sprintf("%.1f days", view.Vendor.AverageDelay),
		FillLabel:     fmt.Sprintf("%.1f%%", 100*view.Vendor.AverageFillRate),
		GeneratedAt:   time.Now().Format("2006-01-02 15:04:05"),
	}

	tmpl, err := template.New("sku_view.html").Funcs(template.FuncMap{
		"arrival": arrivalLabel,
	}).ParseFS(templateFS, "templates/sku_view.html")
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// generateHTMLOutput writes the page to the configured writer
func generateHTMLOutput(view dto.SkuDetailView, config Config) error {
	page, err := GenerateHTML(view)
	if err != nil {
		return fmt.Errorf("failed to generate HTML view: %w", err)
	}
	if _, err := config.writer().Write([]byte(page)); err != nil {
		return fmt.Errorf("failed to write HTML: %w", err)
	}
	return nil
}
