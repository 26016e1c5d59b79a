package main

import (
	"context"
	"fmt"
	"time"

	"github.com/vsinha/skudiag/pkg/application/services/orchestration"
	"github.com/vsinha/skudiag/pkg/application/services/presentation"
	"github.com/vsinha/skudiag/pkg/domain/entities"
	"github.com/vsinha/skudiag/pkg/infrastructure/events"
	"github.com/vsinha/skudiag/pkg/infrastructure/logging"
	"github.com/vsinha/skudiag/pkg/infrastructure/repositories/scenario"
	"github.com/vsinha/skudiag/pkg/interfaces/cli/output"
)

func main() {
	ctx := context.Background()
	logger := logging.NewDiscardLogger()

	// Load the sample scenario into an in-memory backend
	sc, err := scenario.Load("fixtures/sample")
	if err != nil {
		fmt.Printf("❌ Failed to load scenario: %v\n", err)
		return
	}

	store := events.NewInMemoryEventStore(logger)
	orchestrator := orchestration.NewSourceOrchestrator(sc.Backend, nil, store, logger)
	defer orchestrator.Close()

	adapter := presentation.NewAdapter("")

	for _, sku := range sc.SKUs() {
		fmt.Printf("🔎 Loading %s...\n", sku)
		orchestrator.Select(ctx, sku)

		waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := orchestrator.Wait(waitCtx)
		cancel()
		if err != nil {
			fmt.Printf("❌ %s did not settle: %v\n", sku, err)
			continue
		}

		view := adapter.Build(orchestrator.Snapshot())
		fmt.Println(output.RenderText(view))
	}

	// Narrow the window on the last SKU to a single day
	state := orchestrator.Snapshot()
	if state.DayKnown() {
		day := state.SimulationDay
		if err := orchestrator.SetWindow(entities.AnalysisWindow{Start: day, End: day}); err == nil {
			view := adapter.Build(orchestrator.Snapshot())
			if view.Chart.Metrics != nil {
				fmt.Printf("📊 Day %d only: %s\n", day, view.Chart.Metrics.Text)
			}
		}
	}

	recorded, _ := store.ReadAllEvents(0)
	fmt.Printf("\n📜 %d view events recorded\n", len(recorded))
}
