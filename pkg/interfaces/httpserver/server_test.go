package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/vsinha/skudiag/pkg/domain/repositories"
	"github.com/vsinha/skudiag/pkg/infrastructure/repositories/httpapi"
	"github.com/vsinha/skudiag/pkg/infrastructure/repositories/scenario"
	fixtures "github.com/vsinha/skudiag/pkg/infrastructure/testing"
)

func newClient(t *testing.T, server *Server) *httpapi.Client {
	t.Helper()
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	client, err := httpapi.NewClient(httpapi.Options{BaseURL: ts.URL})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return client
}

func TestServer_RoundTrip(t *testing.T) {
	client := newClient(t, NewServer(fixtures.BuildSampleBackend(), nil, nil))
	ctx := context.Background()

	rng, err := client.GetSimulationRange(ctx)
	if err != nil || rng.MaxDay != 30 {
		t.Fatalf("Expected range with maxDay 30, got %v, %v", rng, err)
	}

	result, err := client.GetRootCause(ctx, fixtures.AutoSKU, 30)
	if err != nil {
		t.Fatalf("Failed to get root cause: %v", err)
	}
	if !result.IsAutoAction() {
		t.Error("Expected auto action")
	}

	vendor, err := client.GetVendorPerformance(ctx, fixtures.SuggestedSKU)
	if err != nil || !vendor.HasOrders() {
		t.Fatalf("Expected vendor with orders, got %v, %v", vendor, err)
	}

	none, err := client.GetVendorPerformance(ctx, fixtures.BareSKU)
	if err != nil || none != nil {
		t.Errorf("Expected null vendor, got %v, %v", none, err)
	}

	trend, err := client.GetInventoryTrend(ctx, fixtures.SuggestedSKU)
	if err != nil {
		t.Fatalf("Failed to get trend: %v", err)
	}
	if !trend.Price.Equal(decimal.NewFromInt(100)) || len(trend.Days) != 3 {
		t.Errorf("Unexpected trend: %+v", trend)
	}
}

func TestServer_Errors(t *testing.T) {
	s, err := scenario.Load(filepath.Join("..", "..", "..", "fixtures", "sample"))
	if err != nil {
		t.Fatalf("Failed to load scenario: %v", err)
	}
	client := newClient(t, NewServer(s.Backend, s, nil))
	ctx := context.Background()

	var apiErr *httpapi.APIError
	if _, err := client.GetRootCause(ctx, "BROKEN", 1); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected scripted 500 for BROKEN, got %v", err)
	}
	if _, err := client.GetInventoryTrend(ctx, "NOTREND"); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("Expected scripted 500 for NOTREND trend, got %v", err)
	}
	if _, err := client.GetInventoryTrend(ctx, "UNKNOWN"); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown SKU, got %v", err)
	}
	if apiErr.Endpoint != repositories.EndpointTrend {
		t.Errorf("Expected trend endpoint in error, got %s", apiErr.Endpoint)
	}
}

func TestServer_RejectsBadRootCauseBody(t *testing.T) {
	ts := httptest.NewServer(NewServer(fixtures.BuildSampleBackend(), nil, nil).Handler())
	defer ts.Close()

	resp, err := http.Post(ts.URL+"/sku-root-cause", "application/json", strings.NewReader(`{"day": 3}`))
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", resp.StatusCode)
	}
}
