package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/vsinha/skudiag/pkg/domain/entities"
)

// Loader handles loading SKU fixture data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadTrends loads daily inventory series keyed by SKU. Rows for a SKU must
// appear in day order; the order is kept as read.
func (l *Loader) LoadTrends(filename string) (map[entities.SKU]*entities.InventoryTrend, error) {
	records, err := readRecords(filename, "trend")
	if err != nil {
		return nil, err
	}

	// Validate header
	expectedHeader := []string{"sku", "day", "inventory", "fulfilled", "unfulfilled", "mean_demand"}
	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("trend CSV header mismatch. Expected: %v, Got: %v", expectedHeader, header)
	}

	trends := make(map[entities.SKU]*entities.InventoryTrend)
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("trend CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		sku, point, err := parseTrendPoint(record)
		if err != nil {
			return nil, fmt.Errorf("trend CSV row %d: %w", i+2, err)
		}

		trend, exists := trends[sku]
		if !exists {
			trend = &entities.InventoryTrend{}
			trends[sku] = trend
		}
		trend.AppendPoint(point)
	}

	return trends, nil
}

// LoadPurchaseOrders loads purchase orders keyed by SKU
func (l *Loader) LoadPurchaseOrders(filename string) (map[entities.SKU][]entities.PurchaseOrder, error) {
	records, err := readRecords(filename, "purchase orders")
	if err != nil {
		return nil, err
	}

	// Validate header
	expectedHeader := []string{"sku", "po_id", "order_day", "expected_arrival_day", "arrival_day", "quantity_ordered", "quantity_received"}
	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("purchase orders CSV header mismatch. Expected: %v, Got: %v", expectedHeader, header)
	}

	orders := make(map[entities.SKU][]entities.PurchaseOrder)
	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("purchase orders CSV row %d: expected %d columns, got %d", i+2, len(expectedHeader), len(record))
		}

		sku, po, err := parsePurchaseOrder(record)
		if err != nil {
			return nil, fmt.Errorf("purchase orders CSV row %d: %w", i+2, err)
		}

		orders[sku] = append(orders[sku], po)
	}

	return orders, nil
}

// Helper functions for parsing CSV records

func readRecords(filename, kind string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("%s CSV must have header and at least one data row", kind)
	}
	return records, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseSKU(raw string) (entities.SKU, error) {
	sku, err := entities.ParseSKU(raw)
	if err != nil {
		return "", fmt.Errorf("invalid sku: %w", err)
	}
	return sku, nil
}

func parseTrendPoint(record []string) (entities.SKU, entities.TrendPoint, error) {
	sku, err := parseSKU(record[0])
	if err != nil {
		return "", entities.TrendPoint{}, err
	}

	day, err := strconv.Atoi(strings.TrimSpace(record[1]))
	if err != nil {
		return "", entities.TrendPoint{}, fmt.Errorf("invalid day: %s", record[1])
	}

	values := make([]float64, 4)
	names := []string{"inventory", "fulfilled", "unfulfilled", "mean_demand"}
	for j, name := range names {
		values[j], err = strconv.ParseFloat(strings.TrimSpace(record[j+2]), 64)
		if err != nil {
			return "", entities.TrendPoint{}, fmt.Errorf("invalid %s: %s", name, record[j+2])
		}
	}

	return sku, entities.TrendPoint{
		Day:         day,
		Inventory:   values[0],
		Fulfilled:   values[1],
		Unfulfilled: values[2],
		MeanDemand:  values[3],
	}, nil
}

func parsePurchaseOrder(record []string) (entities.SKU, entities.PurchaseOrder, error) {
	sku, err := parseSKU(record[0])
	if err != nil {
		return "", entities.PurchaseOrder{}, err
	}

	orderDay, err := strconv.Atoi(strings.TrimSpace(record[2]))
	if err != nil {
		return "", entities.PurchaseOrder{}, fmt.Errorf("invalid order_day: %s", record[2])
	}

	expectedArrival, err := strconv.Atoi(strings.TrimSpace(record[3]))
	if err != nil {
		return "", entities.PurchaseOrder{}, fmt.Errorf("invalid expected_arrival_day: %s", record[3])
	}

	// An empty arrival_day means the order is still open
	var arrivalDay *int
	if s := strings.TrimSpace(record[4]); s != "" {
		day, err := strconv.Atoi(s)
		if err != nil {
			return "", entities.PurchaseOrder{}, fmt.Errorf("invalid arrival_day: %s", record[4])
		}
		arrivalDay = &day
	}

	ordered, err := strconv.ParseFloat(strings.TrimSpace(record[5]), 64)
	if err != nil {
		return "", entities.PurchaseOrder{}, fmt.Errorf("invalid quantity_ordered: %s", record[5])
	}

	received, err := strconv.ParseFloat(strings.TrimSpace(record[6]), 64)
	if err != nil {
		return "", entities.PurchaseOrder{}, fmt.Errorf("invalid quantity_received: %s", record[6])
	}

	po := entities.PurchaseOrder{
		ID:                 strings.TrimSpace(record[1]),
		OrderDay:           orderDay,
		ExpectedArrivalDay: expectedArrival,
		ArrivalDay:         arrivalDay,
		QuantityOrdered:    ordered,
		QuantityReceived:   received,
	}
	if arrivalDay != nil && *arrivalDay > expectedArrival {
		po.DelayDays = float64(*arrivalDay - expectedArrival)
	}
	return sku, po, nil
}
