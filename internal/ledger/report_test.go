package ledger

import (
	"testing"
	"time"

	"ledger-backend/internal/models"
)

func TestBuildReport(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	stock := []models.StockEntry{
		{ItemName: "Pipe", ItemKey: "pipe", Unit: "nos", Quantity: 5, TotalWeight: 10},
		{ItemName: "Clamp", ItemKey: "clamp", Unit: "nos", Quantity: 0},
		{ItemName: "Board", ItemKey: "board", Unit: "nos", Quantity: 12},
	}
	issues := []models.Issue{
		{ID: 1, IssueDate: day, Items: []models.LineItem{
			{ItemName: "pipe", ItemKey: "pipe", Quantity: 40, ReturnedQuantity: 10},
			{ItemName: "Clamp", ItemKey: "clamp", Quantity: 6},
		}},
		{ID: 2, IssueDate: day, Items: []models.LineItem{{ItemName: "Pipe", ItemKey: "pipe", Quantity: 10}}},
	}
	returns := []models.Return{
		{ID: 3, ReturnDate: day, Items: []models.LineItem{{ItemName: "Pipe", ItemKey: "pipe", Quantity: 10, IssueID: 1}}},
		{ID: 4, ReturnDate: day, Items: []models.LineItem{{ItemName: "Clamp", ItemKey: "clamp", Quantity: 8}}},
	}

	rep := BuildReport(Scaffolding, stock, issues, returns, "")
	if !rep.Success || len(rep.Data) != 3 {
		t.Fatalf("report = %+v", rep)
	}

	byName := map[string]ItemSummary{}
	for _, s := range rep.Data {
		byName[s.ItemName] = s
	}

	tests := []struct {
		name                        string
		issued, returned, net, field float64
		status                      string
	}{
		{"Pipe", 50, 10, 40, 40, StatusLowStock},
		{"Clamp", 6, 8, -2, 0, StatusCritical},
		{"Board", 0, 0, 0, 0, StatusHealthy},
	}
	for _, tt := range tests {
		got, ok := byName[tt.name]
		if !ok {
			t.Fatalf("%s missing from report", tt.name)
		}
		if got.TotalIssued != tt.issued || got.TotalReturned != tt.returned || got.NetIssued != tt.net || got.InField != tt.field {
			t.Errorf("%s = %+v", tt.name, got)
		}
		if got.Status != tt.status {
			t.Errorf("%s status = %q, want %q", tt.name, got.Status, tt.status)
		}
	}

	if rep.Data[0].ItemName != "Board" || rep.Data[2].ItemName != "Pipe" {
		t.Errorf("report not sorted by name: %v, %v", rep.Data[0].ItemName, rep.Data[2].ItemName)
	}
	if byName["Pipe"].CurrentWeight != 10 {
		t.Errorf("pipe weight = %v", byName["Pipe"].CurrentWeight)
	}

	want := Summary{TotalItems: 3, TotalIssued: 56, TotalReturned: 18, TotalInField: 40, TotalStock: 17, CriticalItems: 1, LowStockItems: 1}
	if rep.Summary != want {
		t.Errorf("summary = %+v, want %+v", rep.Summary, want)
	}
}

func TestBuildReportFilterAndDomainStatus(t *testing.T) {
	stock := []models.StockEntry{
		{ItemName: "Helmet", ItemKey: "helmet", Unit: "nos", Quantity: 0, TotalWeight: 3},
		{ItemName: "Gloves", ItemKey: "gloves", Unit: "pair", Quantity: 4},
	}

	rep := BuildReport(PPE, stock, nil, nil, "  HELMET ")
	if len(rep.Data) != 1 || rep.Data[0].ItemName != "Helmet" {
		t.Fatalf("filtered report = %+v", rep.Data)
	}
	if rep.Data[0].Status != "" || rep.Data[0].CurrentWeight != 0 {
		t.Errorf("ppe report carries scaffolding-only fields: %+v", rep.Data[0])
	}
	if rep.Summary.CriticalItems != 0 {
		t.Errorf("critical items = %d", rep.Summary.CriticalItems)
	}
}

func TestStockStatus(t *testing.T) {
	tests := []struct {
		current, issued float64
		want            string
	}{
		{0, 0, StatusCritical},
		{0, 10, StatusCritical},
		{1, 10, StatusLowStock},
		{2, 10, StatusHealthy},
		{5, 0, StatusHealthy},
	}
	for _, tt := range tests {
		if got := stockStatus(tt.current, tt.issued); got != tt.want {
			t.Errorf("stockStatus(%v, %v) = %q, want %q", tt.current, tt.issued, got, tt.want)
		}
	}
}
