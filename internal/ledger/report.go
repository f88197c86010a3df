package ledger

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ledger-backend/internal/models"
)

const (
	StatusCritical = "Critical"
	StatusLowStock = "Low Stock"
	StatusHealthy  = "Healthy"

	// stok / toplam çıkış oranı bunun altındaysa "Low Stock"
	lowStockRatio = 0.2
)

type ItemSummary struct {
	ItemName      string  `json:"itemName"`
	Unit          string  `json:"unit"`
	TotalIssued   float64 `json:"totalIssued"`
	TotalReturned float64 `json:"totalReturned"`
	NetIssued     float64 `json:"netIssued"`
	InField       float64 `json:"inField"`
	CurrentStock  float64 `json:"currentStock"`
	CurrentWeight float64 `json:"currentWeight,omitempty"`
	Status        string  `json:"status,omitempty"`
}

type Summary struct {
	TotalItems    int     `json:"totalItems"`
	TotalIssued   float64 `json:"totalIssued"`
	TotalReturned float64 `json:"totalReturned"`
	TotalInField  float64 `json:"totalInField"`
	TotalStock    float64 `json:"totalStock"`
	CriticalItems int     `json:"criticalItems"`
	LowStockItems int     `json:"lowStockItems"`
}

type Report struct {
	Success bool          `json:"success"`
	Domain  Domain        `json:"domain"`
	Summary Summary       `json:"summary"`
	Data    []ItemSummary `json:"data"`
}

type HistoryEntry struct {
	ID       uint      `json:"id"`
	Date     time.Time `json:"date"`
	Person   string    `json:"person"`
	Location string    `json:"location,omitempty"`
	WONumber string    `json:"woNumber,omitempty"`
	Quantity float64   `json:"quantity"`
	Weight   float64   `json:"weight,omitempty"`
}

type ItemReport struct {
	Success       bool           `json:"success"`
	Domain        Domain         `json:"domain"`
	Item          ItemSummary    `json:"item"`
	IssueHistory  []HistoryEntry `json:"issueHistory"`
	ReturnHistory []HistoryEntry `json:"returnHistory"`
}

// BuildReport çıkış, iade ve stok kayıtlarını kalem anahtarı üzerinden birleştirir.
// Toplam iade sadece iade kayıtlarından sayılır; çıkış satırlarındaki iade
// sayaçları aynı miktarın ikinci kopyasıdır.
func BuildReport(d Domain, stock []models.StockEntry, issues []models.Issue, returns []models.Return, filter string) *Report {
	filterKey := ItemKey(filter)
	byKey := make(map[string]*ItemSummary)
	get := func(key, name, unit string) *ItemSummary {
		if filterKey != "" && key != filterKey {
			return nil
		}
		s, ok := byKey[key]
		if !ok {
			s = &ItemSummary{ItemName: name, Unit: unit}
			byKey[key] = s
		}
		return s
	}

	for _, e := range stock {
		if s := get(e.ItemKey, e.ItemName, e.Unit); s != nil {
			s.ItemName, s.Unit = e.ItemName, e.Unit
			s.CurrentStock = e.Quantity
			if d.TracksWeight() {
				s.CurrentWeight = e.TotalWeight
			}
		}
	}
	for _, is := range issues {
		for _, l := range is.Items {
			if s := get(l.ItemKey, l.ItemName, l.Unit); s != nil {
				s.TotalIssued += l.Quantity
			}
		}
	}
	for _, r := range returns {
		for _, l := range r.Items {
			if s := get(l.ItemKey, l.ItemName, l.Unit); s != nil {
				s.TotalReturned += l.Quantity
			}
		}
	}

	rep := &Report{Success: true, Domain: d, Data: make([]ItemSummary, 0, len(byKey))}
	for _, s := range byKey {
		s.NetIssued = s.TotalIssued - s.TotalReturned
		s.InField = max(0, s.NetIssued)
		if d == Scaffolding {
			s.Status = stockStatus(s.CurrentStock, s.TotalIssued)
		}
		rep.Data = append(rep.Data, *s)
	}
	sort.Slice(rep.Data, func(i, j int) bool {
		return strings.ToLower(rep.Data[i].ItemName) < strings.ToLower(rep.Data[j].ItemName)
	})

	for _, s := range rep.Data {
		rep.Summary.TotalItems++
		rep.Summary.TotalIssued += s.TotalIssued
		rep.Summary.TotalReturned += s.TotalReturned
		rep.Summary.TotalInField += s.InField
		rep.Summary.TotalStock += s.CurrentStock
		switch s.Status {
		case StatusCritical:
			rep.Summary.CriticalItems++
		case StatusLowStock:
			rep.Summary.LowStockItems++
		}
	}
	return rep
}

func stockStatus(current, issued float64) string {
	switch {
	case current <= epsilon:
		return StatusCritical
	case issued > 0 && current/issued < lowStockRatio:
		return StatusLowStock
	default:
		return StatusHealthy
	}
}

// Report tek bir salt okunur transaction içindeki görüntüden rapor üretir.
func (s *Service) Report(ctx context.Context, d Domain, filter string) (*Report, error) {
	var rep *Report
	err := s.view(ctx, d, func(tx Tx) error {
		stock, issues, returns, err := snapshot(ctx, tx)
		if err != nil {
			return err
		}
		rep = BuildReport(d, stock, issues, returns, filter)
		return nil
	})
	return rep, err
}

// ItemReport bir kalemin rapor satırını ve çıkış/iade geçmişini (en yeni önce) döner.
func (s *Service) ItemReport(ctx context.Context, d Domain, itemName string) (*ItemReport, error) {
	key := ItemKey(itemName)
	if key == "" {
		return nil, invalid("itemName", "item name is required")
	}

	var out *ItemReport
	err := s.view(ctx, d, func(tx Tx) error {
		stock, issues, returns, err := snapshot(ctx, tx)
		if err != nil {
			return err
		}
		rep := BuildReport(d, stock, issues, returns, itemName)
		if len(rep.Data) == 0 {
			return fmt.Errorf("item %s: %w", itemName, ErrNotFound)
		}

		out = &ItemReport{Success: true, Domain: d, Item: rep.Data[0], IssueHistory: []HistoryEntry{}, ReturnHistory: []HistoryEntry{}}
		for _, is := range issues {
			qty, weight := sumLines(is.Items, key)
			if qty > 0 {
				out.IssueHistory = append(out.IssueHistory, HistoryEntry{
					ID: is.ID, Date: is.IssueDate, Person: is.IssuedTo, Location: is.Location,
					WONumber: is.WONumber, Quantity: qty, Weight: weight,
				})
			}
		}
		for _, r := range returns {
			qty, weight := sumLines(r.Items, key)
			if qty > 0 {
				out.ReturnHistory = append(out.ReturnHistory, HistoryEntry{
					ID: r.ID, Date: r.ReturnDate, Person: r.PersonName, Location: r.Location,
					WONumber: r.WONumber, Quantity: qty, Weight: weight,
				})
			}
		}
		sortHistory(out.IssueHistory)
		sortHistory(out.ReturnHistory)
		return nil
	})
	return out, err
}

func snapshot(ctx context.Context, tx Tx) ([]models.StockEntry, []models.Issue, []models.Return, error) {
	stock, err := tx.Stock().All(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	issues, err := tx.Issues().List(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	returns, err := tx.Returns().List(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return stock, issues, returns, nil
}

func sumLines(lines []models.LineItem, key string) (qty, weight float64) {
	for _, l := range lines {
		if l.ItemKey == key {
			qty += l.Quantity
			weight += l.Weight
		}
	}
	return qty, weight
}

func sortHistory(h []HistoryEntry) {
	sort.SliceStable(h, func(i, j int) bool {
		if !h[i].Date.Equal(h[j].Date) {
			return h[i].Date.After(h[j].Date)
		}
		return h[i].ID > h[j].ID
	})
}
