package inventory

import (
	"strings"
	"time"

	"ledger-backend/internal/auth"
	"ledger-backend/internal/ledger"

	"github.com/gofiber/fiber/v2"
)

// LineRequest istemcinin gönderdiği satır. Eski istemciler "qty", "uom" ve
// "puw" alanlarını kullandığı için iki yazım da kabul edilir.
type LineRequest struct {
	ItemName      string   `json:"itemName"`
	Name          string   `json:"name"`
	Unit          string   `json:"unit"`
	UOM           string   `json:"uom"`
	Quantity      *float64 `json:"quantity"`
	Qty           *float64 `json:"qty"`
	Rate          float64  `json:"rate"`
	Amount        float64  `json:"amount"`
	PerUnitWeight *float64 `json:"perUnitWeight"`
	PUW           *float64 `json:"puw"`
}

func firstNonNil(vals ...*float64) float64 {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}

func (l LineRequest) input() ledger.LineInput {
	name := l.ItemName
	if strings.TrimSpace(name) == "" {
		name = l.Name
	}
	unit := l.Unit
	if strings.TrimSpace(unit) == "" {
		unit = l.UOM
	}
	return ledger.LineInput{
		ItemName:      name,
		Unit:          unit,
		Quantity:      firstNonNil(l.Quantity, l.Qty),
		Rate:          l.Rate,
		Amount:        l.Amount,
		PerUnitWeight: firstNonNil(l.PerUnitWeight, l.PUW),
	}
}

// lineInputs nil ile boş listeyi ayırt eder: nil "satırlara dokunma" demektir.
func lineInputs(in []LineRequest) []ledger.LineInput {
	if in == nil {
		return nil
	}
	out := make([]ledger.LineInput, 0, len(in))
	for _, l := range in {
		out = append(out, l.input())
	}
	return out
}

type PurchaseRequest struct {
	PartyName     string        `json:"partyName"`
	InvoiceNumber string        `json:"invoiceNumber"`
	InvoiceDate   string        `json:"invoiceDate"`
	GSTPercent    float64       `json:"gstPercent"`
	Items         []LineRequest `json:"items"`
}

func (r PurchaseRequest) input() (ledger.PurchaseInput, error) {
	date, err := parseDate("invoiceDate", r.InvoiceDate)
	if err != nil {
		return ledger.PurchaseInput{}, err
	}
	return ledger.PurchaseInput{
		PartyName:     r.PartyName,
		InvoiceNumber: r.InvoiceNumber,
		InvoiceDate:   date,
		GSTPercent:    r.GSTPercent,
		Items:         lineInputs(r.Items),
	}, nil
}

type IssueRequest struct {
	IssuedTo       string        `json:"issuedTo"`
	IssueDate      string        `json:"issueDate"`
	Location       string        `json:"location"`
	WONumber       string        `json:"woNumber"`
	SupervisorName string        `json:"supervisorName"`
	TSLName        string        `json:"tslName"`
	Items          []LineRequest `json:"items"`
}

func (r IssueRequest) input() (ledger.IssueInput, error) {
	date, err := parseDate("issueDate", r.IssueDate)
	if err != nil {
		return ledger.IssueInput{}, err
	}
	return ledger.IssueInput{
		IssuedTo:       r.IssuedTo,
		IssueDate:      date,
		Location:       r.Location,
		WONumber:       r.WONumber,
		SupervisorName: r.SupervisorName,
		TSLName:        r.TSLName,
		Items:          lineInputs(r.Items),
	}, nil
}

type ReturnRequest struct {
	PersonName     string        `json:"personName"`
	ReturnDate     string        `json:"returnDate"`
	Location       string        `json:"location"`
	WONumber       string        `json:"woNumber"`
	SupervisorName string        `json:"supervisorName"`
	TSLName        string        `json:"tslName"`
	IssueID        uint          `json:"issueId"`
	Items          []LineRequest `json:"items"`
}

func (r ReturnRequest) input() (ledger.ReturnInput, error) {
	date, err := parseDate("returnDate", r.ReturnDate)
	if err != nil {
		return ledger.ReturnInput{}, err
	}
	return ledger.ReturnInput{
		PersonName:     r.PersonName,
		ReturnDate:     date,
		Location:       r.Location,
		WONumber:       r.WONumber,
		SupervisorName: r.SupervisorName,
		TSLName:        r.TSLName,
		IssueID:        r.IssueID,
		Items:          lineInputs(r.Items),
	}, nil
}

type ItemRequest struct {
	ItemName      string   `json:"itemName"`
	Unit          string   `json:"unit"`
	PerUnitWeight *float64 `json:"perUnitWeight"`
	PUW           *float64 `json:"puw"`
}

type OpeningStockRequest struct {
	ItemName      string   `json:"itemName"`
	Unit          string   `json:"unit"`
	Quantity      *float64 `json:"quantity"`
	Qty           *float64 `json:"qty"`
	PerUnitWeight *float64 `json:"perUnitWeight"`
	PUW           *float64 `json:"puw"`
}

// parseDate "2006-01-02" ya da RFC3339 kabul eder; boş değer sıfır zaman döner
// ve zorunluluk kontrolü servis katmanında yapılır.
func parseDate(field, s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, &ledger.ValidationError{Field: field, Message: "date must be YYYY-MM-DD or RFC3339"}
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return &ledger.ValidationError{Message: "invalid request body"}
	}
	return nil
}

func domainParam(c *fiber.Ctx) (ledger.Domain, error) {
	return ledger.ParseDomain(c.Params("domain"))
}

func idParam(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, &ledger.ValidationError{Field: "id", Message: "invalid id"}
	}
	return uint(id), nil
}

func actor(c *fiber.Ctx) ledger.Actor {
	id, name := auth.CurrentUser(c)
	return ledger.Actor{UserID: id, Name: name}
}
