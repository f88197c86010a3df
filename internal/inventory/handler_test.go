package inventory

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"ledger-backend/internal/auth"
	"ledger-backend/internal/ledger"
	"ledger-backend/internal/ledger/memstore"
	"ledger-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
)

func newTestApp(t *testing.T, role models.UserRole) *fiber.App {
	t.Helper()
	svc := ledger.NewService(memstore.New(time.Second), nil, nil)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(auth.CtxUserIDKey, uint(1))
		c.Locals(auth.CtxUserNameKey, "tester")
		c.Locals(auth.CtxUserRoleKey, role)
		return c.Next()
	})
	Mount(app.Group("/api"), svc)
	return app
}

func do(t *testing.T, app *fiber.App, method, path string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func TestPurchaseIssueReturnFlow(t *testing.T) {
	app := newTestApp(t, models.RoleStorekeeper)

	status, raw := do(t, app, "POST", "/api/ledger/ppe/purchases", fiber.Map{
		"partyName": "Acme", "invoiceNumber": "INV-9", "invoiceDate": "2024-03-01",
		"items": []fiber.Map{{"itemName": "Helmet", "unit": "nos", "qty": 100, "rate": 250}},
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create purchase status = %d: %s", status, raw)
	}
	p := decode[models.Purchase](t, raw)
	if p.Subtotal != 25000 || len(p.Items) != 1 || p.Items[0].Quantity != 100 {
		t.Fatalf("unexpected purchase %+v", p)
	}

	status, raw = do(t, app, "POST", "/api/ledger/ppe/issues", fiber.Map{
		"issuedTo": "Ravi", "issueDate": "2024-03-02", "location": "Site 4",
		"items": []fiber.Map{{"name": "helmet", "quantity": 30}},
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create issue status = %d: %s", status, raw)
	}

	status, raw = do(t, app, "POST", "/api/ledger/ppe/issues", fiber.Map{
		"issuedTo": "Ravi", "issueDate": "2024-03-02",
		"items": []fiber.Map{{"itemName": "Helmet", "qty": 80}},
	})
	if status != fiber.StatusConflict {
		t.Fatalf("oversized issue status = %d: %s", status, raw)
	}
	er := decode[errorResponse](t, raw)
	if len(er.Shortages) != 1 || er.Shortages[0].Available != 70 || er.Shortages[0].Requested != 80 {
		t.Fatalf("unexpected shortages %+v", er)
	}
	if !strings.HasPrefix(er.Message, "insufficient stock for Helmet") {
		t.Errorf("message = %q", er.Message)
	}

	status, raw = do(t, app, "POST", "/api/ledger/ppe/returns", fiber.Map{
		"personName": "Ravi", "returnDate": "2024-03-05T10:00:00Z",
		"items": []fiber.Map{{"itemName": "Helmet", "qty": 5}},
	})
	if status != fiber.StatusCreated {
		t.Fatalf("create return status = %d: %s", status, raw)
	}

	status, raw = do(t, app, "GET", "/api/ledger/ppe/stock?search=helm", nil)
	if status != fiber.StatusOK {
		t.Fatalf("stock status = %d", status)
	}
	page := decode[ledger.StockPage](t, raw)
	if page.Total != 1 || page.Data[0].Quantity != 75 {
		t.Fatalf("unexpected stock page %+v", page)
	}

	status, raw = do(t, app, "GET", "/api/ledger/ppe/report", nil)
	if status != fiber.StatusOK {
		t.Fatalf("report status = %d", status)
	}
	rep := decode[ledger.Report](t, raw)
	if len(rep.Data) != 1 || rep.Data[0].TotalIssued != 30 || rep.Data[0].TotalReturned != 5 || rep.Data[0].InField != 25 {
		t.Fatalf("unexpected report %+v", rep)
	}

	status, raw = do(t, app, "GET", "/api/ledger/ppe/report/items/HELMET", nil)
	if status != fiber.StatusOK {
		t.Fatalf("item report status = %d: %s", status, raw)
	}
	ir := decode[ledger.ItemReport](t, raw)
	if len(ir.IssueHistory) != 1 || len(ir.ReturnHistory) != 1 {
		t.Fatalf("unexpected item report %+v", ir)
	}
}

func TestErrorMapping(t *testing.T) {
	app := newTestApp(t, models.RoleStorekeeper)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown domain", "GET", "/api/ledger/food/stock", nil, fiber.StatusBadRequest},
		{"bad id", "GET", "/api/ledger/ppe/issues/abc", nil, fiber.StatusBadRequest},
		{"missing purchase", "GET", "/api/ledger/ppe/purchases/42", nil, fiber.StatusNotFound},
		{"missing item report", "GET", "/api/ledger/ppe/report/items/gloves", nil, fiber.StatusNotFound},
		{"bad date", "POST", "/api/ledger/ppe/issues", fiber.Map{"issuedTo": "A", "issueDate": "03/02/2024"}, fiber.StatusBadRequest},
		{"no items", "POST", "/api/ledger/ppe/issues", fiber.Map{"issuedTo": "A", "issueDate": "2024-03-02", "items": []fiber.Map{}}, fiber.StatusBadRequest},
		{"negative qty", "POST", "/api/ledger/mechanical/purchases", fiber.Map{
			"partyName": "A", "invoiceNumber": "1", "invoiceDate": "2024-03-01",
			"items": []fiber.Map{{"itemName": "Pipe", "unit": "m", "qty": -3}},
		}, fiber.StatusBadRequest},
		{"catalog is admin only", "POST", "/api/ledger/ppe/items", fiber.Map{"itemName": "Gloves", "unit": "pair"}, fiber.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := do(t, app, tt.method, tt.path, tt.body)
			if status != tt.want {
				t.Fatalf("status = %d, want %d: %s", status, tt.want, raw)
			}
		})
	}
}

func TestUpdateWithoutItemsKeepsLines(t *testing.T) {
	app := newTestApp(t, models.RoleStorekeeper)

	_, raw := do(t, app, "POST", "/api/ledger/mechanical/purchases", fiber.Map{
		"partyName": "Acme", "invoiceNumber": "INV-1", "invoiceDate": "2024-03-01",
		"items": []fiber.Map{{"itemName": "Pipe", "unit": "m", "qty": 20}},
	})
	p := decode[models.Purchase](t, raw)

	status, raw := do(t, app, "PUT", "/api/ledger/mechanical/purchases/"+itoa(p.ID), fiber.Map{
		"partyName": "Acme Industrial", "invoiceNumber": "INV-1A", "invoiceDate": "2024-03-01",
	})
	if status != fiber.StatusOK {
		t.Fatalf("update status = %d: %s", status, raw)
	}
	updated := decode[models.Purchase](t, raw)
	if updated.PartyName != "Acme Industrial" || len(updated.Items) != 1 || updated.Items[0].Quantity != 20 {
		t.Fatalf("header-only update changed lines: %+v", updated)
	}

	_, raw = do(t, app, "GET", "/api/ledger/mechanical/stock", nil)
	if page := decode[ledger.StockPage](t, raw); page.Data[0].Quantity != 20 {
		t.Fatalf("stock changed on header-only update: %+v", page)
	}
}

func TestLinkedReturnOverLimit(t *testing.T) {
	app := newTestApp(t, models.RoleAdmin)

	status, raw := do(t, app, "POST", "/api/ledger/scaffolding/items", fiber.Map{"itemName": "Pipe 6m", "unit": "nos", "puw": 25})
	if status != fiber.StatusCreated {
		t.Fatalf("create item status = %d: %s", status, raw)
	}
	status, raw = do(t, app, "POST", "/api/ledger/scaffolding/stock", fiber.Map{"itemName": "Pipe 6m", "qty": 40, "puw": 25})
	if status != fiber.StatusCreated {
		t.Fatalf("opening stock status = %d: %s", status, raw)
	}
	_, raw = do(t, app, "POST", "/api/ledger/scaffolding/issues", fiber.Map{
		"issuedTo": "Kumar", "issueDate": "2024-03-02", "items": []fiber.Map{{"itemName": "Pipe 6m", "qty": 10}},
	})
	is := decode[models.Issue](t, raw)
	if is.Items[0].Weight != 250 {
		t.Fatalf("issue weight = %v, want 250", is.Items[0].Weight)
	}

	status, raw = do(t, app, "POST", "/api/ledger/scaffolding/returns", fiber.Map{
		"personName": "Kumar", "returnDate": "2024-03-04", "issueId": is.ID,
		"items": []fiber.Map{{"itemName": "Pipe 6m", "qty": 12}},
	})
	if status != fiber.StatusConflict {
		t.Fatalf("over-return status = %d: %s", status, raw)
	}
	if er := decode[errorResponse](t, raw); !strings.HasPrefix(er.Message, "return exceeds remaining quantity for") {
		t.Errorf("message = %q", er.Message)
	}

	status, raw = do(t, app, "DELETE", "/api/ledger/scaffolding/issues/"+itoa(is.ID), nil)
	if status != fiber.StatusOK {
		t.Fatalf("delete issue status = %d: %s", status, raw)
	}
	_, raw = do(t, app, "GET", "/api/ledger/scaffolding/stock", nil)
	if page := decode[ledger.StockPage](t, raw); page.Data[0].Quantity != 40 || page.Data[0].TotalWeight != 1000 {
		t.Fatalf("stock not restored: %+v", page.Data[0])
	}
}

func TestImportItemsFromSheet(t *testing.T) {
	app := newTestApp(t, models.RoleAdmin)

	f := excelize.NewFile()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows := [][]interface{}{
		{"Item Name", "Unit", "Per Unit Weight"},
		{"Coupler", "nos", 1.5},
		{"Base Plate", "nos", "heavy"},
		{"Ledger 2m", "nos", 9},
		{"coupler", "nos", 1.5},
	}
	for i, r := range rows {
		addr, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, addr, &r); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	var file bytes.Buffer
	if err := f.Write(&file); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, _ := mw.CreateFormFile("file", "items.xlsx")
	_, _ = part.Write(file.Bytes())
	_ = mw.Close()

	req := httptest.NewRequest("POST", "/api/ledger/scaffolding/items/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("import status = %d: %s", resp.StatusCode, raw)
	}
	res := decode[ledger.ImportResult](t, raw)
	if res.Created != 2 || res.Skipped != 2 || len(res.Errors) != 1 {
		t.Fatalf("unexpected import result %+v", res)
	}

	_, raw = do(t, app, "GET", "/api/ledger/scaffolding/items", nil)
	items := decode[[]models.CatalogItem](t, raw)
	if len(items) != 2 {
		t.Fatalf("catalog has %d items, want 2", len(items))
	}
}

func TestExportReport(t *testing.T) {
	app := newTestApp(t, models.RoleAdmin)

	do(t, app, "POST", "/api/ledger/scaffolding/purchases", fiber.Map{
		"partyName": "Acme", "invoiceNumber": "INV-1", "invoiceDate": "2024-03-01",
		"items": []fiber.Map{{"itemName": "Coupler", "unit": "nos", "qty": 100, "puw": 1.5}},
	})
	do(t, app, "POST", "/api/ledger/scaffolding/issues", fiber.Map{
		"issuedTo": "Kumar", "issueDate": "2024-03-02", "items": []fiber.Map{{"itemName": "Coupler", "qty": 90}},
	})

	req := httptest.NewRequest("GET", "/api/ledger/scaffolding/report/export", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "scaffolding_report_") {
		t.Errorf("content disposition = %q", cd)
	}

	f, err := excelize.OpenReader(resp.Body)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetList()[0])
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header, one item and totals", len(rows))
	}
	if rows[1][0] != "Coupler" || rows[1][2] != "90" || rows[1][6] != "10" || rows[1][8] != ledger.StatusLowStock {
		t.Errorf("unexpected item row %v", rows[1])
	}
	if rows[2][0] != "TOTAL" {
		t.Errorf("last row should be totals, got %v", rows[2])
	}
}

func TestDetectHeader(t *testing.T) {
	cols, ok := detectHeader([]string{"S.No", "Material", "UOM", "PUW"})
	if !ok || cols != (itemColumns{name: 1, unit: 2, weight: 3}) {
		t.Errorf("detectHeader = %+v, %v", cols, ok)
	}
	cols, ok = detectHeader([]string{"Coupler", "nos", "1.5"})
	if ok || cols != positionalColumns {
		t.Errorf("data row detected as header: %+v", cols)
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
