package gormstore_test

import (
	"context"
	"errors"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ledger-backend/internal/ledger"
	"ledger-backend/internal/ledger/gormstore"
	"ledger-backend/internal/models"
)

var (
	ctx   = context.Background()
	actor = ledger.Actor{UserID: 1, Name: "storekeeper"}
	day   = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
)

func withSearchPath(dsn, schema string) string {
	if strings.Contains(dsn, "://") {
		if u, err := url.Parse(dsn); err == nil {
			q := u.Query()
			q.Set("search_path", schema)
			u.RawQuery = q.Encode()
			return u.String()
		}
	}
	return dsn + " search_path=" + schema
}

// openDB TEST_DATABASE_URL tanımlıysa boş bir şemada alan tablolarını kurar.
func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	cfg := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}

	root, err := gorm.Open(postgres.Open(dsn), cfg)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	const schema = "gormstore_test"
	for _, stmt := range []string{"DROP SCHEMA IF EXISTS " + schema + " CASCADE", "CREATE SCHEMA " + schema} {
		if err := root.Exec(stmt).Error; err != nil {
			t.Fatalf("%s: %v", stmt, err)
		}
	}
	if sqlDB, err := root.DB(); err == nil {
		sqlDB.Close()
	}

	db, err := gorm.Open(postgres.Open(withSearchPath(dsn, schema)), cfg)
	if err != nil {
		t.Fatalf("open schema: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(&models.AuditLog{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	if err := gormstore.Migrate(sqlDB); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newService(t *testing.T, lockTimeout time.Duration) (*ledger.Service, *gorm.DB) {
	db := openDB(t)
	return ledger.NewService(gormstore.New(db, lockTimeout), nil, nil), db
}

func stockRows(t *testing.T, svc *ledger.Service, d ledger.Domain) []models.StockEntry {
	t.Helper()
	page, err := svc.ListStock(ctx, d, ledger.StockQuery{Limit: 500})
	if err != nil {
		t.Fatalf("ListStock: %v", err)
	}
	return page.Data
}

func TestStockUpsertKeepsOneRowPerItem(t *testing.T) {
	svc, _ := newService(t, time.Second)
	d := ledger.PPE

	for _, name := range []string{"Helmet", " helmet ", "HELMET"} {
		_, err := svc.CreatePurchase(ctx, d, actor, ledger.PurchaseInput{
			PartyName: "Acme", InvoiceNumber: "INV-1", InvoiceDate: day,
			Items: []ledger.LineInput{{ItemName: name, Unit: "nos", Quantity: 10}},
		})
		if err != nil {
			t.Fatalf("CreatePurchase(%q): %v", name, err)
		}
	}
	rows := stockRows(t, svc, d)
	if len(rows) != 1 || rows[0].Quantity != 30 || rows[0].ItemName != "Helmet" {
		t.Fatalf("stock rows = %+v, want one Helmet row of 30", rows)
	}

	_, err := svc.CreateIssue(ctx, d, actor, ledger.IssueInput{
		IssuedTo: "Team", IssueDate: day, Items: []ledger.LineInput{{ItemName: "helmet", Quantity: 31}},
	})
	if !errors.Is(err, ledger.ErrInsufficientStock) {
		t.Fatalf("err = %v, want insufficient stock", err)
	}
	if rows := stockRows(t, svc, d); rows[0].Quantity != 30 {
		t.Fatalf("rejected issue changed stock: %+v", rows[0])
	}
}

func TestLinkedReturnFindsIssueByItem(t *testing.T) {
	svc, _ := newService(t, time.Second)
	d := ledger.Scaffolding

	_, err := svc.CreatePurchase(ctx, d, actor, ledger.PurchaseInput{
		PartyName: "Steel Co", InvoiceNumber: "S-1", InvoiceDate: day,
		Items: []ledger.LineInput{
			{ItemName: "Pipe", Unit: "nos", Quantity: 100, PerUnitWeight: 2},
			{ItemName: "Clamp", Unit: "nos", Quantity: 100, PerUnitWeight: 1},
		},
	})
	if err != nil {
		t.Fatalf("CreatePurchase: %v", err)
	}
	pipes, err := svc.CreateIssue(ctx, d, actor, ledger.IssueInput{
		IssuedTo: "Crew-A", IssueDate: day, Items: []ledger.LineInput{{ItemName: "Pipe", Quantity: 30}},
	})
	if err != nil {
		t.Fatal(err)
	}
	// daha yeni ama boru içermeyen çıkış seçilmemeli
	if _, err := svc.CreateIssue(ctx, d, actor, ledger.IssueInput{
		IssuedTo: "Crew-A", IssueDate: day.AddDate(0, 0, 1), Items: []ledger.LineInput{{ItemName: "Clamp", Quantity: 10}},
	}); err != nil {
		t.Fatal(err)
	}

	ret, err := svc.CreateReturn(ctx, d, actor, ledger.ReturnInput{
		PersonName: "crew-a", ReturnDate: day.AddDate(0, 0, 2), Items: []ledger.LineInput{{ItemName: "pipe", Quantity: 12}},
	})
	if err != nil {
		t.Fatalf("CreateReturn: %v", err)
	}
	if ret.Items[0].IssueID != pipes.ID {
		t.Fatalf("return bound to %d, want %d", ret.Items[0].IssueID, pipes.ID)
	}
	got, err := svc.GetIssue(ctx, d, pipes.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Items[0].ReturnedQuantity != 12 || got.Items[0].ReturnedWeight != 24 {
		t.Fatalf("issue line = %+v", got.Items[0])
	}

	if err := svc.DeleteIssue(ctx, d, actor, pipes.ID); !errors.Is(err, ledger.ErrConflict) {
		t.Fatalf("DeleteIssue err = %v, want conflict", err)
	}
}

func TestConcurrentIssuesSerializeOnStockRow(t *testing.T) {
	svc, _ := newService(t, 5*time.Second)
	d := ledger.Mechanical
	_, err := svc.CreatePurchase(ctx, d, actor, ledger.PurchaseInput{
		PartyName: "Tools Ltd", InvoiceNumber: "T-1", InvoiceDate: day,
		Items: []ledger.LineInput{{ItemName: "Grinder", Unit: "nos", Quantity: 100}},
	})
	if err != nil {
		t.Fatal(err)
	}

	var (
		wg                  sync.WaitGroup
		mu                  sync.Mutex
		succeeded, rejected int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateIssue(ctx, d, actor, ledger.IssueInput{
				IssuedTo: "Crew-B", IssueDate: day, Items: []ledger.LineInput{{ItemName: "Grinder", Quantity: 60}},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, ledger.ErrInsufficientStock):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 1 || rejected != 1 {
		t.Fatalf("succeeded=%d rejected=%d, want 1 and 1", succeeded, rejected)
	}
	if rows := stockRows(t, svc, d); rows[0].Quantity != 40 {
		t.Fatalf("stock = %v, want 40", rows[0].Quantity)
	}
}

func TestLockTimeoutIsRetryable(t *testing.T) {
	svc, db := newService(t, 50*time.Millisecond)
	d := ledger.PPE
	_, err := svc.CreatePurchase(ctx, d, actor, ledger.PurchaseInput{
		PartyName: "Acme", InvoiceNumber: "INV-2", InvoiceDate: day,
		Items: []ledger.LineInput{{ItemName: "Gloves", Unit: "pair", Quantity: 10}},
	})
	if err != nil {
		t.Fatal(err)
	}

	holder := db.Begin()
	defer holder.Rollback()
	if err := holder.Exec("SELECT id FROM ppe_stock WHERE item_key = ? FOR UPDATE", "gloves").Error; err != nil {
		t.Fatalf("hold lock: %v", err)
	}

	_, err = svc.CreateIssue(ctx, d, actor, ledger.IssueInput{
		IssuedTo: "Team", IssueDate: day, Items: []ledger.LineInput{{ItemName: "Gloves", Quantity: 1}},
	})
	if !ledger.IsRetryable(err) {
		t.Fatalf("err = %v, want retryable conflict", err)
	}
}
