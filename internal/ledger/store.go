package ledger

import (
	"context"

	"ledger-backend/internal/models"
)

// Store, alan bazlı transaction açan kalıcılık katmanıdır.
//
// InTx içindeki fonksiyon hata dönerse hiçbir değişiklik kalıcı olmaz. Aynı kaleme
// dokunan eşzamanlı transaction'lar kilitle sıraya girer; kilit beklemesi zaman
// aşımına uğrarsa Retryable bir ConflictError döner.
type Store interface {
	InTx(ctx context.Context, d Domain, fn func(tx Tx) error) error
	// View salt okunur, tutarlı bir görüntü üzerinde çalışır (raporlar).
	View(ctx context.Context, d Domain, fn func(tx Tx) error) error
}

type Tx interface {
	Stock() StockTable
	Catalog() CatalogTable
	Purchases() Journal[models.Purchase]
	Issues() IssueJournal
	Returns() Journal[models.Return]
	WriteAudit(ctx context.Context, entry models.AuditLog) error
}

// StockDelta: tek kalem için miktar/ağırlık değişimi. Name, Unit ve
// PerUnitWeight sadece kayıt yoksa yeni satırın varsayılanlarıdır.
type StockDelta struct {
	Key           string
	Name          string
	Unit          string
	PerUnitWeight float64
	Quantity      float64
	Weight        float64
}

type StockQuery struct {
	Search string // ad içinde geçen, büyük/küçük harf duyarsız
	Page   int
	Limit  int
}

type StockTable interface {
	// Lock verilen anahtarların mevcut satırlarını kilitler ve döner.
	// Kilitler anahtar sırasıyla alınır; olmayan anahtarlar haritada yer almaz.
	Lock(ctx context.Context, keys []string) (map[string]*models.StockEntry, error)
	ApplyDelta(ctx context.Context, delta StockDelta) (*models.StockEntry, error)
	List(ctx context.Context, q StockQuery) ([]models.StockEntry, int64, error)
	All(ctx context.Context) ([]models.StockEntry, error)
}

type CatalogTable interface {
	Get(ctx context.Context, key string) (*models.CatalogItem, error)
	List(ctx context.Context) ([]models.CatalogItem, error)
	// Create aynı anahtarla kayıt varsa ConflictError döner.
	Create(ctx context.Context, item *models.CatalogItem) error
}

// Journal hareket kayıtlarının (alış, çıkış, iade) ortak sözleşmesi.
// Get transaction içinde kaydı kilitler; kayıt yoksa ErrNotFound sarılı döner.
type Journal[T any] interface {
	Create(ctx context.Context, rec *T) error
	Get(ctx context.Context, id uint) (*T, error)
	Save(ctx context.Context, rec *T) error
	Delete(ctx context.Context, id uint) error
	// List en yeni kayıt önce gelecek şekilde sıralar.
	List(ctx context.Context) ([]T, error)
}

type IssueJournal interface {
	Journal[models.Issue]
	// ForCounterparty kişiye yapılmış ve kalemi içeren çıkışları, en yenisi
	// önce olacak şekilde (tarih, sonra id) kilitleyerek döner.
	ForCounterparty(ctx context.Context, counterpartyKey, itemKey string) ([]models.Issue, error)
}
