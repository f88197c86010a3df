package database

import (
	"fmt"
	"time"

	"ledger-backend/internal/config"
	"ledger-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init bağlantıyı açar ve sabit tabloları (kullanıcı, audit, tedarikçi, sipariş)
// AutoMigrate ile oluşturur. Alan tabloları gormstore.Migrate ile gelir.
func Init(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.Env == "development" {
		level = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("veritabanına bağlanılamadı: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	err = db.AutoMigrate(
		&models.User{},
		&models.AuditLog{},
		&models.Vendor{},
		&models.ScaffoldingOrder{},
	)
	if err != nil {
		return nil, fmt.Errorf("AutoMigrate hatası: %w", err)
	}

	// audit listesinin varsayılan sıralaması
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs (created_at DESC)").Error; err != nil {
		log.Warn("audit index oluşturulamadı", zap.Error(err))
	}

	DB = db
	log.Info("Veritabanı bağlantısı başarılı. Migration tamamlandı.")
	return db, nil
}
