package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultDSN = "host=localhost user=postgres password=postgres dbname=ledger port=5432 sslmode=disable"

type Config struct {
	Env            string
	HTTPPort       string
	DatabaseDSN    string
	JWTSecret      string
	CORSOrigins    string
	LockTimeout    time.Duration // stok satırı kilidi için bekleme sınırı
	MetricsEnabled bool

	// Şifre sıfırlama postası; anahtar boşsa posta sadece loglanır
	SendGridAPIKey string
	MailFrom       string
	MailFromName   string

	// Varsayılan değer kullanılan ayarlar, açılışta uyarı olarak loglanır
	Warnings []string
}

// Load, envFile verilmişse onu, yoksa çalışma dizinindeki .env dosyasını okur.
// Dosyanın olmaması hata değildir.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("env dosyası okunamadı %s: %w", envFile, err)
		}
	} else {
		_ = godotenv.Load()
	}

	lockTimeout, err := time.ParseDuration(getEnv("LOCK_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("LOCK_TIMEOUT geçersiz: %w", err)
	}

	metrics, err := strconv.ParseBool(getEnv("METRICS_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("METRICS_ENABLED geçersiz: %w", err)
	}

	cfg := &Config{
		Env:            getEnv("APP_ENV", "development"),
		HTTPPort:       getEnv("HTTP_PORT", "8080"),
		DatabaseDSN:    getEnv("DATABASE_DSN", defaultDSN),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		CORSOrigins:    getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
		LockTimeout:    lockTimeout,
		MetricsEnabled: metrics,
		SendGridAPIKey: getEnv("SENDGRID_API_KEY", ""),
		MailFrom:       getEnv("MAIL_FROM", "no-reply@localhost"),
		MailFromName:   getEnv("MAIL_FROM_NAME", "Stores"),
	}

	if cfg.DatabaseDSN == defaultDSN {
		cfg.Warnings = append(cfg.Warnings, "DATABASE_DSN varsayılan değerde, production için kendi Postgres bağlantını tanımla")
	}
	if cfg.CORSOrigins == "http://localhost:5173" {
		cfg.Warnings = append(cfg.Warnings, "CORS_ALLOWED_ORIGINS varsayılan değerde")
	}
	if cfg.SendGridAPIKey == "" {
		cfg.Warnings = append(cfg.Warnings, "SENDGRID_API_KEY tanımlanmamış, şifre sıfırlama kodları sadece loglanacak")
	}

	return cfg, nil
}

// Validate production için zorunlu alanları kontrol eder.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET tanımlanmamış"))
	} else if len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET en az 32 karakter olmalı"))
	}
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		errs = append(errs, errors.New("DATABASE_DSN boş olamaz"))
	}
	if _, err := strconv.Atoi(c.HTTPPort); err != nil {
		errs = append(errs, fmt.Errorf("HTTP_PORT sayı olmalı: %q", c.HTTPPort))
	}
	if c.LockTimeout <= 0 {
		errs = append(errs, errors.New("LOCK_TIMEOUT sıfırdan büyük olmalı"))
	}
	return errors.Join(errs...)
}

// AllowedOrigins virgülle ayrılmış CORS listesini temizler.
func (c *Config) AllowedOrigins() string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, ",")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
