package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledger-backend/internal/admin"
	"ledger-backend/internal/audit"
	"ledger-backend/internal/auth"
	"ledger-backend/internal/config"
	"ledger-backend/internal/database"
	"ledger-backend/internal/inventory"
	"ledger-backend/internal/ledger"
	"ledger-backend/internal/ledger/gormstore"
	"ledger-backend/internal/logger"
	"ledger-backend/internal/mail"
	"ledger-backend/internal/models"
	"ledger-backend/internal/order"
	"ledger-backend/internal/vendors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Getenv("ENV_FILE"))
	if err != nil {
		panic(err)
	}

	log := logger.Must(logger.New(cfg.Env))
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("config geçersiz", zap.Error(err))
	}
	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	db, err := database.Init(cfg, logger.Named(log, "database"))
	if err != nil {
		log.Fatal("veritabanı hazırlanamadı", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal("sql bağlantısı alınamadı", zap.Error(err))
	}
	if err := gormstore.Migrate(sqlDB); err != nil {
		log.Fatal("ledger migration hatası", zap.Error(err))
	}

	var metrics *ledger.Metrics
	if cfg.MetricsEnabled {
		metrics = ledger.NewMetrics(prometheus.DefaultRegisterer)
	}
	svc := ledger.NewService(gormstore.New(db, cfg.LockTimeout), logger.Named(log, "ledger"), metrics)

	var sender mail.Sender = mail.NewLogSender(logger.Named(log, "mail"))
	if cfg.SendGridAPIKey != "" {
		sender = mail.NewSendGridClient(cfg.SendGridAPIKey, cfg.MailFrom, cfg.MailFromName, logger.Named(log, "mail"))
	}

	httpLog := logger.Named(log, "http")
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var e *fiber.Error
			if errors.As(err, &e) {
				return c.Status(e.Code).JSON(fiber.Map{
					"message": e.Message,
				})
			}
			httpLog.Error("unexpected error", zap.String("path", c.Path()), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"message": "Internal server error",
			})
		},
	})

	app.Use(recover.New())
	app.Use(logger.Middleware(httpLog))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
	}))

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := sqlDB.PingContext(c.UserContext()); err != nil {
			return fiber.NewError(fiber.StatusServiceUnavailable, "database unavailable")
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if cfg.MetricsEnabled {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}

	api := app.Group("/api")

	// Public auth
	api.Post("/auth/register-admin", auth.RegisterAdminHandler())
	api.Post("/auth/login", auth.LoginHandler(cfg.JWTSecret))
	api.Post("/auth/forgot-password", auth.ForgotPasswordHandler(sender, cfg.MailFromName, logger.Named(log, "auth")))
	api.Post("/auth/reset-password", auth.ResetPasswordHandler())

	// JWT korumalı
	protected := api.Group("", auth.JWTMiddleware(cfg.JWTSecret))
	protected.Get("/auth/me", auth.MeHandler())

	adminOnly := auth.RequireRole(models.RoleAdmin)

	// Kullanıcı yönetimi
	protected.Post("/admin/users", adminOnly, admin.CreateUserHandler())
	protected.Get("/admin/users", adminOnly, admin.ListUsersHandler())
	protected.Delete("/admin/users/:id", adminOnly, admin.DeleteUserHandler())

	// Stok: alış, çıkış, iade, katalog, rapor
	inventory.Mount(protected, svc)

	// Tedarikçiler
	protected.Post("/vendors", vendors.CreateVendorHandler())
	protected.Get("/vendors", vendors.ListVendorsHandler())
	protected.Get("/vendors/:id", vendors.GetVendorHandler())
	protected.Put("/vendors/:id", vendors.UpdateVendorHandler())
	protected.Delete("/vendors/:id", adminOnly, vendors.DeleteVendorHandler())

	// İskele malzeme talepleri
	protected.Post("/scaffolding-orders", order.CreateOrderHandler())
	protected.Get("/scaffolding-orders", order.ListOrdersHandler())
	protected.Delete("/scaffolding-orders/:id", order.DeleteOrderHandler())

	// Audit logs
	protected.Get("/audit-logs", adminOnly, audit.ListAuditLogsHandler())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		log.Info("kapanıyor")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error("shutdown hatası", zap.Error(err))
		}
	}()

	log.Info("Server çalışıyor", zap.String("port", cfg.HTTPPort))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		log.Fatal("listen hatası", zap.Error(err))
	}
}
