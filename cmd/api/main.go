package main

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"recordsapi/docs"
	"recordsapi/internal/audit"
	"recordsapi/internal/authz"
	"recordsapi/internal/config"
	"recordsapi/internal/database"
	"recordsapi/internal/database/migration"
	handlers "recordsapi/internal/http/handler"
	"recordsapi/internal/http/middleware"
	"recordsapi/internal/identity"
	"recordsapi/internal/otel"
	"recordsapi/internal/repository/postgres"
	"recordsapi/internal/service"
	"recordsapi/internal/storage"
)

// @title Records Archive API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()
	loc := time.UTC

	// Initialize OpenTelemetry tracing (no-op when OTEL_SDK_DISABLED=true)
	shutdownTracing, err := otel.Init(ctx, loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
	}()

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Identity provider client for bearer-token verification
	verifier, err := identity.NewHTTPVerifier(cfg.Auth)
	if err != nil {
		log.Fatalf("failed to initialize identity verifier: %v", err)
	}

	// Role policy table, optionally overridden from file
	policy, err := authz.LoadPolicyFile(cfg.Security.PolicyFile)
	if err != nil {
		log.Fatalf("failed to load authorization policy: %v", err)
	}

	// Repositories
	docRepo := postgres.NewDocumentPostgres(db)
	assignmentRepo := postgres.NewAssignmentPostgres(db)
	profileRepo := postgres.NewProfilePostgres(db)
	auditRepo := postgres.NewAuditPostgres(db)
	disposalRepo := postgres.NewDisposalPostgres(db)

	// Metrics registry shared by the request counter and the audit recorder
	registry := prometheus.NewRegistry()

	auditor, err := audit.NewRecorder(auditRepo, registry)
	if err != nil {
		log.Fatalf("failed to initialize audit recorder: %v", err)
	}

	engine := authz.NewEngine(policy, docRepo, assignmentRepo)
	resolver := identity.NewResolver(verifier, profileRepo)

	uploadSvc := service.NewUploadService(objStore, docRepo, auditor,
		[]byte(cfg.Security.UploadTokenSecret), cfg.Security.MaxUploadBytes)
	docSvc := service.NewDocumentService(objStore, docRepo, auditRepo, disposalRepo,
		engine, auditor, cfg.Security.BarcodeSalt)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	promMiddleware, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		log.Fatalf("failed to initialize metrics middleware: %v", err)
	}

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())
	app.Use(promMiddleware.Handler())

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, uploadSvc, docSvc,
		middleware.Authenticate(resolver), cfg.Security.RetentionJobSecret)

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
