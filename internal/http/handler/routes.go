package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"recordsapi/internal/service"
)

// RegisterRoutes attaches the HTTP surface to the provided Fiber app.
// The auth handler guards every document route; job routes authenticate with
// the shared retention secret instead.
func RegisterRoutes(app *fiber.App, db *sql.DB, uploads service.UploadService, documents service.DocumentService, auth fiber.Handler, retentionSecret string) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/documents/upload-init", auth, InitUpload(uploads))
	app.Post("/documents/upload-complete", auth, CompleteUpload(uploads))

	app.Post("/resolve", auth, ResolveCode(documents))
	app.Post("/barcode/generate", auth, GenerateCode(documents))
	app.Get("/documents/mine", auth, ListMine(documents))
	app.Get("/documents/:docUid/download", auth, DownloadDocument(documents))
	app.Delete("/documents/:docUid", auth, DeleteDocument(documents))

	app.Post("/retention/run", RetentionRun(documents, retentionSecret))
	app.Post("/retention/delete-approved", DeleteApproved(retentionSecret))
}
