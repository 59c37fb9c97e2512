package handler

import (
	"github.com/gofiber/fiber/v2"

	"recordsapi/internal/http/middleware"
	"recordsapi/internal/model"
	"recordsapi/internal/service"
)

// principalFromCtx returns the authenticated principal stored by the auth
// middleware. Handlers behind the middleware can rely on it being present.
func principalFromCtx(c *fiber.Ctx) (*model.Principal, bool) {
	return middleware.PrincipalFromCtx(c)
}

func requestMeta(c *fiber.Ctx) model.RequestMeta {
	return model.RequestMeta{
		IP:        c.IP(),
		UserAgent: c.Get(fiber.HeaderUserAgent),
	}
}

type initUploadRequest struct {
	Title    string `json:"title"`
	DocType  string `json:"doc_type"`
	Version  int    `json:"version"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`
}

// InitUpload starts the two-phase upload: it validates the declared intent
// and returns a presigned write URL plus the finalize token.
func InitUpload(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := principalFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		var req initUploadRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		res, err := svc.Init(c.UserContext(), p, service.UploadInit{
			Title:    req.Title,
			DocType:  req.DocType,
			Version:  req.Version,
			FileSize: req.FileSize,
			MimeType: req.MimeType,
		})
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

type completeUploadRequest struct {
	FinalizeToken string `json:"finalize_token"`
	DocUID        string `json:"doc_uid"`
	StoragePath   string `json:"storage_path"`
}

// CompleteUpload redeems the finalize token and registers the document.
func CompleteUpload(svc service.UploadService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := principalFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		var req completeUploadRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}

		res, err := svc.Complete(c.UserContext(), p, service.UploadComplete{
			FinalizeToken: req.FinalizeToken,
			DocUID:        req.DocUID,
			StoragePath:   req.StoragePath,
		}, requestMeta(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}
