package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"recordsapi/internal/service"
)

type resolveRequest struct {
	Payload string `json:"payload"`
}

// ResolveCode decodes a presented lookup code into the document's metadata
// projection. All failures look alike to the caller.
func ResolveCode(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := principalFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		var req resolveRequest
		if err := c.BodyParser(&req); err != nil || req.Payload == "" {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
		}

		view, err := svc.ResolveCode(c.UserContext(), p, req.Payload, requestMeta(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"document": view})
	}
}

// DownloadDocument returns a short-lived signed retrieval URL. The version
// query parameter is optional: a request without it deliberately addresses
// the newest stored version, not version 1, so a bare document link keeps
// pointing at the current revision after a re-upload.
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := principalFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		version := 0
		if v := c.Query("version"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return writeError(c, fiber.StatusBadRequest, "INVALID_VERSION", "version must be a positive integer")
			}
			version = n
		}

		ref, err := svc.RetrievalRef(c.UserContext(), p, c.Params("docUid"), version, requestMeta(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(ref)
	}
}

type generateCodeRequest struct {
	DocUID  string `json:"doc_uid"`
	Version int    `json:"version"`
}

// GenerateCode builds a lookup code for a document the caller may read.
func GenerateCode(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := principalFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		var req generateCodeRequest
		if err := c.BodyParser(&req); err != nil || req.DocUID == "" {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "doc_uid is required")
		}

		res, err := svc.GenerateCode(c.UserContext(), p, req.DocUID, req.Version, requestMeta(c))
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}

// DeleteDocument removes a document and its stored object.
func DeleteDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := principalFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		docUID := c.Params("docUid")
		if err := svc.Delete(c.UserContext(), p, docUID, requestMeta(c)); err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(fiber.Map{"ok": true, "doc_uid": docUID})
	}
}

// ListMine returns the recent documents the caller may read, with their
// recent audit events.
func ListMine(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, ok := principalFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}

		res, err := svc.ListMine(c.UserContext(), p)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(res)
	}
}
