package handler

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"

	"recordsapi/internal/service"
)

// retentionSecretHeader authenticates the scheduled retention job caller.
const retentionSecretHeader = "X-Retention-Secret"

func retentionAuthorized(c *fiber.Ctx, secret string) bool {
	got := c.Get(retentionSecretHeader)
	return secret != "" && subtle.ConstantTimeCompare([]byte(got), []byte(secret)) == 1
}

// RetentionRun flags documents approaching their disposal due date for
// review. It never deletes anything.
func RetentionRun(svc service.DocumentService, secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !retentionAuthorized(c, secret) {
			return fiber.ErrUnauthorized
		}

		sum, err := svc.RetentionReview(c.UserContext())
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(sum)
	}
}

// DeleteApproved is the disposal execution endpoint. Automated deletion
// requires a dual-control approval workflow that does not exist yet, so the
// endpoint answers 501 rather than silently doing nothing.
func DeleteApproved(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !retentionAuthorized(c, secret) {
			return fiber.ErrUnauthorized
		}
		return fiber.ErrNotImplemented
	}
}
