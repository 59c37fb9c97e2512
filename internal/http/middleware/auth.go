package middleware

import (
	"github.com/gofiber/fiber/v2"

	"recordsapi/internal/identity"
	"recordsapi/internal/model"
)

// PrincipalLocalKey is the key under which the authenticated principal is
// stored in Fiber's context locals.
const PrincipalLocalKey = "principal"

// Authenticate resolves the Authorization header into a principal and stores
// it in the request locals. Requests that cannot be resolved get 401.
func Authenticate(resolver *identity.Resolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		p, err := resolver.Resolve(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return fiber.ErrUnauthorized
		}

		c.Locals(PrincipalLocalKey, p)
		return c.Next()
	}
}

// PrincipalFromCtx returns the principal stored by Authenticate, if any.
func PrincipalFromCtx(c *fiber.Ctx) (*model.Principal, bool) {
	p, ok := c.Locals(PrincipalLocalKey).(*model.Principal)
	return p, ok
}
