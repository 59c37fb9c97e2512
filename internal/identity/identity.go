package identity

// Package identity resolves the caller principal behind a bearer credential.
// Resolution happens fresh on every protected request: there is no cache and
// no local session store, the identity provider is consulted each time.

import (
	"context"
	"errors"
	"strings"

	"recordsapi/internal/model"
	"recordsapi/internal/repository"
)

// ErrUnauthenticated is returned for absent, malformed, or rejected credentials.
var ErrUnauthenticated = errors.New("unauthenticated")

const bearerScheme = "bearer "

// Verifier validates a bearer token with the identity provider and returns
// the verified user ID.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// Resolver turns an Authorization header into a Principal.
type Resolver struct {
	verifier Verifier
	profiles repository.ProfileRepository
}

// NewResolver constructs a Resolver with its two collaborators.
func NewResolver(verifier Verifier, profiles repository.ProfileRepository) *Resolver {
	return &Resolver{verifier: verifier, profiles: profiles}
}

// Resolve validates the Authorization header value and returns the backing
// principal. A missing or unreadable role record does not fail the request:
// the caller is assigned the lowest-privilege role instead. Privilege can
// only ever fall back downward, never upward.
func (r *Resolver) Resolve(ctx context.Context, authHeader string) (*model.Principal, error) {
	if !strings.HasPrefix(strings.ToLower(authHeader), bearerScheme) {
		return nil, ErrUnauthenticated
	}
	tok := strings.TrimSpace(authHeader[len(bearerScheme):])
	if tok == "" {
		return nil, ErrUnauthenticated
	}

	userID, err := r.verifier.Verify(ctx, tok)
	if err != nil || userID == "" {
		return nil, ErrUnauthenticated
	}

	role, err := r.profiles.RoleByUserID(ctx, userID)
	if err != nil || role == "" {
		role = model.RoleStaff
	}

	return &model.Principal{UserID: userID, Role: role}, nil
}
