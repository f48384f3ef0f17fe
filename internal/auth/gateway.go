package auth

import (
	"context"

	"quizhub-service/internal/domain"
)

// IdentityGateway is the boundary to the external authentication service.
// Implementations own credential checking and session issuance; the
// application only consumes the opaque identity.
type IdentityGateway interface {
	SignUp(ctx context.Context, email, password string) (domain.Identity, error)
	SignIn(ctx context.Context, email, password string) (domain.Identity, error)
	// SignInWithOAuth exchanges a provider-issued credential for a gateway
	// identity. A rejected or abandoned flow yields domain.ErrAuthFailure.
	SignInWithOAuth(ctx context.Context, provider, providerToken string) (domain.Identity, error)
	SignOut(ctx context.Context) error
	// DeleteAccount removes a gateway account; used to compensate when the
	// record-store sync fails right after sign-up.
	DeleteAccount(ctx context.Context, identityID string) error
	// OnIdentityChange registers a handler invoked with the identity on
	// sign-in and nil on sign-out. The returned func unregisters it.
	OnIdentityChange(handler func(*domain.Identity)) func()
}
