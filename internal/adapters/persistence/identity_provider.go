package persistence

import (
	"context"

	"github.com/example/finq/internal/ctxutil"
	"github.com/example/finq/internal/ports/secondary"
)

// SessionIdentityProvider resolves the signed-in user from the configured
// session. A user ID carried on the context takes precedence.
type SessionIdentityProvider struct {
	userID string
}

// NewSessionIdentityProvider creates a provider for the configured session.
// An empty userID means nobody is signed in.
func NewSessionIdentityProvider(userID string) *SessionIdentityProvider {
	return &SessionIdentityProvider{userID: userID}
}

// GetCurrentIdentity returns the identity of the signed-in user.
func (p *SessionIdentityProvider) GetCurrentIdentity(ctx context.Context) (*secondary.Identity, error) {
	userID := ctxutil.OwnerFromContext(ctx)
	if userID == "" {
		userID = p.userID
	}
	if userID == "" {
		return nil, secondary.ErrAuthRequired
	}

	return &secondary.Identity{UserID: userID}, nil
}

// Ensure SessionIdentityProvider implements the interface
var _ secondary.IdentityProvider = (*SessionIdentityProvider)(nil)
