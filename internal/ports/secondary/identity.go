package secondary

import "context"

// IdentityProvider defines the secondary port for the authenticated session.
type IdentityProvider interface {
	// GetCurrentIdentity returns the signed-in identity, or ErrAuthRequired.
	GetCurrentIdentity(ctx context.Context) (*Identity, error)
}

// Identity is the authenticated user as provided by the secondary port.
type Identity struct {
	UserID string
}
