package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/example/finq/internal/ctxutil"
	"github.com/example/finq/internal/ports/secondary"
)

func TestSessionIdentityProvider(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		ctxOwner   string
		wantUser   string
		wantErr    error
	}{
		{name: "configured user", configured: "user-1", wantUser: "user-1"},
		{name: "context overrides configured user", configured: "user-1", ctxOwner: "user-2", wantUser: "user-2"},
		{name: "context only", ctxOwner: "user-2", wantUser: "user-2"},
		{name: "signed out", wantErr: secondary.ErrAuthRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewSessionIdentityProvider(tt.configured)
			ctx := context.Background()
			if tt.ctxOwner != "" {
				ctx = ctxutil.WithOwnerID(ctx, tt.ctxOwner)
			}

			identity, err := p.GetCurrentIdentity(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if identity.UserID != tt.wantUser {
				t.Errorf("UserID = %q, want %q", identity.UserID, tt.wantUser)
			}
		})
	}
}
