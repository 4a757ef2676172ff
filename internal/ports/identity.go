package ports

import (
	"context"

	"github.com/bnema/chatsync/internal/domain"
)

// IdentityProvider resolves the authenticated actor. An unauthenticated
// session yields the zero Identity and a nil error.
type IdentityProvider interface {
	CurrentIdentity(ctx context.Context) (domain.Identity, error)
}
