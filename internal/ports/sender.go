package ports

import (
	"context"

	"github.com/bnema/chatsync/internal/domain"
)

type MessageSender interface {
	Send(ctx context.Context, key domain.ThreadKey, content string) error
}
