package ports

import (
	"context"

	"github.com/bnema/chatsync/internal/domain"
)

type HistoryFetcher interface {
	FetchSummary(ctx context.Context) (domain.Summary, error)
	FetchHistory(ctx context.Context, key domain.ThreadKey) ([]domain.Message, error)
}
