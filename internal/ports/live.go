package ports

import (
	"context"

	"github.com/bnema/chatsync/internal/domain"
)

type FrameHandler func(ctx context.Context, frame domain.LiveFrame)

// LiveTransport delivers live frames in arrival order until ctx is done.
// A dropped connection is reported as a domain.FrameDisconnect frame.
type LiveTransport interface {
	Run(ctx context.Context, handle FrameHandler) error
}
