package application

import (
	"context"
	"fmt"

	"github.com/bnema/chatsync/internal/domain"
	"github.com/rs/zerolog"
)

// Router applies live events to the directory and the thread store in
// arrival order. It buffers nothing.
type Router struct {
	directory *Directory
	threads   *ThreadStore
	logger    zerolog.Logger
}

func NewRouter(directory *Directory, threads *ThreadStore, opts ...Option) *Router {
	o := buildOptions(opts)

	return &Router{
		directory: directory,
		threads:   threads,
		logger:    o.logger.With().Str("component", "router").Logger(),
	}
}

// HandleFrame decodes and routes one frame. Rejected frames leave every
// collection untouched.
func (r *Router) HandleFrame(ctx context.Context, frame domain.LiveFrame) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	event, err := DecodeEvent(frame)
	if err != nil {
		r.logger.Warn().Err(err).Str("event", frame.Type).Msg("live frame rejected")
		return err
	}
	if event == nil {
		r.logger.Trace().Str("event", frame.Type).Msg("live frame ignored")
		return nil
	}

	return r.Route(event)
}

func (r *Router) Route(event Event) error {
	switch e := event.(type) {
	case PrivateMessageEvent:
		return r.appendMessage(e.Message)
	case GroupMessageEvent:
		return r.appendMessage(e.Message)
	case PresenceBulkEvent:
		r.directory.SetBulkPresence(e.Online)
	case PresenceDeltaEvent:
		r.directory.SetPresence(e.UserID, e.Online)
	case UnreadSignalEvent:
		r.directory.IncrementUnread(e.SenderID)
	case DisconnectEvent:
		r.directory.ClearAllPresence()
	default:
		return fmt.Errorf("%w: %T", domain.ErrUnknownEvent, event)
	}

	r.logger.Debug().Str("event", event.Kind()).Msg("live event routed")
	return nil
}

func (r *Router) appendMessage(message domain.Message) error {
	added, err := r.threads.Append(message)
	if err != nil {
		r.logger.Warn().Err(err).Str("message_id", string(message.ID)).Msg("live message dropped")
		return fmt.Errorf("route message %s: %w", message.ID, err)
	}

	r.logger.Debug().
		Str("message_id", string(message.ID)).
		Bool("duplicate", !added).
		Msg("live message routed")
	return nil
}
