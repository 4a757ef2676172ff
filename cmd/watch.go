package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/bnema/chatsync/internal/domain"
	"github.com/spf13/cobra"
)

func newWatchCmd(app *app) *cobra.Command {
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow live pushes and print every change until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			cmd.SetContext(ctx)
			if _, err := requireIdentity(cmd, app, true); err != nil {
				return err
			}

			transport, err := app.newTransport()
			if err != nil {
				return fmt.Errorf("wire live transport: %w", err)
			}

			printer := &changePrinter{out: cmd.OutOrStdout(), app: app}
			unsubscribe := printer.subscribe()
			defer unsubscribe()

			printer.printf("watching as user %s (%d open windows)", app.engine.Identity().ID, app.engine.Windows().Snapshot().Len())

			err = app.engine.Run(ctx, transport)
			if err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&duration, "for", 0, "Stop after this long (default: until interrupted)")

	return cmd
}

// changePrinter writes one line per observed change. Listeners may fire
// from the transport goroutine, so writes are serialised.
type changePrinter struct {
	mu  sync.Mutex
	out io.Writer
	app *app
}

func (p *changePrinter) subscribe() func() {
	unsubscribers := []func(){
		p.app.engine.Threads().Subscribe(p.threadChanged),
		p.app.engine.Directory().Subscribe(p.directoryChanged),
		p.app.engine.Windows().Subscribe(p.windowsChanged),
	}

	return func() {
		for _, unsubscribe := range unsubscribers {
			unsubscribe()
		}
	}
}

func (p *changePrinter) threadChanged(key domain.ThreadKey) {
	messages := p.app.engine.Threads().Messages(key)
	if len(messages) == 0 {
		return
	}

	last := messages[len(messages)-1]
	sender := last.SenderName
	if sender == "" {
		sender = "user " + last.SenderID.String()
		if contact, ok := p.app.engine.Directory().Contact(last.SenderID); ok {
			sender = contact.DisplayName()
		}
	}
	p.printf("message %s %s: %s", key, sender, last.Content)
}

func (p *changePrinter) directoryChanged() {
	online, unread := 0, 0
	for _, contact := range p.app.engine.Directory().Contacts() {
		if contact.Online {
			online++
		}
		unread += contact.UnreadCount
	}
	p.printf("directory online=%d unread=%d", online, unread)
}

func (p *changePrinter) windowsChanged(windows domain.OpenWindows) {
	p.printf("windows open=%d", windows.Len())
}

func (p *changePrinter) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()

	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}
