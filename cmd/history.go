package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/chatsync/internal/adapters/render/inbox"
	"github.com/bnema/chatsync/internal/domain"
	"github.com/spf13/cobra"
)

func newHistoryCmd(app *app) *cobra.Command {
	var flags threadFlags
	var asJSON bool
	var markSeen bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Fetch and display the history of one thread",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := flags.key()
			if err != nil {
				return err
			}

			identity, err := requireIdentity(cmd, app, asJSON)
			if err != nil {
				return err
			}

			if err := app.engine.LoadHistory(cmd.Context(), key); err != nil {
				if !errors.Is(err, domain.ErrFetchFailed) {
					return err
				}
				app.logger.Warn().Err(err).Str("thread", key.String()).Msg("history unavailable")
			}
			if markSeen {
				if err := app.engine.MarkSeen(key); err != nil {
					return err
				}
			}

			messages := app.engine.Threads().Messages(key)
			if asJSON {
				return writeJSON(cmd, toMessagesOutput(messages))
			}

			rendered, err := app.threadRenderer(inbox.ThreadView{
				Key:      key,
				Title:    threadTitle(app, key),
				Self:     identity.ID,
				Messages: messages,
				Names:    inbox.ContactNames(app.engine.Directory().Contacts()),
			}, inbox.RenderOptions{Now: app.now()})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	flags.bind(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")
	cmd.Flags().BoolVar(&markSeen, "mark-seen", false, "Reset the unread count of a private thread")

	return cmd
}

func threadTitle(app *app, key domain.ThreadKey) string {
	switch key.Kind {
	case domain.ThreadPrivate:
		if contact, ok := app.engine.Directory().Contact(key.UserID()); ok {
			return contact.DisplayName()
		}
	case domain.ThreadGroup:
		for _, group := range app.engine.Directory().Groups() {
			if group.ID == key.GroupID() && group.Name != "" {
				return group.Name
			}
		}
	}

	return key.String()
}
