package cmd

import (
	"fmt"

	"github.com/bnema/chatsync/internal/adapters/render/inbox"
	"github.com/bnema/chatsync/internal/domain"
	"github.com/spf13/cobra"
)

type contactOutput struct {
	ID          domain.UserID `json:"id"`
	Username    string        `json:"username"`
	UnreadCount int           `json:"unread_count"`
	Online      bool          `json:"online"`
	Open        bool          `json:"open"`
}

type groupOutput struct {
	ID   domain.GroupID `json:"id"`
	Name string         `json:"name"`
	Open bool           `json:"open"`
}

type contactsOutput struct {
	Identity domain.UserID   `json:"identity"`
	Contacts []contactOutput `json:"contacts"`
	Groups   []groupOutput   `json:"groups"`
	Windows  windowsOutput   `json:"windows"`
}

func newContactsCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "contacts",
		Aliases: []string{"inbox"},
		Short:   "Show contacts, groups, unread counts and open windows",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := startSession(cmd, app, asJSON); err != nil {
				return err
			}

			snapshot := inbox.Snapshot{
				Self:     app.engine.Identity(),
				Contacts: app.engine.Directory().Contacts(),
				Groups:   app.engine.Directory().Groups(),
				Windows:  app.engine.Windows().Snapshot(),
			}

			if asJSON {
				return writeJSON(cmd, toContactsOutput(snapshot))
			}

			rendered, err := app.inboxRenderer(snapshot, inbox.RenderOptions{Now: app.now()})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), rendered)
			return err
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func toContactsOutput(snapshot inbox.Snapshot) contactsOutput {
	out := contactsOutput{
		Identity: snapshot.Self.ID,
		Contacts: make([]contactOutput, 0, len(snapshot.Contacts)),
		Groups:   make([]groupOutput, 0, len(snapshot.Groups)),
		Windows:  toWindowsOutput(snapshot.Windows),
	}

	for _, contact := range snapshot.Contacts {
		out.Contacts = append(out.Contacts, contactOutput{
			ID:          contact.ID,
			Username:    contact.Username,
			UnreadCount: contact.UnreadCount,
			Online:      contact.Online,
			Open:        snapshot.Windows.Contains(domain.PrivateThread(contact.ID)),
		})
	}
	for _, group := range snapshot.Groups {
		out.Groups = append(out.Groups, groupOutput{
			ID:   group.ID,
			Name: group.Name,
			Open: snapshot.Windows.Contains(domain.GroupThread(group.ID)),
		})
	}

	return out
}
