package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bnema/chatsync/internal/domain"
	"github.com/spf13/cobra"
)

var errNotSignedIn = errors.New("not signed in: set api.session_token or api.session_secret_ref")

// threadFlags binds --user/--group; exactly one must be set.
type threadFlags struct {
	user  int64
	group int64
}

func (f *threadFlags) bind(cmd *cobra.Command) {
	cmd.Flags().Int64Var(&f.user, "user", 0, "Private thread with this user id")
	cmd.Flags().Int64Var(&f.group, "group", 0, "Group thread with this group id")
	cmd.MarkFlagsMutuallyExclusive("user", "group")
	cmd.MarkFlagsOneRequired("user", "group")
}

func (f threadFlags) key() (domain.ThreadKey, error) {
	var key domain.ThreadKey
	if f.user != 0 {
		key = domain.PrivateThread(domain.UserID(f.user))
	} else {
		key = domain.GroupThread(domain.GroupID(f.group))
	}

	if err := key.Validate(); err != nil {
		return domain.ThreadKey{}, err
	}
	return key, nil
}

// startSession brings the engine up, behind a spinner unless quiet.
func startSession(cmd *cobra.Command, app *app, quiet bool) error {
	start := func(ctx context.Context) error {
		return app.engine.Start(ctx)
	}

	var err error
	if quiet {
		err = start(cmd.Context())
	} else {
		err = runSyncSpinner(cmd.Context(), cmd.ErrOrStderr(), "Syncing conversations...", start)
	}
	if err != nil {
		return err
	}

	return nil
}

// requireIdentity starts the session and fails when no identity resolves.
func requireIdentity(cmd *cobra.Command, app *app, quiet bool) (domain.Identity, error) {
	if err := startSession(cmd, app, quiet); err != nil {
		return domain.Identity{}, err
	}

	identity := app.engine.Identity()
	if !identity.Known() {
		return domain.Identity{}, errNotSignedIn
	}
	return identity, nil
}

func writeJSON(cmd *cobra.Command, value any) error {
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json output: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
	return err
}

type windowsOutput struct {
	Private []domain.UserID  `json:"private"`
	Groups  []domain.GroupID `json:"groups"`
}

func toWindowsOutput(windows domain.OpenWindows) windowsOutput {
	out := windowsOutput{Private: []domain.UserID{}, Groups: []domain.GroupID{}}
	out.Private = append(out.Private, windows.Private...)
	out.Groups = append(out.Groups, windows.Groups...)
	return out
}

type messageOutput struct {
	ID         domain.MessageID `json:"id,omitempty"`
	SenderID   domain.UserID    `json:"sender_id"`
	ReceiverID domain.UserID    `json:"receiver_id,omitempty"`
	GroupID    domain.GroupID   `json:"group_id,omitempty"`
	SenderName string           `json:"sender_name,omitempty"`
	Content    string           `json:"content"`
	CreatedAt  int64            `json:"created_at"`
}

func toMessagesOutput(messages []domain.Message) []messageOutput {
	out := make([]messageOutput, 0, len(messages))
	for _, message := range messages {
		out = append(out, messageOutput{
			ID:         message.ID,
			SenderID:   message.SenderID,
			ReceiverID: message.ReceiverID,
			GroupID:    message.GroupID,
			SenderName: message.SenderName,
			Content:    message.Content,
			CreatedAt:  message.CreatedAt,
		})
	}
	return out
}
