package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSendCmd(app *app) *cobra.Command {
	var flags threadFlags

	cmd := &cobra.Command{
		Use:   "send --user ID|--group ID <message>...",
		Short: "Send a message to a contact or a group",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := flags.key()
			if err != nil {
				return err
			}

			// the backend echoes the message over the live channel
			if err := app.engine.Send(cmd.Context(), key, strings.Join(args, " ")); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "sent to %s\n", key)
			return err
		},
	}

	flags.bind(cmd)

	return cmd
}
