package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newWindowsCmd(app *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "windows",
		Short: "Manage the persisted set of open chat windows",
	}

	cmd.AddCommand(
		newWindowsListCmd(app),
		newWindowsOpenCmd(app),
		newWindowsCloseCmd(app),
		newWindowsForgetCmd(app),
	)

	return cmd
}

func newWindowsListCmd(app *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the chat windows restored for the current identity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := requireIdentity(cmd, app, asJSON); err != nil {
				return err
			}

			windows := app.engine.Windows().Snapshot()
			if asJSON {
				return writeJSON(cmd, toWindowsOutput(windows))
			}

			if windows.Len() == 0 {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), "no open windows")
				return err
			}
			for _, key := range windows.Keys() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), key.String()); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Render JSON output")

	return cmd
}

func newWindowsOpenCmd(app *app) *cobra.Command {
	var flags threadFlags

	cmd := &cobra.Command{
		Use:   "open",
		Short: "Open a chat window and load its history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := flags.key()
			if err != nil {
				return err
			}
			if _, err := requireIdentity(cmd, app, true); err != nil {
				return err
			}

			if err := app.engine.Open(cmd.Context(), key); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "opened %s (%d messages)\n", key, len(app.engine.Threads().Messages(key)))
			return err
		},
	}

	flags.bind(cmd)

	return cmd
}

func newWindowsCloseCmd(app *app) *cobra.Command {
	var flags threadFlags

	cmd := &cobra.Command{
		Use:   "close",
		Short: "Close a chat window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := flags.key()
			if err != nil {
				return err
			}
			if _, err := requireIdentity(cmd, app, true); err != nil {
				return err
			}

			if err := app.engine.Close(cmd.Context(), key); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "closed %s\n", key)
			return err
		},
	}

	flags.bind(cmd)

	return cmd
}

func newWindowsForgetCmd(app *app) *cobra.Command {
	return &cobra.Command{
		Use:   "forget",
		Short: "Close every window and delete the persisted window lists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			identity, err := requireIdentity(cmd, app, true)
			if err != nil {
				return err
			}

			if err := app.engine.Windows().Forget(cmd.Context()); err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "forgot windows of user %s\n", identity.ID)
			return err
		},
	}
}
