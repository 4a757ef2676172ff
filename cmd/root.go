package cmd

import "github.com/spf13/cobra"

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "chatsync",
		Short:         "chatsync: keep private and group chat threads in sync from the terminal",
		Long:          "chatsync mirrors a social network's conversations: it loads the contact directory, restores the chat windows you left open, fetches and sends messages, and follows live pushes over a websocket.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	app, err := wireApp()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		rootCmd.AddCommand(newVersionCmd())
		return rootCmd
	}

	rootCmd.PersistentPostRunE = func(_ *cobra.Command, _ []string) error {
		return app.close()
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newContactsCmd(app),
		newHistoryCmd(app),
		newSendCmd(app),
		newWindowsCmd(app),
		newWatchCmd(app),
	)

	return rootCmd
}
