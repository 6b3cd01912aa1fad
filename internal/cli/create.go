package cli

import (
	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:     "create <room>",
	Aliases: []string{"c"},
	Short:   "Create a room and wait for someone to join",
	Long: `Create a named room on the signaling server. You become the call
initiator: once a second peer joins, your side sends the offer.

Examples:
  videocall create movie-night --name Alice
  videocall create standup --name Bob --server signal.example.com --secure`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCall(true, args[0], flagName)
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}
