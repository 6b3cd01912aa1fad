package cli

import (
	"github.com/spf13/cobra"
)

var joinCmd = &cobra.Command{
	Use:     "join <room>",
	Aliases: []string{"j"},
	Short:   "Join an existing room",
	Long: `Join a room someone else created. You become the call responder:
when the initiator's offer arrives, your side answers it.

Examples:
  videocall join movie-night --name Bob`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCall(false, args[0], flagName)
	},
}

func init() {
	rootCmd.AddCommand(joinCmd)
}
