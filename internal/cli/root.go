package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/A-s-w-i-n/webRtc-videoCall/internal/ui"
)

var (
	flagServer string
	flagSTUN   string
	flagSecure bool
	flagName   string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "videocall",
	Short: "Two-party video calls from the terminal using WebRTC",
	Long: `videocall connects exactly two peers through a named room on the
signaling server and negotiates a direct WebRTC media session between
them. One side creates the room, shares its name, and the other joins.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagServer, "server", "s", "", "Signaling server host[:port]")
	rootCmd.PersistentFlags().StringVarP(&flagSTUN, "stun", "t", "", "Custom STUN server")
	rootCmd.PersistentFlags().BoolVar(&flagSecure, "secure", false, "Connect over wss")
	rootCmd.PersistentFlags().StringVarP(&flagName, "name", "n", "", "Your display name")
}
