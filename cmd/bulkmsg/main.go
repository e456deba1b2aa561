package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bingotables/bulkmsg/internal/session"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var (
	configFile  string
	sessionName string
)

var rootCmd = &cobra.Command{
	Use:           "bulkmsg",
	Short:         "bulkmsg - bulk WhatsApp campaign console",
	Long:          `bulkmsg builds campaign audiences, previews personalized messages and controls campaigns on the bulk messaging API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bulkmsg %s (built %s)\n", version, buildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file (default: environment only)")
	rootCmd.PersistentFlags().StringVarP(&sessionName, "session", "s", session.DefaultName, "Authoring session name")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(locationsCmd)
	rootCmd.AddCommand(audienceCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(campaignsCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		// errors from the console were already shown as notifications
		var r reportedError
		if !errors.As(err, &r) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
