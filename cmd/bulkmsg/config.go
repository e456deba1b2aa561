package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration commands",
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("Configuration is valid")
	fmt.Printf("  API base URL: %s\n", cfg.API.BaseURL)
	fmt.Printf("  API token: %v\n", cfg.API.Token != "")
	fmt.Printf("  Timeout: %s\n", cfg.API.Timeout)
	fmt.Printf("  Preview limit: %d\n", cfg.API.PreviewLimit)
	fmt.Printf("  Session path: %s\n", cfg.Session.Path)
	fmt.Printf("  Poll interval: %s\n", cfg.Monitor.PollInterval)
	fmt.Printf("  Listen address: %s\n", cfg.Server.ListenAddr)

	return nil
}
