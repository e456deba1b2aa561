package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bingotables/bulkmsg/internal/session"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored authoring sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored sessions",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		list, err := store.List()
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No sessions")
			return nil
		}
		fmt.Printf("%-16s  %-36s  %-10s  %-8s  %s\n", "Name", "Draft", "Candidates", "Excluded", "Updated")
		for _, s := range list {
			fmt.Printf("%-16s  %-36s  %-10d  %-8d  %s\n", s.Name, s.DraftID, s.Candidates, s.Excluded, s.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(args[0]); err != nil {
			return err
		}
		fmt.Printf("Session %s deleted\n", args[0])
		return nil
	},
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
}

func openStore() (*session.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cfg, os.Stderr)
	logger.Debug("opening session store", "path", cfg.Session.Path)
	return session.Open(cfg.Session.Path)
}
