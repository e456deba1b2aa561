package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bingotables/bulkmsg/internal/models"
)

var locationsCmd = &cobra.Command{
	Use:   "locations",
	Short: "List location filter options",
}

var locationsProvincesCmd = &cobra.Command{
	Use:   "provinces",
	Short: "List provinces",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLocations(cmd.Context(), func(ctx context.Context, a *app) ([]models.Location, error) {
			return a.client.Provinces(ctx)
		})
	},
}

var locationsCantonsCmd = &cobra.Command{
	Use:   "cantons <province-id>",
	Short: "List cantons of a province",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLocations(cmd.Context(), func(ctx context.Context, a *app) ([]models.Location, error) {
			return a.client.Cantons(ctx, args[0])
		})
	},
}

var locationsBarriosCmd = &cobra.Command{
	Use:   "barrios <canton-id>",
	Short: "List neighborhoods of a canton",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLocations(cmd.Context(), func(ctx context.Context, a *app) ([]models.Location, error) {
			return a.client.Neighborhoods(ctx, args[0])
		})
	},
}

func init() {
	locationsCmd.AddCommand(locationsProvincesCmd)
	locationsCmd.AddCommand(locationsCantonsCmd)
	locationsCmd.AddCommand(locationsBarriosCmd)
}

func runLocations(ctx context.Context, list func(context.Context, *app) ([]models.Location, error)) error {
	a, err := newApp(os.Stderr, false)
	if err != nil {
		return err
	}
	defer a.close()

	locs, err := list(ctx, a)
	if err != nil {
		return err
	}
	printLocations(locs)
	return nil
}

func printLocations(locs []models.Location) {
	if len(locs) == 0 {
		fmt.Println("No options")
		return
	}
	fmt.Printf("%-10s  %s\n", "ID", "Name")
	for _, l := range locs {
		fmt.Printf("%-10s  %s\n", l.ID, l.Name)
	}
}
