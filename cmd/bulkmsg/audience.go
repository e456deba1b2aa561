package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bingotables/bulkmsg/internal/audience"
	"github.com/bingotables/bulkmsg/internal/console"
	"github.com/bingotables/bulkmsg/internal/selection"
)

var audienceCmd = &cobra.Command{
	Use:   "audience",
	Short: "Build the campaign audience",
}

var audienceSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set audience filter dimensions",
	Long: `Set audience filter dimensions. Changing the province clears canton and
neighborhoods; changing the canton clears neighborhoods.`,
	Args: cobra.NoArgs,
	RunE: withSession(runAudienceSet),
}

var audienceShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the audience filter and selection counts",
	Args:  cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, args []string, a *app) error {
		printFilter(a.console.Filter())
		set := a.console.Selection()
		fmt.Printf("Candidates: %d  Excluded: %d  Active: %d\n", set.Len(), len(set.Excluded()), len(set.ActiveIDs()))
		return nil
	}),
}

var audienceClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear filter, candidates and exclusions",
	Args:  cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, args []string, a *app) error {
		a.console.ClearAudience()
		fmt.Println("Audience cleared")
		return a.save()
	}),
}

var audiencePreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Fetch the candidates matching the filter",
	Args:  cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, args []string, a *app) error {
		if _, err := a.console.Preview(cmd.Context()); err != nil {
			return reported(err)
		}
		if err := a.save(); err != nil {
			return err
		}
		printRows(a.console.Rows(1))
		return nil
	}),
}

var audienceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List candidates page by page",
	Args:  cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, args []string, a *app) error {
		page, _ := cmd.Flags().GetInt("page")
		printRows(a.console.Rows(page))
		return nil
	}),
}

var audienceExcludeCmd = &cobra.Command{
	Use:   "exclude <id>...",
	Short: "Exclude candidates from the campaign",
	Args:  cobra.MinimumNArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, a *app) error {
		return applyIDs(a, args, func(set *selection.Set, id int64) (string, bool) {
			return "excluded", set.Exclude(id)
		})
	}),
}

var audienceIncludeCmd = &cobra.Command{
	Use:   "include <id>...",
	Short: "Include excluded candidates again",
	Args:  cobra.MinimumNArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, a *app) error {
		return applyIDs(a, args, func(set *selection.Set, id int64) (string, bool) {
			return "included", set.Include(id)
		})
	}),
}

var audienceToggleCmd = &cobra.Command{
	Use:   "toggle <id>...",
	Short: "Flip the exclusion of candidates",
	Args:  cobra.MinimumNArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, a *app) error {
		return applyIDs(a, args, func(set *selection.Set, id int64) (string, bool) {
			excluded, ok := set.Toggle(id)
			if excluded {
				return "excluded", ok
			}
			return "included", ok
		})
	}),
}

var audienceExcludeAllCmd = &cobra.Command{
	Use:   "exclude-all",
	Short: "Exclude every candidate",
	Args:  cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, args []string, a *app) error {
		a.console.Selection().ExcludeAll()
		fmt.Printf("Excluded %d candidates\n", a.console.Selection().Len())
		return a.save()
	}),
}

var audienceIncludeAllCmd = &cobra.Command{
	Use:   "include-all",
	Short: "Clear every exclusion",
	Args:  cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, args []string, a *app) error {
		a.console.Selection().IncludeAll()
		fmt.Printf("Included %d candidates\n", a.console.Selection().Len())
		return a.save()
	}),
}

func init() {
	audienceSetCmd.Flags().String("province", "", "Province ID (empty clears)")
	audienceSetCmd.Flags().String("canton", "", "Canton ID (empty clears)")
	audienceSetCmd.Flags().StringSlice("barrio", nil, "Neighborhood IDs")
	audienceSetCmd.Flags().String("from", "", "Registered from (YYYY-MM-DD)")
	audienceSetCmd.Flags().String("to", "", "Registered to (YYYY-MM-DD)")

	audienceListCmd.Flags().IntP("page", "p", 1, "Page number")

	audienceCmd.AddCommand(audienceSetCmd)
	audienceCmd.AddCommand(audienceShowCmd)
	audienceCmd.AddCommand(audienceClearCmd)
	audienceCmd.AddCommand(audiencePreviewCmd)
	audienceCmd.AddCommand(audienceListCmd)
	audienceCmd.AddCommand(audienceExcludeCmd)
	audienceCmd.AddCommand(audienceIncludeCmd)
	audienceCmd.AddCommand(audienceToggleCmd)
	audienceCmd.AddCommand(audienceExcludeAllCmd)
	audienceCmd.AddCommand(audienceIncludeAllCmd)
}

// withSession runs fn with the current session loaded
func withSession(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(os.Stderr, true)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd, args, a)
	}
}

func runAudienceSet(cmd *cobra.Command, args []string, a *app) error {
	ctx := cmd.Context()
	flags := cmd.Flags()

	if flags.Changed("province") {
		id, _ := flags.GetString("province")
		cantons, err := a.console.SelectProvince(ctx, id)
		if err != nil {
			return reported(err)
		}
		if !flags.Changed("canton") && len(cantons) > 0 {
			fmt.Println("Cantons:")
			printLocations(cantons)
		}
	}
	if flags.Changed("canton") {
		id, _ := flags.GetString("canton")
		barrios, err := a.console.SelectCanton(ctx, id)
		if err != nil {
			return reported(err)
		}
		if !flags.Changed("barrio") && len(barrios) > 0 {
			fmt.Println("Neighborhoods:")
			printLocations(barrios)
		}
	}
	if flags.Changed("barrio") {
		ids, _ := flags.GetStringSlice("barrio")
		if err := a.console.SelectNeighborhoods(ids); err != nil {
			return reported(err)
		}
	}
	if flags.Changed("from") || flags.Changed("to") {
		f := a.console.Filter()
		from, to := f.RegisteredFrom, f.RegisteredTo
		var err error
		if flags.Changed("from") {
			v, _ := flags.GetString("from")
			if from, err = audience.ParseDate(v); err != nil {
				return fmt.Errorf("invalid --from: %w", err)
			}
		}
		if flags.Changed("to") {
			v, _ := flags.GetString("to")
			if to, err = audience.ParseDate(v); err != nil {
				return fmt.Errorf("invalid --to: %w", err)
			}
		}
		if err := a.console.SetRegisteredRange(from, to); err != nil {
			return reported(err)
		}
	}

	if err := a.save(); err != nil {
		return err
	}
	printFilter(a.console.Filter())
	return nil
}

func applyIDs(a *app, args []string, fn func(*selection.Set, int64) (string, bool)) error {
	set := a.console.Selection()
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id %q", arg)
		}
		state, ok := fn(set, id)
		if !ok {
			fmt.Printf("%d: not a candidate\n", id)
			continue
		}
		fmt.Printf("%d: %s\n", id, state)
	}
	fmt.Printf("Active: %d of %d\n", len(set.ActiveIDs()), set.Len())
	return a.save()
}

func printFilter(f audience.Filter) {
	p := f.Payload()
	show := func(v string) string {
		if v == "" {
			return "-"
		}
		return v
	}
	fmt.Printf("Province:      %s\n", show(p.ProvinceID))
	fmt.Printf("Canton:        %s\n", show(p.CantonID))
	fmt.Printf("Neighborhoods: %v\n", p.BarrioIDs)
	fmt.Printf("Registered:    %s .. %s\n", show(p.RegisteredFrom), show(p.RegisteredTo))
}

func printRows(page selection.Page[console.Row]) {
	if page.Total == 0 {
		fmt.Println("No candidates")
		return
	}
	fmt.Printf("%-3s %-8s  %-28s  %-12s  %-20s  %s\n", "", "ID", "Name", "Phone", "Barrio", "Table")
	for _, r := range page.Items {
		mark := "[x]"
		if r.Excluded {
			mark = "[ ]"
		}
		fmt.Printf("%-3s %-8d  %-28s  %-12s  %-20s  %s\n", mark, r.ID, r.FullName(), r.Phone, r.Neighborhood, r.TableCode)
	}
	fmt.Printf("Page %d of %d (%d candidates)\n", page.Number, page.Pages, page.Total)
}
