package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bingotables/bulkmsg/internal/campaign"
	"github.com/bingotables/bulkmsg/internal/models"
)

var campaignsCmd = &cobra.Command{
	Use:   "campaigns",
	Short: "Create and control campaigns",
}

var campaignsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns",
	Args:  cobra.NoArgs,
	RunE: withSession(func(cmd *cobra.Command, args []string, a *app) error {
		list, err := a.console.Refresh(cmd.Context())
		if err != nil {
			return reported(err)
		}
		printCampaigns(list)
		return nil
	}),
}

var campaignsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a campaign for the active recipients of the session",
	Args:  cobra.NoArgs,
	RunE:  withSession(runCampaignsCreate),
}

var campaignsStartCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Start a pending campaign",
	Args:  cobra.ExactArgs(1),
	RunE:  campaignAction(campaign.ActionStart),
}

var campaignsPauseCmd = &cobra.Command{
	Use:   "pause <id>",
	Short: "Pause a running campaign",
	Args:  cobra.ExactArgs(1),
	RunE:  campaignAction(campaign.ActionPause),
}

var campaignsResumeCmd = &cobra.Command{
	Use:   "resume <id>",
	Short: "Resume a paused campaign",
	Args:  cobra.ExactArgs(1),
	RunE:  campaignAction(campaign.ActionResume),
}

var campaignsCancelCmd = &cobra.Command{
	Use:   "cancel <id>",
	Short: "Cancel a campaign (cannot be undone)",
	Args:  cobra.ExactArgs(1),
	RunE:  withSession(runCampaignsCancel),
}

var campaignsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a campaign (cannot be undone)",
	Long: `Delete a campaign. The deletion has to be confirmed and then the word
` + campaign.DeleteToken + ` typed exactly, interactively or with --confirm.`,
	Args: cobra.ExactArgs(1),
	RunE: withSession(runCampaignsDelete),
}

var campaignsDetailCmd = &cobra.Command{
	Use:   "detail <id>",
	Short: "Show delivery statistics and logs of a campaign",
	Args:  cobra.ExactArgs(1),
	RunE:  withSession(runCampaignsDetail),
}

var campaignsExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export the delivery report of a campaign to XLSX",
	Args:  cobra.ExactArgs(1),
	RunE: withSession(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseCampaignID(args[0])
		if err != nil {
			return err
		}
		dir, _ := cmd.Flags().GetString("out")
		path, err := a.console.Export(cmd.Context(), id, dir, time.Now())
		if err != nil {
			return reported(err)
		}
		fmt.Println(path)
		return nil
	}),
}

func init() {
	campaignsCreateCmd.Flags().String("name", "", "Campaign name")
	campaignsCreateCmd.Flags().StringP("message", "m", "", "Message template")
	campaignsCreateCmd.Flags().String("message-file", "", "Read the message template from a file")
	campaignsCreateCmd.Flags().Int("interval", 0, "Minutes between messages (default from config)")
	campaignsCreateCmd.Flags().Int("max-per-hour", 0, "Maximum messages per hour (default from config)")
	campaignsCreateCmd.Flags().String("image", "", "Image to attach")
	campaignsCreateCmd.Flags().Bool("no-image", false, "Drop the image attached to the session")

	campaignsCancelCmd.Flags().BoolP("yes", "y", false, "Confirm cancellation without prompting")
	campaignsDeleteCmd.Flags().String("confirm", "", "Confirmation word, must be "+campaign.DeleteToken)
	campaignsDetailCmd.Flags().Int("logs", 20, "Number of log entries to show (0 = all)")
	campaignsExportCmd.Flags().StringP("out", "o", ".", "Output directory")

	campaignsCmd.AddCommand(campaignsListCmd)
	campaignsCmd.AddCommand(campaignsCreateCmd)
	campaignsCmd.AddCommand(campaignsStartCmd)
	campaignsCmd.AddCommand(campaignsPauseCmd)
	campaignsCmd.AddCommand(campaignsResumeCmd)
	campaignsCmd.AddCommand(campaignsCancelCmd)
	campaignsCmd.AddCommand(campaignsDeleteCmd)
	campaignsCmd.AddCommand(campaignsDetailCmd)
	campaignsCmd.AddCommand(campaignsExportCmd)
}

func parseCampaignID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid campaign id %q", s)
	}
	return id, nil
}

func runCampaignsCreate(cmd *cobra.Command, args []string, a *app) error {
	flags := cmd.Flags()
	if flags.Changed("name") {
		v, _ := flags.GetString("name")
		a.console.SetName(v)
	}
	msg, ok, err := messageFromFlags(cmd, "message", "message-file")
	if err != nil {
		return err
	}
	if ok {
		a.console.SetMessage(msg)
	}
	interval, _ := flags.GetInt("interval")
	perHour, _ := flags.GetInt("max-per-hour")
	a.console.SetSchedule(interval, perHour)

	if noImage, _ := flags.GetBool("no-image"); noImage {
		a.console.ClearImage()
	}
	if flags.Changed("image") {
		path, _ := flags.GetString("image")
		if err := a.console.AttachImage(path); err != nil {
			return reported(err)
		}
	}

	// keep the draft even if the submission fails
	if err := a.save(); err != nil {
		return err
	}

	created, err := a.console.Create(cmd.Context())
	if err != nil {
		return reported(err)
	}
	if err := a.save(); err != nil {
		return err
	}
	fmt.Printf("Campaign %d created (%d recipients, status %s)\n", created.ID, created.TotalUsers, created.Status)
	return nil
}

func campaignAction(action string) func(*cobra.Command, []string) error {
	return withSession(func(cmd *cobra.Command, args []string, a *app) error {
		id, err := parseCampaignID(args[0])
		if err != nil {
			return err
		}
		if err := a.console.Do(cmd.Context(), id, action); err != nil {
			return reported(err)
		}
		if c, ok := findCampaign(a.console.Campaigns(), id); ok {
			fmt.Printf("Campaign %d is now %s\n", id, c.Status)
		}
		return nil
	})
}

func runCampaignsCancel(cmd *cobra.Command, args []string, a *app) error {
	id, err := parseCampaignID(args[0])
	if err != nil {
		return err
	}
	confirmed, _ := cmd.Flags().GetBool("yes")
	if !confirmed && interactive() {
		confirmed = confirm(fmt.Sprintf("¿Cancelar la campaña %d? Esta acción no se puede deshacer", id))
	}
	if err := a.console.Cancel(cmd.Context(), id, confirmed); err != nil {
		return reported(err)
	}
	return nil
}

func runCampaignsDelete(cmd *cobra.Command, args []string, a *app) error {
	id, err := parseCampaignID(args[0])
	if err != nil {
		return err
	}
	req, err := deleteRequest(cmd, id)
	if err != nil {
		return err
	}
	if err := a.console.Delete(cmd.Context(), req); err != nil {
		return reported(err)
	}
	return nil
}

// deleteRequest runs the two confirmation steps from --confirm or, on a
// terminal, from prompts. A wrong token fails before anything is sent.
func deleteRequest(cmd *cobra.Command, id int64) (*campaign.DeleteRequest, error) {
	req := campaign.NewDeleteRequest(id)
	if cmd.Flags().Changed("confirm") {
		token, _ := cmd.Flags().GetString("confirm")
		req.Confirm()
		if err := req.Verify(token); err != nil {
			return nil, err
		}
		return req, nil
	}
	if !interactive() {
		return req, nil
	}
	if !confirm(fmt.Sprintf("¿Eliminar la campaña %d? Esta acción no se puede deshacer", id)) {
		return req, nil
	}
	req.Confirm()
	token, err := readLine(fmt.Sprintf("Escriba %s para confirmar: ", campaign.DeleteToken))
	if err != nil {
		return nil, err
	}
	if err := req.Verify(token); err != nil {
		return nil, err
	}
	return req, nil
}

func runCampaignsDetail(cmd *cobra.Command, args []string, a *app) error {
	id, err := parseCampaignID(args[0])
	if err != nil {
		return err
	}
	d, err := a.console.Detail(cmd.Context(), id)
	if err != nil {
		return reported(err)
	}

	s := d.Stats
	fmt.Printf("Sent: %d  Error: %d  Pending: %d  Cancelled: %d  Total: %d\n", s.Sent, s.Error, s.Pending, s.Cancelled, s.Total())

	limit, _ := cmd.Flags().GetInt("logs")
	logs := d.Logs
	if limit > 0 && len(logs) > limit {
		logs = logs[:limit]
	}
	if len(logs) > 0 {
		fmt.Println()
		fmt.Printf("%-8s  %-24s  %-12s  %-10s  %s\n", "User", "Name", "Phone", "Status", "Error")
		for _, l := range logs {
			fmt.Printf("%-8d  %-24s  %-12s  %-10s  %s\n", l.UserID, l.Name, l.Phone, l.Status, l.ErrorMessage)
		}
		if len(logs) < len(d.Logs) {
			fmt.Printf("... %d more\n", len(d.Logs)-len(logs))
		}
	}

	if len(d.FailedNumbers) > 0 {
		fmt.Println()
		fmt.Println("Failed numbers:")
		for _, f := range d.FailedNumbers {
			fmt.Printf("  %-12s  %-24s  %s\n", f.Phone, f.Name, f.Error)
		}
	}
	return nil
}

func findCampaign(list []models.Campaign, id int64) (models.Campaign, bool) {
	for _, c := range list {
		if c.ID == id {
			return c, true
		}
	}
	return models.Campaign{}, false
}

func printCampaigns(list []models.Campaign) {
	if len(list) == 0 {
		fmt.Println("No campaigns")
		return
	}
	fmt.Printf("%-6s  %-28s  %-10s  %-6s  %-17s  %s\n", "ID", "Name", "Status", "Users", "Created", "Actions")
	for _, c := range list {
		created := "-"
		if c.CreatedAt != nil {
			created = c.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		fmt.Printf("%-6d  %-28s  %-10s  %-6d  %-17s  %s\n",
			c.ID, truncate(c.Name, 28), c.Status, c.TotalUsers, created,
			strings.Join(campaign.AllowedActions(c.Status), ","))
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
