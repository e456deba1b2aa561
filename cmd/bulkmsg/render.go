package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bingotables/bulkmsg/internal/template"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Preview the message for one active recipient",
	Long: `Render the message template against one active recipient.
Known variables: ` + vocabularyList(),
	Args: cobra.NoArgs,
	RunE: withSession(runRender),
}

func init() {
	renderCmd.Flags().StringP("template", "t", "", "Message template (default: session message)")
	renderCmd.Flags().String("template-file", "", "Read the message template from a file")
	renderCmd.Flags().IntP("recipient", "r", 1, "Active recipient number, starting at 1; kept for later renders")
}

func runRender(cmd *cobra.Command, args []string, a *app) error {
	tmpl, ok, err := messageFromFlags(cmd, "template", "template-file")
	if err != nil {
		return err
	}
	if ok {
		a.console.SetMessage(tmpl)
	}
	if cmd.Flags().Changed("recipient") {
		n, _ := cmd.Flags().GetInt("recipient")
		a.console.SelectPreviewRecipient(n - 1)
	}

	out, err := a.console.RenderPreview()
	if err != nil {
		return reported(err)
	}
	fmt.Println(out)

	if unknown := template.Unknown(a.console.Draft().Message); len(unknown) > 0 {
		fmt.Fprintf(os.Stderr, "warning: unknown variables left as is: %s\n", strings.Join(unknown, ", "))
	}
	return a.save()
}

// messageFromFlags reads a message from a text flag or a file flag
func messageFromFlags(cmd *cobra.Command, textFlag, fileFlag string) (string, bool, error) {
	flags := cmd.Flags()
	if flags.Changed(fileFlag) {
		path, _ := flags.GetString(fileFlag)
		data, err := os.ReadFile(path)
		if err != nil {
			return "", false, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return string(data), true, nil
	}
	if flags.Changed(textFlag) {
		v, _ := flags.GetString(textFlag)
		return v, true, nil
	}
	return "", false, nil
}

func vocabularyList() string {
	names := make([]string, 0, len(template.Vocabulary))
	for _, v := range template.Vocabulary {
		names = append(names, "{"+v.Name+"}")
	}
	return strings.Join(names, " ")
}
