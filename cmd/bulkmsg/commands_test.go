package main

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/bingotables/bulkmsg/internal/campaign"
	"github.com/bingotables/bulkmsg/internal/config"
	"github.com/bingotables/bulkmsg/internal/models"
	"github.com/bingotables/bulkmsg/internal/monitor"
	"github.com/bingotables/bulkmsg/internal/session"
)

func deleteCmd(t *testing.T, token *string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "delete"}
	cmd.Flags().String("confirm", "", "")
	if token != nil {
		if err := cmd.Flags().Set("confirm", *token); err != nil {
			t.Fatalf("set flag: %v", err)
		}
	}
	return cmd
}

func TestDeleteRequest(t *testing.T) {
	good, bad := campaign.DeleteToken, "eliminar"

	req, err := deleteRequest(deleteCmd(t, &good), 7)
	if err != nil {
		t.Fatalf("deleteRequest() error = %v", err)
	}
	if !req.Ready() || req.CampaignID != 7 {
		t.Errorf("request not ready: %+v", req)
	}

	if _, err := deleteRequest(deleteCmd(t, &bad), 7); !errors.Is(err, campaign.ErrTokenMismatch) {
		t.Errorf("deleteRequest(%q) error = %v, want ErrTokenMismatch", bad, err)
	}

	// without a flag and without a terminal nothing is confirmed
	req, err = deleteRequest(deleteCmd(t, nil), 7)
	if err != nil {
		t.Fatalf("deleteRequest() error = %v", err)
	}
	if req.Ready() {
		t.Error("request must not be ready without confirmation")
	}
}

func TestAppHolder(t *testing.T) {
	a := &app{cfg: &config.Config{}, gate: monitor.NewGate()}
	if _, ok := a.holder().(*monitor.Gate); !ok {
		t.Errorf("holder() = %T, want local gate", a.holder())
	}

	a.cfg.Monitor.URL = "http://127.0.0.1:8089"
	if _, ok := a.holder().(*monitor.RemoteGate); !ok {
		t.Errorf("holder() = %T, want remote gate", a.holder())
	}
}

func TestRenderSavesSession(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "session.db")
	cfgPath := filepath.Join(dir, "config.yaml")
	content := "api:\n  base_url: http://127.0.0.1:1\nsession:\n  path: " + dbPath + "\n"
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	oldConfig, oldSession := configFile, sessionName
	configFile, sessionName = cfgPath, "render-test"
	t.Cleanup(func() { configFile, sessionName = oldConfig, oldSession })

	store, err := session.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	st := session.NewState()
	st.Candidates = models.CandidateList{
		{ID: 1, FirstName: "Ana"},
		{ID: 2, FirstName: "Luis"},
	}
	if err := store.Save(sessionName, st); err != nil {
		t.Fatalf("save: %v", err)
	}
	store.Close()

	a, err := newApp(io.Discard, true)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	cmd := &cobra.Command{Use: "render"}
	cmd.Flags().StringP("template", "t", "", "")
	cmd.Flags().String("template-file", "", "")
	cmd.Flags().IntP("recipient", "r", 1, "")
	cmd.Flags().Set("template", "Hola {firstName}")
	cmd.Flags().Set("recipient", "2")

	err = runRender(cmd, nil, a)
	a.close()
	if err != nil {
		t.Fatalf("runRender() error = %v", err)
	}

	store, err = session.Open(dbPath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer store.Close()
	got, err := store.Load(sessionName)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Message != "Hola {firstName}" || got.PreviewIndex != 1 {
		t.Errorf("saved message %q index %d, want template and index 1", got.Message, got.PreviewIndex)
	}
}
