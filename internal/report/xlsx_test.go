package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/bingotables/bulkmsg/internal/models"
)

func TestWriteXLSX(t *testing.T) {
	wb := BuildWorkbook(models.Campaign{ID: 1, Name: "Entrega"}, &models.CampaignDetail{}, exportTime)

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, wb))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetSent, SheetFailed}, f.GetSheetList())

	rows, err := f.GetRows(SheetSent)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Nombre", rows[0][1])
	assert.Equal(t, []string{NoSentRows}, rows[1])

	rows, err = f.GetRows(SheetFailed)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{NoFailedRows}, rows[1])
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name string
		c    models.Campaign
		want string
	}{
		{"plain", models.Campaign{Name: "Entrega Norte"}, "campana_entrega_norte_2024-05-01.xlsx"},
		{"accents", models.Campaign{Name: "Campaña Días Ñandú"}, "campana_campana_dias_nandu_2024-05-01.xlsx"},
		{"symbols", models.Campaign{Name: "  #1 / Mesa -- A  "}, "campana_1_mesa_a_2024-05-01.xlsx"},
		{"empty name", models.Campaign{ID: 12, Name: "!!!"}, "campana_12_2024-05-01.xlsx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.c, exportTime))
		})
	}
}

type fakeDetails struct {
	calls  int
	detail *models.CampaignDetail
	err    error
}

func (f *fakeDetails) CampaignDetails(ctx context.Context, id int64) (*models.CampaignDetail, error) {
	f.calls++
	return f.detail, f.err
}

func TestReporterFetchesEveryTime(t *testing.T) {
	src := &fakeDetails{detail: &models.CampaignDetail{}}
	r := NewReporter(src, nil)

	_, err := r.FetchDetail(context.Background(), 1)
	require.NoError(t, err)
	_, err = r.FetchDetail(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestReporterExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	src := &fakeDetails{detail: &models.CampaignDetail{
		Logs: []models.LogEntry{{UserID: 1, Phone: "0991", Status: models.OutcomeSent}},
	}}
	r := NewReporter(src, nil)

	path, err := r.Export(context.Background(), models.Campaign{ID: 1, Name: "Entrega"}, dir, exportTime)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "campana_entrega_2024-05-01.xlsx"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestReporterExportFetchError(t *testing.T) {
	r := NewReporter(&fakeDetails{err: errors.New("down")}, nil)
	dir := t.TempDir()
	_, err := r.Export(context.Background(), models.Campaign{ID: 1}, dir, exportTime)
	assert.ErrorContains(t, err, "down")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
