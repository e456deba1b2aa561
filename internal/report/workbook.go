// Package report fetches campaign delivery details and exports them as a workbook.
package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/bingotables/bulkmsg/internal/models"
)

// Sheet names and placeholder rows of the export
const (
	SheetSummary = "Resumen"
	SheetSent    = "Enviados"
	SheetFailed  = "Fallidos"

	NoSentRows   = "No hay mensajes enviados exitosamente"
	NoFailedRows = "No hay números fallidos"

	timeLayout = "2006-01-02 15:04:05"
)

// Sheet is one table of the export. Rows never is empty.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]string
}

// Workbook is the format independent content of an export
type Workbook struct {
	Sheets []Sheet
}

// Sheet returns the sheet called name
func (w Workbook) Sheet(name string) (Sheet, bool) {
	for _, s := range w.Sheets {
		if s.Name == name {
			return s, true
		}
	}
	return Sheet{}, false
}

// BuildWorkbook lays out the summary, sent and failed tables of a campaign.
// The detail is only read.
func BuildWorkbook(c models.Campaign, d *models.CampaignDetail, now time.Time) Workbook {
	if d == nil {
		d = &models.CampaignDetail{}
	}
	return Workbook{Sheets: []Sheet{
		summarySheet(c, d, now),
		sentSheet(d),
		failedSheet(d),
	}}
}

func summarySheet(c models.Campaign, d *models.CampaignDetail, now time.Time) Sheet {
	return Sheet{
		Name:   SheetSummary,
		Header: []string{"Campo", "Valor"},
		Rows: [][]string{
			{"ID", strconv.FormatInt(c.ID, 10)},
			{"Campaña", c.Name},
			{"Estado", string(c.Status)},
			{"Mensaje", c.Message},
			{"Total destinatarios", strconv.Itoa(c.TotalUsers)},
			{"Enviados", strconv.Itoa(d.Stats.Sent)},
			{"Errores", strconv.Itoa(d.Stats.Error)},
			{"Pendientes", strconv.Itoa(d.Stats.Pending)},
			{"Cancelados", strconv.Itoa(d.Stats.Cancelled)},
			{"Intervalo (min)", strconv.Itoa(c.IntervalMinutes)},
			{"Máx. mensajes por hora", strconv.Itoa(c.MaxMessagesPerHour)},
			{"Creada", formatTime(c.CreatedAt)},
			{"Iniciada", formatTime(c.StartedAt)},
			{"Completada", formatTime(c.CompletedAt)},
			{"Exportado", now.Format(timeLayout)},
		},
	}
}

func sentSheet(d *models.CampaignDetail) Sheet {
	s := Sheet{
		Name:   SheetSent,
		Header: []string{"ID usuario", "Nombre", "Teléfono", "Enviado", "Intentos"},
	}
	for _, l := range d.Logs {
		if l.Status != models.OutcomeSent {
			continue
		}
		s.Rows = append(s.Rows, []string{
			formatID(l.UserID),
			l.Name,
			l.Phone,
			formatTime(l.SentAt),
			formatCount(l.Attempts),
		})
	}
	if len(s.Rows) == 0 {
		s.Rows = [][]string{{NoSentRows}}
	}
	return s
}

// failure is a row of the failed table, built from a log entry or a
// failed number record.
type failure struct {
	userID   int64
	name     string
	phone    string
	status   string
	err      string
	attempts int
	at       *time.Time
}

// detail counts the populated fields, used to pick between duplicates
func (f failure) detail() int {
	n := 0
	for _, ok := range []bool{f.userID != 0, f.name != "", f.status != "", f.err != "", f.attempts > 0, f.at != nil} {
		if ok {
			n++
		}
	}
	return n
}

func failedSheet(d *models.CampaignDetail) Sheet {
	var rows []failure
	byPhone := make(map[string]int)

	add := func(f failure) {
		key := phoneKey(f.phone)
		if key == "" {
			rows = append(rows, f)
			return
		}
		if i, ok := byPhone[key]; ok {
			if f.detail() > rows[i].detail() {
				rows[i] = f
			}
			return
		}
		byPhone[key] = len(rows)
		rows = append(rows, f)
	}

	for _, l := range d.Logs {
		if l.Status == models.OutcomeSent {
			continue
		}
		at := l.SentAt
		if at == nil {
			at = l.CreatedAt
		}
		add(failure{userID: l.UserID, name: l.Name, phone: l.Phone, status: l.Status, err: l.ErrorMessage, attempts: l.Attempts, at: at})
	}
	for _, n := range d.FailedNumbers {
		add(failure{userID: n.UserID, name: n.Name, phone: n.Phone, status: models.OutcomeError, err: n.Error, attempts: n.Attempts, at: n.FailedAt})
	}

	s := Sheet{
		Name:   SheetFailed,
		Header: []string{"ID usuario", "Nombre", "Teléfono", "Estado", "Error", "Intentos", "Fecha"},
	}
	for _, f := range rows {
		s.Rows = append(s.Rows, []string{
			formatID(f.userID),
			f.name,
			f.phone,
			f.status,
			f.err,
			formatCount(f.attempts),
			formatTime(f.at),
		})
	}
	if len(s.Rows) == 0 {
		s.Rows = [][]string{{NoFailedRows}}
	}
	return s
}

// phoneKey keeps only digits so that formatting differences do not
// defeat de-duplication
func phoneKey(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

func formatID(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

func formatCount(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}
