package report

import (
	"fmt"
	"io"
	"strings"
	"time"
	"unicode"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/bingotables/bulkmsg/internal/models"
)

// WriteXLSX renders the workbook as an XLSX document
func WriteXLSX(w io.Writer, wb Workbook) error {
	f := excelize.NewFile()
	defer f.Close()

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, s := range wb.Sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.Name); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.Name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.Name, err)
		}

		if err := writeRow(f, s.Name, 1, s.Header); err != nil {
			return err
		}
		if err := f.SetRowStyle(s.Name, 1, 1, bold); err != nil {
			return fmt.Errorf("style header of %s: %w", s.Name, err)
		}
		for j, row := range s.Rows {
			if err := writeRow(f, s.Name, j+2, row); err != nil {
				return err
			}
		}

		if n := len(s.Header); n > 0 {
			last, _ := excelize.ColumnNumberToName(n)
			if err := f.SetColWidth(s.Name, "A", last, 22); err != nil {
				return fmt.Errorf("set widths of %s: %w", s.Name, err)
			}
		}
	}

	f.SetActiveSheet(0)
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

// FileName names the export after the campaign and the export date,
// e.g. campana_entrega_norte_2024-05-01.xlsx
func FileName(c models.Campaign, now time.Time) string {
	slug := slugify(c.Name)
	if slug == "" {
		slug = fmt.Sprintf("%d", c.ID)
	}
	return fmt.Sprintf("campana_%s_%s.xlsx", slug, now.Format("2006-01-02"))
}

func slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}

	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(plain) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			sep = false
			continue
		}
		sep = true
	}
	return b.String()
}
