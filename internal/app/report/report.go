// Package report renders the filtered roster as a PDF document.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"emprec/internal/domain/employee"
)

// Translator resolves UI labels. *i18n.Localizer satisfies it.
type Translator interface {
	T(key string) string
	Tf(key string, params map[string]string) string
}

type Roster struct {
	Records     []employee.Employee
	SearchTerm  string
	GeneratedAt time.Time
}

type column struct {
	label string
	width float64
	value func(employee.Employee) string
}

// The core fonts are cp1252, which lacks the Turkish dotless i, s-cedilla and
// g-breve. They are folded to their closest latin letters.
var turkishFold = strings.NewReplacer("ı", "i", "İ", "I", "ş", "s", "Ş", "S", "ğ", "g", "Ğ", "G")

func columns(tr Translator) []column {
	return []column{
		{tr.T("employeeForm.firstName") + " / " + tr.T("employeeForm.lastName"), 52, employee.Employee.FullName},
		{tr.T("employeeForm.email"), 66, func(e employee.Employee) string { return e.Email }},
		{tr.T("employeeForm.phone"), 28, func(e employee.Employee) string { return e.Phone }},
		{tr.T("employeeForm.dateOfBirth"), 32, func(e employee.Employee) string { return e.DateOfBirth.String() }},
		{tr.T("employeeForm.dateOfEmployment"), 32, func(e employee.Employee) string { return e.DateOfEmployment.String() }},
		{tr.T("employeeForm.department"), 30, func(e employee.Employee) string { return tr.T("departments." + string(e.Department)) }},
		{tr.T("employeeForm.position"), 27, func(e employee.Employee) string { return tr.T("positions." + string(e.Position)) }},
	}
}

// Render writes the roster to w.
func Render(w io.Writer, tr Translator, roster Roster) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	toPage := pdf.UnicodeTranslatorFromDescriptor("")
	text := func(s string) string { return toPage(turkishFold.Replace(s)) }
	cols := columns(tr)

	header := func() {
		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range cols {
			pdf.CellFormat(c.width, 8, text(c.label), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 9)
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, text(tr.T("report.title")))
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, text(tr.Tf("report.generated", map[string]string{"date": roster.GeneratedAt.Format("2006-01-02 15:04")})))
	pdf.Ln(6)
	if roster.SearchTerm != "" {
		pdf.Cell(0, 7, text(tr.Tf("report.filter", map[string]string{"term": roster.SearchTerm})))
		pdf.Ln(6)
	}
	pdf.Cell(0, 7, text(tr.Tf("report.total", map[string]string{"count": strconv.Itoa(len(roster.Records))})))
	pdf.Ln(10)

	header()
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	for _, rec := range roster.Records {
		if pdf.GetY()+7 > pageHeight-bottom-10 {
			pdf.AddPage()
			header()
		}
		for _, c := range cols {
			pdf.CellFormat(c.width, 7, text(c.value(rec)), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render roster: %w", err)
	}
	return nil
}

// WriteFile renders the roster into dir and returns the file path.
func WriteFile(dir string, tr Translator, roster Roster) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, "roster-"+roster.GeneratedAt.Format("20060102-150405")+".pdf")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := Render(f, tr, roster); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
