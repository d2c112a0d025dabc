package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-pdf/fpdf"

	"devtrack.app/api/internal/model"
)

type column struct {
	title string
	width float64
	align string
}

type pdfDoc struct {
	pdf *fpdf.Fpdf
	tr  func(string) string
}

func newPDF(appName, title, subtitle string) *pdfDoc {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator(appName, true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 20)

	doc := &pdfDoc{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("%s - page %d", doc.tr(appName), pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, doc.tr(title), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, doc.tr(subtitle), "", 1, "L", false, 0, "")
	pdf.Ln(4)
	return doc
}

func (d *pdfDoc) header(cols []column) {
	d.pdf.SetFont("Helvetica", "B", 10)
	d.pdf.SetFillColor(31, 78, 120)
	d.pdf.SetTextColor(255, 255, 255)
	for _, c := range cols {
		d.pdf.CellFormat(c.width, 8, d.tr(c.title), "1", 0, c.align, true, 0, "")
	}
	d.pdf.Ln(-1)
	d.pdf.SetTextColor(0, 0, 0)
	d.pdf.SetFont("Helvetica", "", 10)
}

// line writes one table row; style is "", "B" or "I".
func (d *pdfDoc) line(cols []column, style string, values ...string) {
	d.pdf.SetFont("Helvetica", style, 10)
	for i, c := range cols {
		d.pdf.CellFormat(c.width, 7, d.tr(values[i]), "1", 0, c.align, false, 0, "")
	}
	d.pdf.Ln(-1)
}

func (d *pdfDoc) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("writing pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// ActivityPDF renders the per developer/project table and daily totals.
func ActivityPDF(appName string, s *model.ActivitySummary) ([]byte, error) {
	doc := newPDF(appName, "Activity report", period(s.From, s.To))

	cols := []column{
		{"Developer", 60, "L"},
		{"Project", 65, "L"},
		{"Entries", 25, "R"},
		{"Hours", 30, "R"},
	}
	doc.header(cols)
	entries := 0
	for _, t := range s.Rows {
		doc.line(cols, "", t.UserName, t.ProjectName, strconv.Itoa(t.Entries), money(t.Hours))
		entries += t.Entries
	}
	doc.line(cols, "B", "Total", "", strconv.Itoa(entries), money(s.TotalHours))

	if len(s.Daily) > 0 {
		doc.pdf.Ln(6)
		daily := []column{{"Date", 60, "L"}, {"Hours", 30, "R"}}
		doc.header(daily)
		for _, d := range s.Daily {
			doc.line(daily, "", d.Day.Format(dateLayout), money(d.Hours))
		}
	}

	return doc.bytes()
}

// PaymentsPDF renders project lines grouped by developer with subtotals.
func PaymentsPDF(appName string, p *model.PaymentReport) ([]byte, error) {
	doc := newPDF(appName, "Payment report", period(p.From, p.To))

	cols := []column{
		{"Developer", 50, "L"},
		{"Project", 50, "L"},
		{"Hours", 25, "R"},
		{"Rate", 25, "R"},
		{"Amount", 30, "R"},
	}
	doc.header(cols)
	for _, dev := range p.Developers {
		for _, l := range dev.Lines {
			doc.line(cols, "", l.UserName, l.ProjectName, money(l.Hours), money(l.HourlyRate), money(l.Amount))
		}
		doc.line(cols, "I", "Subtotal "+dev.UserName, "", money(dev.Hours), money(dev.HourlyRate), money(dev.Amount))
	}
	doc.line(cols, "B", "Total", "", money(p.TotalHours), "", money(p.TotalAmount))

	return doc.bytes()
}
