package report

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"devtrack.app/api/internal/model"
)

const (
	sheetSummary  = "Summary"
	sheetDaily    = "Daily"
	sheetPayments = "Payments"
)

type workbook struct {
	f        *excelize.File
	header   int
	number   int
	total    int
	subtotal int
}

func newWorkbook(firstSheet string) (*workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", firstSheet); err != nil {
		f.Close()
		return nil, err
	}

	wb := &workbook{f: f}
	var err error
	if wb.header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"#1F4E78"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "#000000", Style: 1}},
	}); err != nil {
		f.Close()
		return nil, err
	}
	if wb.number, err = f.NewStyle(&excelize.Style{NumFmt: 2}); err != nil {
		f.Close()
		return nil, err
	}
	if wb.subtotal, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Italic: true},
		NumFmt: 2,
	}); err != nil {
		f.Close()
		return nil, err
	}
	if wb.total, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Border: []excelize.Border{{Type: "top", Color: "#000000", Style: 2}},
		NumFmt: 2,
	}); err != nil {
		f.Close()
		return nil, err
	}
	return wb, nil
}

func (wb *workbook) row(sheet string, row int, values ...any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return wb.f.SetSheetRow(sheet, cell, &values)
}

func (wb *workbook) style(sheet string, row, lastCol, style int) error {
	from, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	to, err := excelize.CoordinatesToCellName(lastCol, row)
	if err != nil {
		return err
	}
	return wb.f.SetCellStyle(sheet, from, to, style)
}

func (wb *workbook) bytes() ([]byte, error) {
	defer wb.f.Close()
	buf, err := wb.f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func num(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// ActivityXLSX writes a per developer/project sheet and a per-day sheet.
func ActivityXLSX(s *model.ActivitySummary) ([]byte, error) {
	wb, err := newWorkbook(sheetSummary)
	if err != nil {
		return nil, err
	}
	if err := writeActivity(wb, s); err != nil {
		wb.f.Close()
		return nil, fmt.Errorf("building activity workbook: %w", err)
	}
	return wb.bytes()
}

func writeActivity(wb *workbook, s *model.ActivitySummary) error {
	if err := wb.row(sheetSummary, 1, "Activity report", period(s.From, s.To)); err != nil {
		return err
	}
	if err := wb.row(sheetSummary, 3, "Developer", "Project", "Entries", "Hours"); err != nil {
		return err
	}
	if err := wb.style(sheetSummary, 3, 4, wb.header); err != nil {
		return err
	}
	if err := wb.f.SetColWidth(sheetSummary, "A", "B", 28); err != nil {
		return err
	}

	r, entries := 4, 0
	for _, t := range s.Rows {
		if err := wb.row(sheetSummary, r, t.UserName, t.ProjectName, t.Entries, num(t.Hours)); err != nil {
			return err
		}
		if err := wb.style(sheetSummary, r, 4, wb.number); err != nil {
			return err
		}
		entries += t.Entries
		r++
	}
	if err := wb.row(sheetSummary, r, "Total", "", entries, num(s.TotalHours)); err != nil {
		return err
	}
	if err := wb.style(sheetSummary, r, 4, wb.total); err != nil {
		return err
	}

	if _, err := wb.f.NewSheet(sheetDaily); err != nil {
		return err
	}
	if err := wb.row(sheetDaily, 1, "Date", "Hours"); err != nil {
		return err
	}
	if err := wb.style(sheetDaily, 1, 2, wb.header); err != nil {
		return err
	}
	for i, d := range s.Daily {
		if err := wb.row(sheetDaily, i+2, d.Day.Format(dateLayout), num(d.Hours)); err != nil {
			return err
		}
	}
	return nil
}

// PaymentsXLSX lists each developer's project lines followed by a subtotal,
// and a grand total at the bottom.
func PaymentsXLSX(p *model.PaymentReport) ([]byte, error) {
	wb, err := newWorkbook(sheetPayments)
	if err != nil {
		return nil, err
	}
	if err := writePayments(wb, p); err != nil {
		wb.f.Close()
		return nil, fmt.Errorf("building payments workbook: %w", err)
	}
	return wb.bytes()
}

func writePayments(wb *workbook, p *model.PaymentReport) error {
	if err := wb.row(sheetPayments, 1, "Payment report", period(p.From, p.To)); err != nil {
		return err
	}
	if err := wb.row(sheetPayments, 3, "Developer", "Project", "Hours", "Hourly rate", "Amount"); err != nil {
		return err
	}
	if err := wb.style(sheetPayments, 3, 5, wb.header); err != nil {
		return err
	}
	if err := wb.f.SetColWidth(sheetPayments, "A", "B", 28); err != nil {
		return err
	}

	r := 4
	for _, dev := range p.Developers {
		for _, line := range dev.Lines {
			if err := wb.row(sheetPayments, r, line.UserName, line.ProjectName,
				num(line.Hours), num(line.HourlyRate), num(line.Amount)); err != nil {
				return err
			}
			if err := wb.style(sheetPayments, r, 5, wb.number); err != nil {
				return err
			}
			r++
		}
		if err := wb.row(sheetPayments, r, "Subtotal "+dev.UserName, "",
			num(dev.Hours), num(dev.HourlyRate), num(dev.Amount)); err != nil {
			return err
		}
		if err := wb.style(sheetPayments, r, 5, wb.subtotal); err != nil {
			return err
		}
		r++
	}

	if err := wb.row(sheetPayments, r, "Total", "", num(p.TotalHours), "", num(p.TotalAmount)); err != nil {
		return err
	}
	return wb.style(sheetPayments, r, 5, wb.total)
}
