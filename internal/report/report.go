package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatXLSX Format = "xlsx"
	FormatPDF  Format = "pdf"
)

type Kind string

const (
	KindActivity Kind = "activity"
	KindPayments Kind = "payments"
)

var ErrUnsupportedFormat = errors.New("unsupported report format")

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
	dateLayout      = "2006-01-02"
)

// ParseFormat accepts json, xlsx and pdf; empty means json.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatXLSX, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// File is a rendered binary report.
type File struct {
	Kind        Kind
	Format      Format
	Filename    string
	ContentType string
	Data        []byte
}

func Filename(kind Kind, from, to time.Time, format Format) string {
	return fmt.Sprintf("%s-report_%s_%s.%s", kind, from.Format(dateLayout), to.Format(dateLayout), format)
}

func newFile(kind Kind, format Format, from, to time.Time, data []byte) *File {
	ct := contentTypeXLSX
	if format == FormatPDF {
		ct = contentTypePDF
	}
	return &File{
		Kind:        kind,
		Format:      format,
		Filename:    Filename(kind, from, to, format),
		ContentType: ct,
		Data:        data,
	}
}

func period(from, to time.Time) string {
	return fmt.Sprintf("%s to %s", from.Format(dateLayout), to.Format(dateLayout))
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}
