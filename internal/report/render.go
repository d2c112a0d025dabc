package report

import "devtrack.app/api/internal/model"

// Renderer turns aggregates into downloadable files.
type Renderer struct {
	appName string
}

func NewRenderer(appName string) *Renderer {
	return &Renderer{appName: appName}
}

func (r *Renderer) Activity(s *model.ActivitySummary, format Format) (*File, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatXLSX:
		data, err = ActivityXLSX(s)
	case FormatPDF:
		data, err = ActivityPDF(r.appName, s)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	return newFile(KindActivity, format, s.From, s.To, data), nil
}

func (r *Renderer) Payments(p *model.PaymentReport, format Format) (*File, error) {
	var (
		data []byte
		err  error
	)
	switch format {
	case FormatXLSX:
		data, err = PaymentsXLSX(p)
	case FormatPDF:
		data, err = PaymentsPDF(r.appName, p)
	default:
		return nil, ErrUnsupportedFormat
	}
	if err != nil {
		return nil, err
	}
	return newFile(KindPayments, format, p.From, p.To, data), nil
}
