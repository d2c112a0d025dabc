package dto

import (
	"github.com/shopspring/decimal"

	"devtrack.app/api/internal/model"
)

type PaymentLineResponse struct {
	ProjectID   int64           `json:"project_id,string"`
	ProjectName string          `json:"project_name"`
	Hours       decimal.Decimal `json:"hours"`
	HourlyRate  decimal.Decimal `json:"hourly_rate"`
	Amount      decimal.Decimal `json:"amount"`
}

type DeveloperPaymentResponse struct {
	UserID     int64                 `json:"user_id,string"`
	UserName   string                `json:"user_name"`
	HourlyRate decimal.Decimal       `json:"hourly_rate"`
	Hours      decimal.Decimal       `json:"hours"`
	Amount     decimal.Decimal       `json:"amount"`
	Lines      []PaymentLineResponse `json:"lines"`
}

type PaymentReportResponse struct {
	From        string                     `json:"from"`
	To          string                     `json:"to"`
	Developers  []DeveloperPaymentResponse `json:"developers"`
	TotalHours  decimal.Decimal            `json:"total_hours"`
	TotalAmount decimal.Decimal            `json:"total_amount"`
}

func ToPaymentReportResponse(p *model.PaymentReport) PaymentReportResponse {
	return PaymentReportResponse{
		From: FormatDate(p.From),
		To:   FormatDate(p.To),
		Developers: MapSlice(p.Developers, func(d *model.DeveloperPayment) DeveloperPaymentResponse {
			return DeveloperPaymentResponse{
				UserID:     d.UserID,
				UserName:   d.UserName,
				HourlyRate: d.HourlyRate,
				Hours:      d.Hours,
				Amount:     d.Amount,
				Lines: MapSlice(d.Lines, func(l *model.PaymentLine) PaymentLineResponse {
					return PaymentLineResponse{
						ProjectID:   l.ProjectID,
						ProjectName: l.ProjectName,
						Hours:       l.Hours,
						HourlyRate:  l.HourlyRate,
						Amount:      l.Amount,
					}
				}),
			}
		}),
		TotalHours:  p.TotalHours,
		TotalAmount: p.TotalAmount,
	}
}
