package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"devtrack.app/api/internal/model"
	"devtrack.app/api/internal/store"
)

type PaymentService interface {
	Calculate(ctx context.Context, actor *model.User, q RangeQuery) (*model.PaymentReport, error)
}

type paymentService struct {
	activityStore store.ActivityStore
	access        projectAccess
}

func NewPaymentService(activityStore store.ActivityStore, projectStore store.ProjectStore, permStore store.PermissionStore) PaymentService {
	return &paymentService{
		activityStore: activityStore,
		access:        projectAccess{projects: projectStore, permissions: permStore},
	}
}

// Calculate is unrestricted for admins and payments.view holders; other
// staff only see their own earnings.
func (s *paymentService) Calculate(ctx context.Context, actor *model.User, q RangeQuery) (*model.PaymentReport, error) {
	filter, err := q.filter()
	if err != nil {
		return nil, err
	}
	if err := restrictToSelf(ctx, s.access, actor, &filter, model.PermPaymentsView); err != nil {
		return nil, err
	}

	rows, err := s.activityStore.Totals(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("aggregating activity: %w", err)
	}
	return BuildPaymentReport(filter.From, filter.To.AddDate(0, 0, -1), rows), nil
}

// BuildPaymentReport groups developer/project totals by developer, keeping
// the input order. A missing hourly rate counts as zero. Amounts are rounded
// half away from zero to cents at line level; subtotals and the grand total
// are sums of the rounded lines.
func BuildPaymentReport(from, to time.Time, rows []model.ActivityTotal) *model.PaymentReport {
	out := &model.PaymentReport{
		From:        from,
		To:          to,
		Developers:  []model.DeveloperPayment{},
		TotalHours:  decimal.Zero,
		TotalAmount: decimal.Zero,
	}

	index := make(map[int64]int)
	for _, r := range rows {
		rate := decimal.Zero
		if r.HourlyRate != nil {
			rate = *r.HourlyRate
		}
		line := model.PaymentLine{
			UserID:      r.UserID,
			UserName:    r.UserName,
			ProjectID:   r.ProjectID,
			ProjectName: r.ProjectName,
			Hours:       r.Hours,
			HourlyRate:  rate,
			Amount:      r.Hours.Mul(rate).Round(2),
		}

		i, ok := index[r.UserID]
		if !ok {
			i = len(out.Developers)
			index[r.UserID] = i
			out.Developers = append(out.Developers, model.DeveloperPayment{
				UserID:     r.UserID,
				UserName:   r.UserName,
				HourlyRate: rate,
				Hours:      decimal.Zero,
				Amount:     decimal.Zero,
			})
		}
		dev := &out.Developers[i]
		dev.Lines = append(dev.Lines, line)
		dev.Hours = dev.Hours.Add(line.Hours)
		dev.Amount = dev.Amount.Add(line.Amount)

		out.TotalHours = out.TotalHours.Add(line.Hours)
		out.TotalAmount = out.TotalAmount.Add(line.Amount)
	}
	return out
}
