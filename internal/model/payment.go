package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentLine struct {
	UserID      int64
	UserName    string
	ProjectID   int64
	ProjectName string
	Hours       decimal.Decimal
	HourlyRate  decimal.Decimal
	Amount      decimal.Decimal
}

type DeveloperPayment struct {
	UserID     int64
	UserName   string
	HourlyRate decimal.Decimal
	Hours      decimal.Decimal
	Amount     decimal.Decimal
	Lines      []PaymentLine
}

type PaymentReport struct {
	From        time.Time
	To          time.Time
	Developers  []DeveloperPayment
	TotalHours  decimal.Decimal
	TotalAmount decimal.Decimal
}
