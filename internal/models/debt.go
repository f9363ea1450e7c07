package models

import (
	"github.com/shopspring/decimal"
)

// Currency is an ISO currency code accepted by the backend.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyTRY Currency = "TRY"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyJPY Currency = "JPY"
	CurrencyCAD Currency = "CAD"
	CurrencyAUD Currency = "AUD"
)

// Currencies lists every supported currency in display order.
var Currencies = []Currency{CurrencyUSD, CurrencyTRY, CurrencyEUR, CurrencyGBP, CurrencyJPY, CurrencyCAD, CurrencyAUD}

// DebtStatus is the repayment state of a debt.
type DebtStatus string

const (
	DebtStatusPending DebtStatus = "pending"
	DebtStatusPaid    DebtStatus = "paid"
)

// DebtTerm classifies a debt as short or long term.
type DebtTerm string

const (
	DebtTermShort DebtTerm = "short"
	DebtTermLong  DebtTerm = "long"
)

// Debt is a debt record as stored by the backend.
type Debt struct {
	ID        string              `json:"id"`
	UserID    string              `json:"user_id"`
	Title     string              `json:"title"`
	Creditor  string              `json:"creditor"`
	Amount    decimal.Decimal     `json:"amount"`
	Currency  Currency            `json:"currency"`
	DueDate   *string             `json:"due_date"`
	Status    DebtStatus          `json:"status"`
	Type      DebtTerm            `json:"type"`
	CreatedAt string              `json:"created_at,omitempty"`
	History   []DebtAmountHistory `json:"debt_amount_history"`
}

// RecordID returns the debt identifier.
func (d Debt) RecordID() string { return d.ID }

// DebtAmountHistory is one immutable row appended whenever a debt amount changes.
type DebtAmountHistory struct {
	ID       string          `json:"id"`
	DebtID   string          `json:"debt_id"`
	UserID   string          `json:"user_id"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note"`
	LoggedAt string          `json:"logged_at"`
}

// NewDebt carries the user-editable fields of a debt being created.
type NewDebt struct {
	Title    string          `json:"title"`
	Creditor string          `json:"creditor"`
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
	DueDate  *string         `json:"due_date"`
	Status   DebtStatus      `json:"status"`
	Type     DebtTerm        `json:"type"`
}

// DebtUpdate is a partial debt keyed by ID. Nil fields are left untouched.
// A non-nil DueDate pointing at an empty string clears the due date.
type DebtUpdate struct {
	ID       string           `json:"id"`
	Title    *string          `json:"title,omitempty"`
	Creditor *string          `json:"creditor,omitempty"`
	DueDate  *string          `json:"due_date,omitempty"`
	Status   *DebtStatus      `json:"status,omitempty"`
	Currency *Currency        `json:"currency,omitempty"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Note     string           `json:"note,omitempty"`
}

// Details returns the non-amount columns to write, keyed by column name.
func (u DebtUpdate) Details() map[string]any {
	fields := make(map[string]any)
	if u.Title != nil {
		fields["title"] = *u.Title
	}
	if u.Creditor != nil {
		fields["creditor"] = *u.Creditor
	}
	if u.DueDate != nil {
		if *u.DueDate == "" {
			fields["due_date"] = nil
		} else {
			fields["due_date"] = *u.DueDate
		}
	}
	if u.Status != nil {
		fields["status"] = string(*u.Status)
	}
	if u.Currency != nil {
		fields["currency"] = string(*u.Currency)
	}
	return fields
}
