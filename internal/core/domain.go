package core

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Direction = "income"
	Outcome Direction = "outcome"
)

type (
	Direction string

	User struct {
		ID           int64     `json:"id"`
		Username     string    `json:"username"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"created_at"`
	}

	Transaction struct {
		ID          int64           `json:"id"`
		UserID      int64           `json:"user_id"`
		Nominal     decimal.Decimal `json:"nominal"`
		OccurredAt  time.Time       `json:"occurred_at"`
		Direction   Direction       `json:"direction"`
		Description string          `json:"description,omitempty"`
	}

	// MonthSummary aggregates a user's transactions over one calendar month.
	MonthSummary struct {
		TotalIncome  decimal.Decimal `json:"totalIncome"`
		TotalOutcome decimal.Decimal `json:"totalOutcome"`
		Balance      decimal.Decimal `json:"balance"`
	}
)

// Error taxonomy. Concrete validation failures wrap ErrInvalidInput so the
// boundary can map the whole family with a single errors.Is check.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrNotFound          = errors.New("not found")
	ErrUnauthenticated   = errors.New("unauthenticated")
)

var (
	ErrEmptyUsername    = fmt.Errorf("%w: username must not be empty", ErrInvalidInput)
	ErrEmptyPassword    = fmt.Errorf("%w: password must not be empty", ErrInvalidInput)
	ErrInvalidNominal   = fmt.Errorf("%w: nominal must be a non-negative amount", ErrInvalidInput)
	ErrInvalidDirection = fmt.Errorf("%w: direction must be income or outcome", ErrInvalidInput)
	ErrMissingDate      = fmt.Errorf("%w: occurred_at must be provided", ErrInvalidInput)
	ErrInvalidMonth     = fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	ErrInvalidYear      = fmt.Errorf("%w: year must be between 1 and 9999", ErrInvalidInput)
)

func (d Direction) Validate() error {
	switch d {
	case Income, Outcome:
		return nil
	default:
		return ErrInvalidDirection
	}
}

func (t Transaction) Validate() error {
	if t.Nominal.IsNegative() {
		return ErrInvalidNominal
	}
	if t.OccurredAt.IsZero() {
		return ErrMissingDate
	}
	if err := t.Direction.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 500 {
		return fmt.Errorf("%w: description too long (max 500 characters)", ErrInvalidInput)
	}
	return nil
}

// ValidateMonth rejects out-of-calendar year/month values instead of letting
// time.Date silently normalize them.
func ValidateMonth(year, month int) error {
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	if year < 1 || year > 9999 {
		return ErrInvalidYear
	}
	return nil
}

// MonthInterval returns the half-open interval [first day of the month,
// first day of the next month) in UTC.
func MonthInterval(year, month int) (start, end time.Time) {
	start = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// InMonth reports whether ts falls inside the month's half-open interval.
func InMonth(ts time.Time, year, month int) bool {
	start, end := MonthInterval(year, month)
	return !ts.Before(start) && ts.Before(end)
}

// Accepted layouts for occurred_at, most specific first. The bare
// date-time layout matches what the web client submits.
var occurredAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseOccurredAt parses a transaction timestamp from its wire form.
func ParseOccurredAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrMissingDate
	}
	for _, layout := range occurredAtLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unrecognized occurred_at %q", ErrInvalidInput, s)
}

// ParseNominal parses a monetary amount, normalizing to two fractional
// digits. Amounts are decimal end to end; float64 would drift on sums.
func ParseNominal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidNominal
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidNominal, s)
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidNominal
	}
	return d.Round(2), nil
}

// Summarize computes exact-decimal income/outcome totals and their balance.
func Summarize(entries []Transaction) MonthSummary {
	income := decimal.Zero
	outcome := decimal.Zero
	for _, t := range entries {
		switch t.Direction {
		case Income:
			income = income.Add(t.Nominal)
		case Outcome:
			outcome = outcome.Add(t.Nominal)
		}
	}
	return MonthSummary{
		TotalIncome:  income,
		TotalOutcome: outcome,
		Balance:      income.Sub(outcome),
	}
}
