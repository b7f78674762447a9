package core

import (
	"errors"
	"fmt"
)

// Accepted snapshot years.
const (
	MinYear = 2000
	MaxYear = 2100
)

type (
	Money struct {
		Cents int64
	}

	// Snapshot is the financial position of the agency for one month.
	// Balance is income minus expenses unless recorded otherwise.
	Snapshot struct {
		Year     int
		Month    int // 1-12
		Income   Money
		Expenses Money
		Assets   Money
		Balance  Money
	}
)

var (
	ErrInvalidYear   = errors.New("invalid year")
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNotFound      = errors.New("snapshot not found")
)

// NewSnapshot builds a snapshot with Balance derived from income and expenses.
func NewSnapshot(year, month int, income, expenses, assets Money) Snapshot {
	return Snapshot{
		Year:     year,
		Month:    month,
		Income:   income,
		Expenses: expenses,
		Assets:   assets,
		Balance:  income.Sub(expenses),
	}
}

// Validate rejects negative amounts. Zero is a valid amount.
func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

func ValidateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidYear, year, MinYear, MaxYear)
	}
	return nil
}

func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: %d", ErrInvalidMonth, month)
	}
	return nil
}

// Validate checks period bounds and amount signs. Balance may be negative.
func (s Snapshot) Validate() error {
	if err := ValidateYear(s.Year); err != nil {
		return err
	}
	if err := ValidateMonth(s.Month); err != nil {
		return err
	}
	if err := s.Income.Validate(); err != nil {
		return fmt.Errorf("income: %w", err)
	}
	if err := s.Expenses.Validate(); err != nil {
		return fmt.Errorf("expenses: %w", err)
	}
	if err := s.Assets.Validate(); err != nil {
		return fmt.Errorf("assets: %w", err)
	}
	return nil
}

// Period returns the snapshot key in YYYY-MM form.
func (s Snapshot) Period() string {
	return fmt.Sprintf("%04d-%02d", s.Year, s.Month)
}
