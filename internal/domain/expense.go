// Package domain holds the expense record shared by the store, the snapshot
// writer and the CLI.
package domain

import (
	"errors"
	"strings"
	"time"
)

// DateLayout is the calendar format used wherever an expense date is written
// as text.
const DateLayout = "2006-01-02"

// Expense is one recorded spend.
type Expense struct {
	ID          int64
	Description string
	Amount      Amount
	Date        time.Time
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.Description) == "" {
		return errors.New("description is required")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return errors.New("date is required")
	}
	return nil
}

// Normalize returns a copy whose date is expressed in UTC. All writes to the
// store and to snapshots go through it.
func (e Expense) Normalize() Expense {
	e.Date = e.Date.UTC()
	return e
}

// NormalizeAll returns normalized copies; the input slice is not modified.
func NormalizeAll(expenses []Expense) []Expense {
	out := make([]Expense, len(expenses))
	for i, e := range expenses {
		out[i] = e.Normalize()
	}
	return out
}
