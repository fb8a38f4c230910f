package domain

import (
	"errors"
	"fmt"
)

// Statement is a client's monthly billing summary built from logged events.
// It is derived on demand and never stored.
type Statement struct {
	Number    string
	Client    Client
	Month     YearMonth
	Currency  string
	Subtotal  float64
	TaxRate   float64
	TaxAmount float64
	Total     float64
	Lines     []StatementLine
}

type StatementLine struct {
	EventID string
	Date    string
	Mode    WorkMode
	Notes   string
	Hours   float64
	Days    float64
	Rate    float64 // daily rate
	Amount  float64
}

// NewStatement creates an empty statement for a client and month
func NewStatement(client Client, month YearMonth, taxRate float64, currency string) *Statement {
	return &Statement{
		Number:   fmt.Sprintf("ST-%d%02d-%s", month.Year, int(month.Month), shortID(client.ID)),
		Client:   client,
		Month:    month,
		Currency: currency,
		TaxRate:  taxRate,
		Lines:    make([]StatementLine, 0),
	}
}

// AddEvent appends a line billed at the client's daily rate
func (s *Statement) AddEvent(e CalendarEvent) {
	days := e.Days()
	s.Lines = append(s.Lines, StatementLine{
		EventID: e.ID,
		Date:    e.Date,
		Mode:    e.Mode,
		Notes:   e.Notes,
		Hours:   e.Hours,
		Days:    days,
		Rate:    s.Client.DailyRate,
		Amount:  days * s.Client.DailyRate,
	})
}

// TotalHours sums the hours of every line
func (s *Statement) TotalHours() float64 {
	total := 0.0
	for _, l := range s.Lines {
		total += l.Hours
	}
	return total
}

// CalculateTotals recalculates subtotal, tax, and total from the lines
func (s *Statement) CalculateTotals() {
	s.Subtotal = 0
	for _, l := range s.Lines {
		s.Subtotal += l.Amount
	}
	s.TaxAmount = s.Subtotal * s.TaxRate
	s.Total = s.Subtotal + s.TaxAmount
}

// Validate returns an error if the statement is invalid
func (s *Statement) Validate() error {
	if s.Client.ID == "" {
		return errors.New("client is required")
	}
	if s.TaxRate < 0 || s.TaxRate > 1 {
		return errors.New("tax rate must be between 0 and 1")
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
