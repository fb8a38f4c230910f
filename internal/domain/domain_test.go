package domain

import (
	"math"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestClientValidate(t *testing.T) {
	tests := []struct {
		name    string
		client  Client
		wantErr bool
	}{
		{"valid", Client{Name: "Acme", DailyRate: 350}, false},
		{"missing name", Client{Name: "  ", DailyRate: 350}, true},
		{"missing rate", Client{Name: "Acme"}, true},
		{"negative contract", Client{Name: "Acme", DailyRate: 1, TotalDaysContracted: -1}, true},
		{"NaN rate", Client{Name: "Acme", DailyRate: math.NaN()}, true},
		{"infinite rate", Client{Name: "Acme", DailyRate: math.Inf(1)}, true},
		{"NaN contract", Client{Name: "Acme", DailyRate: 1, TotalDaysContracted: math.NaN()}, true},
		{"infinite contract", Client{Name: "Acme", DailyRate: 1, TotalDaysContracted: math.Inf(1)}, true},
		{"NaN contract value", Client{Name: "Acme", DailyRate: 1, TotalContractValue: math.NaN()}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.client.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestClientNormalizeDropsVATForCompanies(t *testing.T) {
	c := Client{Name: " Acme ", Type: ClientTypeCompany, VATNumber: "IT123"}
	c.Normalize()
	if c.VATNumber != "" {
		t.Fatalf("expected VAT number cleared, got %q", c.VATNumber)
	}
	if c.Name != "Acme" {
		t.Fatalf("expected trimmed name, got %q", c.Name)
	}

	p := Client{Name: "Mario", Type: ClientTypeSoleProprietor, VATNumber: "IT123"}
	p.Normalize()
	if p.VATNumber != "IT123" {
		t.Fatalf("expected VAT number kept for sole proprietor")
	}
}

func TestLegacyLabelsDecode(t *testing.T) {
	raw := `{"id":"1","name":"Rossi","type":"PIVA","dailyRate":300,"totalDaysContracted":0,"color":"#fff"}`
	var c Client
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal client: %v", err)
	}
	if c.Type != ClientTypeSoleProprietor {
		t.Fatalf("expected SoleProprietor, got %q", c.Type)
	}

	rawEvent := `{"id":"e1","date":"2024-03-05","clientId":"1","hours":8,"mode":"Smart Working","notes":"","isFullDay":true}`
	var e CalendarEvent
	if err := json.Unmarshal([]byte(rawEvent), &e); err != nil {
		t.Fatalf("unmarshal event: %v", err)
	}
	if e.Mode != WorkModeRemoteWork {
		t.Fatalf("expected RemoteWork, got %q", e.Mode)
	}
}

func TestEventDefaultsAndValidate(t *testing.T) {
	e := CalendarEvent{ClientID: "c1", Date: "2024-03-05"}
	e.ApplyDefaults()
	if e.ID == "" || e.Hours != 8 || e.Mode != WorkModeOnSite {
		t.Fatalf("defaults not applied: %+v", e)
	}
	if err := e.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := (CalendarEvent{Date: "2024-03-05", Hours: 8}).Validate(); err == nil {
		t.Fatalf("expected error for missing client")
	}
	if err := (CalendarEvent{ClientID: "c1", Hours: 8}).Validate(); err == nil {
		t.Fatalf("expected error for missing date")
	}
	if err := (CalendarEvent{ClientID: "c1", Date: "05/03/2024", Hours: 8}).Validate(); err == nil {
		t.Fatalf("expected error for malformed date")
	}
	for _, h := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		if err := (CalendarEvent{ClientID: "c1", Date: "2024-03-05", Hours: h}).Validate(); err == nil {
			t.Fatalf("expected error for %v hours", h)
		}
	}
}

func TestYearMonth(t *testing.T) {
	ym, err := ParseYearMonth("2024-03")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if ym.String() != "2024-03" {
		t.Fatalf("expected 2024-03, got %s", ym)
	}
	if !ym.Contains("2024-03-31") || ym.Contains("2024-04-01") || ym.Contains("2023-03-05") {
		t.Fatalf("Contains gave wrong answer")
	}
	if len(ym.Days()) != 31 {
		t.Fatalf("expected 31 days, got %d", len(ym.Days()))
	}
	if ym.Prev().String() != "2024-02" || ym.Next().String() != "2024-04" {
		t.Fatalf("unexpected neighbours %s %s", ym.Prev(), ym.Next())
	}

	// January 2024 starts on a Monday: 31 days, 23 weekdays.
	jan := YearMonth{Year: 2024, Month: time.January}
	if got := jan.Weekdays(); got != 23 {
		t.Fatalf("expected 23 weekdays, got %d", got)
	}
	feb := YearMonth{Year: 2024, Month: time.February}
	if got := len(feb.Days()); got != 29 {
		t.Fatalf("expected leap february, got %d days", got)
	}
}

func TestParseYearMonthRejectsGarbage(t *testing.T) {
	if _, err := ParseYearMonth("March"); err == nil {
		t.Fatalf("expected error")
	}
}
