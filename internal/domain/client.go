package domain

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// ClientType is the billing classification of a client
type ClientType string

const (
	ClientTypeCompany        ClientType = "Company"
	ClientTypeSoleProprietor ClientType = "SoleProprietor"
)

// ParseClientType accepts the canonical names and the labels used by older backups
func ParseClientType(s string) (ClientType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "company", "società", "societa":
		return ClientTypeCompany, nil
	case "soleproprietor", "sole_proprietor", "sole-proprietor", "piva":
		return ClientTypeSoleProprietor, nil
	}
	return "", fmt.Errorf("unknown client type %q", s)
}

// UnmarshalText lets JSON decoding normalize legacy labels
func (t *ClientType) UnmarshalText(b []byte) error {
	parsed, err := ParseClientType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Palette holds the display colors handed out to new clients
var Palette = []string{"#0ea5e9", "#8b5cf6", "#ec4899", "#f59e0b", "#10b981", "#ef4444", "#3b82f6"}

// RandomColor picks a palette color
func RandomColor() string {
	return Palette[rand.IntN(len(Palette))]
}

type Client struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Type                ClientType `json:"type"`
	VATNumber           string     `json:"vatNumber,omitempty"`
	DailyRate           float64    `json:"dailyRate"`
	TotalDaysContracted float64    `json:"totalDaysContracted"`
	Color               string     `json:"color"`
	TotalContractValue  float64    `json:"totalContractValue,omitempty"`
}

// NewClient creates a client with a fresh id and default classification and color
func NewClient(name string, dailyRate float64) Client {
	return Client{
		ID:        NewID(),
		Name:      strings.TrimSpace(name),
		Type:      ClientTypeCompany,
		DailyRate: dailyRate,
		Color:     RandomColor(),
	}
}

// HasContract reports whether the client has a contracted day cap
func (c Client) HasContract() bool {
	return c.TotalDaysContracted > 0
}

// Normalize fills defaults and drops the VAT number for companies
func (c *Client) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	if c.Type == "" {
		c.Type = ClientTypeCompany
	}
	if c.Type != ClientTypeSoleProprietor {
		c.VATNumber = ""
	}
	if c.Color == "" {
		c.Color = Palette[0]
	}
}

// Validate returns an error if the client is invalid
func (c Client) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("client name is required")
	}
	if !finite(c.DailyRate) || !finite(c.TotalDaysContracted) || !finite(c.TotalContractValue) {
		return errors.New("amounts must be finite numbers")
	}
	if c.DailyRate <= 0 {
		return errors.New("daily rate is required")
	}
	if c.TotalDaysContracted < 0 {
		return errors.New("contracted days cannot be negative")
	}
	if c.TotalContractValue < 0 {
		return errors.New("contract value cannot be negative")
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// SeedClients is the client list used when nothing has been stored yet
func SeedClients() []Client {
	return []Client{
		{
			ID:                  "1",
			Name:                "Demo Client",
			Type:                ClientTypeCompany,
			DailyRate:           350,
			TotalDaysContracted: 20,
			Color:               "#0ea5e9",
		},
	}
}

// NewID returns a random opaque identifier
func NewID() string {
	return uuid.NewString()
}
