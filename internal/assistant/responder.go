package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/andy/workcal/internal/domain"
	applog "github.com/andy/workcal/internal/log"
)

// Responder answers a question about the snapshot
type Responder interface {
	Respond(ctx context.Context, question string, snap Snapshot) (string, error)
	Name() string
}

// Options selects and configures the responder
type Options struct {
	APIKey   string
	Model    string
	Endpoint string
}

// New returns the Gemini responder when an API key is set, otherwise the
// local rule responder. A missing key is not an error.
func New(ctx context.Context, opts Options, logger *applog.Logger) Responder {
	if logger == nil {
		logger = applog.Discard()
	}
	if opts.APIKey == "" {
		logger.Info("no assistant API key, using local responder")
		return NewRuleResponder()
	}

	gemini, err := NewGeminiResponder(ctx, opts, nil)
	if err != nil {
		logger.Warn("gemini unavailable, using local responder", "error", err)
		return NewRuleResponder()
	}
	logger.Info("using gemini responder", "model", gemini.model)
	return gemini
}

// RuleResponder answers from canned templates picked by keyword
type RuleResponder struct{}

// NewRuleResponder creates the local fallback responder
func NewRuleResponder() *RuleResponder {
	return &RuleResponder{}
}

func (r *RuleResponder) Name() string { return "local" }

const (
	adviceText = "Keep a balance between on-site and remote days, and check the statistics regularly to see where your time goes."
	helpText   = "I can answer questions about your clients, work statistics, hours logged this month, productivity, or give advice on managing your time."
)

// Respond never fails
func (r *RuleResponder) Respond(_ context.Context, question string, snap Snapshot) (string, error) {
	q := strings.ToLower(question)

	switch {
	case containsAny(q, "how many", "how much", "quant") && containsAny(q, "hour", "time", "ore", "tempo"):
		return fmt.Sprintf("This month you logged %s hours across %d sessions.",
			formatNumber(snap.MonthHours), snap.MonthEvents), nil

	case containsAny(q, "client", "customer"):
		if top, ok := snap.TopClient(); ok {
			return fmt.Sprintf("You have %d clients. The one with the most hours is %s with %s hours.",
				snap.TotalClients, top.Name, formatNumber(top.Hours)), nil
		}
		return fmt.Sprintf("You have %d clients registered.", snap.TotalClients), nil

	case containsAny(q, "statistic", "stats", "summary", "analysis", "analisi", "statistiche", "riepilogo"):
		return fmt.Sprintf("Summary: %d clients, %d sessions in total, %d this month for %s hours.",
			snap.TotalClients, snap.TotalEvents, snap.MonthEvents, formatNumber(snap.MonthHours)), nil

	case containsAny(q, "productiv", "produttiv", "performance"):
		return fmt.Sprintf("This month you worked about %s equivalent days.",
			formatNumber(snap.MonthHours/domain.HoursPerDay)), nil

	case containsAny(q, "advice", "suggest", "tip", "consiglio", "suggerimento"):
		return adviceText, nil
	}

	return helpText, nil
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// formatNumber prints whole numbers without decimals and others with one
func formatNumber(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}
