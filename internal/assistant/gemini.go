package assistant

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-pro"

	systemPrompt = `You are an assistant for a freelancer's time and work tracking.
The user has %d clients and %d logged sessions.
This month there are %d sessions for a total of %s hours.
Answer concisely and helpfully. You can analyse data, give advice and answer questions.`

	noAnswerText = "Sorry, I could not process the request."
)

// GeminiResponder asks Google's generative language API
type GeminiResponder struct {
	client *genai.Client
	model  string
}

// NewGeminiResponder creates a responder authenticated by API key.
// httpClient may be nil.
func NewGeminiResponder(ctx context.Context, opts Options, httpClient *http.Client) (*GeminiResponder, error) {
	if opts.APIKey == "" {
		return nil, errors.New("missing API key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      opts.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: opts.Endpoint},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	return &GeminiResponder{client: client, model: model}, nil
}

func (g *GeminiResponder) Name() string { return "gemini:" + g.model }

// Respond sends the preamble, the snapshot as JSON and the question as one prompt
func (g *GeminiResponder) Respond(ctx context.Context, question string, snap Snapshot) (string, error) {
	prompt, err := buildPrompt(question, snap)
	if err != nil {
		return "", err
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if resp != nil {
		if text := resp.Text(); text != "" {
			return text, nil
		}
	}
	return noAnswerText, nil
}

func buildPrompt(question string, snap Snapshot) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("failed to encode context: %w", err)
	}
	preamble := fmt.Sprintf(systemPrompt, snap.TotalClients, snap.TotalEvents, snap.MonthEvents, formatNumber(snap.MonthHours))
	return fmt.Sprintf("%s\n\nContext: %s\n\nQuestion: %s", preamble, data, question), nil
}

