package app

import (
	"context"
	"testing"

	"github.com/andy/workcal/internal/assistant"
	"github.com/andy/workcal/internal/config"
	"github.com/andy/workcal/internal/service"
)

func TestNewEphemeralWiresServices(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	ctx := context.Background()

	a, err := NewEphemeral(ctx, config.DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer a.Close()

	if got := a.ClientService.List(ctx); len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("expected seed client, got %+v", got)
	}
	if _, ok := a.Responder.(*assistant.RuleResponder); !ok {
		t.Fatalf("expected local responder without a key, got %T", a.Responder)
	}

	if _, err := a.EventService.Save(ctx, service.EventInput{ClientID: "1", Date: "2024-03-05"}); err != nil {
		t.Fatalf("save event: %v", err)
	}
	reply, err := a.Chat.Send(ctx, "show me the statistics")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}
	if reply.Content == "" {
		t.Fatalf("expected a reply")
	}
}
