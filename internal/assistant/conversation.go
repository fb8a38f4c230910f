package assistant

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	applog "github.com/andy/workcal/internal/log"
)

var (
	// ErrBusy is returned when a message is sent while the previous one is unanswered
	ErrBusy = errors.New("assistant is still answering the previous message")

	// ErrEmptyMessage is returned for blank input. The history is left unchanged.
	ErrEmptyMessage = errors.New("empty message")
)

const (
	greetingText = "Hi! I can help you with your calendar, go through your statistics and answer questions about your clients and sessions."
	apologyText  = "Sorry, something went wrong. Please try again later."
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Conversation is a chat history answering one message at a time
type Conversation struct {
	mu        sync.Mutex
	messages  []Message
	responder Responder
	snapshot  SnapshotFunc
	pending   *semaphore.Weighted
	busy      atomic.Bool
	logger    *applog.Logger
}

// NewConversation starts a history with the greeting
func NewConversation(responder Responder, snapshot SnapshotFunc, logger *applog.Logger) *Conversation {
	if logger == nil {
		logger = applog.Discard()
	}
	return &Conversation{
		messages:  []Message{{Role: RoleAssistant, Content: greetingText, At: time.Now()}},
		responder: responder,
		snapshot:  snapshot,
		pending:   semaphore.NewWeighted(1),
		logger:    logger,
	}
}

// Send appends the user message, asks the responder and appends the reply.
// Responder failures become an apology reply rather than an error.
func (c *Conversation) Send(ctx context.Context, text string) (Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, ErrEmptyMessage
	}
	if !c.pending.TryAcquire(1) {
		return Message{}, ErrBusy
	}
	defer c.pending.Release(1)
	c.busy.Store(true)
	defer c.busy.Store(false)

	c.append(Message{Role: RoleUser, Content: text, At: time.Now()})

	answer, err := c.responder.Respond(ctx, text, c.snapshot())
	if err != nil {
		c.logger.Error("assistant request failed", "responder", c.responder.Name(), "error", err)
		answer = apologyText
	} else if strings.TrimSpace(answer) == "" {
		answer = noAnswerText
	}

	reply := Message{Role: RoleAssistant, Content: answer, At: time.Now()}
	c.append(reply)
	return reply, nil
}

// Pending reports whether a message is waiting for its reply
func (c *Conversation) Pending() bool {
	return c.busy.Load()
}

// Messages returns a copy of the history
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.messages)
}

// Responder returns the name of the active strategy
func (c *Conversation) Responder() string {
	return c.responder.Name()
}

func (c *Conversation) append(m Message) {
	c.mu.Lock()
	c.messages = append(c.messages, m)
	c.mu.Unlock()
}
