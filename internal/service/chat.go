package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/timmy/epigraph/internal/domain"
	"github.com/timmy/epigraph/internal/logger"
	"github.com/timmy/epigraph/internal/prompts"
)

// ChatOrchestrator keeps one in-memory conversation with the domain assistant.
type ChatOrchestrator struct {
	gateway  AIGateway
	inFlight atomic.Bool

	mu       sync.Mutex
	messages []domain.ChatMessage
}

// NewChatOrchestrator creates a conversation seeded with the assistant greeting.
func NewChatOrchestrator(gateway AIGateway) *ChatOrchestrator {
	return &ChatOrchestrator{
		gateway: gateway,
		messages: []domain.ChatMessage{
			{Role: domain.ChatRoleAssistant, Content: prompts.ChatGreeting},
		},
	}
}

// Send appends a user message and the assistant's reply.
// Parameters:
//   - ctx: request context.
//   - text: the user's question; surrounding whitespace is dropped.
//
// Returns:
//   - domain.ChatMessage: the appended assistant message, which is the fixed
//     apology when the model call fails.
//   - error: *domain.ValidationError for blank text, ErrBusy while a reply is pending.
func (o *ChatOrchestrator) Send(ctx context.Context, text string) (domain.ChatMessage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ChatMessage{}, &domain.ValidationError{Field: "message", Reason: "message is empty"}
	}
	if !o.inFlight.CompareAndSwap(false, true) {
		return domain.ChatMessage{}, ErrBusy
	}
	defer o.inFlight.Store(false)

	o.mu.Lock()
	prior := make([]domain.ChatMessage, len(o.messages))
	copy(prior, o.messages)
	o.messages = append(o.messages, domain.ChatMessage{Role: domain.ChatRoleUser, Content: text})
	o.mu.Unlock()

	reply := domain.ChatMessage{Role: domain.ChatRoleAssistant}
	answer, err := o.gateway.Chat(ctx, prompts.ComposeChatMessage(text), prior)
	if err != nil {
		logger.FromContext(ctx).WithError(err).Error("Chat reply failed")
		reply.Content = prompts.ChatApology
	} else {
		reply.Content = answer
	}

	o.mu.Lock()
	o.messages = append(o.messages, reply)
	o.mu.Unlock()

	return reply, nil
}

// Messages returns a copy of the conversation in order.
func (o *ChatOrchestrator) Messages() []domain.ChatMessage {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]domain.ChatMessage, len(o.messages))
	copy(out, o.messages)
	return out
}
