// Package agent holds the conversational session backed by a behavioral
// profile. The profile document is embedded into the system prompt and the
// full exchange history is resent on every turn.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/humanintuition/insight/internal/grok"
	"github.com/humanintuition/insight/internal/prompts"
)

// Chatter is the completion surface the session needs.
type Chatter interface {
	Complete(ctx context.Context, model string, messages []grok.Message) (string, error)
}

// Session is a profile-grounded chat conversation. Not safe for concurrent
// use; the REPL drives it from a single goroutine.
type Session struct {
	client  Chatter
	model   string
	history []grok.Message
}

// NewSession builds a session whose system prompt embeds the given profile
// document.
func NewSession(client Chatter, model string, profileDoc json.RawMessage) (*Session, error) {
	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(profileDoc); err != nil {
		return nil, fmt.Errorf("formatting profile for prompt: %w", err)
	}

	return &Session{
		client: client,
		model:  model,
		history: []grok.Message{
			grok.SystemMessage(prompts.AgentSystem(strings.TrimSpace(buf.String()))),
		},
	}, nil
}

// Ask sends one user turn and returns the assistant's reply. Both turns are
// appended to the session history; on error the history is left untouched.
func (s *Session) Ask(ctx context.Context, input string) (string, error) {
	messages := append(append([]grok.Message{}, s.history...), grok.UserMessage(input))

	reply, err := s.client.Complete(ctx, s.model, messages)
	if err != nil {
		return "", err
	}

	s.history = append(s.history, grok.UserMessage(input), grok.AssistantMessage(reply))
	return reply, nil
}

// Turns reports how many user/assistant exchanges the session has seen.
func (s *Session) Turns() int {
	return (len(s.history) - 1) / 2
}
