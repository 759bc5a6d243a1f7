// Package analysis orchestrates the transcript analysis modes: behavioral
// profile, emotional map, and conversation report.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/humanintuition/insight/internal/grok"
	"github.com/humanintuition/insight/internal/prompts"
)

// Chatter is the chat-completion surface the analyzer needs.
// Implemented by grok.Client.
type Chatter interface {
	Complete(ctx context.Context, model string, messages []grok.Message) (string, error)
}

// Analyzer runs transcript analyses against the configured model.
type Analyzer struct {
	client Chatter
	model  string
}

// New creates an Analyzer.
func New(client Chatter, model string) *Analyzer {
	return &Analyzer{client: client, model: model}
}

// Model returns the configured model name.
func (a *Analyzer) Model() string {
	return a.model
}

// emotionKeys are the top-level keys an emotional map must carry.
var emotionKeys = []string{"timeline", "global_summary"}

// BuildProfile sends the combined transcript block through the profile
// prompt and returns the salvaged profile JSON document.
func (a *Analyzer) BuildProfile(ctx context.Context, transcriptBlock, contextNote string) (json.RawMessage, error) {
	raw, err := a.client.Complete(ctx, a.model, []grok.Message{
		grok.SystemMessage(prompts.Profile),
		grok.UserMessage(prompts.ProfileUser(contextNote, transcriptBlock)),
	})
	if err != nil {
		return nil, fmt.Errorf("profile completion: %w", err)
	}

	doc, err := ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing profile response: %w", err)
	}
	return doc, nil
}

// MapEmotions sends a single transcript through the emotional mapping prompt
// and returns the salvaged emotional map JSON document. Missing expected keys
// are logged, not fatal: the document is the model's to shape.
func (a *Analyzer) MapEmotions(ctx context.Context, transcriptText string) (json.RawMessage, error) {
	raw, err := a.client.Complete(ctx, a.model, []grok.Message{
		grok.SystemMessage(prompts.EmotionSystem(EmotionSchemaJSON)),
		grok.UserMessage(transcriptText),
	})
	if err != nil {
		return nil, fmt.Errorf("emotional mapping completion: %w", err)
	}

	doc, err := ExtractJSON(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing emotional map response: %w", err)
	}

	missing, err := CheckKeys(doc, emotionKeys)
	if err != nil {
		return nil, fmt.Errorf("checking emotional map: %w", err)
	}
	if len(missing) > 0 {
		slog.Warn("emotional map is missing expected keys", "missing", missing)
	}
	return doc, nil
}

// Analyze runs the conversation-analyst prompt and returns the markdown report.
func (a *Analyzer) Analyze(ctx context.Context, transcriptText, contextNote string) (string, error) {
	report, err := a.client.Complete(ctx, a.model, []grok.Message{
		grok.SystemMessage(prompts.Analyst),
		grok.UserMessage(prompts.AnalystUser(contextNote, transcriptText)),
	})
	if err != nil {
		return "", fmt.Errorf("analysis completion: %w", err)
	}
	if report == "" {
		return "", fmt.Errorf("malformed API response: empty analysis")
	}
	return report, nil
}

// Report runs the deep-analysis report prompt used by the upload server. The
// transcript goes through raw, so the model sees the bracketed source headers
// unchanged.
func (a *Analyzer) Report(ctx context.Context, transcriptText, contextNote string) (string, error) {
	report, err := a.client.Complete(ctx, a.model, []grok.Message{
		grok.SystemMessage(prompts.Report),
		grok.UserMessage(prompts.ReportUser(contextNote, transcriptText)),
	})
	if err != nil {
		return "", fmt.Errorf("report completion: %w", err)
	}
	if report == "" {
		return "", fmt.Errorf("malformed API response: empty report")
	}
	return report, nil
}
