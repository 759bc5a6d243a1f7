package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/humanintuition/insight/internal/grok"
)

// fakeChatter records the last request and returns a canned reply.
type fakeChatter struct {
	reply    string
	err      error
	model    string
	messages []grok.Message
}

func (f *fakeChatter) Complete(_ context.Context, model string, messages []grok.Message) (string, error) {
	f.model = model
	f.messages = messages
	return f.reply, f.err
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "clean object", raw: `{"a":1}`, want: `{"a":1}`},
		{name: "leading whitespace", raw: "\n  {\"a\":1}", want: `{"a":1}`},
		{name: "markdown fenced", raw: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "surrounding prose", raw: "Here you go:\n{\"a\":1}\nHope that helps!", want: `{"a":1}`},
		{name: "no braces", raw: "I cannot produce JSON for this.", wantErr: true},
		{name: "invalid salvage", raw: "well { this is not json }", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckKeys(t *testing.T) {
	doc := json.RawMessage(`{"timeline":[],"extra":1}`)
	missing, err := CheckKeys(doc, []string{"timeline", "global_summary"})
	if err != nil {
		t.Fatalf("CheckKeys: %v", err)
	}
	if len(missing) != 1 || missing[0] != "global_summary" {
		t.Errorf("missing = %v, want [global_summary]", missing)
	}

	if _, err := CheckKeys(json.RawMessage(`[1,2]`), nil); err == nil {
		t.Error("expected error for non-object document")
	}
}

func TestBuildProfile(t *testing.T) {
	fc := &fakeChatter{reply: "Sure!\n{\"core_narratives\":[\"x\"]}"}
	a := New(fc, "grok-4-0709")

	doc, err := a.BuildProfile(context.Background(), "=== FILE: a.txt ===\nhello", "team meetings")
	if err != nil {
		t.Fatalf("BuildProfile: %v", err)
	}
	if string(doc) != `{"core_narratives":["x"]}` {
		t.Errorf("doc = %s", doc)
	}

	if fc.model != "grok-4-0709" {
		t.Errorf("model = %q", fc.model)
	}
	if len(fc.messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(fc.messages))
	}
	if fc.messages[0].Role != "system" || !strings.Contains(fc.messages[0].Content, "behavioral profile") {
		t.Errorf("system message = %+v", fc.messages[0])
	}
	if !strings.Contains(fc.messages[1].Content, "Context: team meetings") {
		t.Errorf("user message lost context: %q", fc.messages[1].Content)
	}
}

func TestBuildProfile_NonJSONReply(t *testing.T) {
	fc := &fakeChatter{reply: "I would rather not."}
	a := New(fc, "grok-4-0709")

	if _, err := a.BuildProfile(context.Background(), "text", ""); err == nil {
		t.Fatal("expected error for non-JSON reply")
	}
}

func TestMapEmotions(t *testing.T) {
	fc := &fakeChatter{reply: `{"timeline":[{"segment_id":1}],"global_summary":{"baseline_tone":"warm"}}`}
	a := New(fc, "grok-4-0709")

	doc, err := a.MapEmotions(context.Background(), "Speaker A: hi")
	if err != nil {
		t.Fatalf("MapEmotions: %v", err)
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(doc, &m); err != nil {
		t.Fatalf("doc not an object: %v", err)
	}
	if _, ok := m["timeline"]; !ok {
		t.Error("timeline key missing")
	}

	// The prompt must carry the generated schema.
	if !strings.Contains(fc.messages[0].Content, `"timeline"`) {
		t.Error("emotion system prompt missing schema")
	}
}

func TestAnalyze(t *testing.T) {
	fc := &fakeChatter{reply: "## Brief Overview\nA tense call."}
	a := New(fc, "grok-4-0709")

	got, err := a.Analyze(context.Background(), "Speaker A: hi", "sales call")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !strings.HasPrefix(got, "## Brief Overview") {
		t.Errorf("report = %q", got)
	}
	if !strings.Contains(fc.messages[1].Content, "Context: sales call") {
		t.Errorf("user message = %q", fc.messages[1].Content)
	}
}

func TestReport(t *testing.T) {
	fc := &fakeChatter{reply: "## Brief Overview\nTwo founders negotiate."}
	a := New(fc, "grok-4-0709")

	got, err := a.Report(context.Background(), "[Text: call.txt]\nSpeaker A: hi", "")
	if err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !strings.HasPrefix(got, "## Brief Overview") {
		t.Errorf("report = %q", got)
	}

	if !strings.Contains(fc.messages[0].Content, "Kessler") {
		t.Errorf("system prompt = %q", fc.messages[0].Content)
	}
	// No context: the transcript is sent raw.
	if fc.messages[1].Content != "[Text: call.txt]\nSpeaker A: hi" {
		t.Errorf("user message = %q", fc.messages[1].Content)
	}
}

func TestReport_WithContext(t *testing.T) {
	fc := &fakeChatter{reply: "## Brief Overview\nok"}
	a := New(fc, "grok-4-0709")

	if _, err := a.Report(context.Background(), "Speaker A: hi", "sales call"); err != nil {
		t.Fatalf("Report: %v", err)
	}
	if !strings.HasPrefix(fc.messages[1].Content, "Context: sales call\n\n") {
		t.Errorf("user message lost context: %q", fc.messages[1].Content)
	}
}

func TestAnalyze_UpstreamError(t *testing.T) {
	fc := &fakeChatter{err: errors.New("boom")}
	a := New(fc, "grok-4-0709")

	if _, err := a.Analyze(context.Background(), "text", ""); err == nil {
		t.Fatal("expected error")
	}
}

func TestEmotionSchemaJSON_IsValidSchema(t *testing.T) {
	var schema map[string]any
	if err := json.Unmarshal([]byte(EmotionSchemaJSON), &schema); err != nil {
		t.Fatalf("schema is not valid JSON: %v", err)
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatal("schema has no properties")
	}
	for _, key := range []string{"timeline", "global_summary"} {
		if _, ok := props[key]; !ok {
			t.Errorf("schema missing property %q", key)
		}
	}
}
