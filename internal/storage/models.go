package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Kinds of stored analysis results.
const (
	KindProfile       = "profile"
	KindEmotions      = "emotions"
	KindAnalysis      = "analysis"
	KindTranscription = "transcription"
)

// Analysis is one completed run: what went in, what came out.
// Result holds the model output verbatim (JSON for profile/emotions,
// markdown for analysis, plain text for transcription).
type Analysis struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	SourceFiles string    `json:"source_files"` // JSON array of input filenames
	ContextNote string    `json:"context_note,omitempty"`
	Transcript  string    `json:"transcript,omitempty"`
	Result      string    `json:"result"`
}
