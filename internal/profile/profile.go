// Package profile reads and writes the behavioral profile document
// (profile.json). The document itself is the model's JSON, stored verbatim;
// this package only performs surface-level checks on it.
package profile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultPath is where profile build writes and the superagent reads.
const DefaultPath = "profile.json"

// ErrNotFound is returned when the profile file does not exist yet.
var ErrNotFound = errors.New("profile not found")

// RequiredKeys are the top-level keys the profile prompt asks the model for.
var RequiredKeys = []string{
	"core_narratives",
	"patterns_under_stress",
	"emotional_pattern",
	"shadow_material",
	"growth_edges",
	"decision_style",
	"communication_style",
	"values_and_motivations",
	"framework_lenses",
	"reflection_prompts",
}

// Load reads a profile document from path. A missing file maps to
// ErrNotFound so callers can tell the user to build a profile first.
func Load(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w at %s — run `insight profile build` first", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("profile at %s is not a JSON object: %w", path, err)
	}
	return json.RawMessage(data), nil
}

// Save writes a profile document to path, indented, via a temp file rename
// so a crash can't leave a half-written profile behind.
func Save(path string, doc json.RawMessage) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return fmt.Errorf("formatting profile: %w", err)
	}
	buf.WriteByte('\n')

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".profile-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing profile: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing profile: %w", err)
	}
	return nil
}

// MissingKeys returns the RequiredKeys absent from the document's top level.
func MissingKeys(doc json.RawMessage) ([]string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(doc, &obj); err != nil {
		return nil, fmt.Errorf("profile is not a JSON object: %w", err)
	}

	var missing []string
	for _, k := range RequiredKeys {
		if _, ok := obj[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing, nil
}

// Indented returns the document pretty-printed for prompt embedding.
func Indented(doc json.RawMessage) (string, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, doc, "", "  "); err != nil {
		return "", fmt.Errorf("formatting profile: %w", err)
	}
	return buf.String(), nil
}
