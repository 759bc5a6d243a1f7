package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON returns the JSON object contained in a model reply. Models
// sometimes wrap the object in markdown fences or surrounding prose; in that
// case the substring from the first '{' to the last '}' is salvaged.
func ExtractJSON(raw string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed), nil
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("model did not return JSON-like content")
	}

	candidate := raw[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil, fmt.Errorf("salvaged content is not valid JSON")
	}
	return json.RawMessage(candidate), nil
}

// CheckKeys reports which of the wanted top-level keys are missing from a
// JSON object. A non-object document fails outright.
func CheckKeys(doc json.RawMessage, wanted []string) ([]string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(doc, &obj); err != nil {
		return nil, fmt.Errorf("document is not a JSON object: %w", err)
	}

	var missing []string
	for _, k := range wanted {
		if _, ok := obj[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing, nil
}
