package analysis

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// TimelineEntry is one segment of the emotional map timeline.
type TimelineEntry struct {
	SegmentID        int      `json:"segment_id" jsonschema:"required,description=Sequential segment number starting at 1"`
	TextSnippet      string   `json:"text_snippet" jsonschema:"required,description=Short snippet quoted from the transcript"`
	ApproxPosition   string   `json:"approx_position" jsonschema:"required,enum=start,enum=middle,enum=end"`
	Speaker          string   `json:"speaker" jsonschema:"required,description=Speaker label such as A or B, or unknown"`
	InferredEmotions []string `json:"inferred_emotions" jsonschema:"required,description=Emotions inferred from language"`
	Intensity        string   `json:"intensity" jsonschema:"required,enum=low,enum=medium,enum=high"`
	Notes            string   `json:"notes" jsonschema:"required,description=Short natural language note"`
}

// EmotionSummary is the whole-conversation summary of the emotional map.
type EmotionSummary struct {
	BaselineTone      string   `json:"baseline_tone" jsonschema:"required,description=Overall baseline tone in plain language"`
	MainEmotions      []string `json:"main_emotions" jsonschema:"required"`
	KeyTriggers       []string `json:"key_triggers" jsonschema:"required,description=Topics or moments that shift the emotional tone"`
	RegulationStyle   string   `json:"regulation_style" jsonschema:"required,description=How they seem to manage difficult feelings"`
	ReflectionPrompts []string `json:"reflection_prompts" jsonschema:"required,description=Journal-style questions for awareness"`
}

// EmotionalMap is the structured output of emotional mapping. The document
// written to disk stays the model's raw JSON; this type exists to derive the
// schema shown to the model and for surface checks.
type EmotionalMap struct {
	Timeline      []TimelineEntry `json:"timeline" jsonschema:"required"`
	GlobalSummary EmotionSummary  `json:"global_summary" jsonschema:"required"`
}

// EmotionSchemaJSON is the indented JSON schema for EmotionalMap, embedded
// into the emotional-mapping prompt.
var EmotionSchemaJSON = generateSchemaJSON[EmotionalMap]()

func generateSchemaJSON[T any]() string {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  false,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
	}
	var v T
	schema := reflector.Reflect(v)
	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		// Reflection over a static type; failure here is a programming error.
		panic(err)
	}
	return string(b)
}
