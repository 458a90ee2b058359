package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	apperrors "github.com/nasunstar/Agent-App-sub000/internal/errors"
)

// Extraction is a model-produced structured event extraction.
type Extraction struct {
	// Type classifies the message, e.g. "schedule", "reminder", "none".
	Type string `json:"type"`
	// Confidence is the model's self-assessed score in [0,1]. Unlike the
	// rule-based resolver's fixed 1.0, this is the value callers gate
	// review queues on.
	Confidence float64 `json:"confidence"`
	// ExtractedData carries the event fields; startAt/endAt are epoch
	// milliseconds.
	ExtractedData map[string]any `json:"extractedData"`
}

// ExtractionTypeNone means the model found no calendar-worthy event.
const ExtractionTypeNone = "none"

const extractionSystemPrompt = `You are an event extraction engine for a personal assistant.
Given a message, decide whether it contains a calendar-worthy event and extract it.

Reply with a single JSON object and nothing else:
{
  "type": "schedule" | "none",
  "confidence": 0.0-1.0,
  "extractedData": {
    "title": string,
    "location": string (optional),
    "startAt": epoch milliseconds,
    "endAt": epoch milliseconds (optional)
  }
}

The current time is %s (%s). Interpret all dates and times in that timezone.
If the message contains no event, reply {"type":"none","confidence":0.0,"extractedData":{}}.`

// EventExtractor asks the LLM to extract an event from a message. It owns
// prompt construction and response parsing; the year-correction policy is
// applied by the caller before persistence.
type EventExtractor struct {
	llm LLMService
	loc *time.Location
}

// NewEventExtractor creates an extractor bound to the deployment timezone.
func NewEventExtractor(llm LLMService, loc *time.Location) *EventExtractor {
	if loc == nil {
		loc = time.UTC
	}
	return &EventExtractor{llm: llm, loc: loc}
}

// ExtractEvent runs one extraction. The reference instant is threaded in
// explicitly so the prompt never depends on the server's wall clock.
func (e *EventExtractor) ExtractEvent(ctx context.Context, text string, referenceMillis int64) (*Extraction, error) {
	ref := time.UnixMilli(referenceMillis).In(e.loc)
	system := fmt.Sprintf(extractionSystemPrompt, ref.Format("2006-01-02 15:04 (Mon)"), e.loc.String())

	reply, err := e.llm.Chat(ctx, []Message{
		{Role: "system", Content: system},
		{Role: "user", Content: text},
	})
	if err != nil {
		return nil, apperrors.LLMUnavailable("event extraction call failed", err)
	}

	extraction, err := ParseExtractionResponse(reply)
	if err != nil {
		return nil, apperrors.ExtractionFailed("unparseable extraction response", err)
	}
	return extraction, nil
}

// ParseExtractionResponse parses the model's reply into an Extraction.
// Models wrap JSON in markdown fences or prepend prose often enough that the
// parser cuts the reply down to its outermost JSON object first.
func ParseExtractionResponse(reply string) (*Extraction, error) {
	cleaned := strings.TrimSpace(reply)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object in reply")
	}
	cleaned = cleaned[start : end+1]

	var raw struct {
		Type          string         `json:"type"`
		Confidence    float64        `json:"confidence"`
		ExtractedData map[string]any `json:"extractedData"`
		// Legacy field name kept for older prompt versions.
		LegacyData map[string]any `json:"extracted_data"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		slog.Debug("failed to parse extraction JSON", "error", err, "reply", reply)
		return nil, err
	}

	data := raw.ExtractedData
	if data == nil {
		data = raw.LegacyData
	}
	if data == nil {
		data = map[string]any{}
	}

	extraction := &Extraction{
		Type:          raw.Type,
		Confidence:    clampConfidence(raw.Confidence),
		ExtractedData: data,
	}
	if extraction.Type == "" {
		extraction.Type = ExtractionTypeNone
	}
	return extraction, nil
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
