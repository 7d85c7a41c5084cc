package questiongen

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ronitrai27/clario-career-platform-sub000/internal/llm"
)

// itemOutput is one raw element of the provider's array.
type itemOutput struct {
	Question      string            `json:"question"`
	Options       map[string]string `json:"options"`
	CorrectAnswer string            `json:"correctAnswer"`
}

// stripFences removes markdown code fences and any prose around the
// outermost JSON array.
func stripFences(text string) string {
	s := strings.TrimSpace(text)

	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		// Drop the info string, e.g. "json".
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = ""
		}
		if end := strings.LastIndex(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.IndexByte(s, '[')
	end := strings.LastIndexByte(s, ']')
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return s
}

// parseItems decodes the provider text into candidate questions. The
// whole response fails only if it is not a JSON array; individual
// elements that do not match ItemSchema are reported and skipped.
func parseItems(text string, tier Tier) ([]Question, []error, error) {
	cleaned := stripFences(text)

	var elems []json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &elems); err != nil {
		return nil, nil, &llm.ErrInvalidResponse{
			Content: json.RawMessage(text),
			Err:     fmt.Errorf("response is not a JSON array: %w", err),
		}
	}

	var (
		out  []Question
		errs []error
	)
	for i, elem := range elems {
		if err := llm.ValidateJSON(ItemSchema, elem); err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		var raw itemOutput
		if err := json.Unmarshal(elem, &raw); err != nil {
			errs = append(errs, fmt.Errorf("item %d: %w", i, err))
			continue
		}
		out = append(out, raw.toQuestion(tier))
	}
	return out, errs, nil
}

// toQuestion normalizes labels and whitespace. Unknown labels are kept so
// the validator chain can reject them.
func (o itemOutput) toQuestion(tier Tier) Question {
	opts := make(map[Label]string, len(o.Options))
	for k, v := range o.Options {
		l, err := ParseLabel(k)
		if err != nil {
			l = Label(k)
		}
		opts[l] = strings.TrimSpace(v)
	}

	correct, err := ParseLabel(o.CorrectAnswer)
	if err != nil {
		correct = Label(o.CorrectAnswer)
	}

	return Question{
		Text:    strings.TrimSpace(o.Question),
		Options: opts,
		Correct: correct,
		Tier:    tier,
		Source:  SourceLLM,
	}
}
