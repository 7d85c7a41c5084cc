package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func quizItemSchema() *Schema {
	return &Schema{
		Name:        "test-quiz-item",
		Description: "A multiple choice item",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{"type": "string", "minLength": 1},
				"options": map[string]any{
					"type":     "object",
					"required": []any{"A", "B", "C", "D"},
				},
				"correctAnswer": map[string]any{"type": "string", "enum": []any{"A", "B", "C", "D"}},
			},
			"required": []any{"question", "options", "correctAnswer"},
		},
	}
}

func TestValidateJSON(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"question":"What does REST stand for?","options":{"A":"a","B":"b","C":"c","D":"d"},"correctAnswer":"A"}`, false},
		{"missing option", `{"question":"q","options":{"A":"a","B":"b","C":"c"},"correctAnswer":"A"}`, true},
		{"bad label", `{"question":"q","options":{"A":"a","B":"b","C":"c","D":"d"},"correctAnswer":"E"}`, true},
		{"empty question", `{"question":"","options":{"A":"a","B":"b","C":"c","D":"d"},"correctAnswer":"B"}`, true},
		{"wrong type", `{"question":7,"options":{"A":"a","B":"b","C":"c","D":"d"},"correctAnswer":"B"}`, true},
		{"malformed", `{not json}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJSON(quizItemSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var invErr *ErrInvalidResponse
				if !errors.As(err, &invErr) {
					t.Fatalf("expected ErrInvalidResponse, got: %T", err)
				}
			}
		})
	}
}

func TestValidateJSON_NilSchema(t *testing.T) {
	if err := ValidateJSON(nil, json.RawMessage(`not even json`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateValue_DecodedInput(t *testing.T) {
	var v any
	if err := json.Unmarshal([]byte(`{"question":"q","options":{"A":"1","B":"2","C":"3","D":"4"},"correctAnswer":"D"}`), &v); err != nil {
		t.Fatal(err)
	}
	if err := ValidateValue(quizItemSchema(), v, nil); err != nil {
		t.Fatalf("expected valid, got %v", err)
	}
}

func TestFinishResponse(t *testing.T) {
	err := finishResponse(json.RawMessage(`[{"question":`), StopMaxTokens)
	var maxTok *ErrMaxTokensExceeded
	if !errors.As(err, &maxTok) {
		t.Fatalf("expected ErrMaxTokensExceeded, got %v", err)
	}
	if string(maxTok.Content) != `[{"question":` {
		t.Errorf("truncated content not kept: %s", maxTok.Content)
	}

	if err := finishResponse(json.RawMessage("free text"), StopEnd); err != nil {
		t.Fatalf("free text should pass, got %v", err)
	}

	err = finishResponse(json.RawMessage(" \n"), StopEnd)
	var inv *ErrInvalidResponse
	if !errors.As(err, &inv) {
		t.Fatalf("expected ErrInvalidResponse for blank output, got %v", err)
	}
}
