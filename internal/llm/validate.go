package llm

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ValidateJSON decodes raw and checks it against schema. A nil schema
// accepts anything. Failures come back as *ErrInvalidResponse.
func ValidateJSON(schema *Schema, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}
	return ValidateValue(schema, v, raw)
}

// ValidateValue checks an already decoded value. raw only travels with
// the returned error.
func ValidateValue(schema *Schema, v any, raw json.RawMessage) error {
	if schema == nil {
		return nil
	}
	compiled, err := schema.compile()
	if err != nil {
		return &ErrInvalidResponse{Content: raw, Err: err}
	}
	if err := compiled.Validate(v); err != nil {
		return &ErrInvalidResponse{Content: raw, Err: fmt.Errorf("schema %s: %w", schema.Name, err)}
	}
	return nil
}

// compile builds the validator once per Schema value.
func (s *Schema) compile() (*jsonschema.Schema, error) {
	s.once.Do(func() {
		// The compiler only understands plain decoded JSON, so Go-typed
		// definitions ([]string and the like) go through a round trip.
		var doc any
		b, err := json.Marshal(s.Definition)
		if err == nil {
			err = json.Unmarshal(b, &doc)
		}
		if err != nil {
			s.err = fmt.Errorf("schema %s: %w", s.Name, err)
			return
		}

		url := "mem://" + s.Name + ".json"
		c := jsonschema.NewCompiler()
		if err := c.AddResource(url, doc); err != nil {
			s.err = fmt.Errorf("schema %s: %w", s.Name, err)
			return
		}
		s.compiled, s.err = c.Compile(url)
	})
	return s.compiled, s.err
}

// finishResponse rejects output no caller can use: a reply cut off at
// the token limit or one with no text in it.
func finishResponse(content json.RawMessage, stopReason string) error {
	if stopReason == StopMaxTokens {
		return &ErrMaxTokensExceeded{Content: content}
	}
	if len(bytes.TrimSpace(content)) == 0 {
		return &ErrInvalidResponse{Content: content, Err: errors.New("empty response")}
	}
	return nil
}
