package llm

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Provider is the core abstraction for LLM interaction.
// Providers are unreliable by contract: they may fail, time out, or return
// text that does not match what the prompt asked for. Callers validate.
type Provider interface {
	// Generate sends a prompt to the LLM and returns the model text.
	// Truncated or empty output is reported as an error, never returned.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes what to send to the LLM.
type Request struct {
	// System is the system prompt. Sets the LLM's role and constraints.
	System string

	// Messages is the conversation history. Question generation is
	// single-turn, so this usually holds one user message.
	Messages []Message

	// JSON asks for a JSON-only response where the provider has a switch
	// for it. The caller still validates what comes back.
	JSON bool

	// Prefill opens the assistant turn so the model continues from it.
	// Providers that cannot continue a partial turn ignore it. When
	// honored, Content starts with Prefill.
	Prefill string

	// MaxTokens is the maximum number of tokens in the response.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Message represents a single message in the conversation.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema used to validate decoded model output.
// Use it by pointer; the compiled form is cached inside.
type Schema struct {
	Name        string // kebab-case, e.g. "quiz-item"
	Description string
	Definition  map[string]any

	once     sync.Once
	compiled *jsonschema.Schema
	err      error
}

// Response holds the LLM's output.
type Response struct {
	// Content is the generated output as the model wrote it.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is StopEnd for every successful response; truncation
	// surfaces as ErrMaxTokensExceeded instead.
	StopReason string
}

// Normalized stop reasons.
const (
	StopEnd       = "end"
	StopMaxTokens = "max_tokens"
)

// Text returns the response content as a string.
func (r *Response) Text() string {
	if r == nil {
		return ""
	}
	return string(r.Content)
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
