package model

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/goswarm/core"
)

// ToolDefinition declaratively exposes a callable function to the model.
type ToolDefinition struct {
	Type     string             `json:"type"` // "function"
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes an individual function (tool) exposed to the
// model. Parameters is a JSON Schema object.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// Request captures the normalized model input for one gateway round-trip. The
// Messages slice is an immutable snapshot: the orchestration loop never
// mutates a sequence the gateway is still processing.
type Request struct {
	Instructions      string           `json:"instructions"`
	Model             string           `json:"model"`
	Messages          []core.Message   `json:"messages"`
	Tools             []ToolDefinition `json:"tools,omitempty"`
	ToolChoice        core.ToolChoice  `json:"-"`
	ParallelToolCalls bool             `json:"parallel_tool_calls,omitempty"`
}

// TokenUsage captures token usage statistics for a response.
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Response is the outcome of one gateway round-trip: either final-for-turn
// content (no tool calls), or one-or-more tool-call requests possibly
// accompanied by partial text.
type Response struct {
	Content      string          `json:"content,omitempty"`
	ToolCalls    []core.ToolCall `json:"tool_calls,omitempty"`
	FinishReason string          `json:"finish_reason,omitempty"`
	Usage        *TokenUsage     `json:"usage,omitempty"`
}

// HasToolCalls reports whether the model requested tool executions.
func (r *Response) HasToolCalls() bool { return len(r.ToolCalls) > 0 }

// Info contains metadata about a model implementation.
type Info struct {
	Name          string `json:"name"`
	Provider      string `json:"provider"` // "openai", "anthropic", "mock", etc.
	SupportsTools bool   `json:"supports_tools"`
}

// Model is the gateway interface the orchestration loop drives. Calls within
// a single run are strictly sequential; implementations need not support
// concurrent calls for one conversation.
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)

	// Info returns information about the model implementation.
	Info() Info
}

// GatewayError wraps transport, auth or rate-limit failures of a model
// provider. It always aborts the run; the core never retries it.
type GatewayError struct {
	Provider string
	Err      error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("model gateway error (%s): %v", e.Provider, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// NewGatewayError wraps a provider error. A nil err yields nil.
func NewGatewayError(provider string, err error) error {
	if err == nil {
		return nil
	}
	return &GatewayError{Provider: provider, Err: err}
}

// MockModel is a scripted in-memory Model for tests and examples. Enqueued
// turns are replayed in order; every request received is recorded so tests
// can assert on instructions, history snapshots and tool schemas.
type MockModel struct {
	mu       sync.Mutex
	info     Info
	script   []mockTurn
	requests []Request
}

type mockTurn struct {
	resp Response
	err  error
}

// NewMockModel constructs a MockModel with tool support enabled.
func NewMockModel(name string) *MockModel {
	return &MockModel{
		info: Info{Name: name, Provider: "mock", SupportsTools: true},
	}
}

// EnqueueText scripts a final-for-turn text response.
func (m *MockModel) EnqueueText(text string) {
	m.enqueue(mockTurn{resp: Response{Content: text, FinishReason: "stop"}})
}

// EnqueueToolCalls scripts a turn requesting the given tool calls.
func (m *MockModel) EnqueueToolCalls(calls ...core.ToolCall) {
	m.enqueue(mockTurn{resp: Response{ToolCalls: calls, FinishReason: "tool_calls"}})
}

// EnqueueResponse scripts an arbitrary response.
func (m *MockModel) EnqueueResponse(resp Response) {
	m.enqueue(mockTurn{resp: resp})
}

// EnqueueError scripts a gateway failure.
func (m *MockModel) EnqueueError(err error) {
	m.enqueue(mockTurn{err: err})
}

func (m *MockModel) enqueue(turn mockTurn) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, turn)
}

// Requests returns a copy of all requests received so far.
func (m *MockModel) Requests() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]Request, len(m.requests))
	copy(cp, m.requests)
	return cp
}

// Complete implements Model by replaying the next scripted turn. An empty
// script yields a generic text response.
func (m *MockModel) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = append(m.requests, req)

	if len(m.script) == 0 {
		return &Response{Content: fmt.Sprintf("mock response from %s", m.info.Name), FinishReason: "stop"}, nil
	}

	turn := m.script[0]
	m.script = m.script[1:]

	if turn.err != nil {
		return nil, NewGatewayError("mock", turn.err)
	}
	resp := turn.resp
	return &resp, nil
}

// Info implements Model.
func (m *MockModel) Info() Info { return m.info }
