package core

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Role identifies the author category of a history message.
type Role string

const (
	// RoleSystem marks caller-supplied system prompt material.
	RoleSystem Role = "system"
	// RoleUser marks end-user input.
	RoleUser Role = "user"
	// RoleAssistant marks model output (text and/or tool-call requests).
	RoleAssistant Role = "assistant"
	// RoleTool marks a tool-call result answering an assistant request.
	RoleTool Role = "tool"
	// RoleHandoff marks an internal audit record of an agent switch. Gateway
	// adapters skip these messages; they are never model-visible.
	RoleHandoff Role = "handoff"
)

// ToolCall is a model-issued request to invoke a named tool. The ID is unique
// within a turn and links the eventual result back to this request.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments,omitempty"` // serialized JSON argument payload
}

// HandoffRecord notes a switch of the active agent so later turns and the
// caller can audit why behavior changed.
type HandoffRecord struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Message is one entry of the conversation history. History is an ordered,
// append-only sequence; once appended a message is never mutated.
type Message struct {
	Role       Role           `json:"role"`
	Content    string         `json:"content,omitempty"`
	ToolCalls  []ToolCall     `json:"tool_calls,omitempty"`   // assistant messages only
	ToolCallID string         `json:"tool_call_id,omitempty"` // tool messages: request linkage
	ToolName   string         `json:"tool_name,omitempty"`
	Error      string         `json:"error,omitempty"` // set when a tool result records a failure
	Handoff    *HandoffRecord `json:"handoff,omitempty"`
}

// HasToolCalls reports whether the message carries pending tool-call requests.
func (m Message) HasToolCalls() bool { return len(m.ToolCalls) > 0 }

// IsToolError reports whether the message records a failed tool execution.
func (m Message) IsToolError() bool { return m.Role == RoleTool && m.Error != "" }

// NewSystemMessage creates a system prompt message.
func NewSystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// NewUserMessage creates an end-user input message.
func NewUserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// NewAssistantMessage creates a final-for-turn assistant text message.
func NewAssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Content: text}
}

// NewToolCallMessage creates the assistant message carrying one or more
// tool-call requests, optionally accompanied by partial text.
func NewToolCallMessage(text string, calls ...ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: calls}
}

// NewToolResultMessage records a successful tool result. The payload must be
// the serialized JSON (or plain text) the model should see.
func NewToolResultMessage(callID, toolName, payload string) Message {
	return Message{Role: RoleTool, ToolCallID: callID, ToolName: toolName, Content: payload}
}

// NewToolErrorMessage records a failed tool execution as a structured error
// payload. The raw fault never reaches the model; it sees {"error": ...} and
// can react to it on the next turn.
func NewToolErrorMessage(callID, toolName, errMsg string) Message {
	payload, err := json.Marshal(map[string]string{"error": errMsg})
	if err != nil {
		payload = []byte(fmt.Sprintf("{%q:%q}", "error", "tool execution failed"))
	}
	return Message{
		Role:       RoleTool,
		ToolCallID: callID,
		ToolName:   toolName,
		Content:    string(payload),
		Error:      errMsg,
	}
}

// NewHandoffMessage records an agent switch in the history.
func NewHandoffMessage(from, to string) Message {
	return Message{
		Role:    RoleHandoff,
		Content: fmt.Sprintf("active agent switched from %s to %s", from, to),
		Handoff: &HandoffRecord{From: from, To: to},
	}
}

// CloneHistory returns a shallow copy of the history slice. Messages are
// immutable after append, so copying the backing array is sufficient to hand
// the gateway a snapshot the loop will never mutate underneath it.
func CloneHistory(history []Message) []Message {
	if history == nil {
		return nil
	}
	cp := make([]Message, len(history))
	copy(cp, history)
	return cp
}

// StopReason explains why an orchestration run terminated.
type StopReason string

const (
	// StopNaturalCompletion: the model produced final content with no further
	// tool calls.
	StopNaturalCompletion StopReason = "natural_completion"
	// StopMaxTurnsExceeded: the configured turn budget was exhausted. This is
	// a normal termination reason, not a failure.
	StopMaxTurnsExceeded StopReason = "max_turns_exceeded"
	// StopToolRequested: a tool returned an execution-stop directive.
	StopToolRequested StopReason = "tool_requested"
	// StopToolCallsPending: tool execution is disabled and the model issued
	// tool calls the caller must resolve manually.
	StopToolCallsPending StopReason = "tool_calls_pending"
	// StopFailed: the run aborted on an unrecoverable gateway error.
	StopFailed StopReason = "failed"
)

// NewID generates a unique identifier for runs and tool calls.
func NewID() string { return uuid.NewString() }
