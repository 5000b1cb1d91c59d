// Package tool implements the function / tool calling subsystem: a registry
// mapping tool names to schema-described callables, a generic FunctionTool
// adapter with JSON-Schema argument validation, and the built-in
// transfer_to_agent tool used for handoffs.
package tool

import (
	"context"
	"fmt"
)

// Tool is the polymorphic capability interface the registry owns: a named,
// schema-described callable an agent may invoke.
//
// Implementations should:
//   - Provide clear, descriptive names (snake_case recommended) and
//     descriptions; both are shown to the model
//   - Define a proper JSON schema for parameters
//   - Be safe for concurrent use; parallel turns may call the same tool from
//     multiple goroutines
//   - Never mutate registry state
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description provided to the model
	// so it understands when and how to use the tool.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with arguments already validated against the
	// declared schema. Results must be JSON-serializable; a *handoff.Handoff
	// or *handoff.Stop result signals orchestration control flow.
	Call(ctx context.Context, args map[string]any) (any, error)
}

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{Tool: tool, Message: message, Code: code}
}

// DuplicateToolError is returned when registering a name already present.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("tool %q already registered", e.Name)
}

// UnknownToolError is returned when resolving a name not in the registry.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}
