package tool

import (
	"context"
	"strings"

	"github.com/hupe1980/goswarm/internal/util"
	"github.com/xeipuuv/gojsonschema"
)

// Func is the signature a plain Go function must satisfy to be exposed as a
// tool. Arguments arrive already validated against the declared schema.
type Func func(ctx context.Context, args map[string]any) (any, error)

// FunctionTool is a generic adapter that exposes a plain Go function as a
// goswarm tool.
//
// Responsibilities:
//   - Holds a JSON-Schema parameter specification
//   - Validates model-supplied arguments against that schema before execution
//   - Normalizes error handling so callers receive *ToolError with consistent
//     codes: VALIDATION_ERROR for schema/argument mismatch, EXECUTION_ERROR
//     for underlying function failures (custom codes preserved if the
//     function returns *ToolError directly)
//
// A FunctionTool has no internal mutable state after construction and is safe
// for concurrent use by multiple goroutines.
type FunctionTool struct {
	name        string
	description string
	parameters  map[string]any
	schema      *gojsonschema.Schema // nil when parameters are nil (validation skipped)
	schemaErr   error
	fn          Func
}

// NewFunctionTool constructs a FunctionTool from explicit schema and function.
//
// Example:
//
//	sumTool := NewFunctionTool(
//	  "calculate_sum",
//	  "Calculate the sum of two numbers",
//	  map[string]any{
//	    "type": "object",
//	    "properties": map[string]any{
//	      "a": map[string]any{"type": "number"},
//	      "b": map[string]any{"type": "number"},
//	    },
//	    "required": []string{"a", "b"},
//	  },
//	  func(ctx context.Context, args map[string]any) (any, error) {
//	    return args["a"].(float64) + args["b"].(float64), nil
//	  },
//	)
func NewFunctionTool(name, description string, parameters map[string]any, fn Func) *FunctionTool {
	t := &FunctionTool{
		name:        name,
		description: description,
		parameters:  parameters,
		fn:          fn,
	}
	if parameters != nil {
		t.schema, t.schemaErr = gojsonschema.NewSchema(gojsonschema.NewGoLoader(parameters))
	}
	return t
}

// NewFunctionToolFromStruct derives the parameter schema from a struct using
// reflection, equivalent to util.CreateSchema(structType).
//
// Example:
//
//	type SumArgs struct {
//	  A float64 `json:"a" description:"First addend"`
//	  B float64 `json:"b" description:"Second addend"`
//	}
//
//	sumTool := NewFunctionToolFromStruct("calculate_sum", "Calculate the sum", SumArgs{}, sumFn)
func NewFunctionToolFromStruct(name, description string, structType any, fn Func) *FunctionTool {
	return NewFunctionTool(name, description, util.CreateSchema(structType), fn)
}

// Name returns the unique tool name used in tool-call requests and routing.
func (t *FunctionTool) Name() string { return t.name }

// Description returns the short natural language description exposed to models.
func (t *FunctionTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *FunctionTool) Parameters() map[string]any { return t.parameters }

// Call validates the provided args against the declared schema then invokes
// the underlying function. Validation or execution failures are wrapped (or
// passed through) as *ToolError for uniform downstream handling.
func (t *FunctionTool) Call(ctx context.Context, args map[string]any) (any, error) {
	if err := t.validate(args); err != nil {
		return nil, err
	}

	result, err := t.fn(ctx, args)
	if err != nil {
		if toolErr, ok := err.(*ToolError); ok { // Already a ToolError -> forward unchanged
			return nil, toolErr
		}
		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    "EXECUTION_ERROR",
		}
	}

	return result, nil
}

func (t *FunctionTool) validate(args map[string]any) error {
	if t.schemaErr != nil {
		return &ToolError{
			Tool:    t.name,
			Message: "invalid parameter schema: " + t.schemaErr.Error(),
			Code:    "VALIDATION_ERROR",
		}
	}
	if t.schema == nil {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}

	result, err := t.schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return &ToolError{
			Tool:    t.name,
			Message: "argument validation failed: " + err.Error(),
			Code:    "VALIDATION_ERROR",
		}
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, verr := range result.Errors() {
			details = append(details, verr.String())
		}
		return &ToolError{
			Tool:    t.name,
			Message: "argument validation failed: " + strings.Join(details, "; "),
			Code:    "VALIDATION_ERROR",
			Details: details,
		}
	}
	return nil
}
