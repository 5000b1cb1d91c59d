package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/hupe1980/goswarm/internal/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------- Schema Tests --------------------

type sampleSchema struct {
	A string `json:"a" description:"Field A"`
	B *int   `json:"b" description:"Optional pointer field"`
	C int    `json:"c,omitempty" description:"Omit empty field"`
}

func TestCreateSchema(t *testing.T) {
	schema := util.CreateSchema(sampleSchema{})
	props, ok := schema["properties"].(map[string]any)
	assert.True(t, ok)
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")
	assert.Contains(t, props, "c")
	// Required only includes non-pointer, non-omitempty exported fields
	req, _ := schema["required"].([]string)
	assert.ElementsMatch(t, []string{"a"}, req)
}

// -------------------- FunctionTool Tests --------------------

func sumParams() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"a": map[string]any{"type": "number"},
			"b": map[string]any{"type": "number"},
		},
		"required": []string{"a", "b"},
	}
}

func TestFunctionTool_Success(t *testing.T) {
	sumTool := NewFunctionTool("sum", "Add numbers", sumParams(), func(_ context.Context, args map[string]any) (any, error) {
		a := args["a"].(float64)
		b := args["b"].(float64)
		return a + b, nil
	})

	result, err := sumTool.Call(context.Background(), map[string]any{"a": 2.0, "b": 3.0})
	assert.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	sumTool := NewFunctionTool("sum", "Add numbers", sumParams(), func(_ context.Context, _ map[string]any) (any, error) {
		return 0, nil
	})

	// Missing required field
	_, err := sumTool.Call(context.Background(), map[string]any{"a": 2.0})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)

	// Wrong type
	_, err = sumTool.Call(context.Background(), map[string]any{"a": 2.0, "b": "three"})
	require.Error(t, err)
	toolErr, ok = err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", toolErr.Code)
	assert.NotEmpty(t, toolErr.Details)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	params := map[string]any{"type": "object", "properties": map[string]any{}}
	execTool := NewFunctionTool("fail", "Fails", params, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, errors.New("boom")
	})

	_, err := execTool.Call(context.Background(), map[string]any{})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, "EXECUTION_ERROR", toolErr.Code)
	assert.Equal(t, "boom", toolErr.Message)
}

func TestFunctionTool_ToolErrorPassthrough(t *testing.T) {
	params := map[string]any{"type": "object", "properties": map[string]any{}}
	custom := NewToolError("custom", "rate limited", "RATE_LIMITED")
	failTool := NewFunctionTool("custom", "Custom error", params, func(_ context.Context, _ map[string]any) (any, error) {
		return nil, custom
	})

	_, err := failTool.Call(context.Background(), map[string]any{})
	require.Error(t, err)
	assert.Same(t, custom, err)
}

func TestFunctionTool_NilSchemaSkipsValidation(t *testing.T) {
	echoTool := NewFunctionTool("echo", "Echo anything", nil, func(_ context.Context, args map[string]any) (any, error) {
		return args, nil
	})

	result, err := echoTool.Call(context.Background(), map[string]any{"anything": true})
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{"anything": true}, result)
}

func TestFunctionToolFromStruct(t *testing.T) {
	structTool := NewFunctionToolFromStruct("lookup", "Lookup by key", sampleSchema{}, func(_ context.Context, args map[string]any) (any, error) {
		return args["a"], nil
	})

	props, ok := structTool.Parameters()["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "a")

	result, err := structTool.Call(context.Background(), map[string]any{"a": "value", "c": 1})
	assert.NoError(t, err)
	assert.Equal(t, "value", result)
}

// -------------------- ToolError Formatting --------------------

func TestToolErrorFormatting(t *testing.T) {
	err := NewToolError("demo", "something failed", "E123")
	assert.Contains(t, err.Error(), "E123")
	assert.Contains(t, err.Error(), "demo")

	uncoded := &ToolError{Tool: "demo", Message: "plain"}
	assert.Contains(t, uncoded.Error(), "demo")
	assert.NotContains(t, uncoded.Error(), "[")
}
