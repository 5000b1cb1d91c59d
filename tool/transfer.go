package tool

import (
	"context"
	"fmt"

	"github.com/hupe1980/goswarm/core"
	"github.com/hupe1980/goswarm/handoff"
)

// TransferToolName is the name under which the built-in transfer tool is
// exposed to the model.
const TransferToolName = "transfer_to_agent"

// transferTool requests orchestration transfer to one of a fixed set of
// target agents.
type transferTool struct {
	targets map[string]*core.Agent
	names   []string
}

// NewTransferTool constructs the transfer_to_agent tool. The model may call
// it with the name of one of the given targets; the result is a typed handoff
// directive consumed by the orchestration loop, never shown to the model.
func NewTransferTool(targets ...*core.Agent) Tool {
	t := &transferTool{targets: make(map[string]*core.Agent, len(targets))}
	for _, target := range targets {
		if target == nil {
			continue
		}
		if _, exists := t.targets[target.Name()]; exists {
			continue
		}
		t.targets[target.Name()] = target
		t.names = append(t.names, target.Name())
	}
	return t
}

func (t *transferTool) Name() string { return TransferToolName }

func (t *transferTool) Description() string {
	return "Request transfer of control to another agent by name. Use when another agent is better suited to handle the request."
}

func (t *transferTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"agent": map[string]any{
				"type":        "string",
				"description": "Target agent name",
				"enum":        t.names,
			},
		},
		"required": []string{"agent"},
	}
}

func (t *transferTool) Call(_ context.Context, args map[string]any) (any, error) {
	raw, ok := args["agent"]
	if !ok {
		return nil, fmt.Errorf("missing required field 'agent'")
	}
	name, ok := raw.(string)
	if !ok || name == "" {
		return nil, fmt.Errorf("field 'agent' must be a non-empty string")
	}
	target, ok := t.targets[name]
	if !ok {
		return nil, fmt.Errorf("unknown transfer target %q", name)
	}
	return handoff.To(target), nil
}
