package goswarm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/goswarm/core"
	"github.com/hupe1980/goswarm/handoff"
	"github.com/hupe1980/goswarm/tool"
)

// ContextVariablesKey is the reserved argument key under which the run's
// context-variable map is injected into every tool invocation. Tools read it
// as map[string]string and may return updates via handoff.WithVars.
const ContextVariablesKey = "context_variables"

// toolOutcome pairs a tool call with its history message and any handoff or
// stop directive its result carried.
type toolOutcome struct {
	call      core.ToolCall
	message   core.Message
	directive *handoff.Directive
}

// executeToolCalls runs one turn's batch of tool calls and returns outcomes in
// request order. Calls run concurrently, bounded by maxParallelTools, unless
// the agent disables parallel execution. Cancellation drops the whole batch:
// a non-nil error means no outcome reaches the history. The run state is read
// only; variable updates are merged by the loop after the batch joins.
func (s *Swarm) executeToolCalls(ctx context.Context, st *runState, calls []core.ToolCall) ([]toolOutcome, error) {
	if len(calls) == 0 {
		return nil, nil
	}

	if len(calls) == 1 || !st.agent.ParallelToolCalls() {
		outcomes := make([]toolOutcome, 0, len(calls))
		for _, call := range calls {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outcomes = append(outcomes, s.executeOne(ctx, st, call))
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return outcomes, nil
	}

	sem := make(chan struct{}, s.maxParallelTools)
	outcomes := make([]toolOutcome, len(calls))

	var wg sync.WaitGroup
	for i, call := range calls {
		wg.Add(1)
		go func(i int, call core.ToolCall) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i] = s.executeOne(ctx, st, call)
		}(i, call)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// executeOne resolves and invokes a single tool call. Failures of any kind
// (unknown tool, bad arguments, execution error, panic, ambiguous handoff)
// become structured tool-error messages; the raw fault never aborts the run.
func (s *Swarm) executeOne(ctx context.Context, st *runState, call core.ToolCall) toolOutcome {
	oc := toolOutcome{call: call}
	start := time.Now()

	t, err := s.registry.Resolve(call.Name)
	if err != nil {
		st.log.Warn("unknown tool requested", "tool", call.Name, "call_id", call.ID)
		oc.message = core.NewToolErrorMessage(call.ID, call.Name, err.Error())
		return oc
	}

	args := map[string]any{}
	if strings.TrimSpace(call.Arguments) != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			oc.message = core.NewToolErrorMessage(call.ID, call.Name, fmt.Sprintf("invalid tool arguments: %v", err))
			return oc
		}
	}
	if len(st.vars) > 0 {
		args[ContextVariablesKey] = cloneVars(st.vars)
	}

	result, err := s.callTool(ctx, t, args)
	dur := time.Since(start)
	if err != nil {
		st.log.Error("tool execution failed", "tool", call.Name, "call_id", call.ID, "duration", dur, "error", err)
		oc.message = core.NewToolErrorMessage(call.ID, call.Name, err.Error())
		return oc
	}

	directive, err := handoff.Detect(result)
	if err != nil {
		oc.message = core.NewToolErrorMessage(call.ID, call.Name, err.Error())
		return oc
	}

	if directive != nil {
		// The directive itself is consumed by the loop; the model sees the
		// wrapped payload if one was provided, otherwise a neutral
		// acknowledgment.
		oc.directive = directive
		var content string
		switch {
		case directive.Payload != nil:
			content = marshalToolResult(directive.Payload)
		case directive.Stop:
			payload, _ := json.Marshal(map[string]any{"stopped": true, "reason": directive.Reason})
			content = string(payload)
		case directive.AgentName() != "":
			payload, _ := json.Marshal(map[string]any{"transferred": true, "agent": directive.AgentName()})
			content = string(payload)
		default:
			content = "null"
		}
		oc.message = core.NewToolResultMessage(call.ID, call.Name, content)
		st.log.Debug("tool returned directive", "tool", call.Name, "call_id", call.ID, "duration", dur)
		return oc
	}

	oc.message = core.NewToolResultMessage(call.ID, call.Name, marshalToolResult(result))
	st.log.Debug("tool executed", "tool", call.Name, "call_id", call.ID, "duration", dur)
	return oc
}

// callTool invokes the callable with panic recovery so a misbehaving tool
// cannot take down the run.
func (s *Swarm) callTool(ctx context.Context, t tool.Tool, args map[string]any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("tool panicked: %v", r)
		}
	}()
	return t.Call(ctx, args)
}

// marshalToolResult serializes a tool result for the history. Strings and raw
// JSON pass through unchanged.
func marshalToolResult(result any) string {
	switch v := result.(type) {
	case nil:
		return "null"
	case string:
		return v
	case json.RawMessage:
		return string(v)
	case []byte:
		return string(v)
	}
	b, err := json.Marshal(result)
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(b)
}

func cloneVars(vars map[string]string) map[string]string {
	cp := make(map[string]string, len(vars))
	for k, v := range vars {
		cp[k] = v
	}
	return cp
}
