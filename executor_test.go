package goswarm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hupe1980/goswarm/core"
	"github.com/hupe1980/goswarm/handoff"
	"github.com/hupe1980/goswarm/logging"
	"github.com/hupe1980/goswarm/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunState(agent *core.Agent) *runState {
	return &runState{agent: agent, log: logging.NoOpLogger{}}
}

func TestExecuteToolCalls_OrderWithUnevenDurations(t *testing.T) {
	s := newTestSwarm(model.NewMockModel("mock"))

	// Earlier calls sleep longer so completion order inverts request order.
	require.NoError(t, s.Registry().RegisterFunc("slow_echo", "", nil, func(_ context.Context, args map[string]any) (any, error) {
		i := int(args["i"].(float64))
		time.Sleep(time.Duration(50-10*i) * time.Millisecond)
		return i, nil
	}))

	agent := core.NewAgent("A", func(o *core.AgentOptions) {
		o.Tools = []string{"slow_echo"}
	})

	calls := make([]core.ToolCall, 4)
	for i := range calls {
		calls[i] = core.ToolCall{ID: fmt.Sprintf("c%d", i), Name: "slow_echo", Arguments: fmt.Sprintf(`{"i":%d}`, i)}
	}

	outcomes, err := s.executeToolCalls(context.Background(), newTestRunState(agent), calls)
	require.NoError(t, err)
	require.Len(t, outcomes, 4)
	for i, oc := range outcomes {
		assert.Equal(t, fmt.Sprintf("c%d", i), oc.message.ToolCallID)
		assert.Equal(t, fmt.Sprintf("%d", i), oc.message.Content)
	}
}

func TestExecuteToolCalls_SequentialWhenParallelDisabled(t *testing.T) {
	s := newTestSwarm(model.NewMockModel("mock"))

	var concurrent, peak int32
	require.NoError(t, s.Registry().RegisterFunc("probe", "", nil, func(_ context.Context, _ map[string]any) (any, error) {
		n := atomic.AddInt32(&concurrent, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&concurrent, -1)
		return "ok", nil
	}))

	agent := core.NewAgent("A", func(o *core.AgentOptions) {
		o.Tools = []string{"probe"}
		o.ParallelToolCalls = false
	})

	calls := []core.ToolCall{
		{ID: "c0", Name: "probe"},
		{ID: "c1", Name: "probe"},
		{ID: "c2", Name: "probe"},
	}

	_, err := s.executeToolCalls(context.Background(), newTestRunState(agent), calls)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&peak))
}

func TestExecuteToolCalls_PanicRecovery(t *testing.T) {
	s := newTestSwarm(model.NewMockModel("mock"))
	require.NoError(t, s.Registry().RegisterFunc("explode", "", nil, func(_ context.Context, _ map[string]any) (any, error) {
		panic("kaboom")
	}))

	agent := core.NewAgent("A", func(o *core.AgentOptions) {
		o.Tools = []string{"explode"}
	})

	outcomes, err := s.executeToolCalls(context.Background(), newTestRunState(agent), []core.ToolCall{{ID: "c1", Name: "explode"}})
	require.NoError(t, err)
	require.Len(t, outcomes, 1)

	msg := outcomes[0].message
	require.True(t, msg.IsToolError())
	assert.Contains(t, msg.Error, "kaboom")
}

func TestExecuteToolCalls_CancellationDropsBatch(t *testing.T) {
	s := newTestSwarm(model.NewMockModel("mock"))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Registry().RegisterFunc("cancel_then_wait", "", nil, func(ctx context.Context, _ map[string]any) (any, error) {
		cancel()
		<-ctx.Done()
		return nil, ctx.Err()
	}))

	agent := core.NewAgent("A", func(o *core.AgentOptions) {
		o.Tools = []string{"cancel_then_wait"}
	})

	calls := []core.ToolCall{
		{ID: "c0", Name: "cancel_then_wait"},
		{ID: "c1", Name: "cancel_then_wait"},
	}

	// Cancellation mid-batch drops all outcomes; no partial results leak into
	// the history.
	outcomes, err := s.executeToolCalls(ctx, newTestRunState(agent), calls)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, outcomes)
}

func TestExecuteOne_InvalidArguments(t *testing.T) {
	s := newTestSwarm(model.NewMockModel("mock"))
	require.NoError(t, s.Registry().RegisterFunc("echo", "", nil, func(_ context.Context, args map[string]any) (any, error) {
		return args, nil
	}))

	oc := s.executeOne(context.Background(), newTestRunState(core.NewAgent("A")), core.ToolCall{ID: "c1", Name: "echo", Arguments: `{not json`})
	require.True(t, oc.message.IsToolError())
	assert.Contains(t, oc.message.Error, "invalid tool arguments")
}

func TestExecuteOne_EmptyArguments(t *testing.T) {
	s := newTestSwarm(model.NewMockModel("mock"))
	require.NoError(t, s.Registry().RegisterFunc("ping", "", nil, func(_ context.Context, args map[string]any) (any, error) {
		assert.NotNil(t, args)
		return "pong", nil
	}))

	oc := s.executeOne(context.Background(), newTestRunState(core.NewAgent("A")), core.ToolCall{ID: "c1", Name: "ping", Arguments: "  "})
	assert.False(t, oc.message.IsToolError())
	assert.Equal(t, "pong", oc.message.Content)
}

func TestExecuteOne_InjectsContextVariables(t *testing.T) {
	s := newTestSwarm(model.NewMockModel("mock"))
	require.NoError(t, s.Registry().RegisterFunc("whoami", "", nil, func(_ context.Context, args map[string]any) (any, error) {
		vars, _ := args[ContextVariablesKey].(map[string]string)
		return vars["user_name"], nil
	}))

	st := newTestRunState(core.NewAgent("A"))
	st.vars = map[string]string{"user_name": "Ada"}

	oc := s.executeOne(context.Background(), st, core.ToolCall{ID: "c1", Name: "whoami", Arguments: `{}`})
	assert.False(t, oc.message.IsToolError())
	assert.Equal(t, "Ada", oc.message.Content)

	// The tool receives a copy; the run's map stays untouched.
	assert.Equal(t, map[string]string{"user_name": "Ada"}, st.vars)
}

func TestExecuteOne_VarsOnlyResult(t *testing.T) {
	s := newTestSwarm(model.NewMockModel("mock"))
	require.NoError(t, s.Registry().RegisterFunc("remember", "", nil, func(_ context.Context, _ map[string]any) (any, error) {
		return handoff.WithVars("noted", map[string]string{"mood": "sunny"}), nil
	}))

	oc := s.executeOne(context.Background(), newTestRunState(core.NewAgent("A")), core.ToolCall{ID: "c1", Name: "remember", Arguments: `{}`})
	require.NotNil(t, oc.directive)
	assert.Equal(t, map[string]string{"mood": "sunny"}, oc.directive.ContextVariables)
	assert.Equal(t, "noted", oc.message.Content)
	assert.Empty(t, oc.directive.AgentName())
	assert.False(t, oc.directive.Stop)
}

func TestMarshalToolResult(t *testing.T) {
	assert.Equal(t, "null", marshalToolResult(nil))
	assert.Equal(t, "plain", marshalToolResult("plain"))
	assert.Equal(t, `{"raw":1}`, marshalToolResult(json.RawMessage(`{"raw":1}`)))
	assert.Equal(t, `{"raw":2}`, marshalToolResult([]byte(`{"raw":2}`)))
	assert.Equal(t, `{"a":1}`, marshalToolResult(map[string]int{"a": 1}))
	assert.Equal(t, "42", marshalToolResult(42))
}
