package goswarm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/goswarm/core"
	"github.com/hupe1980/goswarm/handoff"
	"github.com/hupe1980/goswarm/logging"
	"github.com/hupe1980/goswarm/model"
)

// DefaultMaxTurns is the turn budget applied when RunOptions leaves MaxTurns
// unset. A turn is one gateway round-trip including the execution of the tool
// calls it requested.
const DefaultMaxTurns = 10

// RunOptions configures a single orchestration run.
type RunOptions struct {
	// MaxTurns is the turn budget. Non-positive values fall back to
	// DefaultMaxTurns.
	MaxTurns int
	// ExecuteTools controls whether requested tool calls are executed. When
	// false the run stops with StopToolCallsPending and leaves the raw calls
	// in the history for the caller to resolve.
	ExecuteTools bool
	// RunToMaxTurns keeps the loop going after final-for-turn content instead
	// of stopping at natural completion. The run then always ends with
	// StopMaxTurnsExceeded (unless a tool stops it earlier).
	RunToMaxTurns bool
	// ModelOverride replaces the agent's model identifier for every gateway
	// call of this run.
	ModelOverride string
	// ContextVariables seeds the run's shared variable map. The map is
	// injected into every tool invocation under ContextVariablesKey; tools may
	// update it via handoff.WithVars and updates accumulate across turns. The
	// caller's map is never mutated.
	ContextVariables map[string]string
	// Debug elevates this run's debug-level events to info so a single run
	// can be traced without reconfiguring the swarm-wide logger.
	Debug bool
}

// RunResult is the outcome of an orchestration run.
type RunResult struct {
	// History is the full conversation history including the input prefix.
	History []core.Message
	// NewMessages are the messages appended during this run.
	NewMessages []core.Message
	// Agent is the active agent when the run stopped; it differs from the
	// initial agent after a handoff.
	Agent *core.Agent
	// StopReason explains why the run terminated.
	StopReason core.StopReason
	// Turns is the number of gateway round-trips performed.
	Turns int
	// ContextVariables is the shared variable map after all tool updates. It
	// is nil when the run carried no variables.
	ContextVariables map[string]string
}

// debugLogger forwards debug events at info level.
type debugLogger struct {
	logging.Logger
}

func (l debugLogger) Debug(msg string, args ...any) { l.Logger.Info(msg, args...) }

// runPhase is the internal state of the orchestration loop.
type runPhase int

const (
	phaseRunning runPhase = iota
	phaseAwaitingToolResults
	phaseHandoffPending
	phaseDone
	phaseFailed
)

// runState carries the mutable loop state. History is append-only; gateway
// requests receive snapshots.
type runState struct {
	agent         *core.Agent
	history       []core.Message
	newMessages   []core.Message
	vars          map[string]string
	log           logging.Logger
	remaining     int
	turns         int
	pendingCalls  []core.ToolCall
	pendingTarget *core.Agent
	stopReason    core.StopReason
	err           error
}

func (st *runState) append(msgs ...core.Message) {
	st.history = append(st.history, msgs...)
	st.newMessages = append(st.newMessages, msgs...)
}

// mergeVars applies tool-provided updates; later updates overwrite earlier
// ones key by key.
func (st *runState) mergeVars(updates map[string]string) {
	if st.vars == nil {
		st.vars = make(map[string]string, len(updates))
	}
	for k, v := range updates {
		st.vars[k] = v
	}
}

func (st *runState) result() *RunResult {
	return &RunResult{
		History:          st.history,
		NewMessages:      st.newMessages,
		Agent:            st.agent,
		StopReason:       st.stopReason,
		Turns:            st.turns,
		ContextVariables: st.vars,
	}
}

// Run executes the turn-by-turn orchestration loop starting with the given
// agent and history. The input history slice is never mutated. On gateway
// failure the partial result accumulated so far is returned alongside the
// error.
func (s *Swarm) Run(ctx context.Context, agent *core.Agent, history []core.Message, optFns ...func(o *RunOptions)) (*RunResult, error) {
	if agent == nil {
		return nil, fmt.Errorf("agent must not be nil")
	}

	opts := RunOptions{
		MaxTurns:     DefaultMaxTurns,
		ExecuteTools: true,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxTurns <= 0 {
		opts.MaxTurns = DefaultMaxTurns
	}

	runID := core.NewID()
	start := time.Now()

	var log logging.Logger = s.logger
	if opts.Debug {
		log = debugLogger{s.logger}
	}

	st := &runState{
		agent:     agent,
		history:   core.CloneHistory(history),
		log:       log,
		remaining: opts.MaxTurns,
	}
	if opts.ContextVariables != nil {
		st.vars = cloneVars(opts.ContextVariables)
	}

	st.log.Debug("run started", "run_id", runID, "agent", agent.Name(), "max_turns", opts.MaxTurns)

	phase := phaseRunning
	for {
		switch phase {
		case phaseRunning:
			if st.remaining <= 0 {
				st.stopReason = core.StopMaxTurnsExceeded
				phase = phaseDone
				continue
			}

			resp, err := s.complete(ctx, runID, st, opts)
			if err != nil {
				st.err = err
				phase = phaseFailed
				continue
			}
			st.turns++

			if resp.HasToolCalls() {
				st.append(core.NewToolCallMessage(resp.Content, resp.ToolCalls...))
				st.pendingCalls = resp.ToolCalls
				phase = phaseAwaitingToolResults
				continue
			}

			st.append(core.NewAssistantMessage(resp.Content))
			if opts.RunToMaxTurns {
				st.remaining--
				continue
			}
			st.stopReason = core.StopNaturalCompletion
			phase = phaseDone

		case phaseAwaitingToolResults:
			if !opts.ExecuteTools {
				st.stopReason = core.StopToolCallsPending
				phase = phaseDone
				continue
			}

			outcomes, err := s.executeToolCalls(ctx, st, st.pendingCalls)
			if err != nil {
				st.err = err
				phase = phaseFailed
				continue
			}
			st.pendingCalls = nil

			// Context-variable updates from every result are merged in request
			// order. When several results carry control directives the last
			// one wins; the earlier ones remain visible in the history as
			// ordinary results.
			var directive *handoff.Directive
			for _, oc := range outcomes {
				msg, d := s.resolveDirective(st, oc)
				st.append(msg)
				if d == nil {
					continue
				}
				if len(d.ContextVariables) > 0 {
					st.mergeVars(d.ContextVariables)
				}
				if d.Stop || d.Target != nil {
					directive = d
				}
			}

			if directive != nil {
				if directive.Stop {
					st.stopReason = core.StopToolRequested
					phase = phaseDone
					continue
				}
				st.pendingTarget = directive.Target
				phase = phaseHandoffPending
				continue
			}

			st.remaining--
			phase = phaseRunning

		case phaseHandoffPending:
			target := st.pendingTarget
			st.pendingTarget = nil
			if !target.Is(st.agent) {
				st.log.Info("agent handoff", "run_id", runID, "from", st.agent.Name(), "to", target.Name())
				st.append(core.NewHandoffMessage(st.agent.Name(), target.Name()))
				st.agent = target
			}
			st.remaining--
			phase = phaseRunning

		case phaseDone:
			st.log.Info("run completed", "run_id", runID, "agent", st.agent.Name(), "turns", st.turns, "stop_reason", string(st.stopReason), "duration", time.Since(start))
			return st.result(), nil

		case phaseFailed:
			st.stopReason = core.StopFailed
			st.log.Error("run failed", "run_id", runID, "agent", st.agent.Name(), "turns", st.turns, "error", st.err)
			return st.result(), st.err
		}
	}
}

// complete performs one gateway round-trip for the active agent. Errors that
// are not already gateway errors are wrapped so callers can rely on
// *model.GatewayError for all model failures.
func (s *Swarm) complete(ctx context.Context, runID string, st *runState, opts RunOptions) (*model.Response, error) {
	modelID := st.agent.Model()
	if opts.ModelOverride != "" {
		modelID = opts.ModelOverride
	}

	req := model.Request{
		Instructions:      st.agent.Instructions(),
		Model:             modelID,
		Messages:          core.CloneHistory(st.history),
		ToolChoice:        st.agent.ToolChoice(),
		ParallelToolCalls: st.agent.ParallelToolCalls(),
	}

	for _, def := range s.registry.SchemasFor(st.agent) {
		req.Tools = append(req.Tools, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        def.Name,
				Description: def.Description,
				Parameters:  def.Parameters,
			},
		})
	}

	start := time.Now()
	resp, err := s.model.Complete(ctx, req)
	if err != nil {
		var gwErr *model.GatewayError
		if !errors.As(err, &gwErr) {
			err = model.NewGatewayError(s.model.Info().Provider, err)
		}
		st.log.Error("model call failed", "run_id", runID, "agent", st.agent.Name(), "model", modelID, "duration", time.Since(start), "error", err)
		return nil, err
	}

	st.log.Debug("model call completed", "run_id", runID, "agent", st.agent.Name(), "model", modelID, "duration", time.Since(start), "tool_calls", len(resp.ToolCalls))
	return resp, nil
}

// resolveDirective resolves a name-only handoff directive against the
// registered agents. An unknown target degrades the outcome to a tool error
// result so the model can react; the run continues. Directives carrying only
// a payload or variable updates pass through untouched.
func (s *Swarm) resolveDirective(st *runState, oc toolOutcome) (core.Message, *handoff.Directive) {
	d := oc.directive
	if d == nil || d.Stop || d.Target != nil || d.TargetName == "" {
		return oc.message, d
	}

	target, ok := s.Agent(d.TargetName)
	if !ok {
		st.log.Warn("unknown handoff target", "tool", oc.call.Name, "target", d.TargetName)
		return core.NewToolErrorMessage(oc.call.ID, oc.call.Name, fmt.Sprintf("unknown handoff target %q", d.TargetName)), nil
	}
	d.Target = target
	return oc.message, d
}
