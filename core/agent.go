package core

// ToolChoice is the closed set of tool-selection policies an agent may carry:
// let the model decide (auto), disallow tools entirely (none), or force a
// specific tool by name. The zero value behaves as auto.
type ToolChoice struct {
	mode string
	tool string
}

var (
	// ToolChoiceAuto lets the model decide whether and which tool to call.
	ToolChoiceAuto = ToolChoice{mode: "auto"}
	// ToolChoiceNone disallows tool calls for the turn.
	ToolChoiceNone = ToolChoice{mode: "none"}
)

// ToolChoiceTool forces the model to call the named tool.
func ToolChoiceTool(name string) ToolChoice {
	return ToolChoice{mode: "tool", tool: name}
}

// IsNone reports whether tool calls are disallowed.
func (tc ToolChoice) IsNone() bool { return tc.mode == "none" }

// ForcedTool returns the forced tool name, if any.
func (tc ToolChoice) ForcedTool() (string, bool) {
	if tc.mode == "tool" && tc.tool != "" {
		return tc.tool, true
	}
	return "", false
}

// AgentOptions configures construction of an Agent.
type AgentOptions struct {
	// Model is the target model identifier passed to the gateway.
	Model string
	// Instructions is the system prompt for the agent.
	Instructions string
	// Tools is the ordered list of tool names the agent may call. The order
	// is advisory ordering hinted to the model, not an execution order.
	Tools []string
	// ToolChoice is the agent's tool-selection policy.
	ToolChoice ToolChoice
	// ParallelToolCalls advises the gateway that multiple tool calls may be
	// issued in one turn. Advisory only: the orchestration loop handles
	// multiple calls safely either way.
	ParallelToolCalls bool
}

// Agent is an immutable per-turn descriptor: identity, instructions, model
// selection and the subset of tools it may call. A handoff target is always a
// new Agent value, never a mutation of an existing one.
type Agent struct {
	name         string
	model        string
	instructions string
	tools        []string
	toolChoice   ToolChoice
	parallel     bool
}

// NewAgent constructs an Agent. Defaults: model "gpt-4o-mini", a generic
// helpful-agent instruction, no tools, auto tool choice, parallel tool calls
// allowed.
func NewAgent(name string, optFns ...func(o *AgentOptions)) *Agent {
	opts := AgentOptions{
		Model:             "gpt-4o-mini",
		Instructions:      "You are a helpful agent.",
		ParallelToolCalls: true,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	tools := make([]string, len(opts.Tools))
	copy(tools, opts.Tools)

	return &Agent{
		name:         name,
		model:        opts.Model,
		instructions: opts.Instructions,
		tools:        tools,
		toolChoice:   opts.ToolChoice,
		parallel:     opts.ParallelToolCalls,
	}
}

// Name returns the agent's identity string.
func (a *Agent) Name() string { return a.name }

// Model returns the target model identifier.
func (a *Agent) Model() string { return a.model }

// Instructions returns the agent's system prompt text.
func (a *Agent) Instructions() string { return a.instructions }

// Tools returns a copy of the ordered tool names the agent declares.
func (a *Agent) Tools() []string {
	cp := make([]string, len(a.tools))
	copy(cp, a.tools)
	return cp
}

// ToolChoice returns the agent's tool-selection policy.
func (a *Agent) ToolChoice() ToolChoice { return a.toolChoice }

// ParallelToolCalls reports whether concurrent execution of multiple tool
// calls in one turn is allowed.
func (a *Agent) ParallelToolCalls() bool { return a.parallel }

// Is reports identity equality, used for handoff comparison. Agents are
// compared by name: a handoff target with the name of the active agent is a
// no-op.
func (a *Agent) Is(other *Agent) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.name == other.name
}
