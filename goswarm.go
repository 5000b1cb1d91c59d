// Package goswarm is a lightweight multi-agent orchestration runtime. A Swarm
// drives a turn-by-turn loop against a model gateway: it sends an agent's
// instructions, the conversation history and the agent's tool schemas,
// executes the tool calls the model requests, and feeds the results back
// until the model produces final content, a tool requests a stop or handoff,
// or the turn budget runs out.
//
// Agents are immutable descriptors; control moves between them via handoff
// directives returned from tools. Tool callables live in a Registry owned by
// the Swarm, and conversation histories can be persisted across runs through
// a session.Store.
package goswarm

import (
	"context"
	"fmt"
	"sync"

	"github.com/hupe1980/goswarm/core"
	"github.com/hupe1980/goswarm/logging"
	"github.com/hupe1980/goswarm/model"
	"github.com/hupe1980/goswarm/model/openai"
	"github.com/hupe1980/goswarm/session"
	"github.com/hupe1980/goswarm/tool"
)

// DefaultMaxParallelTools bounds concurrent tool executions within one turn.
const DefaultMaxParallelTools = 4

// Options configures construction of a Swarm.
type Options struct {
	// Model is the gateway all runs go through. Defaults to the OpenAI adapter.
	Model model.Model
	// Registry holds the tool callables. Defaults to an empty registry.
	Registry *tool.Registry
	// Sessions persists conversation histories for RunSession. Defaults to the
	// in-memory store.
	Sessions session.Store
	// Logger receives structured run/tool/gateway events. Defaults to no-op.
	Logger logging.Logger
	// MaxParallelTools bounds concurrent tool executions within one turn.
	MaxParallelTools int
}

// Swarm is the orchestration entry point: a model gateway, a tool registry, a
// set of registered agents and a session store. It is safe for concurrent
// runs; per-run state lives on the stack of Run.
type Swarm struct {
	mu               sync.RWMutex
	agents           map[string]*core.Agent
	model            model.Model
	registry         *tool.Registry
	sessions         session.Store
	logger           logging.Logger
	maxParallelTools int
}

// New constructs a Swarm.
func New(optFns ...func(o *Options)) *Swarm {
	opts := Options{
		MaxParallelTools: DefaultMaxParallelTools,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Model == nil {
		opts.Model = openai.NewModel()
	}
	if opts.Registry == nil {
		opts.Registry = tool.NewRegistry()
	}
	if opts.Sessions == nil {
		opts.Sessions = session.NewInMemoryStore()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}
	if opts.MaxParallelTools <= 0 {
		opts.MaxParallelTools = DefaultMaxParallelTools
	}

	return &Swarm{
		agents:           make(map[string]*core.Agent),
		model:            opts.Model,
		registry:         opts.Registry,
		sessions:         opts.Sessions,
		logger:           opts.Logger,
		maxParallelTools: opts.MaxParallelTools,
	}
}

// RegisterAgent makes an agent resolvable as a handoff target by name. It
// fails if the name is already taken.
func (s *Swarm) RegisterAgent(agent *core.Agent) error {
	if agent == nil {
		return fmt.Errorf("agent must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.agents[agent.Name()]; exists {
		return fmt.Errorf("agent %q already registered", agent.Name())
	}
	s.agents[agent.Name()] = agent
	return nil
}

// Agent returns the registered agent with the given name.
func (s *Swarm) Agent(name string) (*core.Agent, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	agent, ok := s.agents[name]
	return agent, ok
}

// Registry returns the swarm's tool registry.
func (s *Swarm) Registry() *tool.Registry { return s.registry }

// RegisterTool is a convenience for Registry().Register.
func (s *Swarm) RegisterTool(t tool.Tool) error { return s.registry.Register(t) }

// RunSession loads the persisted history of the session, appends the user's
// input, executes a run and persists the new messages. The returned result
// reflects the full history including the stored prefix.
func (s *Swarm) RunSession(ctx context.Context, sessionID string, agent *core.Agent, userText string, optFns ...func(o *RunOptions)) (*RunResult, error) {
	history, err := s.sessions.History(sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", sessionID, err)
	}

	userMsg := core.NewUserMessage(userText)
	history = append(history, userMsg)

	result, runErr := s.Run(ctx, agent, history, optFns...)
	if result != nil {
		persisted := append([]core.Message{userMsg}, result.NewMessages...)
		if err := s.sessions.Append(sessionID, persisted...); err != nil {
			return result, fmt.Errorf("persist session %q: %w", sessionID, err)
		}
	}

	return result, runErr
}
