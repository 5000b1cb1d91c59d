// Package handoff interprets tool results to detect whether a tool requested
// an agent switch or an execution stop. Detection is conservative: only the
// typed directive values below, or the reserved JSON marker key, count as
// handoffs. Ambiguous payloads are surfaced as errors, ordinary payloads are
// never guessed at.
package handoff

import (
	"encoding/json"
	"fmt"

	"github.com/hupe1980/goswarm/core"
	"github.com/tidwall/gjson"
)

// MarkerKey is the reserved key a raw JSON tool payload may carry to request a
// handoff by agent name. It exists for tools that serialize their results
// before returning; tools implemented in Go should return *Handoff directly.
const MarkerKey = "__handoff_agent__"

// Handoff is the tagged result value a tool returns to request transfer of
// control. Either Target (direct reference) or TargetName (resolved against
// the agents registered on the Swarm) must be set.
type Handoff struct {
	Target     *core.Agent
	TargetName string
}

// To requests a handoff to a directly referenced agent.
func To(target *core.Agent) *Handoff { return &Handoff{Target: target} }

// ToName requests a handoff to a registered agent by name.
func ToName(name string) *Handoff { return &Handoff{TargetName: name} }

// Result wraps an ordinary tool payload with context-variable updates and,
// optionally, a handoff target. It serves tools that answer and mutate the
// run's shared variable map in one call.
type Result struct {
	Value            any
	Target           *core.Agent
	TargetName       string
	ContextVariables map[string]string
}

// WithVars wraps a payload with context-variable updates for the run.
func WithVars(value any, vars map[string]string) *Result {
	return &Result{Value: value, ContextVariables: vars}
}

// Stop is the tagged result value a tool returns to terminate the run.
type Stop struct {
	Reason string
}

// StopRun requests termination of the current run.
func StopRun(reason string) *Stop { return &Stop{Reason: reason} }

// AmbiguityError reports a payload that carries handoff markers but cannot be
// resolved to a target. It is surfaced immediately and never retried.
type AmbiguityError struct {
	Reason string
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous handoff payload: %s", e.Reason)
}

// Directive is the resolved interpretation of a handoff, stop or wrapped
// result. A directive without a target and without Stop carries only a
// payload and/or context-variable updates.
type Directive struct {
	Target     *core.Agent
	TargetName string
	Stop       bool
	Reason     string
	// Payload is the value to record in the history for wrapped results. When
	// nil the executor records a neutral acknowledgment instead.
	Payload any
	// ContextVariables are updates merged into the run's variable map; later
	// updates in a batch overwrite earlier ones key by key.
	ContextVariables map[string]string
}

// AgentName returns the target agent name regardless of whether the directive
// carries a direct reference or a name.
func (d *Directive) AgentName() string {
	if d.Target != nil {
		return d.Target.Name()
	}
	return d.TargetName
}

// Detect inspects a tool result payload and returns a directive if the
// payload requests a handoff, a stop, or carries a wrapped Result. A nil
// directive with nil error means an ordinary result. An *AmbiguityError is
// returned when the payload carries a handoff marker that names no usable
// target.
func Detect(payload any) (*Directive, error) {
	switch v := payload.(type) {
	case nil:
		return nil, nil
	case *Handoff:
		return directiveFromHandoff(v)
	case Handoff:
		return directiveFromHandoff(&v)
	case *Stop:
		return &Directive{Stop: true, Reason: v.Reason}, nil
	case Stop:
		return &Directive{Stop: true, Reason: v.Reason}, nil
	case *Result:
		return directiveFromResult(v)
	case Result:
		return directiveFromResult(&v)
	case map[string]any:
		raw, ok := v[MarkerKey]
		if !ok {
			return nil, nil
		}
		name, ok := raw.(string)
		if !ok || name == "" {
			return nil, &AmbiguityError{Reason: fmt.Sprintf("marker %q must be a non-empty agent name", MarkerKey)}
		}
		return &Directive{TargetName: name}, nil
	case json.RawMessage:
		return detectRawJSON(string(v))
	case []byte:
		return detectRawJSON(string(v))
	case string:
		return detectRawJSON(v)
	default:
		return nil, nil
	}
}

func directiveFromResult(r *Result) (*Directive, error) {
	if r.Value == nil && r.Target == nil && r.TargetName == "" && len(r.ContextVariables) == 0 {
		return nil, nil
	}
	return &Directive{
		Target:           r.Target,
		TargetName:       r.TargetName,
		Payload:          r.Value,
		ContextVariables: r.ContextVariables,
	}, nil
}

func directiveFromHandoff(h *Handoff) (*Directive, error) {
	if h.Target == nil && h.TargetName == "" {
		return nil, &AmbiguityError{Reason: "handoff names no target agent"}
	}
	return &Directive{Target: h.Target, TargetName: h.TargetName}, nil
}

// detectRawJSON applies the marker rules to serialized payloads. Non-JSON
// strings are ordinary results.
func detectRawJSON(payload string) (*Directive, error) {
	if !gjson.Valid(payload) {
		return nil, nil
	}
	marker := gjson.Get(payload, MarkerKey)
	if !marker.Exists() {
		return nil, nil
	}
	if marker.Type != gjson.String || marker.String() == "" {
		return nil, &AmbiguityError{Reason: fmt.Sprintf("marker %q must be a non-empty agent name", MarkerKey)}
	}
	return &Directive{TargetName: marker.String()}, nil
}
