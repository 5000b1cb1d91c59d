package handoff

import (
	"encoding/json"
	"testing"

	"github.com/hupe1980/goswarm/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect_TypedHandoff(t *testing.T) {
	target := core.NewAgent("Billing")

	d, err := Detect(To(target))
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.False(t, d.Stop)
	assert.Equal(t, "Billing", d.AgentName())
	assert.Same(t, target, d.Target)

	d, err = Detect(ToName("Support"))
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "Support", d.AgentName())
	assert.Nil(t, d.Target)
}

func TestDetect_TypedStop(t *testing.T) {
	d, err := Detect(StopRun("task complete"))
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.True(t, d.Stop)
	assert.Equal(t, "task complete", d.Reason)

	// Value form works too.
	d, err = Detect(Stop{Reason: "done"})
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.True(t, d.Stop)
}

func TestDetect_MapMarker(t *testing.T) {
	d, err := Detect(map[string]any{MarkerKey: "Billing", "note": "routing"})
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "Billing", d.AgentName())
}

func TestDetect_RawJSONMarker(t *testing.T) {
	payload := `{"__handoff_agent__":"Support"}`

	for _, v := range []any{payload, []byte(payload), json.RawMessage(payload)} {
		d, err := Detect(v)
		require.NoError(t, err)
		require.NotNil(t, d)
		assert.Equal(t, "Support", d.AgentName())
	}
}

func TestDetect_WrappedResult(t *testing.T) {
	d, err := Detect(WithVars("noted", map[string]string{"mood": "sunny"}))
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "noted", d.Payload)
	assert.Equal(t, map[string]string{"mood": "sunny"}, d.ContextVariables)
	assert.False(t, d.Stop)
	assert.Empty(t, d.AgentName())

	// A wrapped result may carry a handoff target alongside its updates.
	billing := core.NewAgent("Billing")
	d, err = Detect(&Result{Value: "routing", Target: billing, ContextVariables: map[string]string{"dept": "billing"}})
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "Billing", d.AgentName())
	assert.Equal(t, "routing", d.Payload)

	// Value form works too.
	d, err = Detect(Result{TargetName: "Support"})
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, "Support", d.AgentName())

	// A fully empty wrapper is an ordinary nil result.
	d, err = Detect(&Result{})
	require.NoError(t, err)
	assert.Nil(t, d)
}

func TestDetect_Ambiguous(t *testing.T) {
	var ambErr *AmbiguityError

	_, err := Detect(&Handoff{})
	require.ErrorAs(t, err, &ambErr)

	_, err = Detect(map[string]any{MarkerKey: 42})
	require.ErrorAs(t, err, &ambErr)

	_, err = Detect(`{"__handoff_agent__":""}`)
	require.ErrorAs(t, err, &ambErr)

	_, err = Detect(`{"__handoff_agent__":{"name":"Billing"}}`)
	require.ErrorAs(t, err, &ambErr)
}

func TestDetect_OrdinaryPayloads(t *testing.T) {
	cases := []any{
		nil,
		"plain text result",
		`{"temperature_c":18,"condition":"Sunny"}`,
		map[string]any{"temperature_c": 18},
		42,
		[]string{"a", "b"},
		"not json at all {",
	}

	for _, payload := range cases {
		d, err := Detect(payload)
		assert.NoError(t, err)
		assert.Nil(t, d)
	}
}
