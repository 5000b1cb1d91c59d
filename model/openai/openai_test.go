package openai

import (
	"encoding/json"
	"testing"

	"github.com/hupe1980/goswarm/core"
	"github.com/hupe1980/goswarm/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Interface compliance (compile-time assertion)
var _ model.Model = (*Model)(nil)

func TestBuildMessages_PartialTextWithToolCalls(t *testing.T) {
	req := model.Request{
		Messages: []core.Message{
			core.NewUserMessage("What's the weather in Paris?"),
			core.NewToolCallMessage("Let me check the weather.",
				core.ToolCall{ID: "c1", Name: "get_weather", Arguments: `{"location":"Paris"}`},
			),
		},
	}

	messages := buildMessages(req)
	require.Len(t, messages, 2)

	assistant := messages[1].OfAssistant
	require.NotNil(t, assistant)
	require.Len(t, assistant.ToolCalls, 1)

	// Partial text accompanying the calls survives the round-trip; the model
	// must see its own prior reasoning on replay.
	raw, err := json.Marshal(messages[1])
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Let me check the weather.")
}

func TestBuildMessages_SkipsHandoffRecords(t *testing.T) {
	req := model.Request{
		Instructions: "You are a billing specialist.",
		Messages: []core.Message{
			core.NewUserMessage("hi"),
			core.NewHandoffMessage("Triage", "Billing"),
			core.NewAssistantMessage("hello"),
		},
	}

	messages := buildMessages(req)
	// system + user + assistant; the audit record is internal.
	require.Len(t, messages, 3)
	for _, msg := range messages {
		raw, err := json.Marshal(msg)
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "Triage")
	}
}

func TestBuildMessages_ToolResultLinkage(t *testing.T) {
	req := model.Request{
		Messages: []core.Message{
			core.NewToolResultMessage("c1", "get_weather", `{"temp":18}`),
		},
	}

	messages := buildMessages(req)
	require.Len(t, messages, 1)

	toolMsg := messages[0].OfTool
	require.NotNil(t, toolMsg)
	assert.Equal(t, "c1", toolMsg.ToolCallID)
}
