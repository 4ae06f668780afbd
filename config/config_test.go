package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
agents:
  supervisor:
    provider: openai
    model: gpt-4o
    instructions: "Route requests to billing or support."
  billing:
    instructions: "Handle billing questions."
    tools:
      - stripe
  support:
    instructions: "Handle support questions."
    tools:
      - toolkit: jira
        tools: [jira_create_issue]
routing:
  supervisor: supervisor
  max_iterations: 12
`

func TestParse_PreservesDocumentOrder(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"supervisor", "billing", "support"}, cfg.AgentIDs())
	assert.Equal(t, "supervisor", cfg.Routing.Supervisor)
	assert.Equal(t, 12, cfg.Routing.MaxIterations)
}

func TestParse_ToolSelectorShapes(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	billing := cfg.Agents["billing"]
	require.Len(t, billing.Tools, 1)
	assert.Equal(t, "stripe", billing.Tools[0].Toolkit)
	assert.Empty(t, billing.Tools[0].Tools)

	support := cfg.Agents["support"]
	require.Len(t, support.Tools, 1)
	assert.Equal(t, "jira", support.Tools[0].Toolkit)
	assert.Equal(t, []string{"jira_create_issue"}, support.Tools[0].Tools)
}

func TestParse_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
agents:
  solo:
    instructions: "Just answer."
routing: {}
`))
	require.NoError(t, err)

	solo := cfg.Agents["solo"]
	assert.Equal(t, DefaultProvider, solo.Provider)
	assert.Equal(t, DefaultModel, solo.Model)
	require.NotNil(t, solo.Temperature)
	assert.InDelta(t, DefaultTemperature, *solo.Temperature, 0.001)
	assert.InDelta(t, DefaultTemperature, solo.TemperatureOrDefault(), 0.001)
	assert.Equal(t, DefaultMaxIterations, cfg.Routing.MaxIterations)
}

func TestParse_ExplicitZeroTemperature(t *testing.T) {
	cfg, err := Parse([]byte(`
agents:
  solo:
    temperature: 0
    instructions: "Just answer."
`))
	require.NoError(t, err)

	solo := cfg.Agents["solo"]
	require.NotNil(t, solo.Temperature)
	assert.Zero(t, *solo.Temperature, "explicit 0 must not be replaced by the default")
	assert.Zero(t, solo.TemperatureOrDefault())
}

func TestParse_DuplicateAgentID(t *testing.T) {
	_, err := Parse([]byte(`
agents:
  a:
    instructions: "one"
  a:
    instructions: "two"
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestValidate(t *testing.T) {
	_, err := Parse([]byte(`agents: {}`))
	assert.Error(t, err, "empty agents must be rejected")

	_, err = Parse([]byte(`
agents:
  a:
    provider: openai
`))
	assert.Error(t, err, "missing instructions must be rejected")
}

func TestValidate_UnknownSupervisorIsNotAnError(t *testing.T) {
	cfg, err := Parse([]byte(`
agents:
  solo:
    instructions: "Answer."
routing:
  supervisor: nobody
`))
	require.NoError(t, err)
	assert.Equal(t, "nobody", cfg.Routing.Supervisor)
}

func TestSetAgent_OrderStable(t *testing.T) {
	var cfg Config
	cfg.SetAgent("b", AgentConfig{Instructions: "x"})
	cfg.SetAgent("a", AgentConfig{Instructions: "y"})
	cfg.SetAgent("b", AgentConfig{Instructions: "z"})

	assert.Equal(t, []string{"b", "a"}, cfg.AgentIDs())
	assert.Equal(t, "z", cfg.Agents["b"].Instructions)
}

func TestHasAnyTools(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)
	assert.True(t, cfg.HasAnyTools())

	cfg2, err := Parse([]byte(`
agents:
  solo:
    instructions: "Answer."
`))
	require.NoError(t, err)
	assert.False(t, cfg2.HasAnyTools())
}
