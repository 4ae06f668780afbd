// Package config defines the YAML configuration consumed by agentgraph: a
// mapping of agent definitions plus a routing block. Loading preserves the
// document order of the agents mapping because routing candidates are tested
// in configuration order.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults applied when fields are omitted.
const (
	DefaultProvider      = "openai"
	DefaultModel         = "gpt-4o"
	DefaultTemperature   = 0.7
	DefaultMaxIterations = 10
)

// ToolSelector narrows the globally initialized tool set for one agent.
// Either a bare toolkit name (matches any tool whose name contains it,
// case-insensitive) or a toolkit plus specific tool names (each must match
// both substrings).
type ToolSelector struct {
	Toolkit string   `yaml:"toolkit" json:"toolkit"`
	Tools   []string `yaml:"tools,omitempty" json:"tools,omitempty"`
}

// UnmarshalYAML accepts both selector shapes: a scalar toolkit name or a
// {toolkit, tools} mapping.
func (t *ToolSelector) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		t.Toolkit = value.Value
		t.Tools = nil
		return nil
	}
	type plain ToolSelector
	var p plain
	if err := value.Decode(&p); err != nil {
		return fmt.Errorf("decode tool selector: %w", err)
	}
	*t = ToolSelector(p)
	return nil
}

// AgentConfig is one agent definition. Instructions may contain a {{date}}
// placeholder resolved at agent-creation time.
type AgentConfig struct {
	Provider string `yaml:"provider" json:"provider"`
	Model    string `yaml:"model" json:"model"`
	// Temperature is a pointer so an explicit 0 survives defaulting.
	Temperature  *float64       `yaml:"temperature,omitempty" json:"temperature,omitempty"`
	Instructions string         `yaml:"instructions" json:"instructions"`
	Tools        []ToolSelector `yaml:"tools,omitempty" json:"tools,omitempty"`
	BaseURL      string         `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	APIKey       string         `yaml:"api_key,omitempty" json:"-"`
}

// HasTools reports whether the agent declares any tool selectors.
func (a AgentConfig) HasTools() bool { return len(a.Tools) > 0 }

// TemperatureOrDefault returns the configured sampling temperature, or
// DefaultTemperature when the field was omitted. An explicit 0 is respected.
func (a AgentConfig) TemperatureOrDefault() float64 {
	if a.Temperature == nil {
		return DefaultTemperature
	}
	return *a.Temperature
}

// RoutingConfig names the top-level supervisor and bounds graph execution.
type RoutingConfig struct {
	Supervisor    string `yaml:"supervisor" json:"supervisor"`
	MaxIterations int    `yaml:"max_iterations" json:"max_iterations"`
}

// Config is the full system configuration.
type Config struct {
	Agents  map[string]AgentConfig
	Routing RoutingConfig

	// order keeps the agents mapping in document order.
	order []string
}

// UnmarshalYAML decodes the configuration while recording agent document
// order.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Agents  yaml.Node     `yaml:"agents"`
		Routing RoutingConfig `yaml:"routing"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	c.Routing = raw.Routing
	c.Agents = map[string]AgentConfig{}
	c.order = nil
	if raw.Agents.Kind == 0 {
		return nil
	}
	if raw.Agents.Kind != yaml.MappingNode {
		return fmt.Errorf("agents must be a mapping of id to definition")
	}
	for i := 0; i+1 < len(raw.Agents.Content); i += 2 {
		var id string
		if err := raw.Agents.Content[i].Decode(&id); err != nil {
			return fmt.Errorf("decode agent id: %w", err)
		}
		var ac AgentConfig
		if err := raw.Agents.Content[i+1].Decode(&ac); err != nil {
			return fmt.Errorf("decode agent %q: %w", id, err)
		}
		if _, dup := c.Agents[id]; dup {
			return fmt.Errorf("duplicate agent id %q", id)
		}
		c.Agents[id] = ac
		c.order = append(c.order, id)
	}
	return nil
}

// AgentIDs returns agent ids in configuration (document) order.
func (c *Config) AgentIDs() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// SetAgent adds or replaces an agent definition, preserving order for
// existing ids and appending new ones. Used by programmatic construction
// (tests, the management API).
func (c *Config) SetAgent(id string, ac AgentConfig) {
	if c.Agents == nil {
		c.Agents = map[string]AgentConfig{}
	}
	if _, ok := c.Agents[id]; !ok {
		c.order = append(c.order, id)
	}
	c.Agents[id] = ac
}

// ApplyDefaults fills zero-valued fields with defaults.
func (c *Config) ApplyDefaults() {
	for id, ac := range c.Agents {
		if ac.Provider == "" {
			ac.Provider = DefaultProvider
		}
		if ac.Model == "" {
			ac.Model = DefaultModel
		}
		if ac.Temperature == nil {
			v := float64(DefaultTemperature)
			ac.Temperature = &v
		}
		c.Agents[id] = ac
	}
	if c.Routing.MaxIterations <= 0 {
		c.Routing.MaxIterations = DefaultMaxIterations
	}
}

// Validate checks the configuration for hard errors. A routing.supervisor
// that names no configured agent is deliberately not an error: the graph
// builder degrades to single-agent topology in that case.
func (c *Config) Validate() error {
	if len(c.Agents) == 0 {
		return fmt.Errorf("no agents configured")
	}
	for id, ac := range c.Agents {
		if ac.Instructions == "" {
			return fmt.Errorf("agent %q has no instructions", id)
		}
	}
	return nil
}

// HasAnyTools reports whether any configured agent declares tools.
func (c *Config) HasAnyTools() bool {
	for _, ac := range c.Agents {
		if ac.HasTools() {
			return true
		}
	}
	return false
}

// Load reads, decodes, defaults and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
