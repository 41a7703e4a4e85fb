package domain

import (
	"fmt"
	"strings"
	"time"
)

// Rich Domain Model: 將業務邏輯封裝在 Domain 實體中
// 符合 Clean Code 原則 - 貧血模型 → 富領域模型

// FindModelByName searches for a model by its name
// Returns the model definition and true if found, empty model and false otherwise
func (c *Config) FindModelByName(name string) (ModelDefinition, bool) {
	for _, model := range c.Models {
		if model.Name == name {
			return model, true
		}
	}
	return ModelDefinition{}, false
}

// HasModel checks if a model with the given name exists in the configuration
func (c *Config) HasModel(name string) bool {
	_, exists := c.FindModelByName(name)
	return exists
}

// AddModel adds a new model to the configuration
// Returns an error if a model with the same name already exists
func (c *Config) AddModel(model ModelDefinition) error {
	if c.HasModel(model.Name) {
		return fmt.Errorf("model with name %s already exists", model.Name)
	}

	c.Models = append(c.Models, model)
	return nil
}

// RemoveModel removes a model from the configuration by name
// Returns an error if the model is not found
// Any oracle role bound to the removed model is unbound
func (c *Config) RemoveModel(name string) error {
	indexToRemove := -1
	for i, model := range c.Models {
		if model.Name == name {
			indexToRemove = i
			break
		}
	}

	if indexToRemove == -1 {
		return fmt.Errorf("model %s not found", name)
	}

	c.Models = append(c.Models[:indexToRemove], c.Models[indexToRemove+1:]...)

	for _, binding := range c.bindings() {
		if binding.Model == name {
			binding.Model = ""
		}
	}
	return nil
}

// BindRole points an oracle role at an existing model
func (c *Config) BindRole(role, model string) error {
	if !c.HasModel(model) {
		return fmt.Errorf("cannot bind %s: model %s does not exist", role, model)
	}
	binding := c.binding(role)
	if binding == nil {
		return fmt.Errorf("unknown oracle role %q", role)
	}
	binding.Model = model
	return nil
}

// ModelForRole returns the model bound to an oracle role
// The second value is false when the role is unbound or points to a missing model
func (c *Config) ModelForRole(role string) (ModelDefinition, bool) {
	binding := c.binding(role)
	if binding == nil || binding.Model == "" {
		return ModelDefinition{}, false
	}
	return c.FindModelByName(binding.Model)
}

// GetOracleTimeout returns the per-call deadline for an oracle role
func (c *Config) GetOracleTimeout(role string) time.Duration {
	binding := c.binding(role)
	if binding == nil || binding.TimeoutSeconds <= 0 {
		if role == RoleResponder {
			return DefaultResponderTimeout
		}
		return DefaultOracleTimeout
	}
	return time.Duration(binding.TimeoutSeconds) * time.Second
}

// GetOracleTemperature returns the sampling temperature for an oracle role
func (c *Config) GetOracleTemperature(role string) float64 {
	binding := c.binding(role)
	if binding != nil && binding.Temperature > 0 {
		return binding.Temperature
	}
	switch role {
	case RoleExtractor:
		return DefaultExtractorTemperature
	case RoleResponder:
		return DefaultResponderTemperature
	default:
		return DefaultClassifierTemperature
	}
}

func (c *Config) binding(role string) *OracleBinding {
	switch role {
	case RoleClassifier:
		return &c.Oracles.Classifier
	case RoleExtractor:
		return &c.Oracles.Extractor
	case RoleResponder:
		return &c.Oracles.Responder
	default:
		return nil
	}
}

func (c *Config) bindings() []*OracleBinding {
	return []*OracleBinding{&c.Oracles.Classifier, &c.Oracles.Extractor, &c.Oracles.Responder}
}

// GetMinConfidence returns the confidence gate
func (c *Config) GetMinConfidence() float64 {
	if c.Dispatch.MinConfidence <= 0 || c.Dispatch.MinConfidence > 1 {
		return DefaultMinConfidence
	}
	return c.Dispatch.MinConfidence
}

// GetMaxConcurrency returns how many executors may run at once per batch (0 is unbounded)
func (c *Config) GetMaxConcurrency() int {
	if c.Dispatch.MaxConcurrency <= 0 {
		return DefaultMaxConcurrency
	}
	return c.Dispatch.MaxConcurrency
}

// GetExecutorTimeout returns the default executor deadline
func (c *Config) GetExecutorTimeout() time.Duration {
	if c.Dispatch.ExecutorTimeoutSeconds <= 0 {
		return DefaultExecutorTimeout
	}
	return time.Duration(c.Dispatch.ExecutorTimeoutSeconds) * time.Second
}

// IsSecurityEnabled checks if security guardrails are enabled
func (c *Config) IsSecurityEnabled() bool {
	return c.Security.Enabled
}

// GetExecutionShell returns the configured shell for command execution
// Returns the default shell if not configured
func (c *Config) GetExecutionShell() string {
	const defaultShell = "sh"

	if c.Execution.Shell == "" || c.Execution.Shell == "auto" {
		return defaultShell
	}
	return c.Execution.Shell
}

// GetAssistantName returns the assistant display name
func (c *Config) GetAssistantName() string {
	if c.Preferences.AssistantName == "" {
		return "Jarvis"
	}
	return c.Preferences.AssistantName
}

// GetHistoryArchive returns the normalized archive kind
func (c *Config) GetHistoryArchive() string {
	switch strings.ToLower(c.History.Archive) {
	case HistoryArchiveJSONL:
		return HistoryArchiveJSONL
	case HistoryArchiveSQLite:
		return HistoryArchiveSQLite
	default:
		return HistoryArchiveNone
	}
}

// GetServerAddr returns the HTTP listen address
func (c *Config) GetServerAddr() string {
	if c.Server.Addr == "" {
		return "127.0.0.1:8765"
	}
	return c.Server.Addr
}

// ValidateConsistency checks the internal consistency of the configuration
// Returns an error if there are inconsistencies (e.g., a role bound to a missing model)
func (c *Config) ValidateConsistency() error {
	for _, role := range []string{RoleClassifier, RoleExtractor, RoleResponder} {
		binding := c.binding(role)
		if binding.Model != "" && !c.HasModel(binding.Model) {
			return fmt.Errorf("oracle %s is bound to model %s which does not exist in models list", role, binding.Model)
		}
	}

	seen := map[string]bool{}
	for _, model := range c.Models {
		if model.Name == "" {
			return fmt.Errorf("model without a name")
		}
		if seen[model.Name] {
			return fmt.Errorf("model %s declared twice", model.Name)
		}
		seen[model.Name] = true
	}

	if c.Dispatch.MinConfidence < 0 || c.Dispatch.MinConfidence > 1 {
		return fmt.Errorf("dispatch.min_confidence must be within [0,1], got %v", c.Dispatch.MinConfidence)
	}

	return nil
}
