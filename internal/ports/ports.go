// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// This package establishes the contract between the application core and external
// adapters (infrastructure). Following the Ports and Adapters (Hexagonal) pattern,
// these interfaces allow the application to remain independent of specific
// implementations like language-model APIs, operating-system calls or CLI frameworks.
//
// Key architectural concepts:
//   - Ports: Interfaces defined here (e.g., TextOracle, ActionExecutor)
//   - Adapters: Concrete implementations in the infrastructure layer
//   - Dependency inversion: Application depends on abstractions, not implementations
package ports

import (
	"context"

	"github.com/doeshing/jarvis-go/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.jarvis/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Example is one few-shot input/output pair shown to an oracle before the real input.
type Example struct {
	Input  string
	Output string
}

// OracleRequest is a single text-completion call.
// Instruction is the system prompt, Examples are rendered as prior turns and
// Input is the text to complete.
type OracleRequest struct {
	Instruction string
	Examples    []Example
	Input       string
	Temperature float64
	MaxTokens   int
	// JSON asks the oracle for a JSON object when the backing model supports it.
	JSON bool
}

// TextOracle is a text-in/text-out language-model capability.
// Transport failures are returned as domain.Error with KindOracleUnavailable
// (or KindTimeout when the context deadline passed).
type TextOracle interface {
	Name() string
	Complete(context.Context, OracleRequest) (string, error)
}

// OracleFactory builds the oracle bound to a role (classifier, extractor, responder).
type OracleFactory interface {
	ForRole(cfg domain.Config, role string) TextOracle
}

// DirectExecutor performs a tagged sub-command with its raw payload
// (open, close, play, search, content, system volume, conversational answers).
type DirectExecutor interface {
	Execute(ctx context.Context, payload string) (string, error)
}

// DirectExecutorFunc adapts a function to DirectExecutor.
type DirectExecutorFunc func(ctx context.Context, payload string) (string, error)

// Execute calls f.
func (f DirectExecutorFunc) Execute(ctx context.Context, payload string) (string, error) {
	return f(ctx, payload)
}

// ActionExecutor performs a registered system action with validated parameters.
type ActionExecutor interface {
	Run(ctx context.Context, action domain.ActionID, params domain.Params) (string, error)
}

// HistoryRepository stores pipeline runs for the lifetime of the process.
// Implementations must be safe for concurrent use and return deep copies.
type HistoryRepository interface {
	Record(domain.HistoryEntry) error
	List() []domain.HistoryEntry
	Get(id string) (domain.HistoryEntry, bool)
	Clear() int
}

// HistoryArchive persists history entries beyond the process lifetime.
type HistoryArchive interface {
	Append(context.Context, []domain.HistoryEntry) error
	Load(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
	Close() error
}

// Launcher hands URLs, files and applications to the desktop environment.
type Launcher interface {
	OpenURL(url string) error
	OpenFile(path string) error
	StartApp(name string) error
}

// Runner executes external programs.
type Runner interface {
	// Run executes name with args and returns combined output.
	Run(ctx context.Context, name string, args ...string) (string, error)
	// Shell executes a command line through the configured shell.
	Shell(ctx context.Context, command string) (string, error)
	// Start launches a command line through the shell without waiting for it.
	Start(command string) error
	// LookPath reports whether a program is available.
	LookPath(name string) bool
}

// SecurityService evaluates commands against security rules to prevent dangerous operations.
// This implements the guardrail system that stops harmful raw commands.
type SecurityService interface {
	Evaluate(command string) (domain.RiskAssessment, error)
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
