package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/doeshing/jarvis-go/internal/domain"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if len(cfg.Models) == 0 {
		return errors.New("at least one model must be configured")
	}
	if err := cfg.ValidateConsistency(); err != nil {
		return err
	}
	for _, model := range cfg.Models {
		if err := validateModel(model); err != nil {
			return err
		}
	}
	if err := validateDispatch(cfg.Dispatch); err != nil {
		return err
	}
	if err := validateSecurity(cfg.Security); err != nil {
		return err
	}
	if err := validateLogging(cfg.Logging); err != nil {
		return err
	}
	if err := validateHistory(cfg.History); err != nil {
		return err
	}
	return nil
}

func validateModel(model domain.ModelDefinition) error {
	switch model.GetProvider() {
	case domain.ProviderHTTP:
		if model.Endpoint == "" {
			return fmt.Errorf("model %s: endpoint must be set", model.Name)
		}
		switch model.APIFormat.JSONMode {
		case domain.JSONModeNone, domain.JSONModeOpenAI, domain.JSONModeOllama:
		default:
			return fmt.Errorf("model %s: api_format.json_mode must be openai|ollama, got %s", model.Name, model.APIFormat.JSONMode)
		}
	case domain.ProviderGemini:
	default:
		return fmt.Errorf("model %s: provider must be http|gemini, got %s", model.Name, model.Provider)
	}
	if model.MaxTokens < 0 {
		return fmt.Errorf("model %s: max_tokens must be >= 0", model.Name)
	}
	return nil
}

func validateDispatch(d domain.DispatchSettings) error {
	if d.MaxConcurrency < 0 {
		return fmt.Errorf("dispatch.max_concurrency must be >= 0")
	}
	if d.ExecutorTimeoutSeconds < 0 {
		return fmt.Errorf("dispatch.executor_timeout must be >= 0")
	}
	return nil
}

func validateSecurity(sec domain.SecuritySettings) error {
	if sec.Enabled && sec.RulesFile == "" {
		return fmt.Errorf("security.rules_file must be set")
	}
	return nil
}

func validateLogging(logging domain.LoggingSettings) error {
	switch strings.ToLower(logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug|info|warn|error, got %s", logging.Level)
	}
	if logging.MaxSizeMB < 0 || logging.MaxBackups < 0 {
		return fmt.Errorf("logging.max_size_mb and logging.max_backups must be >= 0")
	}
	return nil
}

func validateHistory(history domain.HistorySettings) error {
	switch strings.ToLower(history.Archive) {
	case "", domain.HistoryArchiveNone, domain.HistoryArchiveJSONL, domain.HistoryArchiveSQLite:
		return nil
	default:
		return fmt.Errorf("history.archive must be none|jsonl|sqlite, got %s", history.Archive)
	}
}
