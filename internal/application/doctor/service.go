package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	appconfig "github.com/doeshing/jarvis-go/internal/application/config"
	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// Service runs environment diagnostics.
type Service struct {
	ConfigProvider  ports.ConfigProvider
	SecurityService ports.SecurityService
	Runner          ports.Runner
	// GOOS selects the tool list; defaults to runtime.GOOS.
	GOOS string
}

// Run executes checks and returns a report.
func (s *Service) Run(ctx context.Context) (domain.HealthReport, error) {
	var checks []domain.HealthCheck

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		checks = append(checks, fail("Config file", fmt.Sprintf("load failed: %v", err)))
		return domain.HealthReport{Checks: checks}, err
	}
	if err := appconfig.Validate(cfg); err != nil {
		checks = append(checks, fail("Config file", err.Error()))
	} else {
		checks = append(checks, ok("Config file", fmt.Sprintf("format version %s, %d models", cfg.ConfigFormatVersion, len(cfg.Models))))
	}

	for _, role := range []string{domain.RoleClassifier, domain.RoleExtractor, domain.RoleResponder} {
		checks = append(checks, oracleCheck(cfg, role))
	}

	checks = append(checks, s.guardrailCheck(cfg))
	checks = append(checks, dataDirCheck(cfg.Preferences.DataDir))
	if s.Runner != nil {
		checks = append(checks, s.toolCheck())
	}

	return domain.HealthReport{Checks: checks}, nil
}

func oracleCheck(cfg domain.Config, role string) domain.HealthCheck {
	name := "Oracle " + role
	model, bound := cfg.ModelForRole(role)
	if !bound {
		return warn(name, "no model bound; deterministic fallbacks only")
	}
	var fallbacks []string
	if model.GetProvider() == domain.ProviderGemini {
		fallbacks = []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"}
	}
	if model.AuthEnvVar != "" || len(fallbacks) > 0 {
		if envMissing(model.AuthEnvVar, fallbacks...) {
			missing := model.AuthEnvVar
			if missing == "" {
				missing = strings.Join(fallbacks, " or ")
			}
			return warn(name, fmt.Sprintf("%s: %s missing", model.Name, missing))
		}
	}
	return ok(name, fmt.Sprintf("%s (%s)", model.Name, model.ModelID))
}

func (s *Service) guardrailCheck(cfg domain.Config) domain.HealthCheck {
	if !cfg.IsSecurityEnabled() {
		return warn("Guardrail", "disabled; raw commands run unscreened")
	}
	if s.SecurityService == nil {
		return warn("Guardrail", "security service not initialized")
	}
	assessment, err := s.SecurityService.Evaluate("rm -rf /")
	if err != nil {
		return fail("Guardrail", err.Error())
	}
	if !assessment.Blocked() {
		return warn("Guardrail", "rules loaded but 'rm -rf /' is not blocked")
	}
	return ok("Guardrail", "rules loaded")
}

func dataDirCheck(dir string) domain.HealthCheck {
	if dir == "" {
		return warn("Data directory", "not configured")
	}
	if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
		return fail("Data directory", err.Error())
	}
	probe, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		return fail("Data directory", fmt.Sprintf("%s is not writable: %v", dir, err))
	}
	name := probe.Name()
	probe.Close()
	os.Remove(name)
	return ok("Data directory", filepath.Clean(dir))
}

// toolsFor lists the helper programs the executors shell out to.
func toolsFor(goos string) []string {
	switch goos {
	case "windows":
		return []string{"taskkill", "tasklist", "ping", "schtasks", "shutdown"}
	case "darwin":
		return []string{"pkill", "ps", "ping", "osascript", "pmset", "at"}
	default:
		return []string{"pkill", "ps", "ping", "systemctl", "at", "pactl|amixer"}
	}
}

func (s *Service) toolCheck() domain.HealthCheck {
	goos := s.GOOS
	if goos == "" {
		goos = runtime.GOOS
	}
	var missing []string
	for _, tool := range toolsFor(goos) {
		found := false
		for _, alt := range strings.Split(tool, "|") {
			if s.Runner.LookPath(alt) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, tool)
		}
	}
	if len(missing) > 0 {
		return warn("System tools", "missing: "+strings.Join(missing, ", "))
	}
	return ok("System tools", "all helper programs found")
}

func envMissing(primary string, fallbacks ...string) bool {
	for _, name := range append([]string{primary}, fallbacks...) {
		if name != "" && os.Getenv(name) != "" {
			return false
		}
	}
	return true
}

func ok(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthOK, Details: details}
}

func warn(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthWarn, Details: details}
}

func fail(name, details string) domain.HealthCheck {
	return domain.HealthCheck{Name: name, Status: domain.HealthError, Details: details}
}
