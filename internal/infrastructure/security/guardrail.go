package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/jarvis-go/assets"
	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/pkg/filesystem"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// Guardrail implements the SecurityService port.
type Guardrail struct {
	patterns []compiledPattern
}

type compiledPattern struct {
	re   *regexp.Regexp
	rule DangerPattern
}

// DangerPattern describes a regex-based guardrail rule.
type DangerPattern struct {
	Pattern string `yaml:"pattern"`
	Level   string `yaml:"level"`
	Message string `yaml:"message"`
	Action  string `yaml:"action"`
}

// RulesFile is the YAML schema root.
type RulesFile struct {
	Rules struct {
		DangerPatterns []DangerPattern `yaml:"danger_patterns"`
	} `yaml:"rules"`
}

// NewGuardrail loads guardrail rules from disk (or the embedded defaults when missing).
func NewGuardrail(path string) (*Guardrail, error) {
	rules, err := loadRules(path)
	if err != nil {
		return nil, err
	}
	return compile(rules)
}

// NewGuardrailFromYAML builds a guardrail from raw rule data.
func NewGuardrailFromYAML(data []byte) (*Guardrail, error) {
	var rules RulesFile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse guardrail rules: %w", err)
	}
	return compile(rules)
}

func compile(rules RulesFile) (*Guardrail, error) {
	var compiled []compiledPattern
	for _, pattern := range rules.Rules.DangerPatterns {
		re, err := regexp.Compile(pattern.Pattern)
		if err != nil {
			return nil, fmt.Errorf("guardrail pattern %q: %w", pattern.Pattern, err)
		}
		compiled = append(compiled, compiledPattern{
			re:   re,
			rule: pattern,
		})
	}

	return &Guardrail{patterns: compiled}, nil
}

// RuleCount reports how many patterns are loaded.
func (g *Guardrail) RuleCount() int {
	return len(g.patterns)
}

// Evaluate implements ports.SecurityService.
func (g *Guardrail) Evaluate(command string) (domain.RiskAssessment, error) {
	if g == nil {
		return domain.RiskAssessment{}, errors.New("guardrail nil")
	}
	assessment := domain.RiskAssessment{
		Command: command,
		Level:   domain.RiskSafe,
		Action:  domain.GuardAllow,
	}
	for _, pattern := range g.patterns {
		if !pattern.re.MatchString(command) {
			continue
		}
		ruleLevel := parseRiskLevel(pattern.rule.Level)
		ruleAction := parseAction(pattern.rule.Action, ruleLevel)
		if ruleLevel.MoreSevereThan(assessment.Level) {
			assessment.Level = ruleLevel
		}
		if stricter(ruleAction, assessment.Action) {
			assessment.Action = ruleAction
		}
		assessment.Reasons = append(assessment.Reasons, pattern.rule.Message)
		assessment.MatchedRules = append(assessment.MatchedRules, pattern.rule.Pattern)
	}
	return assessment, nil
}

func loadRules(path string) (RulesFile, error) {
	var rules RulesFile
	data, err := os.ReadFile(ExpandPath(path))
	if err != nil {
		data = assets.DefaultGuardrailYAML
	}
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RulesFile{}, fmt.Errorf("parse guardrail rules: %w", err)
	}
	if len(rules.Rules.DangerPatterns) == 0 {
		if err := yaml.Unmarshal(assets.DefaultGuardrailYAML, &rules); err != nil {
			return RulesFile{}, fmt.Errorf("parse default guardrail rules: %w", err)
		}
	}
	return rules, nil
}

func parseRiskLevel(value string) domain.RiskLevel {
	switch strings.ToLower(value) {
	case "low":
		return domain.RiskLow
	case "medium":
		return domain.RiskMedium
	case "high":
		return domain.RiskHigh
	case "critical":
		return domain.RiskCritical
	default:
		return domain.RiskSafe
	}
}

// parseAction maps rule actions to allow/warn/block. Confirmation actions
// from interactive rule sets become warnings since nobody is there to confirm.
func parseAction(value string, fallback domain.RiskLevel) domain.GuardrailAction {
	switch strings.ToLower(value) {
	case "allow":
		return domain.GuardAllow
	case "warn", "preview_only", "simple_confirm", "confirm", "explicit_confirm":
		return domain.GuardWarn
	case "block":
		return domain.GuardBlock
	default:
		switch fallback {
		case domain.RiskSafe:
			return domain.GuardAllow
		case domain.RiskCritical:
			return domain.GuardBlock
		default:
			return domain.GuardWarn
		}
	}
}

var actionOrder = map[domain.GuardrailAction]int{
	domain.GuardAllow: 0,
	domain.GuardWarn:  1,
	domain.GuardBlock: 2,
}

func stricter(next, current domain.GuardrailAction) bool {
	return actionOrder[next] > actionOrder[current]
}

// ExpandPath resolves the rules file location. Empty means ~/.jarvis/guardrail.yaml;
// relative paths are taken from the home directory.
func ExpandPath(path string) string {
	home := filesystem.UserHomeDir()
	if path == "" {
		return filepath.Join(home, ".jarvis", "guardrail.yaml")
	}
	if filepath.IsAbs(path) {
		return path
	}
	if expanded := filesystem.ExpandHome(path); expanded != path {
		return expanded
	}
	return filepath.Join(home, path)
}

var _ ports.SecurityService = (*Guardrail)(nil)
