package domain

// RiskLevel enumerates guardrail outcomes.
type RiskLevel string

const (
	RiskSafe     RiskLevel = "safe"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

var riskOrder = map[RiskLevel]int{
	RiskSafe:     0,
	RiskLow:      1,
	RiskMedium:   2,
	RiskHigh:     3,
	RiskCritical: 4,
}

// MoreSevereThan reports whether r outranks other.
func (r RiskLevel) MoreSevereThan(other RiskLevel) bool {
	return riskOrder[r] > riskOrder[other]
}

// GuardrailAction describes how execute_command reacts to a risk level.
// Commands run unattended, so there is no confirmation step: a rule either
// lets the command through, lets it through with a logged warning, or blocks it.
type GuardrailAction string

const (
	GuardAllow GuardrailAction = "allow"
	GuardWarn  GuardrailAction = "warn"
	GuardBlock GuardrailAction = "block"
)

// RiskAssessment aggregates security evaluation data.
type RiskAssessment struct {
	Command      string
	Level        RiskLevel
	Action       GuardrailAction
	Reasons      []string
	MatchedRules []string
}

// Blocked reports whether the command must not run.
func (a RiskAssessment) Blocked() bool {
	return a.Action == GuardBlock
}
