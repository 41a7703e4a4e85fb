package domain

// Config mirrors ~/.jarvis/config.yaml.
type Config struct {
	ConfigFormatVersion string            `yaml:"config_format_version"`
	Preferences         Preferences       `yaml:"preferences"`
	Oracles             OracleSettings    `yaml:"oracles"`
	Models              []ModelDefinition `yaml:"models"`
	Dispatch            DispatchSettings  `yaml:"dispatch"`
	Security            SecuritySettings  `yaml:"security"`
	Execution           ExecutionSettings `yaml:"execution"`
	Logging             LoggingSettings   `yaml:"logging"`
	History             HistorySettings   `yaml:"history"`
	Server              ServerSettings    `yaml:"server"`
}

// Preferences captures user level toggles.
type Preferences struct {
	UserName      string `yaml:"user_name"`
	AssistantName string `yaml:"assistant_name"`
	DataDir       string `yaml:"data_dir"`
}

// OracleSettings binds each oracle role to a configured model.
type OracleSettings struct {
	Classifier OracleBinding `yaml:"classifier"`
	Extractor  OracleBinding `yaml:"extractor"`
	Responder  OracleBinding `yaml:"responder"`
}

// OracleBinding selects a model and its sampling parameters for one role.
type OracleBinding struct {
	Model          string  `yaml:"model"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout"`
}

// DispatchSettings controls the executor fan-out.
type DispatchSettings struct {
	MinConfidence          float64 `yaml:"min_confidence"`
	MaxConcurrency         int     `yaml:"max_concurrency"`
	ExecutorTimeoutSeconds int     `yaml:"executor_timeout"`
}

// SecuritySettings defines guardrail behavior for raw command execution.
type SecuritySettings struct {
	Enabled   bool   `yaml:"enabled"`
	RulesFile string `yaml:"rules_file"`
}

// ExecutionSettings controls how raw commands run.
type ExecutionSettings struct {
	Shell string `yaml:"shell"`
}

// LoggingSettings configures the logrus output.
type LoggingSettings struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// HistorySettings selects where command history is archived on exit.
type HistorySettings struct {
	Archive string `yaml:"archive"`
	Path    string `yaml:"path"`
}

// ServerSettings configures the HTTP surface.
type ServerSettings struct {
	Addr string `yaml:"addr"`
}

// History archive kinds.
const (
	HistoryArchiveNone   = "none"
	HistoryArchiveJSONL  = "jsonl"
	HistoryArchiveSQLite = "sqlite"
)

// Oracle roles.
const (
	RoleClassifier = "classifier"
	RoleExtractor  = "extractor"
	RoleResponder  = "responder"
)
