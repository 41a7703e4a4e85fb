package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
	// RegularFilePermissions is used for files created on the user's behalf
	RegularFilePermissions = 0o644
)

// Timeout and duration constants
const (
	// DefaultOracleTimeout bounds a single classification or extraction call
	DefaultOracleTimeout = 5 * time.Second
	// DefaultResponderTimeout bounds a general/realtime answer
	DefaultResponderTimeout = 30 * time.Second
	// DefaultExecutorTimeout bounds a single executor call
	DefaultExecutorTimeout = 30 * time.Second
	// DefaultProbeTimeout bounds short helper commands (tool detection, version probes)
	DefaultProbeTimeout = 2 * time.Second
	// MaxCommandTimeout caps the deadline an execute_command may ask for
	MaxCommandTimeout = time.Hour
	// MonitorGrace is added to the monitor_resources sampling window
	MonitorGrace = 5 * time.Second
	// DefaultHTTPClientTimeout is the timeout for HTTP client requests
	DefaultHTTPClientTimeout = 60 * time.Second
)

// Dispatch constants
const (
	// DefaultMinConfidence is the confidence gate below which actions are not executed
	DefaultMinConfidence = 0.3
	// FallbackMaxConfidence caps any action produced without the oracle
	FallbackMaxConfidence = 0.8
	// DefaultMaxConcurrency leaves parallel executor calls per batch unbounded
	DefaultMaxConcurrency = 0
	// MaxMonitorSeconds caps monitor_resources sampling
	MaxMonitorSeconds = 60
)

// Model configuration constants
const (
	// DefaultMaxTokens is the default maximum number of tokens
	DefaultMaxTokens = 512
	// DefaultClassifierTemperature favors deterministic routing
	DefaultClassifierTemperature = 0.3
	// DefaultExtractorTemperature favors deterministic extraction
	DefaultExtractorTemperature = 0.3
	// DefaultResponderTemperature is used for conversational answers
	DefaultResponderTemperature = 0.7
)

// Time formats
const (
	// TimestampFormat is the standard timestamp format
	TimestampFormat = time.RFC3339
)
