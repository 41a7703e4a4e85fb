// Package assets embeds the files written to ~/.jarvis on first run.
package assets

import _ "embed"

// DefaultConfigYAML is the config.yaml written when none exists.
//
//go:embed defaults/config.yaml
var DefaultConfigYAML []byte

// DefaultGuardrailYAML holds the execute_command rules used when the
// configured rules file is missing or empty.
//
//go:embed defaults/guardrail.yaml
var DefaultGuardrailYAML []byte
