package system

import (
	"context"
	"fmt"
	"strings"

	"github.com/doeshing/jarvis-go/internal/domain"
)

// screen runs a raw command line past the guardrail. Blocked commands fail;
// warnings are logged and the command proceeds.
func (c *Controller) screen(command string) error {
	if c.opts.Guard == nil {
		return nil
	}
	assessment, err := c.opts.Guard.Evaluate(command)
	if err != nil {
		return fmt.Errorf("guardrail: %w", err)
	}
	if assessment.Blocked() {
		return domain.Errorf(domain.KindExecutorFailure, "guardrail",
			"command blocked (%s): %s", assessment.Level, strings.Join(assessment.Reasons, "; "))
	}
	if assessment.Action == domain.GuardWarn {
		c.warn("guardrail warning", map[string]interface{}{
			"command": command,
			"level":   string(assessment.Level),
			"reasons": strings.Join(assessment.Reasons, "; "),
		})
	}
	return nil
}

// executeCommand runs a raw command line. The deadline comes from the caller;
// the dispatcher derives it from the action's timeout parameter.
func (c *Controller) executeCommand(ctx context.Context, p domain.Params) (string, error) {
	command := strings.TrimSpace(p.Text("command", ""))
	if command == "" {
		return "", fmt.Errorf("command is empty")
	}
	if err := c.screen(command); err != nil {
		return "", err
	}

	out, err := c.opts.Runner.Shell(ctx, command)
	if ctx.Err() != nil {
		return "", domain.NewError(domain.KindTimeout, "execute_command", ctx.Err())
	}
	if err != nil {
		return "", fmt.Errorf("command failed: %w", err)
	}
	out = strings.TrimRight(out, "\n")
	if out == "" {
		return "Command completed with no output", nil
	}
	return "Command output:\n" + out, nil
}
