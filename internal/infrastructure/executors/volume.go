package executors

import (
	"context"
	"fmt"
	"strings"
)

// volumeCommand is one way to perform a volume operation on a platform.
type volumeCommand struct {
	tool string
	args []string
}

// volumeCommands lists, per operation, the commands to try in order.
func volumeCommands(goos, op string) []volumeCommand {
	switch goos {
	case "darwin":
		script := map[string]string{
			"mute":        "set volume output muted true",
			"unmute":      "set volume output muted false",
			"volume up":   "set volume output volume ((output volume of (get volume settings)) + 6)",
			"volume down": "set volume output volume ((output volume of (get volume settings)) - 6)",
		}[op]
		if script == "" {
			return nil
		}
		return []volumeCommand{{tool: "osascript", args: []string{"-e", script}}}
	case "linux", "freebsd", "openbsd":
		pactl := map[string][]string{
			"mute":        {"set-sink-mute", "@DEFAULT_SINK@", "1"},
			"unmute":      {"set-sink-mute", "@DEFAULT_SINK@", "0"},
			"volume up":   {"set-sink-volume", "@DEFAULT_SINK@", "+5%"},
			"volume down": {"set-sink-volume", "@DEFAULT_SINK@", "-5%"},
		}[op]
		amixer := map[string][]string{
			"mute":        {"-q", "set", "Master", "mute"},
			"unmute":      {"-q", "set", "Master", "unmute"},
			"volume up":   {"-q", "set", "Master", "5%+"},
			"volume down": {"-q", "set", "Master", "5%-"},
		}[op]
		if pactl == nil {
			return nil
		}
		return []volumeCommand{{tool: "pactl", args: pactl}, {tool: "amixer", args: amixer}}
	default:
		return nil
	}
}

func (x *direct) system(ctx context.Context, command string) (string, error) {
	op := strings.Join(strings.Fields(strings.ToLower(command)), " ")
	switch op {
	case "mute", "unmute", "volume up", "volume down":
	default:
		return "", fmt.Errorf("unknown system command %q", command)
	}
	if x.Runner == nil {
		return "", fmt.Errorf("no process runner configured")
	}

	candidates := volumeCommands(x.GOOS, op)
	if len(candidates) == 0 {
		return "", fmt.Errorf("volume control is not supported on %s", x.GOOS)
	}
	for _, c := range candidates {
		if !x.Runner.LookPath(c.tool) {
			continue
		}
		if _, err := x.Runner.Run(ctx, c.tool, c.args...); err != nil {
			return "", fmt.Errorf("%s: %w", op, err)
		}
		return fmt.Sprintf("Executed system command: %s", op), nil
	}
	return "", fmt.Errorf("no volume tool available (tried %s)", toolNames(candidates))
}

func toolNames(cs []volumeCommand) string {
	names := make([]string, 0, len(cs))
	for _, c := range cs {
		names = append(names, c.tool)
	}
	return strings.Join(names, ", ")
}
