package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ActionID identifies a registered system operation.
type ActionID string

const (
	ActionKillProcess       ActionID = "kill_process"
	ActionStartProcess      ActionID = "start_process"
	ActionListProcesses     ActionID = "list_processes"
	ActionSystemInfo        ActionID = "system_info"
	ActionNetworkInfo       ActionID = "network_info"
	ActionCreateFile        ActionID = "create_file"
	ActionDeleteFile        ActionID = "delete_file"
	ActionCopyFile          ActionID = "copy_file"
	ActionMoveFile          ActionID = "move_file"
	ActionListDirectory     ActionID = "list_directory"
	ActionShutdown          ActionID = "shutdown"
	ActionRestart           ActionID = "restart"
	ActionHibernate         ActionID = "hibernate"
	ActionSleep             ActionID = "sleep"
	ActionPing              ActionID = "ping"
	ActionPublicIP          ActionID = "public_ip"
	ActionExecuteCommand    ActionID = "execute_command"
	ActionScheduleTask      ActionID = "schedule_task"
	ActionInstalledPrograms ActionID = "installed_programs"
	ActionMonitorResources  ActionID = "monitor_resources"
)

// Params holds action parameters. Values are either string or float64.
type Params map[string]interface{}

// Text returns the parameter as a string, or def when absent.
func (p Params) Text(key, def string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}

// Number returns the parameter as a float64, or def when absent or not numeric.
func (p Params) Number(key string, def float64) float64 {
	v, ok := p[key]
	if !ok {
		return def
	}
	switch val := v.(type) {
	case float64:
		return val
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f
		}
	}
	return def
}

// Int is Number truncated to an int.
func (p Params) Int(key string, def int) int {
	return int(p.Number(key, float64(def)))
}

// Clone returns a shallow copy; values are immutable scalars.
func (p Params) Clone() Params {
	if p == nil {
		return Params{}
	}
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Keys returns the parameter names sorted.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StructuredAction is the tier-2 interpretation of an advanced-system payload.
type StructuredAction struct {
	Action         ActionID `json:"action"`
	Parameters     Params   `json:"parameters"`
	Confidence     float64  `json:"confidence"`
	Interpretation string   `json:"interpretation"`
}

// Clone deep-copies the action.
func (a StructuredAction) Clone() StructuredAction {
	a.Parameters = a.Parameters.Clone()
	return a
}

// ExtractionSource records which path produced a structured action.
type ExtractionSource string

const (
	SourceOracle   ExtractionSource = "oracle"
	SourceFallback ExtractionSource = "fallback"
)

// Extraction is the result of the tier-2 stage. Degraded is set when the
// oracle path failed and the fallback matcher produced the action.
type Extraction struct {
	Action   StructuredAction
	Source   ExtractionSource
	Degraded error
}

// Classification is the result of the tier-1 stage. Degraded is set when the
// oracle output was unusable and the general fallback was returned.
type Classification struct {
	SubCommands []SubCommand
	Degraded    error
}
