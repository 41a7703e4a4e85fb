package catalog

import "github.com/doeshing/jarvis-go/internal/domain"

func str(name string, required bool, def interface{}) ParamSpec {
	return ParamSpec{Name: name, Kind: KindString, Required: required, Default: def}
}

func num(name string, def float64) ParamSpec {
	return ParamSpec{Name: name, Kind: KindNumber, Default: def}
}

// Default is the built-in catalog of 20 system actions.
var Default = New(
	ActionSpec{ID: domain.ActionKillProcess, Summary: "terminate a running process by name or pid",
		Params: []ParamSpec{str("process_name", true, nil)}, Disruptive: true},
	ActionSpec{ID: domain.ActionStartProcess, Summary: "start a program",
		Params: []ParamSpec{str("executable_path", true, nil), str("args", false, "")}},
	ActionSpec{ID: domain.ActionListProcesses, Summary: "list running processes"},
	ActionSpec{ID: domain.ActionSystemInfo, Summary: "report operating system, cpu, memory and disk details"},
	ActionSpec{ID: domain.ActionNetworkInfo, Summary: "report network interfaces and addresses"},
	ActionSpec{ID: domain.ActionCreateFile, Summary: "create a file with optional content",
		Params: []ParamSpec{str("filepath", false, "untitled.txt"), str("content", false, "")}},
	ActionSpec{ID: domain.ActionDeleteFile, Summary: "delete a file",
		Params: []ParamSpec{str("filepath", true, nil)}, Disruptive: true},
	ActionSpec{ID: domain.ActionCopyFile, Summary: "copy a file",
		Params: []ParamSpec{str("source", true, nil), str("destination", true, nil)}},
	ActionSpec{ID: domain.ActionMoveFile, Summary: "move or rename a file",
		Params: []ParamSpec{str("source", true, nil), str("destination", true, nil)}},
	ActionSpec{ID: domain.ActionListDirectory, Summary: "list the entries of a directory",
		Params: []ParamSpec{str("directory_path", false, ".")}},
	ActionSpec{ID: domain.ActionShutdown, Summary: "shut the computer down after delay seconds",
		Params: []ParamSpec{num("delay", 0)}, Disruptive: true},
	ActionSpec{ID: domain.ActionRestart, Summary: "restart the computer after delay seconds",
		Params: []ParamSpec{num("delay", 0)}, Disruptive: true},
	ActionSpec{ID: domain.ActionHibernate, Summary: "hibernate the computer", Disruptive: true},
	ActionSpec{ID: domain.ActionSleep, Summary: "put the computer to sleep", Disruptive: true},
	ActionSpec{ID: domain.ActionPing, Summary: "check connectivity to a host",
		Params: []ParamSpec{str("hostname", false, "google.com")}},
	ActionSpec{ID: domain.ActionPublicIP, Summary: "look up the public ip address"},
	ActionSpec{ID: domain.ActionExecuteCommand, Summary: "run a raw shell command",
		Params: []ParamSpec{str("command", true, nil), num("timeout", 30)}, Disruptive: true},
	ActionSpec{ID: domain.ActionScheduleTask, Summary: "schedule a command to run once at HH:MM",
		Params: []ParamSpec{str("task_name", false, "JARVIS_Task"), str("command", true, nil), str("schedule_time", false, "12:00")}},
	ActionSpec{ID: domain.ActionInstalledPrograms, Summary: "list installed programs"},
	ActionSpec{ID: domain.ActionMonitorResources, Summary: "sample cpu and memory usage for duration seconds",
		Params: []ParamSpec{num("duration", 10)}},
)
