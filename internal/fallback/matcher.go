// Package fallback maps an utterance straight to a structured action using an
// ordered keyword rule table. It never performs I/O.
package fallback

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/doeshing/jarvis-go/internal/catalog"
	"github.com/doeshing/jarvis-go/internal/domain"
)

// Confidence levels. Nothing produced here may exceed domain.FallbackMaxConfidence.
const (
	keywordConfidence    = domain.FallbackMaxConfidence
	commandConfidence    = 0.7
	lastResortConfidence = 0.5
)

type rule struct {
	name  string
	apply func(text string) (domain.StructuredAction, bool)
}

// Matcher is the deterministic fallback for the parameter extractor.
// It is read-only after construction.
type Matcher struct {
	catalog *catalog.Catalog
	rules   []rule
}

// New builds a matcher whose results are normalized against cat.
func New(cat *catalog.Catalog) *Matcher {
	if cat == nil {
		cat = catalog.Default
	}
	return &Matcher{catalog: cat, rules: defaultRules()}
}

// RuleNames lists the rules in evaluation order.
func (m *Matcher) RuleNames() []string {
	names := make([]string, len(m.rules))
	for i, r := range m.rules {
		names[i] = r.name
	}
	return names
}

// Match returns the action of the first rule that fires and whose parameters
// satisfy the catalog. When nothing fires the whole text becomes a raw command.
func (m *Matcher) Match(text string) domain.StructuredAction {
	text = strings.TrimSpace(text)
	for _, r := range m.rules {
		action, ok := r.apply(text)
		if !ok {
			continue
		}
		normalized, err := m.catalog.Normalize(action)
		if err != nil {
			continue
		}
		return normalized
	}
	return domain.StructuredAction{
		Action:         domain.ActionExecuteCommand,
		Parameters:     domain.Params{"command": text},
		Confidence:     lastResortConfidence,
		Interpretation: fmt.Sprintf("Execute as system command: %s", text),
	}
}

var (
	killVerb   = regexp.MustCompile(`(?i)\b(?:kill|terminate|stop|end)\b((?:\s+\S+)*)`)
	createFile = regexp.MustCompile(`(?i)\b(?:create|make|new)\b.*\bfile\b`)
	deleteFile = regexp.MustCompile(`(?i)\b(?:delete|remove|erase)\b.*\bfile\b`)
	copyFile   = regexp.MustCompile(`(?i)\b(?:copy|duplicate)\b.*\bfile\b`)
	moveFile   = regexp.MustCompile(`(?i)\b(?:move|relocate)\b.*\bfile\b`)

	namedFile   = regexp.MustCompile(`(?i)\b(?:called|named)\s+(\S+)`)
	bareFile    = regexp.MustCompile(`(?i)\bfile\s+(\S+)`)
	fileContent = regexp.MustCompile(`(?i)\bwith\s+(?:the\s+)?(?:content\s+|text\s+)?(.+?)(?:\s+(?:content|text))?$`)
	fileRoute   = regexp.MustCompile(`(?i)\bfile\s+(?:called\s+|named\s+)?(\S+)\s+(?:to|into)\s+(\S+)`)

	shutdownWords = regexp.MustCompile(`(?i)\b(?:shutdown|shut\s+down|turn\s+off|power\s+off)\b`)
	restartWords  = regexp.MustCompile(`(?i)\b(?:restart|reboot)\b`)
	hibernateWord = regexp.MustCompile(`(?i)\bhibernate\b`)
	sleepWords    = regexp.MustCompile(`(?i)\b(?:sleep|standby)\b`)
	delayPhrase   = regexp.MustCompile(`(?i)\bin\s+(\d+)\s*(seconds?|secs?|minutes?|mins?)\b`)
	spanPhrase    = regexp.MustCompile(`(?i)\bfor\s+(\d+)\s*(seconds?|secs?|minutes?|mins?)\b`)

	pingHost       = regexp.MustCompile(`(?i)\bping\b(?:\s+(\S+))?`)
	testConnection = regexp.MustCompile(`(?i)\btest\s+(?:the\s+)?connection\b`)

	listProcesses = regexp.MustCompile(`(?i)\b(?:list|show|running)\s+(?:all\s+)?(?:the\s+)?processes\b`)
	publicIP      = regexp.MustCompile(`(?i)\b(?:public|external|my)\s+ip\b`)
	networkInfo   = regexp.MustCompile(`(?i)\b(?:network\s+(?:info|information|status)|ip\s+address)\b`)
	listDir       = regexp.MustCompile(`(?i)\b(?:list\s+files|show\s+files|directory\s+contents|list\s+(?:the\s+)?directory)\b`)
	dirTarget     = regexp.MustCompile(`(?i)\b(?:in|of)\s+(\S+)\s*$`)
	installedApps = regexp.MustCompile(`(?i)\b(?:installed\s+(?:programs|software|applications|apps)|software\s+list)\b`)
	monitorWords  = regexp.MustCompile(`(?i)\b(?:monitor\s+(?:the\s+)?system|system\s+performance|resource\s+usage|monitor\s+resources)\b`)
	systemInfo    = regexp.MustCompile(`(?i)\b(?:system\s+info(?:rmation)?|computer\s+specs|hardware)\b`)

	runCommand = regexp.MustCompile(`(?i)\b(?:run\s+command|execute|cmd)\b`)
	commandArg = regexp.MustCompile(`(?i)\b(?:run\s+command|execute|command|cmd|run)\s+(.+)$`)
)

// fillerWords are skipped between a kill verb and the process name.
var fillerWords = map[string]bool{
	"the": true, "a": true, "an": true, "my": true, "process": true, "program": true,
	"app": true, "application": true, "task": true,
}

func defaultRules() []rule {
	return []rule{
		{name: "kill_process", apply: matchKill},
		{name: "system_info", apply: keyword(systemInfo, domain.ActionSystemInfo, "Get system information")},
		{name: "create_file", apply: matchCreateFile},
		{name: "delete_file", apply: matchDeleteFile},
		{name: "copy_file", apply: matchRoute(copyFile, domain.ActionCopyFile, "Copy")},
		{name: "move_file", apply: matchRoute(moveFile, domain.ActionMoveFile, "Move")},
		{name: "shutdown", apply: matchPower(shutdownWords, domain.ActionShutdown, "Shutdown system")},
		{name: "restart", apply: matchPower(restartWords, domain.ActionRestart, "Restart system")},
		{name: "hibernate", apply: keyword(hibernateWord, domain.ActionHibernate, "Hibernate system")},
		{name: "sleep", apply: keyword(sleepWords, domain.ActionSleep, "Put system to sleep")},
		{name: "ping", apply: matchPing},
		{name: "list_processes", apply: keyword(listProcesses, domain.ActionListProcesses, "List running processes")},
		{name: "public_ip", apply: keyword(publicIP, domain.ActionPublicIP, "Get public IP address")},
		{name: "network_info", apply: keyword(networkInfo, domain.ActionNetworkInfo, "Get network information")},
		{name: "list_directory", apply: matchListDirectory},
		{name: "installed_programs", apply: keyword(installedApps, domain.ActionInstalledPrograms, "List installed programs")},
		{name: "monitor_resources", apply: matchMonitor},
		{name: "execute_command", apply: matchRunCommand},
	}
}

func keyword(re *regexp.Regexp, id domain.ActionID, interpretation string) func(string) (domain.StructuredAction, bool) {
	return func(text string) (domain.StructuredAction, bool) {
		if !re.MatchString(text) {
			return domain.StructuredAction{}, false
		}
		return action(id, domain.Params{}, keywordConfidence, interpretation), true
	}
}

func matchKill(text string) (domain.StructuredAction, bool) {
	m := killVerb.FindStringSubmatch(text)
	if m == nil {
		return domain.StructuredAction{}, false
	}
	for _, word := range strings.Fields(m[1]) {
		name := strings.Trim(strings.ToLower(word), `.,;:!?"'`)
		if name == "" || fillerWords[name] {
			continue
		}
		return action(domain.ActionKillProcess, domain.Params{"process_name": name}, keywordConfidence,
			fmt.Sprintf("Kill %s process", name)), true
	}
	return domain.StructuredAction{}, false
}

func fileName(text string) string {
	if m := namedFile.FindStringSubmatch(text); m != nil {
		return trimQuotes(m[1])
	}
	if m := bareFile.FindStringSubmatch(text); m != nil && !strings.EqualFold(m[1], "with") {
		return trimQuotes(m[1])
	}
	return ""
}

func matchCreateFile(text string) (domain.StructuredAction, bool) {
	if !createFile.MatchString(text) {
		return domain.StructuredAction{}, false
	}
	params := domain.Params{}
	name := fileName(text)
	if name != "" {
		params["filepath"] = name
	} else {
		name = "untitled.txt"
	}
	if m := fileContent.FindStringSubmatch(text); m != nil {
		params["content"] = trimQuotes(m[1])
	}
	return action(domain.ActionCreateFile, params, keywordConfidence, fmt.Sprintf("Create file %s", name)), true
}

func matchDeleteFile(text string) (domain.StructuredAction, bool) {
	if !deleteFile.MatchString(text) {
		return domain.StructuredAction{}, false
	}
	name := fileName(text)
	return action(domain.ActionDeleteFile, domain.Params{"filepath": name}, keywordConfidence,
		fmt.Sprintf("Delete file %s", name)), true
}

func matchRoute(verb *regexp.Regexp, id domain.ActionID, label string) func(string) (domain.StructuredAction, bool) {
	return func(text string) (domain.StructuredAction, bool) {
		if !verb.MatchString(text) {
			return domain.StructuredAction{}, false
		}
		m := fileRoute.FindStringSubmatch(text)
		if m == nil {
			return domain.StructuredAction{}, false
		}
		src, dst := trimQuotes(m[1]), trimQuotes(m[2])
		return action(id, domain.Params{"source": src, "destination": dst}, keywordConfidence,
			fmt.Sprintf("%s %s to %s", label, src, dst)), true
	}
}

func matchPower(re *regexp.Regexp, id domain.ActionID, interpretation string) func(string) (domain.StructuredAction, bool) {
	return func(text string) (domain.StructuredAction, bool) {
		if !re.MatchString(text) {
			return domain.StructuredAction{}, false
		}
		return action(id, domain.Params{"delay": delaySeconds(text)}, keywordConfidence, interpretation), true
	}
}

func matchMonitor(text string) (domain.StructuredAction, bool) {
	if !monitorWords.MatchString(text) {
		return domain.StructuredAction{}, false
	}
	params := domain.Params{}
	interpretation := "Monitor system resources"
	if secs := phraseSeconds(spanPhrase, text); secs > 0 {
		params["duration"] = secs
		interpretation = fmt.Sprintf("Monitor system resources for %g seconds", secs)
	}
	return action(domain.ActionMonitorResources, params, keywordConfidence, interpretation), true
}

func delaySeconds(text string) float64 {
	return phraseSeconds(delayPhrase, text)
}

// phraseSeconds reads "<n> seconds|minutes" captured by re as seconds.
func phraseSeconds(re *regexp.Regexp, text string) float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	if strings.HasPrefix(strings.ToLower(m[2]), "min") {
		n *= 60
	}
	return float64(n)
}

func matchPing(text string) (domain.StructuredAction, bool) {
	if m := pingHost.FindStringSubmatch(text); m != nil {
		host := strings.Trim(m[1], `.,;:!?"'`)
		params := domain.Params{}
		if host != "" {
			params["hostname"] = host
		} else {
			host = "google.com"
		}
		return action(domain.ActionPing, params, keywordConfidence, fmt.Sprintf("Ping %s", host)), true
	}
	if testConnection.MatchString(text) {
		return action(domain.ActionPing, domain.Params{}, keywordConfidence, "Ping google.com"), true
	}
	return domain.StructuredAction{}, false
}

func matchListDirectory(text string) (domain.StructuredAction, bool) {
	if !listDir.MatchString(text) {
		return domain.StructuredAction{}, false
	}
	params := domain.Params{}
	dir := "."
	if m := dirTarget.FindStringSubmatch(text); m != nil {
		dir = trimQuotes(m[1])
		params["directory_path"] = dir
	}
	return action(domain.ActionListDirectory, params, keywordConfidence, fmt.Sprintf("List directory %s", dir)), true
}

func matchRunCommand(text string) (domain.StructuredAction, bool) {
	if !runCommand.MatchString(text) {
		return domain.StructuredAction{}, false
	}
	command := text
	if m := commandArg.FindStringSubmatch(text); m != nil {
		command = strings.TrimSpace(m[1])
	}
	return action(domain.ActionExecuteCommand, domain.Params{"command": command}, commandConfidence,
		fmt.Sprintf("Execute command: %s", command)), true
}

func action(id domain.ActionID, params domain.Params, confidence float64, interpretation string) domain.StructuredAction {
	return domain.StructuredAction{Action: id, Parameters: params, Confidence: confidence, Interpretation: interpretation}
}

func trimQuotes(s string) string {
	return strings.Trim(s, `"'`)
}
