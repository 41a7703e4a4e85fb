package extract

import (
	"strings"

	"github.com/doeshing/jarvis-go/internal/catalog"
	"github.com/doeshing/jarvis-go/internal/ports"
)

const instructionHeader = `You are the natural-language processing stage of a desktop assistant.
Interpret the user's command and convert it into exactly one structured system operation.

Return only a JSON object with exactly these fields:
{"action": "<action id>", "parameters": {"<name>": "<string or number>"}, "confidence": <0..1>, "interpretation": "<human readable interpretation>"}

Parameter values must be strings or numbers. Use {} when the action takes no parameters.
Available actions (parameters marked ? are optional):
`

func buildInstruction(cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString(instructionHeader)
	b.WriteString(cat.Describe())
	return b.String()
}

var examples = []ports.Example{
	{
		Input:  "Kill Chrome browser",
		Output: `{"action": "kill_process", "parameters": {"process_name": "chrome"}, "confidence": 0.9, "interpretation": "Terminate Chrome browser process"}`,
	},
	{
		Input:  "Show me system information",
		Output: `{"action": "system_info", "parameters": {}, "confidence": 0.95, "interpretation": "Display comprehensive system information"}`,
	},
	{
		Input:  "Create a file called test.txt with hello world content",
		Output: `{"action": "create_file", "parameters": {"filepath": "test.txt", "content": "hello world"}, "confidence": 0.9, "interpretation": "Create a new file named test.txt with specified content"}`,
	},
	{
		Input:  "move report.pdf to the archive folder",
		Output: `{"action": "move_file", "parameters": {"source": "report.pdf", "destination": "archive/report.pdf"}, "confidence": 0.85, "interpretation": "Move report.pdf into archive"}`,
	},
	{
		Input:  "restart the computer in two minutes",
		Output: `{"action": "restart", "parameters": {"delay": 120}, "confidence": 0.9, "interpretation": "Restart the system after 120 seconds"}`,
	},
	{
		Input:  "is github reachable",
		Output: `{"action": "ping", "parameters": {"hostname": "github.com"}, "confidence": 0.85, "interpretation": "Ping github.com"}`,
	},
}
