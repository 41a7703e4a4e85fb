// Package executors implements the direct (non advanced-system) executors:
// application launch and close, web and video search, content writing,
// volume control and conversational answers.
package executors

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

const (
	googleSearchURL  = "https://www.google.com/search?q="
	youtubeSearchURL = "https://www.youtube.com/results?search_query="

	// conversationTurns bounds how many earlier answers are replayed to the responder.
	conversationTurns = 6
)

// Deps are the collaborators shared by the direct executors.
type Deps struct {
	Launcher  ports.Launcher
	Runner    ports.Runner
	Responder ports.TextOracle
	Logger    ports.Logger
	// History feeds earlier general/realtime turns back to the responder.
	History ports.HistoryRepository

	// DataDir receives generated content files.
	DataDir       string
	AssistantName string
	UserName      string
	// GOOS selects platform commands; defaults to runtime.GOOS.
	GOOS string
	Now  func() time.Time
}

// Registry returns one executor per tag that runs without parameter extraction.
// generate-image and reminder are intentionally absent.
func Registry(d Deps) map[domain.Tag]ports.DirectExecutor {
	if d.GOOS == "" {
		d.GOOS = runtime.GOOS
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.AssistantName == "" {
		d.AssistantName = "Jarvis"
	}
	x := &direct{Deps: d}
	return map[domain.Tag]ports.DirectExecutor{
		domain.TagOpen:          ports.DirectExecutorFunc(x.open),
		domain.TagClose:         ports.DirectExecutorFunc(x.close),
		domain.TagPlay:          ports.DirectExecutorFunc(x.youtube),
		domain.TagYouTubeSearch: ports.DirectExecutorFunc(x.youtube),
		domain.TagGoogleSearch:  ports.DirectExecutorFunc(x.google),
		domain.TagContent:       ports.DirectExecutorFunc(x.content),
		domain.TagSystem:        ports.DirectExecutorFunc(x.system),
		domain.TagGeneral:       ports.DirectExecutorFunc(x.general),
		domain.TagRealtime:      ports.DirectExecutorFunc(x.realtime),
		domain.TagExit:          ports.DirectExecutorFunc(x.exit),
	}
}

type direct struct {
	Deps
}

var domainLike = regexp.MustCompile(`^[a-z0-9-]+(\.[a-z0-9-]+)+(/\S*)?$`)

func (x *direct) open(ctx context.Context, target string) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return "", fmt.Errorf("nothing to open")
	}
	name := strings.ToLower(target)

	if !strings.ContainsAny(name, " /") && x.Runner != nil && x.Runner.LookPath(name) {
		if err := x.Launcher.StartApp(name); err != nil {
			return "", err
		}
		return fmt.Sprintf("Opened %s", target), nil
	}

	link := googleSearchURL + url.QueryEscape(target)
	switch {
	case strings.HasPrefix(name, "http://"), strings.HasPrefix(name, "https://"):
		link = target
	case domainLike.MatchString(name):
		link = "https://" + name
	}
	if err := x.Launcher.OpenURL(link); err != nil {
		return "", err
	}
	return fmt.Sprintf("Opened %s in the browser", link), nil
}

func (x *direct) close(ctx context.Context, target string) (string, error) {
	name := strings.TrimSpace(target)
	if name == "" {
		return "", fmt.Errorf("nothing to close")
	}
	if x.Runner == nil {
		return "", fmt.Errorf("no process runner configured")
	}

	var err error
	if x.GOOS == "windows" {
		image := name
		if !strings.HasSuffix(strings.ToLower(image), ".exe") {
			image += ".exe"
		}
		_, err = x.Runner.Run(ctx, "taskkill", "/f", "/im", image)
	} else {
		_, err = x.Runner.Run(ctx, "pkill", "-i", name)
	}
	if err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return fmt.Sprintf("Closed %s", name), nil
}

func (x *direct) youtube(_ context.Context, query string) (string, error) {
	return x.search(youtubeSearchURL, query)
}

func (x *direct) google(_ context.Context, query string) (string, error) {
	return x.search(googleSearchURL, query)
}

func (x *direct) search(base, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("empty search query")
	}
	link := base + url.QueryEscape(query)
	if err := x.Launcher.OpenURL(link); err != nil {
		return "", err
	}
	return fmt.Sprintf("Searching for %q", query), nil
}

func (x *direct) content(ctx context.Context, topic string) (string, error) {
	topic = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(topic), "content"))
	if topic == "" {
		return "", fmt.Errorf("no content topic")
	}
	if x.Responder == nil {
		return "", domain.Errorf(domain.KindOracleUnavailable, "content", "no responder configured")
	}

	user := x.UserName
	if user == "" {
		user = "User"
	}
	text, err := x.Responder.Complete(ctx, ports.OracleRequest{
		Instruction: fmt.Sprintf("Hello, I am %s, a content writer. You write content like letters, code, applications, essays, notes, songs and poems. Reply with the content only.", user),
		Input:       topic,
		Temperature: domain.DefaultResponderTemperature,
		MaxTokens:   2048,
	})
	if err != nil {
		return "", err
	}

	dir := filepath.Join(x.DataDir, "content")
	if err := os.MkdirAll(dir, domain.DirectoryPermissions); err != nil {
		return "", fmt.Errorf("create content dir: %w", err)
	}
	path := filepath.Join(dir, slug(topic)+".txt")
	if err := os.WriteFile(path, []byte(strings.ReplaceAll(text, "</s>", "")), domain.RegularFilePermissions); err != nil {
		return "", fmt.Errorf("write content: %w", err)
	}
	if err := x.Launcher.OpenFile(path); err != nil && x.Logger != nil {
		x.Logger.Warn("content written but editor did not open", map[string]interface{}{"path": path, "error": err.Error()})
	}
	return fmt.Sprintf("Content written to %s", path), nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slug(topic string) string {
	s := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(topic), "_"), "_")
	if len(s) > 64 {
		s = strings.TrimRight(s[:64], "_")
	}
	if s == "" {
		s = "untitled"
	}
	return s
}

func (x *direct) general(ctx context.Context, query string) (string, error) {
	return x.answer(ctx, query, fmt.Sprintf(
		"You are %s, a helpful personal assistant talking to %s. Answer briefly and in the language of the question.",
		x.AssistantName, x.userName()))
}

func (x *direct) realtime(ctx context.Context, query string) (string, error) {
	now := x.Now()
	return x.answer(ctx, query, fmt.Sprintf(
		"You are %s, a helpful personal assistant talking to %s. The current date and time is %s. "+
			"Answer questions about current events with the most recent information you have and say when it may be outdated.",
		x.AssistantName, x.userName(), now.Format("Monday, 2 January 2006 15:04 MST")))
}

func (x *direct) answer(ctx context.Context, query, instruction string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", fmt.Errorf("empty question")
	}
	if x.Responder == nil {
		return "", domain.Errorf(domain.KindOracleUnavailable, "answer", "no responder configured")
	}
	return x.Responder.Complete(ctx, ports.OracleRequest{
		Instruction: instruction,
		Examples:    x.conversation(),
		Input:       query,
		Temperature: domain.DefaultResponderTemperature,
		MaxTokens:   1024,
	})
}

// conversation returns the most recent successful general/realtime exchanges,
// oldest first.
func (x *direct) conversation() []ports.Example {
	if x.History == nil {
		return nil
	}
	var turns []ports.Example
	for _, entry := range x.History.List() {
		for _, res := range entry.Results {
			if !res.SubCommand.Tag.IsConversational() || !res.Outcome.OK() {
				continue
			}
			turns = append(turns, ports.Example{Input: res.SubCommand.Payload, Output: res.Outcome.Output})
		}
	}
	if len(turns) > conversationTurns {
		turns = turns[len(turns)-conversationTurns:]
	}
	return turns
}

func (x *direct) exit(context.Context, string) (string, error) {
	return fmt.Sprintf("Goodbye! It was nice talking to you. %s signing off.", x.AssistantName), nil
}

func (x *direct) userName() string {
	if x.UserName == "" {
		return "the user"
	}
	return x.UserName
}
