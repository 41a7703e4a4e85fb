package executors

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/infrastructure/history"
	"github.com/doeshing/jarvis-go/internal/ports"
)

type fakeLauncher struct {
	mu    sync.Mutex
	urls  []string
	files []string
	apps  []string
}

func (f *fakeLauncher) OpenURL(u string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.urls = append(f.urls, u)
	return nil
}

func (f *fakeLauncher) OpenFile(p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files = append(f.files, p)
	return nil
}

func (f *fakeLauncher) StartApp(name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apps = append(f.apps, name)
	return nil
}

type fakeRunner struct {
	available map[string]bool
	calls     []string
	err       error
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.calls = append(f.calls, strings.Join(append([]string{name}, args...), " "))
	return "", f.err
}

func (f *fakeRunner) Shell(_ context.Context, command string) (string, error) {
	f.calls = append(f.calls, command)
	return "", f.err
}

func (f *fakeRunner) Start(command string) error {
	f.calls = append(f.calls, command)
	return f.err
}

func (f *fakeRunner) LookPath(name string) bool {
	return f.available[name]
}

type echoOracle struct {
	last ports.OracleRequest
	err  error
}

func (o *echoOracle) Name() string { return "echo" }

func (o *echoOracle) Complete(_ context.Context, req ports.OracleRequest) (string, error) {
	o.last = req
	if o.err != nil {
		return "", o.err
	}
	return "answer: " + req.Input, nil
}

func newRegistry(t *testing.T, d Deps) map[domain.Tag]ports.DirectExecutor {
	t.Helper()
	if d.Launcher == nil {
		d.Launcher = &fakeLauncher{}
	}
	return Registry(d)
}

func TestRegistry_CoversDirectTags(t *testing.T) {
	reg := newRegistry(t, Deps{})

	for _, tag := range []domain.Tag{
		domain.TagOpen, domain.TagClose, domain.TagPlay, domain.TagContent,
		domain.TagGoogleSearch, domain.TagYouTubeSearch, domain.TagSystem,
		domain.TagGeneral, domain.TagRealtime, domain.TagExit,
	} {
		assert.Contains(t, reg, tag)
	}
	assert.NotContains(t, reg, domain.TagGenerateImage)
	assert.NotContains(t, reg, domain.TagReminder)
	assert.NotContains(t, reg, domain.TagAdvancedSystem)
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		wantApp string
		wantURL string
		wantErr bool
	}{
		{name: "installed app", target: "Firefox", wantApp: "firefox"},
		{name: "domain", target: "github.com", wantURL: "https://github.com"},
		{name: "full url", target: "https://go.dev/doc", wantURL: "https://go.dev/doc"},
		{name: "unknown name searches", target: "visual studio", wantURL: googleSearchURL + "visual+studio"},
		{name: "empty", target: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			launcher := &fakeLauncher{}
			runner := &fakeRunner{available: map[string]bool{"firefox": true}}
			reg := newRegistry(t, Deps{Launcher: launcher, Runner: runner})

			_, err := reg[domain.TagOpen].Execute(context.Background(), tt.target)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.wantApp != "" {
				assert.Equal(t, []string{tt.wantApp}, launcher.apps)
				assert.Empty(t, launcher.urls)
			}
			if tt.wantURL != "" {
				assert.Equal(t, []string{tt.wantURL}, launcher.urls)
			}
		})
	}
}

func TestClose_PlatformCommand(t *testing.T) {
	runner := &fakeRunner{}
	out, err := newRegistry(t, Deps{Runner: runner, GOOS: "linux"})[domain.TagClose].Execute(context.Background(), "spotify")
	require.NoError(t, err)
	assert.Equal(t, "Closed spotify", out)
	assert.Equal(t, []string{"pkill -i spotify"}, runner.calls)

	runner = &fakeRunner{}
	_, err = newRegistry(t, Deps{Runner: runner, GOOS: "windows"})[domain.TagClose].Execute(context.Background(), "chrome")
	require.NoError(t, err)
	assert.Equal(t, []string{"taskkill /f /im chrome.exe"}, runner.calls)

	runner = &fakeRunner{err: errors.New("exit status 1")}
	_, err = newRegistry(t, Deps{Runner: runner, GOOS: "linux"})[domain.TagClose].Execute(context.Background(), "ghost")
	assert.Error(t, err)
}

func TestSearchExecutors(t *testing.T) {
	launcher := &fakeLauncher{}
	reg := newRegistry(t, Deps{Launcher: launcher})

	_, err := reg[domain.TagPlay].Execute(context.Background(), "afsanay by ys")
	require.NoError(t, err)
	_, err = reg[domain.TagGoogleSearch].Execute(context.Background(), "go generics")
	require.NoError(t, err)
	_, err = reg[domain.TagYouTubeSearch].Execute(context.Background(), "")
	require.Error(t, err)

	assert.Equal(t, []string{
		youtubeSearchURL + "afsanay+by+ys",
		googleSearchURL + "go+generics",
	}, launcher.urls)
}

func TestContent_WritesFileAndOpensIt(t *testing.T) {
	dir := t.TempDir()
	launcher := &fakeLauncher{}
	oracle := &echoOracle{}
	reg := newRegistry(t, Deps{Launcher: launcher, Responder: oracle, DataDir: dir, UserName: "Tony"})

	out, err := reg[domain.TagContent].Execute(context.Background(), "application for sick leave")
	require.NoError(t, err)

	path := filepath.Join(dir, "content", "application_for_sick_leave.txt")
	assert.Contains(t, out, path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "answer: application for sick leave", string(data))
	assert.Equal(t, []string{path}, launcher.files)
	assert.Contains(t, oracle.last.Instruction, "Tony")
}

func TestContent_OracleFailure(t *testing.T) {
	oracle := &echoOracle{err: domain.Errorf(domain.KindOracleUnavailable, "test", "down")}
	reg := newRegistry(t, Deps{Responder: oracle, DataDir: t.TempDir()})

	_, err := reg[domain.TagContent].Execute(context.Background(), "a poem")
	require.Error(t, err)
	assert.Equal(t, domain.KindOracleUnavailable, domain.KindOf(err))
}

func TestSystem_Volume(t *testing.T) {
	tests := []struct {
		name      string
		goos      string
		available map[string]bool
		command   string
		wantCall  string
		wantErr   bool
	}{
		{name: "pactl mute", goos: "linux", available: map[string]bool{"pactl": true}, command: "mute",
			wantCall: "pactl set-sink-mute @DEFAULT_SINK@ 1"},
		{name: "amixer fallback", goos: "linux", available: map[string]bool{"amixer": true}, command: "volume  up",
			wantCall: "amixer -q set Master 5%+"},
		{name: "macos", goos: "darwin", available: map[string]bool{"osascript": true}, command: "Unmute",
			wantCall: "osascript -e set volume output muted false"},
		{name: "no tool", goos: "linux", available: map[string]bool{}, command: "mute", wantErr: true},
		{name: "unsupported os", goos: "plan9", available: map[string]bool{}, command: "mute", wantErr: true},
		{name: "unknown command", goos: "linux", available: map[string]bool{"pactl": true}, command: "brightness up", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{available: tt.available}
			reg := newRegistry(t, Deps{Runner: runner, GOOS: tt.goos})

			_, err := reg[domain.TagSystem].Execute(context.Background(), tt.command)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{tt.wantCall}, runner.calls)
		})
	}
}

func TestConversational(t *testing.T) {
	oracle := &echoOracle{}
	now := time.Date(2024, 5, 6, 9, 30, 0, 0, time.UTC)
	reg := newRegistry(t, Deps{Responder: oracle, AssistantName: "Friday", Now: func() time.Time { return now }})

	out, err := reg[domain.TagGeneral].Execute(context.Background(), "how are you")
	require.NoError(t, err)
	assert.Equal(t, "answer: how are you", out)
	assert.Contains(t, oracle.last.Instruction, "Friday")

	_, err = reg[domain.TagRealtime].Execute(context.Background(), "who won the match")
	require.NoError(t, err)
	assert.Contains(t, oracle.last.Instruction, "Monday, 6 May 2024")

	out, err = reg[domain.TagExit].Execute(context.Background(), "")
	require.NoError(t, err)
	assert.Contains(t, out, "Friday signing off")
}

func TestConversational_ReplaysEarlierTurns(t *testing.T) {
	store := history.NewMemoryStore()
	require.NoError(t, store.Record(domain.HistoryEntry{
		ID: "run-1",
		Results: []domain.ExecutionResult{
			{SubCommand: domain.SubCommand{Tag: domain.TagGeneral, Payload: "my name is Tony"}, Outcome: domain.Success("Nice to meet you, Tony.")},
			{SubCommand: domain.SubCommand{Tag: domain.TagOpen, Payload: "chrome"}, Outcome: domain.Success("Opened chrome")},
			{SubCommand: domain.SubCommand{Tag: domain.TagRealtime, Payload: "weather"}, Outcome: domain.Failure(errors.New("offline"))},
		},
	}))
	oracle := &echoOracle{}
	reg := newRegistry(t, Deps{Responder: oracle, History: store})

	_, err := reg[domain.TagGeneral].Execute(context.Background(), "what is my name")
	require.NoError(t, err)
	assert.Equal(t, []ports.Example{{Input: "my name is Tony", Output: "Nice to meet you, Tony."}}, oracle.last.Examples)

	for i := 0; i < conversationTurns+2; i++ {
		require.NoError(t, store.Record(domain.HistoryEntry{
			ID: fmt.Sprintf("run-%d", i+2),
			Results: []domain.ExecutionResult{
				{SubCommand: domain.SubCommand{Tag: domain.TagGeneral, Payload: fmt.Sprint(i)}, Outcome: domain.Success("ok")},
			},
		}))
	}
	_, err = reg[domain.TagGeneral].Execute(context.Background(), "and now")
	require.NoError(t, err)
	require.Len(t, oracle.last.Examples, conversationTurns)
	assert.Equal(t, fmt.Sprint(conversationTurns+1), oracle.last.Examples[conversationTurns-1].Input)
}

func TestConversational_NoResponder(t *testing.T) {
	_, err := newRegistry(t, Deps{})[domain.TagGeneral].Execute(context.Background(), "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrOracleUnavailable)
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "application_for_sick_leave", slug("Application for sick leave!"))
	assert.Equal(t, "untitled", slug("???"))
	assert.LessOrEqual(t, len(slug(strings.Repeat("word ", 40))), 64)
}
