package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/jarvis-go/internal/application/classify"
	"github.com/doeshing/jarvis-go/internal/application/dispatch"
	"github.com/doeshing/jarvis-go/internal/application/extract"
	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/infrastructure/history"
	"github.com/doeshing/jarvis-go/internal/ports"
)

type scriptedOracle struct {
	replies map[string]string
	err     error
}

func (o *scriptedOracle) Name() string { return "scripted" }

func (o *scriptedOracle) Complete(_ context.Context, req ports.OracleRequest) (string, error) {
	if o.err != nil {
		return "", o.err
	}
	return o.replies[req.Input], nil
}

type recordingActions struct {
	calls int32
}

func (r *recordingActions) Run(_ context.Context, id domain.ActionID, params domain.Params) (string, error) {
	atomic.AddInt32(&r.calls, 1)
	return fmt.Sprintf("%s %v", id, params.Keys()), nil
}

func newPipeline(classifier, extractor ports.TextOracle, actions ports.ActionExecutor, direct map[domain.Tag]ports.DirectExecutor) *Service {
	counter := int32(0)
	return &Service{
		Classifier: &classify.Service{Oracle: classifier},
		Dispatcher: &dispatch.Service{
			Direct:    direct,
			Extractor: &extract.Service{Oracle: extractor},
			Actions:   actions,
		},
		Store: history.NewMemoryStore(),
		NewID: func() string { return fmt.Sprintf("run-%d", atomic.AddInt32(&counter, 1)) },
		Now:   func() time.Time { return time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC) },
	}
}

func TestRunRecordsHistory(t *testing.T) {
	direct := map[domain.Tag]ports.DirectExecutor{
		domain.TagOpen: ports.DirectExecutorFunc(func(_ context.Context, p string) (string, error) { return "opened " + p, nil }),
		domain.TagExit: ports.DirectExecutorFunc(func(context.Context, string) (string, error) { return "Goodbye.", nil }),
	}
	p := newPipeline(&scriptedOracle{replies: map[string]string{
		"open chrome and firefox": "open chrome, open firefox",
		"bye":                     "exit",
	}}, nil, &recordingActions{}, direct)

	resp := p.Run(context.Background(), "  open chrome and firefox ")
	assert.Equal(t, "run-1", resp.EntryID)
	assert.Equal(t, "open chrome and firefox", resp.Utterance)
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "opened firefox", resp.Results[1].Outcome.Output)
	assert.False(t, resp.Exit)
	assert.Empty(t, resp.Degraded)

	bye := p.Run(context.Background(), "bye")
	assert.True(t, bye.Exit)

	entries := p.History().List()
	require.Len(t, entries, 2)
	assert.Equal(t, "run-1", entries[0].ID)
	assert.Equal(t, resp.SubCommands, entries[0].SubCommands)
}

func TestRunOracleDownStillAnswers(t *testing.T) {
	general := ports.DirectExecutorFunc(func(_ context.Context, q string) (string, error) { return "answer to " + q, nil })
	p := newPipeline(&scriptedOracle{err: errors.New("down")}, nil, nil, map[domain.Tag]ports.DirectExecutor{domain.TagGeneral: general})

	resp := p.Run(context.Background(), "who are you")

	require.Len(t, resp.SubCommands, 1)
	assert.Equal(t, "general who are you", resp.SubCommands[0].String())
	assert.Equal(t, "answer to who are you", resp.Results[0].Outcome.Output)
	assert.NotEmpty(t, resp.Degraded)
}

func TestRunAdvancedSystemScenario(t *testing.T) {
	actions := &recordingActions{}
	var jokes int32
	direct := map[domain.Tag]ports.DirectExecutor{
		domain.TagGeneral: ports.DirectExecutorFunc(func(context.Context, string) (string, error) {
			atomic.AddInt32(&jokes, 1)
			return "joke", nil
		}),
	}
	p := newPipeline(
		&scriptedOracle{replies: map[string]string{
			"shutdown the computer and tell me a joke": "advanced-system shutdown the computer, general tell me a joke",
		}},
		&scriptedOracle{err: errors.New("extractor offline")},
		actions, direct,
	)

	resp := p.Run(context.Background(), "shutdown the computer and tell me a joke")

	require.Len(t, resp.Results, 1)
	assert.Equal(t, domain.ActionShutdown, resp.Results[0].Action.Action)
	assert.True(t, resp.Results[0].Outcome.OK())
	assert.EqualValues(t, 1, atomic.LoadInt32(&actions.calls))
	assert.EqualValues(t, 0, atomic.LoadInt32(&jokes))
}

func TestRunLowConfidenceNeverExecutes(t *testing.T) {
	actions := &recordingActions{}
	p := newPipeline(
		&scriptedOracle{replies: map[string]string{"nap": "advanced-system nap"}},
		&scriptedOracle{replies: map[string]string{
			"nap": `{"action":"sleep","parameters":{},"confidence":0.2,"interpretation":"maybe sleep"}`,
		}},
		actions, nil,
	)

	resp := p.Run(context.Background(), "nap")

	require.Len(t, resp.Results, 1)
	assert.Equal(t, domain.StatusClarification, resp.Results[0].Outcome.Status)
	assert.Equal(t, domain.KindLowConfidence, resp.Results[0].Outcome.Kind)
	assert.EqualValues(t, 0, atomic.LoadInt32(&actions.calls))
}

func TestReplay(t *testing.T) {
	var opened int32
	direct := map[domain.Tag]ports.DirectExecutor{
		domain.TagOpen: ports.DirectExecutorFunc(func(context.Context, string) (string, error) {
			atomic.AddInt32(&opened, 1)
			return "ok", nil
		}),
	}
	classifier := &scriptedOracle{replies: map[string]string{"open notes": "open notes"}}
	p := newPipeline(classifier, nil, nil, direct)

	first := p.Run(context.Background(), "open notes")
	classifier.err = errors.New("would fail if called")

	replayed, err := p.Replay(context.Background(), first.EntryID)
	require.NoError(t, err)
	assert.NotEqual(t, first.EntryID, replayed.EntryID)
	assert.Equal(t, first.SubCommands, replayed.SubCommands)
	assert.EqualValues(t, 2, atomic.LoadInt32(&opened))
	assert.Len(t, p.History().List(), 2)

	_, err = p.Replay(context.Background(), "missing")
	assert.Error(t, err)
}

func TestRunActionRecords(t *testing.T) {
	actions := &recordingActions{}
	p := newPipeline(nil, nil, actions, nil)

	resp := p.RunAction(context.Background(), domain.StructuredAction{
		Action:         domain.ActionPing,
		Parameters:     domain.Params{},
		Confidence:     1,
		Interpretation: "Ping google",
	})

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "ping [hostname]", resp.Results[0].Outcome.Output)
	assert.Equal(t, "Ping google", resp.Utterance)
	assert.Len(t, p.History().List(), 1)
}

func TestConcurrentRunsKeepHistoryIntact(t *testing.T) {
	direct := map[domain.Tag]ports.DirectExecutor{
		domain.TagGeneral: ports.DirectExecutorFunc(func(_ context.Context, q string) (string, error) { return q, nil }),
	}
	p := newPipeline(&scriptedOracle{err: errors.New("down")}, nil, nil, direct)
	p.NewID = nil

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p.Run(context.Background(), fmt.Sprintf("question %d", i))
		}(i)
	}
	wg.Wait()

	entries := p.History().List()
	require.Len(t, entries, 32)
	for _, entry := range entries {
		require.Len(t, entry.Results, 1)
		assert.Equal(t, entry.Utterance, entry.Results[0].Outcome.Output)
	}
}
