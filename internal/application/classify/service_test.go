package classify

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

type stubOracle struct {
	reply string
	err   error
	delay time.Duration
	last  ports.OracleRequest
	calls int
}

func (s *stubOracle) Name() string { return "stub" }

func (s *stubOracle) Complete(ctx context.Context, req ports.OracleRequest) (string, error) {
	s.calls++
	s.last = req
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return s.reply, s.err
}

type panicOracle struct{}

func (panicOracle) Name() string { return "panic" }

func (panicOracle) Complete(context.Context, ports.OracleRequest) (string, error) {
	panic("boom")
}

func TestClassifySplitsAndFilters(t *testing.T) {
	oracle := &stubOracle{reply: "open chrome,\n general tell me a joke, bogus thing, google search go generics"}
	svc := &Service{Oracle: oracle}

	got := svc.Classify(context.Background(), "open chrome and tell me a joke")

	require.NoError(t, got.Degraded)
	assert.Equal(t, []domain.SubCommand{
		{Tag: domain.TagOpen, Payload: "chrome"},
		{Tag: domain.TagGeneral, Payload: "tell me a joke"},
		{Tag: domain.TagGoogleSearch, Payload: "go generics"},
	}, got.SubCommands)

	assert.Equal(t, "open chrome and tell me a joke", oracle.last.Input)
	assert.NotEmpty(t, oracle.last.Examples)
	assert.InDelta(t, domain.DefaultClassifierTemperature, oracle.last.Temperature, 1e-9)
	assert.Contains(t, oracle.last.Instruction, "Do not answer any query")
}

func TestClassifyFallsBack(t *testing.T) {
	tests := []struct {
		name   string
		oracle ports.TextOracle
		kind   domain.ErrorKind
	}{
		{name: "oracle error", oracle: &stubOracle{err: errors.New("connection refused")}, kind: domain.KindOracleUnavailable},
		{name: "no known tag", oracle: &stubOracle{reply: "I think you should rest"}, kind: domain.KindMalformedClassification},
		{name: "empty reply", oracle: &stubOracle{reply: ""}, kind: domain.KindMalformedClassification},
		{name: "echoed template", oracle: &stubOracle{reply: "open chrome, general (query)"}, kind: domain.KindMalformedClassification},
		{name: "panic", oracle: panicOracle{}, kind: domain.KindOracleUnavailable},
		{name: "no oracle", oracle: nil, kind: domain.KindOracleUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &Service{Oracle: tt.oracle}
			got := svc.Classify(context.Background(), "who won the match")

			assert.Equal(t, []domain.SubCommand{{Tag: domain.TagGeneral, Payload: "who won the match"}}, got.SubCommands)
			require.Error(t, got.Degraded)
			assert.Equal(t, tt.kind, domain.KindOf(got.Degraded))
		})
	}
}

func TestClassifyTimeout(t *testing.T) {
	svc := &Service{Oracle: &stubOracle{reply: "open chrome", delay: time.Second}, Timeout: 20 * time.Millisecond}

	got := svc.Classify(context.Background(), "open chrome")

	assert.Equal(t, domain.TagGeneral, got.SubCommands[0].Tag)
	assert.Equal(t, domain.KindTimeout, domain.KindOf(got.Degraded))
}

func TestParseAcceptsOracleSpellings(t *testing.T) {
	got, err := Parse("advanced system kill chrome, generate image of a lion, youtube search lofi, exit")
	require.NoError(t, err)
	assert.Equal(t, []domain.SubCommand{
		{Tag: domain.TagAdvancedSystem, Payload: "kill chrome"},
		{Tag: domain.TagGenerateImage, Payload: "of a lion"},
		{Tag: domain.TagYouTubeSearch, Payload: "lofi"},
		{Tag: domain.TagExit},
	}, got)
	assert.True(t, HasAdvancedSystem(got))
	assert.False(t, HasAdvancedSystem(got[1:]))
}

func TestParseRequiresWordBoundary(t *testing.T) {
	_, err := Parse("opening statement, systematic review")
	assert.Equal(t, domain.KindMalformedClassification, domain.KindOf(err))
}

func TestProperty_ClassifyNeverEmpty(t *testing.T) {
	replies := gen.OneGenOf(
		gen.AnyString(),
		gen.OneConstOf("open a, close b", "general (query)", "", ",,,", "exit", "play x, nonsense"),
	)

	properties := gopter.NewProperties(nil)

	properties.Property("every element starts with a recognised tag", prop.ForAll(
		func(reply, utterance string) bool {
			got := (&Service{Oracle: &stubOracle{reply: reply}}).Classify(context.Background(), utterance)
			if len(got.SubCommands) == 0 {
				return false
			}
			for _, sub := range got.SubCommands {
				if _, ok := domain.ParseTag(string(sub.Tag)); !ok {
					return false
				}
			}
			return true
		},
		replies, gen.AlphaString(),
	))

	properties.Property("unreachable oracle yields general utterance", prop.ForAll(
		func(utterance string) bool {
			got := (&Service{Oracle: &stubOracle{err: errors.New("down")}}).Classify(context.Background(), utterance)
			return len(got.SubCommands) == 1 &&
				got.SubCommands[0].String() == strings.TrimSpace("general "+utterance)
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}
