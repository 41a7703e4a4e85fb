// Package pipeline owns one command run: classify, dispatch, record.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// Classifier is the tier-1 stage.
type Classifier interface {
	Classify(ctx context.Context, utterance string) domain.Classification
}

// Dispatcher executes classified sub-commands.
type Dispatcher interface {
	Dispatch(ctx context.Context, subCommands []domain.SubCommand) []domain.ExecutionResult
	ExecuteAction(ctx context.Context, action domain.StructuredAction) domain.ExecutionResult
}

// Service runs utterances end to end.
type Service struct {
	Classifier Classifier
	Dispatcher Dispatcher
	Store      ports.HistoryRepository
	Logger     ports.Logger

	// NewID and Now are replaceable in tests.
	NewID func() string
	Now   func() time.Time
}

// Run classifies and dispatches utterance, records the run and returns the
// aggregated response. It never fails: every problem is carried in the results.
func (s *Service) Run(ctx context.Context, utterance string) domain.Response {
	utterance = strings.TrimSpace(utterance)
	classification := s.Classifier.Classify(ctx, utterance)
	results := s.Dispatcher.Dispatch(ctx, classification.SubCommands)

	resp := s.record(utterance, classification.SubCommands, results)
	if classification.Degraded != nil {
		resp.Degraded = classification.Degraded.Error()
	}
	return resp
}

// Replay re-dispatches the sub-commands of a recorded entry without
// classifying again, and records the replay as a new entry.
func (s *Service) Replay(ctx context.Context, id string) (domain.Response, error) {
	entry, ok := s.Store.Get(id)
	if !ok {
		return domain.Response{}, fmt.Errorf("history entry %q not found", id)
	}
	s.info("replaying history entry", map[string]interface{}{"id": id, "sub_commands": len(entry.SubCommands)})
	results := s.Dispatcher.Dispatch(ctx, entry.SubCommands)
	return s.record(entry.Utterance, entry.SubCommands, results), nil
}

// RunAction executes an already structured action and records it.
func (s *Service) RunAction(ctx context.Context, action domain.StructuredAction) domain.Response {
	result := s.Dispatcher.ExecuteAction(ctx, action)
	utterance := action.Interpretation
	if utterance == "" {
		utterance = string(action.Action)
	}
	return s.record(utterance, []domain.SubCommand{result.SubCommand}, []domain.ExecutionResult{result})
}

// History exposes the store backing this pipeline.
func (s *Service) History() ports.HistoryRepository {
	return s.Store
}

func (s *Service) record(utterance string, subCommands []domain.SubCommand, results []domain.ExecutionResult) domain.Response {
	entry := domain.HistoryEntry{
		ID:          s.newID(),
		Timestamp:   s.now(),
		Utterance:   utterance,
		SubCommands: subCommands,
		Results:     results,
	}
	if s.Store != nil {
		if err := s.Store.Record(entry); err != nil && s.Logger != nil {
			s.Logger.Error("record history entry", err, map[string]interface{}{"id": entry.ID})
		}
	}

	return domain.Response{
		EntryID:     entry.ID,
		Utterance:   utterance,
		SubCommands: subCommands,
		Results:     results,
		Exit:        exitRequested(results),
	}
}

func exitRequested(results []domain.ExecutionResult) bool {
	for _, res := range results {
		if res.SubCommand.Tag == domain.TagExit {
			return true
		}
	}
	return false
}

func (s *Service) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) info(msg string, fields map[string]interface{}) {
	if s.Logger != nil {
		s.Logger.Info(msg, fields)
	}
}
