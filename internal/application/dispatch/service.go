// Package dispatch routes tagged sub-commands to their executors. Independent
// sub-commands run concurrently and every one of them yields exactly one
// result in its own slot, whatever its siblings do.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/doeshing/jarvis-go/internal/catalog"
	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// Extractor produces structured actions for advanced-system payloads.
type Extractor interface {
	Extract(ctx context.Context, payload string) domain.Extraction
}

// Service dispatches sub-command batches.
type Service struct {
	Direct        map[domain.Tag]ports.DirectExecutor
	Extractor     Extractor
	Actions       ports.ActionExecutor
	Catalog       *catalog.Catalog
	Logger        ports.Logger
	MinConfidence float64
	// MaxConcurrency bounds executor calls in flight per batch. Zero means no
	// bound. With a bound, a hung executor holds its slot until its deadline
	// and later sub-commands wait behind it.
	MaxConcurrency int
	Timeout        time.Duration
}

// Dispatch executes a batch and returns results index-aligned to the input.
//
// When the batch contains an advanced-system sub-command, only the first such
// sub-command is executed and its result is the sole result of the batch.
func (s *Service) Dispatch(ctx context.Context, subCommands []domain.SubCommand) []domain.ExecutionResult {
	for i, sub := range subCommands {
		if sub.Tag != domain.TagAdvancedSystem {
			continue
		}
		if skipped := len(subCommands) - 1; skipped > 0 {
			s.warn("advanced-system takes the whole batch, skipping siblings", map[string]interface{}{
				"index":   i,
				"skipped": skipped,
			})
		}
		return []domain.ExecutionResult{s.safely(i, sub, func() domain.ExecutionResult {
			return s.runAdvanced(ctx, i, sub)
		})}
	}

	results := make([]domain.ExecutionResult, len(subCommands))
	var group errgroup.Group
	group.SetLimit(s.maxConcurrency())
	for i, sub := range subCommands {
		group.Go(func() error {
			results[i] = s.safely(i, sub, func() domain.ExecutionResult {
				return s.runDirect(ctx, i, sub)
			})
			return nil
		})
	}
	_ = group.Wait()

	s.debug("batch dispatched", map[string]interface{}{"size": len(subCommands)})
	return results
}

// ExecuteAction runs an already structured action through the confidence gate
// and catalog validation, bypassing extraction.
func (s *Service) ExecuteAction(ctx context.Context, action domain.StructuredAction) domain.ExecutionResult {
	sub := domain.NewSubCommand(domain.TagAdvancedSystem, action.Interpretation)
	return s.safely(0, sub, func() domain.ExecutionResult {
		return s.execute(ctx, 0, sub, action)
	})
}

func (s *Service) runDirect(ctx context.Context, index int, sub domain.SubCommand) domain.ExecutionResult {
	result := domain.ExecutionResult{SubCommandIndex: index, SubCommand: sub}
	started := time.Now()

	executor, ok := s.Direct[sub.Tag]
	if !ok || executor == nil {
		result.Outcome = domain.Failure(domain.Errorf(domain.KindExecutorFailure, "dispatch", "no executor registered for %q", sub.Tag))
		return result
	}

	out, err := s.guarded(ctx, s.timeout(), "dispatch."+string(sub.Tag), func(ctx context.Context) (string, error) {
		return executor.Execute(ctx, sub.Payload)
	})
	result.Duration = time.Since(started)
	result.Outcome = outcome(out, err)
	s.logResult(result)
	return result
}

func (s *Service) runAdvanced(ctx context.Context, index int, sub domain.SubCommand) domain.ExecutionResult {
	if s.Extractor == nil {
		return domain.ExecutionResult{
			SubCommandIndex: index,
			SubCommand:      sub,
			Outcome:         domain.Failure(domain.Errorf(domain.KindExecutorFailure, "dispatch", "no extractor configured")),
		}
	}
	extraction := s.Extractor.Extract(ctx, sub.Payload)
	return s.execute(ctx, index, sub, extraction.Action)
}

func (s *Service) execute(ctx context.Context, index int, sub domain.SubCommand, action domain.StructuredAction) domain.ExecutionResult {
	proposed := action.Clone()
	result := domain.ExecutionResult{SubCommandIndex: index, SubCommand: sub, Action: &proposed}

	if math.IsNaN(action.Confidence) || action.Confidence < 0 || action.Confidence > 1 {
		s.info("action confidence outside [0,1], asking for clarification", map[string]interface{}{
			"action":     action.Action,
			"confidence": action.Confidence,
		})
		result.Outcome = domain.Clarification(domain.KindMalformedStructuredAction, domain.ClarificationPrompt)
		return result
	}
	if action.Confidence < s.minConfidence() {
		s.info("action below confidence gate, asking for clarification", map[string]interface{}{
			"action":     action.Action,
			"confidence": action.Confidence,
		})
		result.Outcome = domain.Clarification(domain.KindLowConfidence, domain.ClarificationPrompt)
		return result
	}

	normalized, err := s.catalog().Normalize(action)
	if err != nil {
		s.info("action rejected before execution", map[string]interface{}{
			"action": action.Action,
			"error":  err.Error(),
		})
		result.Outcome = domain.Clarification(domain.KindOf(err), domain.ClarificationPrompt)
		return result
	}
	result.Action = &normalized

	if s.Actions == nil {
		result.Outcome = domain.Failure(domain.Errorf(domain.KindExecutorFailure, "dispatch", "no action executor configured"))
		return result
	}

	started := time.Now()
	out, err := s.guarded(ctx, s.actionTimeout(normalized), "dispatch."+string(normalized.Action), func(ctx context.Context) (string, error) {
		return s.Actions.Run(ctx, normalized.Action, normalized.Parameters.Clone())
	})
	result.Duration = time.Since(started)
	result.Outcome = outcome(out, err)
	s.logResult(result)
	return result
}

type reply struct {
	out string
	err error
}

// guarded runs fn under its own deadline. The deadline is enforced even when
// fn ignores its context: the call is abandoned and reported as a timeout.
func (s *Service) guarded(ctx context.Context, timeout time.Duration, op string, fn func(context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- reply{err: domain.Errorf(domain.KindExecutorFailure, op, "executor panicked: %v", r)}
			}
		}()
		out, err := fn(ctx)
		done <- reply{out: out, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", domain.NewError(domain.KindTimeout, op, r.err)
		}
		return r.out, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", domain.Errorf(domain.KindTimeout, op, "no result after %s", timeout)
		}
		return "", domain.NewError(domain.KindExecutorFailure, op, ctx.Err())
	}
}

// safely converts a panic in dispatch bookkeeping into a failure result.
func (s *Service) safely(index int, sub domain.SubCommand, fn func() domain.ExecutionResult) (result domain.ExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.ExecutionResult{
				SubCommandIndex: index,
				SubCommand:      sub,
				Outcome:         domain.Failure(domain.Errorf(domain.KindExecutorFailure, "dispatch", "panic: %v", r)),
			}
		}
	}()
	return fn()
}

func outcome(out string, err error) domain.Outcome {
	if err != nil {
		return domain.Failure(err)
	}
	return domain.Success(out)
}

func (s *Service) minConfidence() float64 {
	if s.MinConfidence <= 0 {
		return domain.DefaultMinConfidence
	}
	return s.MinConfidence
}

// maxConcurrency is the errgroup limit; -1 lets every sub-command start at once.
func (s *Service) maxConcurrency() int {
	if s.MaxConcurrency <= 0 {
		return -1
	}
	return s.MaxConcurrency
}

func (s *Service) timeout() time.Duration {
	if s.Timeout <= 0 {
		return domain.DefaultExecutorTimeout
	}
	return s.Timeout
}

// actionTimeout is the executor deadline for a validated action. A command
// may ask for its own deadline; monitoring gets its sampling window plus
// domain.MonitorGrace whenever that outlasts the default.
func (s *Service) actionTimeout(action domain.StructuredAction) time.Duration {
	timeout := s.timeout()
	switch action.Action {
	case domain.ActionExecuteCommand:
		if secs := action.Parameters.Number("timeout", 0); secs > 0 {
			return seconds(secs, domain.MaxCommandTimeout)
		}
	case domain.ActionMonitorResources:
		window := seconds(action.Parameters.Number("duration", 0), domain.MaxMonitorSeconds*time.Second) + domain.MonitorGrace
		if window > timeout {
			return window
		}
	}
	return timeout
}

// seconds converts secs to a duration clamped to [0, limit].
func seconds(secs float64, limit time.Duration) time.Duration {
	switch {
	case !(secs > 0):
		return 0
	case secs >= limit.Seconds():
		return limit
	default:
		return time.Duration(secs * float64(time.Second))
	}
}

func (s *Service) catalog() *catalog.Catalog {
	if s.Catalog == nil {
		return catalog.Default
	}
	return s.Catalog
}

func (s *Service) logResult(result domain.ExecutionResult) {
	fields := map[string]interface{}{
		"index":    result.SubCommandIndex,
		"tag":      result.SubCommand.Tag,
		"status":   result.Outcome.Status,
		"duration": result.Duration.String(),
	}
	if result.Outcome.OK() {
		s.debug("sub-command finished", fields)
		return
	}
	fields["kind"] = result.Outcome.Kind
	s.warn(fmt.Sprintf("sub-command failed: %s", result.Outcome.Message), fields)
}

func (s *Service) debug(msg string, fields map[string]interface{}) {
	if s.Logger != nil {
		s.Logger.Debug(msg, fields)
	}
}

func (s *Service) info(msg string, fields map[string]interface{}) {
	if s.Logger != nil {
		s.Logger.Info(msg, fields)
	}
}

func (s *Service) warn(msg string, fields map[string]interface{}) {
	if s.Logger != nil {
		s.Logger.Warn(msg, fields)
	}
}
