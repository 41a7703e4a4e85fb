// Package classify is the tier-1 intent router. It turns an utterance into an
// ordered list of tagged sub-commands using a language-model oracle and never
// fails: unusable oracle output degrades to a single general query.
package classify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// placeholder appears when the oracle echoed an instruction template.
const placeholder = "(query)"

// Service classifies utterances.
type Service struct {
	Oracle      ports.TextOracle
	Logger      ports.Logger
	Temperature float64
	Timeout     time.Duration
}

// Classify returns a non-empty classification for utterance.
func (s *Service) Classify(ctx context.Context, utterance string) domain.Classification {
	raw, err := s.complete(ctx, utterance)
	if err != nil {
		s.warn("classifier oracle failed, treating as general query", err, utterance)
		return fallback(utterance, err)
	}

	subCommands, err := Parse(raw)
	if err != nil {
		s.warn("classifier output unusable, treating as general query", err, utterance)
		return fallback(utterance, err)
	}

	s.debug("classified", map[string]interface{}{
		"utterance":    utterance,
		"sub_commands": len(subCommands),
	})
	return domain.Classification{SubCommands: subCommands}
}

func (s *Service) complete(ctx context.Context, utterance string) (text string, err error) {
	const op = "classify"

	if s.Oracle == nil {
		return "", domain.Errorf(domain.KindOracleUnavailable, op, "no classifier oracle configured")
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultOracleTimeout
	}
	temperature := s.Temperature
	if temperature <= 0 {
		temperature = domain.DefaultClassifierTemperature
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = domain.Errorf(domain.KindOracleUnavailable, op, "oracle panicked: %v", r)
		}
	}()

	text, err = s.Oracle.Complete(ctx, ports.OracleRequest{
		Instruction: instruction,
		Examples:    examples,
		Input:       utterance,
		Temperature: temperature,
		MaxTokens:   domain.DefaultMaxTokens,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", domain.NewError(domain.KindTimeout, op, err)
		}
		return "", domain.NewError(domain.KindOracleUnavailable, op, err)
	}
	return text, nil
}

// Parse post-processes raw oracle text: newlines are dropped, the text is split
// on commas and every token that does not start with a known tag is discarded.
// An empty result, or a retained token still carrying the template placeholder,
// is a KindMalformedClassification error.
func Parse(raw string) ([]domain.SubCommand, error) {
	const op = "classify.parse"

	cleaned := strings.NewReplacer("\r", "", "\n", "").Replace(raw)
	var out []domain.SubCommand
	for _, token := range strings.Split(cleaned, ",") {
		token = strings.TrimSpace(token)
		sub, ok := domain.ParseSubCommand(token)
		if !ok {
			continue
		}
		if strings.Contains(token, placeholder) {
			return nil, domain.Errorf(domain.KindMalformedClassification, op, "template placeholder in %q", token)
		}
		out = append(out, sub)
	}
	if len(out) == 0 {
		return nil, domain.Errorf(domain.KindMalformedClassification, op, "no recognised tag in %q", raw)
	}
	return out, nil
}

// HasAdvancedSystem reports whether any sub-command is tagged advanced-system,
// in which case callers treat the whole utterance as a system operation.
func HasAdvancedSystem(subCommands []domain.SubCommand) bool {
	for _, sub := range subCommands {
		if sub.Tag == domain.TagAdvancedSystem {
			return true
		}
	}
	return false
}

func fallback(utterance string, cause error) domain.Classification {
	return domain.Classification{
		SubCommands: []domain.SubCommand{{Tag: domain.TagGeneral, Payload: utterance}},
		Degraded:    cause,
	}
}

func (s *Service) warn(msg string, err error, utterance string) {
	if s.Logger == nil {
		return
	}
	s.Logger.Warn(msg, map[string]interface{}{
		"utterance": utterance,
		"kind":      domain.KindOf(err),
		"error":     fmt.Sprint(err),
	})
}

func (s *Service) debug(msg string, fields map[string]interface{}) {
	if s.Logger != nil {
		s.Logger.Debug(msg, fields)
	}
}
