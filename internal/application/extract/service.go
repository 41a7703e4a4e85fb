// Package extract is the tier-2 parameter extractor. It turns an
// advanced-system payload into a structured action, preferring the oracle and
// falling back to the deterministic keyword matcher on any failure.
package extract

import (
	"context"
	"fmt"
	"time"

	"github.com/doeshing/jarvis-go/internal/catalog"
	"github.com/doeshing/jarvis-go/internal/domain"
	"github.com/doeshing/jarvis-go/internal/fallback"
	"github.com/doeshing/jarvis-go/internal/ports"
)

// Service extracts structured actions.
type Service struct {
	Oracle      ports.TextOracle
	Catalog     *catalog.Catalog
	Fallback    *fallback.Matcher
	Logger      ports.Logger
	Temperature float64
	Timeout     time.Duration
}

// Extract always returns an action registered in the catalog.
func (s *Service) Extract(ctx context.Context, payload string) domain.Extraction {
	cat := s.catalog()

	raw, err := s.complete(ctx, cat, payload)
	if err == nil {
		var action domain.StructuredAction
		action, err = Decode(raw, cat)
		if err == nil {
			s.debug("extracted", payload, action, domain.SourceOracle)
			return domain.Extraction{Action: action, Source: domain.SourceOracle}
		}
	}

	matcher := s.Fallback
	if matcher == nil {
		matcher = fallback.New(cat)
	}
	action := matcher.Match(payload)
	if s.Logger != nil {
		s.Logger.Warn("extractor degraded to keyword matcher", map[string]interface{}{
			"payload": payload,
			"kind":    domain.KindOf(err),
			"error":   fmt.Sprint(err),
			"action":  action.Action,
		})
	}
	return domain.Extraction{Action: action, Source: domain.SourceFallback, Degraded: err}
}

func (s *Service) complete(ctx context.Context, cat *catalog.Catalog, payload string) (text string, err error) {
	const op = "extract"

	if s.Oracle == nil {
		return "", domain.Errorf(domain.KindOracleUnavailable, op, "no extractor oracle configured")
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = domain.DefaultOracleTimeout
	}
	temperature := s.Temperature
	if temperature <= 0 {
		temperature = domain.DefaultExtractorTemperature
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = domain.Errorf(domain.KindOracleUnavailable, op, "oracle panicked: %v", r)
		}
	}()

	text, err = s.Oracle.Complete(ctx, ports.OracleRequest{
		Instruction: buildInstruction(cat),
		Examples:    examples,
		Input:       payload,
		Temperature: temperature,
		MaxTokens:   domain.DefaultMaxTokens,
		JSON:        true,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", domain.NewError(domain.KindTimeout, op, err)
		}
		return "", domain.NewError(domain.KindOracleUnavailable, op, err)
	}
	return text, nil
}

func (s *Service) catalog() *catalog.Catalog {
	if s.Catalog == nil {
		return catalog.Default
	}
	return s.Catalog
}

func (s *Service) debug(msg, payload string, action domain.StructuredAction, source domain.ExtractionSource) {
	if s.Logger == nil {
		return
	}
	s.Logger.Debug(msg, map[string]interface{}{
		"payload":    payload,
		"action":     action.Action,
		"confidence": action.Confidence,
		"source":     source,
	})
}
