package extract

import (
	"errors"
	"io"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/doeshing/jarvis-go/internal/catalog"
	"github.com/doeshing/jarvis-go/internal/domain"
)

// wireAction mirrors the oracle record. Pointers distinguish absent fields
// from zero values.
type wireAction struct {
	Action         *string                `json:"action"`
	Parameters     map[string]interface{} `json:"parameters"`
	Confidence     *float64               `json:"confidence"`
	Interpretation *string                `json:"interpretation"`
}

// Decode strictly validates raw oracle output. The text must be one JSON
// object, optionally inside a markdown fence, with exactly the four record
// fields, and its parameters must satisfy the catalog entry of the action.
// Unregistered actions are KindUnknownAction; every other defect is
// KindMalformedStructuredAction.
func Decode(raw string, cat *catalog.Catalog) (domain.StructuredAction, error) {
	const op = "extract.decode"

	body := unwrapFence(raw)
	if body == "" {
		return domain.StructuredAction{}, domain.Errorf(domain.KindMalformedStructuredAction, op, "empty response")
	}

	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()

	var wire wireAction
	if err := dec.Decode(&wire); err != nil {
		return domain.StructuredAction{}, domain.NewError(domain.KindMalformedStructuredAction, op, err)
	}
	var trailing json.RawMessage
	if err := dec.Decode(&trailing); !errors.Is(err, io.EOF) {
		return domain.StructuredAction{}, domain.Errorf(domain.KindMalformedStructuredAction, op, "trailing data after record")
	}

	switch {
	case wire.Action == nil || strings.TrimSpace(*wire.Action) == "":
		return domain.StructuredAction{}, domain.Errorf(domain.KindMalformedStructuredAction, op, "missing action")
	case wire.Parameters == nil:
		return domain.StructuredAction{}, domain.Errorf(domain.KindMalformedStructuredAction, op, "missing parameters")
	case wire.Confidence == nil:
		return domain.StructuredAction{}, domain.Errorf(domain.KindMalformedStructuredAction, op, "missing confidence")
	case wire.Interpretation == nil:
		return domain.StructuredAction{}, domain.Errorf(domain.KindMalformedStructuredAction, op, "missing interpretation")
	case *wire.Confidence < 0 || *wire.Confidence > 1:
		return domain.StructuredAction{}, domain.Errorf(domain.KindMalformedStructuredAction, op, "confidence %v outside [0,1]", *wire.Confidence)
	}

	params := make(domain.Params, len(wire.Parameters))
	for name, value := range wire.Parameters {
		switch value.(type) {
		case string, float64:
			params[name] = value
		default:
			return domain.StructuredAction{}, domain.Errorf(domain.KindMalformedStructuredAction, op, "parameter %q has unsupported type %T", name, value)
		}
	}

	id := domain.ActionID(strings.TrimSpace(*wire.Action))
	if !cat.Has(id) {
		return domain.StructuredAction{}, domain.Errorf(domain.KindUnknownAction, op, "action %q is not registered", id)
	}

	return cat.Normalize(domain.StructuredAction{
		Action:         id,
		Parameters:     params,
		Confidence:     *wire.Confidence,
		Interpretation: *wire.Interpretation,
	})
}

// unwrapFence returns the body of a markdown code fence when the whole reply
// is fenced, dropping a language marker such as "json".
func unwrapFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	inner := strings.TrimPrefix(content, "```")
	end := strings.LastIndex(inner, "```")
	if end == -1 {
		return ""
	}
	inner = inner[:end]
	if nl := strings.IndexByte(inner, '\n'); nl != -1 && !strings.ContainsAny(inner[:nl], "{[") {
		inner = inner[nl+1:]
	}
	return strings.TrimSpace(inner)
}
