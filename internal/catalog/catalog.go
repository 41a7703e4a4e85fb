// Package catalog is the registry of system actions the advanced-system path
// can execute, together with their parameter schemas.
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/doeshing/jarvis-go/internal/domain"
)

// ParamKind is the scalar type of a parameter.
type ParamKind string

const (
	KindString ParamKind = "string"
	KindNumber ParamKind = "number"
)

// ParamSpec describes one action parameter.
type ParamSpec struct {
	Name     string      `json:"name"`
	Kind     ParamKind   `json:"kind"`
	Required bool        `json:"required"`
	Default  interface{} `json:"default,omitempty"`
}

// ActionSpec describes one registered action.
type ActionSpec struct {
	ID      domain.ActionID `json:"id"`
	Summary string          `json:"summary"`
	Params  []ParamSpec     `json:"params"`
	// Disruptive marks actions that change machine state irreversibly.
	Disruptive bool `json:"disruptive"`
}

// Param returns the named parameter spec.
func (s ActionSpec) Param(name string) (ParamSpec, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// Catalog is an immutable action registry.
type Catalog struct {
	specs []ActionSpec
	index map[domain.ActionID]int
}

// New builds a catalog. Duplicate ids panic since catalogs are built at init.
func New(specs ...ActionSpec) *Catalog {
	c := &Catalog{index: make(map[domain.ActionID]int, len(specs))}
	for _, spec := range specs {
		if _, dup := c.index[spec.ID]; dup {
			panic(fmt.Sprintf("catalog: duplicate action %s", spec.ID))
		}
		c.index[spec.ID] = len(c.specs)
		c.specs = append(c.specs, spec)
	}
	return c
}

// Lookup returns the spec for id.
func (c *Catalog) Lookup(id domain.ActionID) (ActionSpec, bool) {
	i, ok := c.index[id]
	if !ok {
		return ActionSpec{}, false
	}
	return c.specs[i], true
}

// Has reports whether id is registered.
func (c *Catalog) Has(id domain.ActionID) bool {
	_, ok := c.index[id]
	return ok
}

// Specs returns all specs in registration order.
func (c *Catalog) Specs() []ActionSpec {
	return append([]ActionSpec(nil), c.specs...)
}

// IDs returns all action ids in registration order.
func (c *Catalog) IDs() []domain.ActionID {
	ids := make([]domain.ActionID, len(c.specs))
	for i, spec := range c.specs {
		ids[i] = spec.ID
	}
	return ids
}

// Describe renders the catalog as prompt text, one action per line.
func (c *Catalog) Describe() string {
	var b strings.Builder
	for _, spec := range c.specs {
		names := make([]string, 0, len(spec.Params))
		for _, p := range spec.Params {
			name := p.Name
			if !p.Required {
				name += "?"
			}
			names = append(names, name)
		}
		fmt.Fprintf(&b, "- %s(%s): %s\n", spec.ID, strings.Join(names, ", "), spec.Summary)
	}
	return b.String()
}

// Normalize validates an action against its spec and fills defaults.
// Unknown ids yield KindUnknownAction; missing required parameters and values
// of the wrong type yield KindMalformedStructuredAction. Parameters the spec
// does not declare are dropped.
func (c *Catalog) Normalize(action domain.StructuredAction) (domain.StructuredAction, error) {
	const op = "catalog.normalize"

	spec, ok := c.Lookup(action.Action)
	if !ok {
		return domain.StructuredAction{}, domain.Errorf(domain.KindUnknownAction, op, "action %q is not registered", action.Action)
	}

	out := action.Clone()
	out.Parameters = make(domain.Params, len(spec.Params))
	for _, p := range spec.Params {
		raw, present := action.Parameters[p.Name]
		if !present || raw == nil || raw == "" {
			if p.Required {
				return domain.StructuredAction{}, domain.Errorf(domain.KindMalformedStructuredAction, op, "%s: missing required parameter %q", spec.ID, p.Name)
			}
			if p.Default != nil {
				out.Parameters[p.Name] = p.Default
			}
			continue
		}
		value, err := coerce(p, raw)
		if err != nil {
			return domain.StructuredAction{}, domain.NewError(domain.KindMalformedStructuredAction, op, fmt.Errorf("%s: %w", spec.ID, err))
		}
		out.Parameters[p.Name] = value
	}
	return out, nil
}

func coerce(p ParamSpec, raw interface{}) (interface{}, error) {
	switch p.Kind {
	case KindNumber:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %q is not a number", p.Name, v)
			}
			return f, nil
		}
	default:
		switch v := raw.(type) {
		case string:
			return v, nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case int:
			return strconv.Itoa(v), nil
		}
	}
	return nil, fmt.Errorf("parameter %q: unsupported value type %T", p.Name, raw)
}
