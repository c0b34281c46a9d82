package pulplib

import "golang.org/x/exp/slices"

// Criteria is an immutable predicate tree used to request filtered content
// from the remote service. It is purely descriptive: evaluation belongs to
// the transport collaborator, this type only guarantees a stable, serializable
// shape. Instances are built with the constructor functions; a nil *Criteria
// means "match everything".
type Criteria struct {
	op       string
	field    string
	value    any
	values   []any
	operands []*Criteria
}

const (
	opFieldEq     = "field-eq"
	opFieldIn     = "field-in"
	opFieldExists = "field-exists"
	opAnd         = "and"
	opOr          = "or"
	opTrue        = "true"
)

// WithField matches objects where the named field equals value. Field names
// may contain a "." to address nested fields, such as "notes.created".
func WithField(field string, value any) *Criteria {
	return &Criteria{op: opFieldEq, field: field, value: value}
}

// WithFieldIn matches objects where the named field equals any of values.
func WithFieldIn(field string, values ...any) *Criteria {
	return &Criteria{op: opFieldIn, field: field, values: slices.Clone(values)}
}

// FieldExists matches objects where the named field is present at all,
// regardless of its value.
func FieldExists(field string) *Criteria {
	return &Criteria{op: opFieldExists, field: field}
}

// WithID matches objects with any of the given IDs.
func WithID(ids ...string) *Criteria {
	if len(ids) == 1 {
		return WithField("id", ids[0])
	}
	values := make([]any, len(ids))
	for i, id := range ids {
		values[i] = id
	}
	return &Criteria{op: opFieldIn, field: "id", values: values}
}

// WithContentTypeIDs matches content units of the given type IDs.
func WithContentTypeIDs(typeIDs ...string) *Criteria {
	values := make([]any, len(typeIDs))
	for i, id := range typeIDs {
		values[i] = id
	}
	return &Criteria{op: opFieldIn, field: "content_type_id", values: values}
}

// And matches objects which satisfy all of the given criteria. Nil operands
// are rejected at construction time.
func And(criteria ...*Criteria) *Criteria {
	return combine(opAnd, criteria)
}

// Or matches objects which satisfy any of the given criteria.
func Or(criteria ...*Criteria) *Criteria {
	return combine(opOr, criteria)
}

func combine(op string, criteria []*Criteria) *Criteria {
	for _, c := range criteria {
		if c == nil {
			panic(&ConfigurationError{Reason: "nil criteria operand"})
		}
	}
	return &Criteria{op: op, operands: slices.Clone(criteria)}
}

// True returns a criteria matching any object.
func True() *Criteria {
	return &Criteria{op: opTrue}
}

// Remote renders the criteria as the mongo-style query fragment consumed by
// the remote service. A nil criteria renders as an unrestricted query.
func (c *Criteria) Remote() map[string]any {
	if c == nil {
		return map[string]any{}
	}
	switch c.op {
	case opFieldEq:
		return map[string]any{c.field: c.value}
	case opFieldIn:
		return map[string]any{c.field: map[string]any{"$in": slices.Clone(c.values)}}
	case opFieldExists:
		return map[string]any{c.field: map[string]any{"$exists": true}}
	case opAnd, opOr:
		rendered := make([]map[string]any, len(c.operands))
		for i, operand := range c.operands {
			rendered[i] = operand.Remote()
		}
		return map[string]any{"$" + c.op: rendered}
	case opTrue:
		return map[string]any{}
	}
	// Unreachable for criteria built via constructors.
	panic(&ConfigurationError{Reason: "unknown criteria combinator " + c.op})
}
