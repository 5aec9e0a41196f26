package types

import (
	"context"
	"strings"
)

// Predicate is a conjunction of SQL conditions whose values are bound by
// name (@name) from Params. Conditions never contain literal values.
type Predicate struct {
	Conditions []string
	Params     map[string]interface{}
}

// SQL joins the conditions with AND; empty when there are none.
func (p Predicate) SQL() string {
	if len(p.Conditions) == 0 {
		return ""
	}
	parts := make([]string, len(p.Conditions))
	for i, c := range p.Conditions {
		parts[i] = "(" + c + ")"
	}
	return strings.Join(parts, " AND ")
}

// And returns a copy of p with one more condition and its parameters.
func (p Predicate) And(condition string, params map[string]interface{}) Predicate {
	out := Predicate{
		Conditions: make([]string, 0, len(p.Conditions)+1),
		Params:     make(map[string]interface{}, len(p.Params)+len(params)),
	}
	out.Conditions = append(out.Conditions, p.Conditions...)
	out.Conditions = append(out.Conditions, condition)
	for k, v := range p.Params {
		out.Params[k] = v
	}
	for k, v := range params {
		out.Params[k] = v
	}
	return out
}

// Sort is a validated ORDER BY.
type Sort struct {
	Field     string    // public field name as requested
	Column    string    // alias-qualified column, or projection alias when Computed
	Direction Direction
	Computed  bool
	// TieBreaker is the alias-qualified identity column; empty when the
	// sort field already is the identity.
	TieBreaker string
}

// Clause renders the ORDER BY body. Ordinary columns sort nulls last in
// both directions.
func (s Sort) Clause() string {
	var parts []string
	if !s.Computed {
		parts = append(parts, s.Column+" IS NULL")
	}
	parts = append(parts, s.Column+" "+string(s.Direction))
	if s.TieBreaker != "" {
		parts = append(parts, s.TieBreaker+" ASC")
	}
	return strings.Join(parts, ", ")
}

// Query is everything the execution port needs to run one list or count.
type Query struct {
	Table       string
	Alias       string
	Projections []string
	Where       Predicate
	Order       Sort
	Offset      int
	Limit       int
}

// QueryPort executes compiled queries against the relational store.
// Implementations honour ctx cancellation and are safe for concurrent use.
type QueryPort interface {
	Execute(ctx context.Context, q Query, dest interface{}) error
	Count(ctx context.Context, q Query) (int64, error)
}
