// Package filter builds LIMS filter expressions as typed values and
// renders them to the backend's textual query language at the network edge.
//
// Rendered forms:
//
//	Equals("status", "Draft")        status == "Draft"
//	Contains("firstName", "ann")     firstName @=* "ann"
//	And(a, b)                        a && b
//	Or(a, b)                         (a || b) when nested
package filter

import "strings"

// Expr is a node of a filter expression
type Expr interface {
	render(nested bool) string
	empty() bool
}

// Render returns the textual form of expr, or "" when expr is nil or empty
func Render(expr Expr) string {
	if expr == nil || expr.empty() {
		return ""
	}
	return expr.render(false)
}

type comparison struct {
	field string
	op    string
	value string
}

// Equals matches records whose field equals value exactly
func Equals(field, value string) Expr {
	return comparison{field: field, op: "==", value: value}
}

// Contains matches records whose field contains value, ignoring case
func Contains(field, value string) Expr {
	return comparison{field: field, op: "@=*", value: value}
}

func (c comparison) empty() bool {
	return c.field == ""
}

func (c comparison) render(bool) string {
	return c.field + " " + c.op + " " + quote(c.value)
}

type group struct {
	op    string
	terms []Expr
}

// And matches records satisfying every term. Nil and empty terms are dropped.
func And(terms ...Expr) Expr {
	return group{op: "&&", terms: terms}
}

// Or matches records satisfying any term. Nil and empty terms are dropped.
func Or(terms ...Expr) Expr {
	return group{op: "||", terms: terms}
}

// AnyOf matches records whose field equals one of values
func AnyOf(field string, values ...string) Expr {
	terms := make([]Expr, 0, len(values))
	for _, v := range values {
		terms = append(terms, Equals(field, v))
	}
	return Or(terms...)
}

// ContainsAny matches records where any of fields contains value
func ContainsAny(value string, fields ...string) Expr {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	terms := make([]Expr, 0, len(fields))
	for _, f := range fields {
		terms = append(terms, Contains(f, value))
	}
	return Or(terms...)
}

func (g group) live() []Expr {
	out := make([]Expr, 0, len(g.terms))
	for _, t := range g.terms {
		if t != nil && !t.empty() {
			out = append(out, t)
		}
	}
	return out
}

func (g group) empty() bool {
	return len(g.live()) == 0
}

func (g group) render(nested bool) string {
	terms := g.live()
	if len(terms) == 1 {
		return terms[0].render(nested)
	}
	parts := make([]string, len(terms))
	for i, t := range terms {
		parts[i] = t.render(true)
	}
	out := strings.Join(parts, " "+g.op+" ")
	if nested {
		return "(" + out + ")"
	}
	return out
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// quote wraps value in double quotes so user text cannot close the literal
func quote(value string) string {
	return `"` + quoteEscaper.Replace(value) + `"`
}
