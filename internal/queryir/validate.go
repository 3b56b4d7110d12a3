package queryir

import (
	"fmt"
	"sort"

	"github.com/roach88/treeq/internal/ir"
)

// ValidationResult reports whether a predicate and its bindings agree.
type ValidationResult struct {
	// Valid is true when every referenced parameter has exactly one binding,
	// every binding is referenced, and every node is well formed.
	Valid bool

	// Problems lists each violation found, in traversal order.
	// Empty when Valid is true.
	Problems []string
}

// Validate checks a predicate against its parameter bindings.
//
// Rules:
//  1. Every parameter referenced by a Compare or Raw node has a binding
//  2. Every binding is referenced somewhere in the predicate
//  3. Compare nodes use a known operator and a non-empty field and param
//
// Validate is a pure function with no side effects.
func Validate(p Predicate, params map[string]ir.IRValue) ValidationResult {
	v := &validator{
		problems: []string{},
		seen:     map[string]bool{},
	}
	v.validatePredicate(p)

	for _, name := range v.order {
		if _, ok := params[name]; !ok {
			v.addProblem("parameter :%s is referenced but not bound", name)
		}
	}

	unused := make([]string, 0)
	for name := range params {
		if !v.seen[name] {
			unused = append(unused, name)
		}
	}
	sort.Strings(unused)
	for _, name := range unused {
		v.addProblem("parameter :%s is bound but never referenced", name)
	}

	return ValidationResult{
		Valid:    len(v.problems) == 0,
		Problems: v.problems,
	}
}

// ReferencedParams returns the distinct parameter names referenced by p,
// in first-occurrence order.
func ReferencedParams(p Predicate) []string {
	v := &validator{seen: map[string]bool{}}
	v.validatePredicate(p)
	return v.order
}

// validator accumulates problems and referenced names during traversal.
type validator struct {
	problems []string
	seen     map[string]bool
	order    []string
}

func (v *validator) addProblem(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

func (v *validator) reference(name string) {
	if v.seen[name] {
		return
	}
	v.seen[name] = true
	v.order = append(v.order, name)
}

func (v *validator) validatePredicate(p Predicate) {
	if p == nil {
		return // nil predicates are valid (no filter)
	}

	switch pred := p.(type) {
	case Compare:
		v.validateCompare(pred)
	case *Compare:
		v.validateCompare(*pred)
	case And:
		v.validateAll(pred.Predicates)
	case *And:
		v.validateAll(pred.Predicates)
	case Or:
		v.validateAll(pred.Predicates)
	case *Or:
		v.validateAll(pred.Predicates)
	case Raw:
		v.validateRaw(pred)
	case *Raw:
		v.validateRaw(*pred)
	default:
		v.addProblem("unknown predicate type: %T", p)
	}
}

func (v *validator) validateCompare(c Compare) {
	if c.Column.Field == "" {
		v.addProblem("comparison with empty field name")
	}
	if !ValidOps[c.Op] {
		v.addProblem("comparison on %q uses unknown operator %q", c.Column.Field, c.Op)
	}
	if c.Param == "" {
		v.addProblem("comparison on %q has no parameter", c.Column.Field)
		return
	}
	v.reference(c.Param)
}

func (v *validator) validateAll(preds []Predicate) {
	for _, sub := range preds {
		v.validatePredicate(sub)
	}
}

func (v *validator) validateRaw(r Raw) {
	if r.SQL == "" {
		v.addProblem("raw predicate with empty SQL")
	}
	for _, name := range r.Params {
		v.reference(name)
	}
}
