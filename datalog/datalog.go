// Package datalog implements the Datalog core evaluated during token
// authorization: facts, rules, checks, and a fixpoint engine bounded by
// run limits.
package datalog

/*
 * Data model.
 *
 * A Predicate is a name (symbol) applied to a list of terms. A Fact is a
 * ground predicate (no variables). A Rule derives its head predicate for
 * every assignment of its body variables that matches the fact base. A
 * Check is a set of alternative queries; the check holds when at least one
 * query matches.
 *
 * All values here are immutable after construction. Clone before handing a
 * slice to code that may outlive the evaluation; FailedChecks payloads in
 * particular must never alias evaluator state.
 */

// Predicate is a named relation over a list of terms.
type Predicate struct {
	Name  Symbol
	Terms []Term
}

// Equal reports structural equality of name and terms.
func (p Predicate) Equal(other Predicate) bool {
	if p.Name != other.Name || len(p.Terms) != len(other.Terms) {
		return false
	}
	for i, t := range p.Terms {
		if !t.Equal(other.Terms[i]) {
			return false
		}
	}
	return true
}

// Match reports whether other unifies with p when p's variables are free.
// Used for query predicates against ground facts.
func (p Predicate) Match(other Predicate) bool {
	if p.Name != other.Name || len(p.Terms) != len(other.Terms) {
		return false
	}
	for i, t := range p.Terms {
		if _, ok := t.(Variable); ok {
			continue
		}
		if !t.Equal(other.Terms[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the predicate.
func (p Predicate) Clone() Predicate {
	out := Predicate{Name: p.Name, Terms: make([]Term, len(p.Terms))}
	copy(out.Terms, p.Terms)
	return out
}

// Fact is a ground predicate.
type Fact struct {
	Predicate
}

// Rule derives Head for every binding of variables satisfying Body.
type Rule struct {
	Head Predicate
	Body []Predicate
}

// Clone returns a deep copy of the rule.
func (r Rule) Clone() Rule {
	out := Rule{Head: r.Head.Clone(), Body: make([]Predicate, len(r.Body))}
	for i, p := range r.Body {
		out.Body[i] = p.Clone()
	}
	return out
}

// HeadVariablesBound reports whether every variable in the head also
// appears in the body. A head variable missing from the body would stay
// unbound and can never produce a ground fact; such rules are rejected
// both at parse time and when they arrive inside a decoded block.
func (r Rule) HeadVariablesBound() bool {
	bound := make(map[Variable]bool)
	for _, p := range r.Body {
		for _, t := range p.Terms {
			if v, ok := t.(Variable); ok {
				bound[v] = true
			}
		}
	}
	for _, t := range r.Head.Terms {
		if v, ok := t.(Variable); ok && !bound[v] {
			return false
		}
	}
	return true
}

// Check holds when at least one of its queries matches the fact base.
type Check struct {
	Queries []Rule
}

// bindings maps rule variables to the ground terms they unified with.
type bindings map[Variable]Term

func (b bindings) clone() bindings {
	out := make(bindings, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// unify extends b so that the pattern predicate matches the ground fact.
// Returns nil when the match is impossible under the current bindings.
func unify(pattern Predicate, fact Fact, b bindings) bindings {
	if pattern.Name != fact.Name || len(pattern.Terms) != len(fact.Terms) {
		return nil
	}
	out := b.clone()
	for i, t := range pattern.Terms {
		ground := fact.Terms[i]
		if v, ok := t.(Variable); ok {
			if prev, bound := out[v]; bound {
				if !prev.Equal(ground) {
					return nil
				}
				continue
			}
			out[v] = ground
			continue
		}
		if !t.Equal(ground) {
			return nil
		}
	}
	return out
}

// substitute replaces bound variables in the predicate. The result is
// ground only when every variable was bound.
func substitute(p Predicate, b bindings) (Predicate, bool) {
	out := Predicate{Name: p.Name, Terms: make([]Term, len(p.Terms))}
	ground := true
	for i, t := range p.Terms {
		if v, ok := t.(Variable); ok {
			if bound, exists := b[v]; exists {
				out.Terms[i] = bound
				continue
			}
			ground = false
		}
		out.Terms[i] = t
	}
	return out, ground
}
