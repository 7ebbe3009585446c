package datalog

import "time"

/*
 * Fixpoint evaluation under resource limits.
 *
 * Run applies every rule against the current fact base, adds the derived
 * facts, and repeats until no new fact appears. The resource governor
 * checks three independent ceilings: generated fact count, iteration
 * count, and wall-clock time. A breach stops the run immediately and the
 * partial derivation must be discarded by the caller; the corresponding
 * RunLimitError stands in for any logical result.
 */

// RunLimits bounds a single fixpoint run. Zero fields fall back to the
// defaults; negative MaxDuration expires immediately.
type RunLimits struct {
	MaxFacts      int
	MaxIterations int
	MaxDuration   time.Duration
}

// Default ceilings. Sized for policy-grade fact bases; callers with
// larger worlds raise them explicitly.
const (
	DefaultMaxFacts      = 1000
	DefaultMaxIterations = 100
	DefaultMaxDuration   = 30 * time.Millisecond
)

// DefaultRunLimits returns the default ceilings.
func DefaultRunLimits() RunLimits {
	return RunLimits{
		MaxFacts:      DefaultMaxFacts,
		MaxIterations: DefaultMaxIterations,
		MaxDuration:   DefaultMaxDuration,
	}
}

func (l RunLimits) withDefaults() RunLimits {
	if l.MaxFacts == 0 {
		l.MaxFacts = DefaultMaxFacts
	}
	if l.MaxIterations == 0 {
		l.MaxIterations = DefaultMaxIterations
	}
	if l.MaxDuration == 0 {
		l.MaxDuration = DefaultMaxDuration
	}
	return l
}

// World is a fact base plus the rules that extend it.
type World struct {
	facts []Fact
	rules []Rule
}

// NewWorld returns an empty world.
func NewWorld() *World {
	return &World{}
}

// AddFact inserts a fact, ignoring duplicates.
func (w *World) AddFact(f Fact) {
	if !w.HasFact(f) {
		w.facts = append(w.facts, f)
	}
}

// AddRule registers a derivation rule.
func (w *World) AddRule(r Rule) {
	w.rules = append(w.rules, r)
}

// HasFact reports whether the fact base contains f.
func (w *World) HasFact(f Fact) bool {
	for _, existing := range w.facts {
		if existing.Predicate.Equal(f.Predicate) {
			return true
		}
	}
	return false
}

// Facts returns a copy of the current fact base.
func (w *World) Facts() []Fact {
	out := make([]Fact, len(w.facts))
	copy(out, w.facts)
	return out
}

// Run evaluates rules to fixpoint under the given limits. On a limit
// breach the matching RunLimitError is returned and the world contents
// must be considered meaningless.
func (w *World) Run(limits RunLimits) error {
	limits = limits.withDefaults()
	deadline := time.Now().Add(limits.MaxDuration)

	for i := 0; i < limits.MaxIterations; i++ {
		if time.Now().After(deadline) {
			return ErrTimeout
		}

		var generated []Fact
		for _, r := range w.rules {
			generated = append(generated, w.applyRule(r)...)
		}

		added := false
		for _, f := range generated {
			if w.HasFact(f) {
				continue
			}
			w.facts = append(w.facts, f)
			added = true
			if len(w.facts) > limits.MaxFacts {
				return ErrTooManyFacts
			}
		}

		if !added {
			return nil
		}
	}
	return ErrTooManyIterations
}

// QueryRule returns every ground head fact the rule derives from the
// current fact base, deduplicated. Facts are copies; they stay valid
// after the world is discarded.
func (w *World) QueryRule(r Rule) []Fact {
	var out []Fact
	for _, b := range w.solveBody(r.Body, bindings{}) {
		head, ground := substitute(r.Head, b)
		if !ground {
			continue
		}
		fact := Fact{head.Clone()}
		duplicate := false
		for _, existing := range out {
			if existing.Predicate.Equal(fact.Predicate) {
				duplicate = true
				break
			}
		}
		if !duplicate {
			out = append(out, fact)
		}
	}
	return out
}

// CheckHolds reports whether at least one of the check's queries derives
// a fact from the current fact base.
func (w *World) CheckHolds(c Check) bool {
	for _, q := range c.Queries {
		if len(w.QueryRule(q)) > 0 {
			return true
		}
	}
	return false
}

// applyRule derives head facts for every body assignment.
func (w *World) applyRule(r Rule) []Fact {
	return w.QueryRule(r)
}

// solveBody enumerates every binding satisfying all body predicates, by
// joining candidate facts left to right.
func (w *World) solveBody(body []Predicate, b bindings) []bindings {
	if len(body) == 0 {
		return []bindings{b}
	}
	var out []bindings
	for _, f := range w.facts {
		extended := unify(body[0], f, b)
		if extended == nil {
			continue
		}
		out = append(out, w.solveBody(body[1:], extended)...)
	}
	return out
}
