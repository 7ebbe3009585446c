package datalog

import (
	"fmt"
	"strings"
)

/*
 * Evaluation failure taxonomy.
 *
 * Two closed families originate here. LogicError covers rejections after
 * evaluation: reserved-tag violations, failed checks, policy outcomes.
 * RunLimitError covers inconclusive aborts by the resource governor; the
 * logical answer is unknown, so a run limit is never conflated with a
 * failed check.
 *
 * Every value is immutable, freely copyable, and compares by value.
 * Payload strings are pretty-printed rule text snapshots, never references
 * into evaluator state.
 */

// LogicError is implemented by every Datalog evaluation failure.
// The variant set is closed; callers switch exhaustively on the concrete
// type to branch behavior.
type LogicError interface {
	error
	logicError()
}

// logicSentinel is an immutable payload-less LogicError variant.
type logicSentinel string

func (e logicSentinel) Error() string { return string(e) }
func (logicSentinel) logicError()     {}

const (
	// ErrAuthorizerNotEmpty is returned when a token is bound to an
	// authorizer that already holds one. Authorization must start from an
	// empty ambient context.
	ErrAuthorizerNotEmpty = logicSentinel("the authorizer already contains a token")

	// ErrNoMatchingPolicy is returned when policy resolution exhausts the
	// policy list without any allow or deny matching.
	ErrNoMatchingPolicy = logicSentinel("no matching policy was found")
)

// InvalidAuthorityFactError reports an authority block fact missing the
// authority tag.
type InvalidAuthorityFactError struct {
	Fact string
}

func (e InvalidAuthorityFactError) Error() string {
	return fmt.Sprintf("authority fact does not carry the authority tag: %s", e.Fact)
}
func (InvalidAuthorityFactError) logicError() {}

// InvalidAmbientFactError reports a fact supplied by the relying party
// missing the ambient tag.
type InvalidAmbientFactError struct {
	Fact string
}

func (e InvalidAmbientFactError) Error() string {
	return fmt.Sprintf("ambient fact does not carry the ambient tag: %s", e.Fact)
}
func (InvalidAmbientFactError) logicError() {}

// InvalidBlockFactError reports a non-authority block fact carrying a
// reserved authority or ambient tag.
type InvalidBlockFactError struct {
	BlockIndex uint32
	Fact       string
}

func (e InvalidBlockFactError) Error() string {
	return fmt.Sprintf("block %d fact carries a reserved tag: %s", e.BlockIndex, e.Fact)
}
func (InvalidBlockFactError) logicError() {}

// InvalidBlockRuleError reports a non-authority block rule that would
// generate facts with a reserved tag, or whose head variables are not
// bound by its body.
type InvalidBlockRuleError struct {
	BlockIndex uint32
	Rule       string
}

func (e InvalidBlockRuleError) Error() string {
	return fmt.Sprintf("block %d rule is invalid: %s", e.BlockIndex, e.Rule)
}
func (InvalidBlockRuleError) logicError() {}

// DenyError reports which policy, by position in the declared list,
// explicitly denied the request.
type DenyError struct {
	Policy int
}

func (e DenyError) Error() string {
	return fmt.Sprintf("denied by policy %d", e.Policy)
}
func (DenyError) logicError() {}

// FailedChecksError aggregates every check that failed during a single
// evaluation pass. The list is non-empty and preserves declaration order:
// block order first, then check order within each block, authorizer
// checks last. It is never reordered.
type FailedChecksError []FailedCheck

func (e FailedChecksError) Error() string {
	msgs := make([]string, len(e))
	for i, c := range e {
		msgs[i] = c.Error()
	}
	return fmt.Sprintf("%d checks failed: %s", len(e), strings.Join(msgs, "; "))
}
func (FailedChecksError) logicError() {}

// Equal reports value equality against another failed-check list.
func (e FailedChecksError) Equal(other FailedChecksError) bool {
	if len(e) != len(other) {
		return false
	}
	for i, c := range e {
		if c != other[i] {
			return false
		}
	}
	return true
}

// FailedCheck is a single named check that did not hold, tagged with its
// origin: a token block or the authorizer itself. Both variants carry
// zero-based positions snapshotted at evaluation time plus the printed
// rule text.
type FailedCheck interface {
	error
	failedCheck()
}

// FailedBlockCheck is a check declared by a token block.
type FailedBlockCheck struct {
	BlockID uint32
	CheckID uint32
	Rule    string
}

func (e FailedBlockCheck) Error() string {
	return fmt.Sprintf("block %d check %d failed: %s", e.BlockID, e.CheckID, e.Rule)
}
func (FailedBlockCheck) failedCheck() {}

// FailedAuthorizerCheck is a check supplied by the authorizer.
type FailedAuthorizerCheck struct {
	CheckID uint32
	Rule    string
}

func (e FailedAuthorizerCheck) Error() string {
	return fmt.Sprintf("authorizer check %d failed: %s", e.CheckID, e.Rule)
}
func (FailedAuthorizerCheck) failedCheck() {}

// RunLimitError identifies which resource ceiling stopped the engine
// before it could determine the logical outcome. The three limits are
// independent and carry no payload.
type RunLimitError string

func (e RunLimitError) Error() string { return string(e) }

const (
	// ErrTooManyFacts is returned when derivation exceeds the generated
	// fact ceiling.
	ErrTooManyFacts = RunLimitError("too many facts generated")

	// ErrTooManyIterations is returned when fixpoint evaluation does not
	// converge within the iteration ceiling.
	ErrTooManyIterations = RunLimitError("too many engine iterations")

	// ErrTimeout is returned when evaluation exceeds the wall-clock
	// ceiling.
	ErrTimeout = RunLimitError("spent too much time verifying")
)
