package chainseal

import (
	"strings"
	"unicode"

	"github.com/chainseal/chainseal/datalog"
)

/*
 * Authorization.
 *
 * An Authorizer binds exactly one token, the relying party's ambient
 * facts and checks, and an ordered allow/deny policy list, then runs the
 * decision in five stages: reserved-tag validation, fixpoint evaluation
 * under run limits, check evaluation, and policy resolution.
 *
 * Check evaluation is the one place that does not stop at the first
 * failure: every declared check is evaluated and every failure collected,
 * in declaration order (authority block, then each block, then
 * authorizer checks), so a caller can diagnose all violations at once.
 * Policy resolution is first-match-wins over the declared order.
 *
 * A run limit breach preempts everything after it: the call returns the
 * RunLimitError alone and no check or policy outcome, since the logical
 * answer is unknown.
 */

// PolicyKind is the effect of a matched policy.
type PolicyKind int

const (
	PolicyAllow PolicyKind = iota
	PolicyDeny
)

// policy is a deferred-parse policy entry.
type policy struct {
	kind PolicyKind
	body string // empty body matches unconditionally
}

// Authorizer evaluates one bound token against ambient facts, checks,
// and policies.
type Authorizer struct {
	token    *Token
	limits   datalog.RunLimits
	factSrcs []string
	checks   []string
	policies []policy

	// populated by Authorize for later queries
	world   *datalog.World
	symbols *datalog.SymbolTable
}

// NewAuthorizer creates an authorizer bound to the given token, with
// default run limits.
func NewAuthorizer(t *Token) *Authorizer {
	return &Authorizer{
		token:  t,
		limits: datalog.DefaultRunLimits(),
	}
}

// AddToken binds a token. The authorizer already holds one, so this
// always reports that authorization must start from an empty context.
func (a *Authorizer) AddToken(*Token) error {
	return datalog.ErrAuthorizerNotEmpty
}

// SetRunLimits replaces the evaluation resource ceilings.
func (a *Authorizer) SetRunLimits(limits datalog.RunLimits) {
	a.limits = limits
}

// AddFact queues an ambient fact in text syntax. Parsing is deferred to
// Authorize, where the token's symbol table is authoritative; the fact's
// first term must be the ambient tag.
func (a *Authorizer) AddFact(input string) {
	a.factSrcs = append(a.factSrcs, input)
}

// AddCheck queues an authorizer check in query syntax.
func (a *Authorizer) AddCheck(input string) {
	a.checks = append(a.checks, input)
}

// AddPolicy queues a policy: "allow", "deny", "allow if <query>", or
// "deny if <query>". Keywords are separated by any whitespace. Policies
// are evaluated in the order added.
func (a *Authorizer) AddPolicy(input string) error {
	word, rest := splitWord(strings.TrimSpace(input))
	var kind PolicyKind
	switch word {
	case "allow":
		kind = PolicyAllow
	case "deny":
		kind = PolicyDeny
	default:
		return ErrParse
	}
	if rest == "" {
		a.policies = append(a.policies, policy{kind: kind})
		return nil
	}
	kw, body := splitWord(rest)
	if kw != "if" || body == "" {
		return ErrParse
	}
	a.policies = append(a.policies, policy{kind: kind, body: body})
	return nil
}

// splitWord separates the leading word from the remaining text,
// swallowing the whitespace between them.
func splitWord(s string) (string, string) {
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i:])
}

// Authorize runs the decision. On success it returns the index of the
// allow policy that matched; otherwise exactly one value from the
// failure taxonomy.
func (a *Authorizer) Authorize() (int, error) {
	symbols := a.token.symbols.Clone()

	ambient, checks, policies, err := a.parseAmbient(symbols)
	if err != nil {
		return 0, err
	}

	world := datalog.NewWorld()
	if err := a.populate(world, symbols, ambient); err != nil {
		return 0, err
	}

	if err := world.Run(a.limits); err != nil {
		return 0, err
	}

	a.world = world
	a.symbols = symbols

	if failed := a.evaluateChecks(world, symbols, checks); len(failed) > 0 {
		return 0, failed
	}

	return resolvePolicies(world, policies)
}

// parseAmbient parses the queued fact, check, and policy texts against
// the merged symbol table. Any syntax failure is flattened to the bare
// parse-error marker.
func (a *Authorizer) parseAmbient(symbols *datalog.SymbolTable) ([]datalog.Fact, []datalog.Check, []parsedPolicy, error) {
	facts := make([]datalog.Fact, 0, len(a.factSrcs))
	for _, src := range a.factSrcs {
		f, err := datalog.ParseFact(symbols, src)
		if err != nil {
			return nil, nil, nil, ErrParse
		}
		facts = append(facts, f)
	}

	checks := make([]datalog.Check, 0, len(a.checks))
	for _, src := range a.checks {
		c, err := datalog.ParseCheck(symbols, src)
		if err != nil {
			return nil, nil, nil, ErrParse
		}
		checks = append(checks, c)
	}

	policies := make([]parsedPolicy, 0, len(a.policies))
	for _, p := range a.policies {
		parsed := parsedPolicy{kind: p.kind}
		if p.body != "" {
			c, err := datalog.ParseCheck(symbols, p.body)
			if err != nil {
				return nil, nil, nil, ErrParse
			}
			parsed.queries = c.Queries
		}
		policies = append(policies, parsed)
	}
	return facts, checks, policies, nil
}

// populate loads token and ambient facts and rules into the world,
// enforcing the reserved-tag protocol: authority facts carry the
// authority tag, ambient facts the ambient tag, and facts or rules from
// any other block carry neither. Rules arrive already decoded, so head
// variables the body never binds are rejected here, not just in the
// parser.
func (a *Authorizer) populate(world *datalog.World, symbols *datalog.SymbolTable, ambient []datalog.Fact) error {
	for _, f := range a.token.authority.Facts {
		if !hasTag(f.Predicate, datalog.SymbolAuthority) {
			return datalog.InvalidAuthorityFactError{Fact: symbols.PrintFact(f)}
		}
		world.AddFact(f)
	}
	for _, r := range a.token.authority.Rules {
		if !r.HeadVariablesBound() {
			return datalog.InvalidBlockRuleError{BlockIndex: 0, Rule: symbols.PrintRule(r)}
		}
		world.AddRule(r)
	}

	for _, f := range ambient {
		if !hasTag(f.Predicate, datalog.SymbolAmbient) {
			return datalog.InvalidAmbientFactError{Fact: symbols.PrintFact(f)}
		}
		world.AddFact(f)
	}

	for i, block := range a.token.blocks {
		index := uint32(i + 1)
		for _, f := range block.Facts {
			if usesReservedTag(f.Predicate) {
				return datalog.InvalidBlockFactError{BlockIndex: index, Fact: symbols.PrintFact(f)}
			}
			world.AddFact(f)
		}
		for _, r := range block.Rules {
			if usesReservedTag(r.Head) || !r.HeadVariablesBound() {
				return datalog.InvalidBlockRuleError{BlockIndex: index, Rule: symbols.PrintRule(r)}
			}
			world.AddRule(r)
		}
	}
	return nil
}

// evaluateChecks runs every declared check and collects all failures in
// declaration order. Payloads are printed snapshots, valid after the
// evaluator is gone.
func (a *Authorizer) evaluateChecks(world *datalog.World, symbols *datalog.SymbolTable, authorizerChecks []datalog.Check) datalog.FailedChecksError {
	var failed datalog.FailedChecksError

	for checkID, c := range a.token.authority.Checks {
		if !world.CheckHolds(c) {
			failed = append(failed, datalog.FailedBlockCheck{
				BlockID: 0,
				CheckID: uint32(checkID),
				Rule:    symbols.PrintCheck(c),
			})
		}
	}
	for i, block := range a.token.blocks {
		for checkID, c := range block.Checks {
			if !world.CheckHolds(c) {
				failed = append(failed, datalog.FailedBlockCheck{
					BlockID: uint32(i + 1),
					CheckID: uint32(checkID),
					Rule:    symbols.PrintCheck(c),
				})
			}
		}
	}
	for checkID, c := range authorizerChecks {
		if !world.CheckHolds(c) {
			failed = append(failed, datalog.FailedAuthorizerCheck{
				CheckID: uint32(checkID),
				Rule:    symbols.PrintCheck(c),
			})
		}
	}
	return failed
}

type parsedPolicy struct {
	kind    PolicyKind
	queries []datalog.Rule
}

// resolvePolicies applies first-match-wins over the declared order,
// falling through to no-matching-policy only when the list is exhausted.
func resolvePolicies(world *datalog.World, policies []parsedPolicy) (int, error) {
	for i, p := range policies {
		if !policyMatches(world, p) {
			continue
		}
		if p.kind == PolicyDeny {
			return 0, datalog.DenyError{Policy: i}
		}
		return i, nil
	}
	return 0, datalog.ErrNoMatchingPolicy
}

func policyMatches(world *datalog.World, p parsedPolicy) bool {
	if len(p.queries) == 0 {
		return true
	}
	for _, q := range p.queries {
		if len(world.QueryRule(q)) > 0 {
			return true
		}
	}
	return false
}

// Query runs a rule against the evaluated world and returns the facts
// its head derives, one per matching binding. Authorize must have run
// first; the returned facts are copies owned by the caller.
func (a *Authorizer) Query(input string) ([]datalog.Fact, error) {
	if a.world == nil {
		return nil, ErrNotAuthorized
	}
	q, err := datalog.ParseRule(a.symbols, input)
	if err != nil {
		return nil, ErrParse
	}
	return a.world.QueryRule(q), nil
}

// Symbols returns the symbol table in effect after Authorize ran, or
// nil before. Useful for printing queried facts.
func (a *Authorizer) Symbols() *datalog.SymbolTable {
	return a.symbols
}
