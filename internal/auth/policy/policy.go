// Package policy evaluates ownership rules written as CEL expressions.
//
// Every rule sees three variables:
//
//	auth      the authenticated identity, {"email": ...}
//	request   values taken from the incoming request (query, params)
//	resource  the stored record the request targets, when one was loaded
//
// A rule that errors during evaluation (missing key, wrong type) denies access.
package policy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/cel-go/cel"
)

// Rule names wired into the HTTP layer.
const (
	RuleApplicantSelf = "applicant.self"
	RuleJobOwner      = "job.owner"
)

// ErrUnknownRule is returned when a route references a rule that was never compiled.
var ErrUnknownRule = errors.New("unknown policy rule")

// DefaultRules returns the portal's ownership rules.
func DefaultRules() map[string]string {
	return map[string]string{
		RuleApplicantSelf: `auth.email == request.email`,
		RuleJobOwner:      `auth.email == resource.hr_email`,
	}
}

// Input is the evaluation context for a single check.
type Input struct {
	AuthEmail string
	Request   map[string]interface{}
	Resource  map[string]interface{}
}

// Decision is the outcome of a rule evaluation.
type Decision struct {
	Rule    string
	Allowed bool
	Reason  string
}

// Engine holds compiled CEL programs keyed by rule name.
type Engine struct {
	env      *cel.Env
	mu       sync.RWMutex
	programs map[string]cel.Program
}

// NewEngine compiles every rule up front so a typo fails at startup, not per request.
func NewEngine(rules map[string]string) (*Engine, error) {
	env, err := cel.NewEnv(
		cel.Variable("auth", cel.DynType),
		cel.Variable("request", cel.DynType),
		cel.Variable("resource", cel.DynType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	e := &Engine{
		env:      env,
		programs: make(map[string]cel.Program, len(rules)),
	}
	for name, expr := range rules {
		if err := e.Register(name, expr); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Register compiles and stores a rule, replacing any rule with the same name.
func (e *Engine) Register(name, expression string) error {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return fmt.Errorf("rule %q: CEL compilation error: %w", name, issues.Err())
	}
	if out := ast.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return fmt.Errorf("rule %q: expression must evaluate to bool, got %s", name, out)
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return fmt.Errorf("rule %q: failed to create CEL program: %w", name, err)
	}

	e.mu.Lock()
	e.programs[name] = program
	e.mu.Unlock()
	return nil
}

// Rules lists the registered rule names in sorted order.
func (e *Engine) Rules() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.programs))
	for name := range e.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluate runs the named rule. An unauthenticated input is always denied.
func (e *Engine) Evaluate(ctx context.Context, rule string, in Input) (*Decision, error) {
	e.mu.RLock()
	program, ok := e.programs[rule]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRule, rule)
	}

	if in.AuthEmail == "" {
		return &Decision{Rule: rule, Allowed: false, Reason: "no authenticated identity"}, nil
	}

	vars := map[string]interface{}{
		"auth":     map[string]interface{}{"email": in.AuthEmail},
		"request":  orEmpty(in.Request),
		"resource": orEmpty(in.Resource),
	}

	out, _, err := program.ContextEval(ctx, vars)
	if err != nil {
		return &Decision{Rule: rule, Allowed: false, Reason: err.Error()}, nil
	}

	allowed, ok := out.Value().(bool)
	if !ok {
		return &Decision{Rule: rule, Allowed: false, Reason: "rule did not return a boolean"}, nil
	}
	return &Decision{
		Rule:    rule,
		Allowed: allowed,
		Reason:  fmt.Sprintf("%s evaluated to %v", rule, allowed),
	}, nil
}

func orEmpty(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return map[string]interface{}{}
	}
	return m
}
