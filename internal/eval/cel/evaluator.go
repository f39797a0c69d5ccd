package cel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/checker/decls"
)

// Var is the name templates use to reach the current render context
const Var = "ctx"

// ErrNotBoolean is returned by Test when an expression yields something other than a bool
var ErrNotBoolean = errors.New("expression is not boolean")

// Evaluator evaluates CEL expressions against a render context
type Evaluator struct {
	env   *cel.Env
	cache map[string]cel.Program
	mu    sync.RWMutex
}

// NewEvaluator creates a new CEL evaluator
func NewEvaluator() (*Evaluator, error) {
	env, err := cel.NewEnv(
		cel.Declarations(
			decls.NewVar(Var, decls.NewMapType(decls.String, decls.Dyn)),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Evaluator{
		env:   env,
		cache: make(map[string]cel.Program),
	}, nil
}

// Evaluate evaluates expression with data bound to ctx
func (e *Evaluator) Evaluate(ctx context.Context, expression string, data map[string]interface{}) (interface{}, error) {
	program, err := e.getProgram(expression)
	if err != nil {
		return nil, fmt.Errorf("failed to compile expression: %w", err)
	}

	if data == nil {
		data = map[string]interface{}{}
	}

	out, _, err := program.ContextEval(ctx, map[string]interface{}{Var: data})
	if err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}

	return out.Value(), nil
}

// Test evaluates a boolean expression
func (e *Evaluator) Test(ctx context.Context, expression string, data map[string]interface{}) (bool, error) {
	v, err := e.Evaluate(ctx, expression, data)
	if err != nil {
		return false, err
	}

	ok, isBool := v.(bool)
	if !isBool {
		return false, fmt.Errorf("%w: %q yields %T", ErrNotBoolean, expression, v)
	}
	return ok, nil
}

// getProgram gets a compiled program from cache or compiles it
func (e *Evaluator) getProgram(expression string) (cel.Program, error) {
	e.mu.RLock()
	if program, ok := e.cache[expression]; ok {
		e.mu.RUnlock()
		return program, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if program, ok := e.cache[expression]; ok {
		return program, nil
	}

	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("parse error: %w", issues.Err())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program generation error: %w", err)
	}

	e.cache[expression] = program

	return program, nil
}

// ValidateExpression checks that expression compiles to a boolean (or dynamic) result
func (e *Evaluator) ValidateExpression(expression string) error {
	ast, issues := e.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return issues.Err()
	}

	switch ast.OutputType().String() {
	case cel.BoolType.String(), cel.DynType.String():
		return nil
	}
	return fmt.Errorf("%w: %q yields %s", ErrNotBoolean, expression, ast.OutputType())
}

// ClearCache clears the compiled program cache
func (e *Evaluator) ClearCache() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cache = make(map[string]cel.Program)
}
