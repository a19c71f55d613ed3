/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package validation

import (
	"fmt"
	"sync"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
	celgo "github.com/google/cel-go/cel"
)

// program is a compiled rule that must evaluate to a boolean.
type program interface {
	eval(env map[string]any) (bool, error)
}

// programCache compiles each engine/expression pair once.
type programCache struct {
	mu       sync.RWMutex
	programs map[string]program
	celEnv   *celgo.Env
	celErr   error
	celOnce  sync.Once
}

func newProgramCache() *programCache {
	return &programCache{programs: make(map[string]program)}
}

func (c *programCache) load(engine, expression string) (program, error) {
	if expression == "" {
		return nil, fmt.Errorf("expression must not be empty")
	}
	key := engine + "\x00" + expression

	c.mu.RLock()
	prg, ok := c.programs[key]
	c.mu.RUnlock()
	if ok {
		return prg, nil
	}

	var err error
	switch engine {
	case EngineExpr:
		prg, err = compileExpr(expression)
	case EngineCEL:
		prg, err = c.compileCEL(expression)
	default:
		return nil, fmt.Errorf("unknown rule engine %q", engine)
	}
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.programs[key]; ok {
		return existing, nil
	}
	c.programs[key] = prg
	return prg, nil
}

func (c *programCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.programs)
}

type exprProgram struct {
	program *exprvm.Program
}

func compileExpr(expression string) (program, error) {
	compiled, err := exprlang.Compile(expression,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("expr: %w", err)
	}
	return &exprProgram{program: compiled}, nil
}

func (p *exprProgram) eval(env map[string]any) (bool, error) {
	out, err := exprlang.Run(p.program, env)
	if err != nil {
		return false, err
	}
	return asBool(out)
}

type celProgram struct {
	program celgo.Program
}

func (c *programCache) env() (*celgo.Env, error) {
	c.celOnce.Do(func() {
		c.celEnv, c.celErr = celgo.NewEnv(
			celgo.Variable("value", celgo.DynType),
			celgo.Variable("payload", celgo.MapType(celgo.StringType, celgo.DynType)),
			celgo.Variable("entity", celgo.MapType(celgo.StringType, celgo.DynType)),
		)
	})
	return c.celEnv, c.celErr
}

func (c *programCache) compileCEL(expression string) (program, error) {
	env, err := c.env()
	if err != nil {
		return nil, fmt.Errorf("cel: %w", err)
	}
	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("cel: %w", issues.Err())
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("cel: %w", err)
	}
	return &celProgram{program: prg}, nil
}

func (p *celProgram) eval(env map[string]any) (bool, error) {
	out, _, err := p.program.Eval(env)
	if err != nil {
		return false, err
	}
	return asBool(out.Value())
}

func asBool(v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("rule returned %T, want bool", v)
	}
	return b, nil
}
