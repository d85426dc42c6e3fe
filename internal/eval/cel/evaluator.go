package cel

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	lru "github.com/hashicorp/golang-lru/v2"
)

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// DefaultCacheSize bounds the environment and program caches of NewEvaluator
const DefaultCacheSize = 1024

// reserved lists CEL keywords, reserved words and built-in type identifiers
// that cannot be declared as variables
var reserved = map[string]bool{
	"true": true, "false": true, "null": true, "in": true,
	"as": true, "break": true, "const": true, "continue": true, "else": true,
	"for": true, "function": true, "if": true, "import": true, "let": true,
	"loop": true, "package": true, "namespace": true, "return": true,
	"var": true, "void": true, "while": true,
	"bool": true, "bytes": true, "double": true, "int": true, "list": true,
	"map": true, "null_type": true, "string": true, "type": true, "uint": true,
}

// Evaluator evaluates CEL expressions against a dynamic set of variables.
// Every declarable key of the variables map is bound as a top-level dyn variable.
type Evaluator struct {
	envs  *lru.Cache[string, *cel.Env]
	cache *lru.Cache[string, cel.Program]
	// mu serializes environment construction
	mu sync.Mutex
}

// NewEvaluator creates a new CEL evaluator with DefaultCacheSize
func NewEvaluator() *Evaluator {
	return NewEvaluatorWithCacheSize(DefaultCacheSize)
}

// NewEvaluatorWithCacheSize creates an evaluator keeping at most size
// environments and size programs, evicting the least recently used
func NewEvaluatorWithCacheSize(size int) *Evaluator {
	if size <= 0 {
		size = DefaultCacheSize
	}
	// lru.New only fails for a non-positive size
	envs, _ := lru.New[string, *cel.Env](size)
	programs, _ := lru.New[string, cel.Program](size)
	return &Evaluator{
		envs:  envs,
		cache: programs,
	}
}

// Evaluate evaluates a CEL expression with the given variables
func (e *Evaluator) Evaluate(ctx context.Context, expression string, vars map[string]interface{}) (interface{}, error) {
	names := declarable(vars)

	program, err := e.getProgram(names, expression)
	if err != nil {
		return nil, fmt.Errorf("failed to compile expression: %w", err)
	}

	activation := make(map[string]interface{}, len(names))
	for _, name := range names {
		activation[name] = vars[name]
	}

	out, _, err := program.ContextEval(ctx, activation)
	if err != nil {
		return nil, fmt.Errorf("evaluation failed: %w", err)
	}

	if out == types.NullValue {
		return nil, nil
	}
	return out.Value(), nil
}

// EvaluateBool evaluates the expression and coerces the result to a boolean.
// false, nil, "", numeric zero and NaN are false; every other value is true.
func (e *Evaluator) EvaluateBool(ctx context.Context, expression string, vars map[string]interface{}) (bool, error) {
	result, err := e.Evaluate(ctx, expression, vars)
	if err != nil {
		return false, err
	}
	return Truthy(result), nil
}

// Truthy reports whether v counts as true in a condition
func Truthy(v interface{}) bool {
	if v == nil {
		return false
	}

	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case float32:
		return t != 0 && !math.IsNaN(float64(t))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint() != 0
	case reflect.Ptr, reflect.Interface:
		return !rv.IsNil()
	}
	return true
}

// ValidateExpression compiles an expression against the given variable names without evaluating it
func (e *Evaluator) ValidateExpression(expression string, names ...string) error {
	sort.Strings(names)
	env, err := e.getEnv(names)
	if err != nil {
		return err
	}
	_, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return issues.Err()
	}
	return nil
}

// CacheLen returns the number of cached environments and programs
func (e *Evaluator) CacheLen() (envs, programs int) {
	return e.envs.Len(), e.cache.Len()
}

// getProgram gets a compiled program from cache or compiles it
func (e *Evaluator) getProgram(names []string, expression string) (cel.Program, error) {
	key := strings.Join(names, ",") + "\x00" + expression

	if program, ok := e.cache.Get(key); ok {
		return program, nil
	}

	env, err := e.getEnv(names)
	if err != nil {
		return nil, err
	}

	ast, issues := env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("parse error: %w", issues.Err())
	}

	program, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program generation error: %w", err)
	}

	e.cache.Add(key, program)
	return program, nil
}

// getEnv returns an environment declaring names as dyn variables
func (e *Evaluator) getEnv(names []string) (*cel.Env, error) {
	key := strings.Join(names, ",")

	if env, ok := e.envs.Get(key); ok {
		return env, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if env, ok := e.envs.Get(key); ok {
		return env, nil
	}

	env, err := newEnv(names)
	if err != nil {
		return nil, err
	}

	e.envs.Add(key, env)
	return env, nil
}

// newEnv declares names as dyn variables. When the full set is rejected, each
// name is tried alone and the ones CEL refuses are left undeclared, so a single
// bad key cannot disable every other variable.
func newEnv(names []string) (*cel.Env, error) {
	env, err := cel.NewEnv(variables(names)...)
	if err == nil {
		return env, nil
	}

	accepted := make([]string, 0, len(names))
	for _, name := range names {
		if _, err := cel.NewEnv(cel.Variable(name, cel.DynType)); err == nil {
			accepted = append(accepted, name)
		}
	}
	env, err = cel.NewEnv(variables(accepted)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return env, nil
}

func variables(names []string) []cel.EnvOption {
	opts := make([]cel.EnvOption, 0, len(names))
	for _, name := range names {
		opts = append(opts, cel.Variable(name, cel.DynType))
	}
	return opts
}

// declarable returns the sorted keys of vars that are valid CEL identifiers
func declarable(vars map[string]interface{}) []string {
	names := make([]string, 0, len(vars))
	for name := range vars {
		if identPattern.MatchString(name) && !reserved[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
