package cel

import (
	"context"
	"fmt"
	"testing"
)

func TestEvaluateBool(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator()
	vars := map[string]interface{}{
		"monorepo": true,
		"license":  "MIT",
		"count":    3,
		"empty":    "",
		"meta":     map[string]interface{}{"stars": 10},
	}

	cases := []struct {
		name string
		expr string
		want bool
	}{
		{name: "bool var", expr: "monorepo", want: true},
		{name: "negation", expr: "!monorepo", want: false},
		{name: "string compare", expr: "license == 'MIT'", want: true},
		{name: "conjunction", expr: "monorepo && license != 'MIT'", want: false},
		{name: "number compare", expr: "count > 2", want: true},
		{name: "truthy string", expr: "license", want: true},
		{name: "falsy string", expr: "empty", want: false},
		{name: "map access", expr: "meta.stars >= 10", want: true},
		{name: "literal false", expr: "false", want: false},
		{name: "literal zero", expr: "0", want: false},
		{name: "null", expr: "null", want: false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := eval.EvaluateBool(context.Background(), tc.expr, vars)
			if err != nil {
				t.Fatalf("EvaluateBool(%q) returned error: %v", tc.expr, err)
			}
			if got != tc.want {
				t.Fatalf("EvaluateBool(%q) = %v, want %v", tc.expr, got, tc.want)
			}
		})
	}
}

func TestEvaluateUndeclaredReference(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator()
	if _, err := eval.EvaluateBool(context.Background(), "y.z", map[string]interface{}{"x": true}); err == nil {
		t.Fatalf("expected error for undeclared reference")
	}
}

func TestEvaluateSyntaxError(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator()
	if _, err := eval.EvaluateBool(context.Background(), "x ===", map[string]interface{}{"x": true}); err == nil {
		t.Fatalf("expected error for malformed expression")
	}
}

func TestEvaluateSkipsUndeclarableKeys(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator()
	vars := map[string]interface{}{
		"ok":        true,
		"not-ident": true,
		"in":        true,
	}
	got, err := eval.EvaluateBool(context.Background(), "ok", vars)
	if err != nil {
		t.Fatalf("EvaluateBool returned error: %v", err)
	}
	if !got {
		t.Fatalf("expected true")
	}
}

func TestEvaluateIgnoresTypeNameKeys(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator()
	vars := map[string]interface{}{"x": true}
	for _, name := range []string{"type", "string", "int", "uint", "double", "bool", "bytes", "list", "map", "null_type"} {
		vars[name] = "module"
	}

	got, err := eval.EvaluateBool(context.Background(), "x && true", vars)
	if err != nil {
		t.Fatalf("EvaluateBool returned error: %v", err)
	}
	if !got {
		t.Fatalf("expected true")
	}
}

func TestNewEnvDropsRejectedNames(t *testing.T) {
	t.Parallel()

	env, err := newEnv([]string{"int", "ok"})
	if err != nil {
		t.Fatalf("newEnv returned error: %v", err)
	}
	if _, issues := env.Compile("ok"); issues != nil && issues.Err() != nil {
		t.Fatalf("ok should stay declared: %v", issues.Err())
	}
}

func TestEvaluatorCacheIsBounded(t *testing.T) {
	t.Parallel()

	eval := NewEvaluatorWithCacheSize(8)
	ctx := context.Background()
	for i := 0; i < 50; i++ {
		vars := map[string]interface{}{fmt.Sprintf("k%d", i): true}
		if _, err := eval.EvaluateBool(ctx, "true", vars); err != nil {
			t.Fatalf("EvaluateBool returned error: %v", err)
		}
	}

	envs, programs := eval.CacheLen()
	if envs > 8 || programs > 8 {
		t.Fatalf("cache grew past its bound: envs=%d programs=%d", envs, programs)
	}
}

func TestEvaluateCachesPerVariableSet(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator()
	ctx := context.Background()

	if _, err := eval.EvaluateBool(ctx, "a", map[string]interface{}{"b": true}); err == nil {
		t.Fatalf("expected error when a is not declared")
	}
	got, err := eval.EvaluateBool(ctx, "a", map[string]interface{}{"a": true})
	if err != nil {
		t.Fatalf("EvaluateBool returned error: %v", err)
	}
	if !got {
		t.Fatalf("expected true once a is declared")
	}
}

func TestTruthy(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   interface{}
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{"", false},
		{"x", true},
		{int64(0), false},
		{int64(2), true},
		{uint64(0), false},
		{0.0, false},
		{1.5, true},
		{[]interface{}{}, true},
		{map[string]interface{}{}, true},
	}
	for _, tc := range cases {
		if got := Truthy(tc.in); got != tc.want {
			t.Fatalf("Truthy(%#v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestValidateExpression(t *testing.T) {
	t.Parallel()

	eval := NewEvaluator()
	if err := eval.ValidateExpression("a && b", "a", "b"); err != nil {
		t.Fatalf("ValidateExpression returned error: %v", err)
	}
	if err := eval.ValidateExpression("a && c", "a", "b"); err == nil {
		t.Fatalf("expected error for undeclared c")
	}
}
