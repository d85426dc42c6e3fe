// Package cel provides a CEL (Common Expression Language) evaluator for template conditionals.
//
// CEL is a non-Turing complete expression language, so a template can test its
// context without being able to run arbitrary code. Every top-level key of the
// variables map that is a valid CEL identifier is declared as a dyn variable.
//
// Example usage:
//
//	evaluator := cel.NewEvaluator()
//
//	vars := map[string]interface{}{
//	    "monorepo": true,
//	    "license":  "MIT",
//	}
//
//	ok, err := evaluator.EvaluateBool(ctx, "monorepo && license == 'MIT'", vars)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Supported operations:
//   - Comparisons: ==, !=, <, <=, >, >=
//   - Boolean logic: &&, ||, !
//   - String operations: contains, startsWith, endsWith, matches
//   - Arithmetic: +, -, *, /, %
//   - List operations: in, size
//   - Map access: pkg.field, pkg["field"]
package cel
