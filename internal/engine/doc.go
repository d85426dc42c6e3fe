// Package engine implements the README template processor.
//
// A template is plain text with {{ ... }} directives. Render runs four passes
// over the whole text, each feeding the next:
//
//  1. {{ include "path" }} is replaced by the file contents
//  2. {{ if EXPR }} a {{ else }} b {{ endif }} keeps the chosen branch
//  3. {{ name }} is replaced by the context value
//  4. {{ block name key="value" }} is replaced by the registered handler output
//
// Conditions are CEL expressions with every context key bound as a variable.
// A condition that fails to compile or evaluate counts as false.
//
// Example usage:
//
//	p := engine.NewProcessor(logger)
//	p.RegisterBlock("greet", func(ctx context.Context, params engine.Params, data engine.Context) (string, error) {
//	    return "Hello, " + params["name"], nil
//	})
//
//	out, err := p.Render(ctx, `{{ block greet name="World" }}`, engine.Context{})
//	// out == "Hello, World"
//
// Broken directives never abort a render: unreadable includes and unknown or
// failing blocks leave an "Error: ..." marker in the output. A handler aborts
// the render by returning an error built with Fatal or MissingParam.
package engine
