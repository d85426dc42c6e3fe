// Package template provides a Handlebars engine for rendering AI block prompts.
//
// Prompts passed to the ai block are Handlebars templates rendered against the
// README context before they are sent to the language model, so a prompt can
// mention the project name or description without hardcoding it.
//
// Example usage:
//
//	engine := template.NewEngine()
//
//	prompt, err := engine.Render(
//	    "Write an introduction for {{name}}: {{description}}",
//	    map[string]interface{}{"name": "dago", "description": "graph runner"},
//	)
//
// Built-in helpers:
//   - uppercase, lowercase, trim
//   - default - Return default value if first arg is empty
//   - eq - Equality comparison
//   - join - Join list elements with separator
package template
