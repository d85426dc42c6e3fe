package template

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aymerick/raymond"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize bounds the compiled template cache of NewEngine
const DefaultCacheSize = 256

// raymond keeps helpers in a process-wide table and panics on duplicates
var registerOnce sync.Once

// Engine renders Handlebars prompt templates
type Engine struct {
	cache *lru.Cache[string, *raymond.Template]
}

// NewEngine creates a new prompt template engine
func NewEngine() *Engine {
	return NewEngineWithCacheSize(DefaultCacheSize)
}

// NewEngineWithCacheSize creates an engine keeping at most size compiled
// templates, evicting the least recently used
func NewEngineWithCacheSize(size int) *Engine {
	registerOnce.Do(registerHelpers)

	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[string, *raymond.Template](size)
	return &Engine{cache: cache}
}

// Render renders a template with the given data
func (e *Engine) Render(templateStr string, data map[string]interface{}) (string, error) {
	tmpl, err := e.getTemplate(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to compile template: %w", err)
	}

	result, err := tmpl.Exec(data)
	if err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return result, nil
}

// getTemplate gets a compiled template from cache or compiles it
func (e *Engine) getTemplate(templateStr string) (*raymond.Template, error) {
	if tmpl, ok := e.cache.Get(templateStr); ok {
		return tmpl, nil
	}

	tmpl, err := raymond.Parse(templateStr)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}

	e.cache.Add(templateStr, tmpl)
	return tmpl, nil
}

// ValidateTemplate validates a template without rendering it
func (e *Engine) ValidateTemplate(templateStr string) error {
	_, err := raymond.Parse(templateStr)
	return err
}

// CacheLen returns the number of cached compiled templates
func (e *Engine) CacheLen() int {
	return e.cache.Len()
}

func registerHelpers() {
	raymond.RegisterHelper("uppercase", func(str string) string {
		return strings.ToUpper(str)
	})

	raymond.RegisterHelper("lowercase", func(str string) string {
		return strings.ToLower(str)
	})

	raymond.RegisterHelper("trim", func(str string) string {
		return strings.TrimSpace(str)
	})

	// default returns the fallback when value is empty
	raymond.RegisterHelper("default", func(value interface{}, defaultValue interface{}) interface{} {
		if value == nil || value == "" {
			return defaultValue
		}
		return value
	})

	raymond.RegisterHelper("eq", func(a, b interface{}) bool {
		return a == b
	})

	// join renders list elements separated by sep
	raymond.RegisterHelper("join", func(arr interface{}, sep string) string {
		switch v := arr.(type) {
		case []string:
			return strings.Join(v, sep)
		case []interface{}:
			strs := make([]string, len(v))
			for i, item := range v {
				strs[i] = fmt.Sprint(item)
			}
			return strings.Join(strs, sep)
		default:
			return fmt.Sprint(arr)
		}
	})
}
