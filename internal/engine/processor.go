package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/aescanero/dago-readme/internal/eval/cel"
	"go.uber.org/zap"
)

// Context is the read-only key/value environment of one render
type Context = map[string]interface{}

// Params holds the key="value" attributes of a block directive
type Params = map[string]string

// BlockHandler produces the replacement text of a block directive.
// Handlers may block (network calls); ctx is the render's context.
type BlockHandler func(ctx context.Context, params Params, data Context) (string, error)

var (
	includePattern     = regexp.MustCompile(`{{\s*include\s+"([^"]+)"\s*}}`)
	conditionalPattern = regexp.MustCompile(`{{\s*if\s+(.*?)\s*}}([\s\S]*?)(?:{{\s*else\s*}}([\s\S]*?))?{{\s*endif\s*}}`)
	variablePattern    = regexp.MustCompile(`{{\s*(\w+)\s*}}`)
	blockPattern       = regexp.MustCompile(`{{\s*block\s+(\w+)\s*(.*?)\s*}}`)
	paramPattern       = regexp.MustCompile(`(\w+)="(.*?)"`)
)

// Option configures a Processor
type Option func(*Processor)

// WithBaseDir resolves relative include paths against dir instead of the working directory
func WithBaseDir(dir string) Option {
	return func(p *Processor) {
		p.baseDir = dir
	}
}

// WithRoot confines includes and ReadFile to dir. Absolute paths and paths
// that escape dir through ".." or symlinks fail like a missing file.
func WithRoot(dir string) Option {
	return func(p *Processor) {
		if dir == "" {
			dir = "."
		}
		p.baseDir = dir
		p.confined = true
	}
}

// WithEvaluator replaces the conditional evaluator
func WithEvaluator(evaluator *cel.Evaluator) Option {
	return func(p *Processor) {
		p.evaluator = evaluator
	}
}

// Processor expands templates: includes, conditionals, variables, then blocks
type Processor struct {
	blocks    map[string]BlockHandler
	evaluator *cel.Evaluator
	baseDir   string
	confined  bool
	logger    *zap.Logger
	mu        sync.RWMutex
}

// NewProcessor creates a new template processor
func NewProcessor(logger *zap.Logger, opts ...Option) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Processor{
		blocks: make(map[string]BlockHandler),
		logger: logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.evaluator == nil {
		p.evaluator = cel.NewEvaluator()
	}

	return p
}

// RegisterBlock stores the handler for name, replacing any previous one
func (p *Processor) RegisterBlock(name string, handler BlockHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.blocks[name] = handler
}

// Blocks returns the registered block names in sorted order
func (p *Processor) Blocks() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.blocks))
	for name := range p.blocks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Processor) lookup(name string) (BlockHandler, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	handler, ok := p.blocks[name]
	return handler, ok
}

// Render expands template against data.
// Only fatal handler errors and context cancellation are returned; every other
// directive failure is replaced by an inline marker.
func (p *Processor) Render(ctx context.Context, template string, data Context) (string, error) {
	if data == nil {
		data = Context{}
	}

	result := p.expandIncludes(template)
	result = p.resolveConditionals(ctx, result, data)
	result = p.interpolateVariables(result, data)

	result, err := p.dispatchBlocks(ctx, result, data)
	if err != nil {
		p.logger.Error("render aborted", zap.Error(err))
		return "", err
	}

	return result, nil
}

// expandIncludes replaces include directives with file contents
func (p *Processor) expandIncludes(template string) string {
	return includePattern.ReplaceAllStringFunc(template, func(directive string) string {
		path := includePattern.FindStringSubmatch(directive)[1]

		content, err := p.ReadFile(path)
		if err != nil {
			p.logger.Warn("include failed",
				zap.String("path", path),
				zap.Error(err),
			)
			return fmt.Sprintf("Error: Unable to include file '%s'", path)
		}

		p.logger.Debug("included file", zap.String("path", path), zap.Int("bytes", len(content)))
		return string(content)
	})
}

// ReadFile reads a template-referenced file relative to the base directory.
// Under WithRoot the read goes through os.Root and cannot leave it.
func (p *Processor) ReadFile(path string) ([]byte, error) {
	if !p.confined {
		if p.baseDir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(p.baseDir, path)
		}
		return os.ReadFile(path)
	}

	if filepath.IsAbs(path) {
		return nil, fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	root, err := os.OpenRoot(p.baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open root: %w", err)
	}
	defer root.Close()

	return root.ReadFile(path)
}

// resolveConditionals keeps the raw text of the chosen branch of each conditional
func (p *Processor) resolveConditionals(ctx context.Context, template string, data Context) string {
	return conditionalPattern.ReplaceAllStringFunc(template, func(directive string) string {
		groups := conditionalPattern.FindStringSubmatch(directive)
		condition, ifBranch, elseBranch := groups[1], groups[2], groups[3]

		if p.evaluateCondition(ctx, condition, data) {
			return ifBranch
		}
		return elseBranch
	})
}

// evaluateCondition treats any evaluation failure as false
func (p *Processor) evaluateCondition(ctx context.Context, condition string, data Context) bool {
	ok, err := p.evaluator.EvaluateBool(ctx, condition, data)
	if err != nil {
		p.logger.Debug("condition evaluated as false",
			zap.String("condition", condition),
			zap.Error(err),
		)
		return false
	}
	return ok
}

// interpolateVariables replaces bare-word directives with context values
func (p *Processor) interpolateVariables(template string, data Context) string {
	return variablePattern.ReplaceAllStringFunc(template, func(directive string) string {
		name := variablePattern.FindStringSubmatch(directive)[1]
		return Stringify(data[name])
	})
}

// dispatchBlocks invokes block handlers in text order. Identical directive text
// is dispatched once and its output reused for every occurrence.
func (p *Processor) dispatchBlocks(ctx context.Context, template string, data Context) (string, error) {
	matches := blockPattern.FindAllStringSubmatchIndex(template, -1)
	if len(matches) == 0 {
		return template, nil
	}

	rendered := make(map[string]string, len(matches))
	var b strings.Builder
	last := 0

	for _, m := range matches {
		directive := template[m[0]:m[1]]

		output, ok := rendered[directive]
		if !ok {
			if err := ctx.Err(); err != nil {
				return "", err
			}

			name := template[m[2]:m[3]]
			params := ParseParams(template[m[4]:m[5]])

			var err error
			output, err = p.invoke(ctx, name, params, data)
			if err != nil {
				return "", err
			}
			rendered[directive] = output
		}

		b.WriteString(template[last:m[0]])
		b.WriteString(output)
		last = m[1]
	}
	b.WriteString(template[last:])

	return b.String(), nil
}

// invoke runs a single block handler and classifies its error
func (p *Processor) invoke(ctx context.Context, name string, params Params, data Context) (string, error) {
	handler, ok := p.lookup(name)
	if !ok {
		p.logger.Warn("block not found", zap.String("block", name))
		return fmt.Sprintf("Error: Block '%s' not found", name), nil
	}

	p.logger.Debug("dispatching block",
		zap.String("block", name),
		zap.Any("params", params),
	)

	output, err := handler(ctx, params, data)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		if IsFatal(err) {
			return "", fmt.Errorf("block %s: %w", name, err)
		}
		p.logger.Warn("block failed",
			zap.String("block", name),
			zap.Error(err),
		)
		return fmt.Sprintf("Error: Block '%s' failed: %v", name, err), nil
	}

	return output, nil
}

// ParseParams parses key="value" pairs; later duplicates win
func ParseParams(raw string) Params {
	params := make(Params)
	for _, m := range paramPattern.FindAllStringSubmatch(raw, -1) {
		params[m[1]] = m[2]
	}
	return params
}
