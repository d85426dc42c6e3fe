package blocks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aescanero/dago-libs/pkg/domain"
	"github.com/aescanero/dago-libs/pkg/ports"
	"github.com/aescanero/dago-readme/internal/engine"
	"github.com/aescanero/dago-readme/internal/eval/template"
	"go.uber.org/zap"
)

// SystemPrompt frames every ai block request
const SystemPrompt = "You are technical writer and you need to write a README.md file for your project."

// ErrNoCompleter is returned when the ai block runs without a configured model
var ErrNoCompleter = errors.New("llm client not configured")

// Completer produces text for a prompt
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// LLMCompleter adapts a dago LLM client to Completer
type LLMCompleter struct {
	client    ports.LLMClient
	model     string
	maxTokens int
	timeout   time.Duration
}

// NewLLMCompleter creates a completer backed by client. A zero timeout leaves
// the deadline to the caller's context.
func NewLLMCompleter(client ports.LLMClient, model string, maxTokens int, timeout time.Duration) *LLMCompleter {
	return &LLMCompleter{
		client:    client,
		model:     model,
		maxTokens: maxTokens,
		timeout:   timeout,
	}
}

// Complete sends the system text and prompt as a single user message
func (c *LLMCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := &domain.LLMRequest{
		Model: c.model,
		Messages: []domain.Message{
			{
				Role:    "user",
				Content: system + "\n\n" + prompt,
			},
		},
		MaxTokens: c.maxTokens,
	}

	respInterface, err := c.client.GenerateCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("llm completion failed: %w", err)
	}

	resp, ok := respInterface.(*domain.LLMResponse)
	if !ok {
		return "", fmt.Errorf("unexpected response type from LLM: %T", respInterface)
	}

	return resp.Content, nil
}

// newAIBlock renders the prompt as a Handlebars template against the context
// and returns the model's answer. The prompt comes from prompt="..." or, since
// a directive cannot contain "}}", from the file named by promptFile="...".
func newAIBlock(deps Deps, readFile func(string) ([]byte, error)) engine.BlockHandler {
	prompts := template.NewEngine()
	logger := deps.Logger.With(zap.String("block", AI))

	return func(ctx context.Context, params engine.Params, data engine.Context) (string, error) {
		source := params["prompt"]
		if file := params["promptFile"]; file != "" {
			content, err := readFile(file)
			if err != nil {
				return "", fmt.Errorf("failed to read prompt file: %w", err)
			}
			source = string(content)
		}
		if source == "" {
			return "", engine.MissingParam(AI, "prompt")
		}

		if deps.Completer == nil {
			if deps.AIStrict {
				return "", engine.Fatal(fmt.Errorf("%w: set LLM_API_KEY to use the ai block", ErrNoCompleter))
			}
			logger.Warn("llm client not configured, ai block left empty")
			return "", nil
		}

		prompt, err := prompts.Render(source, data)
		if err != nil {
			return "", fmt.Errorf("failed to render prompt: %w", err)
		}

		logger.Debug("calling llm", zap.String("prompt", prompt))

		text, err := deps.Completer.Complete(ctx, SystemPrompt, prompt)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(text), nil
	}
}
