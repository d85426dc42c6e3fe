// Package app wires configuration, logging, the template processor and the
// built-in blocks for the readme commands.
package app

import (
	"fmt"

	"github.com/aescanero/dago-adapters/pkg/llm"
	"github.com/aescanero/dago-readme/internal/blocks"
	"github.com/aescanero/dago-readme/internal/config"
	"github.com/aescanero/dago-readme/internal/engine"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the JSON production logger for level
func NewLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return cfg.Build()
}

// NewProcessor creates a processor with every built-in block registered.
// opts select how includes and prompt files are resolved, typically
// engine.WithBaseDir for local builds and engine.WithRoot for the worker.
func NewProcessor(cfg *config.Config, logger *zap.Logger, opts ...engine.Option) *engine.Processor {
	p := engine.NewProcessor(logger, opts...)

	completer, err := newCompleter(cfg, logger)
	if err != nil {
		logger.Warn("failed to initialize llm client (ai block will not be available)",
			zap.Error(err),
		)
	}

	deps := blocks.Deps{
		AIStrict: cfg.AIStrict,
		Logger:   logger,
	}
	// a nil *LLMCompleter must not become a non-nil Completer
	if completer != nil {
		deps.Completer = completer
	}
	blocks.Register(p, deps)

	logger.Debug("template processor initialized", zap.Strings("blocks", p.Blocks()))
	return p
}

// newCompleter returns nil without error when no API key is configured
func newCompleter(cfg *config.Config, logger *zap.Logger) (*blocks.LLMCompleter, error) {
	if cfg.LLMAPIKey == "" {
		logger.Info("llm api key not provided (ai block will not be available)")
		return nil, nil
	}

	client, err := llm.NewClient(&llm.Config{
		Provider: cfg.LLMProvider,
		APIKey:   cfg.LLMAPIKey,
		Logger:   logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.LLMProvider, err)
	}

	logger.Info("llm client initialized",
		zap.String("provider", cfg.LLMProvider),
		zap.String("model", cfg.LLMModel),
	)
	return blocks.NewLLMCompleter(client, cfg.LLMModel, cfg.LLMMaxTokens, cfg.LLMTimeout), nil
}
