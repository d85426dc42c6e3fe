package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/aescanero/dago-readme/internal/app"
	"github.com/aescanero/dago-readme/internal/config"
	"github.com/aescanero/dago-readme/internal/engine"
	"github.com/aescanero/dago-readme/internal/manifest"
	"go.uber.org/zap"
)

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

func main() {
	output := flag.String("o", "README.md", "output file")
	title := flag.String("title", "", "project title (defaults to the package name)")
	description := flag.String("description", "", "project description (defaults to the package description)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <input>\n\nBuild README.md from a template.\n\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(Version)
		return
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := app.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger, flag.Arg(0), *output, map[string]string{
		manifest.KeyTitle:       *title,
		manifest.KeyDescription: *description,
	}); err != nil {
		logger.Error("build failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger, input, output string, overrides map[string]string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	baseDir := cfg.BaseDir
	if baseDir == "" {
		baseDir = cwd
	}

	logger.Info("building readme",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("cwd", baseDir),
		zap.String("input", input),
	)

	project, err := manifest.Discover(baseDir)
	if err != nil {
		return err
	}
	data := manifest.BuildContext(project, overrides)

	source := input
	if !filepath.IsAbs(source) {
		source = filepath.Join(baseDir, source)
	}
	content, err := os.ReadFile(source)
	if err != nil {
		return fmt.Errorf("failed to read template: %w", err)
	}

	processor := app.NewProcessor(cfg, logger, engine.WithBaseDir(baseDir))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.RenderTimeout)
	defer cancel()

	rendered, err := processor.Render(ctx, string(content), data)
	if err != nil {
		return fmt.Errorf("failed to render %s: %w", input, err)
	}

	if err := os.WriteFile(output, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	logger.Info("readme generated", zap.String("output", output), zap.Int("bytes", len(rendered)))
	return nil
}
