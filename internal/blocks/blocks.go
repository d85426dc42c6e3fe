package blocks

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aescanero/dago-readme/internal/engine"
	"github.com/aescanero/dago-readme/internal/manifest"
	"github.com/aescanero/dago-readme/internal/markdown"
	"go.uber.org/zap"
)

// Block names
const (
	Installation    = "installation"
	LicenseBlock    = "license"
	Packages        = "packages"
	Donate          = "donate"
	BadgeNpmVersion = "badgeNpmVersion"
	AI              = "ai"
)

var defaultInstallCommands = []string{"npm install --save-dev", "pnpm add -D"}

// Deps carries what the built-in blocks need besides their parameters
type Deps struct {
	// Completer backs the ai block; nil disables it
	Completer Completer
	// AIStrict makes a missing Completer abort the render
	AIStrict bool
	Logger   *zap.Logger
}

// Register installs every built-in block on p. Prompt files are read through
// p.ReadFile, so they follow the processor's base directory and root.
func Register(p *engine.Processor, deps Deps) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	p.RegisterBlock(Installation, installation)
	p.RegisterBlock(LicenseBlock, license)
	p.RegisterBlock(Packages, packages)
	p.RegisterBlock(Donate, donate)
	p.RegisterBlock(BadgeNpmVersion, badgeNpmVersion)
	p.RegisterBlock(AI, newAIBlock(deps, p.ReadFile))
}

// installation renders install commands for the project package.
// packages="cmd1,cmd2" replaces the default npm and pnpm commands.
func installation(_ context.Context, params engine.Params, data engine.Context) (string, error) {
	commands := defaultInstallCommands
	if raw := params["packages"]; raw != "" {
		commands = strings.Split(raw, ",")
	}

	name := engine.Stringify(data[manifest.KeyName])
	var b strings.Builder
	for _, cmd := range commands {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(cmd))
		b.WriteString(" ")
		b.WriteString(name)
	}

	return markdown.CodeBlock("bash", b.String()), nil
}

func license(_ context.Context, _ engine.Params, data engine.Context) (string, error) {
	id := engine.Stringify(data[manifest.KeyLicense])

	formatted := markdown.Bold(id)
	if entry, ok := LookupLicense(id); ok {
		formatted = markdown.Bold(markdown.Link(entry.Name, entry.URL))
	}

	name := engine.Stringify(data[manifest.KeyName])
	return fmt.Sprintf("The %s is licensed under %s 😇.", markdown.Code(name), formatted), nil
}

func packages(_ context.Context, _ engine.Params, data engine.Context) (string, error) {
	list, err := manifest.PackagesFrom(data)
	if err != nil {
		return "", err
	}

	table := markdown.Table("Package", "Version", "Description", "License")
	for _, pkg := range list {
		readme := path.Join(path.Dir(pkg.Path), "README.md")
		table.AddRow(
			markdown.Link(pkg.Name, readme),
			markdown.NpmVersionShield{PackageName: pkg.Name, Color: "#0000ff", LabelColor: "#000"}.String(),
			pkg.Description,
			licenseName(pkg.License),
		)
	}
	return table.String(), nil
}

func donate(_ context.Context, _ engine.Params, _ engine.Context) (string, error) {
	return markdown.Shield{
		Label:   "UNITED24",
		Message: "support Ukraine",
		Color:   "blue",
		Href:    "https://u24.gov.ua/",
	}.String(), nil
}

func badgeNpmVersion(_ context.Context, params engine.Params, _ engine.Context) (string, error) {
	if params["packageName"] == "" {
		return "", engine.MissingParam(BadgeNpmVersion, "packageName")
	}
	return markdown.NpmVersionShield{
		PackageName: params["packageName"],
		Color:       params["color"],
		LabelColor:  params["labelColor"],
	}.String(), nil
}
