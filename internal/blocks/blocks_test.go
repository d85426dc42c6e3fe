package blocks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/aescanero/dago-readme/internal/engine"
	"github.com/aescanero/dago-readme/internal/manifest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeCompleter struct {
	reply  string
	err    error
	system string
	prompt string
	calls  int
}

func (f *fakeCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	f.calls++
	f.system = system
	f.prompt = prompt
	return f.reply, f.err
}

func newProcessor(deps Deps, opts ...engine.Option) *engine.Processor {
	p := engine.NewProcessor(zap.NewNop(), opts...)
	Register(p, deps)
	return p
}

func renderBlock(t *testing.T, p *engine.Processor, template string, data engine.Context) string {
	t.Helper()
	out, err := p.Render(context.Background(), template, data)
	if err != nil {
		t.Fatalf("Render(%q) returned error: %v", template, err)
	}
	return out
}

func TestRegisterInstallsAllBlocks(t *testing.T) {
	p := newProcessor(Deps{})
	want := []string{AI, BadgeNpmVersion, Donate, Installation, LicenseBlock, Packages}
	sort.Strings(want)
	if diff := cmp.Diff(want, p.Blocks()); diff != "" {
		t.Fatalf("Blocks() mismatch (-want +got):\n%s", diff)
	}
}

func TestInstallation(t *testing.T) {
	p := newProcessor(Deps{})
	data := engine.Context{manifest.KeyName: "left-pad"}

	got := renderBlock(t, p, "{{ block installation }}", data)
	want := "```bash\nnpm install --save-dev left-pad\npnpm add -D left-pad\n```"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}

	got = renderBlock(t, p, `{{ block installation packages="yarn add -D" }}`, data)
	if want := "```bash\nyarn add -D left-pad\n```"; got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestLicense(t *testing.T) {
	p := newProcessor(Deps{})

	got := renderBlock(t, p, "{{ block license }}", engine.Context{manifest.KeyName: "x", manifest.KeyLicense: "MIT"})
	want := "The `x` is licensed under **[MIT License](https://spdx.org/licenses/MIT.html)** 😇."
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}

	got = renderBlock(t, p, "{{ block license }}", engine.Context{manifest.KeyName: "x", manifest.KeyLicense: "Custom-1"})
	if want := "The `x` is licensed under **Custom-1** 😇."; got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestLookupLicense(t *testing.T) {
	license, ok := LookupLicense("Apache-2.0")
	if !ok || license.Name != "Apache License 2.0" {
		t.Fatalf("unexpected Apache-2.0 entry: %+v (ok=%v)", license, ok)
	}
	if license, ok := LookupLicense("GPL-3.0"); !ok || license.URL != "https://spdx.org/licenses/GPL-3.0.html" {
		t.Fatalf("unexpected deprecated GPL-3.0 entry: %+v (ok=%v)", license, ok)
	}
	if _, ok := LookupLicense("not-a-license"); ok {
		t.Fatalf("expected unknown license lookup to fail")
	}
}

func TestPackagesTable(t *testing.T) {
	p := newProcessor(Deps{})
	data := engine.Context{
		manifest.KeyPackages: []interface{}{
			map[string]interface{}{"name": "a", "description": "A pkg", "license": "ISC", "path": "packages/a/package.json"},
		},
	}

	got := renderBlock(t, p, "{{ block packages }}", data)
	want := "Package | Version | Description | License\n" +
		"--- | --- | --- | ---\n" +
		"[a](packages/a/README.md) | [![](https://img.shields.io/npm/v/a?color=%230000ff&labelColor=%23000)](https://www.npmjs.com/package/a) | A pkg | ISC License"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestPackagesInvalidContextIsInline(t *testing.T) {
	p := newProcessor(Deps{})

	got := renderBlock(t, p, "{{ block packages }}", engine.Context{manifest.KeyPackages: 3})
	if !strings.HasPrefix(got, "Error: Block 'packages' failed:") {
		t.Fatalf("expected inline failure marker, got %q", got)
	}
}

func TestDonate(t *testing.T) {
	p := newProcessor(Deps{})
	got := renderBlock(t, p, "{{ block donate }}", nil)
	if !strings.Contains(got, "label=UNITED24") || !strings.HasSuffix(got, "(https://u24.gov.ua/)") {
		t.Fatalf("unexpected donate badge %q", got)
	}
}

func TestBadgeNpmVersion(t *testing.T) {
	p := newProcessor(Deps{})

	got := renderBlock(t, p, `{{ block badgeNpmVersion packageName="left-pad" color="blue" }}`, nil)
	want := "[![](https://img.shields.io/npm/v/left-pad?color=blue)](https://www.npmjs.com/package/left-pad)"
	if got != want {
		t.Fatalf("got %q\nwant %q", got, want)
	}

	_, err := p.Render(context.Background(), "{{ block badgeNpmVersion }}", nil)
	if !errors.Is(err, engine.ErrMissingParam) {
		t.Fatalf("expected missing param error, got %v", err)
	}
}

func TestAIBlock(t *testing.T) {
	completer := &fakeCompleter{reply: "  A fast left pad.\n"}
	p := newProcessor(Deps{Completer: completer})

	got := renderBlock(t, p, `{{ block ai prompt="Describe {{ name }}" }}`, engine.Context{manifest.KeyName: "left-pad"})
	if got != "A fast left pad." {
		t.Fatalf("got %q", got)
	}
	if completer.system != SystemPrompt {
		t.Fatalf("unexpected system prompt %q", completer.system)
	}
}

func TestAIBlockPromptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "intro.hbs"), []byte("Introduce {{uppercase name}}"), 0o644); err != nil {
		t.Fatalf("write prompt: %v", err)
	}

	completer := &fakeCompleter{reply: "ok"}
	p := newProcessor(Deps{Completer: completer}, engine.WithBaseDir(dir))

	renderBlock(t, p, `{{ block ai promptFile="intro.hbs" }}`, engine.Context{manifest.KeyName: "dago"})
	if completer.prompt != "Introduce DAGO" {
		t.Fatalf("prompt not rendered against context: %q", completer.prompt)
	}
}

func TestAIBlockPromptFileUnderRoot(t *testing.T) {
	parent := t.TempDir()
	root := filepath.Join(parent, "prompts")
	if err := os.Mkdir(root, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	secret := filepath.Join(parent, "token")
	if err := os.WriteFile(secret, []byte("sk-live"), 0o600); err != nil {
		t.Fatalf("write secret: %v", err)
	}

	completer := &fakeCompleter{reply: "ok"}
	p := newProcessor(Deps{Completer: completer}, engine.WithRoot(root))

	for _, file := range []string{"../token", secret} {
		got := renderBlock(t, p, `{{ block ai promptFile="`+file+`" }}`, nil)
		if !strings.HasPrefix(got, "Error: Block 'ai' failed: failed to read prompt file") {
			t.Fatalf("promptFile %q: got %q", file, got)
		}
	}
	if completer.calls != 0 {
		t.Fatalf("completer called %d times for escaping prompt files", completer.calls)
	}
}

func TestAIBlockMissingPrompt(t *testing.T) {
	p := newProcessor(Deps{Completer: &fakeCompleter{}})

	_, err := p.Render(context.Background(), "{{ block ai }}", nil)
	if !errors.Is(err, engine.ErrMissingParam) {
		t.Fatalf("expected missing param error, got %v", err)
	}
}

func TestAIBlockWithoutCompleter(t *testing.T) {
	strict := newProcessor(Deps{AIStrict: true})
	_, err := strict.Render(context.Background(), `{{ block ai prompt="x" }}`, nil)
	if !errors.Is(err, ErrNoCompleter) || !engine.IsFatal(err) {
		t.Fatalf("expected fatal ErrNoCompleter, got %v", err)
	}

	core, logs := observer.New(zapcore.WarnLevel)
	lenient := newProcessor(Deps{Logger: zap.New(core)})
	got := renderBlock(t, lenient, `before{{ block ai prompt="x" }}after`, nil)
	if got != "beforeafter" {
		t.Fatalf("got %q, want beforeafter", got)
	}
	if logs.Len() != 1 {
		t.Fatalf("expected one warning, got %d", logs.Len())
	}
}

func TestAIBlockCompleterErrorIsInline(t *testing.T) {
	p := newProcessor(Deps{Completer: &fakeCompleter{err: errors.New("rate limited")}})

	got := renderBlock(t, p, `{{ block ai prompt="x" }}`, nil)
	if got != "Error: Block 'ai' failed: rate limited" {
		t.Fatalf("got %q", got)
	}
}
