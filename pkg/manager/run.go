package manager

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"itermp/pkg/applescript"
)

// Run loads a template (or the local configuration when name is empty),
// compiles it, and hands the script to the runner. With no name and no local
// configuration it falls back to ListTemplates.
//
// Load and runner errors are returned as-is.
func (a *Actions) Run(ctx context.Context, name string) error {
	if name == "" && !a.Store.LocalExists() {
		return a.ListTemplates(ctx)
	}

	script, err := a.compile(name)
	if err != nil {
		return err
	}

	if a.Debug && a.Out != nil {
		fmt.Fprint(a.Out, applescript.Banner(script))
	}
	a.log().Debug("run", zap.String("template", displayName(name)), zap.Int("script_bytes", len(script)))

	return a.Runner.Run(ctx, script)
}

func (a *Actions) compile(name string) (string, error) {
	doc, err := a.Store.Load(name)
	if err != nil {
		return "", err
	}
	return a.Compiler.Compile(doc, a.Cwd)
}

// PrintFormat selects what Print writes.
type PrintFormat int

const (
	PrintScript PrintFormat = iota
	PrintYAML
)

// Print writes the compiled script (or the parsed document as YAML) for a
// template without running anything.
func (a *Actions) Print(_ context.Context, name string, format PrintFormat) error {
	switch format {
	case PrintYAML:
		doc, err := a.Store.Load(name)
		if err != nil {
			return err
		}
		b, err := yaml.Marshal(doc)
		if err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		_, err = a.Out.Write(b)
		return err
	default:
		script, err := a.compile(name)
		if err != nil {
			return err
		}
		header := fmt.Sprintf("itermp dry run: %s\ncwd: %s", displayName(name), a.Cwd)
		_, err = fmt.Fprint(a.Out, applescript.RenderWithHeader(header, script))
		return err
	}
}

func displayName(name string) string {
	if name == "" {
		return "local config"
	}
	return fmt.Sprintf("template '%s'", name)
}
