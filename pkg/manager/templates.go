package manager

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"itermp/pkg/prompt"
	"itermp/pkg/spec"
)

// CreateTemplate saves the local configuration as a template. With an empty
// name the user is asked for one.
func (a *Actions) CreateTemplate(ctx context.Context, name string) error {
	if !a.Store.LocalExists() {
		a.log().Warn("No local config exists!", zap.String("path", a.Store.LocalPath()))
		return nil
	}

	name = strings.TrimSpace(name)
	if name == "" {
		answer, err := a.Prompter.Input(ctx, "Template name:")
		if err != nil {
			_, err := declined(err)
			return err
		}
		name = strings.TrimSpace(answer)
		if name == "" {
			a.log().Warn("No template name given")
			return nil
		}
	}
	if err := spec.ValidateTemplateName(name); err != nil {
		a.log().Warn("Invalid template name", zap.String("name", name), zap.Error(err))
		return nil
	}

	if a.Store.Exists(name) {
		ok, err := a.confirm(ctx, fmt.Sprintf("A template named '%s' already exists. Overwrite?", name))
		if err != nil || !ok {
			return err
		}
	}

	if err := a.Store.CopyFromLocal(name); err != nil {
		return err
	}
	a.notify("Template '%s' created!", name)
	return nil
}

// DeleteTemplate removes a template after confirmation.
func (a *Actions) DeleteTemplate(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" || !a.Store.Exists(name) {
		a.log().Warn(fmt.Sprintf("No template named '%s' exists!", name))
		return nil
	}

	ok, err := a.confirm(ctx, fmt.Sprintf("Remove the '%s' template?", name))
	if err != nil || !ok {
		return err
	}

	if err := a.Store.Delete(name); err != nil {
		return err
	}
	a.notify("Template '%s' deleted!", name)
	return nil
}

// SaveTemplate copies a template into the local configuration. With an
// empty name a fresh local configuration is written from the basic template.
// An existing local configuration is only replaced after confirmation.
func (a *Actions) SaveTemplate(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name != "" && !a.Store.Exists(name) {
		a.log().Warn(fmt.Sprintf("Template '%s' does not exist!", name))
		return nil
	}

	if a.Store.LocalExists() {
		ok, err := a.confirm(ctx, fmt.Sprintf("Overwrite existing %s?", a.localName()))
		if err != nil || !ok {
			return err
		}
	}

	if name == "" {
		if err := a.Store.InitLocal(); err != nil {
			return err
		}
		a.notify("Created %s", a.localName())
		return nil
	}

	if err := a.Store.CopyToLocal(name); err != nil {
		return err
	}
	a.notify("'%s' saved to %s", name, a.localName())
	return nil
}

// InitTemplate is SaveTemplate under the name the CLI exposes as --init.
func (a *Actions) InitTemplate(ctx context.Context, name string) error {
	return a.SaveTemplate(ctx, name)
}

const (
	actionRun    = "run"
	actionDelete = "delete"
	actionSave   = "save"
)

var menu = []prompt.Option{
	{Key: "r", Label: "run", Value: actionRun},
	{Key: "d", Label: "delete", Value: actionDelete},
	{Key: "s", Label: "save to local config", Value: actionSave},
}

// ListTemplates lets the user pick a template and an action to apply to it.
func (a *Actions) ListTemplates(ctx context.Context) error {
	names, err := a.Store.ListAll()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		a.log().Warn("No templates found")
		return nil
	}

	opts := make([]prompt.Option, 0, len(names))
	for _, n := range names {
		opts = append(opts, prompt.Option{Label: n, Value: n})
	}
	name, err := a.Prompter.Select(ctx, "Available templates:", opts)
	if err != nil {
		_, err := declined(err)
		return err
	}

	action, err := a.Prompter.Select(ctx, fmt.Sprintf("What should happen with '%s'?", name), menu)
	if err != nil {
		_, err := declined(err)
		return err
	}

	switch action {
	case actionRun:
		return a.Run(ctx, name)
	case actionDelete:
		return a.DeleteTemplate(ctx, name)
	case actionSave:
		return a.SaveTemplate(ctx, name)
	default:
		a.log().Warn("Unknown action", zap.String("action", action))
		return nil
	}
}
