package manager

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"itermp/pkg/applescript"
	"itermp/pkg/prompt"
	"itermp/pkg/spec"
	"itermp/pkg/store"
)

// Repository is the template store the actions operate on.
type Repository interface {
	Init() (store.InitResult, error)
	Exists(name string) bool
	LocalExists() bool
	LocalPath() string
	ListAll() ([]string, error)
	Load(name string) (*spec.PaneSpec, error)
	CopyToLocal(name string) error
	CopyFromLocal(name string) error
	Delete(name string) error
	InitLocal() error
}

// Compiler renders a document into a script.
type Compiler interface {
	Compile(root *spec.PaneSpec, cwd string) (string, error)
}

// Actions implements the user-facing commands.
//
// Each command checks state, optionally asks the user, then acts. Expected
// user-input problems (missing template, no local config) are logged as
// warnings and the command returns nil. Store and execution failures are
// returned to the caller.
type Actions struct {
	Store    Repository
	Compiler Compiler
	Runner   applescript.Runner
	Prompter prompt.Prompter

	Logger *zap.Logger

	// Out receives user-facing notices and debug script echoes.
	Out io.Writer

	// Cwd is the working directory compiled into scripts.
	Cwd string

	// Debug echoes generated scripts before running them.
	Debug bool
}

func (a *Actions) log() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

func (a *Actions) notify(format string, args ...any) {
	if a.Out == nil {
		return
	}
	fmt.Fprintf(a.Out, format+"\n", args...)
}

func (a *Actions) localName() string {
	return "./" + filepath.Base(a.Store.LocalPath())
}

// Bootstrap prepares the template directory on first use.
func (a *Actions) Bootstrap() error {
	res, err := a.Store.Init()
	if err != nil {
		return err
	}
	if res.CreatedDir {
		a.log().Info(fmt.Sprintf("Created %q", res.Dir))
	}
	if res.SeededBasic {
		a.log().Info(fmt.Sprintf("Created %q template", store.BasicName))
	}
	return nil
}

// declined folds an aborted prompt into a "no" answer.
func declined(err error) (bool, error) {
	if errors.Is(err, prompt.ErrAborted) {
		return true, nil
	}
	return false, err
}

func (a *Actions) confirm(ctx context.Context, question string) (bool, error) {
	ok, err := a.Prompter.Confirm(ctx, question)
	if err != nil {
		_, err = declined(err)
		return false, err
	}
	return ok, nil
}
