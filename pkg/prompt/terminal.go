package prompt

import (
	"context"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/pkg/errors"
	"golang.org/x/term"
)

// Terminal asks questions on the controlling terminal.
type Terminal struct {
	In  *os.File
	Out io.Writer
}

func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stderr}
}

func (t *Terminal) interactive() error {
	in := t.In
	if in == nil {
		in = os.Stdin
	}
	if !term.IsTerminal(int(in.Fd())) {
		return ErrNotInteractive
	}
	return nil
}

func (t *Terminal) run(ctx context.Context, field huh.Field) error {
	if err := t.interactive(); err != nil {
		return err
	}
	form := huh.NewForm(huh.NewGroup(field)).WithShowHelp(false)
	if t.In != nil {
		form = form.WithInput(t.In)
	}
	if t.Out != nil {
		form = form.WithOutput(t.Out)
	}
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return errors.Wrap(err, "prompt")
	}
	return nil
}

func (t *Terminal) Input(ctx context.Context, question string) (string, error) {
	var answer string
	field := huh.NewInput().
		Title(question).
		Value(&answer)
	if err := t.run(ctx, field); err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func (t *Terminal) Confirm(ctx context.Context, question string) (bool, error) {
	var answer bool
	field := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&answer)
	if err := t.run(ctx, field); err != nil {
		return false, err
	}
	return answer, nil
}

func (t *Terminal) Select(ctx context.Context, question string, options []Option) (string, error) {
	if len(options) == 0 {
		return "", ErrNoOptions
	}
	if err := t.interactive(); err != nil {
		return "", err
	}

	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if t.In != nil {
		opts = append(opts, tea.WithInput(t.In))
	}
	if t.Out != nil {
		opts = append(opts, tea.WithOutput(t.Out))
	}

	final, err := tea.NewProgram(newPicker(question, options), opts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, context.Canceled) {
			return "", ErrAborted
		}
		return "", errors.Wrap(err, "select")
	}
	return final.(picker).result()
}
