package prompt

import (
	"context"

	"github.com/pkg/errors"
)

// Prompter asks the user questions. Implementations block until the user
// answers, the context is done, or the question is abandoned.
type Prompter interface {
	// Input asks for a line of free text.
	Input(ctx context.Context, question string) (string, error)

	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, question string) (bool, error)

	// Select asks the user to pick one option and returns its Value.
	Select(ctx context.Context, question string, options []Option) (string, error)
}

// Option is one choice offered by Select.
type Option struct {
	// Key, when set, picks the option with a single keystroke.
	Key   string
	Label string
	Value string
}

var (
	// ErrAborted is returned when the user cancels a question.
	ErrAborted = errors.New("prompt aborted")

	// ErrNotInteractive is returned when there is no terminal to ask on.
	ErrNotInteractive = errors.New("no terminal available for prompts")

	// ErrNoOptions is returned by Select when there is nothing to choose.
	ErrNoOptions = errors.New("nothing to choose from")
)
