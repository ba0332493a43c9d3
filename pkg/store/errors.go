package store

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound means the template or local configuration file is absent.
	ErrNotFound = errors.New("config not found")

	// ErrMalformed means the file exists but is not a valid layout document.
	ErrMalformed = errors.New("invalid config")
)

// DocumentError reports a failure to load one document.
//
// errors.Is matches Kind (ErrNotFound or ErrMalformed); errors.As reaches the
// underlying read or parse error.
type DocumentError struct {
	Kind error
	// Name is the template name, empty for the local configuration.
	Name string
	Path string
	Err  error
}

func (e *DocumentError) Error() string {
	what := e.Path
	if e.Name != "" {
		what = fmt.Sprintf("template '%s'", e.Name)
	}
	if e.Kind == ErrMalformed && e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, what, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Kind, what)
}

func (e *DocumentError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsNotFound reports whether err is a missing-document failure.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsMalformed reports whether err is an unparseable-document failure.
func IsMalformed(err error) bool { return errors.Is(err, ErrMalformed) }
