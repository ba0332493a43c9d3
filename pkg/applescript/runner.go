package applescript

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Runner hands a generated script to the automation channel.
//
// A nil error means the channel accepted and ran the script. Callers treat any
// error as a failure of the whole run.
type Runner interface {
	Run(ctx context.Context, script string) error
}

// NoopRunner accepts every script. Used for dry runs and tests.
type NoopRunner struct{}

func (NoopRunner) Run(context.Context, string) error { return nil }

// OsascriptRunner executes scripts with the osascript binary.
//
// The script is written to the child's stdin rather than passed with -e so
// multi-line programs keep their structure.
type OsascriptRunner struct {
	// Bin is the executable name or path. Defaults to "osascript".
	Bin string

	// Args are passed before the script source. Defaults to ["-"] (read stdin).
	Args []string

	// Timeout, if > 0, bounds a single run.
	Timeout time.Duration

	// Logger receives debug traces. May be nil.
	Logger *zap.Logger
}

func (r *OsascriptRunner) Run(ctx context.Context, script string) error {
	if strings.TrimSpace(script) == "" {
		return errors.New("osascript runner: empty script")
	}

	bin := strings.TrimSpace(r.Bin)
	if bin == "" {
		bin = "osascript"
	}
	args := r.Args
	if args == nil {
		args = []string{"-"}
	}

	if ctx == nil {
		ctx = context.Background()
	}
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = strings.NewReader(script)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug("exec", zap.String("bin", bin), zap.Strings("args", args), zap.Int("script_bytes", len(script)))

	err := cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return errors.Errorf("osascript runner: timed out after %s", r.Timeout)
	}

	out := strings.TrimSpace(stdout.String())
	serr := strings.TrimSpace(stderr.String())

	if err != nil {
		if serr != "" {
			return errors.Wrapf(err, "osascript runner: %s (stderr=%q)", bin, serr)
		}
		return errors.Wrapf(err, "osascript runner: %s", bin)
	}

	if out != "" {
		log.Debug("stdout", zap.String("output", out))
	}
	if serr != "" {
		log.Debug("stderr", zap.String("output", serr))
	}
	return nil
}

// RecordingRunner keeps every script it is handed and returns Err.
type RecordingRunner struct {
	Scripts []string
	Err     error
}

func (r *RecordingRunner) Run(_ context.Context, script string) error {
	r.Scripts = append(r.Scripts, script)
	return r.Err
}
