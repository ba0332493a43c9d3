package main

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"itermp/pkg/applescript"
	"itermp/pkg/config"
	"itermp/pkg/manager"
	"itermp/pkg/prompt"
	"itermp/pkg/store"
)

// optionalValue lets --global and --init be given with or without a name.
const optionalValue = " "

type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	debug      bool
	globalName string
	initName   string
	list       bool
	remove     string
	printYAML  bool

	cfg    config.Config
	logger *zap.Logger

	getwd       func() (string, error)
	newPrompter func() prompt.Prompter
	newRunner   func(cfg config.Config, log *zap.Logger) applescript.Runner
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout: stdout,
		stderr: stderr,
		getwd:  os.Getwd,
		newPrompter: func() prompt.Prompter {
			return prompt.NewTerminal()
		},
		newRunner: func(cfg config.Config, log *zap.Logger) applescript.Runner {
			return &applescript.OsascriptRunner{
				Bin:     cfg.Osascript,
				Timeout: cfg.CommandTimeout,
				Logger:  log,
			}
		},
	}
}

func (a *app) debugEnabled() bool {
	return a.debug || a.cfg.Debug
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "itermp [template]",
		Short: "Launch iTerm2 pane layouts from JSON templates",
		Long: `itermp opens an iTerm2 window laid out as described by ./itermp.json
or by a named template stored in ~/.itermp.

Examples:
  itermp                 run ./itermp.json (or pick a template)
  itermp web             run the "web" template
  itermp -g web          save ./itermp.json as "web"
  itermp -i web          copy "web" to ./itermp.json
  itermp -r web          delete "web"
  itermp -l              pick a template and an action`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
		ValidArgsFunction: a.completeTemplates,
		RunE:              a.runRoot,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Path to config file (default ~/.config/itermp/config.yaml)")
	pf.BoolVarP(&a.debug, "debug", "d", false, "Verbose logging, echo generated scripts, full error traces")

	f := root.Flags()
	f.StringVarP(&a.globalName, "global", "g", "", "Save ./itermp.json as a template (prompts for a name if omitted)")
	f.Lookup("global").NoOptDefVal = optionalValue
	f.StringVarP(&a.initName, "init", "i", "", "Copy a template to ./itermp.json (writes the basic layout if omitted)")
	f.Lookup("init").NoOptDefVal = optionalValue
	f.BoolVarP(&a.list, "list", "l", false, "Pick a template and an action interactively")
	f.StringVarP(&a.remove, "remove", "r", "", "Delete a template")
	root.MarkFlagsMutuallyExclusive("global", "init", "list", "remove")
	_ = root.RegisterFlagCompletionFunc("remove", a.completeTemplates)
	_ = root.RegisterFlagCompletionFunc("init", a.completeTemplates)

	root.AddCommand(a.printCmd(), a.configCmd())
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := zapcore.InfoLevel
	if a.debugEnabled() {
		level = zapcore.DebugLevel
	}
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = ""
	enc.CallerKey = ""
	enc.StacktraceKey = ""
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	a.logger = zap.New(zapcore.NewCore(
		zapcore.NewConsoleEncoder(enc),
		zapcore.AddSync(a.stderr),
		level,
	))
	return nil
}

func (a *app) runtime() (config.Runtime, error) {
	cwd, err := a.getwd()
	if err != nil {
		return config.Runtime{}, errors.Wrap(err, "resolve working directory")
	}
	return a.cfg.Runtime(cwd), nil
}

func (a *app) actions(runner applescript.Runner) (*manager.Actions, error) {
	rt, err := a.runtime()
	if err != nil {
		return nil, err
	}
	compiler := applescript.NewCompiler()
	compiler.Application = a.cfg.Application
	compiler.Policy = applescript.Policy{
		MaxDepth: a.cfg.MaxDepth,
		MaxPanes: a.cfg.MaxPanes,
	}

	acts := &manager.Actions{
		Store:    store.New(rt),
		Compiler: compiler,
		Runner:   runner,
		Prompter: a.newPrompter(),
		Logger:   a.logger,
		Out:      a.stdout,
		Cwd:      rt.Cwd,
		Debug:    a.debugEnabled(),
	}
	if err := acts.Bootstrap(); err != nil {
		return nil, err
	}
	return acts, nil
}

func (a *app) runRoot(cmd *cobra.Command, args []string) error {
	acts, err := a.actions(a.newRunner(a.cfg, a.logger))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var name string
	if len(args) > 0 {
		name = args[0]
	}

	flags := cmd.Flags()
	switch {
	case flags.Changed("remove"):
		return acts.DeleteTemplate(ctx, a.remove)
	case flags.Changed("global"):
		return acts.CreateTemplate(ctx, flagOrArg(a.globalName, name))
	case flags.Changed("init"):
		return acts.InitTemplate(ctx, flagOrArg(a.initName, name))
	case a.list:
		return acts.ListTemplates(ctx)
	default:
		return acts.Run(ctx, name)
	}
}

// flagOrArg accepts both "-g=name" and "-g name" (where pflag leaves the
// name as a positional argument).
func flagOrArg(v, arg string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return strings.TrimSpace(arg)
}

func (a *app) printCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "print [template]",
		Short:             "Print the generated AppleScript without running it",
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: a.completeTemplates,
		RunE: func(cmd *cobra.Command, args []string) error {
			acts, err := a.actions(applescript.NoopRunner{})
			if err != nil {
				return err
			}
			var name string
			if len(args) > 0 {
				name = args[0]
			}
			format := manager.PrintScript
			if a.printYAML {
				format = manager.PrintYAML
			}
			return acts.Print(cmd.Context(), name, format)
		},
	}
	cmd.Flags().BoolVar(&a.printYAML, "yaml", false, "Print the parsed layout document as YAML instead")
	return cmd
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			out := struct {
				File   string        `yaml:"file,omitempty"`
				Config config.Config `yaml:"config"`
			}{File: a.cfg.File, Config: a.cfg}
			enc := yaml.NewEncoder(a.stdout)
			enc.SetIndent(2)
			if err := enc.Encode(out); err != nil {
				return errors.Wrap(err, "encode config")
			}
			return enc.Close()
		},
	}
}

func (a *app) completeTemplates(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	names, err := store.New(cfg.Runtime("")).ListAll()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
