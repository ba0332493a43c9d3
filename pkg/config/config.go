package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// Config contains runtime configuration resolved from (in priority order):
//  1. Explicit CLI flags (wired in cmd layer)
//  2. Environment variables (ITERMP_*)
//  3. Config file ($ITERMP_CONFIG or ~/.config/itermp/config.yaml)
//  4. Defaults
type Config struct {
	// TemplateDir holds one <name>.json per template.
	TemplateDir string `mapstructure:"template_dir" yaml:"template_dir"`

	// LocalConfig is the file name of the per-directory configuration.
	LocalConfig string `mapstructure:"local_config" yaml:"local_config"`

	// Application is the scripting target for generated scripts.
	Application string `mapstructure:"application" yaml:"application"`

	// Osascript is the executable used to run scripts.
	Osascript string `mapstructure:"osascript" yaml:"osascript"`

	// CommandTimeout bounds one script execution. 0 disables the bound.
	CommandTimeout time.Duration `mapstructure:"command_timeout" yaml:"command_timeout"`

	// MaxDepth and MaxPanes bound the layouts the compiler accepts.
	MaxDepth int `mapstructure:"max_depth" yaml:"max_depth"`
	MaxPanes int `mapstructure:"max_panes" yaml:"max_panes"`

	Debug bool `mapstructure:"debug" yaml:"debug"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" yaml:"-"`
}

const (
	EnvPrefix  = "ITERMP"
	EnvConfig  = "ITERMP_CONFIG"
	configName = "config"
)

// Keys lists every supported key.
var Keys = []string{
	"template_dir",
	"local_config",
	"application",
	"osascript",
	"command_timeout",
	"max_depth",
	"max_panes",
	"debug",
}

// Load resolves configuration. An explicit path (or $ITERMP_CONFIG) must
// exist; the default location is optional.
func Load(path string) (Config, error) {
	v := viper.New()

	def := defaultConfig().settings()
	for _, k := range Keys {
		v.SetDefault(k, def[k])
	}

	v.SetConfigType("yaml")

	explicit := strings.TrimSpace(path)
	if explicit == "" {
		explicit = strings.TrimSpace(os.Getenv(EnvConfig))
	}
	if explicit != "" {
		v.SetConfigFile(expandHome(explicit))
	} else {
		v.AddConfigPath(filepath.Join(homeDir(), ".config", "itermp"))
		v.SetConfigName(configName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit != "" || !errors.As(err, &notFound) {
			return Config{}, errors.Wrap(err, "read config")
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, errors.Wrap(err, "unmarshal config")
	}
	c.File = v.ConfigFileUsed()
	return c.withDerivedDefaults(), nil
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return defaultConfig().withDerivedDefaults()
}

func defaultConfig() Config {
	return Config{
		TemplateDir:    filepath.Join(homeDir(), ".itermp"),
		LocalConfig:    "itermp.json",
		Application:    "iTerm2",
		Osascript:      "osascript",
		CommandTimeout: 0,
		MaxDepth:       32,
		MaxPanes:       256,
		Debug:          false,
	}
}

func (c Config) settings() map[string]any {
	return map[string]any{
		"template_dir":    c.TemplateDir,
		"local_config":    c.LocalConfig,
		"application":     c.Application,
		"osascript":       c.Osascript,
		"command_timeout": c.CommandTimeout,
		"max_depth":       c.MaxDepth,
		"max_panes":       c.MaxPanes,
		"debug":           c.Debug,
	}
}

func (c Config) withDerivedDefaults() Config {
	out := c
	def := defaultConfig()

	out.TemplateDir = expandHome(out.TemplateDir)
	if out.TemplateDir == "" {
		out.TemplateDir = def.TemplateDir
	}

	out.LocalConfig = strings.TrimSpace(out.LocalConfig)
	if out.LocalConfig == "" || strings.ContainsRune(out.LocalConfig, filepath.Separator) {
		out.LocalConfig = def.LocalConfig
	}

	out.Application = strings.TrimSpace(out.Application)
	if out.Application == "" {
		out.Application = def.Application
	}

	out.Osascript = strings.TrimSpace(out.Osascript)
	if out.Osascript == "" {
		out.Osascript = def.Osascript
	}

	if out.CommandTimeout < 0 {
		out.CommandTimeout = 0
	}
	if out.MaxDepth <= 0 {
		out.MaxDepth = def.MaxDepth
	}
	if out.MaxPanes <= 0 {
		out.MaxPanes = def.MaxPanes
	}
	return out
}

// Runtime carries the process-wide values the store and compiler need.
// It is resolved once at startup and passed down explicitly.
type Runtime struct {
	Cwd             string
	TemplateDir     string
	LocalConfigName string
}

// Runtime binds c to a working directory.
func (c Config) Runtime(cwd string) Runtime {
	return Runtime{
		Cwd:             cwd,
		TemplateDir:     c.TemplateDir,
		LocalConfigName: c.LocalConfig,
	}
}

// LocalConfigPath is the absolute path of the local configuration.
func (r Runtime) LocalConfigPath() string {
	return filepath.Join(r.Cwd, r.LocalConfigName)
}

func homeDir() string {
	home, _ := os.UserHomeDir()
	if home == "" {
		home = os.Getenv("HOME")
	}
	return home
}

func expandHome(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return p
	}
	if p == "~" {
		if home := homeDir(); home != "" {
			return home
		}
		return p
	}
	if strings.HasPrefix(p, "~/") {
		if home := homeDir(); home != "" {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
