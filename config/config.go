// Package config resolves run settings from defaults, an optional YAML file,
// C2CLAT_* environment variables and command line flags, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"c2clat/constants"
	"c2clat/measure"
	"c2clat/report"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the resolved run configuration.
type Config struct {
	Samples     int    `koanf:"samples"`
	Repetitions int    `koanf:"repetitions"`
	Warmup      int    `koanf:"warmup"`
	Format      string `koanf:"format"`
	Database    string `koanf:"database"`
	Verbose     bool   `koanf:"verbose"`

	// File is the config file that was read, empty if none.
	File string `koanf:"-"`
}

// Flag names. The three format switches collapse onto the "format" key.
const (
	FlagConfig      = "config"
	FlagSamples     = "samples"
	FlagRepetitions = "repetitions"
	FlagWarmup      = "warmup"
	FlagFormat      = "format"
	FlagPlot        = "plot"
	FlagMarkdown    = "md"
	FlagJSON        = "json"
	FlagDatabase    = "db"
	FlagVerbose     = "verbose"
)

// FormatFlags are the mutually exclusive output selectors.
var FormatFlags = []string{FlagFormat, FlagPlot, FlagMarkdown, FlagJSON}

// switchFormats maps boolean format switches to the format they select.
var switchFormats = map[string]report.Format{
	FlagPlot:     report.Plot,
	FlagMarkdown: report.Markdown,
	FlagJSON:     report.JSON,
}

// RegisterFlags adds the run flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(FlagConfig, "", "config file (default: ./"+constants.ConfigFileName+")")
	fs.IntP(FlagSamples, "n", constants.DefaultSamples, "handshake rounds timed per repetition")
	fs.Int(FlagRepetitions, constants.DefaultRepetitions, "repetitions per core pair, warm-up included")
	fs.Int(FlagWarmup, constants.DefaultWarmup, "leading repetitions discarded per pair")
	fs.StringP(FlagFormat, "f", constants.DefaultFormat, "output format (text|markdown|plot|json)")
	fs.BoolP(FlagPlot, "p", false, "output a gnuplot script")
	fs.Bool(FlagMarkdown, false, "output markdown tables")
	fs.Bool(FlagJSON, false, "output JSON")
	fs.String(FlagDatabase, "", "record the run in this SQLite database")
	fs.BoolP(FlagVerbose, "v", false, "report progress on stderr")
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"samples":     constants.DefaultSamples,
		"repetitions": constants.DefaultRepetitions,
		"warmup":      constants.DefaultWarmup,
		"format":      constants.DefaultFormat,
		"database":    "",
		"verbose":     false,
	}
}

// findConfigFile returns explicit if set, else the default file name when it
// exists in the working directory.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(constants.ConfigFileName); err == nil {
		return constants.ConfigFileName
	}
	return ""
}

// Load resolves the configuration for a measurement. flags may be nil; only
// flags the user actually set override lower layers. The result is validated.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	cfg, err := resolve(cfgFile, flags)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadView resolves the configuration for commands that only read history.
// Measurement parameters are carried through but not checked, so a setting
// meant for the next run cannot lock the user out of past ones.
func LoadView(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	cfg, err := resolve(cfgFile, flags)
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateOutput(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolve(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// C2CLAT_SAMPLES -> samples
	if err := k.Load(env.Provider(constants.EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, constants.EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			switch f.Name {
			case FlagConfig:
				return "", nil
			case FlagDatabase:
				return "database", posflag.FlagVal(flags, f)
			}
			if format, ok := switchFormats[f.Name]; ok {
				if on, _ := flags.GetBool(f.Name); on {
					return "format", string(format)
				}
				return "", nil
			}
			return f.Name, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used
	return &cfg, nil
}

// Validate checks the measurement parameters and the output settings.
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return c.ValidateOutput()
}

// ValidateOutput normalizes Format to its canonical name.
func (c *Config) ValidateOutput() error {
	f, err := report.ParseFormat(c.Format)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	c.Format = string(f)
	return nil
}

// Params returns the measurement parameters.
func (c *Config) Params() measure.Params {
	return measure.Params{
		Samples:     c.Samples,
		Repetitions: c.Repetitions,
		Warmup:      c.Warmup,
	}
}

// OutputFormat returns the validated report format.
func (c *Config) OutputFormat() report.Format {
	return report.Format(c.Format)
}
