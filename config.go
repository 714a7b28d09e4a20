package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// =============================================================================
// Configuration
// =============================================================================

// envPrefix namespaces environment overrides, e.g. PHOTO_RESTAMP_LOG_LEVEL.
const envPrefix = "PHOTO_RESTAMP"

// errHelp is returned by loadConfig when usage was requested.
var errHelp = pflag.ErrHelp

// Config is the effective run configuration after flags, environment and
// the optional config file have been merged.
type Config struct {
	Input      string `mapstructure:"input"`
	Output     string `mapstructure:"output"`
	LogLevel   string `mapstructure:"log-level"`
	LogFile    string `mapstructure:"log-file"`
	Manifest   string `mapstructure:"manifest"`
	NoProgress bool   `mapstructure:"no-progress"`
	Pause      bool   `mapstructure:"pause"`
}

// newFlagSet declares the command-line flags.
func newFlagSet(out io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("photo-restamp", pflag.ContinueOnError)
	fs.SetOutput(out)

	fs.StringP("input", "i", "", "Export archive root (one subfolder per group)")
	fs.StringP("output", "o", "", "Output root, group folders are mirrored here")
	fs.StringP("config", "c", "", "Optional YAML config file")
	fs.String("log-level", "info", "Log level: debug, info, warn or error")
	fs.String("log-file", "", "Append logs to this file instead of stderr")
	fs.String("manifest", "", "Write a CSV manifest of the run to this path")
	fs.Bool("no-progress", false, "Disable the per-folder progress bars")
	fs.Bool("pause", false, "Wait for Enter before exiting")

	fs.Usage = func() {
		fmt.Fprintf(out, "photo-restamp - Restore capture dates of an exported photo archive\n\n")
		fmt.Fprintf(out, "Usage:\n")
		fmt.Fprintf(out, "  photo-restamp [options] [input] [output]\n\n")
		fmt.Fprintf(out, "Options:\n")
		fmt.Fprint(out, fs.FlagUsages())
		fmt.Fprintf(out, "\nEnvironment variables %s_<OPTION> override the config file.\n", envPrefix)
		fmt.Fprintf(out, "Folders not given anywhere are asked for with a folder picker.\n")
	}
	return fs
}

// loadConfig parses args and merges them with the environment and the
// optional config file. Precedence: flag > env > file > default.
// Positional arguments fill input and output, in that order, and win over
// every other source.
func loadConfig(args []string, out io.Writer) (Config, error) {
	fs := newFlagSet(out)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return Config{}, err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	switch rest := fs.Args(); {
	case len(rest) > 2:
		return Config{}, fmt.Errorf("expected at most 2 arguments, got %d", len(rest))
	case len(rest) == 2:
		cfg.Input, cfg.Output = rest[0], rest[1]
	case len(rest) == 1:
		cfg.Input = rest[0]
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate checks the fields that can be checked before folders are chosen.
func (c Config) validate() error {
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil || c.LogLevel == "" {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return c.validateRoots()
}

// validateRoots rejects an output root equal to, or nested in, the input
// root: the walker would otherwise mirror its own output.
func (c Config) validateRoots() error {
	if c.Input == "" || c.Output == "" {
		return nil
	}
	in, err := filepath.Abs(c.Input)
	if err != nil {
		return err
	}
	out, err := filepath.Abs(c.Output)
	if err != nil {
		return err
	}
	if in == out {
		return errors.New("input and output must be different folders")
	}
	if strings.HasPrefix(out, in+string(filepath.Separator)) {
		return errors.New("output must not be inside input")
	}
	return nil
}

// checkInputDir verifies that the input root is an existing directory.
func checkInputDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
