// Package config reads wail's command-line flags, a .env file and WAIL_*
// environment variables into one validated Config.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const envPrefix = "WAIL_"

var validate = validator.New()

// Config is the resolved configuration of one wail run.
type Config struct {
	// Components is the path of the components document.
	Components string `validate:"required_without=Manifest"`
	// Manifest is the path of an existing application manifest.
	Manifest string `validate:"required_without=Components"`
	// Output is the destination file; empty means stdout.
	Output string

	Name        string `validate:"required"`
	Version     string `validate:"required"`
	Description string

	LogLevel string `validate:"oneof=debug info warn error"`
	DevLog   bool

	// Strict rejects ambiguous links instead of taking the first exporter.
	Strict bool
	// Verify compiles embedded core modules while decoding.
	Verify bool
	// FailOnDescriptionDecode makes an undecodable image in the existing
	// manifest fatal instead of a skipped component.
	FailOnDescriptionDecode bool
	// BaseDir resolves relative component paths.
	BaseDir string

	Interactive bool
	Schema      bool

	// Warnings are non-fatal configuration problems.
	Warnings []string
}

// Defaults used when neither flags nor environment set a value.
const (
	DefaultName     = "wail-app"
	DefaultVersion  = "0.1.0"
	DefaultLogLevel = "warn"
)

// Load reads .env from the working directory if present, then parses args
// against the process environment.
func Load(args []string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return Parse(args, os.Getenv)
}

// Parse builds a Config from args and an environment lookup. Flags win over
// environment values, which win over defaults.
func Parse(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{
		Name:     firstNonEmpty(getenv(envPrefix+"NAME"), DefaultName),
		Version:  firstNonEmpty(getenv(envPrefix+"VERSION"), DefaultVersion),
		LogLevel: firstNonEmpty(strings.ToLower(getenv(envPrefix+"LOG_LEVEL")), DefaultLogLevel),
	}
	cfg.Description = getenv(envPrefix + "DESCRIPTION")
	cfg.BaseDir = getenv(envPrefix + "BASE_DIR")

	var err error
	if cfg.Strict, err = envBool(getenv, "STRICT"); err != nil {
		return nil, err
	}
	if cfg.Verify, err = envBool(getenv, "VERIFY"); err != nil {
		return nil, err
	}
	if cfg.FailOnDescriptionDecode, err = envBool(getenv, "FAIL_ON_DESCRIPTION_DECODE"); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("wail", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&cfg.Components, "components", "", "Path to the components document")
	fs.StringVar(&cfg.Manifest, "wadm", "", "Path to an existing wadm manifest to merge")
	fs.StringVar(&cfg.Output, "o", "", "Write the manifest to this file instead of stdout")
	fs.StringVar(&cfg.Name, "name", cfg.Name, "Application name")
	fs.StringVar(&cfg.Version, "version", cfg.Version, "Application version")
	fs.StringVar(&cfg.Description, "description", cfg.Description, "Application description")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.DevLog, "dev", false, "Human-readable development logging")
	fs.BoolVar(&cfg.Strict, "strict", cfg.Strict, "Reject interfaces exported by more than one component")
	fs.BoolVar(&cfg.Verify, "verify", cfg.Verify, "Compile embedded core modules while decoding")
	fs.BoolVar(&cfg.FailOnDescriptionDecode, "fail-on-description-decode", cfg.FailOnDescriptionDecode,
		"Abort when an image in the -wadm manifest cannot be decoded instead of skipping it")
	fs.StringVar(&cfg.BaseDir, "base-dir", cfg.BaseDir, "Resolve relative component paths against this directory")
	fs.BoolVar(&cfg.Interactive, "i", false, "Browse the assembled application interactively")
	fs.BoolVar(&cfg.Schema, "schema", false, "Print the components document JSON schema and exit")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	if cfg.Schema {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration and records warnings for values that
// are accepted but unusual.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return fmt.Errorf("invalid configuration: %s", strings.Join(slices.Compact(msgs), "; "))
	}

	if _, err := semver.NewVersion(c.Version); err != nil {
		c.Warnings = append(c.Warnings, fmt.Sprintf("version %q is not a semantic version", c.Version))
	}
	return nil
}

// Usage writes flag help to w.
func Usage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wail -components <components.yaml> [-wadm <wadm.yaml>] [-o out.yaml]")
	fmt.Fprintln(w, "       wail -wadm <wadm.yaml> [-name app -version 0.1.0 -description text]")
	fmt.Fprintln(w, "       wail -schema")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Environment: WAIL_NAME, WAIL_VERSION, WAIL_DESCRIPTION, WAIL_LOG_LEVEL,")
	fmt.Fprintln(w, "             WAIL_STRICT, WAIL_VERIFY, WAIL_FAIL_ON_DESCRIPTION_DECODE,")
	fmt.Fprintln(w, "             WAIL_BASE_DIR (also read from .env)")
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "Components", "Manifest":
		return "either -components or -wadm is required"
	case "LogLevel":
		return fmt.Sprintf("log level %q is not one of debug, info, warn, error", fe.Value())
	default:
		return fmt.Sprintf("%s is required", strings.ToLower(fe.Field()))
	}
}

func envBool(getenv func(string) string, key string) (bool, error) {
	raw := strings.TrimSpace(getenv(envPrefix + key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s%s: %w", envPrefix, key, err)
	}
	return v, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
