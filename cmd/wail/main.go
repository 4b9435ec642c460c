package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/wippyai/wail"
	"github.com/wippyai/wail/config"
	"github.com/wippyai/wail/emit"
	"github.com/wippyai/wail/manifest"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			config.Usage(os.Stderr)
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		config.Usage(os.Stderr)
		os.Exit(2)
	}

	if cfg.Schema {
		data, err := manifest.ComponentsSchema()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	log, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	wail.SetLogger(log)

	for _, w := range cfg.Warnings {
		log.Warn(w)
	}

	opts, err := buildOptions(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if cfg.Interactive {
		if err := runInteractive(opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(context.Background(), cfg, opts, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts wail.Options, stdout, stderr io.Writer) error {
	res, err := wail.Run(ctx, opts)
	if res != nil {
		renderReport(stderr, res.Report, isTerminal(stderr))
	}
	if err != nil {
		return err
	}

	if cfg.Output == "" {
		return manifest.Write(stdout, res.Manifest)
	}
	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := manifest.Write(f, res.Manifest); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func buildOptions(cfg *config.Config) (wail.Options, error) {
	opts := wail.Options{
		Defaults: emit.Defaults{
			Name:        cfg.Name,
			Version:     cfg.Version,
			Description: cfg.Description,
		},
		Strict:                  cfg.Strict,
		Verify:                  cfg.Verify,
		FailOnDescriptionDecode: cfg.FailOnDescriptionDecode,
		BaseDir:                 cfg.BaseDir,
	}
	if cfg.Components != "" {
		comps, err := manifest.LoadComponents(cfg.Components)
		if err != nil {
			return opts, err
		}
		opts.Components = comps
	}
	if cfg.Manifest != "" {
		desc, err := manifest.Load(cfg.Manifest)
		if err != nil {
			return opts, err
		}
		opts.Description = desc
	}
	return opts, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if cfg.DevLog {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
