// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command wtfdump inspects binary Web Tracing Framework traces.
//
// Usage:
//
//	wtfdump info trace.wtf-trace...
//	wtfdump events [--zone name] [--start ms] [--end ms] trace.wtf-trace...
//	wtfdump query expression trace.wtf-trace...
//	wtfdump frames|ranges|flows trace.wtf-trace...
//	wtfdump raw trace.wtf-trace
//
// Settings are read from $HOME/.wtfdump.toml unless --config names another
// file. Flags override the file.
package main

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/webtracing/wtf/db"
	"github.com/webtracing/wtf/loader"
	"go.uber.org/zap"
)

// app holds the state shared by the subcommands of one invocation.
type app struct {
	cfg    config
	logger *zap.Logger
}

var errorColor = color.New(color.FgRed, color.Bold)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errorColor.Fprintf(os.Stderr, "wtfdump: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{cfg: defaultConfig(), logger: zap.NewNop()}
	root := &cobra.Command{
		Use:           "wtfdump",
		Short:         "Inspect Web Tracing Framework traces",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.logger.Sync()
		},
	}
	pf := root.PersistentFlags()
	pf.String("config", defaultConfigPath(), "TOML settings file")
	pf.String("log-level", "", "log level (debug|info|warn|error)")
	pf.String("color", "", "colorize output (auto|on|off)")
	pf.Int("chunk-size", 0, "read buffer size in bytes")
	pf.Int("limit", 0, "maximum number of rows to print, 0 for the config value")

	root.AddCommand(
		a.infoCmd(),
		a.eventsCmd(),
		a.queryCmd(),
		a.framesCmd(),
		a.rangesCmd(),
		a.flowsCmd(),
		a.rawCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()
	path, _ := flags.GetString("config")
	cfg, err := loadConfig(path, flags.Changed("config"))
	if err != nil {
		return err
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := flags.GetString("color"); v != "" {
		cfg.Color = v
	}
	if v, _ := flags.GetInt("chunk-size"); v > 0 {
		cfg.ChunkSize = v
	}
	if v, _ := flags.GetInt("limit"); v > 0 {
		cfg.Limit = v
	}
	switch cfg.Color {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	a.cfg, a.logger = cfg, logger
	return nil
}

// load reads the named traces into a fresh database. Files that fail to
// load are reported and skipped.
func (a *app) load(ctx context.Context, cmd *cobra.Command, paths []string) (*db.Database, error) {
	d, err := db.New(db.WithLogger(a.logger))
	if err != nil {
		return nil, err
	}
	srcs, err := loader.LoadFiles(ctx, d, paths,
		loader.WithChunkSize(a.cfg.ChunkSize),
		loader.WithLogger(a.logger))
	loaded := 0
	for _, src := range srcs {
		if src != nil && src.Err() == nil {
			loaded++
		}
	}
	if err != nil {
		errorColor.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
	}
	if loaded == 0 {
		if err == nil {
			return nil, errNoTraces
		}
		return nil, err
	}
	return d, nil
}
