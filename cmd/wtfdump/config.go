// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/webtracing/wtf/loader"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/xerrors"
)

type config struct {
	LogLevel  string `toml:"log_level"`
	Color     string `toml:"color"`
	ChunkSize int    `toml:"chunk_size"`
	Limit     int    `toml:"limit"`
}

func defaultConfig() config {
	return config{
		LogLevel:  "warn",
		Color:     "auto",
		ChunkSize: loader.DefaultChunkSize,
		Limit:     100,
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".wtfdump.toml")
}

// loadConfig reads path over the defaults. A missing file at the default
// location is not an error.
func loadConfig(path string, explicit bool) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, xerrors.Errorf("read config: %w", err)
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return cfg, xerrors.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, xerrors.Errorf("log level: %w", err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true
	return cfg.Build()
}
