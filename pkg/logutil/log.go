// Copyright 2025 anthill Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logutil configures the global logger.
package logutil

import (
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"go.uber.org/zap/zapcore"
)

// Config defines the logging configuration.
type Config struct {
	// Level is the minimum enabled logging level.
	Level string
	// File is the log file path, empty means stderr.
	File string
}

// Adjust fills in defaults.
func (c *Config) Adjust() {
	if c.Level == "" {
		c.Level = "info"
	}
	// An alias accepted for compatibility.
	if c.Level == "warning" {
		c.Level = "warn"
	}
}

// InitLogger initializes the global logger.
func InitLogger(cfg *Config) error {
	logger, props, err := log.InitLogger(&log.Config{
		Level: cfg.Level,
		File:  log.FileLogConfig{Filename: cfg.File},
	})
	if err != nil {
		return errors.Trace(err)
	}
	log.ReplaceGlobals(logger, props)
	return nil
}

// SetLogLevel changes the log level of the global logger on the fly.
func SetLogLevel(level string) error {
	lv := zapcore.InfoLevel
	if err := lv.UnmarshalText([]byte(level)); err != nil {
		return errors.Trace(err)
	}
	log.SetLevel(lv)
	return nil
}
