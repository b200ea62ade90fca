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

package logutil

import (
	"path/filepath"
	"testing"

	"github.com/pingcap/log"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitLoggerAndSetLogLevel(t *testing.T) {
	f := filepath.Join(t.TempDir(), "test.log")
	cfg := &Config{
		Level: "warning",
		File:  f,
	}
	cfg.Adjust()
	require.Equal(t, "warn", cfg.Level)
	require.Nil(t, InitLogger(cfg))
	require.Equal(t, zapcore.WarnLevel, log.GetLevel())

	require.Nil(t, SetLogLevel("info"))
	require.Equal(t, zapcore.InfoLevel, log.GetLevel())
	require.NotNil(t, SetLogLevel("badlevel"))
}
