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

// anthill-demo exercises the runtime with two demo programs: a spawn
// benchmark and an echo/continuation round trip.
package main

import (
	"math"
	"net/http"
	"os"
	"runtime/debug"

	"github.com/KimMachineGun/automemlimit/memlimit"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/anthill-io/anthill/pkg/actor"
	"github.com/anthill-io/anthill/pkg/logutil"
	"github.com/anthill-io/anthill/pkg/runtime"
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		log.Error("demo failed", zap.Error(err))
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var metricsAddr string
	logCfg := &logutil.Config{}
	cmd := &cobra.Command{
		Use:           "anthill-demo",
		Short:         "Demo programs of the anthill actor runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logCfg.Adjust()
			if err := logutil.InitLogger(logCfg); err != nil {
				return err
			}
			setMemoryLimit()
			if metricsAddr != "" {
				serveMetrics(metricsAddr)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&metricsAddr, "metrics", "",
		"Serve Prometheus metrics on this address, empty disables it")
	cmd.PersistentFlags().StringVar(&logCfg.Level, "log-level", "info",
		"log level (debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&logCfg.File, "log-file", "",
		"log file path, empty logs to stderr")
	cmd.AddCommand(newBenchCmd())
	cmd.AddCommand(newEchoCmd())
	return cmd
}

// setMemoryLimit propagates the cgroup memory limit to the Go runtime,
// with headroom for non-heap memory.
func setMemoryLimit() {
	totalMemory, err := memlimit.FromCgroup()
	if err != nil || totalMemory == math.MaxUint64 {
		log.Info("no cgroup memory limit", zap.Error(err))
		return
	}
	goMemLimit := int64(float64(totalMemory) * 0.9)
	debug.SetMemoryLimit(goMemLimit)
	log.Info("set memory limit",
		zap.Uint64("cgroupMemoryLimit", totalMemory),
		zap.Int64("goMemLimit", goMemLimit))
}

func serveMetrics(addr string) {
	registry := prometheus.NewRegistry()
	actor.InitMetrics(registry)
	runtime.InitMetrics(registry)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	go func() {
		log.Info("serving metrics", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Error("metrics server exited", zap.Error(err))
		}
	}()
}
