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

package runtime

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	liveActors = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "anthill",
			Subsystem: "runtime",
			Name:      "number_of_actors",
			Help:      "The number of live actors in a runtime.",
		}, []string{"name"})
	spawnedActors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anthill",
			Subsystem: "runtime",
			Name:      "spawned_actors_total",
			Help:      "The total number of actors spawned by a runtime.",
		}, []string{"name"})
	sentMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "anthill",
			Subsystem: "runtime",
			Name:      "sent_messages_total",
			Help:      "The total number of messages and replies sent.",
		}, []string{"name"})
)

// InitMetrics registers all metrics in this file.
func InitMetrics(registry *prometheus.Registry) {
	registry.MustRegister(liveActors)
	registry.MustRegister(spawnedActors)
	registry.MustRegister(sentMessages)
}
