/*
Copyright 2024 Alexandre Mahdhaoui

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics exposes the prometheus collectors of a warden application.
package metrics

import (
	"net/http"
	"time"

	"github.com/alexandremahdhaoui/warden/pkg/inventory"
	"github.com/alexandremahdhaoui/warden/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "warden"

	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Metrics holds the collectors of an application. A nil *Metrics records nothing.
type Metrics struct {
	vmEvents       *prometheus.CounterVec
	inventoryVMs   prometheus.Gauge
	phaseRuns      *prometheus.CounterVec
	phaseDuration  *prometheus.HistogramVec
	loopIterations prometheus.Counter
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		vmEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vm_events_total",
			Help:      "Number of VM events detected by the inventory refresh, by event.",
		}, []string{"event"}),
		inventoryVMs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "inventory_vms",
			Help:      "Number of VMs currently known.",
		}),
		phaseRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "phase_runs_total",
			Help:      "Number of control loop phase runs, by phase and result.",
		}, []string{"phase", "result"}),
		phaseDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      "Duration of the control loop phases.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"phase"}),
		loopIterations: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loop_iterations_total",
			Help:      "Number of completed control loop iterations.",
		}),
	}
}

// ObservePhase records one run of phase.
func (m *Metrics) ObservePhase(phase string, duration time.Duration, ok bool) {
	if m == nil {
		return
	}

	result := ResultSuccess
	if !ok {
		result = ResultFailure
	}

	m.phaseRuns.WithLabelValues(phase, result).Inc()
	m.phaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// IncLoopIterations records a completed control loop iteration.
func (m *Metrics) IncLoopIterations() {
	if m == nil {
		return
	}

	m.loopIterations.Inc()
}

// Counter is the part of the inventory the VM gauge is computed from.
type Counter interface {
	Len() int
}

// EventHandler returns an inventory.EventHandler counting VM events and keeping the VM gauge in
// sync with inv.
func (m *Metrics) EventHandler(inv Counter) inventory.EventHandler {
	if m == nil {
		return inventory.EventHandlerFuncs{}
	}

	sync := func() { m.inventoryVMs.Set(float64(inv.Len())) }

	return inventory.EventHandlerFuncs{
		AddFunc: func(*types.VM) {
			m.vmEvents.WithLabelValues("ADDED").Inc()
			sync()
		},
		ChangeFunc: func(_ *types.VM, event types.VMEvent) {
			m.vmEvents.WithLabelValues(string(event)).Inc()
		},
		RemoveFunc: func(types.VM) {
			m.vmEvents.WithLabelValues("REMOVED").Inc()
			sync()
		},
	}
}

// Handler returns the HTTP handler exposing the metrics gathered by gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
