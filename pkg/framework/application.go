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

// Package framework runs a warden application: a control loop refreshing the inventory and the
// topology, then refreshing and deploying the daemons of the application, forever.
package framework

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/alexandremahdhaoui/warden/internal/metrics"
	"github.com/alexandremahdhaoui/warden/pkg/config"
	"github.com/alexandremahdhaoui/warden/pkg/daemon"
	"github.com/alexandremahdhaoui/warden/pkg/inventory"
	"github.com/go-logr/logr"
	"k8s.io/utils/clock"
	ctrl "sigs.k8s.io/controller-runtime"
)

// Phases of an iteration of the control loop.
const (
	PhaseRefreshVMs      = "RefreshVMs"
	PhaseRefreshTopology = "RefreshTopology"
	PhaseRefreshDaemons  = "RefreshDaemons"
	PhaseDeployDaemons   = "DeployDaemons"
)

// InventoryRefresher is the inventory as seen by the control loop.
type InventoryRefresher interface {
	Refresh(ctx context.Context) bool
	RegisterEventHandler(h inventory.EventHandler)
}

// TopologyRefresher is the topology as seen by the control loop.
type TopologyRefresher interface {
	Refresh(ctx context.Context) bool
}

// Application runs the control loop.
type Application struct {
	vms     InventoryRefresher
	topo    TopologyRefresher
	daemons daemon.Manager
	hooks   LoopHooks

	interval func() time.Duration
	clock    clock.Clock
	log      logr.Logger
	metrics  *metrics.Metrics

	started    atomic.Bool
	stop       atomic.Bool
	iterations atomic.Int64
}

// Option configures an Application.
type Option func(*Application)

// WithInterval sets the function returning the time slept after each iteration. It is called once
// per iteration, right before sleeping.
func WithInterval(interval func() time.Duration) Option {
	return func(a *Application) {
		a.interval = interval
	}
}

// WithClock sets the clock the control loop sleeps on.
func WithClock(clk clock.Clock) Option {
	return func(a *Application) {
		a.clock = clk
	}
}

// WithLogger sets the logger of the Application.
func WithLogger(log logr.Logger) Option {
	return func(a *Application) {
		a.log = log
	}
}

// WithMetrics records phase and iteration metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Application) {
		a.metrics = m
	}
}

// NewApplication returns an Application and registers daemons as an event handler of vms.
func NewApplication(
	vms InventoryRefresher,
	topo TopologyRefresher,
	daemons daemon.Manager,
	hooks LoopHooks,
	opts ...Option,
) *Application {
	if hooks == nil {
		hooks = NoopLoopHooks{}
	}

	a := &Application{
		vms:      vms,
		topo:     topo,
		daemons:  daemons,
		hooks:    hooks,
		interval: func() time.Duration { return config.DefaultIntervalSeconds * time.Second },
		clock:    clock.RealClock{},
		log:      ctrl.Log.WithName("application"),
	}

	for _, opt := range opts {
		opt(a)
	}

	vms.RegisterEventHandler(daemons)

	return a
}

// Run runs the control loop until Shutdown is called and returns the exit code of the application,
// which is always 0.
//
// The stop request is checked before each iteration: an iteration that started, including the sleep
// that ends it, always completes. Cancelling ctx does not stop the loop; ctx is passed down to every
// phase and hook.
//
// An Application runs once: calling Run again returns 0 immediately.
func (a *Application) Run(ctx context.Context) int {
	if !a.started.CompareAndSwap(false, true) {
		a.log.Info("Application already ran")
		return 0
	}

	a.log.Info("Starting control loop")

	for !a.stop.Load() {
		a.iterate(ctx)

		interval := a.interval()
		a.log.V(1).Info("Waiting for next round", "interval", interval.String())
		a.clock.Sleep(interval)
	}

	a.log.Info("Control loop stopped", "iterations", a.iterations.Load())

	return 0
}

// Shutdown requests the control loop to stop. It returns immediately.
func (a *Application) Shutdown() {
	if a.stop.CompareAndSwap(false, true) {
		a.log.Info("Shutdown requested")
	}
}

// Iterations returns the number of completed iterations.
func (a *Application) Iterations() int64 {
	return a.iterations.Load()
}

func (a *Application) iterate(ctx context.Context) {
	a.trace("PreLoop")
	a.hooks.PreLoop(ctx)

	a.phase(ctx, PhaseRefreshVMs, a.hooks.PreRefreshVMs, a.hooks.PostRefreshVMs, func(ctx context.Context) bool {
		return a.vms.Refresh(ctx)
	})

	a.phase(ctx, PhaseRefreshTopology, a.hooks.PreRefreshTopology, a.hooks.PostRefreshTopology, func(ctx context.Context) bool {
		return a.topo.Refresh(ctx)
	})

	a.phase(ctx, PhaseRefreshDaemons, a.hooks.PreRefreshDaemons, a.hooks.PostRefreshDaemons, func(ctx context.Context) bool {
		if err := a.daemons.RefreshDaemons(ctx); err != nil {
			a.log.Error(err, "Could not refresh daemons")
			return false
		}

		return true
	})

	a.phase(ctx, PhaseDeployDaemons, a.hooks.PreDeployDaemons, a.hooks.PostDeployDaemons, func(ctx context.Context) bool {
		if err := a.daemons.DeployDaemons(ctx); err != nil {
			a.log.Error(err, "Could not deploy daemons")
			return false
		}

		return true
	})

	a.trace("PostLoop")
	a.hooks.PostLoop(ctx)

	a.iterations.Add(1)
	a.metrics.IncLoopIterations()
}

func (a *Application) phase(
	ctx context.Context,
	name string,
	pre, post func(ctx context.Context),
	run func(ctx context.Context) bool,
) {
	a.trace("Pre" + name)
	pre(ctx)

	a.trace(name)
	start := a.clock.Now()
	ok := run(ctx)
	a.metrics.ObservePhase(name, a.clock.Since(start), ok)

	if !ok {
		a.log.V(1).Info("Phase failed", "phase", name)
	}

	a.trace("Post" + name)
	post(ctx)
}

func (a *Application) trace(step string) {
	a.log.V(2).Info(step)
}
