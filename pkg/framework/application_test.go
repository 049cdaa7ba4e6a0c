//go:build unit

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

package framework_test

import (
	"context"
	"testing"
	"time"

	"github.com/alexandremahdhaoui/warden/internal/util/mocks/mockdaemon"
	"github.com/alexandremahdhaoui/warden/internal/util/mocks/mockinventory"
	"github.com/alexandremahdhaoui/warden/pkg/framework"
	"github.com/alexandremahdhaoui/warden/pkg/inventory"
	"github.com/alexandremahdhaoui/warden/pkg/types"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

// steps records every call made by the control loop, in order.
type steps struct {
	calls []string
}

func (s *steps) add(step string) {
	s.calls = append(s.calls, step)
}

type recordingHooks struct {
	*steps

	// preLoop is called after the PreLoop step is recorded.
	preLoop func()
}

func (h *recordingHooks) PreLoop(context.Context) {
	h.add("PreLoop")
	if h.preLoop != nil {
		h.preLoop()
	}
}

func (h *recordingHooks) PostLoop(context.Context)            { h.add("PostLoop") }
func (h *recordingHooks) PreRefreshVMs(context.Context)       { h.add("PreRefreshVMs") }
func (h *recordingHooks) PostRefreshVMs(context.Context)      { h.add("PostRefreshVMs") }
func (h *recordingHooks) PreRefreshTopology(context.Context)  { h.add("PreRefreshTopology") }
func (h *recordingHooks) PostRefreshTopology(context.Context) { h.add("PostRefreshTopology") }
func (h *recordingHooks) PreRefreshDaemons(context.Context)   { h.add("PreRefreshDaemons") }
func (h *recordingHooks) PostRefreshDaemons(context.Context)  { h.add("PostRefreshDaemons") }
func (h *recordingHooks) PreDeployDaemons(context.Context)    { h.add("PreDeployDaemons") }
func (h *recordingHooks) PostDeployDaemons(context.Context)   { h.add("PostDeployDaemons") }

type fakeInventory struct {
	*steps

	ok       bool
	handlers []inventory.EventHandler
}

func (f *fakeInventory) Refresh(context.Context) bool {
	f.add("RefreshVMs")
	return f.ok
}

func (f *fakeInventory) RegisterEventHandler(h inventory.EventHandler) {
	f.handlers = append(f.handlers, h)
}

type fakeTopology struct {
	*steps

	ok bool
}

func (f *fakeTopology) Refresh(context.Context) bool {
	f.add("RefreshTopology")
	return f.ok
}

// sleepRecorder records the sleeps of the control loop as steps.
type sleepRecorder struct {
	*clocktesting.FakeClock
	*steps
}

func (c sleepRecorder) Sleep(d time.Duration) {
	c.add("Sleep")
	c.FakeClock.Sleep(d)
}

var iteration = []string{
	"PreLoop",
	"PreRefreshVMs", "RefreshVMs", "PostRefreshVMs",
	"PreRefreshTopology", "RefreshTopology", "PostRefreshTopology",
	"PreRefreshDaemons", "RefreshDaemons", "PostRefreshDaemons",
	"PreDeployDaemons", "DeployDaemons", "PostDeployDaemons",
	"PostLoop",
	"Sleep",
}

func TestApplication(t *testing.T) {
	var (
		ctx      context.Context
		rec      *steps
		clk      sleepRecorder
		inv      *fakeInventory
		topo     *fakeTopology
		daemons  *mockdaemon.MockManager
		hooks    *recordingHooks
		interval time.Duration
		reads    int
	)

	setup := func(t *testing.T) {
		t.Helper()

		ctx = context.Background()
		rec = &steps{}
		clk = sleepRecorder{FakeClock: clocktesting.NewFakeClock(time.Unix(0, 0)), steps: rec}
		inv = &fakeInventory{steps: rec, ok: true}
		topo = &fakeTopology{steps: rec, ok: true}
		daemons = mockdaemon.NewMockManager(t)
		hooks = &recordingHooks{steps: rec}
		interval = 10 * time.Second
		reads = 0

		daemons.EXPECT().RefreshDaemons(mock.Anything).
			Run(func(context.Context) { rec.add("RefreshDaemons") }).
			Return(nil).Maybe()
		daemons.EXPECT().DeployDaemons(mock.Anything).
			Run(func(context.Context) { rec.add("DeployDaemons") }).
			Return(nil).Maybe()
	}

	newApp := func() *framework.Application {
		return framework.NewApplication(inv, topo, daemons, hooks,
			framework.WithClock(clk),
			framework.WithLogger(logr.Discard()),
			framework.WithInterval(func() time.Duration {
				reads++
				return interval
			}),
		)
	}

	t.Run("RegistersDaemonManagerOnce", func(t *testing.T) {
		setup(t)

		_ = newApp()

		require.Len(t, inv.handlers, 1)
		assert.Same(t, daemons, inv.handlers[0])
	})

	t.Run("PhaseOrder", func(t *testing.T) {
		setup(t)

		app := newApp()
		hooks.preLoop = app.Shutdown

		assert.Equal(t, 0, app.Run(ctx))
		assert.Equal(t, iteration, rec.calls)
		assert.Equal(t, int64(1), app.Iterations())
	})

	t.Run("ShutdownCompletesCurrentIteration", func(t *testing.T) {
		setup(t)

		app := newApp()
		n := 0
		hooks.preLoop = func() {
			n++
			if n == 3 {
				app.Shutdown()
			}
		}

		assert.Equal(t, 0, app.Run(ctx))

		expected := make([]string, 0, 3*len(iteration))
		for range 3 {
			expected = append(expected, iteration...)
		}

		assert.Equal(t, expected, rec.calls)
		assert.Equal(t, int64(3), app.Iterations())
		assert.Equal(t, time.Unix(30, 0), clk.Now())
	})

	t.Run("IntervalReadOncePerIteration", func(t *testing.T) {
		setup(t)

		app := newApp()
		n := 0
		hooks.preLoop = func() {
			n++
			// the new interval applies to the sleep ending this iteration.
			interval = time.Duration(n) * time.Second
			if n == 2 {
				app.Shutdown()
			}
		}

		app.Run(ctx)

		assert.Equal(t, 2, reads)
		assert.Equal(t, time.Unix(3, 0), clk.Now())
	})

	t.Run("PhaseFailuresDoNotAbort", func(t *testing.T) {
		setup(t)

		inv.ok = false
		topo.ok = false
		daemons = mockdaemon.NewMockManager(t)
		daemons.EXPECT().RefreshDaemons(mock.Anything).
			Run(func(context.Context) { rec.add("RefreshDaemons") }).
			Return(assert.AnError).Once()
		daemons.EXPECT().DeployDaemons(mock.Anything).
			Run(func(context.Context) { rec.add("DeployDaemons") }).
			Return(assert.AnError).Once()

		app := newApp()
		hooks.preLoop = app.Shutdown

		assert.Equal(t, 0, app.Run(ctx))
		assert.Equal(t, iteration, rec.calls)
	})

	t.Run("ShutdownBeforeRun", func(t *testing.T) {
		setup(t)

		app := newApp()
		app.Shutdown()

		assert.Equal(t, 0, app.Run(ctx))
		assert.Empty(t, rec.calls)
		assert.Zero(t, app.Iterations())
	})

	t.Run("StoppedIsTerminal", func(t *testing.T) {
		setup(t)

		app := newApp()
		hooks.preLoop = app.Shutdown
		require.Equal(t, 0, app.Run(ctx))

		rec.calls = nil
		assert.Equal(t, 0, app.Run(ctx))
		assert.Empty(t, rec.calls)
	})

	t.Run("HookPanicPropagates", func(t *testing.T) {
		setup(t)

		app := newApp()
		hooks.preLoop = func() { panic("boom") }

		assert.PanicsWithValue(t, "boom", func() { app.Run(ctx) })
		assert.Equal(t, []string{"PreLoop"}, rec.calls)
	})

	t.Run("DaemonManagerObservesInventory", func(t *testing.T) {
		setup(t)

		source := mockinventory.NewMockSource(t)
		manager := inventory.NewManager(source, inventory.WithLogger(logr.Discard()))

		vm := types.VM{ID: "a", Hostname: "h1", Status: types.VMStatusOn}
		source.EXPECT().ListVMIDs(mock.Anything).Return([]string{"a"}, nil).Once()
		source.EXPECT().GetVM(mock.Anything, "a").Return(vm, nil).Once()

		daemons.EXPECT().VMAdded(mock.MatchedBy(func(vm *types.VM) bool { return vm.ID == "a" })).
			Run(func(*types.VM) { rec.add("VMAdded") }).
			Return().Once()

		app := framework.NewApplication(manager, topo, daemons, hooks,
			framework.WithClock(clk),
			framework.WithLogger(logr.Discard()),
		)
		hooks.preLoop = app.Shutdown

		assert.Equal(t, 0, app.Run(ctx))
		assert.Equal(t, []string{"PreLoop", "PreRefreshVMs", "VMAdded", "PostRefreshVMs"}, rec.calls[:4])
	})
}
