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

package daemon_test

import (
	"context"
	"testing"
	"time"

	"github.com/alexandremahdhaoui/warden/pkg/daemon"
	"github.com/alexandremahdhaoui/warden/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

const (
	typeAgent daemon.Type = iota + 1
	typeProxy
)

type fakeDaemon struct {
	*daemon.Base

	typ daemon.Type
	err error
}

func (d *fakeDaemon) Type() daemon.Type {
	return d.typ
}

func (d *fakeDaemon) Launch(context.Context) error {
	if d.err != nil {
		return d.err
	}

	d.MarkLaunched(true)

	return nil
}

func newDaemon(vm *types.VM, typ daemon.Type) *fakeDaemon {
	return &fakeDaemon{Base: daemon.NewBase(vm, nil), typ: typ}
}

func TestBase(t *testing.T) {
	clk := clocktesting.NewFakePassiveClock(time.Unix(1_700_000_000, 0))
	vm := &types.VM{ID: "vm-1", Hostname: "alpha"}

	d := &fakeDaemon{Base: daemon.NewBase(vm, clk), typ: typeAgent}

	assert.Same(t, vm, d.HostVM())
	assert.Equal(t, "alpha", d.Hostname())
	assert.False(t, d.Launched())
	assert.Zero(t, d.Age())

	clk.SetTime(clk.Now().Add(90 * time.Second))
	assert.Equal(t, 90*time.Second, d.Age())

	require.NoError(t, d.Launch(context.Background()))
	assert.True(t, d.Launched())

	d.MarkLaunched(false)
	assert.False(t, d.Launched())

	failing := &fakeDaemon{Base: daemon.NewBase(vm, clk), typ: typeAgent, err: assert.AnError}
	assert.ErrorIs(t, failing.Launch(context.Background()), assert.AnError)
	assert.False(t, failing.Launched())
}

func TestCollection(t *testing.T) {
	vm1 := &types.VM{ID: "vm-1", Hostname: "alpha"}
	vm2 := &types.VM{ID: "vm-2", Hostname: "beta"}

	var (
		collection *daemon.Collection

		proxy1 *fakeDaemon
		agent1 *fakeDaemon
		agent2 *fakeDaemon
	)

	setup := func(t *testing.T) {
		t.Helper()

		collection = daemon.NewCollection()
		proxy1 = newDaemon(vm1, typeProxy)
		agent1 = newDaemon(vm1, typeAgent)
		agent2 = newDaemon(vm2, typeAgent)

		require.True(t, collection.Add(proxy1))
		require.True(t, collection.Add(agent1))
		require.True(t, collection.Add(agent2))
	}

	t.Run("Add", func(t *testing.T) {
		setup(t)

		assert.False(t, collection.Add(agent1))
		assert.Equal(t, 3, collection.Len())
	})

	t.Run("All", func(t *testing.T) {
		setup(t)

		assert.Equal(t, []daemon.Daemon{agent1, agent2, proxy1}, collection.All())
		assert.Empty(t, daemon.NewCollection().All())
	})

	t.Run("ForType", func(t *testing.T) {
		setup(t)

		assert.Equal(t, []daemon.Daemon{agent1, agent2}, collection.ForType(typeAgent))
		assert.Equal(t, []daemon.Daemon{proxy1}, collection.ForType(typeProxy))
		assert.Empty(t, collection.ForType(42))
	})

	t.Run("LaunchedAndUnlaunched", func(t *testing.T) {
		setup(t)

		agent2.MarkLaunched(true)

		assert.Equal(t, []daemon.Daemon{agent2}, collection.Launched(typeAgent))
		assert.Equal(t, []daemon.Daemon{agent1}, collection.Unlaunched(typeAgent))
		assert.Empty(t, collection.Launched(typeProxy))
	})

	t.Run("Filter", func(t *testing.T) {
		setup(t)

		onAlpha := collection.Filter(func(d daemon.Daemon) bool { return d.Hostname() == "alpha" })
		assert.Equal(t, []daemon.Daemon{agent1, proxy1}, onAlpha)
	})

	t.Run("RemoveForVM", func(t *testing.T) {
		setup(t)

		removed := collection.RemoveForVM("vm-1")
		assert.Equal(t, []daemon.Daemon{agent1, proxy1}, removed)
		assert.Equal(t, []daemon.Daemon{agent2}, collection.All())
		assert.Empty(t, collection.ForType(typeProxy))
		assert.Empty(t, collection.RemoveForVM("vm-1"))
		assert.Equal(t, 1, collection.Len())
	})
}
