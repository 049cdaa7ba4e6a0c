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

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexandremahdhaoui/warden/internal/util/mocks/mockcmdrunner"
	"github.com/alexandremahdhaoui/warden/pkg/cmdrunner"
	"github.com/alexandremahdhaoui/warden/pkg/config"
	"github.com/alexandremahdhaoui/warden/pkg/daemon"
	"github.com/alexandremahdhaoui/warden/pkg/framework"
	"github.com/alexandremahdhaoui/warden/pkg/types"
	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

func TestLaunchCommand(t *testing.T) {
	assert.Equal(t,
		[]string{"systemctl", "start", "warden-agent@alpha"},
		launchCommand(DefaultLaunchCommand, "alpha"))
	assert.Equal(t,
		[]string{"agent", "--host", "alpha", "--name=alpha"},
		launchCommand("agent  --host {hostname} --name={hostname}", "alpha"))
}

func TestAgentManager(t *testing.T) {
	var (
		ctx     context.Context
		runner  *mockcmdrunner.MockRunner
		clk     *clocktesting.FakeClock
		daemons *daemon.Collection
		manager *agentManager
	)

	setup := func(t *testing.T) {
		t.Helper()

		ctx = context.Background()
		runner = mockcmdrunner.NewMockRunner(t)
		clk = clocktesting.NewFakeClock(time.Unix(0, 0))
		daemons = daemon.NewCollection()
		manager = newAgentManager(daemons, staticRunner(runner), clk, "", logr.Discard())
	}

	expectLaunch := func(hostname string, err error) {
		runner.EXPECT().Run(ctx, "systemctl", "start", "warden-agent@"+hostname).Return("", "", err).Once()
	}

	t.Run("DeploysAgentsOfPoweredOnVMs", func(t *testing.T) {
		setup(t)

		on := &types.VM{ID: "a", Hostname: "alpha", Status: types.VMStatusOn}
		off := &types.VM{ID: "b", Hostname: "beta", Status: types.VMStatusOff}
		manager.VMAdded(on)
		manager.VMAdded(off)
		require.Equal(t, 2, daemons.Len())

		expectLaunch("alpha", nil)
		require.NoError(t, manager.DeployDaemons(ctx))

		launched := daemons.Launched(TypeAgent)
		require.Len(t, launched, 1)
		assert.Equal(t, "alpha", launched[0].Hostname())

		clk.Step(time.Minute)
		assert.Equal(t, time.Minute, launched[0].Age())

		// launched agents are not launched again.
		require.NoError(t, manager.DeployDaemons(ctx))
	})

	t.Run("LaunchFailure", func(t *testing.T) {
		setup(t)

		manager.VMAdded(&types.VM{ID: "a", Hostname: "alpha", Status: types.VMStatusOn})
		manager.VMAdded(&types.VM{ID: "b", Hostname: "beta", Status: types.VMStatusOn})

		runner.EXPECT().Run(ctx, "systemctl", "start", "warden-agent@alpha").Return("", "no such unit", assert.AnError).Once()
		expectLaunch("beta", nil)

		err := manager.DeployDaemons(ctx)
		require.ErrorIs(t, err, errDeployAgent)
		assert.ErrorIs(t, err, errLaunchAgent)
		assert.ErrorIs(t, err, assert.AnError)

		assert.Len(t, daemons.Launched(TypeAgent), 1)
		assert.Len(t, daemons.Unlaunched(TypeAgent), 1)
	})

	t.Run("PowerCycle", func(t *testing.T) {
		setup(t)

		vm := &types.VM{ID: "a", Hostname: "alpha", Status: types.VMStatusOn}
		manager.VMAdded(vm)

		expectLaunch("alpha", nil)
		require.NoError(t, manager.DeployDaemons(ctx))

		vm.Status = types.VMStatusOff
		manager.VMChanged(vm, types.VMEventPoweredOff)
		assert.Empty(t, daemons.Launched(TypeAgent))
		require.NoError(t, manager.DeployDaemons(ctx))

		vm.Status = types.VMStatusOn
		manager.VMChanged(vm, types.VMEventPoweredOn)

		expectLaunch("alpha", nil)
		require.NoError(t, manager.DeployDaemons(ctx))
		assert.Len(t, daemons.Launched(TypeAgent), 1)
	})

	t.Run("RefreshUnlaunchesAgentsOfStoppedVMs", func(t *testing.T) {
		setup(t)

		vm := &types.VM{ID: "a", Hostname: "alpha", Status: types.VMStatusOn}
		manager.VMAdded(vm)

		expectLaunch("alpha", nil)
		require.NoError(t, manager.DeployDaemons(ctx))

		vm.Status = types.VMStatusUnknown
		require.NoError(t, manager.RefreshDaemons(ctx))
		assert.Empty(t, daemons.Launched(TypeAgent))
	})

	t.Run("VMRemoved", func(t *testing.T) {
		setup(t)

		vm := &types.VM{ID: "a", Hostname: "alpha", Status: types.VMStatusOn}
		manager.VMAdded(vm)
		manager.VMAdded(&types.VM{ID: "b", Hostname: "beta", Status: types.VMStatusOff})

		manager.VMRemoved(*vm)

		require.Equal(t, 1, daemons.Len())
		assert.Equal(t, "beta", daemons.All()[0].Hostname())
		runner.AssertNotCalled(t, "Run", mock.Anything)
	})
}

func TestSSHRunner(t *testing.T) {
	vm := &types.VM{ID: "a", Hostname: "alpha", Status: types.VMStatusOn}

	t.Run("ConnectsToTheHostnameOfTheVM", func(t *testing.T) {
		keyPath := filepath.Join(t.TempDir(), "id_ed25519")
		require.NoError(t, os.WriteFile(keyPath, []byte("key"), 0o600))

		runner, err := sshRunner("ops", keyPath, "")(vm)
		require.NoError(t, err)

		ssh, ok := runner.(*cmdrunner.SSH)
		require.True(t, ok)
		assert.Equal(t, "alpha", ssh.Host)
		assert.Equal(t, "ops", ssh.User)
		assert.Equal(t, "alpha:22", ssh.Addr())
		assert.Equal(t, []byte("key"), ssh.PrivateKey)
	})

	t.Run("UnreadableKeyFailsTheLaunch", func(t *testing.T) {
		daemons := daemon.NewCollection()
		clk := clocktesting.NewFakeClock(time.Unix(0, 0))
		keyPath := filepath.Join(t.TempDir(), "missing")

		manager := newAgentManager(daemons, sshRunner("ops", keyPath, "2222"), clk, "", logr.Discard())
		manager.VMAdded(vm)

		err := manager.DeployDaemons(context.Background())
		require.ErrorIs(t, err, errDeployAgent)
		assert.ErrorIs(t, err, errLaunchAgent)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Len(t, daemons.Unlaunched(TypeAgent), 1)
	})
}

func TestAgentHooksDaemonManager(t *testing.T) {
	services := func() *framework.Services {
		return &framework.Services{
			Config:  &config.Config{},
			Log:     logr.Discard(),
			Clock:   clocktesting.NewFakeClock(time.Unix(0, 0)),
			Daemons: daemon.NewCollection(),
		}
	}

	t.Run("LocalRunnerByDefault", func(t *testing.T) {
		runner := mockcmdrunner.NewMockRunner(t)
		s := services()
		s.Runner = runner

		manager, err := (&agentHooks{}).DaemonManager(s)
		require.NoError(t, err)

		manager.VMAdded(&types.VM{ID: "a", Hostname: "alpha", Status: types.VMStatusOn})
		runner.EXPECT().Run(mock.Anything, "systemctl", "start", "warden-agent@alpha").Return("", "", nil).Once()
		require.NoError(t, manager.DeployDaemons(context.Background()))
	})

	t.Run("SSHUserWithoutKey", func(t *testing.T) {
		_, err := (&agentHooks{sshUser: "ops"}).DaemonManager(services())
		assert.ErrorIs(t, err, errMissingSSHKey)
	})
}
