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
	"errors"
	"fmt"
	"strings"

	"github.com/alexandremahdhaoui/warden/pkg/cmdrunner"
	"github.com/alexandremahdhaoui/warden/pkg/daemon"
	"github.com/alexandremahdhaoui/warden/pkg/types"
	"github.com/go-logr/logr"
	"k8s.io/utils/clock"
)

const (
	TypeAgent daemon.Type = iota + 1
)

const (
	DefaultLaunchCommand = "systemctl start warden-agent@{hostname}"
	DefaultSSHPort       = "22"

	hostnamePlaceholder = "{hostname}"
)

var (
	errLaunchAgent = errors.New("launching agent")
	errDeployAgent = errors.New("deploying agents")
)

// --------------------------------------------------- AGENT -------------------------------------------------------- //

// runnerFactory returns the Runner launching the agent of vm.
type runnerFactory func(vm *types.VM) (cmdrunner.Runner, error)

// staticRunner launches every agent with runner.
func staticRunner(runner cmdrunner.Runner) runnerFactory {
	return func(*types.VM) (cmdrunner.Runner, error) {
		return runner, nil
	}
}

// sshRunner launches the agent of a VM over SSH, connecting to the hostname of the VM.
func sshRunner(user, privateKeyPath, port string) runnerFactory {
	if port == "" {
		port = DefaultSSHPort
	}

	return func(vm *types.VM) (cmdrunner.Runner, error) {
		return cmdrunner.NewSSH(vm.Hostname, user, privateKeyPath, port, cmdrunner.NewExecContext(nil))
	}
}

// agent is the daemon deployed on every powered-on VM.
type agent struct {
	*daemon.Base

	newRunner runnerFactory
	command   []string
}

var _ daemon.Daemon = (*agent)(nil)

func (a *agent) Type() daemon.Type {
	return TypeAgent
}

func (a *agent) Launch(ctx context.Context) error {
	runner, err := a.newRunner(a.HostVM())
	if err != nil {
		return errors.Join(fmt.Errorf("hostname=%s", a.Hostname()), err, errLaunchAgent)
	}

	if _, stderr, err := runner.Run(ctx, a.command...); err != nil {
		return errors.Join(fmt.Errorf("hostname=%s stderr=%q", a.Hostname(), stderr), err, errLaunchAgent)
	}

	a.MarkLaunched(true)

	return nil
}

// launchCommand returns the argv of the launch command for hostname.
func launchCommand(template, hostname string) []string {
	fields := strings.Fields(template)
	for i, f := range fields {
		fields[i] = strings.ReplaceAll(f, hostnamePlaceholder, hostname)
	}

	return fields
}

// --------------------------------------------------- MANAGER ------------------------------------------------------ //

// agentManager keeps one agent per VM and launches the agents of powered-on VMs.
type agentManager struct {
	daemons   *daemon.Collection
	newRunner runnerFactory
	clock     clock.PassiveClock
	template  string
	log       logr.Logger
}

var _ daemon.Manager = (*agentManager)(nil)

func newAgentManager(
	daemons *daemon.Collection,
	newRunner runnerFactory,
	clk clock.PassiveClock,
	template string,
	log logr.Logger,
) *agentManager {
	if template == "" {
		template = DefaultLaunchCommand
	}

	return &agentManager{
		daemons:   daemons,
		newRunner: newRunner,
		clock:     clk,
		template:  template,
		log:       log,
	}
}

func (m *agentManager) VMAdded(vm *types.VM) {
	m.daemons.Add(&agent{
		Base:      daemon.NewBase(vm, m.clock),
		newRunner: m.newRunner,
		command:   launchCommand(m.template, vm.Hostname),
	})

	m.log.V(1).Info("Discovered agent", "hostname", vm.Hostname, "id", vm.ID)
}

func (m *agentManager) VMChanged(vm *types.VM, event types.VMEvent) {
	if event == types.VMEventPoweredOn {
		return
	}

	// agents of a VM that is not running must be launched again once it is back.
	for _, d := range m.daemons.Filter(hostedOn(vm.ID)) {
		if a, ok := d.(*agent); ok {
			a.MarkLaunched(false)
		}
	}
}

func (m *agentManager) VMRemoved(vm types.VM) {
	removed := m.daemons.RemoveForVM(vm.ID)
	m.log.V(1).Info("Forgot agents", "hostname", vm.Hostname, "id", vm.ID, "count", len(removed))
}

// RefreshDaemons marks the launched agents of VMs that are not powered on as not launched.
func (m *agentManager) RefreshDaemons(_ context.Context) error {
	for _, d := range m.daemons.Launched(TypeAgent) {
		if d.HostVM().Status == types.VMStatusOn {
			continue
		}

		if a, ok := d.(*agent); ok {
			a.MarkLaunched(false)
		}
	}

	return nil
}

// DeployDaemons launches every agent of a powered-on VM that is not launched yet.
func (m *agentManager) DeployDaemons(ctx context.Context) error {
	var errs []error

	for _, d := range m.daemons.Unlaunched(TypeAgent) {
		if d.HostVM().Status != types.VMStatusOn {
			continue
		}

		if err := d.Launch(ctx); err != nil {
			errs = append(errs, err)
			continue
		}

		m.log.Info("Launched agent", "hostname", d.Hostname())
	}

	if len(errs) > 0 {
		return errors.Join(append(errs, errDeployAgent)...)
	}

	return nil
}

func hostedOn(vmID string) func(daemon.Daemon) bool {
	return func(d daemon.Daemon) bool {
		return d.HostVM().ID == vmID
	}
}
