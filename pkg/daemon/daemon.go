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

// Package daemon defines the daemons an application deploys on the VMs of the inventory and the
// contract of the component managing them.
package daemon

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/alexandremahdhaoui/warden/pkg/inventory"
	"github.com/alexandremahdhaoui/warden/pkg/types"
	"k8s.io/utils/clock"
)

// Manager reacts to inventory events and drives the daemons of an application.
//
// RefreshDaemons and DeployDaemons are called once per control loop iteration, in that order, after
// the inventory and topology refreshes.
type Manager interface {
	inventory.EventHandler

	// RefreshDaemons updates the daemons' view of their state.
	RefreshDaemons(ctx context.Context) error
	// DeployDaemons launches the daemons that must run.
	DeployDaemons(ctx context.Context) error
}

// Type identifies a kind of daemon. Values are defined by applications.
type Type uint

// Daemon is a piece of software managed by the application on a VM.
type Daemon interface {
	// HostVM returns the VM hosting the daemon.
	HostVM() *types.VM
	// Hostname returns the hostname of the VM hosting the daemon.
	Hostname() string
	// Type returns the kind of the daemon.
	Type() Type
	// Launch starts the daemon.
	Launch(ctx context.Context) error
	// Launched returns true once the daemon was launched successfully.
	Launched() bool
	// Age returns the time elapsed since the daemon was discovered.
	Age() time.Duration
}

// Base implements the common parts of a Daemon. Applications embed it and provide Type and Launch.
type Base struct {
	vm         *types.VM
	clock      clock.PassiveClock
	discovered time.Time
	launched   atomic.Bool
}

// NewBase returns a Base hosted on vm, discovered now.
func NewBase(vm *types.VM, clk clock.PassiveClock) *Base {
	if clk == nil {
		clk = clock.RealClock{}
	}

	return &Base{
		vm:         vm,
		clock:      clk,
		discovered: clk.Now(),
	}
}

func (b *Base) HostVM() *types.VM {
	return b.vm
}

func (b *Base) Hostname() string {
	return b.vm.Hostname
}

func (b *Base) Launched() bool {
	return b.launched.Load()
}

// MarkLaunched records whether the daemon is running.
func (b *Base) MarkLaunched(launched bool) {
	b.launched.Store(launched)
}

func (b *Base) Age() time.Duration {
	return b.clock.Since(b.discovered)
}
