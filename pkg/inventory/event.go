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

package inventory

import (
	"context"

	"github.com/alexandremahdhaoui/warden/pkg/types"
)

// Source is the remote inventory the Manager mirrors.
type Source interface {
	// ListVMIDs returns the identifiers of every VM currently known to the remote inventory.
	ListVMIDs(ctx context.Context) ([]string, error)
	// GetVM returns the current record of the VM identified by id.
	GetVM(ctx context.Context, id string) (types.VM, error)
}

// EventHandler is notified of every change detected by the Manager.
//
// Handlers are called synchronously from Refresh, in registration order. The VM pointers passed to
// VMAdded and VMChanged are owned by the Manager and must not be mutated.
type EventHandler interface {
	// VMAdded is called when a VM is discovered for the first time.
	VMAdded(vm *types.VM)
	// VMChanged is called when the status of a known VM changed.
	VMChanged(vm *types.VM, event types.VMEvent)
	// VMRemoved is called with the last known state of a VM that left the inventory.
	VMRemoved(vm types.VM)
}

// EventHandlerFuncs adapts plain functions to an EventHandler. Nil functions are ignored.
type EventHandlerFuncs struct {
	AddFunc    func(vm *types.VM)
	ChangeFunc func(vm *types.VM, event types.VMEvent)
	RemoveFunc func(vm types.VM)
}

var _ EventHandler = EventHandlerFuncs{}

// VMAdded implements EventHandler.
func (f EventHandlerFuncs) VMAdded(vm *types.VM) {
	if f.AddFunc != nil {
		f.AddFunc(vm)
	}
}

// VMChanged implements EventHandler.
func (f EventHandlerFuncs) VMChanged(vm *types.VM, event types.VMEvent) {
	if f.ChangeFunc != nil {
		f.ChangeFunc(vm, event)
	}
}

// VMRemoved implements EventHandler.
func (f EventHandlerFuncs) VMRemoved(vm types.VM) {
	if f.RemoveFunc != nil {
		f.RemoveFunc(vm)
	}
}
