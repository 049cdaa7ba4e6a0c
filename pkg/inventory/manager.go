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

// Package inventory mirrors the VMs of a remote inventory and notifies registered EventHandlers of
// every VM added, changed or removed between two refreshes.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/alexandremahdhaoui/warden/pkg/types"
	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/sets"
	ctrl "sigs.k8s.io/controller-runtime"
)

var errEventHandlerPanic = errors.New("event handler panicked")

// Manager maintains the local VM map as an eventually-consistent mirror of a Source.
//
// The map is only mutated by Refresh. Failures are tolerated per VM: a VM that cannot be fetched is
// skipped for the current refresh and picked up again by the next one.
type Manager struct {
	source Source
	log    logr.Logger

	// refreshMu serializes calls to Refresh.
	refreshMu sync.Mutex

	mu            sync.RWMutex
	vms           map[string]*types.VM
	eventHandlers []EventHandler
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used by the Manager.
func WithLogger(log logr.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// NewManager returns a Manager with an empty VM map mirroring source.
func NewManager(source Source, opts ...Option) *Manager {
	m := &Manager{
		source: source,
		log:    ctrl.Log.WithName("inventory"),
		vms:    make(map[string]*types.VM),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// RegisterEventHandler appends h to the list of notified handlers. Registering the same handler
// twice notifies it twice.
func (m *Manager) RegisterEventHandler(h EventHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.eventHandlers = append(m.eventHandlers, h)
}

// List returns every known VM sorted by ID.
func (m *Manager) List() []*types.VM {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*types.VM, 0, len(m.vms))
	for _, id := range sets.List(sets.KeySet(m.vms)) {
		out = append(out, m.vms[id])
	}

	return out
}

// Get returns the VM identified by id.
func (m *Manager) Get(id string) (*types.VM, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	vm, ok := m.vms[id]

	return vm, ok
}

// Has returns true if a VM identified by id is known.
func (m *Manager) Has(id string) bool {
	_, ok := m.Get(id)
	return ok
}

// Len returns the number of known VMs.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.vms)
}

// Refresh reconciles the local VM map with the Source and notifies every EventHandler of the detected
// changes: first the added VMs, then the changed ones, then the removed ones.
//
// Refresh returns false if the VM list could not be fetched, in which case the local map is left
// untouched, or if any VM could not be fetched. In the latter case every other change is still
// committed.
func (m *Manager) Refresh(ctx context.Context) bool {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	ids, err := m.source.ListVMIDs(ctx)
	if err != nil {
		m.log.Error(err, "Could not refresh VM list")
		return false
	}

	m.mu.RLock()
	known := sets.KeySet(m.vms)
	m.mu.RUnlock()

	remaining, addOK := m.addNewVMs(ctx, ids)
	updateOK := m.updateVMs(ctx, remaining)
	m.removeVMs(known, sets.New(ids...))

	return addOK && updateOK
}

// addNewVMs fetches and adds every VM of ids that is not known yet. It returns the IDs that were
// already known, in fetch order and without duplicates.
func (m *Manager) addNewVMs(ctx context.Context, ids []string) ([]string, bool) {
	success := true
	seen := sets.New[string]()
	remaining := make([]string, 0, len(ids))

	for _, id := range ids {
		if seen.Has(id) {
			continue
		}
		seen.Insert(id)

		if m.Has(id) {
			remaining = append(remaining, id)
			continue
		}

		vm, err := m.source.GetVM(ctx, id)
		if err != nil {
			m.log.Error(err, "Missing information on a new VM", "id", id)
			success = false
			continue
		}
		// the record is keyed by the listed identifier.
		vm.ID = id

		m.log.Info("Detected new VM", "hostname", vm.Hostname, "id", vm.ID)
		m.log.V(1).Info("New VM details",
			"id", vm.ID,
			"host", vm.PhysicalHostID,
			"store", vm.PhysicalStoreID,
			"status", vm.Status)

		m.addVM(&vm)
	}

	return remaining, success
}

// updateVMs fetches every VM of ids and records status changes.
func (m *Manager) updateVMs(ctx context.Context, ids []string) bool {
	success := true

	for _, id := range ids {
		vm, ok := m.Get(id)
		if !ok {
			continue
		}

		updated, err := m.source.GetVM(ctx, id)
		if err != nil {
			// the last known state is kept until the VM can be fetched again.
			m.log.Error(err, "Missing information for a VM update", "id", id)
			success = false
			continue
		}

		m.updateVM(vm, updated.Status)
	}

	return success
}

// removeVMs removes every VM of known that is not part of fetched.
func (m *Manager) removeVMs(known, fetched sets.Set[string]) {
	for _, id := range sets.List(known.Difference(fetched)) {
		m.removeVM(id)
	}
}

func (m *Manager) addVM(vm *types.VM) {
	m.mu.Lock()
	m.vms[vm.ID] = vm
	m.mu.Unlock()

	m.notify("added", vm.ID, func(h EventHandler) { h.VMAdded(vm) })
}

func (m *Manager) updateVM(vm *types.VM, status types.VMStatus) {
	m.mu.Lock()
	previous := vm.Status
	if previous == status {
		m.mu.Unlock()
		return
	}
	vm.Status = status
	m.mu.Unlock()

	event := types.EventForStatus(status)

	m.log.Info("Detected change in VM", "hostname", vm.Hostname, "id", vm.ID, "event", event)
	m.log.V(1).Info("VM status changed", "id", vm.ID, "from", previous, "to", status)

	m.notify("changed", vm.ID, func(h EventHandler) { h.VMChanged(vm, event) })
}

func (m *Manager) removeVM(id string) {
	m.mu.Lock()
	vm, ok := m.vms[id]
	if !ok {
		m.mu.Unlock()
		return
	}
	snapshot := vm.Snapshot()
	delete(m.vms, id)
	m.mu.Unlock()

	m.log.Info("Detected removed VM", "hostname", snapshot.Hostname, "id", snapshot.ID)

	m.notify("removed", id, func(h EventHandler) { h.VMRemoved(snapshot) })
}

// notify calls fn for every registered handler. A panicking handler does not prevent the remaining
// handlers from being notified.
func (m *Manager) notify(event, id string, fn func(h EventHandler)) {
	m.mu.RLock()
	handlers := slices.Clone(m.eventHandlers)
	m.mu.RUnlock()

	for i, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					m.log.Error(errors.Join(fmt.Errorf("%v", r), errEventHandlerPanic),
						"Failed to notify event handler",
						"event", event,
						"id", id,
						"handler", i)
				}
			}()

			fn(h)
		}()
	}
}
