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

// Package topology keeps the latest known physical topology of the fleet and answers host, rack and
// data center lookups against it.
package topology

import (
	"context"
	"errors"
	"sync"

	"github.com/alexandremahdhaoui/warden/pkg/types"
	"github.com/go-logr/logr"
	ctrl "sigs.k8s.io/controller-runtime"
)

// IDUnknown is returned by lookups when a host is not part of the topology.
const IDUnknown = ""

var errNilTopology = errors.New("source returned a nil topology")

// Source is the remote service the topology is fetched from.
type Source interface {
	GetTopology(ctx context.Context) (*types.Topology, error)
}

// Manager holds the latest topology successfully fetched from a Source.
type Manager struct {
	source Source
	log    logr.Logger

	mu   sync.RWMutex
	root *types.Topology
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger used by the Manager.
func WithLogger(log logr.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// NewManager returns a Manager holding an empty topology.
func NewManager(source Source, opts ...Option) *Manager {
	m := &Manager{
		source: source,
		log:    ctrl.Log.WithName("topology"),
		root:   types.NewTopology(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Refresh fetches the topology and replaces the current one. On failure the previous topology is
// kept and Refresh returns false.
func (m *Manager) Refresh(ctx context.Context) bool {
	root, err := m.source.GetTopology(ctx)
	if err == nil && root == nil {
		err = errNilTopology
	}

	if err != nil {
		m.log.Error(err, "Could not refresh topology")
		return false
	}

	m.mu.Lock()
	m.root = root
	m.mu.Unlock()

	m.log.V(1).Info("Refreshed topology",
		"dataCenters", len(root.DataCenters()),
		"hosts", len(root.AllHosts()))

	return true
}

// Root returns the current topology. It must be treated as read-only.
func (m *Manager) Root() *types.Topology {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.root
}

// HostByID returns the host identified by id.
func (m *Manager) HostByID(id string) (types.Node, bool) {
	return m.Root().Host(id)
}

// RackByID returns the rack identified by id.
func (m *Manager) RackByID(id string) (types.Node, bool) {
	return m.Root().Rack(id)
}

// DataCenterByID returns the data center identified by id.
func (m *Manager) DataCenterByID(id string) (types.Node, bool) {
	return m.Root().DataCenter(id)
}

// RackIDForHost returns the identifier of the rack holding hostID, or IDUnknown.
func (m *Manager) RackIDForHost(hostID string) string {
	host, ok := m.HostByID(hostID)
	if !ok {
		return IDUnknown
	}

	return host.Parent
}

// DataCenterIDForHost returns the identifier of the data center holding hostID, or IDUnknown.
func (m *Manager) DataCenterIDForHost(hostID string) string {
	root := m.Root()

	host, ok := root.Host(hostID)
	if !ok {
		return IDUnknown
	}

	rack, ok := root.Rack(host.Parent)
	if !ok {
		return IDUnknown
	}

	return rack.Parent
}
