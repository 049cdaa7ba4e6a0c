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

package types

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

var (
	ErrEmptyNodeID     = errors.New("node id cannot be empty")
	ErrDuplicateNodeID = errors.New("node id already exists")
	ErrParentNotFound  = errors.New("parent node not found")

	errAddDataCenter = errors.New("adding data center")
	errAddRack       = errors.New("adding rack")
	errAddHost       = errors.New("adding host")
)

// NodeKind is the level of a node in the physical topology.
type NodeKind string

const (
	DataCenterKind NodeKind = "DataCenter"
	RackKind       NodeKind = "Rack"
	HostKind       NodeKind = "Host"
)

// Node is one element of the physical topology.
//
// Nodes do not own each other: Parent and Children hold identifiers that are resolved through the
// Topology that contains the node.
type Node struct {
	ID       string
	Kind     NodeKind
	Parent   string
	Children []string
}

// Topology is the physical topology (data center -> rack -> host) stored as an arena of nodes
// addressed by identifier. The zero value is not usable, use NewTopology.
type Topology struct {
	dataCenterIDs []string
	dataCenters   map[string]*Node
	racks         map[string]*Node
	hosts         map[string]*Node
}

// NewTopology returns an empty topology.
func NewTopology() *Topology {
	return &Topology{
		dataCenters: make(map[string]*Node),
		racks:       make(map[string]*Node),
		hosts:       make(map[string]*Node),
	}
}

// AddDataCenter adds a data center at the root of the topology.
func (t *Topology) AddDataCenter(id string) error {
	if id == "" {
		return errors.Join(ErrEmptyNodeID, errAddDataCenter)
	}
	if _, ok := t.dataCenters[id]; ok {
		return errors.Join(fmt.Errorf("id=%s", id), ErrDuplicateNodeID, errAddDataCenter)
	}

	t.dataCenters[id] = &Node{ID: id, Kind: DataCenterKind}
	t.dataCenterIDs = append(t.dataCenterIDs, id)

	return nil
}

// AddRack adds a rack to the data center identified by dataCenterID.
func (t *Topology) AddRack(dataCenterID, id string) error {
	return add(t.dataCenters, t.racks, dataCenterID, id, RackKind, errAddRack)
}

// AddHost adds a host to the rack identified by rackID.
func (t *Topology) AddHost(rackID, id string) error {
	return add(t.racks, t.hosts, rackID, id, HostKind, errAddHost)
}

func add(parents, nodes map[string]*Node, parentID, id string, kind NodeKind, errCtx error) error {
	if id == "" {
		return errors.Join(ErrEmptyNodeID, errCtx)
	}
	if _, ok := nodes[id]; ok {
		return errors.Join(fmt.Errorf("id=%s", id), ErrDuplicateNodeID, errCtx)
	}
	parent, ok := parents[parentID]
	if !ok {
		return errors.Join(fmt.Errorf("id=%s parent=%s", id, parentID), ErrParentNotFound, errCtx)
	}

	nodes[id] = &Node{ID: id, Kind: kind, Parent: parentID}
	parent.Children = append(parent.Children, id)

	return nil
}

// DataCenter returns the data center identified by id.
func (t *Topology) DataCenter(id string) (Node, bool) {
	return lookup(t.dataCenters, id)
}

// Rack returns the rack identified by id.
func (t *Topology) Rack(id string) (Node, bool) {
	return lookup(t.racks, id)
}

// Host returns the host identified by id.
func (t *Topology) Host(id string) (Node, bool) {
	return lookup(t.hosts, id)
}

// DataCenters returns every data center in insertion order.
func (t *Topology) DataCenters() []Node {
	out := make([]Node, 0, len(t.dataCenterIDs))
	for _, id := range t.dataCenterIDs {
		out = append(out, copyNode(t.dataCenters[id]))
	}

	return out
}

// Racks returns the racks of a data center in insertion order.
func (t *Topology) Racks(dataCenterID string) []Node {
	return children(t.dataCenters, t.racks, dataCenterID)
}

// Hosts returns the hosts of a rack in insertion order.
func (t *Topology) Hosts(rackID string) []Node {
	return children(t.racks, t.hosts, rackID)
}

// AllHosts returns every host of the topology sorted by ID.
func (t *Topology) AllHosts() []Node {
	out := make([]Node, 0, len(t.hosts))
	for _, n := range t.hosts {
		out = append(out, copyNode(n))
	}
	slices.SortFunc(out, func(a, b Node) int { return cmp.Compare(a.ID, b.ID) })

	return out
}

// Len returns the total number of nodes.
func (t *Topology) Len() int {
	return len(t.dataCenters) + len(t.racks) + len(t.hosts)
}

func lookup(nodes map[string]*Node, id string) (Node, bool) {
	n, ok := nodes[id]
	if !ok {
		return Node{}, false
	}

	return copyNode(n), true
}

func children(parents, nodes map[string]*Node, parentID string) []Node {
	parent, ok := parents[parentID]
	if !ok {
		return nil
	}

	out := make([]Node, 0, len(parent.Children))
	for _, id := range parent.Children {
		out = append(out, copyNode(nodes[id]))
	}

	return out
}

func copyNode(n *Node) Node {
	out := *n
	out.Children = slices.Clone(n.Children)

	return out
}

// ------------------------------------------------- Spec ----------------------------------------------------------- //

// TopologySpec is the serializable representation of a Topology.
type TopologySpec struct {
	DataCenters []DataCenterSpec `json:"dataCenters"`
}

// DataCenterSpec describes a data center and its racks.
type DataCenterSpec struct {
	ID    string     `json:"id"`
	Racks []RackSpec `json:"racks,omitempty"`
}

// RackSpec describes a rack and its hosts.
type RackSpec struct {
	ID    string     `json:"id"`
	Hosts []HostSpec `json:"hosts,omitempty"`
}

// HostSpec describes a physical host.
type HostSpec struct {
	ID string `json:"id"`
}

// BuildTopology converts a TopologySpec into a Topology.
func BuildTopology(spec TopologySpec) (*Topology, error) {
	t := NewTopology()
	for _, dc := range spec.DataCenters {
		if err := t.AddDataCenter(dc.ID); err != nil {
			return nil, err
		}
		for _, rack := range dc.Racks {
			if err := t.AddRack(dc.ID, rack.ID); err != nil {
				return nil, err
			}
			for _, host := range rack.Hosts {
				if err := t.AddHost(rack.ID, host.ID); err != nil {
					return nil, err
				}
			}
		}
	}

	return t, nil
}

// Spec returns the serializable representation of t.
func (t *Topology) Spec() TopologySpec {
	spec := TopologySpec{DataCenters: make([]DataCenterSpec, 0, len(t.dataCenterIDs))}
	for _, dc := range t.DataCenters() {
		dcSpec := DataCenterSpec{ID: dc.ID}
		for _, rack := range t.Racks(dc.ID) {
			rackSpec := RackSpec{ID: rack.ID}
			for _, host := range t.Hosts(rack.ID) {
				rackSpec.Hosts = append(rackSpec.Hosts, HostSpec{ID: host.ID})
			}
			dcSpec.Racks = append(dcSpec.Racks, rackSpec)
		}
		spec.DataCenters = append(spec.DataCenters, dcSpec)
	}

	return spec
}
