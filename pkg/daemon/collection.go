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

package daemon

import (
	"slices"
	"sync"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Collection stores daemons by Type. Daemons of a type are kept in insertion order and types are
// iterated in ascending order.
//
// Daemons are compared by identity and must therefore be comparable, which pointers always are.
type Collection struct {
	mu      sync.RWMutex
	daemons map[Type][]Daemon
}

// NewCollection returns an empty Collection.
func NewCollection() *Collection {
	return &Collection{daemons: make(map[Type][]Daemon)}
}

// Add adds d to the collection. It returns false if d already belongs to it.
func (c *Collection) Add(d Daemon) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := d.Type()
	if slices.Contains(c.daemons[t], d) {
		return false
	}

	c.daemons[t] = append(c.daemons[t], d)

	return true
}

// All returns every daemon.
func (c *Collection) All() []Daemon {
	return c.Filter(func(Daemon) bool { return true })
}

// ForType returns every daemon of type t.
func (c *Collection) ForType(t Type) []Daemon {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.daemons[t])
}

// Launched returns the daemons of type t that were launched.
func (c *Collection) Launched(t Type) []Daemon {
	return filter(c.ForType(t), Daemon.Launched)
}

// Unlaunched returns the daemons of type t that were not launched yet.
func (c *Collection) Unlaunched(t Type) []Daemon {
	return filter(c.ForType(t), func(d Daemon) bool { return !d.Launched() })
}

// Filter returns every daemon for which include returns true.
func (c *Collection) Filter(include func(Daemon) bool) []Daemon {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Daemon, 0)
	for _, t := range sets.List(sets.KeySet(c.daemons)) {
		out = append(out, filter(c.daemons[t], include)...)
	}

	return out
}

// RemoveForVM removes and returns every daemon hosted on the VM identified by vmID.
func (c *Collection) RemoveForVM(vmID string) []Daemon {
	c.mu.Lock()
	defer c.mu.Unlock()

	hosted := func(d Daemon) bool { return d.HostVM().ID == vmID }

	removed := make([]Daemon, 0)
	for _, t := range sets.List(sets.KeySet(c.daemons)) {
		daemons := c.daemons[t]
		removed = append(removed, filter(daemons, hosted)...)

		kept := slices.DeleteFunc(daemons, hosted)
		if len(kept) == 0 {
			delete(c.daemons, t)
			continue
		}
		c.daemons[t] = kept
	}

	return removed
}

// Len returns the number of daemons.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, daemons := range c.daemons {
		n += len(daemons)
	}

	return n
}

func filter(daemons []Daemon, include func(Daemon) bool) []Daemon {
	out := make([]Daemon, 0, len(daemons))
	for _, d := range daemons {
		if include(d) {
			out = append(out, d)
		}
	}

	return out
}
