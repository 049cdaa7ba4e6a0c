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

import "strings"

// VMStatus is the power/connectivity status of a virtual machine as reported by the inventory.
type VMStatus string

const (
	VMStatusOn      VMStatus = "ON"
	VMStatusOff     VMStatus = "OFF"
	VMStatusUnknown VMStatus = "UNKNOWN"
)

// ParseVMStatus returns the VMStatus matching s. Unrecognised values map to VMStatusUnknown.
func ParseVMStatus(s string) VMStatus {
	switch VMStatus(strings.ToUpper(strings.TrimSpace(s))) {
	case VMStatusOn:
		return VMStatusOn
	case VMStatusOff:
		return VMStatusOff
	default:
		return VMStatusUnknown
	}
}

// VM is the local mirror of one remote virtual machine.
//
// ID is assigned by the remote inventory and never changes for the lifetime of the record. Only the
// inventory manager mutates a VM it owns; event handlers must treat the pointers they receive as
// read-only.
type VM struct {
	// ID uniquely identifies the VM.
	ID string `json:"id"`
	// Hostname is informational and is not kept in sync after the VM was first discovered.
	Hostname string `json:"hostname"`
	// PhysicalHostID is the identifier of the physical host running the VM.
	PhysicalHostID string `json:"physicalHostID"`
	// PhysicalStoreID is the identifier of the physical store backing the VM disks.
	PhysicalStoreID string `json:"physicalStoreID"`
	// Status is the last known power status.
	Status VMStatus `json:"status"`
}

// Snapshot returns a copy of the VM.
func (vm *VM) Snapshot() VM {
	return *vm
}
