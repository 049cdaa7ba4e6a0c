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

// VMEvent describes the change detected on an existing VM.
type VMEvent string

const (
	VMEventPoweredOn  VMEvent = "POWERED_ON"
	VMEventPoweredOff VMEvent = "POWERED_OFF"
	VMEventUnknown    VMEvent = "UNKNOWN"
)

// EventForStatus returns the event emitted when a VM transitions to status.
func EventForStatus(status VMStatus) VMEvent {
	switch status {
	case VMStatusOn:
		return VMEventPoweredOn
	case VMStatusOff:
		return VMEventPoweredOff
	default:
		return VMEventUnknown
	}
}
