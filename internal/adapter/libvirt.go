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

package adapter

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexandremahdhaoui/warden/pkg/inventory"
	"github.com/alexandremahdhaoui/warden/pkg/types"
	"libvirt.org/go/libvirt"
	"libvirt.org/go/libvirtxml"
)

var (
	ErrVMNotFound = errors.New("vm not found")

	errLibvirtConnect = errors.New("connecting to libvirt")
	errLibvirtList    = errors.New("listing libvirt domains")
	errLibvirtGet     = errors.New("getting libvirt domain")
)

var _ inventory.Source = (*LibvirtInventory)(nil)

// LibvirtInventory exposes the domains of a libvirt hypervisor as an inventory. VMs are identified by
// the UUID of their domain and are all hosted on the hypervisor.
type LibvirtInventory struct {
	conn     *libvirt.Connect
	hostname string
}

// NewLibvirtInventory connects to the hypervisor at uri, e.g. "qemu:///system".
func NewLibvirtInventory(uri string) (*LibvirtInventory, error) {
	conn, err := libvirt.NewConnect(uri)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("uri=%s", uri), err, errLibvirtConnect)
	}

	hostname, err := conn.GetHostname()
	if err != nil {
		_, _ = conn.Close()
		return nil, errors.Join(err, errLibvirtConnect)
	}

	return &LibvirtInventory{conn: conn, hostname: hostname}, nil
}

// Close closes the connection to the hypervisor.
func (l *LibvirtInventory) Close() error {
	_, err := l.conn.Close()
	return err
}

// ListVMIDs implements inventory.Source. The libvirt bindings do not support cancellation.
func (l *LibvirtInventory) ListVMIDs(_ context.Context) ([]string, error) {
	domains, err := l.conn.ListAllDomains(0)
	if err != nil {
		return nil, errors.Join(err, errLibvirtList)
	}

	handles := make([]domainHandle, 0, len(domains))
	for i := range domains {
		handles = append(handles, &domains[i])
	}

	return domainUUIDs(handles)
}

// domainHandle is the part of a libvirt domain ListVMIDs relies on.
type domainHandle interface {
	GetUUIDString() (string, error)
	Free() error
}

// domainUUIDs returns the UUIDs of domains. Every handle is freed, including on error.
func domainUUIDs(domains []domainHandle) ([]string, error) {
	defer func() {
		for _, d := range domains {
			_ = d.Free()
		}
	}()

	ids := make([]string, 0, len(domains))
	for _, d := range domains {
		id, err := d.GetUUIDString()
		if err != nil {
			return nil, errors.Join(err, errLibvirtList)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

// GetVM implements inventory.Source.
func (l *LibvirtInventory) GetVM(_ context.Context, id string) (types.VM, error) {
	domain, err := l.conn.LookupDomainByUUIDString(id)
	if err != nil {
		var lerr libvirt.Error
		if errors.As(err, &lerr) && lerr.Code == libvirt.ERR_NO_DOMAIN {
			return types.VM{}, errors.Join(fmt.Errorf("id=%s", id), ErrVMNotFound, errLibvirtGet)
		}

		return types.VM{}, errors.Join(fmt.Errorf("id=%s", id), err, errLibvirtGet)
	}
	defer func() { _ = domain.Free() }()

	state, _, err := domain.GetState()
	if err != nil {
		return types.VM{}, errors.Join(fmt.Errorf("id=%s", id), err, errLibvirtGet)
	}

	desc, err := domain.GetXMLDesc(0)
	if err != nil {
		return types.VM{}, errors.Join(fmt.Errorf("id=%s", id), err, errLibvirtGet)
	}

	var def libvirtxml.Domain
	if err := def.Unmarshal(desc); err != nil {
		return types.VM{}, errors.Join(fmt.Errorf("id=%s", id), err, errLibvirtGet)
	}

	vm := domainToVM(&def, state, l.hostname)
	vm.ID = id

	return vm, nil
}

func domainToVM(def *libvirtxml.Domain, state libvirt.DomainState, hostname string) types.VM {
	return types.VM{
		ID:              def.UUID,
		Hostname:        def.Name,
		PhysicalHostID:  hostname,
		PhysicalStoreID: storeID(def),
		Status:          statusFromState(state),
	}
}

func statusFromState(state libvirt.DomainState) types.VMStatus {
	switch state {
	case libvirt.DOMAIN_RUNNING, libvirt.DOMAIN_BLOCKED, libvirt.DOMAIN_PAUSED, libvirt.DOMAIN_PMSUSPENDED:
		return types.VMStatusOn
	case libvirt.DOMAIN_SHUTOFF, libvirt.DOMAIN_SHUTDOWN, libvirt.DOMAIN_CRASHED:
		return types.VMStatusOff
	default:
		return types.VMStatusUnknown
	}
}

// storeID returns the source of the first disk of the domain.
func storeID(def *libvirtxml.Domain) string {
	if def.Devices == nil {
		return ""
	}

	for _, disk := range def.Devices.Disks {
		if disk.Device != "" && disk.Device != "disk" {
			continue
		}
		if disk.Source == nil {
			continue
		}

		switch src := disk.Source; {
		case src.File != nil:
			return src.File.File
		case src.Block != nil:
			return src.Block.Dev
		case src.Volume != nil:
			return src.Volume.Pool + "/" + src.Volume.Volume
		case src.Network != nil:
			return src.Network.Protocol + "://" + src.Network.Name
		}
	}

	return ""
}
