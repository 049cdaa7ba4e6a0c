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

	"github.com/alexandremahdhaoui/warden/pkg/daemon"
	"github.com/alexandremahdhaoui/warden/pkg/framework"
	"github.com/spf13/pflag"
)

// LaunchCommandExtraKey is the configuration extra overriding the launch command of the agents.
const LaunchCommandExtraKey = "agentLaunchCommand"

var errMissingSSHKey = errors.New("--agent-ssh-user requires --agent-ssh-key")

type agentHooks struct {
	framework.DefaultSetupHooks
	framework.NoopLoopHooks

	launchCommand string
	sshUser       string
	sshKeyPath    string
	sshPort       string
	services      *framework.Services
}

var (
	_ framework.SetupHooks = (*agentHooks)(nil)
	_ framework.LoopHooks  = (*agentHooks)(nil)
)

func (h *agentHooks) RegisterFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&h.launchCommand, "agent-launch-command", "",
		"command launching an agent; "+hostnamePlaceholder+" is replaced by the hostname of the VM")
	flagSet.StringVar(&h.sshUser, "agent-ssh-user", "",
		"launch agents over SSH as this user on the hostname of each VM instead of on the local host")
	flagSet.StringVar(&h.sshKeyPath, "agent-ssh-key", "", "path to the private key authenticating --agent-ssh-user")
	flagSet.StringVar(&h.sshPort, "agent-ssh-port", DefaultSSHPort, "SSH port of the VMs")
}

func (h *agentHooks) DaemonManager(services *framework.Services) (daemon.Manager, error) {
	h.services = services

	template := h.launchCommand
	if template == "" {
		template = services.Config.Extra[LaunchCommandExtraKey]
	}

	newRunner := staticRunner(services.Runner)
	if h.sshUser != "" {
		if h.sshKeyPath == "" {
			return nil, errMissingSSHKey
		}

		newRunner = sshRunner(h.sshUser, h.sshKeyPath, h.sshPort)
	}

	return newAgentManager(
		services.Daemons,
		newRunner,
		services.Clock,
		template,
		services.Log.WithName("agents"),
	), nil
}

// PostRefreshTopology writes the location of every VM once the topology is up to date.
func (h *agentHooks) PostRefreshTopology(_ context.Context) {
	if h.services == nil || h.services.TopologyWriter == nil {
		return
	}

	w := h.services.TopologyWriter
	if err := w.Write(h.services.Topology.Root(), h.services.Inventory.List()); err != nil {
		h.services.Log.Error(err, "Could not write topology", "path", w.Path())
	}
}
