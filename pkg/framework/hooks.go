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

package framework

import (
	"context"
	"errors"

	"github.com/alexandremahdhaoui/warden/internal/util/logging"
	"github.com/alexandremahdhaoui/warden/pkg/config"
	"github.com/alexandremahdhaoui/warden/pkg/daemon"
	"github.com/alexandremahdhaoui/warden/pkg/inventory"
	"github.com/alexandremahdhaoui/warden/pkg/topology"
	"github.com/go-logr/logr"
	"github.com/spf13/pflag"
)

var ErrNoDaemonManager = errors.New("application does not provide a daemon manager")

// SetupHooks are called once, in declaration order, while the application starts.
type SetupHooks interface {
	// RegisterFlags registers the command line flags of the application.
	RegisterFlags(flagSet *pflag.FlagSet)
	// PrepareLogging configures logging and returns the root logger of the application.
	PrepareLogging(cfg *config.Config) logr.Logger
	// Initialise receives the command and the positional arguments left after flag parsing.
	Initialise(ctx context.Context, command string, args []string) error
	// DaemonManager returns the daemon manager of the application.
	DaemonManager(services *Services) (daemon.Manager, error)
}

// LoopHooks are called on every iteration of the control loop around each phase.
//
// Hooks run on the control loop goroutine. A panicking hook is not recovered.
type LoopHooks interface {
	PreLoop(ctx context.Context)
	PostLoop(ctx context.Context)

	PreRefreshVMs(ctx context.Context)
	PostRefreshVMs(ctx context.Context)

	PreRefreshTopology(ctx context.Context)
	PostRefreshTopology(ctx context.Context)

	PreRefreshDaemons(ctx context.Context)
	PostRefreshDaemons(ctx context.Context)

	PreDeployDaemons(ctx context.Context)
	PostDeployDaemons(ctx context.Context)
}

// ApplicationAware is implemented by hooks needing a reference to the running Application, e.g. to
// shut it down.
type ApplicationAware interface {
	SetApplication(app *Application)
}

// SourceFactory is optionally implemented by SetupHooks bringing their own inventory or topology source.
// A nil Source keeps the backend selected by the configuration.
type SourceFactory interface {
	InventorySource(cfg *config.Config) (inventory.Source, error)
	TopologySource(cfg *config.Config) (topology.Source, error)
}

// --------------------------------------------------- DEFAULTS ----------------------------------------------------- //

// DefaultSetupHooks implements SetupHooks. Applications embed it and override DaemonManager.
type DefaultSetupHooks struct{}

var _ SetupHooks = DefaultSetupHooks{}

func (DefaultSetupHooks) RegisterFlags(*pflag.FlagSet) {}

// PrepareLogging sets up slog and the controller-runtime logger from cfg.
func (DefaultSetupHooks) PrepareLogging(cfg *config.Config) logr.Logger {
	opts := logging.DefaultOptions()
	opts.Development = cfg.DevelopmentMode

	if level, err := cfg.SlogLevel(); err == nil {
		opts.Level = level
	}

	return logging.Setup(opts)
}

func (DefaultSetupHooks) Initialise(context.Context, string, []string) error {
	return nil
}

func (DefaultSetupHooks) DaemonManager(*Services) (daemon.Manager, error) {
	return nil, ErrNoDaemonManager
}

// NoopLoopHooks implements LoopHooks with no-ops.
type NoopLoopHooks struct{}

var _ LoopHooks = NoopLoopHooks{}

func (NoopLoopHooks) PreLoop(context.Context)             {}
func (NoopLoopHooks) PostLoop(context.Context)            {}
func (NoopLoopHooks) PreRefreshVMs(context.Context)       {}
func (NoopLoopHooks) PostRefreshVMs(context.Context)      {}
func (NoopLoopHooks) PreRefreshTopology(context.Context)  {}
func (NoopLoopHooks) PostRefreshTopology(context.Context) {}
func (NoopLoopHooks) PreRefreshDaemons(context.Context)   {}
func (NoopLoopHooks) PostRefreshDaemons(context.Context)  {}
func (NoopLoopHooks) PreDeployDaemons(context.Context)    {}
func (NoopLoopHooks) PostDeployDaemons(context.Context)   {}
