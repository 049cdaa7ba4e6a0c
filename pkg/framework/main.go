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
	"errors"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/alexandremahdhaoui/warden/internal/util/gracefulshutdown"
	"github.com/alexandremahdhaoui/warden/internal/util/httputil"
	"github.com/alexandremahdhaoui/warden/pkg/config"
	"github.com/spf13/pflag"
)

const defaultCommand = "warden"

// Main runs an application until it is shut down and returns the exit code of the process. args
// holds the command line, args[0] being the command.
//
// SIGTERM and SIGINT shut the application down once its current iteration completed. Unknown flags
// are ignored so that applications can share a command line with other tools.
func Main(setup SetupHooks, loop LoopHooks, args []string) int {
	command, args := splitCommand(args)

	// --------------------------------------------- Flags ---------------------------------------------------------- //

	flagSet := pflag.NewFlagSet(command, pflag.ContinueOnError)
	flagSet.ParseErrorsWhitelist.UnknownFlags = true

	var flags config.Flags
	flags.AddFlags(flagSet)
	setup.RegisterFlags(flagSet)

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}

		slog.Error("parsing flags", "command", command, "error", err.Error())

		return 1
	}

	// --------------------------------------------- Config --------------------------------------------------------- //

	cfg, err := flags.Load()
	if err != nil {
		slog.Error("loading configuration", "command", command, "error", err.Error())
		return 1
	}

	log := setup.PrepareLogging(cfg).WithName(command)
	cfg.Log(log)

	// --------------------------------------------- Graceful Shutdown ---------------------------------------------- //

	var exitCode atomic.Int64
	gs := gracefulshutdown.NewWithExit(command, func(code int) { exitCode.Store(int64(code)) })
	ctx := gs.Context()

	fail := func(err error, msg string) int {
		log.Error(err, msg)
		gs.Shutdown(1)

		return 1
	}

	if err := setup.Initialise(ctx, command, flagSet.Args()); err != nil {
		return fail(err, "Could not initialise application")
	}

	// --------------------------------------------- Services ------------------------------------------------------- //

	var servicesOpts []ServicesOption
	if factory, ok := setup.(SourceFactory); ok {
		opts, err := sourceOptions(factory, cfg)
		if err != nil {
			return fail(err, "Could not create sources")
		}

		servicesOpts = opts
	}

	services, err := NewServices(cfg, log, servicesOpts...)
	if err != nil {
		return fail(err, "Could not create services")
	}

	defer func() {
		if err := services.Close(); err != nil {
			log.Error(err, "Could not close services")
		}
	}()

	manager, err := setup.DaemonManager(services)
	if err != nil {
		return fail(err, "Could not create daemon manager")
	}

	// --------------------------------------------- Application ---------------------------------------------------- //

	app := NewApplication(services.Inventory, services.Topology, manager, loop,
		WithInterval(cfg.Interval),
		WithClock(services.Clock),
		WithLogger(log.WithName("application")),
		WithMetrics(services.Metrics),
	)

	// SetApplication is called twice when setup and loop are the same value.
	for _, hooks := range []any{setup, loop} {
		if aware, ok := hooks.(ApplicationAware); ok {
			aware.SetApplication(app)
		}
	}

	gs.OnShutdown(app.Shutdown)

	// --------------------------------------------- Servers -------------------------------------------------------- //

	// The control loop is awaited by the shutdown.
	gs.WaitGroup().Add(1)

	if servers := newServers(cfg, services.Registry, app); len(servers) > 0 {
		go httputil.Serve(servers, gs)
	} else {
		gs.Ready()
	}

	// --------------------------------------------- Run ------------------------------------------------------------ //

	code := app.Run(ctx)

	gs.WaitGroup().Done()
	gs.Shutdown(code)

	log.Info("Gracefully stopped")

	return max(code, int(exitCode.Load()))
}

func sourceOptions(factory SourceFactory, cfg *config.Config) ([]ServicesOption, error) {
	var opts []ServicesOption

	vmSource, err := factory.InventorySource(cfg)
	if err != nil {
		return nil, err
	}

	if vmSource != nil {
		opts = append(opts, WithInventorySource(vmSource))
	}

	topoSource, err := factory.TopologySource(cfg)
	if err != nil {
		return nil, err
	}

	if topoSource != nil {
		opts = append(opts, WithTopologySource(topoSource))
	}

	return opts, nil
}

func splitCommand(args []string) (string, []string) {
	if len(args) == 0 {
		return defaultCommand, nil
	}

	return filepath.Base(args[0]), args[1:]
}
