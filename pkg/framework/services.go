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
	"fmt"
	"io"
	"net/http"
	"slices"

	"github.com/alexandremahdhaoui/warden/internal/adapter"
	"github.com/alexandremahdhaoui/warden/internal/k8s"
	"github.com/alexandremahdhaoui/warden/internal/metrics"
	"github.com/alexandremahdhaoui/warden/internal/util/tlsutil"
	"github.com/alexandremahdhaoui/warden/pkg/cmdrunner"
	"github.com/alexandremahdhaoui/warden/pkg/config"
	"github.com/alexandremahdhaoui/warden/pkg/daemon"
	"github.com/alexandremahdhaoui/warden/pkg/inventory"
	"github.com/alexandremahdhaoui/warden/pkg/topology"
	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"k8s.io/utils/clock"
	utilexec "k8s.io/utils/exec"
)

var (
	ErrUnknownBackend = errors.New("unknown backend")

	errCreateServices = errors.New("creating services")
)

// Services holds the components shared by the framework and the application. It is built once from
// the configuration and passed down explicitly.
type Services struct {
	Config *config.Config
	Log    logr.Logger
	Clock  clock.Clock

	// Runner runs commands on the local host.
	Runner  cmdrunner.Runner
	Daemons *daemon.Collection

	Inventory *inventory.Manager
	Topology  *topology.Manager
	// TopologyWriter is nil when no topology output path is configured.
	TopologyWriter *topology.Writer

	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	closers []io.Closer
}

// ServicesOption customises the Services built by NewServices.
type ServicesOption func(*servicesOptions)

type servicesOptions struct {
	inventorySource inventory.Source
	topologySource  topology.Source
}

// WithInventorySource replaces the configured inventory backend with src.
func WithInventorySource(src inventory.Source) ServicesOption {
	return func(o *servicesOptions) { o.inventorySource = src }
}

// WithTopologySource replaces the configured topology backend with src.
func WithTopologySource(src topology.Source) ServicesOption {
	return func(o *servicesOptions) { o.topologySource = src }
}

// NewServices builds the Services described by cfg.
func NewServices(cfg *config.Config, log logr.Logger, opts ...ServicesOption) (*Services, error) {
	var o servicesOptions
	for _, opt := range opts {
		opt(&o)
	}

	s := &Services{
		Config:   cfg,
		Log:      log,
		Clock:    clock.RealClock{},
		Runner:   cmdrunner.NewLocal(utilexec.New(), cmdrunner.NewExecContext(nil)),
		Daemons:  daemon.NewCollection(),
		Registry: prometheus.NewRegistry(),
	}

	s.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}), //nolint:exhaustruct
	)
	s.Metrics = metrics.New(s.Registry)

	var httpClient *adapter.HTTPClient
	getHTTPClient := func() (*adapter.HTTPClient, error) {
		if httpClient != nil {
			return httpClient, nil
		}

		tlsConfig, err := tlsutil.BuildClientTLSConfig(cfg.Inventory.TLS)
		if err != nil {
			return nil, err
		}

		var client *http.Client
		if tlsConfig != nil {
			transport := http.DefaultTransport.(*http.Transport).Clone() //nolint:forcetypeassert
			transport.TLSClientConfig = tlsConfig
			client = &http.Client{Transport: transport} //nolint:exhaustruct
		}

		httpClient = adapter.NewHTTPClient(cfg.Inventory.URL, cfg.AppID, cfg.RequestTimeout(), client)

		return httpClient, nil
	}

	vmSource := o.inventorySource
	if vmSource == nil {
		src, err := s.newInventorySource(getHTTPClient)
		if err != nil {
			return nil, errors.Join(err, s.Close(), errCreateServices)
		}

		vmSource = src
	}

	topoSource := o.topologySource
	if topoSource == nil {
		src, err := newTopologySource(cfg, getHTTPClient)
		if err != nil {
			return nil, errors.Join(err, s.Close(), errCreateServices)
		}

		topoSource = src
	}

	s.Inventory = inventory.NewManager(vmSource, inventory.WithLogger(log.WithName("inventory")))
	s.Inventory.RegisterEventHandler(s.Metrics.EventHandler(s.Inventory))

	s.Topology = topology.NewManager(topoSource, topology.WithLogger(log.WithName("topology")))

	if cfg.TopologyOutputPath != "" {
		s.TopologyWriter = topology.NewWriter(cfg.TopologyOutputPath)
	}

	return s, nil
}

// Close releases the connections held by the Services in reverse order of creation.
func (s *Services) Close() error {
	var errs []error
	for _, c := range slices.Backward(s.closers) {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	s.closers = nil

	return errors.Join(errs...)
}

func (s *Services) newInventorySource(getHTTPClient func() (*adapter.HTTPClient, error)) (inventory.Source, error) { //nolint:ireturn
	switch backend := s.Config.Inventory.Backend; backend {
	case config.InventoryBackendHTTP:
		return getHTTPClient()
	case config.InventoryBackendLibvirt:
		inv, err := adapter.NewLibvirtInventory(s.Config.Inventory.LibvirtURI)
		if err != nil {
			return nil, err
		}

		s.closers = append(s.closers, inv)

		return inv, nil
	default:
		return nil, errors.Join(fmt.Errorf("inventory backend %q", backend), ErrUnknownBackend)
	}
}

func newTopologySource( //nolint:ireturn
	cfg *config.Config,
	getHTTPClient func() (*adapter.HTTPClient, error),
) (topology.Source, error) {
	switch backend := cfg.Topology.Backend; backend {
	case config.TopologyBackendHTTP:
		return getHTTPClient()
	case config.TopologyBackendFile:
		return adapter.NewFileTopology(cfg.Topology.Path), nil
	case config.TopologyBackendKubernetes:
		restConfig, err := k8s.NewKubeRestConfig(cfg.Topology.KubeconfigPath)
		if err != nil {
			return nil, err
		}

		cl, err := k8s.NewKubeClient(restConfig)
		if err != nil {
			return nil, err
		}

		return adapter.NewKubeTopology(cl, cfg.Topology.DataCenterLabel, cfg.Topology.RackLabel), nil
	case config.TopologyBackendNone:
		return adapter.NoTopology{}, nil
	default:
		return nil, errors.Join(fmt.Errorf("topology backend %q", backend), ErrUnknownBackend)
	}
}
