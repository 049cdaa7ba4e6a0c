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

// Package config loads the configuration of a warden application from a YAML or JSON file,
// environment variables and command line flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexandremahdhaoui/warden/internal/util/tlsutil"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"sigs.k8s.io/yaml"
)

const (
	// ConfigPathEnvKey is the environment variable holding the config file path when no --config flag is
	// passed.
	ConfigPathEnvKey = "WARDEN_CONFIG_PATH"

	DefaultIntervalSeconds       = 60
	DefaultInventoryURL          = "http://localhost:8080"
	DefaultLibvirtURI            = "qemu:///system"
	DefaultRequestTimeoutSeconds = 30
	DefaultDataCenterLabel       = "topology.kubernetes.io/region"
	DefaultRackLabel             = "topology.kubernetes.io/zone"
	DefaultMetricsPath           = "/metrics"
	DefaultLivenessPath          = "/healthz"
	DefaultReadinessPath         = "/readyz"
)

// InventoryBackend selects the remote inventory client.
type InventoryBackend string

const (
	InventoryBackendHTTP    InventoryBackend = "http"
	InventoryBackendLibvirt InventoryBackend = "libvirt"
)

// TopologyBackend selects where the physical topology is fetched from.
type TopologyBackend string

const (
	TopologyBackendHTTP       TopologyBackend = "http"
	TopologyBackendFile       TopologyBackend = "file"
	TopologyBackendKubernetes TopologyBackend = "kubernetes"
	TopologyBackendNone       TopologyBackend = "none"
)

var (
	ErrInvalidConfig = errors.New("invalid configuration")

	errReadConfig  = errors.New("reading config file")
	errParseConfig = errors.New("parsing config file")
	errParseEnv    = errors.New("parsing environment variable")
)

// Config is the configuration of a warden application.
type Config struct {
	// IntervalSeconds is the time slept between two control loop iterations.
	//
	// It must be read through Interval and updated through SetIntervalSeconds once the application runs.
	IntervalSeconds int64 `json:"intervalSeconds"`
	// AppID identifies the application towards the remote inventory. It must be a UUID.
	AppID string `json:"appID,omitempty"`

	Inventory InventoryConfig `json:"inventory"`
	Topology  TopologyConfig  `json:"topology"`

	// TopologyOutputPath is the file the VM locations are written to. Empty disables the output.
	TopologyOutputPath string `json:"topologyOutputPath,omitempty"`

	// DevelopmentMode enables human-readable logs.
	DevelopmentMode bool `json:"developmentMode"`
	// LogLevel is one of "debug", "info", "warn" or "error".
	LogLevel string `json:"logLevel,omitempty"`

	MetricsServer MetricsServerConfig `json:"metricsServer"`
	ProbesServer  ProbesServerConfig  `json:"probesServer"`

	// Extra holds application-defined options.
	Extra map[string]string `json:"extra,omitempty"`
}

// InventoryConfig configures the remote inventory client.
type InventoryConfig struct {
	Backend InventoryBackend `json:"backend"`
	// URL is the base URL of the inventory service.
	URL string `json:"url"`
	// LibvirtURI is the libvirt connection URI.
	LibvirtURI string `json:"libvirtURI"`
	// RequestTimeoutSeconds bounds every call to the inventory service.
	RequestTimeoutSeconds int64 `json:"requestTimeoutSeconds"`
	// TLS configures the connection to an https inventory service.
	TLS *tlsutil.Config `json:"tls,omitempty"`
}

// TopologyConfig configures the topology source.
type TopologyConfig struct {
	Backend TopologyBackend `json:"backend"`
	// Path is the topology file read by the "file" backend.
	Path string `json:"path,omitempty"`
	// KubeconfigPath is the kubeconfig used by the "kubernetes" backend. It can be set to "in-cluster".
	KubeconfigPath string `json:"kubeconfigPath,omitempty"`
	// DataCenterLabel is the node label holding the data center of a node.
	DataCenterLabel string `json:"dataCenterLabel,omitempty"`
	// RackLabel is the node label holding the rack of a node.
	RackLabel string `json:"rackLabel,omitempty"`
}

// MetricsServerConfig configures the prometheus metrics server. A zero port disables it.
type MetricsServerConfig struct {
	Port int    `json:"port"`
	Path string `json:"path"`
	// BasicAuth protects the metrics endpoint when set.
	BasicAuth *BasicAuthConfig `json:"basicAuth,omitempty"`
}

// BasicAuthConfig holds static basic auth credentials.
type BasicAuthConfig struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// ProbesServerConfig configures the liveness and readiness probes server. A zero port disables it.
type ProbesServerConfig struct {
	Port          int    `json:"port"`
	LivenessPath  string `json:"livenessPath"`
	ReadinessPath string `json:"readinessPath"`
}

// Paths returns the liveness and readiness paths, defaulting the empty ones.
func (p ProbesServerConfig) Paths() (string, string) {
	liveness, readiness := p.LivenessPath, p.ReadinessPath
	if liveness == "" {
		liveness = DefaultLivenessPath
	}
	if readiness == "" {
		readiness = DefaultReadinessPath
	}

	return liveness, readiness
}

// NewDefaultConfig returns a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		IntervalSeconds: DefaultIntervalSeconds,
		Inventory: InventoryConfig{
			Backend:               InventoryBackendHTTP,
			URL:                   DefaultInventoryURL,
			LibvirtURI:            DefaultLibvirtURI,
			RequestTimeoutSeconds: DefaultRequestTimeoutSeconds,
		},
		Topology: TopologyConfig{
			Backend:         TopologyBackendHTTP,
			DataCenterLabel: DefaultDataCenterLabel,
			RackLabel:       DefaultRackLabel,
		},
		LogLevel: "info",
		MetricsServer: MetricsServerConfig{
			Path: DefaultMetricsPath,
		},
		ProbesServer: ProbesServerConfig{
			LivenessPath:  DefaultLivenessPath,
			ReadinessPath: DefaultReadinessPath,
		},
		Extra: make(map[string]string),
	}
}

// Override mutates a Config after the file and the environment were applied.
type Override func(c *Config)

// Load returns the default configuration overridden by the file at path, if any, then by the
// environment, then by overrides. The result is validated.
func Load(path string, overrides ...Override) (*Config, error) {
	c := NewDefaultConfig()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Join(err, errReadConfig)
		}

		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, errors.Join(fmt.Errorf("path=%s", path), err, errParseConfig)
		}
	}

	if err := c.applyEnvironmentOverrides(); err != nil {
		return nil, err
	}

	for _, o := range overrides {
		o(c)
	}

	if c.Extra == nil {
		c.Extra = make(map[string]string)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) applyEnvironmentOverrides() error {
	var errs []error

	setString := func(key string, dst *string) {
		if val := os.Getenv(key); val != "" {
			*dst = val
		}
	}

	setInt := func(key string, dst *int64) {
		val := os.Getenv(key)
		if val == "" {
			return
		}

		i, err := strconv.ParseInt(val, 10, 64)
		if err != nil {
			errs = append(errs, errors.Join(fmt.Errorf("key=%s", key), err, errParseEnv))
			return
		}

		*dst = i
	}

	setBool := func(key string, dst *bool) {
		if val := os.Getenv(key); val != "" {
			*dst = val == "true" || val == "1" || val == "yes"
		}
	}

	setInt("WARDEN_INTERVAL_SECONDS", &c.IntervalSeconds)
	setString("WARDEN_APP_ID", &c.AppID)
	setString("WARDEN_INVENTORY_BACKEND", (*string)(&c.Inventory.Backend))
	setString("WARDEN_INVENTORY_URL", &c.Inventory.URL)
	setString("WARDEN_LIBVIRT_URI", &c.Inventory.LibvirtURI)
	setInt("WARDEN_REQUEST_TIMEOUT_SECONDS", &c.Inventory.RequestTimeoutSeconds)
	setString("WARDEN_TOPOLOGY_BACKEND", (*string)(&c.Topology.Backend))
	setString("WARDEN_TOPOLOGY_PATH", &c.Topology.Path)
	setString("WARDEN_KUBECONFIG_PATH", &c.Topology.KubeconfigPath)
	setString("WARDEN_TOPOLOGY_OUTPUT_PATH", &c.TopologyOutputPath)
	setBool("WARDEN_DEV_MODE", &c.DevelopmentMode)
	setString("WARDEN_LOG_LEVEL", &c.LogLevel)

	return errors.Join(errs...)
}

// Validate returns every problem of the configuration joined in a single error.
func (c *Config) Validate() error {
	var errs []error

	if c.Interval() <= 0 {
		errs = append(errs, errors.New("intervalSeconds must be positive"))
	}

	if c.AppID != "" {
		if _, err := uuid.Parse(c.AppID); err != nil {
			errs = append(errs, fmt.Errorf("appID must be a UUID: %w", err))
		}
	}

	usesHTTP := c.Inventory.Backend == InventoryBackendHTTP || c.Topology.Backend == TopologyBackendHTTP
	if usesHTTP {
		if c.AppID == "" {
			errs = append(errs, errors.New("appID cannot be empty with the http backend"))
		}
		if u, err := url.Parse(c.Inventory.URL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("inventory.url %q must be an absolute URL", c.Inventory.URL))
		}
	}

	switch c.Inventory.Backend {
	case InventoryBackendHTTP:
	case InventoryBackendLibvirt:
		if c.Inventory.LibvirtURI == "" {
			errs = append(errs, errors.New("inventory.libvirtURI cannot be empty with the libvirt backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown inventory.backend %q", c.Inventory.Backend))
	}

	if c.Inventory.TLS != nil {
		if err := c.Inventory.TLS.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("inventory.tls: %w", err))
		}
	}

	if c.Inventory.RequestTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("inventory.requestTimeoutSeconds must be positive"))
	}

	switch c.Topology.Backend {
	case TopologyBackendHTTP, TopologyBackendNone:
	case TopologyBackendFile:
		if c.Topology.Path == "" {
			errs = append(errs, errors.New("topology.path cannot be empty with the file backend"))
		}
	case TopologyBackendKubernetes:
		if c.Topology.KubeconfigPath == "" {
			errs = append(errs, errors.New("topology.kubeconfigPath cannot be empty with the kubernetes backend"))
		}
		if c.Topology.DataCenterLabel == "" || c.Topology.RackLabel == "" {
			errs = append(errs, errors.New("topology labels cannot be empty with the kubernetes backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown topology.backend %q", c.Topology.Backend))
	}

	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("invalid logLevel: %w", err))
	}

	if c.MetricsServer.Port < 0 || c.ProbesServer.Port < 0 {
		errs = append(errs, errors.New("server ports cannot be negative"))
	}

	if c.ProbesServer.Port > 0 {
		errs = append(errs, validateHealthCheckPaths(c.ProbesServer)...)
	}

	if auth := c.MetricsServer.BasicAuth; auth != nil && (auth.Username == "" || auth.Password == "") {
		errs = append(errs, errors.New("metricsServer.basicAuth requires a username and a password"))
	}

	if len(errs) > 0 {
		return errors.Join(append(errs, ErrInvalidConfig)...)
	}

	return nil
}

// validateHealthCheckPaths rejects health check paths the server could not register.
func validateHealthCheckPaths(p ProbesServerConfig) []error {
	var errs []error

	for name, path := range map[string]string{
		"probesServer.livenessPath":  p.LivenessPath,
		"probesServer.readinessPath": p.ReadinessPath,
	} {
		if !strings.HasPrefix(path, "/") {
			errs = append(errs, fmt.Errorf("%s %q must be a non-empty absolute path", name, path))
		}
	}

	if p.LivenessPath != "" && p.LivenessPath == p.ReadinessPath {
		errs = append(errs, fmt.Errorf("probesServer paths must differ, both are %q", p.LivenessPath))
	}

	return errs
}

// Interval returns the time to sleep between two control loop iterations.
func (c *Config) Interval() time.Duration {
	return time.Duration(atomic.LoadInt64(&c.IntervalSeconds)) * time.Second
}

// SetIntervalSeconds updates the interval. It is safe to call while the control loop runs.
func (c *Config) SetIntervalSeconds(seconds int64) {
	atomic.StoreInt64(&c.IntervalSeconds, seconds)
}

// RequestTimeout returns the timeout of a single call to the inventory service.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Inventory.RequestTimeoutSeconds) * time.Second
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}

	err := level.UnmarshalText([]byte(c.LogLevel))

	return level, err
}

// Log writes every option to log.
func (c *Config) Log(log logr.Logger) {
	log.Info("Configuration",
		"intervalSeconds", atomic.LoadInt64(&c.IntervalSeconds),
		"appID", c.AppID,
		"inventory", c.Inventory,
		"topology", c.Topology,
		"topologyOutputPath", c.TopologyOutputPath,
		"developmentMode", c.DevelopmentMode,
		"logLevel", c.LogLevel,
		"metricsServer", c.MetricsServer,
		"probesServer", c.ProbesServer,
		"extra", c.Extra)
}
