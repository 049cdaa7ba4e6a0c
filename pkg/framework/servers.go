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
	"fmt"
	"net/http"

	"github.com/alexandremahdhaoui/warden/internal/metrics"
	"github.com/alexandremahdhaoui/warden/internal/util/httputil"
	"github.com/alexandremahdhaoui/warden/pkg/config"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsServerName = "metrics"
	probesServerName  = "probes"
)

// newServers returns the servers enabled by cfg. A server with a zero port is disabled.
func newServers(cfg *config.Config, gatherer prometheus.Gatherer, app *Application) map[string]*http.Server {
	servers := make(map[string]*http.Server, 2)

	if cfg.MetricsServer.Port > 0 {
		servers[metricsServerName] = newMetricsServer(cfg.MetricsServer, gatherer)
	}

	if cfg.ProbesServer.Port > 0 {
		servers[probesServerName] = newProbesServer(cfg.ProbesServer, app)
	}

	return servers
}

func newMetricsServer(cfg config.MetricsServerConfig, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()

	path := cfg.Path
	if path == "" {
		path = config.DefaultMetricsPath
	}

	var handler http.Handler = metrics.Handler(gatherer)
	if cfg.BasicAuth != nil {
		handler = httputil.BasicAuth(handler, httputil.StaticCredentials(cfg.BasicAuth.Username, cfg.BasicAuth.Password))
	}

	mux.Handle(path, handler)

	return &http.Server{ //nolint:exhaustruct
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}
}

// newProbesServer serves the liveness probe unconditionally and reports ready once the first
// iteration of the control loop completed.
func newProbesServer(cfg config.ProbesServerConfig, app *Application) *http.Server {
	mux := http.NewServeMux()
	liveness, readiness := cfg.Paths()

	mux.HandleFunc(liveness, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	mux.HandleFunc(readiness, func(w http.ResponseWriter, _ *http.Request) {
		if app.Iterations() == 0 {
			http.Error(w, "control loop did not complete an iteration yet", http.StatusServiceUnavailable)
			return
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &http.Server{ //nolint:exhaustruct
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: mux,
	}
}
