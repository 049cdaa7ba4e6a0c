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

package httputil

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/alexandremahdhaoui/warden/internal/util/gracefulshutdown"
	ctrl "sigs.k8s.io/controller-runtime"
)

type contextKey string

// ServerNameContextKey holds the name of the server in the base context of its requests.
const ServerNameContextKey contextKey = "serverName"

const shutdownTimeout = time.Minute

// Serve runs servers until the GracefulShutdown's context is done, then shuts them down. A server
// failing to serve triggers a shutdown with exit code 1.
//
// Serve calls gs.Ready: every goroutine awaited by the shutdown must be added to the wait group
// before Serve is called.
func Serve(servers map[string]*http.Server, gs *gracefulshutdown.GracefulShutdown) {
	log := ctrl.Log.WithName("httputil")

	for name, server := range servers {
		ctx := context.WithValue(gs.Context(), ServerNameContextKey, name)
		server.BaseContext = func(_ net.Listener) context.Context {
			return ctx
		}

		gs.WaitGroup().Add(1)

		go func() {
			log.Info("Starting server", "server", name, "addr", server.Addr)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(err, "Server failed", "server", name)

				// Done must be called first: Shutdown awaits the wait group.
				gs.WaitGroup().Done()
				gs.Shutdown(1)

				return
			}

			gs.WaitGroup().Done()
			gs.Shutdown(0)
		}()
	}

	gs.Ready()

	<-gs.Context().Done()

	for name, server := range servers {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error(err, "Could not shut down server", "server", name)
				return
			}

			log.Info("Server shut down", "server", name)
		}()
	}
}
