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

// Package gracefulshutdown coordinates the shutdown of a process on SIGTERM or SIGINT: shutdown
// callbacks are run, the shared context is cancelled and registered goroutines are awaited before
// the process exits.
package gracefulshutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/go-logr/logr"
	ctrl "sigs.k8s.io/controller-runtime"
)

// GracefulShutdown holds the context, the wait group and the callbacks of a graceful shutdown.
type GracefulShutdown struct {
	ctx    context.Context
	cancel context.CancelFunc
	name   string
	log    logr.Logger

	once      sync.Once
	readyOnce sync.Once
	wg        *sync.WaitGroup

	mu           sync.Mutex
	callbacks    []func()
	shuttingDown bool

	// ready is closed when Ready() is called, signaling that all Add() calls have been made.
	ready chan struct{}

	exitFunc func(int)
}

// NewWithExit returns a GracefulShutdown exiting through exitFunc.
func NewWithExit(name string, exitFunc func(int)) *GracefulShutdown {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)

	gs := &GracefulShutdown{
		ctx:      ctx,
		cancel:   cancel,
		name:     name,
		log:      ctrl.Log.WithName("gracefulshutdown").WithValues("name", name),
		wg:       &sync.WaitGroup{},
		ready:    make(chan struct{}),
		exitFunc: exitFunc,
	}

	// Shutdown is always called once the context is done, whether Ready was called or not.
	go func() {
		select {
		case <-gs.ready:
			<-ctx.Done()
		case <-ctx.Done():
			gs.log.Info("Context cancelled before Ready() was called, proceeding with shutdown anyway")
		}

		gs.Shutdown(0)
	}()

	return gs
}

// New returns a GracefulShutdown exiting the process with os.Exit.
func New(name string) *GracefulShutdown {
	return NewWithExit(name, os.Exit)
}

// OnShutdown registers f to be called when the shutdown starts, before the context is cancelled.
// Callbacks are called in registration order and must not block. f is called immediately if the
// shutdown already started.
func (s *GracefulShutdown) OnShutdown(f func()) {
	s.mu.Lock()
	if !s.shuttingDown {
		s.callbacks = append(s.callbacks, f)
		s.mu.Unlock()

		return
	}
	s.mu.Unlock()

	f()
}

// Shutdown runs the callbacks, cancels the context, waits for the wait group and exits with exitCode.
// Only the first call has any effect.
func (s *GracefulShutdown) Shutdown(exitCode int) {
	s.once.Do(func() {
		s.log.Info("Gracefully shutting down", "exitCode", exitCode)

		s.mu.Lock()
		s.shuttingDown = true
		callbacks := s.callbacks
		s.mu.Unlock()

		for _, f := range callbacks {
			f()
		}

		s.cancel()
		s.wg.Wait()

		s.exitFunc(exitCode)
	})
}

// Context returns the context of the graceful shutdown.
func (s *GracefulShutdown) Context() context.Context {
	return s.ctx
}

// CancelFunc returns the cancel function of the graceful shutdown.
func (s *GracefulShutdown) CancelFunc() context.CancelFunc {
	return s.cancel
}

// WaitGroup returns the wait group awaited before exiting.
func (s *GracefulShutdown) WaitGroup() *sync.WaitGroup {
	return s.wg
}

// Ready signals that all WaitGroup.Add() calls have been made. It is safe to call multiple times.
func (s *GracefulShutdown) Ready() {
	s.readyOnce.Do(func() {
		close(s.ready)
	})
}
