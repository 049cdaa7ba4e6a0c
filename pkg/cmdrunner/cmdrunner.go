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

// Package cmdrunner executes commands on behalf of daemon managers, either locally or on a remote host
// over SSH.
package cmdrunner

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Runner runs a command and returns its outputs.
type Runner interface {
	Run(ctx context.Context, cmd ...string) (stdout, stderr string, err error)
}

// ExecContext is applied to every command run by a Runner.
type ExecContext struct {
	// Envs are set in the environment of the command.
	Envs map[string]string
	// PrependCmd is prepended to the command, e.g. []string{"sudo", "-E"}.
	PrependCmd []string
}

// NewExecContext returns an ExecContext owning copies of envs and prependCmd.
func NewExecContext(envs map[string]string, prependCmd ...string) ExecContext {
	return ExecContext{
		Envs:       maps.Clone(envs),
		PrependCmd: slices.Clone(prependCmd),
	}
}

// Argv returns cmd prefixed by the prepended command.
func (c ExecContext) Argv(cmd ...string) []string {
	return append(slices.Clone(c.PrependCmd), cmd...)
}

// Environ returns the environment of c as sorted "key=value" pairs.
func (c ExecContext) Environ() []string {
	out := make([]string, 0, len(c.Envs))
	for _, k := range slices.Sorted(maps.Keys(c.Envs)) {
		out = append(out, k+"="+c.Envs[k])
	}

	return out
}

// FormatCmd returns cmd as a single shell command line with its environment and prepended command.
func (c ExecContext) FormatCmd(cmd ...string) string {
	var b strings.Builder

	for _, k := range slices.Sorted(maps.Keys(c.Envs)) {
		_, _ = fmt.Fprintf(&b, "%s=%q ", k, c.Envs[k])
	}

	for _, s := range c.Argv(cmd...) {
		if _, ok := shellOperators[s]; ok {
			b.WriteString(s + " ")
			continue
		}
		_, _ = fmt.Fprintf(&b, "%q ", s)
	}

	return strings.TrimSpace(b.String())
}

var shellOperators = map[string]struct{}{
	"&&": {},
	"||": {},
	";":  {},
	"&":  {},
	"|":  {},
}
