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

package cmdrunner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	utilexec "k8s.io/utils/exec"
	ctrl "sigs.k8s.io/controller-runtime"
)

var (
	ErrEmptyCommand = errors.New("command cannot be empty")

	errLocalCommand = errors.New("running local command")
)

// Local runs commands on the local host.
type Local struct {
	exec    utilexec.Interface
	execCtx ExecContext
	log     logr.Logger
}

// NewLocal returns a Runner executing commands through exec.
func NewLocal(exec utilexec.Interface, execCtx ExecContext) *Local {
	return &Local{
		exec:    exec,
		execCtx: execCtx,
		log:     ctrl.Log.WithName("cmdrunner"),
	}
}

// Run implements Runner.
func (l *Local) Run(ctx context.Context, cmd ...string) (string, string, error) {
	if len(cmd) == 0 {
		return "", "", errors.Join(ErrEmptyCommand, errLocalCommand)
	}

	argv := l.execCtx.Argv(cmd...)
	l.log.V(1).Info("Executing command", "cmd", l.execCtx.FormatCmd(cmd...))

	c := l.exec.CommandContext(ctx, argv[0], argv[1:]...)
	if len(l.execCtx.Envs) > 0 {
		c.SetEnv(append(os.Environ(), l.execCtx.Environ()...))
	}

	var stdout, stderr bytes.Buffer
	c.SetStdout(&stdout)
	c.SetStderr(&stderr)

	if err := c.Run(); err != nil {
		l.log.V(1).Info("Command failed", "cmd", argv[0], "error", err.Error())
		return stdout.String(), stderr.String(), errors.Join(fmt.Errorf("cmd=%s", argv[0]), err, errLocalCommand)
	}

	return stdout.String(), stderr.String(), nil
}
