//go:build unit

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

package cmdrunner_test

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/alexandremahdhaoui/warden/pkg/cmdrunner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
	utilexec "k8s.io/utils/exec"
	testingexec "k8s.io/utils/exec/testing"
)

func TestExecContext(t *testing.T) {
	envs := map[string]string{"B": "2", "A": "1 1"}
	prepend := []string{"sudo", "-E"}
	execCtx := cmdrunner.NewExecContext(envs, prepend...)

	// the context owns its inputs.
	envs["C"] = "3"
	prepend[0] = "doas"

	assert.Equal(t, []string{"sudo", "-E", "systemctl", "start", "agent"}, execCtx.Argv("systemctl", "start", "agent"))
	assert.Equal(t, []string{"A=1 1", "B=2"}, execCtx.Environ())
	assert.Equal(t,
		`A="1 1" B="2" "sudo" "-E" "agent" "--flag" && "echo" "done"`,
		execCtx.FormatCmd("agent", "--flag", "&&", "echo", "done"))

	assert.Equal(t, `"uptime"`, cmdrunner.ExecContext{}.FormatCmd("uptime"))
}

func TestLocal(t *testing.T) {
	ctx := context.Background()

	newFakeExec := func(action testingexec.FakeAction) (*testingexec.FakeExec, *testingexec.FakeCmd) {
		fakeCmd := &testingexec.FakeCmd{RunScript: []testingexec.FakeAction{action}}
		fakeExec := &testingexec.FakeExec{
			CommandScript: []testingexec.FakeCommandAction{
				func(cmd string, args ...string) utilexec.Cmd {
					return testingexec.InitFakeCmd(fakeCmd, cmd, args...)
				},
			},
		}

		return fakeExec, fakeCmd
	}

	t.Run("Success", func(t *testing.T) {
		fakeExec, fakeCmd := newFakeExec(func() ([]byte, []byte, error) {
			return []byte("out"), []byte("warn"), nil
		})

		runner := cmdrunner.NewLocal(fakeExec, cmdrunner.NewExecContext(map[string]string{"FOO": "bar"}, "sudo"))

		stdout, stderr, err := runner.Run(ctx, "echo", "hello")
		require.NoError(t, err)
		assert.Equal(t, "out", stdout)
		assert.Equal(t, "warn", stderr)
		assert.Equal(t, []string{"sudo", "echo", "hello"}, fakeCmd.Argv)
		assert.Contains(t, fakeCmd.Env, "FOO=bar")
		assert.Equal(t, 1, fakeExec.CommandCalls)
	})

	t.Run("Failure", func(t *testing.T) {
		fakeExec, _ := newFakeExec(func() ([]byte, []byte, error) {
			return nil, []byte("boom"), &testingexec.FakeExitError{Status: 2}
		})

		runner := cmdrunner.NewLocal(fakeExec, cmdrunner.ExecContext{})

		_, stderr, err := runner.Run(ctx, "false")
		require.Error(t, err)
		assert.Equal(t, "boom", stderr)

		var exitErr utilexec.ExitError
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, 2, exitErr.ExitStatus())
	})

	t.Run("EmptyCommand", func(t *testing.T) {
		runner := cmdrunner.NewLocal(&testingexec.FakeExec{}, cmdrunner.ExecContext{})

		_, _, err := runner.Run(ctx)
		assert.ErrorIs(t, err, cmdrunner.ErrEmptyCommand)
	})
}

// sshServer is a minimal SSH server answering "exec" requests.
type sshServer struct {
	listener net.Listener
	config   *ssh.ServerConfig

	mu       sync.Mutex
	commands []string
	status   uint32
}

func newSSHServer(t *testing.T, authorized ssh.PublicKey) *sshServer {
	t.Helper()

	_, hostKey, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	hostSigner, err := ssh.NewSignerFromKey(hostKey)
	require.NoError(t, err)

	config := &ssh.ServerConfig{
		PublicKeyCallback: func(_ ssh.ConnMetadata, key ssh.PublicKey) (*ssh.Permissions, error) {
			if bytes.Equal(key.Marshal(), authorized.Marshal()) {
				return &ssh.Permissions{}, nil
			}

			return nil, errors.New("unauthorized")
		},
	}
	config.AddHostKey(hostSigner)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	s := &sshServer{listener: listener, config: config}
	go s.serve()

	return s
}

func (s *sshServer) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}

		go s.handle(conn)
	}
}

func (s *sshServer) handle(conn net.Conn) {
	_, chans, reqs, err := ssh.NewServerConn(conn, s.config)
	if err != nil {
		return
	}
	go ssh.DiscardRequests(reqs)

	for newChannel := range chans {
		if newChannel.ChannelType() != "session" {
			_ = newChannel.Reject(ssh.UnknownChannelType, "unsupported")
			continue
		}

		channel, requests, err := newChannel.Accept()
		if err != nil {
			continue
		}

		go s.handleSession(channel, requests)
	}
}

func (s *sshServer) handleSession(channel ssh.Channel, requests <-chan *ssh.Request) {
	defer channel.Close()

	for req := range requests {
		if req.Type != "exec" {
			_ = req.Reply(false, nil)
			continue
		}

		var payload struct{ Command string }
		_ = ssh.Unmarshal(req.Payload, &payload)
		_ = req.Reply(true, nil)

		s.mu.Lock()
		s.commands = append(s.commands, payload.Command)
		status := s.status
		s.mu.Unlock()

		_, _ = channel.Write([]byte("stdout of " + payload.Command))
		_, _ = channel.Stderr().Write([]byte("stderr"))
		_, _ = channel.SendRequest("exit-status", false, ssh.Marshal(struct{ Status uint32 }{status}))

		return
	}
}

func (s *sshServer) port() string {
	_, port, _ := net.SplitHostPort(s.listener.Addr().String())
	return port
}

func writeClientKey(t *testing.T) (string, ssh.PublicKey) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	block, err := ssh.MarshalPrivateKey(priv, "")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "id_ed25519")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(block), 0o600))

	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)

	return path, sshPub
}

func TestSSH(t *testing.T) {
	ctx := context.Background()

	t.Run("NewSSH", func(t *testing.T) {
		keyPath, _ := writeClientKey(t)

		runner, err := cmdrunner.NewSSH("10.0.0.1", "root", keyPath, "2222", cmdrunner.ExecContext{})
		require.NoError(t, err)
		assert.Equal(t, "10.0.0.1:2222", runner.Addr())
		assert.Equal(t, "root", runner.User)
		assert.NotEmpty(t, runner.PrivateKey)

		_, err = cmdrunner.NewSSH("10.0.0.1", "root", filepath.Join(t.TempDir(), "missing"), "22", cmdrunner.ExecContext{})
		assert.ErrorContains(t, err, "unable to read private key")
	})

	t.Run("Run", func(t *testing.T) {
		keyPath, pub := writeClientKey(t)
		server := newSSHServer(t, pub)

		execCtx := cmdrunner.NewExecContext(map[string]string{"MODE": "test"}, "sudo")
		runner, err := cmdrunner.NewSSH("127.0.0.1", "root", keyPath, server.port(), execCtx)
		require.NoError(t, err)

		stdout, stderr, err := runner.Run(ctx, "agent", "start")
		require.NoError(t, err)

		expected := `MODE="test" "sudo" "agent" "start"`
		assert.Equal(t, "stdout of "+expected, stdout)
		assert.Equal(t, "stderr", stderr)

		server.mu.Lock()
		assert.Equal(t, []string{expected}, server.commands)
		server.mu.Unlock()
	})

	t.Run("NonZeroExit", func(t *testing.T) {
		keyPath, pub := writeClientKey(t)
		server := newSSHServer(t, pub)
		server.mu.Lock()
		server.status = 3
		server.mu.Unlock()

		runner, err := cmdrunner.NewSSH("127.0.0.1", "root", keyPath, server.port(), cmdrunner.ExecContext{})
		require.NoError(t, err)

		_, _, err = runner.Run(ctx, "false")
		require.Error(t, err)

		var exitErr *ssh.ExitError
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, 3, exitErr.ExitStatus())
	})

	t.Run("Unauthorized", func(t *testing.T) {
		keyPath, _ := writeClientKey(t)
		_, other := writeClientKey(t)
		server := newSSHServer(t, other)

		runner, err := cmdrunner.NewSSH("127.0.0.1", "root", keyPath, server.port(), cmdrunner.ExecContext{})
		require.NoError(t, err)

		_, _, err = runner.Run(ctx, "true")
		assert.Error(t, err)
	})

	t.Run("EmptyCommand", func(t *testing.T) {
		keyPath, _ := writeClientKey(t)

		runner, err := cmdrunner.NewSSH("127.0.0.1", "root", keyPath, "22", cmdrunner.ExecContext{})
		require.NoError(t, err)

		_, _, err = runner.Run(ctx)
		assert.ErrorIs(t, err, cmdrunner.ErrEmptyCommand)
	})
}
