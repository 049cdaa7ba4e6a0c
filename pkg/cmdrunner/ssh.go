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
	"net"
	"os"
	"time"

	"github.com/go-logr/logr"
	"golang.org/x/crypto/ssh"
	ctrl "sigs.k8s.io/controller-runtime"
)

const defaultSSHTimeout = 10 * time.Second

var errRemoteCommand = errors.New("running remote command")

// SSH runs commands on a remote host over SSH.
type SSH struct {
	Host       string
	User       string
	Port       string
	PrivateKey []byte

	// HostKeyCallback verifies the remote host key. Defaults to ssh.InsecureIgnoreHostKey.
	HostKeyCallback ssh.HostKeyCallback
	// Timeout bounds the establishment of the connection.
	Timeout time.Duration

	execCtx ExecContext
	log     logr.Logger
}

// NewSSH returns a Runner executing commands on host, authenticating as user with the private key
// stored at privateKeyPath.
func NewSSH(host, user, privateKeyPath, port string, execCtx ExecContext) (*SSH, error) {
	key, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read private key: %w", err)
	}

	return &SSH{
		Host:            host,
		User:            user,
		Port:            port,
		PrivateKey:      key,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec
		Timeout:         defaultSSHTimeout,
		execCtx:         execCtx,
		log:             ctrl.Log.WithName("cmdrunner").WithValues("host", host),
	}, nil
}

// Addr returns the address the runner connects to.
func (s *SSH) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// Run implements Runner. Cancelling ctx closes the connection.
func (s *SSH) Run(ctx context.Context, cmd ...string) (string, string, error) {
	if len(cmd) == 0 {
		return "", "", errors.Join(ErrEmptyCommand, errRemoteCommand)
	}

	client, err := s.dial(ctx)
	if err != nil {
		return "", "", errors.Join(err, errRemoteCommand)
	}
	defer closeAndLog(s.log, client.Close)

	stop := context.AfterFunc(ctx, func() { _ = client.Close() })
	defer stop()

	session, err := client.NewSession()
	if err != nil {
		return "", "", errors.Join(fmt.Errorf("unable to create SSH session: %w", err), errRemoteCommand)
	}
	defer closeAndLog(s.log, session.Close)

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	line := s.execCtx.FormatCmd(cmd...)
	s.log.V(1).Info("Executing remote command", "cmd", line)

	if err := session.Run(line); err != nil {
		return stdout.String(), stderr.String(), errors.Join(fmt.Errorf("remote command failed: %w", err), errRemoteCommand)
	}

	return stdout.String(), stderr.String(), nil
}

func (s *SSH) dial(ctx context.Context) (*ssh.Client, error) {
	signer, err := ssh.ParsePrivateKey(s.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("unable to parse private key: %w", err)
	}

	config := &ssh.ClientConfig{
		User:            s.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: s.HostKeyCallback,
		Timeout:         s.Timeout,
	}

	addr := s.Addr()
	dialer := &net.Dialer{Timeout: s.Timeout}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to %s: %w", addr, err)
	}

	c, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("unable to establish SSH connection to %s: %w", addr, err)
	}

	return ssh.NewClient(c, chans, reqs), nil
}

func closeAndLog(log logr.Logger, f func() error) {
	if err := f(); err != nil {
		log.V(1).Info("error closing ssh session or connection", "err", err.Error())
	}
}
