// Copyright (c) 2025, the fleethealth authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package target

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/fleetops/fleethealth/pkg/defaults"
	"github.com/fleetops/fleethealth/pkg/errors"
)

// SSHConfig describes how to reach a remote fleet server.
type SSHConfig struct {
	// Host is the remote hostname or address.
	Host string

	// Port is the SSH port; 22 when zero.
	Port int

	// User is the login user; "root" when empty.
	User string

	// KeyPath is the path to the private key file. When empty, common
	// default key locations are tried.
	KeyPath string
}

// SSHRunner executes commands on a remote fleet server over SSH and
// transfers files over SFTP.
type SSHRunner struct {
	host   string
	client *ssh.Client
}

// NewSSHRunner dials the remote host and returns a connected Runner.
func NewSSHRunner(cfg SSHConfig) (*SSHRunner, error) {
	if cfg.Port == 0 {
		cfg.Port = 22
	}
	if cfg.User == "" {
		cfg.User = "root"
	}

	signer, err := loadSigner(cfg.KeyPath)
	if err != nil {
		return nil, err
	}

	sshCfg := &ssh.ClientConfig{
		User: cfg.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		// fleet servers live on a provisioned management network;
		// pinning host keys is the operator's job, not this tool's
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec
		Timeout:         defaults.SSHDialTimeout,
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	client, err := ssh.Dial("tcp", addr, sshCfg)
	if err != nil {
		return nil, errors.WrapWithContext(errors.ErrCodeUnavailable,
			"failed to establish SSH connection", err,
			map[string]any{"addr": addr, "user": cfg.User})
	}

	return &SSHRunner{host: cfg.Host, client: client}, nil
}

// loadSigner reads and parses the private key, trying default locations
// when no path is given.
func loadSigner(keyPath string) (ssh.Signer, error) {
	paths := []string{keyPath}
	if keyPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal,
				"failed to resolve home directory", err)
		}
		paths = []string{
			path.Join(home, ".ssh", "id_ed25519"),
			path.Join(home, ".ssh", "id_rsa"),
		}
	}

	var lastErr error
	for _, p := range paths {
		keyBytes, err := os.ReadFile(p)
		if err != nil {
			lastErr = err
			continue
		}
		signer, err := ssh.ParsePrivateKey(keyBytes)
		if err != nil {
			lastErr = err
			continue
		}
		return signer, nil
	}

	return nil, errors.WrapWithContext(errors.ErrCodeInvalidRequest,
		"no usable SSH private key found", lastErr,
		map[string]any{"tried": paths})
}

// Run executes the command on the remote host. The context bounds the
// execution; on cancellation the session is torn down.
func (r *SSHRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	session, err := r.client.NewSession()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeUnavailable,
			"failed to open SSH session", err)
	}
	defer session.Close()

	cmd := name
	if len(args) > 0 {
		cmd = name + " " + strings.Join(args, " ")
	}
	slog.Debug("running remote command", "host", r.host, "cmd", cmd)

	var buf bytes.Buffer
	session.Stdout = &buf
	session.Stderr = &buf

	done := make(chan error, 1)
	go func() { done <- session.Run(cmd) }()

	select {
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		return strings.TrimSpace(buf.String()), errors.Wrap(
			errors.ErrCodeTimeout, "remote command cancelled", ctx.Err())
	case err := <-done:
		output := strings.TrimSpace(buf.String())
		if err != nil {
			return output, errors.WrapWithContext(errors.ErrCodeInternal,
				"remote command failed", err,
				map[string]any{
					"host":   r.host,
					"cmd":    cmd,
					"output": output,
				})
		}
		return output, nil
	}
}

// Upload writes data to path on the remote host over SFTP, creating
// parent directories.
func (r *SSHRunner) Upload(ctx context.Context, data []byte, remotePath string, mode uint32) error {
	sftpClient, err := sftp.NewClient(r.client)
	if err != nil {
		return errors.Wrap(errors.ErrCodeUnavailable,
			"failed to open SFTP connection", err)
	}
	defer sftpClient.Close()

	if err := sftpClient.MkdirAll(path.Dir(remotePath)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal,
			"failed to create remote directory", err)
	}

	f, err := sftpClient.Create(remotePath)
	if err != nil {
		return errors.WrapWithContext(errors.ErrCodeInternal,
			"failed to create remote file", err,
			map[string]any{"path": remotePath})
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeInternal,
			"failed to write remote file", err)
	}
	if err := sftpClient.Chmod(remotePath, fs.FileMode(mode)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal,
			"failed to chmod remote file", err)
	}
	return nil
}

// Host returns the remote hostname.
func (r *SSHRunner) Host() string {
	return r.host
}

// Close tears down the SSH connection.
func (r *SSHRunner) Close() error {
	return r.client.Close()
}
