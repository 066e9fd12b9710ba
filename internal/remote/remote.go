// SPDX-License-Identifier: AGPL-3.0

// Package remote is the narrow SSH/SFTP transport for farming a job out
// to a worker host: upload a job artifact, invoke `cbse run --worker-mode`
// there, and download the resulting report. It sits outside the engine
// core behind this one Executor interface.
package remote

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	"github.com/web-ghost-dotcom/cbse/internal/artifact"
	"github.com/web-ghost-dotcom/cbse/internal/report"
)

// HostConfig names the worker host and the binary path to invoke there.
type HostConfig struct {
	Addr          string // host:port
	User          string
	Auth          []ssh.AuthMethod
	RemoteBinPath string // path to the cbse binary on the worker
	RemoteWorkDir string // scratch directory for artifact.json / result.json
}

// Executor runs a JobArtifact on a remote worker over SSH/SFTP: upload,
// invoke worker-mode, download, cleanup.
type Executor struct {
	cfg HostConfig
}

// NewExecutor returns an Executor for cfg.
func NewExecutor(cfg HostConfig) *Executor { return &Executor{cfg: cfg} }

// Run uploads art, invokes `<RemoteBinPath> run --worker-mode` against it on
// the remote host, and returns the decoded MainResult.
func (e *Executor) Run(art *artifact.JobArtifact) (report.MainResult, error) {
	client, err := ssh.Dial("tcp", e.cfg.Addr, &ssh.ClientConfig{
		User:            e.cfg.User,
		Auth:            e.cfg.Auth,
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // worker pool hosts are not yet key-pinned
	})
	if err != nil {
		return report.MainResult{}, fmt.Errorf("remote: dial %s: %w", e.cfg.Addr, err)
	}
	defer client.Close()

	sftpClient, err := sftp.NewClient(client)
	if err != nil {
		return report.MainResult{}, fmt.Errorf("remote: sftp handshake: %w", err)
	}
	defer sftpClient.Close()

	jobDir := e.cfg.RemoteWorkDir + "/" + uuid.New().String()
	artifactPath := jobDir + "/artifact.json"
	resultPath := jobDir + "/result.json"

	if err := sftpClient.MkdirAll(jobDir); err != nil {
		return report.MainResult{}, fmt.Errorf("remote: mkdir %s: %w", jobDir, err)
	}

	if err := e.upload(sftpClient, art, artifactPath); err != nil {
		return report.MainResult{}, err
	}

	session, err := client.NewSession()
	if err != nil {
		return report.MainResult{}, fmt.Errorf("remote: new session: %w", err)
	}
	defer session.Close()

	cmd := fmt.Sprintf("%s run %s --worker-mode --output %s", e.cfg.RemoteBinPath, artifactPath, resultPath)
	if err := session.Run(cmd); err != nil {
		if _, isExit := err.(*ssh.ExitError); !isExit {
			return report.MainResult{}, fmt.Errorf("remote: run worker-mode: %w", err)
		}
		// A nonzero exit is the normal "test run found failures" signal,
		// not a transport failure.
	}

	return e.download(sftpClient, resultPath)
}

func (e *Executor) upload(client *sftp.Client, art *artifact.JobArtifact, path string) error {
	b, err := art.Marshal()
	if err != nil {
		return fmt.Errorf("remote: marshal artifact: %w", err)
	}
	f, err := client.Create(path)
	if err != nil {
		return fmt.Errorf("remote: create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		return fmt.Errorf("remote: write %s: %w", path, err)
	}
	return nil
}

func (e *Executor) download(client *sftp.Client, path string) (report.MainResult, error) {
	f, err := client.Open(path)
	if err != nil {
		return report.MainResult{}, fmt.Errorf("remote: open %s: %w", path, err)
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, f); err != nil {
		return report.MainResult{}, fmt.Errorf("remote: read %s: %w", path, err)
	}

	var result report.MainResult
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		return report.MainResult{}, fmt.Errorf("remote: decode %s: %w", path, err)
	}
	return result, nil
}
