// Copyright (c) 2019-2024 The aurum developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package worker

import (
	"io"
	"net"
	"os/exec"

	"github.com/aurumproject/aurum/engine/verify"
	"github.com/pkg/errors"
)

// Serve runs the worker side of the transport protocol: it reads job frames
// from t, evaluates them against v and writes verdict frames back.  It
// returns when the transport fails, normally because the pool closed it.
func Serve(t Transport, v verify.Verifier) error {
	for {
		j, err := readJob(t)
		if err != nil {
			return err
		}

		verr := v.VerifyTransaction(j.tx, j.coins, j.flags)
		resp := &verdict{id: j.id, status: statusOK}
		switch {
		case verr == nil:
		case verify.IsUnavailable(verr):
			resp.status = statusUnavailable
			resp.reason = verr.Error()
		case verify.IsMalleated(verr):
			resp.status = statusMalleated
			resp.reason = verr.Error()
		default:
			resp.status = statusInvalid
			resp.reason = verr.Error()
		}

		if err := writeVerdict(t, resp); err != nil {
			return err
		}
	}
}

// PipeSpawner returns a SpawnFunc producing in-process workers that run v
// behind a synchronous pipe.  It is the transport of choice for nodes that
// do not sandbox script execution, and for tests.
func PipeSpawner(v verify.Verifier) SpawnFunc {
	return func() (Transport, error) {
		client, server := net.Pipe()
		go func() {
			defer server.Close()
			Serve(server, v)
		}()
		return client, nil
	}
}

// processTransport runs a worker as a child process, framing jobs over its
// stdin and verdicts over its stdout.
type processTransport struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
}

// ProcessSpawner returns a SpawnFunc that launches the named command for
// each worker.  The child is expected to speak the job/verdict frame
// protocol on its standard streams.
func ProcessSpawner(path string, arg ...string) SpawnFunc {
	return func() (Transport, error) {
		cmd := exec.Command(path, arg...)
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, err
		}
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, err
		}
		if err := cmd.Start(); err != nil {
			return nil, errors.Wrapf(err, "start worker %s", path)
		}
		return &processTransport{cmd: cmd, stdin: stdin, stdout: stdout}, nil
	}
}

func (t *processTransport) Read(p []byte) (int, error) {
	return t.stdout.Read(p)
}

func (t *processTransport) Write(p []byte) (int, error) {
	return t.stdin.Write(p)
}

// Close terminates the worker process.
func (t *processTransport) Close() error {
	t.stdin.Close()
	t.stdout.Close()
	if t.cmd.Process != nil {
		t.cmd.Process.Kill()
	}
	return t.cmd.Wait()
}
