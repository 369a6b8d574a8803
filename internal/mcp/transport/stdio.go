package transport

import (
	"bufio"
	"context"
	"io"
	"os"
	"os/exec"
	"sync"
)

// Stdio implements ClientTransport by spawning the MCP server as a
// subprocess and exchanging newline-delimited JSON over its stdin/stdout.
type Stdio struct {
	command string
	args    []string
	env     map[string]string
	workDir string

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  io.ReadCloser
	scanner *bufio.Scanner
	writeMu sync.Mutex
	started bool
	closed  bool
	closeMu sync.Mutex
}

// Option is a functional option for Stdio.
type Option func(*Stdio)

// WithEnv sets extra environment variables for the subprocess.
func WithEnv(env map[string]string) Option {
	return func(t *Stdio) {
		t.env = env
	}
}

// WithWorkDir sets the working directory for the subprocess.
func WithWorkDir(dir string) Option {
	return func(t *Stdio) {
		t.workDir = dir
	}
}

// NewStdio creates a stdio transport for the given server command.
func NewStdio(command string, args []string, opts ...Option) *Stdio {
	t := &Stdio{
		command: command,
		args:    args,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start launches the server subprocess and wires up its pipes.
func (t *Stdio) Start() error {
	t.closeMu.Lock()
	defer t.closeMu.Unlock()

	if t.closed {
		return ErrClosed
	}
	if t.started {
		return nil
	}

	t.cmd = exec.Command(t.command, t.args...)

	if t.env != nil {
		t.cmd.Env = os.Environ()
		for k, v := range t.env {
			t.cmd.Env = append(t.cmd.Env, k+"="+v)
		}
	}
	if t.workDir != "" {
		t.cmd.Dir = t.workDir
	}

	// Server diagnostics go straight through; stdout is reserved for protocol.
	t.cmd.Stderr = os.Stderr

	var err error
	t.stdin, err = t.cmd.StdinPipe()
	if err != nil {
		return err
	}

	t.stdout, err = t.cmd.StdoutPipe()
	if err != nil {
		t.stdin.Close()
		return err
	}

	// Larger buffer for potentially large JSON messages.
	t.scanner = bufio.NewScanner(t.stdout)
	t.scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	if err := t.cmd.Start(); err != nil {
		t.stdin.Close()
		t.stdout.Close()
		return err
	}

	t.started = true
	return nil
}

// Send writes one message to the subprocess stdin, newline terminated.
func (t *Stdio) Send(ctx context.Context, data []byte) error {
	t.closeMu.Lock()
	if t.closed {
		t.closeMu.Unlock()
		return ErrClosed
	}
	if !t.started {
		t.closeMu.Unlock()
		return ErrNotStarted
	}
	t.closeMu.Unlock()

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, err := t.stdin.Write(data); err != nil {
		return err
	}
	if _, err := t.stdin.Write([]byte{'\n'}); err != nil {
		return err
	}

	return nil
}

// Receive reads one message line from the subprocess stdout.
func (t *Stdio) Receive(ctx context.Context) ([]byte, error) {
	t.closeMu.Lock()
	if t.closed {
		t.closeMu.Unlock()
		return nil, ErrClosed
	}
	if !t.started {
		t.closeMu.Unlock()
		return nil, ErrNotStarted
	}
	t.closeMu.Unlock()

	// Run the scan in a goroutine so the read can be canceled.
	type scanResult struct {
		data []byte
		err  error
	}
	resultCh := make(chan scanResult, 1)

	go func() {
		if t.scanner.Scan() {
			// Copy the bytes since the scanner reuses its buffer.
			data := make([]byte, len(t.scanner.Bytes()))
			copy(data, t.scanner.Bytes())
			resultCh <- scanResult{data: data}
		} else {
			err := t.scanner.Err()
			if err == nil {
				err = io.EOF
			}
			resultCh <- scanResult{err: err}
		}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case result := <-resultCh:
		return result.data, result.err
	}
}

// Close closes the pipes and waits for the subprocess to exit.
func (t *Stdio) Close() error {
	t.closeMu.Lock()
	defer t.closeMu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	var errs []error

	if t.stdin != nil {
		if err := t.stdin.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if t.stdout != nil {
		if err := t.stdout.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if t.cmd != nil && t.cmd.Process != nil {
		_ = t.cmd.Wait()
	}

	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}
