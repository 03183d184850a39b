package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"os/exec"
)

// Dial connects to the completion service. address is either tcp://host:port
// or empty, in which case command is spawned and spoken to over its stdio.
func Dial(ctx context.Context, address string, command []string, opts ...Option) (Client, error) {
	rwc, err := dial(ctx, address, command)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	return New(ctx, rwc, opts...), nil
}

func dial(ctx context.Context, address string, command []string) (io.ReadWriteCloser, error) {
	if address != "" {
		u, err := url.Parse(address)
		if err != nil {
			return nil, fmt.Errorf("parse remote address: %w", err)
		}
		if u.Scheme != "tcp" {
			return nil, fmt.Errorf("unsupported remote address scheme %q", u.Scheme)
		}

		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", u.Host)
		if err != nil {
			return nil, fmt.Errorf("dial %s: %w", u.Host, err)
		}
		return conn, nil
	}

	if len(command) == 0 {
		return nil, errors.New("neither remote address nor command is configured")
	}
	return spawn(command)
}

type processConn struct {
	io.ReadCloser
	io.WriteCloser
	cmd *exec.Cmd
}

func spawn(command []string) (*processConn, error) {
	cmd := exec.Command(command[0], command[1:]...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdin pipe to completion service: %w", err)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe from completion service: %w", err)
	}

	// stdout of this process is the LSP channel.
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start completion service (%s): %w", command[0], err)
	}

	return &processConn{ReadCloser: stdout, WriteCloser: stdin, cmd: cmd}, nil
}

func (p *processConn) Close() error {
	errs := []error{p.WriteCloser.Close()}
	if p.cmd.Process != nil {
		if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			errs = append(errs, err)
		}
	}
	_ = p.cmd.Wait()
	return errors.Join(errs...)
}
