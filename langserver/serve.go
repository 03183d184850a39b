package langserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/kitagry/copilotls/langserver/internal/config"
	"github.com/kitagry/copilotls/langserver/internal/remote"
	"github.com/kitagry/copilotls/langserver/internal/secret"
	"github.com/kitagry/copilotls/langserver/internal/session"
	"github.com/kitagry/copilotls/langserver/internal/telemetry"
	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/jsonrpc2"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Serve runs the language server on stdin/stdout until the editor disconnects
// or ctx is cancelled.
func Serve(ctx context.Context, configPath string, verbose bool, version string) error {
	cfg, err := config.Load(configPath, verbose)
	if err != nil {
		return err
	}

	logger, logFile, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logFile.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client := dialRemote(ctx, cfg.Remote, cfg.Log.Trace, logger)

	secrets, closeSecrets, err := openSecrets(cfg.Secrets)
	if err != nil {
		client.Close()
		return err
	}
	defer closeSecrets()

	sink, shutdownTelemetry, err := newTelemetry(cfg.Telemetry, logger, version)
	if err != nil {
		client.Close()
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.Warnf("failed to flush telemetry: %v", err)
		}
	}()

	sess := session.New(client, secrets, sink, logger)
	handler := NewHandler(sess,
		WithTriggerCharacters(cfg.Completion.TriggerCharacters),
		WithRequestsPerMinute(cfg.Completion.RequestsPerMinute),
		WithDebounce(cfg.Completion.Debounce),
		WithVersion(version),
	)

	var connOpts []jsonrpc2.ConnOpt
	if cfg.Log.Trace {
		connOpts = append(connOpts, jsonrpc2.LogMessages(logger))
	}
	conn := jsonrpc2.NewConn(ctx, jsonrpc2.NewBufferedStream(stdrwc{}, jsonrpc2.VSCodeObjectCodec{}), handler, connOpts...)
	logger.Infof("copilotls %s started", version)

	var eg errgroup.Group
	eg.Go(func() error {
		defer cancel()
		select {
		case <-conn.DisconnectNotify():
			logger.Info("editor disconnected")
		case <-ctx.Done():
		}
		return nil
	})
	eg.Go(func() error {
		select {
		case <-client.Done():
			// Requests keep degrading to empty results until the editor goes away.
			logger.Warn("completion service disconnected")
		case <-ctx.Done():
		}
		return nil
	})
	err = eg.Wait()

	if cerr := handler.Close(); cerr != nil && !errors.Is(cerr, jsonrpc2.ErrClosed) {
		logger.Debugf("close: %v", cerr)
	}
	return err
}

// dialRemote connects to the completion service. When it cannot be reached the
// returned client fails every call with remote.ErrTransport, so requests
// degrade to empty results instead of ending the editor session.
func dialRemote(ctx context.Context, cfg config.Remote, trace bool, logger *logrus.Logger) remote.Client {
	opts := []remote.Option{remote.WithTimeout(cfg.Timeout), remote.WithLogger(logger)}
	if trace {
		opts = append(opts, remote.WithTrace())
	}

	client, err := remote.Dial(ctx, cfg.Address, cfg.Command, opts...)
	if err != nil {
		logger.Errorf("failed to connect to the completion service: %v", err)
		return remote.Unavailable(err)
	}
	return client
}

// Logout deletes the stored token without starting the server.
func Logout(ctx context.Context, configPath string, verbose bool) (bool, error) {
	cfg, err := config.Load(configPath, verbose)
	if err != nil {
		return false, err
	}
	if cfg.Secrets.Ephemeral {
		return false, nil
	}

	store, err := secret.OpenSQLite(cfg.Secrets.Path)
	if err != nil {
		return false, err
	}
	defer store.Close()

	if err := store.Delete(ctx, secret.KeyUserToken); err != nil {
		return false, fmt.Errorf("failed to delete token: %w", err)
	}
	return true, nil
}

func openSecrets(cfg config.Secrets) (secret.Store, func() error, error) {
	if cfg.Ephemeral {
		return secret.NewMemory(), func() error { return nil }, nil
	}
	store, err := secret.OpenSQLite(cfg.Path)
	if err != nil {
		return nil, nil, err
	}
	return store, store.Close, nil
}

func newTelemetry(cfg config.Telemetry, logger *logrus.Logger, version string) (telemetry.Sink, func(context.Context) error, error) {
	noop := func(context.Context) error { return nil }
	if !cfg.Enabled {
		return telemetry.Nop, noop, nil
	}

	logSink := telemetry.NewLogSink(logger)
	if cfg.MetricsFile == "" {
		return logSink, noop, nil
	}

	f, err := openAppend(cfg.MetricsFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open metrics file: %w", err)
	}
	provider, err := telemetry.NewProvider(f, cfg.Interval, version)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	otelSink, err := telemetry.NewOTelSink(provider.Meter())
	if err != nil {
		f.Close()
		return nil, nil, err
	}

	shutdown := func(ctx context.Context) error {
		return errors.Join(provider.Shutdown(ctx), f.Close())
	}
	return telemetry.Multi(logSink, otelSink), shutdown, nil
}

func newLogger(cfg config.Log) (*logrus.Logger, io.Closer, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %w", err)
	}

	path := cfg.File
	if path == "" {
		path, err = defaultLogPath()
		if err != nil {
			return nil, nil, err
		}
	}
	f, err := openAppend(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	logger := logrus.New()
	logger.SetOutput(f)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, FullTimestamp: true})
	return logger, f, nil
}

func defaultLogPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve cache directory: %w", err)
	}
	return filepath.Join(dir, "copilotls", "copilotls.log"), nil
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

// stdout is the LSP channel, so nothing else may write to it.
type stdrwc struct{}

func (stdrwc) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdrwc) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdrwc) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
