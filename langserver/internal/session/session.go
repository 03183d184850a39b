// Package session groups the long-lived collaborators of one server run.
package session

import (
	"github.com/kitagry/copilotls/langserver/internal/remote"
	"github.com/kitagry/copilotls/langserver/internal/secret"
	"github.com/kitagry/copilotls/langserver/internal/telemetry"
	"github.com/sirupsen/logrus"
)

type Session struct {
	Remote    remote.Client
	Secrets   secret.Store
	Telemetry telemetry.Sink
	Logger    *logrus.Logger
}

// New fills unset collaborators with no-op defaults.
func New(client remote.Client, secrets secret.Store, sink telemetry.Sink, logger *logrus.Logger) *Session {
	if secrets == nil {
		secrets = secret.NewMemory()
	}
	if sink == nil {
		sink = telemetry.Nop
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Session{
		Remote:    client,
		Secrets:   secrets,
		Telemetry: sink,
		Logger:    logger,
	}
}

func (s *Session) Close() error {
	if s.Remote == nil {
		return nil
	}
	return s.Remote.Close()
}
