package monitoring

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/kilianp07/elevsim/config"
	coremon "github.com/kilianp07/elevsim/core/monitoring"
)

// NewSentryMonitor installs the Sentry client described by cfg. Without a
// DSN reporting is disabled and a NopMonitor is returned.
func NewSentryMonitor(cfg config.SentryConfig) (coremon.Monitor, error) {
	if cfg.DSN == "" {
		return coremon.NopMonitor{}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		ServerName:       cfg.ServerName,
		SampleRate:       cfg.SampleRate,
		TracesSampleRate: cfg.TracesSampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	return &sentryMonitor{hub: sentry.CurrentHub()}, nil
}

// sentryMonitor reports through the hub installed by sentry.Init. Each
// capture runs on a cloned hub so tags never leak between events.
type sentryMonitor struct {
	hub *sentry.Hub
}

func (s *sentryMonitor) CaptureException(err error, tags coremon.Tags) {
	if err == nil {
		return
	}
	hub := s.hub.Clone()
	hub.Scope().SetTags(tags)
	hub.CaptureException(err)
}

func (s *sentryMonitor) CapturePanic(v any) {
	hub := s.hub.Clone()
	hub.Scope().SetLevel(sentry.LevelFatal)
	hub.Recover(v)
}

func (s *sentryMonitor) Flush(timeout time.Duration) { s.hub.Flush(timeout) }
