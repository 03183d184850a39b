// Package telemetry records named usage events. Sinks are fire-and-forget:
// TrackEvent never returns an error and never blocks on a backend.
package telemetry

import (
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	EventCompletion          = "completion"
	EventError               = "error"
	EventCompletionThrottled = "completion_throttled"

	TypeCompletionFetchError = "completion_fetch_error"
)

type Sink interface {
	TrackEvent(name string, properties map[string]string, measurements map[string]float64)
}

type nop struct{}

func (nop) TrackEvent(string, map[string]string, map[string]float64) {}

// Nop discards every event.
var Nop Sink = nop{}

type multi []Sink

func (m multi) TrackEvent(name string, properties map[string]string, measurements map[string]float64) {
	for _, s := range m {
		s.TrackEvent(name, properties, measurements)
	}
}

// Multi fans events out to every sink.
func Multi(sinks ...Sink) Sink {
	result := make(multi, 0, len(sinks))
	for _, s := range sinks {
		if s == nil || s == Nop {
			continue
		}
		result = append(result, s)
	}
	if len(result) == 0 {
		return Nop
	}
	if len(result) == 1 {
		return result[0]
	}
	return result
}

type logSink struct {
	logger *logrus.Logger
}

// NewLogSink writes events to logger at debug level.
func NewLogSink(logger *logrus.Logger) Sink {
	return &logSink{logger: logger}
}

func (l *logSink) TrackEvent(name string, properties map[string]string, measurements map[string]float64) {
	fields := logrus.Fields{"event": name}
	for k, v := range properties {
		fields["prop."+k] = v
	}
	for k, v := range measurements {
		fields["measure."+k] = v
	}
	l.logger.WithFields(fields).Debug("telemetry event")
}

type Event struct {
	Name         string
	Properties   map[string]string
	Measurements map[string]float64
}

// Recorder keeps events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) TrackEvent(name string, properties map[string]string, measurements map[string]float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{Name: name, Properties: properties, Measurements: measurements})
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// EventsOfType returns the events whose "type" property equals typ.
func (r *Recorder) EventsOfType(typ string) []Event {
	result := make([]Event, 0)
	for _, e := range r.Events() {
		if e.Properties["type"] == typ {
			result = append(result, e)
		}
	}
	return result
}
