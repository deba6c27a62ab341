// Package monitoring routes errors and panics to a process-wide reporter.
// The reporter defaults to a no-op until Init installs one.
package monitoring

import (
	"sync/atomic"
	"time"
)

// Tags annotate a captured error, e.g. {"module": "mqtt"}.
type Tags = map[string]string

// PanicFlushTimeout bounds the flush performed before a recovered panic is
// re-raised.
const PanicFlushTimeout = 2 * time.Second

// Monitor is implemented by error reporting backends.
type Monitor interface {
	CaptureException(err error, tags Tags)
	CapturePanic(v any)
	Flush(timeout time.Duration)
}

// NopMonitor discards everything.
type NopMonitor struct{}

func (NopMonitor) CaptureException(error, Tags) {}
func (NopMonitor) CapturePanic(any)             {}
func (NopMonitor) Flush(time.Duration)          {}

// box lets atomic.Pointer hold an interface value.
type box struct{ m Monitor }

var active atomic.Pointer[box]

func init() { active.Store(&box{NopMonitor{}}) }

// Init installs m as the global monitor. A nil m is ignored.
func Init(m Monitor) {
	if m == nil {
		return
	}
	active.Store(&box{m})
}

// Current returns the installed monitor.
func Current() Monitor { return active.Load().m }

// CaptureException reports a non-nil err.
func CaptureException(err error, tags Tags) {
	if err == nil {
		return
	}
	Current().CaptureException(err, tags)
}

// Recover reports a panic and re-raises it. Defer it directly:
//
//	defer monitoring.Recover()
func Recover() {
	r := recover()
	if r == nil {
		return
	}
	m := Current()
	m.CapturePanic(r)
	m.Flush(PanicFlushTimeout)
	panic(r)
}

// Flush waits up to d for buffered events to be sent.
func Flush(d time.Duration) { Current().Flush(d) }
