package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingMonitor struct {
	errs    []error
	tags    []map[string]string
	panics  []any
	flushed int
}

func (m *recordingMonitor) CaptureException(err error, tags map[string]string) {
	m.errs = append(m.errs, err)
	m.tags = append(m.tags, tags)
}

func (m *recordingMonitor) CapturePanic(v any)  { m.panics = append(m.panics, v) }
func (m *recordingMonitor) Flush(time.Duration) { m.flushed++ }

func TestCaptureAndRecover(t *testing.T) {
	m := &recordingMonitor{}
	Init(m)
	defer Init(NopMonitor{})

	CaptureException(errors.New("boom"), map[string]string{"component": "engine"})
	CaptureException(nil, nil)
	assert.Len(t, m.errs, 1)
	assert.Equal(t, "engine", m.tags[0]["component"])

	assert.PanicsWithValue(t, "kaput", func() {
		defer Recover()
		panic("kaput")
	})
	assert.Equal(t, []any{"kaput"}, m.panics)
	assert.Equal(t, 1, m.flushed)
}

func TestInitIgnoresNil(t *testing.T) {
	m := &recordingMonitor{}
	Init(m)
	defer Init(NopMonitor{})

	Init(nil)
	assert.Same(t, m, Current())
	Flush(time.Millisecond)
	assert.Equal(t, 1, m.flushed)
}

func TestRecoverWithoutPanic(t *testing.T) {
	m := &recordingMonitor{}
	Init(m)
	defer Init(NopMonitor{})

	assert.NotPanics(t, func() { defer Recover() })
	assert.Empty(t, m.panics)
	assert.Zero(t, m.flushed)
}
