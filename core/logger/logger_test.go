package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingLogger struct {
	Nop
	errors int
}

func (c *countingLogger) Errorf(string, ...any) { c.errors++ }

func TestOrNop(t *testing.T) {
	assert.Equal(t, Nop{}, OrNop(nil))

	c := &countingLogger{}
	l := OrNop(c)
	l.Errorf("boom")
	l.Debugw("ignored", Fields{"floor": 3})
	assert.Equal(t, 1, c.errors)
}
