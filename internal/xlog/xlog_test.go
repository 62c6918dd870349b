package xlog

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelWarn)
	l.out = log.New(&buf, "", 0)

	l.Debugf("debug %d", 1)
	l.Infof("info %d", 2)
	l.Warnf("warn %d", 3)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "warn 3")
}

func TestLogger_WarnOnceFiresOnlyOnce(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelWarn)
	l.out = log.New(&buf, "", 0)

	l.WarnOnce("k", "first")
	l.WarnOnce("k", "second")

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "first"))
	assert.NotContains(t, out, "second")
}
