package cheatlog

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestBracketFormatTagsAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug)

	l.Critical("unhandled exception", ScriptFields("demo", 4, 2))

	out := buf.String()
	require.Contains(t, out, "[CRIT]")
	require.Contains(t, out, "unhandled exception")
	require.Contains(t, out, "script=demo")
	require.Contains(t, out, "line=5")
	require.Contains(t, out, "stack=2")
}

func TestLevelGatesDebug(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Debug("dispatched #if", logrus.Fields{})
	require.Empty(t, buf.String())

	l.Warn("deprecated alias used", logrus.Fields{"alias": "elseif"})
	require.True(t, strings.Contains(buf.String(), "[WARN]"))
}
