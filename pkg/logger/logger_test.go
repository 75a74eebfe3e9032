package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{
		"trace":   LevelTrace,
		"DEBUG":   LevelDebug,
		"":        LevelInfo,
		" warn ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
	}
	for raw, want := range cases {
		got, err := ParseLevel(raw)
		require.NoError(t, err, raw)
		require.Equal(t, want, got, raw)
	}

	_, err := ParseLevel("loud")
	require.Error(t, err)
}

// Not parallel: mutates the global logger.
func TestLevelsAndOutput(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetLevel(LevelInfo)
	})

	SetLevel(LevelWarn)
	require.False(t, Enabled(LevelInfo))
	Infof("hidden %d", 1)
	Warnf("shown %d", 2)
	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown 2")

	buf.Reset()
	SetLevel(LevelTrace)
	Named("ws").Tracef("ping")
	require.Contains(t, buf.String(), "TRACE")
	require.Contains(t, buf.String(), "ws")
	require.Contains(t, buf.String(), "ping")
}
