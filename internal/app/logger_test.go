package app

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLogger(t *testing.T) {
	t.Parallel()

	lg, err := Logger("DEBUG")
	require.NoError(t, err)
	require.True(t, lg.Core().Enabled(zapcore.DebugLevel))

	lg, err = Logger("warn")
	require.NoError(t, err)
	require.False(t, lg.Core().Enabled(zapcore.InfoLevel))

	_, err = Logger("loud")
	require.Error(t, err)
}
