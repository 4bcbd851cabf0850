package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRestartHasLogsFlag(t *testing.T) {
	flag := restartCmd.Flags().Lookup("logs")
	require.NotNil(t, flag, "restart follows logs like start does")
	require.Equal(t, "false", flag.DefValue)
}
