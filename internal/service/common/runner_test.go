package common

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestExecRunner_Output verifies standard output capture and trimming.
func TestExecRunner_Output(t *testing.T) {
	t.Parallel()

	runner := NewExecRunner()

	out, err := runner.Output(context.Background(), "echo", "hello")
	require.NoError(t, err)
	require.Equal(t, "hello", out)
}

// TestExecRunner_MissingCommand verifies the error path for unknown tools.
func TestExecRunner_MissingCommand(t *testing.T) {
	t.Parallel()

	runner := NewExecRunner()

	require.Error(t, runner.Run(context.Background(), "definitely-not-a-real-tool"))

	_, err := runner.LookPath("definitely-not-a-real-tool")
	require.Error(t, err)
}
