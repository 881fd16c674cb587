package common

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestConsolePrompter_Confirm verifies answer parsing on a terminal.
func TestConsolePrompter_Confirm(t *testing.T) {
	t.Parallel()

	testCases := map[string]struct {
		input    string
		expected bool
	}{
		"y agrees":               {input: "y\n", expected: true},
		"yes agrees":             {input: "YES\n", expected: true},
		"n declines":             {input: "n\n", expected: false},
		"empty answer declines":  {input: "\n", expected: false},
		"garbage declines":       {input: "maybe\n", expected: false},
		"closed input declines":  {input: "", expected: false},
		"padded answer is valid": {input: "  y  \n", expected: true},
	}

	for name, tc := range testCases {
		tc := tc
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer

			prompter := NewConsolePrompterWith(strings.NewReader(tc.input), &out, true)
			require.Equal(t, tc.expected, prompter.Confirm("Install the dependency?"))
			require.Contains(t, out.String(), "Install the dependency? [y/N]: ")
		})
	}
}

// TestConsolePrompter_NonInteractive verifies the auto-decline without a
// terminal.
func TestConsolePrompter_NonInteractive(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	prompter := NewConsolePrompterWith(strings.NewReader("y\n"), &out, false)

	require.False(t, prompter.Confirm("Install the dependency?"))
	require.Contains(t, out.String(), "no (not a terminal)")
}
