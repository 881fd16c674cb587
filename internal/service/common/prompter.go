//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Prompter asks the operator yes-or-no questions.
type Prompter interface {
	Confirm(question string) bool
}

// ConsolePrompter asks questions on the terminal. Without a terminal every
// question is declined, so unattended runs never hang on input.
type ConsolePrompter struct {
	in          io.Reader
	out         io.Writer
	interactive bool
}

// NewConsolePrompter creates a prompter bound to the process terminal.
func NewConsolePrompter() *ConsolePrompter {
	return &ConsolePrompter{
		in:  os.Stdin,
		out: os.Stderr,
		interactive: isatty.IsTerminal(os.Stdin.Fd()) ||
			isatty.IsCygwinTerminal(os.Stdin.Fd()),
	}
}

// NewConsolePrompterWith creates a prompter over explicit streams.
// Useful for tests.
func NewConsolePrompterWith(in io.Reader, out io.Writer, interactive bool) *ConsolePrompter {
	return &ConsolePrompter{
		in:          in,
		out:         out,
		interactive: interactive,
	}
}

// Confirm asks a yes-or-no question and reports the answer.
// Only "y" and "yes" count as agreement.
func (p *ConsolePrompter) Confirm(question string) bool {
	if !p.interactive {
		fmt.Fprintf(p.out, "%s [y/N]: no (not a terminal)\n", question)

		return false
	}

	fmt.Fprintf(p.out, "%s [y/N]: ", question)

	scanner := bufio.NewScanner(p.in)
	if !scanner.Scan() {
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))

	return answer == "y" || answer == "yes"
}
