//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"fmt"
	"os"

	"github.com/mitchellh/go-ps"
)

// TerminateProcesses kills every process whose executable name matches one
// of names. The current process is never touched. Returns the number of
// processes terminated.
func TerminateProcesses(names []string) (int, error) {
	processList, err := ps.Processes()
	if err != nil {
		return 0, fmt.Errorf("list processes: %w", err)
	}

	var (
		nameSet       = sliceToSet(names)
		thisProcessID = os.Getpid()
		terminated    int
	)

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if _, ok := nameSet[process.Executable()]; !ok {
			continue
		}

		runningProcess, err := os.FindProcess(process.Pid())
		if err != nil {
			return terminated, fmt.Errorf("find process %d: %w", process.Pid(), err)
		}

		if err = runningProcess.Kill(); err != nil {
			return terminated, fmt.Errorf("kill process %d: %w", process.Pid(), err)
		}

		terminated++
	}

	return terminated, nil
}

// sliceToSet converts a slice to a set for quick lookups.
func sliceToSet[T comparable](elements []T) map[T]struct{} {
	result := make(map[T]struct{}, len(elements))
	for _, value := range elements {
		result[value] = struct{}{}
	}

	return result
}
