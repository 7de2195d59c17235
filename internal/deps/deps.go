// Package deps reports which external programs are available.
package deps

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const versionTimeout = 3 * time.Second

// Requirement names an external program milelog can use.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	// VersionArgs, when set, are passed to Command to read its version.
	VersionArgs []string
}

// Status is the result of probing one Requirement.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Version     string
	Detail      string
}

// CheckBinaries resolves every requirement on PATH and, for those found,
// reads the first line of their version output.
func CheckBinaries(ctx context.Context, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := Status{
			Name:        req.Name,
			Command:     strings.TrimSpace(req.Command),
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		switch path, err := lookPath(status.Command); {
		case status.Command == "":
			status.Detail = "command not configured"
		case err != nil:
			status.Detail = fmt.Sprintf("binary %q not found", status.Command)
		default:
			status.Available = true
			if len(req.VersionArgs) > 0 {
				status.Version = probeVersion(ctx, path, req.VersionArgs)
			}
		}
		results = append(results, status)
	}
	return results
}

func lookPath(command string) (string, error) {
	if command == "" {
		return "", exec.ErrNotFound
	}
	return exec.LookPath(command)
}

// probeVersion returns the first non-empty output line, or "" when the
// program fails or prints nothing.
func probeVersion(ctx context.Context, path string, args []string) string {
	ctx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, path, args...).CombinedOutput()
	if err != nil {
		return ""
	}
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line
		}
	}
	return ""
}
