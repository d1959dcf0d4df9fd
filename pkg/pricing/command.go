package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
)

// CommandProvider resolves availability by executing an external command
// (typically a wrapper around the vendor CLI). The GPU type is appended as
// the last argument and the command prints JSON like:
// {"H100_80GB":[{"provider":"runpod","gpuCount":1,"prices":{"onDemand":2.49},...}]}
type CommandProvider struct {
	command string
	args    []string
}

func NewCommandProvider(command string, args []string) *CommandProvider {
	return &CommandProvider{command: strings.TrimSpace(command), args: args}
}

func (p *CommandProvider) Availability(ctx context.Context, gpuType string) (map[string][]Offer, error) {
	if p.command == "" {
		return nil, fmt.Errorf("pricing command is empty")
	}

	args := append(append([]string{}, p.args...), gpuType)
	cmd := exec.CommandContext(ctx, p.command, args...)
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("run pricing command: %w (output: %s)", err, strings.TrimSpace(string(out)))
	}

	raw := strings.TrimSpace(string(out))
	if raw == "" {
		return nil, fmt.Errorf("pricing command produced empty output")
	}

	return parseAvailabilityOutput(raw)
}

func (p *CommandProvider) Source() string {
	return "command"
}

func parseAvailabilityOutput(raw string) (map[string][]Offer, error) {
	var parsed map[string][]Offer
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		return parsed, nil
	}

	// Allow wrappers that log before final JSON by parsing the last non-empty line.
	lines := strings.Split(raw, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if err := json.Unmarshal([]byte(line), &parsed); err == nil {
			return parsed, nil
		}
		break
	}

	return nil, fmt.Errorf("failed to parse pricing command output as JSON: %s", raw)
}
