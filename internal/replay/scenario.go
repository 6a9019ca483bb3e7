// Package replay provides a development server that replays a recorded audit
// scenario over the same REST and WebSocket surface the orchestrator exposes,
// so the console can be exercised without a live backend.
package replay

import (
	"fmt"
	"os"

	"github.com/auditdeck/auditdeck/internal/api"
	"github.com/auditdeck/auditdeck/internal/console"

	"gopkg.in/yaml.v3"
)

// TimedEvent is one live event with its delay relative to the previous one.
type TimedEvent struct {
	DelayMs int64        `yaml:"delay_ms"`
	Event   api.RawEvent `yaml:"event"`
}

// Scenario is a recorded audit session: the task snapshot, the flat agent
// records, the already-persisted event history, and the live events to push
// after a client connects.
type Scenario struct {
	Task     api.TaskResponse  `yaml:"task"`
	Agents   []api.AgentRecord `yaml:"agents"`
	Findings []api.Finding     `yaml:"findings"`
	History  []api.RawEvent    `yaml:"history"`
	Live     []TimedEvent      `yaml:"live"`
}

// LoadScenario reads and validates a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var sc Scenario
	if err = yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario file: %w", err)
	}

	if err = sc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}

	return &sc, nil
}

// Validate checks the structural invariants the console relies on: a task id,
// and unique event sequences across history and live events. Streaming-only
// events carry no sequence and are exempt.
func (s *Scenario) Validate() error {
	if s.Task.TaskID == "" {
		return fmt.Errorf("task.task_id is required")
	}

	seen := make(map[int64]bool, len(s.History)+len(s.Live))
	check := func(seq int64) error {
		if seq <= 0 {
			return fmt.Errorf("event sequence must be positive, got %d", seq)
		}
		if seen[seq] {
			return fmt.Errorf("duplicate event sequence %d", seq)
		}
		seen[seq] = true
		return nil
	}

	for _, ev := range s.History {
		if console.IsStreamingOnly(ev.EventType) {
			return fmt.Errorf("history cannot contain streaming-only event %q", ev.EventType)
		}
		if err := check(ev.Sequence); err != nil {
			return err
		}
	}
	for _, te := range s.Live {
		if console.IsStreamingOnly(te.Event.EventType) {
			continue
		}
		if err := check(te.Event.Sequence); err != nil {
			return err
		}
	}

	return nil
}
