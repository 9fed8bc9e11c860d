// Package testutil provides shared test helpers for tinybc tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ScenariosDir is the relative path from the module root to the scenarios.
const ScenariosDir = "testdata/scenarios"

// Scenario represents a test scenario loaded from a scenario.json file.
// Cmd holds the tinybc arguments; file arguments are relative to the
// scenario directory.
type Scenario struct {
	Cmd    []string       `json:"cmd"`
	Stdin  string         `json:"stdin,omitempty"`
	Config string         `json:"config,omitempty"`
	Meta   *ScenarioMeta  `json:"meta,omitempty"`
	Expect ExpectedResult `json:"expect"`
}

// ScenarioMeta holds optional scenario metadata.
type ScenarioMeta struct {
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// ExpectedResult describes the expected outcome of running a scenario.
type ExpectedResult struct {
	ExitCode         int             `json:"exitCode"`
	StdoutJSON       json.RawMessage `json:"stdoutJson,omitempty"`
	StdoutJSONSubset json.RawMessage `json:"stdoutJsonSubset,omitempty"`
	StdoutText       *string         `json:"stdoutText,omitempty"`
	StdoutContains   string          `json:"stdoutContains,omitempty"`
	StderrJSONSubset json.RawMessage `json:"stderrJsonSubset,omitempty"`
	StderrText       *string         `json:"stderrText,omitempty"`
	StderrContains   string          `json:"stderrContains,omitempty"`
}

// LoadScenario loads a scenario from a directory containing scenario.json.
func LoadScenario(dir string) (*Scenario, error) {
	data, err := os.ReadFile(filepath.Join(dir, "scenario.json"))
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", dir, err)
	}
	if len(s.Cmd) == 0 {
		return nil, fmt.Errorf("%s: scenario has no cmd", dir)
	}
	return &s, nil
}

// ListScenarios returns all scenario directories under the given root,
// sorted by name.
func ListScenarios(root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			scenarioPath := filepath.Join(root, e.Name(), "scenario.json")
			if _, err := os.Stat(scenarioPath); err == nil {
				dirs = append(dirs, filepath.Join(root, e.Name()))
			}
		}
	}
	sort.Strings(dirs)
	return dirs, nil
}

// NormalizeJSON re-encodes raw so that equal documents compare equal.
func NormalizeJSON(raw []byte) (string, error) {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// IsSubset checks if expected is a subset of actual (for JSON comparison).
func IsSubset(expected, actual any) bool {
	switch e := expected.(type) {
	case map[string]any:
		a, ok := actual.(map[string]any)
		if !ok {
			return false
		}
		for k, ev := range e {
			av, exists := a[k]
			if !exists {
				return false
			}
			if !IsSubset(ev, av) {
				return false
			}
		}
		return true

	case []any:
		a, ok := actual.([]any)
		if !ok {
			return false
		}
		if len(e) > len(a) {
			return false
		}
		for i, ev := range e {
			if !IsSubset(ev, a[i]) {
				return false
			}
		}
		return true

	case float64:
		if af, ok := actual.(float64); ok {
			return e == af
		}
		return false

	case string:
		if as, ok := actual.(string); ok {
			return e == as
		}
		return false

	case bool:
		if ab, ok := actual.(bool); ok {
			return e == ab
		}
		return false

	case nil:
		return actual == nil

	default:
		return fmt.Sprintf("%v", expected) == fmt.Sprintf("%v", actual)
	}
}
