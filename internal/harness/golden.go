package harness

import (
	"context"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/treeq/internal/ir"
)

// Snapshot builds the canonical JSON recorded in golden files: scenario
// name plus, per case, the compiled SQL, result ids and error code.
// Pass/fail state is not recorded; it is checked by the case expectations.
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	cases := make([]any, len(result.Cases))
	for i, c := range result.Cases {
		entry := map[string]any{
			"name": c.Name,
			"kind": c.Kind,
		}
		if c.SQL != "" {
			entry["sql"] = c.SQL
		}
		if c.Kind == KindSearch && c.ErrorCode == "" {
			ids := make([]any, len(c.IDs))
			for j, id := range c.IDs {
				ids[j] = id
			}
			entry["ids"] = ids
		}
		if c.ErrorCode != "" {
			entry["error_code"] = c.ErrorCode
		}
		cases[i] = entry
	}

	return ir.MarshalCanonical(map[string]any{
		"scenario_name": scenarioName,
		"cases":         cases,
	})
}

// RunWithGolden executes a scenario, fails t on any case error and compares
// the snapshot against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		return err
	}
	for _, e := range result.Errors {
		t.Errorf("%s: %s", scenario.Name, e)
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares the given result against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
