package harness

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// ReportJSON renders a report for snapshot comparison. Reports are
// deterministic: seeds are fixed by the scenario and the fingerprint is
// content-addressed.
func ReportJSON(rep *Report) ([]byte, error) {
	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}
	return out, nil
}

// AssertGolden runs the scenario and compares its report against
// testdata/golden/<scenario-name>.golden. Regenerate goldens with
// `go test -update`.
func AssertGolden(t *testing.T, sc *Scenario) {
	t.Helper()

	rep := sc.Run()
	reportJSON, err := ReportJSON(rep)
	if err != nil {
		t.Fatalf("marshal report: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, sc.Name, reportJSON)
}
