package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/datamartlab/logmart/internal/normalize"
	"github.com/datamartlab/logmart/internal/replay"
)

// goldenView is the deterministic projection of a Result: pass IDs are
// random per run and therefore blanked before comparison.
type goldenView struct {
	Report normalize.Report `json:"report"`
	Passes []replay.Summary `json:"passes"`
}

// AssertGolden compares a result against testdata/golden/{name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	view := goldenView{
		Report: result.Report,
		Passes: make([]replay.Summary, len(result.Summaries)),
	}
	for i, s := range result.Summaries {
		s.PassID = ""
		view.Passes[i] = s
	}

	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden view: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}
