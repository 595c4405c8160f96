package harness

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/roach88/bnfkit/internal/ast"
	"github.com/roach88/bnfkit/internal/engine"
	"github.com/roach88/bnfkit/internal/parser"
)

// Report is the outcome of one scenario run. Its JSON form is stable
// and used for golden snapshots.
type Report struct {
	Scenario           string       `json:"scenario"`
	GrammarFingerprint string       `json:"grammar_fingerprint,omitempty"`
	Steps              []StepResult `json:"steps"`
	Passed             bool         `json:"passed"`
}

// StepResult is the outcome of one step. Index 0 is the implicit
// parse-and-build step every scenario starts with.
type StepResult struct {
	Index  int    `json:"index"`
	Kind   string `json:"kind"` // "build", "generate" or "match"
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Run executes the scenario and never returns an error: failures,
// including grammar load failures, become failed step results so a
// report is always produced.
func (sc *Scenario) Run() *Report {
	rep := &Report{Scenario: sc.Name}

	src, err := sc.grammarSource()
	if err != nil {
		rep.Steps = append(rep.Steps, StepResult{Kind: "build", Detail: err.Error()})
		return rep
	}
	rules, err := parser.Parse(src)
	if err != nil {
		rep.Steps = append(rep.Steps, StepResult{Kind: "build", Detail: fmt.Sprintf("parse: %v", err)})
		return rep
	}

	eng, buildErr := engine.Build(rules)
	rep.Steps = append(rep.Steps, sc.buildResult(buildErr))
	if !rep.Steps[0].Passed || buildErr != nil {
		rep.Passed = rep.Steps[0].Passed
		return rep
	}
	rep.GrammarFingerprint = ast.ShortFingerprint(rules)

	for i, step := range sc.Steps {
		var res StepResult
		switch {
		case step.Generate != nil:
			res = runGenerate(rules, eng, step.Generate)
		case step.Match != nil:
			res = runMatch(eng, step.Match)
		}
		res.Index = i + 1
		rep.Steps = append(rep.Steps, res)
	}

	rep.Passed = true
	for _, s := range rep.Steps {
		if !s.Passed {
			rep.Passed = false
			break
		}
	}
	return rep
}

func (sc *Scenario) buildResult(buildErr error) StepResult {
	res := StepResult{Index: 0, Kind: "build"}
	switch {
	case sc.ExpectBuildError == "" && buildErr == nil:
		res.Passed = true
	case sc.ExpectBuildError == "":
		res.Detail = buildErr.Error()
	case buildErr == nil:
		res.Detail = fmt.Sprintf("expected build error %s, grammar built fine", sc.ExpectBuildError)
	default:
		be, ok := engine.IsBuildError(buildErr)
		if ok && string(be.Code) == sc.ExpectBuildError {
			res.Passed = true
			res.Detail = buildErr.Error()
		} else {
			res.Detail = fmt.Sprintf("expected build error %s, got: %v", sc.ExpectBuildError, buildErr)
		}
	}
	return res
}

func runGenerate(rules []ast.Rule, base *engine.Engine, step *GenerateStep) StepResult {
	res := StepResult{Kind: "generate"}

	// A per-step engine keeps each step's seed independent of how many
	// draws earlier steps made. The rules are already validated, so a
	// rebuild cannot fail.
	eng, err := engine.Build(rules, engine.WithRand(rand.New(rand.NewSource(step.Seed))))
	if err != nil {
		res.Detail = fmt.Sprintf("rebuild: %v", err)
		return res
	}

	out, err := eng.Generate(step.Rule)
	if step.ExpectError != "" {
		var ge *engine.GenerateError
		if errors.As(err, &ge) {
			res.Passed = true
			res.Detail = err.Error()
		} else {
			res.Detail = fmt.Sprintf("expected %s, got output %q err %v", step.ExpectError, out, err)
		}
		return res
	}
	if err != nil {
		res.Detail = err.Error()
		return res
	}

	if step.Expect != "" && out != step.Expect {
		res.Detail = fmt.Sprintf("generated %q, expected %q", out, step.Expect)
		return res
	}
	if step.ExpectMatch {
		spans, err := base.Match(step.Rule, []string{step.Rule}, out)
		if err != nil {
			res.Detail = fmt.Sprintf("round-trip of %q failed: %v", out, err)
			return res
		}
		if len(spans) != 1 || spans[0] != (engine.Span{Start: 0, End: len(out)}) {
			res.Detail = fmt.Sprintf("round-trip of %q captured %v, expected full width", out, spans)
			return res
		}
	}

	res.Passed = true
	res.Detail = fmt.Sprintf("generated %q", out)
	return res
}

func runMatch(eng *engine.Engine, step *MatchStep) StepResult {
	res := StepResult{Kind: "match"}

	spans, err := eng.Match(step.Rule, step.Watch, step.Text)
	if step.ExpectError != "" {
		var me *engine.MatchError
		if errors.As(err, &me) && string(me.Code) == step.ExpectError {
			res.Passed = true
			res.Detail = err.Error()
		} else {
			res.Detail = fmt.Sprintf("expected %s, got spans %v err %v", step.ExpectError, spans, err)
		}
		return res
	}
	if err != nil {
		res.Detail = err.Error()
		return res
	}

	want := make([]engine.Span, len(step.ExpectSpans))
	for i, p := range step.ExpectSpans {
		want[i] = engine.Span{Start: p[0], End: p[1]}
	}
	if len(spans) != len(want) {
		res.Detail = fmt.Sprintf("captured %v, expected %v", spans, want)
		return res
	}
	for i := range want {
		if spans[i] != want[i] {
			res.Detail = fmt.Sprintf("captured %v, expected %v", spans, want)
			return res
		}
	}

	res.Passed = true
	res.Detail = fmt.Sprintf("captured %d span(s)", len(spans))
	return res
}
