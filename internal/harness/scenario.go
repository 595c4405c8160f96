package harness

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description,omitempty"`

	// Grammar is the inline grammar source. Exactly one of Grammar and
	// GrammarFile must be set.
	Grammar string `yaml:"grammar,omitempty"`

	// GrammarFile is a grammar path relative to the scenario file.
	GrammarFile string `yaml:"grammar_file,omitempty"`

	// ExpectBuildError, when set, asserts that building the grammar
	// fails with this code (e.g. "DUPLICATED_NAMES"). Steps must be
	// empty in that case.
	ExpectBuildError string `yaml:"expect_build_error,omitempty"`

	// Steps run in order against the built engine.
	Steps []Step `yaml:"steps,omitempty"`

	// baseDir resolves GrammarFile; set by Load.
	baseDir string
}

// Step is one engine operation with its expectations. Exactly one of
// Generate and Match is set.
type Step struct {
	Generate *GenerateStep `yaml:"generate,omitempty"`
	Match    *MatchStep    `yaml:"match,omitempty"`
}

// GenerateStep expands a rule with a seeded source.
type GenerateStep struct {
	// Rule to expand.
	Rule string `yaml:"rule"`

	// Seed makes the expansion deterministic. Required when Expect is
	// set; defaults to 0.
	Seed int64 `yaml:"seed"`

	// Expect is the exact expected output, checked when non-empty.
	Expect string `yaml:"expect,omitempty"`

	// ExpectMatch additionally round-trips the output through Match on
	// the same rule and asserts a single full-width span.
	ExpectMatch bool `yaml:"expect_match,omitempty"`

	// ExpectError asserts Generate fails (only BAD_RULE exists).
	ExpectError string `yaml:"expect_error,omitempty"`
}

// MatchStep matches text against a rule.
type MatchStep struct {
	Rule  string   `yaml:"rule"`
	Watch []string `yaml:"watch,omitempty"`
	Text  string   `yaml:"text"`

	// ExpectSpans are the expected capture spans as [start, end] pairs,
	// in capture order. Checked when ExpectError is empty.
	ExpectSpans [][2]int `yaml:"expect_spans,omitempty"`

	// ExpectError asserts Match fails with this code
	// (BAD_INITIAL_RULE, BAD_WATCH_RULE or NO_MATCHES).
	ExpectError string `yaml:"expect_error,omitempty"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	sc.baseDir = filepath.Dir(path)

	if err := sc.validate(); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}
	return &sc, nil
}

func (sc *Scenario) validate() error {
	if sc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if (sc.Grammar == "") == (sc.GrammarFile == "") {
		return fmt.Errorf("exactly one of grammar and grammar_file is required")
	}
	if sc.ExpectBuildError != "" && len(sc.Steps) > 0 {
		return fmt.Errorf("expect_build_error excludes steps")
	}
	if sc.ExpectBuildError == "" && len(sc.Steps) == 0 {
		return fmt.Errorf("at least one step is required")
	}
	for i, step := range sc.Steps {
		if (step.Generate == nil) == (step.Match == nil) {
			return fmt.Errorf("step %d: exactly one of generate and match is required", i+1)
		}
	}
	return nil
}

// grammarSource returns the grammar text, reading GrammarFile if needed.
func (sc *Scenario) grammarSource() (string, error) {
	if sc.Grammar != "" {
		return sc.Grammar, nil
	}
	data, err := os.ReadFile(filepath.Join(sc.baseDir, sc.GrammarFile))
	if err != nil {
		return "", fmt.Errorf("read grammar: %w", err)
	}
	return string(data), nil
}
