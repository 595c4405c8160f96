package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHistoryCmd(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: format}
	cmd := NewHistoryCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestHistoryAfterRecordedRuns(t *testing.T) {
	grammar := writeGrammar(t, "<greeting> ::= \"hello\"\n")
	db := filepath.Join(t.TempDir(), "history.db")

	_, err := runGenCmd(t, grammar, "greeting", "--record", db)
	require.NoError(t, err)
	_, err = runMatchCmd(t, "text", grammar, "greeting", "hello", "--record", db)
	require.NoError(t, err)

	out, err := runHistoryCmd(t, "text", db)
	require.NoError(t, err)
	assert.Contains(t, out, "gen\tgreeting")
	assert.Contains(t, out, "match\tgreeting")
	assert.Contains(t, out, "2 of 2 run(s)")
}

func TestHistoryKindFilter(t *testing.T) {
	grammar := writeGrammar(t, "<a> ::= \"x\"\n")
	db := filepath.Join(t.TempDir(), "history.db")

	_, err := runGenCmd(t, grammar, "a", "--record", db, "-n", "3")
	require.NoError(t, err)
	_, err = runMatchCmd(t, "text", grammar, "a", "x", "--record", db)
	require.NoError(t, err)

	out, err := runHistoryCmd(t, "json", db, "--kind", "gen")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(3), data["total"])
	runs := data["runs"].([]any)
	require.Len(t, runs, 3)
	for _, r := range runs {
		assert.Equal(t, "gen", r.(map[string]any)["kind"])
	}
}

func TestHistoryGrammarFilterAcceptsShortFingerprint(t *testing.T) {
	g1 := writeGrammar(t, "<a> ::= \"x\"\n")
	db := filepath.Join(t.TempDir(), "history.db")

	_, err := runGenCmd(t, g1, "a", "--record", db)
	require.NoError(t, err)

	// other grammar, other fingerprint
	g2 := writeGrammar(t, "<b> ::= \"y\"\n")
	_, err = runGenCmd(t, g2, "b", "--record", db)
	require.NoError(t, err)

	// fish the first run's fingerprint out of a JSON listing
	out, err := runHistoryCmd(t, "json", db)
	require.NoError(t, err)
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	runs := resp.Data.(map[string]any)["runs"].([]any)
	require.Len(t, runs, 2)
	full := runs[1].(map[string]any)["grammar_hash"].(string)

	filtered, err := runHistoryCmd(t, "json", db, "--grammar", full[:12])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(filtered), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), data["total"])
}

func TestHistoryMissingDatabase(t *testing.T) {
	_, err := runHistoryCmd(t, "text", filepath.Join(t.TempDir(), "nope.db"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestHistoryRejectsBadKind(t *testing.T) {
	db := filepath.Join(t.TempDir(), "history.db")
	_, err := runHistoryCmd(t, "text", db, "--kind", "replay")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
