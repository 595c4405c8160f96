package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runGenCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewGenCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestGenSingleVariant(t *testing.T) {
	path := writeGrammar(t, "<greeting> ::= \"hello \" <who>\n<who> ::= \"world\"\n")
	out, err := runGenCmd(t, path, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello world\n", out)
}

func TestGenCount(t *testing.T) {
	path := writeGrammar(t, "<a> ::= \"x\"\n")
	out, err := runGenCmd(t, path, "a", "-n", "5")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("x\n", 5), out)
}

func TestGenSeedIsDeterministic(t *testing.T) {
	path := writeGrammar(t, "<coin> ::= \"heads\" | \"tails\"\n")
	first, err := runGenCmd(t, path, "coin", "-n", "20", "--seed", "42")
	require.NoError(t, err)
	second, err := runGenCmd(t, path, "coin", "-n", "20", "--seed", "42")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestGenJSONIncludesSeedAndFingerprint(t *testing.T) {
	path := writeGrammar(t, "<a> ::= \"x\"\n")

	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "json"}
	cmd := NewGenCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path, "a", "--seed", "7"})
	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(7), data["seed"])
	assert.Len(t, data["fingerprint"], 64)
	assert.Equal(t, []any{"x"}, data["outputs"])
}

func TestGenBadRule(t *testing.T) {
	path := writeGrammar(t, "<a> ::= \"x\"\n")
	out, err := runGenCmd(t, path, "ghost")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, `"ghost"`)
}

func TestGenInvalidCount(t *testing.T) {
	path := writeGrammar(t, "<a> ::= \"x\"\n")
	_, err := runGenCmd(t, path, "a", "-n", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGenBuildFailure(t *testing.T) {
	path := writeGrammar(t, "<a> ::= <ghost>\n")
	out, err := runGenCmd(t, path, "a")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "inexistent non-terminal")
}
