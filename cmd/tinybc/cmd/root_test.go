package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thomasrohde/tinybc/pkg/config"
	"github.com/thomasrohde/tinybc/pkg/help"
)

type result struct {
	code   int
	stdout string
	stderr string
}

// isolate keeps config discovery away from the developer's files.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.EnvVar, "")
	t.Chdir(dir)
	return dir
}

func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(append([]string{"--no-color"}, args...), strings.NewReader(stdin), &stdout, &stderr)
	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeProgram(t *testing.T, dir, name, source string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return path
}

func TestNoArgumentsPrintsUsage(t *testing.T) {
	isolate(t)
	r := run(t, "")
	assert.Equal(t, ExitOK, r.code)
	assert.Contains(t, r.stdout, "Usage:")
	assert.Contains(t, r.stdout, "tinybc [filename]")
}

func TestFilenameParsesAndPrintsTree(t *testing.T) {
	dir := isolate(t)
	path := writeProgram(t, dir, "p.bas", "let x = 1 + 2 * 3\nprint x")

	r := run(t, "", path)
	assert.Equal(t, ExitOK, r.code, r.stderr)
	assert.Equal(t, "LET x = +(1, *(2, 3))\nPRINT x\n", r.stdout)
	assert.Empty(t, r.stderr)
}

func TestExtraneousArgumentsWarn(t *testing.T) {
	dir := isolate(t)
	path := writeProgram(t, dir, "p.bas", "print 1")

	r := run(t, "", path, "extra", "args")
	assert.Equal(t, ExitOK, r.code)
	assert.Contains(t, r.stderr, "extraneous arguments will be ignored")
	assert.Equal(t, "PRINT 1\n", r.stdout)
}

func TestMissingFile(t *testing.T) {
	isolate(t)
	r := run(t, "", "parse", "nope.bas")
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "E_IO")
	assert.Contains(t, r.stderr, "cannot read file: nope.bas")
}

func TestParseErrorExitCode(t *testing.T) {
	dir := isolate(t)
	path := writeProgram(t, dir, "bad.bas", "let x = (1 + 2")

	r := run(t, "", "parse", path)
	assert.Equal(t, ExitDiagnostics, r.code)
	assert.Contains(t, r.stderr, "error[E_PARSE]: expected closing parenthesis")
	assert.Contains(t, r.stderr, "bad.bas:1:9")
}

func TestParseJSON(t *testing.T) {
	isolate(t)
	r := run(t, "let a = -1 - -2\nprint a", "--json", "parse", "-")
	require.Equal(t, ExitOK, r.code, r.stderr)

	var out parseOutput
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &out))
	assert.Equal(t, "<stdin>", out.File)
	assert.Equal(t, []string{"LET a = -(-(1), -(2))", "PRINT a"}, out.Statements)
}

func TestDiagnosticsJSON(t *testing.T) {
	isolate(t)
	r := run(t, `print "a" "b"`, "--json", "parse", "-")
	assert.Equal(t, ExitDiagnostics, r.code)

	var diags []map[string]any
	require.NoError(t, json.Unmarshal([]byte(r.stderr), &diags))
	require.Len(t, diags, 1)
	assert.Equal(t, "E_PARSE", diags[0]["code"])
	assert.Equal(t, "expected ',' or ';' between expressions, received STRING", diags[0]["message"])
}

func TestTokens(t *testing.T) {
	isolate(t)
	r := run(t, "let x = 7", "tokens", "-")
	assert.Equal(t, ExitOK, r.code)
	assert.Equal(t, "LET at 1:1\nNAME \"x\" at 1:5\nASSIGN at 1:7\nNUMBER \"7\" at 1:9\nEOF at 1:10\n", r.stdout)
}

func TestTokensContinuePastErrors(t *testing.T) {
	isolate(t)
	r := run(t, "1 @# 2\n\"open", "tokens", "-")
	assert.Equal(t, ExitDiagnostics, r.code)
	assert.Contains(t, r.stdout, `NUMBER "1" at 1:1`)
	assert.Contains(t, r.stdout, `NUMBER "2" at 1:6`)
	assert.Contains(t, r.stdout, "EOF at 2:6")
	assert.Contains(t, r.stderr, "E_INVALID_CHAR")
	assert.Contains(t, r.stderr, "expected closing double quotes before end of input")
}

func TestTokensJSON(t *testing.T) {
	isolate(t)
	r := run(t, "1 @", "--json", "tokens", "-")
	assert.Equal(t, ExitDiagnostics, r.code)

	var out struct {
		Tokens  []map[string]any `json:"tokens"`
		Invalid []map[string]any `json:"invalid"`
		Errors  []map[string]any `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &out))
	require.Len(t, out.Tokens, 2)
	assert.Equal(t, "NUMBER", out.Tokens[0]["type"])
	assert.Equal(t, "1", out.Tokens[0]["literal"])
	assert.Len(t, out.Invalid, 1)
	assert.Empty(t, out.Errors)
}

func TestTokensBuffer(t *testing.T) {
	isolate(t)
	r := run(t, "a", "tokens", "--buffer", "-")
	assert.Equal(t, ExitOK, r.code)
	assert.Contains(t, r.stdout, "cap = 3,")
	assert.Contains(t, r.stdout, "----------")
	assert.Contains(t, r.stdout, `NAME "a" at 1:1`)
}

func TestCheck(t *testing.T) {
	dir := isolate(t)
	good := writeProgram(t, dir, "good.bas", "let x = 1\nprint x")
	bad := writeProgram(t, dir, "bad.bas", "let Total = 1\nprint total")

	r := run(t, "", "check", good)
	assert.Equal(t, ExitOK, r.code)
	assert.Contains(t, r.stdout, "No errors found.")

	r = run(t, "", "--json", "check", good)
	assert.Equal(t, ExitOK, r.code)
	assert.Equal(t, "[]\n", r.stdout)

	r = run(t, "", "check", bad)
	assert.Equal(t, ExitDiagnostics, r.code)
	assert.Contains(t, r.stderr, "error[E_UNBOUND]: unbound variable 'total'")
	assert.Contains(t, r.stderr, "did you mean 'Total'?")
}

func TestFmt(t *testing.T) {
	dir := isolate(t)
	path := writeProgram(t, dir, "f.bas", "' comment\nlet x=(1+2)*3\nprint x;x")

	r := run(t, "", "fmt", path)
	assert.Equal(t, ExitOK, r.code)
	assert.Equal(t, "LET x = (1 + 2) * 3\nPRINT x; x\n", r.stdout)
	assert.Contains(t, r.stderr, "comments are not preserved")

	r = run(t, "", "fmt", "--write", path)
	assert.Equal(t, ExitOK, r.code)
	assert.Empty(t, r.stdout)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "LET x = (1 + 2) * 3\nPRINT x; x\n", string(data))

	r = run(t, "print 1", "fmt", "--write", "-")
	assert.Equal(t, ExitUsage, r.code)
}

func TestHelp(t *testing.T) {
	isolate(t)
	r := run(t, "", "help")
	assert.Equal(t, ExitOK, r.code)
	assert.Equal(t, help.QUICKREF, r.stdout)

	r = run(t, "", "help", "expr")
	assert.Equal(t, ExitOK, r.code)
	assert.Equal(t, help.Topics["expressions"], r.stdout)

	r = run(t, "", "help", "tokens")
	assert.Equal(t, help.Topics["tokens"], r.stdout, "topics win over command names")

	r = run(t, "", "help", "fmt")
	assert.Equal(t, ExitOK, r.code)
	assert.Contains(t, r.stdout, "Print a file with upper-case keywords")

	r = run(t, "", "help", "nonexistent")
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "unknown help topic")
}

func TestVersion(t *testing.T) {
	isolate(t)
	r := run(t, "", "version")
	assert.Equal(t, ExitOK, r.code)
	assert.True(t, strings.HasPrefix(r.stdout, "tinybc "+help.Version+"\n"))
}

func TestUnknownFlag(t *testing.T) {
	isolate(t)
	r := run(t, "", "--bogus")
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "unknown flag")
}

func TestConfigFile(t *testing.T) {
	dir := isolate(t)
	writeProgram(t, dir, ".tinybc.toml", "[parser]\nmax_depth = 2\n")
	path := writeProgram(t, dir, "deep.bas", "let x = ((1))")

	r := run(t, "", "parse", path)
	assert.Equal(t, ExitDiagnostics, r.code)
	assert.Contains(t, r.stderr, "E_DEPTH")

	other := writeProgram(t, dir, "other.yaml", "parser:\n  max_depth: 10\n")
	r = run(t, "", "--config", other, "parse", path)
	assert.Equal(t, ExitOK, r.code, r.stderr)
}

func TestInvalidConfig(t *testing.T) {
	dir := isolate(t)
	bad := writeProgram(t, dir, "bad.toml", "[lexer]\nlookahead = 1\n")

	r := run(t, "", "--config", bad, "version")
	assert.Equal(t, ExitUsage, r.code)
	assert.Contains(t, r.stderr, "E_CONFIG")
	assert.Contains(t, r.stderr, "lexer.lookahead")
}

func TestVerboseLogsToStderr(t *testing.T) {
	isolate(t)
	r := run(t, "print 1", "--verbose", "parse", "-")
	assert.Equal(t, ExitOK, r.code)
	assert.Equal(t, "PRINT 1\n", r.stdout)
	assert.Contains(t, r.stderr, "level=DEBUG")
	assert.Contains(t, r.stderr, "component=parser")
	assert.Contains(t, r.stderr, "session=")
}

func TestRepl(t *testing.T) {
	isolate(t)
	input := strings.Join([]string{
		"1 + 2 * 3",
		"let x = -1 - -2",
		`"a" "b"`,
		":tokens x",
		":fmt let y=(1+2)*3",
		":bogus",
		"",
		":quit",
		"print 1",
	}, "\n")

	r := run(t, input, "repl")
	assert.Equal(t, ExitOK, r.code)
	assert.Contains(t, r.stdout, "tinybc REPL")
	assert.Contains(t, r.stdout, "+(1, *(2, 3))\n")
	assert.Contains(t, r.stdout, "LET x = -(-(1), -(2))\n")
	assert.Contains(t, r.stdout, `NAME "x" at 1:1`)
	assert.Contains(t, r.stdout, "LET y = (1 + 2) * 3\n")
	assert.Contains(t, r.stdout, "unknown command :bogus")
	assert.NotContains(t, r.stdout, "PRINT 1", "input after :quit is ignored")
	assert.Contains(t, r.stderr, "received STRING")
}

func TestReplEOF(t *testing.T) {
	isolate(t)
	r := run(t, "print 1", "repl")
	assert.Equal(t, ExitOK, r.code)
	assert.Contains(t, r.stdout, "PRINT 1\n")
}
