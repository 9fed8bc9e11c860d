package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/thomasrohde/tinybc/pkg/frontend"
)

const (
	historyFile = ".tinybc_history"
	promptMain  = "tinybc> "
)

const replBanner = `tinybc REPL. Enter statements or expressions; each line prints its tree.
Commands: :tokens <line>, :fmt <line>, :help, :quit`

// lineReader is the part of liner.State the REPL needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// scanReader reads lines from a non-terminal input.
type scanReader struct {
	sc  *bufio.Scanner
	out io.Writer
}

func (r *scanReader) Prompt(prompt string) (string, error) {
	fmt.Fprint(r.out, prompt)
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.sc.Text(), nil
}

func (r *scanReader) AppendHistory(string) {}

func (r *scanReader) Close() error { return nil }

func newReplCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Parse lines interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRepl()
		},
	}
}

func (a *app) runRepl() error {
	fmt.Fprintln(a.stdout, replBanner)

	var reader lineReader
	if f, ok := a.stdin.(*os.File); ok && f == os.Stdin && liner.TerminalSupported() {
		ln := liner.NewLiner()
		ln.SetCtrlCAborts(true)

		home, _ := os.UserHomeDir()
		histPath := filepath.Join(home, historyFile)
		if hf, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(hf)
			_ = hf.Close()
		}
		defer func() {
			if hf, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(hf)
				_ = hf.Close()
			}
		}()
		reader = ln
	} else {
		reader = &scanReader{sc: bufio.NewScanner(a.stdin), out: a.stdout}
	}
	defer reader.Close()

	for {
		line, err := reader.Prompt(promptMain)
		if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
			fmt.Fprintln(a.stdout)
			return nil
		}
		if err != nil {
			return err
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		reader.AppendHistory(line)

		if strings.HasPrefix(trimmed, ":") {
			if done := a.replCommand(trimmed); done {
				return nil
			}
			continue
		}

		parsed, err := a.fe.ParseLine(line)
		if err != nil {
			a.reportError(err, frontend.ReplFile)
			continue
		}
		if tree := parsed.Tree(); tree != "" {
			fmt.Fprintln(a.stdout, tree)
		}
	}
}

// replCommand runs a ':' command and reports whether the REPL should exit.
func (a *app) replCommand(input string) bool {
	name, rest, _ := strings.Cut(input, " ")
	switch strings.ToLower(name) {
	case ":quit", ":q", ":exit":
		return true
	case ":help":
		fmt.Fprintln(a.stdout, replBanner)
	case ":tokens":
		res := a.fe.Tokens(rest, frontend.ReplFile)
		for _, tok := range res.Tokens {
			fmt.Fprintln(a.stdout, a.out.token(tok))
		}
		if !res.OK() {
			a.reportDiags(res.Diagnostics())
		}
	case ":fmt":
		out, err := a.fe.Format(rest, frontend.ReplFile)
		if err != nil {
			a.reportError(err, frontend.ReplFile)
			break
		}
		fmt.Fprint(a.stdout, out)
	default:
		fmt.Fprintf(a.stdout, "unknown command %s. Type :help for commands.\n", name)
	}
	return false
}
