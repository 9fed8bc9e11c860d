// Package cmd implements the tinybc command tree.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/thomasrohde/tinybc/pkg/config"
	"github.com/thomasrohde/tinybc/pkg/diagnostics"
	"github.com/thomasrohde/tinybc/pkg/frontend"
	"github.com/thomasrohde/tinybc/pkg/logging"
)

// Exit codes
const (
	ExitOK          = 0
	ExitUsage       = 1 // usage, IO and config errors
	ExitDiagnostics = 2
)

// exitError carries a process exit code out of a command whose failure
// has already been reported.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func exitWith(code int) error {
	return &exitError{code: code}
}

// app holds global flags and the streams commands write to.
type app struct {
	cfgFile string
	verbose bool
	pretty  bool
	json    bool
	noColor bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	cfg    *config.Config
	logger *slog.Logger
	fe     *frontend.Frontend
	style  styles // stderr
	out    styles // stdout
}

// NewRootCmd builds the tinybc command tree over the given streams.
func NewRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "tinybc [filename]",
		Short: "tinybc - a toy BASIC front end",
		Long: `tinybc tokenizes and parses a small BASIC dialect.

With a filename, tinybc parses the file and prints its expression tree.
Subcommands expose the individual stages.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Usage()
			}
			if len(args) > 1 {
				fmt.Fprintln(a.stderr, a.style.warning("warning: extraneous arguments will be ignored"))
			}
			return a.runParse(args[0])
		},
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./.tinybc.toml, ./.tinybc.yaml, ~/.tinybc/config.toml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging to stderr")
	flags.BoolVar(&a.pretty, "pretty", false, "human-readable diagnostics")
	flags.BoolVar(&a.json, "json", false, "machine-readable JSON output")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newTokensCmd(a),
		newParseCmd(a),
		newCheckCmd(a),
		newFmtCmd(a),
		newReplCmd(a),
		newVersionCmd(a),
	)
	root.SetHelpCommand(newHelpCmd(a))
	return root
}

// setup resolves configuration and builds the logger and frontend.
func (a *app) setup(cmd *cobra.Command) error {
	a.style = newStyles(a.stderr, !a.noColor)
	a.out = newStyles(a.stdout, !a.noColor)

	cwd, _ := os.Getwd()
	cfg, path, err := config.Resolve(a.cfgFile, cwd)
	if err != nil {
		a.reportError(err, "")
		return exitWith(ExitUsage)
	}
	a.cfg = cfg

	if cmd.Flags().Changed("pretty") {
		cfg.Output.Pretty = a.pretty
	}
	if a.json {
		cfg.Output.Format = "json"
		cfg.Output.Pretty = false
	}
	if a.noColor {
		cfg.Output.Color = false
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	a.style = newStyles(a.stderr, cfg.Output.Color)
	a.out = newStyles(a.stdout, cfg.Output.Color)

	a.logger = logging.New(cfg.Log, a.stderr)
	a.fe = frontend.New(frontend.WithConfig(cfg), frontend.WithLogger(a.logger))
	a.logger.Debug("configured",
		slog.String("config", path),
		slog.String("session", a.fe.SessionID()),
		slog.Int("lookahead", cfg.Lexer.Lookahead),
		slog.Int("max_depth", cfg.Parser.MaxDepth))
	return nil
}

func (a *app) jsonOutput() bool {
	return a.cfg.Output.Format == "json"
}

// readSource reads a file, or stdin for "-".
func (a *app) readSource(file string) (string, string, error) {
	if file == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			a.reportDiags([]diagnostics.Diagnostic{
				diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("error reading stdin: %s", err), 1, 1),
			})
			return "", "", exitWith(ExitUsage)
		}
		return string(data), "<stdin>", nil
	}

	source, err := os.ReadFile(file)
	if err != nil {
		a.reportDiags([]diagnostics.Diagnostic{
			diagnostics.MakeDiag(diagnostics.EIO, fmt.Sprintf("cannot read file: %s", file), 1, 1).WithFile(file),
		})
		return "", "", exitWith(ExitUsage)
	}
	return string(source), file, nil
}

// reportDiags writes diagnostics to stderr in the configured format.
func (a *app) reportDiags(diags []diagnostics.Diagnostic) {
	if a.cfg != nil && !a.cfg.Output.Pretty {
		fmt.Fprintln(a.stderr, diagnostics.FormatDiagnostics(diags, false))
		return
	}
	for i, d := range diags {
		if i > 0 {
			fmt.Fprintln(a.stderr)
		}
		fmt.Fprintln(a.stderr, a.style.diagnostic(d))
	}
}

// reportError reports err as diagnostics when it carries any.
func (a *app) reportError(err error, filename string) {
	var de *frontend.DiagnosticError
	if errors.As(err, &de) {
		a.reportDiags(de.Diagnostics)
		return
	}
	if d, ok := diagnostics.FromError(err); ok {
		a.reportDiags([]diagnostics.Diagnostic{d})
		return
	}
	a.reportDiags([]diagnostics.Diagnostic{diagnostics.MakeDiag(diagnostics.EIO, err.Error(), 1, 1).WithFile(filename)})
}

// failDiagnostics reports err and returns the diagnostics exit code.
func (a *app) failDiagnostics(err error, filename string) error {
	a.reportError(err, filename)
	return exitWith(ExitDiagnostics)
}

// Run executes the command tree with args and returns the process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := NewRootCmd(stdin, stdout, stderr)
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return ExitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// cobra usage errors: unknown flags, bad arguments
	fmt.Fprintln(stderr, "error:", err)
	return ExitUsage
}

// Execute runs tinybc with the process arguments.
func Execute() int {
	return Run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}
