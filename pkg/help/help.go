// Package help holds the tinybc quick reference and help topics.
package help

import (
	"fmt"
	"sort"
	"strings"
)

// Version is the tinybc release reported by the CLI.
const Version = "v0.3.0"

// TopicList is the display order of help topics.
var TopicList = []string{"syntax", "tokens", "expressions", "statements", "diagnostics", "config", "examples"}

// QUICKREF is printed by `tinybc help` with no topic.
var QUICKREF = `tinybc ` + Version + ` - a toy BASIC front end

USAGE
  tinybc <file>              parse a file and print its tree
  tinybc tokens <file>       list tokens (--buffer dumps the lookahead ring)
  tinybc parse <file>        print the prefix tree
  tinybc check <file>        parse and report unbound names
  tinybc fmt <file>          print canonical source (--write to rewrite)
  tinybc repl                interactive line parser
  tinybc help [topic]        show help

TOPICS
  syntax        lexical rules: keywords, names, numbers, strings, comments
  tokens        token kinds and how they render
  expressions   operators, precedence and associativity
  statements    LET and PRINT
  diagnostics   error codes and what they mean
  config        .tinybc.toml / .tinybc.yaml settings
  examples      small programs

Use "tinybc help <topic>" (prefixes work: "tinybc help expr").
`

// Topics maps topic names to their help text.
var Topics = map[string]string{
	"syntax": `SYNTAX

Keywords      LET and PRINT, any case. They match as prefixes, so
              "letter" reads as LET followed by the name "ter".
Names         letters, '_' and '$'. Digits end a name: "a1" is a, 1.
Numbers       digits with at most one '.'; leading zeros are dropped
              ("007" is 7, "00.5" is 0.5). "1.2.3" is an error.
Strings       "..." on one line. Escapes: \n \t \" \; any other
              escaped character stands for itself.
Comments      REM or ' to the end of the line.
Whitespace    spaces, tabs, carriage returns and newlines separate
              tokens. A NUL byte ends the input.
`,
	"tokens": `TOKENS

LET PRINT NUMBER STRING NAME ASSIGN BINARY_OP UNARY_OP
OPEN_PAREN CLOSE_PAREN COMMA SEMICOLON EOF

A token renders as KIND ["literal"] at LINE:COLUMN:
  NUMBER "7" at 1:1
  BINARY_OP '+' at 1:3
  EOF at 1:4

'-' is binary after a number, a name or ')', and unary everywhere else.
Lines and columns start at 1; a tab counts as one column.
`,
	"expressions": `EXPRESSIONS

Operator  Meaning      Binding power  Associativity
  + -     add, sub     1 / 2          left
  * /     mul, div     3 / 4          left
  -x      negate       _ / 5          prefix
  ^       power        7 / 6          right

  1 + 2 * 3    =>  +(1, *(2, 3))
  2 ^ 3 ^ 2    =>  ^(2, ^(3, 2))
  -1 - -2      =>  -(-(1), -(2))
  -2 ^ 2       =>  -(^(2, 2))

Function calls are name(args, ...). Strings are only allowed as whole
elements of a PRINT list; math on strings is an error.
`,
	"statements": `STATEMENTS

LET name = expression
PRINT [expression {(,|;) expression}]

Statements may share a line. PRINT keeps the separators it was given.
`,
	"diagnostics": `DIAGNOSTICS

E_LEX           unterminated string or malformed number
E_INVALID_CHAR  a run of characters that cannot start a token
E_PARSE         unexpected or missing token
E_DEPTH         expression nested deeper than parser.max_depth
E_UNBOUND       name read before any LET assigns it (check only)
E_IO            file could not be read or written
E_CONFIG        configuration file is invalid

Each diagnostic has a line and column (both from 1); some also carry an
error column pointing at the offending token and a hint.
Exit codes: 0 ok, 1 usage/IO/config error, 2 diagnostics.
`,
	"config": `CONFIG

Looked up in order: --config, $TINYBC_CONFIG, ./.tinybc.toml,
./.tinybc.yaml, ~/.tinybc/config.toml, built-in defaults.

  [lexer]
  lookahead = 3        # ring buffer slots, at least 2

  [parser]
  max_depth = 256      # nesting limit, at least 1

  [output]
  pretty = true
  color = true
  format = "text"      # or "json"

  [log]
  level = "warn"       # debug, info, warn, error
  format = "text"      # or "json"
`,
	"examples": `EXAMPLES

  ' compound interest
  let rate = 0.05
  let total = 100 * (1 + rate) ^ 10
  print "total: "; total

  $ tinybc parse interest.bas
  LET rate = 0.05
  LET total = *(100, ^(+(1, rate), 10))
  PRINT "total: "; total
`,
}

// MatchTopic resolves a topic by exact name or unique prefix.
func MatchTopic(query string) (string, string, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if content, ok := Topics[query]; ok {
		return query, content, nil
	}

	var matches []string
	if query != "" {
		for _, name := range TopicList {
			if strings.HasPrefix(name, query) {
				matches = append(matches, name)
			}
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], Topics[matches[0]], nil
	case 0:
		return "", "", fmt.Errorf("unknown help topic %q (topics: %s)", query, strings.Join(TopicList, ", "))
	default:
		sort.Strings(matches)
		return "", "", fmt.Errorf("ambiguous help topic %q matches %s", query, strings.Join(matches, ", "))
	}
}
