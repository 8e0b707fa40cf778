// Package repl provides an interactive loop that shows the scope tree of
// JavaScript typed at the prompt.
//
// Every accepted entry is appended to the session program, so bindings from
// earlier entries stay visible. If an entry is incomplete (an unclosed block
// or call) the loop keeps reading until it parses or a blank line is entered.
// Lines starting with ':' are commands; see :help.
package repl

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"jsscope/internal/diag"
	"jsscope/internal/diagfmt"
	"jsscope/internal/jsparse"
	"jsscope/internal/lint"
	"jsscope/internal/scope"
	"jsscope/internal/scopefmt"
	"jsscope/internal/source"
)

const (
	prompt     = "js> "
	contPrompt = "... "
	sourceName = "<repl>"
)

type outputMode int

const (
	modeTree outputMode = iota
	modeJSON
	modeLint
)

// Session is the state of one REPL: the program typed so far and the output
// settings. It is not safe for concurrent use.
type Session struct {
	out    io.Writer
	color  bool
	module bool
	mode   outputMode
	src    string
}

// NewSession returns an empty session printing to out.
func NewSession(out io.Writer, color bool) *Session {
	return &Session{out: out, color: color}
}

// Source returns the accepted program text.
func (s *Session) Source() string { return s.src }

// REPL runs the interactive loop on the terminal until EOF or :quit.
func REPL(out io.Writer, color bool) error {
	rl, err := readline.NewEx(&readline.Config{Prompt: prompt, Stdout: out})
	if err != nil {
		return err
	}
	defer rl.Close()

	s := NewSession(out, color)
	fmt.Fprintln(out, "type JavaScript to see its scopes, :help for commands")
	var pending strings.Builder
	for {
		if pending.Len() == 0 {
			rl.SetPrompt(prompt)
		} else {
			rl.SetPrompt(contPrompt)
		}
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				pending.Reset()
				fmt.Fprintln(out, err)
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}
		if pending.Len() == 0 && strings.HasPrefix(strings.TrimSpace(line), ":") {
			if s.Command(strings.TrimSpace(line)) {
				return nil
			}
			continue
		}
		pending.WriteString(line)
		pending.WriteByte('\n')
		text := pending.String()
		if strings.TrimSpace(line) != "" && NeedsMore(text) {
			continue
		}
		pending.Reset()
		if strings.TrimSpace(text) != "" {
			s.Eval(text)
		}
	}
}

// NeedsMore reports whether text fails to parse only because it ends early.
func NeedsMore(text string) bool {
	_, err := jsparse.ParseSource(sourceName, text)
	return err != nil && strings.Contains(err.Error(), "Unexpected end of input")
}

// Command runs a :command and reports whether the session should end.
func (s *Session) Command(line string) bool {
	switch fields := strings.Fields(line); fields[0] {
	case ":quit", ":q":
		return true
	case ":help":
		fmt.Fprint(s.out, `:tree     print the scope tree after each entry (default)
:json     print the serialized scope tree after each entry
:lint     print lint diagnostics after each entry
:module   toggle module mode
:source   print the session program
:reset    forget the session program
:quit     leave
`)
	case ":tree":
		s.mode = modeTree
		s.show()
	case ":json":
		s.mode = modeJSON
		s.show()
	case ":lint":
		s.mode = modeLint
		s.show()
	case ":module":
		s.module = !s.module
		if s.module {
			fmt.Fprintln(s.out, "module mode on")
		} else {
			fmt.Fprintln(s.out, "module mode off")
		}
		s.show()
	case ":source":
		fmt.Fprint(s.out, s.src)
	case ":reset":
		s.src = ""
		fmt.Fprintln(s.out, "session cleared")
	default:
		fmt.Fprintf(s.out, "unknown command %s, try :help\n", fields[0])
	}
	return false
}

// Eval appends text to the session program when the result still parses and
// analyzes, then prints it in the current output mode. Rejected entries leave
// the session unchanged.
func (s *Session) Eval(text string) {
	candidate := s.src + text
	if !strings.HasSuffix(candidate, "\n") {
		candidate += "\n"
	}
	if _, err := s.analyze(candidate); err != nil {
		fmt.Fprintln(s.out, err)
		return
	}
	s.src = candidate
	s.show()
}

func (s *Session) analyze(text string) (*scope.GlobalScope, error) {
	prog, err := jsparse.ParseSource(sourceName, text)
	if err != nil {
		return nil, fmt.Errorf("syntax error: %w", err)
	}
	return scope.AnalyzeWith(prog, scope.Options{Module: s.module})
}

func (s *Session) show() {
	if s.src == "" {
		return
	}
	global, err := s.analyze(s.src)
	if err != nil {
		fmt.Fprintln(s.out, err)
		return
	}
	fs := source.NewFileSet()
	script := jsparse.Script{File: fs.AddVirtual(sourceName, []byte(s.src))}

	switch s.mode {
	case modeJSON:
		fmt.Fprintln(s.out, scope.Serialize(global))
	case modeLint:
		bag := diag.NewBag(100)
		lint.Run(global, script.Span, lint.DefaultConfig(), diag.BagReporter{Bag: bag})
		bag.Sort()
		if bag.Len() == 0 {
			fmt.Fprintln(s.out, "no findings")
			return
		}
		diagfmt.Pretty(s.out, bag, fs, diagfmt.PrettyOpts{Color: s.color, PathMode: source.PathBasename, ShowNotes: true})
	default:
		scopefmt.Tree(s.out, global, scopefmt.TreeOpts{
			Color:   s.color,
			Locate:  scopefmt.SpanLocator(fs, script.Span),
			Through: true,
		})
	}
}
