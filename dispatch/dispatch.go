// Package dispatch implements the dispatch engine (X): tokenising a
// submitted line, resolving its first word against aliases, the
// registry, or the unknown hook, and recording it to history.
package dispatch

import (
	"github.com/rostedt/ccli/history"
	"github.com/rostedt/ccli/registry"
	"github.com/rostedt/ccli/token"
)

// Engine runs the dispatch pipeline against a Registry and History
// ring.
type Engine struct {
	reg   *registry.Registry
	hist  *history.Ring
	delim string
}

// New returns an Engine. delim, if non-empty, is the command-chain
// separator (e.g. ";" or "&&"); an empty delim disables chaining.
func New(reg *registry.Registry, hist *history.Ring, delim string) *Engine {
	return &Engine{reg: reg, hist: hist, delim: delim}
}

// SetDelimiter replaces the command-chain separator.
func (e *Engine) SetDelimiter(delim string) {
	e.delim = delim
}

// Outcome is what happened when a line was executed, so the event loop
// can decide whether to terminate and what to echo.
type Outcome struct {
	// RC is the callback/hook's return code; non-zero terminates the
	// event loop.
	RC int
	// Message is text a hook asked to be echoed to the output endpoint.
	Message string
	// ParseError reports that tokenising failed; the caller should echo
	// "Error parsing command\n" and otherwise treat this as a non-fatal,
	// retryable outcome.
	ParseError bool
}

// Execute runs the dispatch pipeline for line. record controls whether
// the line is appended to history.
func (e *Engine) Execute(line string, record bool) Outcome {
	return e.execute(line, record, false)
}

func (e *Engine) execute(line string, record, fromAlias bool) Outcome {
	if e.delim != "" {
		return e.executeChain(line, record)
	}
	return e.executeOne(line, record, fromAlias)
}

// executeChain splits line on the configured delimiter and dispatches
// each sub-statement in order.
func (e *Engine) executeChain(line string, record bool) Outcome {
	statements := token.SplitStatements(line, e.delim)
	var out Outcome
	for _, statement := range statements {
		out = e.executeOne(statement, record, false)
		if out.ParseError || out.RC != 0 {
			return out
		}
	}
	return out
}

func (e *Engine) executeOne(line string, record, fromAlias bool) Outcome {
	argv, _, err := token.Tokenize(line, "")
	if err != nil {
		return Outcome{ParseError: true}
	}

	if len(argv) == 0 {
		rc, msg := e.reg.EnterHook()(line, 0)
		return Outcome{RC: rc, Message: msg}
	}

	if alias, ok := e.reg.LookupAlias(argv[0]); ok && !alias.Executing {
		alias.Executing = true
		expanded := alias.Expansion
		for _, a := range argv[1:] {
			expanded += " " + token.Quote(a)
		}
		out := e.execute(expanded, false, true)
		alias.Executing = false
		if record {
			e.hist.Add(line)
		}
		return out
	}

	var rc int
	var msg string
	if cmd, ok := e.reg.Lookup(argv[0]); ok && cmd.Run != nil {
		r, err := cmd.Run(cmd.Name, line, cmd.Data, argv)
		rc = r
		if err != nil {
			msg = err.Error()
		}
	} else {
		r, m := e.reg.UnknownHook()(argv[0], line, argv)
		rc, msg = r, m
	}

	if record && !fromAlias {
		e.hist.Add(line)
	}

	return Outcome{RC: rc, Message: msg}
}
