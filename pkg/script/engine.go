// Package script provides the Lisp front end for planeclip.
// It wraps zygomys in a sandboxed environment whose builtins build
// polylines and run them through the clip pipelines, collecting the
// emitted results.
package script

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/chazu/planeclip/pkg/clip"
	"github.com/chazu/planeclip/pkg/config"
	"github.com/chazu/planeclip/pkg/geom"
	zygo "github.com/glycerine/zygomys/zygo"
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int
	Col     int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// EvalWarning represents a non-fatal warning produced during evaluation.
type EvalWarning struct {
	Line    int
	Col     int
	Message string
}

// Output is one named set of polylines produced by a script.
type Output struct {
	Name      string
	Polylines []geom.Polyline
}

// Result is the output of a successful evaluation.
type Result struct {
	Outputs  []Output
	Warnings []EvalWarning
}

// Output returns the output with the given name, or nil.
func (r *Result) Output(name string) *Output {
	for i := range r.Outputs {
		if r.Outputs[i].Name == name {
			return &r.Outputs[i]
		}
	}
	return nil
}

// resultName is the output name given to the value of the last expression
// when the script emits nothing itself.
const resultName = "result"

// Engine wraps the zygomys interpreter for planeclip scripts.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism.
type Engine struct {
	pipeline *clip.Pipeline
	settings config.Settings

	mu         sync.Mutex
	generation uint64
}

// NewEngine creates an Engine whose builtins run on pipeline. settings
// supplies the defaults for every keyword a script leaves out.
func NewEngine(pipeline *clip.Pipeline, settings config.Settings) *Engine {
	return &Engine{pipeline: pipeline, settings: settings}
}

// Evaluate runs Lisp source code and collects its outputs.
// Each call creates a fresh zygomys sandbox for deterministic evaluation.
//
// Return semantics:
//   - On success: returns result + nil errors + nil error
//   - On parse/eval failure: returns nil result + eval errors + nil error
//   - On fatal failure (timeout, panic): returns nil + nil + error
func (e *Engine) Evaluate(source string) (*Result, []EvalError, error) {
	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, evalErrs, err := e.evaluate(source)
		ch <- evalResult{result: res, errors: evalErrs, err: err}
	}()

	return waitWithTimeout(ch, gen, &e.mu, &e.generation)
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func (e *Engine) evaluate(source string) (*Result, []EvalError, error) {
	// Empty source is a valid program that produces nothing.
	if strings.TrimSpace(source) == "" {
		return &Result{}, nil, nil
	}

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	defer env.Stop()

	s := &session{pipeline: e.pipeline, settings: e.settings}
	registerBuiltins(env, s)

	err := env.LoadString(preprocessSource(source))
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	last, err := env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}

	res := &Result{Outputs: s.outputs, Warnings: s.warnings}
	if len(res.Outputs) == 0 {
		if p, ok := last.(*sexpPaths); ok {
			res.Outputs = []Output{{Name: resultName, Polylines: p.pls}}
		}
	}
	return res, nil, nil
}

// linePattern matches zygomys error messages that include "Error on line N: ..."
var linePattern = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	// zygomys formats parse errors as "Error on line N: <details>\n"
	for _, re := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := re.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{
				Line:    line,
				Message: strings.TrimSpace(m[2]),
			}}
		}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
