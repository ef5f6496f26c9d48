// Package expand implements the inline "$"-prefixed variable-substitution
// engine of spec §4.5 (C6): a registry of (prefix, callback) pairs, each
// scanned left-to-right for the earliest unmasked match, looped until no
// callback matches. Modeled after the teacher's expand/expand.go Fields/
// Literal two-pass word expander, generalized from POSIX "$" parameter
// expansion to the cheat script's smaller, bracket-delimited prefix family.
package expand

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/grindhollow/cheatscript/syntax"
	"github.com/grindhollow/cheatscript/vars"
)

// Frame is the per-invocation context a substitution callback reads from:
// the current script instance's parameter vector and variable scope
// chain (spec §4.5's "current frame").
type Frame struct {
	Params []string
	Scope  *vars.Chain
}

// ArgsJoined returns the frame's parameter vector, space-joined.
func (f *Frame) ArgsJoined() string {
	return strings.Join(f.Params, " ")
}

// RunSubScript executes a "$result[...]" block as a nested sub-script and
// reports the value its root scope's "result" variable held afterward.
// The Engine never runs script text itself; this hook is supplied by the
// interpreter, keeping the substitution engine free of any dependency on
// the scheduler (spec §4.5, $result).
type RunSubScript func(body string, fr *Frame) (string, error)

// Browse opens a host file picker with the given "|"-separated options and
// returns the chosen filename, or "" if nothing was chosen. The spec
// leaves this platform-gated; a nil Browse (or one that always returns "")
// is a valid, documented stub (see SPEC_FULL.md).
type Browse func(options []string) (string, error)

// Prefix is one registered substitution family: Name is both its disable-
// list key and (for prefixes with no bracket argument, like "$args" and
// "$none") the literal text matched outright.
type Prefix struct {
	Name       string
	Bracketed  bool // true if Name is always followed by "[...]"
	AllowsBare bool // true if the bare (non-bracketed) spelling also matches

	// Expand computes the replacement for a single match. raw is the
	// bracket interior (empty string if AllowsBare matched the bare
	// spelling). It returns the rewritten substring and whether the
	// match should be consumed; a false return means "move past this
	// occurrence and keep scanning" (a malformed match, spec §4.5).
	Expand func(e *Engine, fr *Frame, raw string) (string, bool)
}

// Engine holds the ordered prefix table and the optional hooks prefixes
// may call back into.
type Engine struct {
	prefixes []Prefix
	Run      RunSubScript
	Browse   Browse
}

// New builds the standard Engine implementing every prefix in spec §4.5:
// "$args[...]", "$args.count", "$args", "$mem[...]", "$result[...]",
// "$browse[...]", and the never-matching "$none" sentinel.
func New(run RunSubScript, browse Browse) *Engine {
	e := &Engine{Run: run, Browse: browse}
	e.prefixes = []Prefix{
		{Name: "$none", Expand: func(*Engine, *Frame, string) (string, bool) { return "", false }},
		{Name: "$args.count", Expand: expandArgsCount},
		{Name: "$args", Bracketed: true, AllowsBare: true, Expand: expandArgs},
		{Name: "$mem", Bracketed: true, Expand: expandMem},
		{Name: "$result", Bracketed: true, Expand: expandResult},
		{Name: "$browse", Bracketed: true, Expand: expandBrowse},
	}
	return e
}

// Expand repeatedly rewrites line against fr until no registered prefix
// not named in disabled matches, returning the fully expanded text.
// disabled suppresses specific prefix names — used while capturing a
// "#call" body to defer "$args"/"$args.count" to the callee's frame
// (spec §4.5).
func (e *Engine) Expand(line string, fr *Frame, disabled ...string) string {
	disabledSet := make(map[string]bool, len(disabled))
	for _, d := range disabled {
		disabledSet[d] = true
	}

	for {
		rewritten, matched := e.expandOnce(line, fr, disabledSet)
		if !matched {
			return line
		}
		line = rewritten
	}
}

// candidate is one textual occurrence of a registered prefix, with its
// bracket interior already isolated (if any).
type candidate struct {
	prefix  Prefix
	start   int
	closeAt int
	raw     string
	valid   bool // false if a bracketed prefix matched but the bracket was unbalanced
}

// expandOnce performs one left-to-right scan of line for every occurrence
// of every non-disabled prefix, then tries each candidate in textual order
// until one callback succeeds, applying its replacement. Per spec §4.5,
// "on failure the engine moves past that prefix and tries the next" — so
// a malformed or refused match does not abort the scan, it just isn't
// chosen.
func (e *Engine) expandOnce(line string, fr *Frame, disabled map[string]bool) (string, bool) {
	var candidates []candidate
	for _, p := range e.prefixes {
		if disabled[p.Name] {
			continue
		}
		candidates = append(candidates, e.findOccurrences(line, p)...)
	}
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].start < candidates[j].start })

	for _, c := range candidates {
		if !c.valid {
			continue
		}
		replacement, ok := c.prefix.Expand(e, fr, c.raw)
		if !ok {
			continue
		}
		return line[:c.start] + replacement + line[c.closeAt:], true
	}
	return line, false
}

// findOccurrences locates every textual occurrence of p in line.
func (e *Engine) findOccurrences(line string, p Prefix) []candidate {
	var out []candidate
	searchFrom := 0
	for {
		idx := strings.Index(line[searchFrom:], p.Name)
		if idx < 0 {
			break
		}
		start := searchFrom + idx
		end := start + len(p.Name)

		switch {
		case !p.Bracketed:
			out = append(out, candidate{prefix: p, start: start, closeAt: end, valid: true})
		case end < len(line) && line[end] == '[':
			openIdx, closeIdx, ok := syntax.FindBracketPair(line, '[', ']', end)
			if ok {
				out = append(out, candidate{prefix: p, start: start, closeAt: closeIdx + 1, raw: line[openIdx+1 : closeIdx], valid: true})
			} else {
				out = append(out, candidate{prefix: p, start: start, closeAt: end, valid: false})
			}
		case p.AllowsBare:
			out = append(out, candidate{prefix: p, start: start, closeAt: end, valid: true})
		}
		searchFrom = start + 1
	}
	return out
}

func expandArgsCount(_ *Engine, fr *Frame, _ string) (string, bool) {
	return strconv.Itoa(len(fr.Params)), true
}

func expandArgs(_ *Engine, fr *Frame, raw string) (string, bool) {
	if raw == "" {
		return fr.ArgsJoined(), true
	}
	lo, hi, ok := parseIndexOrSlice(raw, len(fr.Params))
	if !ok {
		return "", false
	}
	return strings.Join(fr.Params[lo:hi], " "), true
}

// parseIndexOrSlice parses raw as either a single non-negative integer
// index or a "start:end" slice (either side optional), clamped to
// [0, n], per spec §4.5 ("empty index joins all").
func parseIndexOrSlice(raw string, n int) (lo, hi int, ok bool) {
	if idx := strings.IndexByte(raw, ':'); idx >= 0 {
		loStr, hiStr := raw[:idx], raw[idx+1:]
		lo, hi = 0, n
		if loStr != "" {
			v, err := strconv.Atoi(loStr)
			if err != nil {
				return 0, 0, false
			}
			lo = v
		}
		if hiStr != "" {
			v, err := strconv.Atoi(hiStr)
			if err != nil {
				return 0, 0, false
			}
			hi = v + 1
		}
	} else {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, false
		}
		lo, hi = v, v+1
	}
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	if lo > hi {
		lo = hi
	}
	return lo, hi, true
}

func expandMem(_ *Engine, fr *Frame, raw string) (string, bool) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", false
	}
	v, _ := fr.Scope.GetRootOrGlobal(name)
	return v.String(), true
}

func expandResult(e *Engine, fr *Frame, raw string) (string, bool) {
	if e.Run == nil {
		return "", false
	}
	result, err := e.Run(raw, fr)
	if err != nil {
		return "", false
	}
	return result, true
}

func expandBrowse(e *Engine, _ *Frame, raw string) (string, bool) {
	if e.Browse == nil {
		return "", true
	}
	options := strings.Split(raw, "|")
	chosen, err := e.Browse(options)
	if err != nil {
		return "", false
	}
	return chosen, true
}

// ErrBadBracket names the malformed-bracket-argument failure. Nothing in
// this package returns it: Expand skips a malformed bracket argument and
// moves on without reporting an error.
var ErrBadBracket = fmt.Errorf("expand: malformed bracket argument")
