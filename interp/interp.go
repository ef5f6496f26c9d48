// Package interp implements the per-tick cooperative script-stack
// scheduler and "#"-command dispatcher of spec §4.7/§4.8 (C8, C9): it
// owns the stack of running script.Instance frames, drives them forward
// on each Tick, and interprets each block/control-flow command against a
// frame's cursor and nesting stack.
//
// Grounded on original_source/Visual/Cheats/CheatScript.cpp's
// ScriptInterpreter::ProcessScriptStack/ProcessScriptStacks (the
// process_script/iteration/loop closures) and ::HandleScriptCommand's
// switch, reshaped the way the teacher's interp.Runner.Run turns a
// recursive AST walk into explicit Go control flow — here an explicit
// cursor loop rather than recursion, since the source domain already is
// cursor-driven.
package interp

import (
	"fmt"

	"github.com/grindhollow/cheatscript/cache"
	"github.com/grindhollow/cheatscript/eval"
	"github.com/grindhollow/cheatscript/expand"
	"github.com/grindhollow/cheatscript/script"
	"github.com/grindhollow/cheatscript/syntax"
	"github.com/grindhollow/cheatscript/vars"
)

// Result is the value a command handler returns to tell the scheduler how
// to proceed (spec §4.7).
type Result int

const (
	Continue Result = iota
	NextLine
	ReEnterLoop
	TerminateScript
	TerminateAllScripts
)

// Host receives text the interpreter could not handle itself (ordinary
// chat lines via SendChat, diagnostic/user-facing notices via PrintMsg),
// gates whether ticking may proceed at all (Ready), and supplies the
// invocation-specific preamble a "#call" sends ahead of its body
// (ExternalScriptHeader). Kept as a small interface so tests can supply a
// recording fake without pulling in any real transport, the way the
// teacher keeps interp.ExecHandler pluggable.
type Host interface {
	PrintMsg(msg string)
	SendChat(text string)

	// Ready reports whether the scheduler may advance any script stack
	// right now (spec §4.8; the original's ProcessScriptStacks "if
	// (!Ready()) return" gate — e.g. the host's game state isn't loaded
	// yet).
	Ready() bool

	// ExternalScriptHeader returns the preamble text to prepend to a
	// "#call"'s body before handing it to the ExternalCaller, keyed by
	// the call target (Open Question Decision #1 in SPEC_FULL.md).
	ExternalScriptHeader(target string) string
}

// ExternalCaller executes a "#call" body against an out-of-process (or
// otherwise external) script executor, per spec §4.7. body is the
// verbatim, already variable-substituted "#call...#end" interior split
// into lines; header is the Host-supplied preamble (possibly empty). If
// the call yields a follow-up script to run immediately, ok is true and
// result holds its text (fed back through ProcessScript).
type ExternalCaller interface {
	CallExternal(target string, body []string, header string) (result string, ok bool)
}

// Option configures an Interpreter at construction time, following the
// functional-options pattern the teacher uses for interp.New/RunnerOption.
type Option func(*Interpreter)

// WithExternalCaller wires the "#call" executor.
func WithExternalCaller(c ExternalCaller) Option {
	return func(in *Interpreter) { in.External = c }
}

// WithBrowse wires the "$browse[...]" file-picker hook.
func WithBrowse(b expand.Browse) Option {
	return func(in *Interpreter) { in.browse = b }
}

// WithWarpVerbs overrides the default "teleport-family" verb predicate
// used to decide when a chat line should pause the frame (spec §4.8 step
// 2e). The default set is documented in SPEC_FULL.md's Open Question #4.
func WithWarpVerbs(verbs []string) Option {
	return func(in *Interpreter) {
		set := make(map[string]bool, len(verbs))
		for _, v := range verbs {
			set[v] = true
		}
		in.isWarpVerb = func(word string) bool { return set[word] }
	}
}

// WithAliasWarner sets the callback that receives the one-shot
// deprecated-command-spelling notices raised while parsing ad-hoc scripts.
func WithAliasWarner(warn syntax.AliasWarner) Option {
	return func(in *Interpreter) { in.aliasWarner = warn }
}

// Interpreter owns global state shared across every running script stack:
// the parse cache, the global variable tier, the substitution engine, and
// the host hooks. It is not safe for concurrent use — spec §5 designates
// a single execution thread as the sole owner of stack mutation.
type Interpreter struct {
	Cache  *cache.Cache
	Global *vars.Scope
	Host   Host

	External ExternalCaller
	browse   expand.Browse

	isWarpVerb  func(word string) bool
	aliasWarner syntax.AliasWarner

	expander *expand.Engine

	stacks      []stack
	activeStack int
	lockDepth   int

	launched    bool
	loopTimerMs int
	loopAccumMs int
}

// stack is one independent chain of nested script.Instance frames — the
// original's std::stack<Script_t>, here a plain slice used top-at-end.
type stack []*script.Instance

func (s stack) top() *script.Instance  { return s[len(s)-1] }
func (s stack) empty() bool            { return len(s) == 0 }
func (s stack) pop() stack             { return s[:len(s)-1] }

// New builds an Interpreter over an already-populated Cache and global
// scope.
func New(c *cache.Cache, global *vars.Scope, host Host, opts ...Option) *Interpreter {
	in := &Interpreter{
		Cache:       c,
		Global:      global,
		Host:        host,
		isWarpVerb:  DefaultWarpVerbs,
		loopTimerMs: LoopIntervalMs,
		activeStack: -1,
	}
	for _, opt := range opts {
		opt(in)
	}
	in.expander = expand.New(in.runSubScript, in.browse)
	return in
}

// LoopIntervalMs is the default interval, in milliseconds, between
// automatic invocations of a cached "loop" script, counted whether or not
// a stack is running (spec §4.10's "invoked at the host-specified rate (default 60
// Hz)" — 1000ms/60 rounded to a tidy constant).
const LoopIntervalMs = 16

// DefaultWarpVerbs implements the fallback "teleport-family" predicate:
// the PoE-shaped verb set named in SPEC_FULL.md's Open Question #4,
// matching original_source's IsWarpCheat verb list. word is the lowercased
// first word of a chat line with any leading "/" or "/." stripped.
func DefaultWarpVerbs(word string) bool {
	switch word {
	case "warp", "warpboss", "newarea", "changearea", "areachange",
		"teleport", "hideout", "guild", "delvetest", "sanctumtest":
		return true
	default:
		return false
	}
}

// PushScript pushes file as a new frame (spec §4.8). If a stack is
// currently being ticked (in.activeStack valid), file is pushed as a
// nested frame sharing that stack's current top's root scope — the
// reentrant case "#call" and a hotkey fired mid-tick hit. Otherwise a
// brand-new stack is created, matching the original's
// ProcessFile/ProcessScript "script_stacks.empty() || active_stack == -1"
// branch. Either way the new frame is drained to quiescence immediately,
// before PushScript returns, mirroring the original calling
// ProcessScriptStack(stack) synchronously right after the push.
func (in *Interpreter) PushScript(file *syntax.File, params []string) {
	reentrant := in.activeStack >= 0 && in.activeStack < len(in.stacks)

	idx := in.activeStack
	if !reentrant {
		in.stacks = append(in.stacks, stack{})
		idx = len(in.stacks) - 1
		in.activeStack = idx
	}

	var inst *script.Instance
	if !in.stacks[idx].empty() {
		inst = script.NewNested(file, in.stacks[idx].top(), params)
	} else {
		inst = script.New(file, in.Global, params)
	}
	in.initLineData(inst)
	in.stacks[idx] = append(in.stacks[idx], inst)

	in.runStack(idx)

	if !reentrant {
		in.activeStack = -1
	}
}

// ProcessFile looks up name in the cache and pushes it as a new script.
// ok is false if no such script is cached.
func (in *Interpreter) ProcessFile(name string, params []string) bool {
	entry, ok := in.Cache.GetCachedScript(name)
	if !ok {
		return false
	}
	in.PushScript(entry.File, params)
	return true
}

// ProcessScript parses text as an unnamed, ad-hoc script body (the
// "/paste"/chat-triggered-script path) and pushes it.
func (in *Interpreter) ProcessScript(text string) error {
	file, err := syntax.NewParser(in.aliasWarner).Parse(text, "")
	if err != nil {
		return fmt.Errorf("interp: parsing ad-hoc script: %w", err)
	}
	in.PushScript(file, nil)
	return nil
}

// initLineData seeds every line's repeat target with that line's
// comma-split-stage repeat count, mirroring ReadFile's data.resize loop:
// a plain " xN" suffix on an ordinary chat line feeds directly into the
// repeat machinery without ever going through "#repeat" at all.
func (in *Interpreter) initLineData(s *script.Instance) {
	for i, line := range s.File.Lines {
		s.SetRepeatTarget(i, line.RepeatCount)
	}
}

// StopAll drops every frame on every stack immediately (spec §4.7
// "#stop"/§5 StopScriptStack).
func (in *Interpreter) StopAll() {
	in.stacks = nil
	in.activeStack = -1
}

// Running reports whether any stack currently has frames.
func (in *Interpreter) Running() bool {
	for _, s := range in.stacks {
		if !s.empty() {
			return true
		}
	}
	return false
}

// runSubScript implements expand.RunSubScript for "$result[...]": it
// parses body as an ad-hoc script, runs it to completion synchronously
// (not through the normal tick-bounded scheduler — spec §4.5 treats this
// as an eager nested evaluation), and returns its root scope's "result".
func (in *Interpreter) runSubScript(body string, fr *expand.Frame) (string, error) {
	file, err := syntax.NewParser(in.aliasWarner).Parse(body, "")
	if err != nil {
		return "", err
	}
	sub := script.New(file, in.Global, nil)
	in.initLineData(sub)
	if err := in.drainSynchronously(sub); err != nil {
		return "", err
	}
	v, _ := sub.Scope.Local.Get("result")
	return v.String(), nil
}

// drainSynchronously runs a single frame (with no stack siblings, no
// pause handling beyond a hard cap) to completion; used only by
// "$result[...]"'s eager nested evaluation. A pause mid-script (one would
// be unusual inside a "$result[...]" body, but is not itself an error) is
// treated as "done for now" rather than looped on forever.
func (in *Interpreter) drainSynchronously(s *script.Instance) error {
	guard := 0
	const maxSteps = 1_000_000
	for !s.Finished() {
		guard++
		if guard > maxSteps {
			return fmt.Errorf("interp: $result sub-script exceeded step limit")
		}
		res, err := in.runFrame(s)
		if err != nil {
			if recoverTry(s, abortReason(err)) {
				continue
			}
			return err
		}
		if res != iterLoop {
			return nil
		}
	}
	return nil
}
