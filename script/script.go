// Package script implements a single running script instance (spec §4.6,
// C7): its cursor into a parsed file, its per-line repeat bookkeeping, its
// runtime nesting stack, its parameter vector and local variable scope,
// and the handful of cursor-movement primitives the dispatcher builds on
// (FindEnd, MoveToNextTag, TryIncrement).
//
// Grounded on original_source/Visual/Cheats/CheatScript.h's Script/
// ScriptFile::Line/LineData structs and CheatScript.cpp's Push/Pop/Top,
// FindEnd, MoveToNextTag and TryIncrement free functions (lines ~151-288),
// reshaped into methods on a Go struct the way the teacher turns the
// POSIX shell's per-subshell execution state into interp.Runner fields.
package script

import (
	"fmt"

	"github.com/grindhollow/cheatscript/syntax"
	"github.com/grindhollow/cheatscript/token"
	"github.com/grindhollow/cheatscript/vars"
)

// PauseReason classifies why an Instance is not currently being advanced
// by the scheduler (spec §4.6's pause kinds).
type PauseReason int

const (
	NoPause PauseReason = iota
	PauseDuration
	PauseTeleport
	PauseAction
	PauseFence
	PauseSingleFrame
)

// Pause records the current pause state of an Instance. DurationTicks is
// only meaningful when Reason is PauseDuration.
type Pause struct {
	Reason        PauseReason
	DurationTicks int
}

func (p Pause) IsPaused() bool { return p.Reason != NoPause }

// lineState holds the mutable, per-instance repeat-execution progress for
// one line of the (immutable, shared) parsed file: how many times its
// "#repeat" block has looped, the target iteration count, and — for the
// "#end" line closing a "#repeat" block — the line index of that block's
// "#repeat" header (spec §4.6's repeat counters, original's Script::LineData).
type lineState struct {
	repeats   int
	repeatMax int
	pairLine  int
}

// Instance is one entry of the per-tick cooperative script-stack (C8):
// either a root script (Root == nil and Scope.Root == nil, its Scope.Local
// serving as the root-script scope) or a
// nested invocation pushed by "#call" or a hotkey while a root script was
// already running, sharing the root's variable scope via vars.Chain.
type Instance struct {
	File *syntax.File
	Root *Instance

	Cursor int // index into File.Lines — the original's line_number
	Depth  int // index into the current line's comma-split pieces

	Scope  *vars.Chain
	Params []string

	InTry  bool
	Locked bool
	Pause  Pause

	nestStack []token.Tag
	lines     []lineState
}

// New creates a root Instance over file, with a fresh local scope chained
// to global.
func New(file *syntax.File, global *vars.Scope, params []string) *Instance {
	return &Instance{
		File:   file,
		Scope:  vars.NewChain(nil, global),
		Params: params,
		lines:  make([]lineState, len(file.Lines)),
	}
}

// NewNested creates an Instance that shares root's scope chain (root
// scope and global tier), the shape "#call" and hotkey-triggered
// invocations use when they are not themselves the bottom of the stack.
// root need not itself be a root instance — passing an already-nested
// frame still resolves to the ultimate ancestor's scope, so a "#call"
// fired from inside another "#call" nests correctly.
func NewNested(file *syntax.File, root *Instance, params []string) *Instance {
	ultimate := root
	if root.Root != nil {
		ultimate = root.Root
	}
	return &Instance{
		File:   file,
		Root:   ultimate,
		Scope:  vars.NewChain(ultimate.Scope.Local, ultimate.Scope.Global),
		Params: params,
		lines:  make([]lineState, len(file.Lines)),
	}
}

// RootScope returns the variable scope "#set" should write to: the
// instance's own Local scope if it has no Root, or its Root's Local scope
// otherwise.
func (in *Instance) RootScope() *vars.Scope {
	if in.Root != nil {
		return in.Root.Scope.Local
	}
	return in.Scope.Local
}

// CurrentLine returns the parsed Line the cursor is on, and whether the
// cursor is still within bounds.
func (in *Instance) CurrentLine() (syntax.Line, bool) {
	if in.Cursor < 0 || in.Cursor >= len(in.File.Lines) {
		return syntax.Line{}, false
	}
	return in.File.Lines[in.Cursor], true
}

// Finished reports whether the cursor has run off the end of the file.
func (in *Instance) Finished() bool {
	return in.Cursor >= len(in.File.Lines)
}

// Push records that the command at the cursor opened a block whose
// generic "#end" should be treated as closing tag when popped (spec
// §4.6; original's Script::Push).
func (in *Instance) Push(closing token.Tag) {
	in.nestStack = append(in.nestStack, closing)
}

// Pop removes and returns the innermost expected closing tag. It panics
// if the stack is empty — a parse-time-validated script should never pop
// an empty stack, matching the original's unchecked std::stack::top/pop.
func (in *Instance) Pop() token.Tag {
	if len(in.nestStack) == 0 {
		panic(fmt.Sprintf("script: Pop on empty nesting stack at line %d", in.Cursor))
	}
	top := in.nestStack[len(in.nestStack)-1]
	in.nestStack = in.nestStack[:len(in.nestStack)-1]
	return top
}

// Top returns the innermost expected closing tag without removing it, or
// token.Invalid if the stack is empty.
func (in *Instance) Top() token.Tag {
	if len(in.nestStack) == 0 {
		return token.Invalid
	}
	return in.nestStack[len(in.nestStack)-1]
}

// NestDepth reports how many blocks are currently open.
func (in *Instance) NestDepth() int {
	return len(in.nestStack)
}

// repeatState returns the mutable per-line repeat-progress record for
// line i, extending the backing slice if the file has grown (it never
// does after parsing, but this keeps the accessor total).
func (in *Instance) repeatState(i int) *lineState {
	for len(in.lines) <= i {
		in.lines = append(in.lines, lineState{})
	}
	return &in.lines[i]
}

// TryIncrement attempts to re-run the "#repeat" block whose header line is
// pairLine one more time: if that line hasn't hit its iteration cap, bumps
// its repeat counter, rewinds the cursor to it, resets Depth, and reports
// true; otherwise resets the counter and reports false so the caller can
// fall through past the loop (spec §4.6; original's TryIncrement).
func (in *Instance) TryIncrement(pairLine int) bool {
	ls := in.repeatState(pairLine)
	if ls.repeats < ls.repeatMax-1 {
		ls.repeats++
		in.Cursor = pairLine
		in.Depth = 0
		return true
	}
	ls.repeats = 0
	return false
}

// SetRepeatTarget initializes line i's repeat counters for a fresh
// "#repeat" entry: zero repeats so far, target iterations max.
func (in *Instance) SetRepeatTarget(i, max int) {
	ls := in.repeatState(i)
	ls.repeats = 0
	ls.repeatMax = max
}

// RepeatTarget returns line i's configured iteration cap.
func (in *Instance) RepeatTarget(i int) int {
	return in.repeatState(i).repeatMax
}

// SetRepeatPair records that line i (the "#endrepeat"/"#end" line closing
// a "#repeat" block) is paired with that block's "#repeat" header at
// pairLine.
func (in *Instance) SetRepeatPair(i, pairLine int) {
	in.repeatState(i).pairLine = pairLine
}

// RepeatPair returns the "#repeat" header line index paired with the
// closing "#end" line i.
func (in *Instance) RepeatPair(i int) int {
	return in.repeatState(i).pairLine
}

// Repeats reports how many passes the scheduler's per-line "x N" repeat
// loop has made over line i so far in the current visit (spec §4.6; the
// original's Script::LineData::repeats, shared storage with the "#repeat"
// block counters since a line can only be one or the other at a time).
func (in *Instance) Repeats(i int) int {
	return in.repeatState(i).repeats
}

// IncrementRepeats bumps line i's per-line repeat pass counter.
func (in *Instance) IncrementRepeats(i int) {
	in.repeatState(i).repeats++
}

// ResetLineRepeat zeroes line i's repeat pass counter, leaving its target
// unchanged, once the scheduler is done visiting it.
func (in *Instance) ResetLineRepeat(i int) {
	in.repeatState(i).repeats = 0
}

// FindEnd scans forward from just after the cursor for the "#end" that
// closes the structural block opened at the cursor, honoring nested
// pushes. ok is false only if the file is malformed in a way parse-time
// validation should already have rejected.
func (in *Instance) FindEnd() (line int, ok bool) {
	nest := 0
	for i := in.Cursor + 1; i < len(in.File.Lines); i++ {
		tag := in.File.Lines[i].Tag
		if tag == token.End {
			if nest == 0 {
				return i, true
			}
			nest--
			continue
		}
		if token.IsStructuralPush(tag) {
			nest++
		}
	}
	return -1, false
}

// MoveToNextTag advances the cursor forward until it lands on a line
// tagged target or a generic "#end", honoring nested nonmatching pushes
// along the way (spec §4.6; original's MoveToNextTag). If the cursor
// currently sits on a structural push, it is stepped past first so the
// push's own body isn't immediately mistaken for the target.
func (in *Instance) MoveToNextTag(target token.Tag) {
	if tag, ok := in.CurrentLine(); ok && token.IsStructuralPush(tag.Tag) {
		in.Cursor++
	}
	nest := 0
	for {
		line, ok := in.CurrentLine()
		if !ok {
			return
		}
		if line.Tag == target || line.Tag == token.End {
			if nest == 0 {
				return
			}
			nest--
		} else if token.IsStructuralPush(line.Tag) {
			nest++
		}
		in.Cursor++
	}
}
