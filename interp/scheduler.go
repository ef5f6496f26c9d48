package interp

import (
	"strings"

	"github.com/grindhollow/cheatscript/script"
	"github.com/grindhollow/cheatscript/syntax"
	"github.com/grindhollow/cheatscript/token"
)

// iterResult mirrors the original's Yield/Loop/Finish trio: the three ways
// a single pass over one script stack's top frame can end (spec §4.8).
type iterResult int

const (
	iterYield iterResult = iota
	iterLoop
	iterFinish
)

// Tick drains every script stack by one round, the per-frame entry point a
// host calls once per update (spec §4.8; original's ProcessScriptStacks).
// Nothing advances if Host.Ready reports false.
func (in *Interpreter) Tick() {
	if in.Host != nil && !in.Host.Ready() {
		return
	}

	for i := range in.stacks {
		in.activeStack = i
		if in.stacks[i].empty() {
			continue
		}
		in.runStack(i)
	}
	in.activeStack = -1

	kept := in.stacks[:0]
	for _, st := range in.stacks {
		if !st.empty() {
			kept = append(kept, st)
		}
	}
	in.stacks = kept
}

// runStack drives stack idx's top frame forward until it yields or the
// whole stack empties (original's loop()/ "while (iteration() == Loop)").
func (in *Interpreter) runStack(idx int) {
	for in.iteration(idx) == iterLoop {
	}
}

// iteration runs one pass of the current top frame, handles the three
// outcomes a pass can end in, and resolves any error via the frame's
// (or an enclosing frame's) "#try/#catch" — printing and discarding the
// whole stack if nothing catches it (original's iteration()/
// AbortScriptStack-on-exception coupling inside loop()).
func (in *Interpreter) iteration(idx int) iterResult {
	if in.stacks[idx].empty() {
		return iterFinish
	}

	res, err := in.runFrame(in.stacks[idx].top())
	if err != nil {
		reason := abortReason(err)
		if in.abortStack(idx, reason) {
			return iterLoop
		}
		if in.Host != nil {
			in.Host.PrintMsg("Unhandled exception: " + reason)
		}
		in.stacks[idx] = nil
		return iterFinish
	}

	switch res {
	case iterYield:
		return iterYield
	case iterLoop:
		return iterLoop
	}

	// iterFinish: the frame ran off the end of its file cleanly.
	if !in.stacks[idx].empty() {
		in.stacks[idx] = in.stacks[idx].pop()
	}
	if in.lockDepth > 0 {
		// A "#call" (or similar reentrant push) further up the Go call
		// stack is still mid-drain; let it regain control rather than
		// this nested runStack consuming more of the same stack.
		return iterYield
	}
	return iterFinish
}

// runFrame executes s from its current cursor until it terminates,
// pauses, or asks to be re-entered, processing at most one physical line
// at a time: split its comma pieces, expand and dispatch each one in
// turn, honoring the line's own "x N" repeat count before moving on
// (spec §4.6/§4.8; original's process_script lambda).
func (in *Interpreter) runFrame(s *script.Instance) (iterResult, error) {
	if s.Locked || s.Pause.IsPaused() {
		return iterYield, nil
	}

	s.Locked = true
	in.lockDepth++
	defer func() {
		s.Locked = false
		in.lockDepth--
	}()

	for s.Cursor < len(s.File.Lines) {
		startLine := s.Cursor
		line := s.File.Lines[startLine]
		if strings.TrimSpace(line.Text) == "" {
			s.Depth = 0
			s.Cursor++
			continue
		}

		pieces := syntax.SplitComma(line.Text, true)
		moveToNewLine := false

		for !moveToNewLine && s.Repeats(startLine) < s.RepeatTarget(startLine) {
			for !moveToNewLine && s.Depth < len(pieces) {
				piece := strings.TrimSpace(pieces[s.Depth])
				expanded := in.expandLine(s, piece)
				s.Depth++

				if expanded == "" {
					continue
				}

				var (
					result Result
					err    error
				)
				if line.Tag == token.Chat || !strings.HasPrefix(expanded, "#") {
					in.sendChat(expanded)
				} else if line.Tag != token.Invalid {
					result, err = in.dispatch(s, expanded, 0, false)
				}
				if err != nil {
					return 0, err
				}

				switch result {
				case TerminateScript:
					return iterFinish, nil
				case TerminateAllScripts:
					in.StopAll()
					return iterYield, nil
				case ReEnterLoop:
					return iterLoop, nil
				case NextLine:
					moveToNewLine = true
					continue
				}

				if in.isWarp(expanded) {
					s.Pause = script.Pause{Reason: script.PauseTeleport}
				}
				if s.Pause.IsPaused() {
					return iterYield, nil
				}
			}
			if moveToNewLine {
				break
			}
			s.IncrementRepeats(startLine)
			s.Depth = 0
		}

		// A NextLine-returning handler (e.g. "#endrepeat"'s TryIncrement,
		// or a failed "#if"'s skip-forward) may have already redirected
		// s.Cursor away from startLine; the reset below always targets the
		// line this pass actually visited, while the advance uses whatever
		// the cursor currently holds, mirroring the original's process_script
		// loop capturing its LineData reference before the switch can move
		// line_number out from under it.
		s.Depth = 0
		s.ResetLineRepeat(startLine)
		s.Cursor++
	}

	return iterFinish, nil
}

// sendChat forwards an ordinary (non-"#") line to the host, or drops it
// silently if no Host is wired.
func (in *Interpreter) sendChat(text string) {
	if in.Host != nil {
		in.Host.SendChat(text)
	}
}

// isWarp reports whether line's first word (after stripping a leading
// "/" or "/." passthrough marker) names a teleport-family command, per
// spec §4.8 step "pause after a warp cheat has been started".
func (in *Interpreter) isWarp(line string) bool {
	if in.isWarpVerb == nil {
		return false
	}
	word := strings.TrimSpace(line)
	word = strings.TrimPrefix(word, "/.")
	word = strings.TrimPrefix(word, "/")
	if idx := strings.IndexAny(word, " \t"); idx >= 0 {
		word = word[:idx]
	}
	return in.isWarpVerb(strings.ToLower(word))
}

// abortStack unwinds stack idx's frames looking for one currently inside
// a "#try" block, popping whole frames that aren't (the exception
// propagates out through "#call" boundaries just like a real one) until
// it finds one or the stack empties (spec §7; original's
// AbortScriptStack(ScriptStack_t&, reason)).
func (in *Interpreter) abortStack(idx int, reason string) bool {
	st := in.stacks[idx]
	for len(st) > 0 {
		top := st[len(st)-1]
		if recoverTry(top, reason) {
			in.stacks[idx] = st
			return true
		}
		st = st[:len(st)-1]
	}
	in.stacks[idx] = st
	return false
}

// recoverTry attempts to unwind s to its innermost enclosing "#try",
// reporting whether one was found. It traces backward from the cursor to
// the "#try" line, popping the entries of blocks opened since that are
// still open at the throw (a block whose "#end" lies between the "#try"
// and the throw was already popped by that "#end") (spec §7; original's
// AbortScriptStack per-frame body), then scans forward to the matching
// "#catch" (binding its named variable to reason) or, absent one, to the
// block's "#end" (silently swallowing the exception). Either way the
// cursor is then stepped one line past that "#catch"/"#end" line — the
// "+1" a NextLine result would normally apply, which recoverTry applies
// itself because it is not running inside a dispatch call.
func recoverTry(s *script.Instance, reason string) bool {
	if !s.InTry {
		return false
	}
	s.InTry = false
	s.Pause = script.Pause{}

	closed := 0
	for s.Cursor > 0 && s.File.Lines[s.Cursor].Tag != token.Try {
		tag := s.File.Lines[s.Cursor].Tag
		if token.IsPop(tag) {
			closed++
		} else if token.IsStructuralPush(tag) {
			if closed > 0 {
				closed--
			} else {
				s.Pop()
			}
		}
		s.Cursor--
	}
	if s.File.Lines[s.Cursor].Tag != token.Try {
		return false
	}

	s.MoveToNextTag(token.Catch)
	if line, ok := s.CurrentLine(); ok && line.Tag == token.Catch {
		if name := catchVarName(line.Text); name != "" {
			s.RootScope().Set(name, reason)
		}
	} else {
		s.Pop()
	}
	s.Cursor++
	s.Depth = 0
	return true
}

// catchVarName extracts the variable name following "catch " in a
// "#catch" line's text, or "" if the line names none (a bare "#catch"
// that only marks where the handler body begins).
func catchVarName(text string) string {
	const marker = "catch "
	idx := strings.Index(text, marker)
	if idx < 0 {
		return ""
	}
	return strings.TrimSpace(text[idx+len(marker):])
}
