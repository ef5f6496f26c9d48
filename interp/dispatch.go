package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grindhollow/cheatscript/eval"
	"github.com/grindhollow/cheatscript/expand"
	"github.com/grindhollow/cheatscript/script"
	"github.com/grindhollow/cheatscript/token"
	"github.com/grindhollow/cheatscript/vars"
)

// dispatch interprets one "#"-prefixed sub-command against in, per spec
// §4.7. text is the already variable-expanded sub-command (the comma-split
// piece currently at s.Depth-1), always starting with "#" — the "empty"
// and "plain chat" cases are filtered out by the caller before dispatch
// is ever invoked. overrideTag/hasOverride let "#end" re-dispatch itself as the
// popped expected tag (the original's HandleScriptCommand recursion).
func (in *Interpreter) dispatch(s *script.Instance, text string, overrideTag token.Tag, hasOverride bool) (Result, error) {
	tag := s.File.Lines[s.Cursor].Tag
	if hasOverride {
		tag = overrideTag
	}

	switch tag {
	case token.End:
		top := s.Top()
		if top != token.End {
			return in.dispatch(s, text, top, true)
		}
		s.Pop()
		return NextLine, nil

	case token.Break:
		return NextLine, nil

	case token.If:
		s.Push(token.EndIf)
		cond := strings.TrimPrefix(text, "#if")
		ok, err := eval.Statement(strings.TrimSpace(cond))
		if err != nil {
			return Continue, err
		}
		if !ok {
			s.Cursor++
			in.skipFailedIf(s)
		}
		return NextLine, nil

	case token.Elif, token.Else:
		s.MoveToNextTag(token.End)
		s.Pop()
		return NextLine, nil

	case token.EndIf:
		s.Pop()
		return NextLine, nil

	case token.Repeat:
		s.Push(token.EndRepeat)
		pair, ok := s.FindEnd()
		if !ok {
			return Continue, fmt.Errorf("interp: #repeat has no matching #end")
		}
		s.SetRepeatPair(pair, s.Cursor)
		n, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(text, "#repeat")))
		if err != nil {
			n = 0
		}
		if n == 0 {
			n = s.File.Lines[s.Cursor].RepeatCount
			s.SetRepeatTarget(s.Cursor, n)
			s.MoveToNextTag(token.End)
			s.Pop()
		} else {
			s.SetRepeatTarget(s.Cursor, n)
		}
		return NextLine, nil

	case token.EndRepeat:
		origin := s.RepeatPair(s.Cursor)
		if !s.TryIncrement(origin) {
			s.SetRepeatTarget(s.Cursor, s.File.Lines[s.Cursor].RepeatCount)
			s.Pop()
		}
		return NextLine, nil

	case token.Restart:
		in.restart(s)
		return ReEnterLoop, nil

	case token.Stop:
		return TerminateAllScripts, nil

	case token.Return:
		in.doReturn(s, text)
		return TerminateScript, nil

	case token.Try:
		if s.InTry {
			return Continue, &AbortError{Reason: "Nested try/catch blocks are unsupported within a single script"}
		}
		s.Push(token.Catch)
		s.InTry = true
		return NextLine, nil

	case token.Throw:
		msg := "throw"
		if idx := strings.Index(text, "throw "); idx >= 0 {
			msg = text[idx+len("throw "):]
		}
		return Continue, &AbortError{Reason: msg}

	case token.Catch:
		s.MoveToNextTag(token.End)
		s.Pop()
		s.InTry = false
		return NextLine, nil

	case token.Call:
		return in.doCall(s, text)

	case token.Set:
		k, v, err := operatorPair(text)
		if err != nil {
			return Continue, err
		}
		s.RootScope().Set(k, v)
		return Continue, nil

	case token.SetLocal:
		k, v, err := operatorPair(text)
		if err != nil {
			return Continue, err
		}
		s.Scope.Local.Set(k, v)
		return Continue, nil

	case token.SetGlobal:
		k, v, err := operatorPair(text)
		if err != nil {
			return Continue, err
		}
		in.Global.Set(k, v)
		return Continue, nil

	case token.Rem:
		k, err := operatorTarget(text)
		if err != nil {
			return Continue, err
		}
		s.RootScope().Remove(k)
		s.Scope.Local.Remove(k)
		in.Global.Remove(k)
		return Continue, nil

	case token.Clr:
		in.Global.Clear()
		s.RootScope().Clear()
		s.Scope.Local.Clear()
		return Continue, nil

	case token.Add, token.Sub, token.Mul, token.Div, token.Min, token.Max:
		return in.arithBinary(s, tag, text)

	case token.Sqrt, token.Abs, token.Floor, token.Ceil, token.Round:
		return in.arithUnary(s, tag, text)

	case token.Clamp:
		return in.arithClamp(s, text)

	default:
		return Continue, nil
	}
}

// skipFailedIf scans forward from a just-failed "#if" test, honoring
// nested push/pop pairs, stopping on a top-level "#elif" whose own
// condition is true, a top-level "#else", or the matching "#end" (spec
// §4.7).
func (in *Interpreter) skipFailedIf(s *script.Instance) {
	nest := 0
	for {
		line, ok := s.CurrentLine()
		if !ok {
			return
		}
		switch {
		case line.Tag == token.End:
			if nest == 0 {
				s.Pop()
				return
			}
			nest--
		case token.IsStructuralPush(line.Tag):
			nest++
		case token.IsPop(line.Tag):
			nest--
		case nest == 0 && line.Tag == token.Elif:
			expanded := in.expandLine(s, line.Text)
			cond := strings.TrimSpace(strings.TrimPrefix(expanded, "#elif"))
			if ok, _ := eval.Statement(cond); ok {
				return
			}
		case nest == 0 && line.Tag == token.Else:
			return
		}
		s.Cursor++
	}
}

// expandLine runs the substitution engine over text for frame s without
// any disabled prefixes — used by control-flow paths (skipFailedIf's
// "#elif" re-evaluation) that sit outside the normal per-sub-command
// expansion the scheduler already performs on every other line.
func (in *Interpreter) expandLine(s *script.Instance, text string) string {
	return in.expander.Expand(text, in.frameOf(s))
}

func (in *Interpreter) frameOf(s *script.Instance) *expand.Frame {
	return &expand.Frame{Params: s.Params, Scope: s.Scope}
}

func (in *Interpreter) restart(s *script.Instance) {
	for s.Cursor < len(s.File.Lines) {
		tag := s.File.Lines[s.Cursor].Tag
		if token.IsStructuralPush(tag) {
			s.Push(token.End)
		} else if token.IsPop(tag) {
			s.Pop()
		}
		s.Cursor++
	}
	s.InTry = false
	s.Cursor = 0
	s.Depth = 0
}

func (in *Interpreter) doReturn(s *script.Instance, text string) {
	value := strings.TrimSpace(strings.TrimPrefix(text, "#return"))
	value = in.expandLine(s, value)
	s.RootScope().Set("result", value)

	for s.Cursor < len(s.File.Lines) {
		tag := s.File.Lines[s.Cursor].Tag
		if token.IsStructuralPush(tag) {
			s.Push(token.End)
		} else if token.IsPop(tag) {
			s.Pop()
		}
		s.Cursor++
	}
}

// doCall captures the verbatim "#call...#end" body (without consuming the
// "#end" itself — the scheduler's normal line advance takes care of that
// once doCall returns), hands it to the external executor, and — if the
// executor hands back a follow-up script — pushes it immediately as a
// nested frame on the same stack (spec §4.7; original's CMD_call case).
func (in *Interpreter) doCall(s *script.Instance, text string) (Result, error) {
	target := strings.TrimSpace(strings.TrimPrefix(text, "#call"))

	var lines []string
	s.Cursor++
	for {
		line, ok := s.CurrentLine()
		if !ok {
			return Continue, &AbortError{Reason: "Invalid #call/#end block"}
		}
		if line.Tag == token.End {
			break
		}
		lines = append(lines, line.Text)
		s.Cursor++
	}

	expanded := make([]string, len(lines))
	for i, l := range lines {
		expanded[i] = in.expander.Expand(l, in.frameOf(s), "$args", "$args.count")
	}

	if in.External == nil {
		return ReEnterLoop, nil
	}
	header := ""
	if in.Host != nil {
		header = in.Host.ExternalScriptHeader(target)
	}
	result, ok := in.External.CallExternal(target, expanded, header)
	if ok && result != "" {
		if err := in.ProcessScript(result); err != nil {
			return Continue, err
		}
	}
	return ReEnterLoop, nil
}

// operatorTarget reads the single variable name following the command
// word (spec's GetOperatorTarget analogue): "#sqrt hp" -> "hp".
func operatorTarget(text string) (string, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return "", fmt.Errorf("interp: malformed command %q", text)
	}
	return fields[1], nil
}

// operatorPair reads the variable name and the (possibly multi-word)
// value following the command word: "#setl hp 100" -> ("hp", "100").
func operatorPair(text string) (key, value string, err error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return "", "", fmt.Errorf("interp: malformed command %q", text)
	}
	key = fields[1]
	if len(fields) > 2 {
		value = strings.Join(fields[2:], " ")
	}
	return key, value, nil
}

// operatorTuple reads a target and two values, for "#clamp K lo hi".
func operatorTuple(text string) (target, lo, hi string, err error) {
	fields := strings.Fields(text)
	if len(fields) < 4 {
		return "", "", "", fmt.Errorf("interp: malformed command %q", text)
	}
	return fields[1], fields[2], fields[3], nil
}

func (in *Interpreter) arithBinary(s *script.Instance, tag token.Tag, text string) (Result, error) {
	key, value, err := operatorPair(text)
	if err != nil {
		return Continue, err
	}
	target, scope, ok := lookupVariable(s, in.Global, key)
	if !ok {
		return Continue, nil
	}
	arg := vars.String(value)

	var result vars.Cell
	switch tag {
	case token.Add:
		result, err = target.Add(arg)
	case token.Sub:
		result, err = target.Sub(arg)
	case token.Mul:
		result, err = target.Mul(arg)
	case token.Div:
		result, err = target.Div(arg)
	case token.Min:
		result, err = target.Min(arg)
	case token.Max:
		result, err = target.Max(arg)
	}
	if err != nil {
		return Continue, err
	}
	scope.SetCell(key, result)
	return Continue, nil
}

func (in *Interpreter) arithUnary(s *script.Instance, tag token.Tag, text string) (Result, error) {
	key, err := operatorTarget(text)
	if err != nil {
		return Continue, err
	}
	target, scope, ok := lookupVariable(s, in.Global, key)
	if !ok {
		return Continue, nil
	}

	var result vars.Cell
	switch tag {
	case token.Sqrt:
		result, err = target.Sqrt()
	case token.Abs:
		result, err = target.Abs()
	case token.Floor:
		result, err = target.Floor()
	case token.Ceil:
		result, err = target.Ceil()
	case token.Round:
		result, err = target.Round()
	}
	if err != nil {
		return Continue, err
	}
	scope.SetCell(key, result)
	return Continue, nil
}

func (in *Interpreter) arithClamp(s *script.Instance, text string) (Result, error) {
	key, lo, hi, err := operatorTuple(text)
	if err != nil {
		return Continue, err
	}
	target, scope, ok := lookupVariable(s, in.Global, key)
	if !ok {
		return Continue, nil
	}
	result, err := target.Clamp(vars.String(lo), vars.String(hi))
	if err != nil {
		return Continue, err
	}
	scope.SetCell(key, result)
	return Continue, nil
}

// lookupVariable resolves name through the frame's three-tier scope
// chain and returns both the cell and the concrete Scope it lives in (so
// the caller can write the result back to the same tier), or ok=false if
// it is not set anywhere (spec §4.7: "silently no-op if K is missing").
func lookupVariable(s *script.Instance, global *vars.Scope, name string) (vars.Cell, *vars.Scope, bool) {
	if c, ok := s.Scope.Local.Get(name); ok {
		return c, s.Scope.Local, true
	}
	root := s.RootScope()
	if c, ok := root.Get(name); ok {
		return c, root, true
	}
	if c, ok := global.Get(name); ok {
		return c, global, true
	}
	return vars.Cell{}, nil, false
}
