// Package token defines the enumerated "#"-command tags recognized by the
// cheat script parser and dispatcher, and which of them open or close a
// nested block.
package token

// Tag is the set of recognized "#"-commands plus the sentinel Invalid and
// Chat (a non-"#" line forwarded verbatim to the host).
type Tag int

const (
	Invalid Tag = iota
	Chat        // not a "#" line; forwarded to the host chat sink

	If
	Elif
	Else
	End
	EndIf

	Repeat
	EndRepeat

	Try
	Catch
	Throw

	Call

	Return
	Restart
	Stop
	Break

	Set
	SetLocal
	SetGlobal
	Rem
	Clr

	Add
	Sub
	Mul
	Div
	Min
	Max
	Clamp
	Sqrt
	Abs
	Floor
	Ceil
	Round
)

var names = map[Tag]string{
	Invalid:   "invalid",
	Chat:      "chat",
	If:        "if",
	Elif:      "elif",
	Else:      "else",
	End:       "end",
	EndIf:     "endif",
	Repeat:    "repeat",
	EndRepeat: "endrepeat",
	Try:       "try",
	Catch:     "catch",
	Throw:     "throw",
	Call:      "call",
	Return:    "return",
	Restart:   "restart",
	Stop:      "stop",
	Break:     "break",
	Set:       "set",
	SetLocal:  "setl",
	SetGlobal: "setg",
	Rem:       "rem",
	Clr:       "clr",
	Add:       "add",
	Sub:       "sub",
	Mul:       "mul",
	Div:       "div",
	Min:       "min",
	Max:       "max",
	Clamp:     "clamp",
	Sqrt:      "sqrt",
	Abs:       "abs",
	Floor:     "floor",
	Ceil:      "ceil",
	Round:     "round",
}

func (t Tag) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return "unknown"
}

// byName maps a bare command word (without the leading "#") to its Tag, for
// every tag a script author can type directly. EndIf and EndRepeat are
// deliberately absent: they exist only as internal nesting-stack sentinels
// (see runtimePushers) and are never produced by parsing text — a bare
// "#end" always parses to End, and the deprecated spellings "#endif"/
// "#endrepeat" are rewritten to the text "end" before lookup (see
// deprecatedAliases), never to the EndIf/EndRepeat tags themselves.
var byName = map[string]Tag{
	"if":      If,
	"elif":    Elif,
	"else":    Else,
	"end":     End,
	"repeat":  Repeat,
	"try":     Try,
	"catch":   Catch,
	"throw":   Throw,
	"call":    Call,
	"return":  Return,
	"restart": Restart,
	"stop":    Stop,
	"break":   Break,
	"set":     Set,
	"setl":    SetLocal,
	"setg":    SetGlobal,
	"rem":     Rem,
	"clr":     Clr,
	"add":     Add,
	"sub":     Sub,
	"mul":     Mul,
	"div":     Div,
	"min":     Min,
	"max":     Max,
	"clamp":   Clamp,
	"sqrt":    Sqrt,
	"abs":     Abs,
	"floor":   Floor,
	"ceil":    Ceil,
	"round":   Round,
}

// deprecatedAliases maps an old command spelling to its current one, per
// the parser's one-shot-warning alias table (spec §4.2).
var deprecatedAliases = map[string]string{
	"elseif":     "elif",
	"endif":      "end",
	"endforeach": "end",
	"endcall":    "end",
	"endrepeat":  "end",
}

// Lookup resolves a bare command word (as it appears right after "#",
// lowercased) to its Tag and, if the word was a deprecated alias, the
// canonical word it was rewritten to. ok is false for unrecognized words.
func Lookup(word string) (tag Tag, canonical string, wasAlias bool, ok bool) {
	if resolved, isAlias := deprecatedAliases[word]; isAlias {
		tag, ok = byName[resolved]
		return tag, resolved, true, ok
	}
	tag, ok = byName[word]
	return tag, word, false, ok
}

// runtimePushers is the set of commands that push an expected-closer entry
// onto a script instance's runtime nesting stack (C7), each mapped to the
// Tag of the matching pop command that a bare "#end" resolves to. #call is
// deliberately absent: it never enters the cursor-driven dispatch loop for
// its own body (the body is captured verbatim and shipped to the external
// executor), so it never touches the runtime nesting stack, even though it
// is still a structural "push" for nest-counting scans (see IsStructuralPush).
var runtimePushers = map[Tag]Tag{
	If:     EndIf,
	Repeat: EndRepeat,
	Try:    Catch,
}

// ClosingTag returns the Tag that a bare "#end" should be treated as when it
// closes a block opened by opener, per spec §4.6 ("#end is treated as: pop
// the expected tag and re-dispatch the current line with the command
// overridden to the popped tag").
func ClosingTag(opener Tag) (Tag, bool) {
	t, ok := runtimePushers[opener]
	return t, ok
}

// IsRuntimePush reports whether tag pushes an entry onto a script instance's
// runtime nesting stack when executed.
func IsRuntimePush(tag Tag) bool {
	_, ok := runtimePushers[tag]
	return ok
}

// IsStructuralPush reports whether tag opens a nested block for the purposes
// of nest-counting forward scans (FindEnd, MoveToNextTag) and parse-time
// balance validation (C2). This includes Call even though Call never
// touches the runtime nesting stack, because a #call...#end block nested
// inside e.g. a skipped #if branch must still be hopped over as a unit.
func IsStructuralPush(tag Tag) bool {
	return tag == If || tag == Repeat || tag == Try || tag == Call
}

// IsPop reports whether tag is the one block-closing command that can
// actually appear as parsed text: the generic End. Catch also closes a
// block (a #try) but is validated separately, by depth-matching against its
// #try rather than by a plain nest decrement — see syntax.validate.
func IsPop(tag Tag) bool {
	return tag == End
}
