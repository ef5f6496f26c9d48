package syntax

import "github.com/grindhollow/cheatscript/token"

// Line is one entry of an immutable per-file parsed line table (spec §3,
// "Parsed file"). Text is the final, stripped form: leading whitespace and
// any "//" comment tail removed for ordinary lines, or the call-block's
// common-indent-stripped verbatim text for lines inside a "#call…#end"
// region.
type Line struct {
	Text        string
	Tag         token.Tag
	RepeatCount int

	// InCallBlock marks a line captured verbatim inside a "#call…#end"
	// region; such lines are never dispatched by the normal cursor loop.
	InCallBlock bool
}

// File is the immutable, ordered line table produced by Parse for one
// source file.
type File struct {
	Name  string
	Lines []Line
}
