package syntax

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/grindhollow/cheatscript/token"
)

// ParseError represents a structural failure found while parsing a script
// file: unbalanced blocks, a nested #try, or a dangling #catch (spec §4.2,
// §7 ParseError). Parsing is all-or-nothing: a ParseError means the whole
// file is rejected, mirroring the teacher's syntax.ParseError/Position
// shape but keyed by logical line number instead of a byte Pos, since the
// cheat script grammar is line-oriented.
type ParseError struct {
	Filename string
	Line     int // 1-indexed
	Text     string
}

func (e *ParseError) Error() string {
	prefix := ""
	if e.Filename != "" {
		prefix = e.Filename + ":"
	}
	return fmt.Sprintf("%s%d: %s", prefix, e.Line, e.Text)
}

// AliasWarner receives a one-shot notice the first time a deprecated
// command spelling is seen in any file parsed by a given Parser. The root
// cheatscript package wires this to a warning in its log.
type AliasWarner func(oldSpelling, newSpelling, filename string)

// Parser turns cheat script source into a File. A Parser instance owns its
// own "already warned about this alias" bookkeeping, so that — unlike the
// original's process-wide static flags — multiple independent Interpreters
// (e.g. one per test) don't share deprecation-warning state. See spec §9's
// design note on process-wide state.
type Parser struct {
	Warn AliasWarner

	warnedAliases map[string]bool
}

// NewParser returns a ready-to-use Parser. warn may be nil to suppress
// deprecation notices.
func NewParser(warn AliasWarner) *Parser {
	return &Parser{Warn: warn, warnedAliases: make(map[string]bool)}
}

// Parse parses src (already decoded to UTF-8 text) into a File named
// name. A ParseError
// rejects the whole file; no File is returned in that case.
func (p *Parser) Parse(src, name string) (*File, error) {
	rawLines := splitLines(src)

	type rawLine struct {
		text        string
		tag         token.Tag
		repeatCount int
	}
	raws := make([]rawLine, 0, len(rawLines))

	for _, text := range rawLines {
		text = strings.TrimRight(text, " \t\r")
		tag := p.commandTag(text, name)
		base, count := ExtractRepeatCount(text)
		raws = append(raws, rawLine{text: base, tag: tag, repeatCount: count})
	}

	tags := make([]token.Tag, len(raws))
	for i, r := range raws {
		tags[i] = r.tag
	}
	if err := validate(tags, name); err != nil {
		return nil, err
	}

	lines := make([]Line, len(raws))
	for i, r := range raws {
		lines[i] = Line{Text: r.text, Tag: r.tag, RepeatCount: r.repeatCount}
	}

	normalizeCallBlocks(lines)
	for i := range lines {
		if lines[i].InCallBlock {
			continue
		}
		lines[i].Text = trimAndStripComment(lines[i].Text)
	}

	return &File{Name: name, Lines: lines}, nil
}

// Parse is a package-level convenience equivalent to NewParser(nil).Parse.
func Parse(src, name string) (*File, error) {
	return NewParser(nil).Parse(src, name)
}

// commandTag classifies a (right-trimmed, not yet comment-stripped) raw
// line: token.Chat for a line with no recognized "#word", token.Invalid for
// an unrecognized "#word" (forward-compatibility, spec §4.7), or the
// resolved Tag, applying the deprecated-alias rewrite with a one-shot
// warning per spec §4.2.
func (p *Parser) commandTag(text, filename string) token.Tag {
	idx, ok := FindSymbol(text, "#")
	if !ok || idx+1 >= len(text) {
		return token.Chat
	}
	switch text[idx+1] {
	case ' ', '\t', '\r', '\n', 0:
		return token.Chat
	}
	word := firstWord(text[idx+1:])
	if word == "" {
		return token.Chat
	}
	tag, canonical, wasAlias, found := token.Lookup(word)
	if wasAlias && p.Warn != nil && !p.warnedAliases[word] {
		p.warnedAliases[word] = true
		p.Warn(word, canonical, filename)
	}
	if !found {
		return token.Invalid
	}
	return tag
}

func firstWord(s string) string {
	i := 0
	for i < len(s) && !unicode.IsSpace(rune(s[i])) {
		i++
	}
	return strings.ToLower(s[:i])
}

func splitLines(src string) []string {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	src = strings.ReplaceAll(src, "\r", "\n")
	return strings.Split(src, "\n")
}

// validate checks block-nesting balance, mirroring the original
// ValidFile: push commands increment a nest counter, the generic End
// decrements it, and #try/#catch are depth-matched independently of the
// nest counter (spec §4.2).
func validate(tags []token.Tag, filename string) error {
	nest := 0
	inTryNest := 0
	for i, tag := range tags {
		switch {
		case tag == token.Invalid || tag == token.Chat:
			continue
		case token.IsPop(tag):
			if nest == inTryNest {
				inTryNest = 0
			}
			nest--
		case token.IsStructuralPush(tag):
			nest++
		}

		switch tag {
		case token.Try:
			if inTryNest != 0 {
				return &ParseError{Filename: filename, Line: i + 1, Text: "#try statement found within another #try statement"}
			}
			inTryNest = nest
		case token.Catch:
			if inTryNest == 0 {
				return &ParseError{Filename: filename, Line: i + 1, Text: "#catch statement found with no matching #try statement"}
			}
			if inTryNest != nest {
				return &ParseError{Filename: filename, Line: i + 1, Text: "#catch statement nest-mismatch within #try statement"}
			}
		}
	}
	switch {
	case nest > 0:
		return &ParseError{Filename: filename, Line: len(tags), Text: "missing #end statement(s)"}
	case nest < 0:
		return &ParseError{Filename: filename, Line: len(tags), Text: "too many #end statement(s)"}
	}
	return nil
}

// normalizeCallBlocks marks every line strictly between a #call and its
// matching #end as InCallBlock, then strips the minimum common leading
// whitespace across that block's interior lines from each of them,
// emptying any line that is whitespace-only (spec §4.2).
func normalizeCallBlocks(lines []Line) {
	i := 0
	for i < len(lines) {
		if lines[i].Tag != token.Call {
			i++
			continue
		}
		start := i + 1
		end := findStructuralEnd(lines, i)
		if end < 0 {
			i++
			continue
		}
		minIndent := -1
		for j := start; j < end; j++ {
			if strings.TrimSpace(lines[j].Text) == "" {
				continue
			}
			n := leadingWhitespace(lines[j].Text)
			if minIndent < 0 || n < minIndent {
				minIndent = n
			}
		}
		if minIndent < 0 {
			minIndent = 0
		}
		for j := start; j < end; j++ {
			lines[j].InCallBlock = true
			if strings.TrimSpace(lines[j].Text) == "" {
				lines[j].Text = ""
				continue
			}
			lines[j].Text = lines[j].Text[minIndent:]
		}
		i = end + 1
	}
}

func leadingWhitespace(s string) int {
	n := 0
	for n < len(s) && (s[n] == ' ' || s[n] == '\t') {
		n++
	}
	return n
}

// findStructuralEnd returns the index of the #end matching the structural
// push at lines[start], honoring nested pushes, or -1 if unbalanced (should
// not happen after validate has already passed).
func findStructuralEnd(lines []Line, start int) int {
	nest := 0
	for i := start + 1; i < len(lines); i++ {
		tag := lines[i].Tag
		if tag == token.End {
			if nest == 0 {
				return i
			}
			nest--
			continue
		}
		if token.IsStructuralPush(tag) {
			nest++
		}
	}
	return -1
}

// trimAndStripComment strips leading whitespace and any "//" comment tail
// found outside quotes, for lines outside a #call block (spec §4.2).
func trimAndStripComment(s string) string {
	s = strings.TrimLeft(s, " \t")
	if idx, ok := FindSymbol(s, "//"); ok {
		s = strings.TrimRight(s[:idx], " \t")
	}
	return s
}
