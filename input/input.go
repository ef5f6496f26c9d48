// Package input implements the key/mouse-to-command binding table of
// spec §4.9 (C10): decode a raw input event into a (kind, value) pair,
// match it against registered bindings honoring modifier state, and
// support the two transient "waiting for a key" modes a host's bind UI
// drives (WaitForNewBinding, WaitForRebind).
//
// Grounded on original_source/Visual/Cheats/CheatScript.cpp's MakeBinding
// (modifier read plus the Shift+Numpad exclusion quirk, lines ~2391-2414)
// and its AddDefaultKeyBinding call sequence (lines ~2640-2660) for the
// default Path of Exile-shaped binding set; the platform-gated raw
// virtual-key normalization mirrors the teacher's own os_windows.go/
// os_unix.go build-tag split for OS-specific primitives.
package input

import "strings"

// Kind classifies a decoded input event (spec §4.9 step 1).
type Kind int

const (
	KindNone Kind = iota
	KindDown
	KindUp
	KindScroll
	KindHScroll
	KindGainedFocus
	KindLostFocus
	KindResized
)

// Modifier is a bitmask of the three modifier keys tracked while matching
// a binding, per spec §4.9's "normalized modifier flags".
type Modifier int

const (
	ModShift Modifier = 1 << iota
	ModCtrl
	ModAlt
)

// Event is one decoded input occurrence: a classification plus the
// key/button/delta value and the currently-held modifier state.
type Event struct {
	Kind      Kind
	Value     string
	Modifiers Modifier
}

// Binding is "(key-name, value-name, modifier-flags, execution-string)"
// from spec §4.9, with equality defined over the first three fields.
type Binding struct {
	Kind      Kind
	Value     string
	Modifiers Modifier
	Exec      string
}

func (b Binding) matches(e Event) bool {
	return b.Kind == e.Kind && b.Value == e.Value && b.Modifiers == e.Modifiers
}

// NewKeyDownEvent builds a "key down" Event for value, reading the live
// Ctrl/Shift/Alt state via NormalizeModifiers so a host only has to report
// which key went down, not which modifiers were held (spec §4.9's
// "normalized modifier flags" step, factored out of ProcessHotkey callers
// so every platform front-end decodes a raw keypress the same way).
func NewKeyDownEvent(value string) Event {
	return Event{Kind: KindDown, Value: value, Modifiers: NormalizeModifiers(value)}
}

// waitMode tracks the two transient "bind UI" states of spec §4.9 steps
// 2-3: awaiting a brand-new binding's key, or awaiting a replacement key
// for an existing indexed binding.
type waitMode int

const (
	waitNone waitMode = iota
	waitNewBinding
	waitRebind
)

// Table is the full input-binding state machine of C10: the registered
// bindings plus whichever wait mode (if any) is currently active.
type Table struct {
	bindings []Binding

	mode        waitMode
	pendingExec string
	rebindIndex int
}

// NewTable returns an empty Table. Callers typically follow this with
// RestoreMissingBindings(DefaultBindings()) to seed the shipped defaults.
func NewTable() *Table {
	return &Table{}
}

// Bindings returns the live binding slice for inspection/UI listing.
func (t *Table) Bindings() []Binding {
	return t.bindings
}

// WaitForNewBinding arms the table to register a brand-new binding the
// next time ProcessEvent sees a qualifying "key down" (spec §4.9 step 2).
func (t *Table) WaitForNewBinding(exec string) {
	t.mode = waitNewBinding
	t.pendingExec = exec
}

// WaitForRebind arms the table to replace binding index's key the next
// time ProcessEvent sees a qualifying "key down" (spec §4.9 step 3).
func (t *Table) WaitForRebind(index int) {
	if index < 0 || index >= len(t.bindings) {
		return
	}
	t.mode = waitRebind
	t.rebindIndex = index
}

// CancelWait clears any pending bind/rebind wait without registering
// anything, the effect of an "Escape" key per spec §4.9 step 2.
func (t *Table) CancelWait() {
	t.mode = waitNone
}

// isModifierOnly reports whether value names a bare modifier key, which
// can never itself be bound (spec §4.9: "a valid key down with a
// non-modifier value").
func isModifierOnly(value string) bool {
	switch strings.ToLower(value) {
	case "shift", "ctrl", "control", "alt", "lctrl", "rctrl", "lshift", "rshift", "lalt", "ralt":
		return true
	default:
		return false
	}
}

// ProcessEvent applies one decoded Event to the table, per spec §4.9
// steps 2-4. If it resolves to a binding, exec holds the execution string
// to run and fired is true. Escape cancels an active wait instead of
// firing anything.
func (t *Table) ProcessEvent(e Event) (exec string, fired bool) {
	if e.Kind == KindDown && strings.EqualFold(e.Value, "escape") && t.mode != waitNone {
		t.mode = waitNone
		return "", false
	}

	switch t.mode {
	case waitNewBinding:
		if e.Kind == KindDown && !isModifierOnly(e.Value) {
			t.bindings = append(t.bindings, Binding{
				Kind: e.Kind, Value: e.Value, Modifiers: e.Modifiers, Exec: t.pendingExec,
			})
			t.mode = waitNone
		}
		return "", false

	case waitRebind:
		if e.Kind == KindDown && !isModifierOnly(e.Value) {
			old := t.bindings[t.rebindIndex]
			t.bindings[t.rebindIndex] = Binding{
				Kind: e.Kind, Value: e.Value, Modifiers: e.Modifiers, Exec: old.Exec,
			}
			t.mode = waitNone
		}
		return "", false
	}

	for _, b := range t.bindings {
		if b.matches(e) {
			return b.Exec, true
		}
	}
	return "", false
}

// RestoreMissingBindings adds any entry in defaults whose (kind, value,
// modifiers) triple isn't already present, leaving user-changed bindings
// alone (spec §4.9's RestoreMissingBindings).
func (t *Table) RestoreMissingBindings(defaults []Binding) {
	for _, d := range defaults {
		found := false
		for _, b := range t.bindings {
			if b.Kind == d.Kind && b.Value == d.Value && b.Modifiers == d.Modifiers {
				found = true
				break
			}
		}
		if !found {
			t.bindings = append(t.bindings, d)
		}
	}
}

// DefaultBindings returns the shipped Path of Exile-shaped binding set
// named in spec §4.9 ("the shipped set is for path_of_exile").
func DefaultBindings() []Binding {
	return []Binding{
		{Kind: KindDown, Value: "F5", Exec: "/hideout"},
		{Kind: KindDown, Value: "F9", Exec: "/loginstance"},
		{Kind: KindDown, Value: "F10", Exec: "/stopscripts"},
	}
}
