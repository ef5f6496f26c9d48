//go:build !windows

package input

// NormalizeModifiers is stubbed on non-Windows hosts: no live raw-keyboard
// state is available outside the engine's own windowing layer, so callers
// derive Modifier from whatever modifier-key Down/Up events they've
// already seen instead (documented per SPEC_FULL.md's Open Question on
// platform-gated input).
func NormalizeModifiers(value string) Modifier {
	return 0
}
