//go:build windows

// Platform-gated raw virtual-key modifier normalization, grounded on
// original_source/Visual/Cheats/CheatScript.cpp's GetKeyState(VK_CONTROL/
// SHIFT/MENU) reads (lines ~2406-2410): Shift and a Numpad-origin key are
// treated as mutually exclusive, the one hard-coded OS quirk spec §4.9
// gestures at ("OS Alt-key idiosyncrasies").
package input

import "golang.org/x/sys/windows"

const (
	vkControl = 0x11
	vkShift   = 0x10
	vkMenu    = 0x12 // Alt
)

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procGetKeyState = user32.NewProc("GetKeyState")
)

func getKeyState(vk int) int16 {
	r, _, _ := procGetKeyState.Call(uintptr(vk))
	return int16(r)
}

// NormalizeModifiers reads the live Ctrl/Shift/Alt key state and excludes
// Shift when value originates from the numpad, matching the original's
// quirk exactly.
func NormalizeModifiers(value string) Modifier {
	var m Modifier
	if getKeyState(vkControl)&0x8000 != 0 {
		m |= ModCtrl
	}
	if getKeyState(vkMenu)&0x8000 != 0 {
		m |= ModAlt
	}
	shiftDown := getKeyState(vkShift)&0x8000 != 0
	if shiftDown && !isNumpadValue(value) {
		m |= ModShift
	}
	return m
}

func isNumpadValue(value string) bool {
	return len(value) >= 6 && value[:6] == "Numpad"
}
