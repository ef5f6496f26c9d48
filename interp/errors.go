package interp

import (
	"fmt"

	"golang.org/x/xerrors"
)

// AbortError is the error a dispatch handler returns to mean "unwind to
// the nearest enclosing '#try', not merely report a failure": "#throw"
// raises one directly, and the nested-"#try" guard and the unterminated-
// "#call" guard raise one too, matching the original's direct
// AbortScriptStack calls (CheatScript.cpp's CMD_throw/CMD_try cases).
// Any other error dispatch returns (a malformed command, a RuntimeError
// from vars arithmetic, a HostError from an ExternalCaller) unwinds the
// same way — the scheduler does not distinguish the two once inside
// iteration's error branch, collapsing the original's split between a
// synchronous AbortScriptStack call and a caught C++ exception into Go's
// single error-return path.
type AbortError struct {
	Reason string
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("interp: %s", e.Reason)
}

// abortReason extracts the unwind message from any error dispatch or the
// scheduler returns: an AbortError's Reason verbatim (no "interp: "
// wrapping noise, since it's user- or handler-authored text meant for a
// "#catch" variable or an unhandled-exception notice), or err.Error() for
// anything else. xerrors.As unwraps through any wrapping a handler added
// with fmt.Errorf's "%w", matching the teacher's IsExitStatus lookup
// (interp.go's own AbortError never needs to travel wrapped, but a
// handler-returned fmt.Errorf("...: %w", abortErr) shouldn't defeat it).
func abortReason(err error) string {
	var ae *AbortError
	if xerrors.As(err, &ae) {
		return ae.Reason
	}
	return err.Error()
}

// IsAbort reports whether err is, or wraps, an AbortError.
func IsAbort(err error) bool {
	var ae *AbortError
	return xerrors.As(err, &ae)
}
