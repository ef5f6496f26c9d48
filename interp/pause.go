package interp

import "github.com/grindhollow/cheatscript/script"

// TickFrame is the host-facing per-frame entry point (spec §4.10's
// "Update"): it advances any duration/single-frame pause by frameMs
// before draining every stack with Tick, so a script paused with
// PauseFor eventually resumes on its own without the host having to poll
// it (spec §5's "if paused for a duration, decrement and yield").
func (in *Interpreter) TickFrame(frameMs int) {
	in.decrementPauses(frameMs)
	in.Tick()
}

// decrementPauses advances every stack's top frame's duration or
// single-frame pause, clearing it once exhausted.
func (in *Interpreter) decrementPauses(frameMs int) {
	for _, st := range in.stacks {
		if st.empty() {
			continue
		}
		top := st.top()
		switch top.Pause.Reason {
		case script.PauseDuration:
			top.Pause.DurationTicks -= frameMs
			if top.Pause.DurationTicks <= 0 {
				top.Pause = script.Pause{}
			}
		case script.PauseSingleFrame:
			top.Pause = script.Pause{}
		}
	}
}

// PauseFor pauses the currently active stack's top frame for the given
// duration in milliseconds (spec §1's "pauses (duration, ...)").
// It is a no-op outside of a dispatch call (no stack is active).
func (in *Interpreter) PauseFor(ms int) {
	if f := in.activeTop(); f != nil {
		f.Pause = script.Pause{Reason: script.PauseDuration, DurationTicks: ms}
	}
}

// PauseOneFrame pauses the active frame for exactly one upcoming tick
// (spec §1's "single-frame" pause kind).
func (in *Interpreter) PauseOneFrame() {
	if f := in.activeTop(); f != nil {
		f.Pause = script.Pause{Reason: script.PauseSingleFrame}
	}
}

// PauseForGameplayEvent pauses the active frame until the host reports the
// awaited event occurred via ResumeGameplayEvent (spec §1's "gameplay-
// event" pause kind — e.g. waiting for a loading screen to clear).
func (in *Interpreter) PauseForGameplayEvent() {
	if f := in.activeTop(); f != nil {
		f.Pause = script.Pause{Reason: script.PauseAction}
	}
}

// ResumeGameplayEvent clears the gameplay-event pause on every stack
// currently waiting on one.
func (in *Interpreter) ResumeGameplayEvent() {
	in.clearPauseReason(script.PauseAction)
}

// ClearTeleportPause clears the teleport pause set after a "warp"-family
// line ran (spec §4.8 step 2e), once the host's area-change has finished.
func (in *Interpreter) ClearTeleportPause() {
	in.clearPauseReason(script.PauseTeleport)
}

func (in *Interpreter) clearPauseReason(reason script.PauseReason) {
	for _, st := range in.stacks {
		if !st.empty() && st.top().Pause.Reason == reason {
			st.top().Pause = script.Pause{}
		}
	}
}

// activeTop returns the top frame of whichever stack is currently being
// ticked or pushed onto, or nil if none (e.g. called outside a dispatch).
func (in *Interpreter) activeTop() *script.Instance {
	if in.activeStack < 0 || in.activeStack >= len(in.stacks) || in.stacks[in.activeStack].empty() {
		return nil
	}
	return in.stacks[in.activeStack].top()
}
