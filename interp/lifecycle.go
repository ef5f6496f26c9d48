package interp

// Launched reports whether the very first Update/TickFrame cycle has
// already fired "first_launch"/"launch" (spec §4.10).
func (in *Interpreter) Launched() bool { return in.launched }

// MarkLaunched records that the host's integration layer has fired the
// one-time launch scripts, so it only happens once per Interpreter
// lifetime.
func (in *Interpreter) MarkLaunched() { in.launched = true }

// AdvanceLoopTimer accumulates frameMs against the configured "loop"
// script interval (LoopIntervalMs by default), reporting true exactly
// when enough time has elapsed to fire another iteration (spec §4.10's
// "invoked at the host-specified rate, default 60Hz").
func (in *Interpreter) AdvanceLoopTimer(frameMs int) bool {
	in.loopAccumMs += frameMs
	if in.loopAccumMs < in.loopTimerMs {
		return false
	}
	in.loopAccumMs -= in.loopTimerMs
	return true
}

// IsWarpVerb reports whether word (already lowercased, with any leading
// "/" stripped) names a teleport-family command, per the predicate wired
// at construction time (WithWarpVerbs or DefaultWarpVerbs).
func (in *Interpreter) IsWarpVerb(word string) bool {
	if in.isWarpVerb == nil {
		return false
	}
	return in.isWarpVerb(word)
}
