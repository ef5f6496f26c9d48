package interp

import (
	"testing"

	"github.com/grindhollow/cheatscript/cache"
	"github.com/grindhollow/cheatscript/script"
	"github.com/grindhollow/cheatscript/syntax"
	"github.com/grindhollow/cheatscript/vars"
)

func TestPauseHelpersAreNoOpsWithoutActiveStack(t *testing.T) {
	host := newFakeHost()
	c := cache.New(nil, nil)
	in := New(c, vars.NewScope(), host)

	if err := in.ProcessScript("before\n#if 1\nafter\n#end"); err != nil {
		t.Fatalf("ProcessScript: %v", err)
	}
	if len(host.chat) != 2 {
		t.Fatalf("chat = %v, want 2 lines", host.chat)
	}

	// No stack is active once ProcessScript has returned; these must not
	// panic and must have no observable effect.
	in.PauseFor(500)
	in.ResumeGameplayEvent()
	in.ClearTeleportPause()
}

func TestDecrementPausesClearsDurationAndSingleFrame(t *testing.T) {
	host := newFakeHost()
	c := cache.New(nil, nil)
	in := New(c, vars.NewScope(), host)

	file, err := syntax.NewParser(nil).Parse("#if 1\nhello\n#end", "demo")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	inst := script.New(file, in.Global, nil)
	in.initLineData(inst)
	in.stacks = []stack{{inst}}

	inst.Pause = script.Pause{Reason: script.PauseDuration, DurationTicks: 30}
	in.decrementPauses(16)
	if inst.Pause.Reason != script.PauseDuration {
		t.Fatalf("pause cleared too early: %+v", inst.Pause)
	}
	in.decrementPauses(16)
	if inst.Pause.Reason != script.NoPause {
		t.Fatalf("pause should have cleared after 32ms >= 30ms: %+v", inst.Pause)
	}

	inst.Pause = script.Pause{Reason: script.PauseSingleFrame}
	in.decrementPauses(0)
	if inst.Pause.Reason != script.NoPause {
		t.Fatalf("single-frame pause should clear on the next decrement")
	}
}
