package interp

import (
	"strings"
	"testing"

	"github.com/grindhollow/cheatscript/cache"
	"github.com/grindhollow/cheatscript/vars"
)

// fakeHost records every chat line and notice sent to it, always reports
// ready, and needs no "#call" header by default.
type fakeHost struct {
	chat    []string
	notices []string
	headers map[string]string
}

func newFakeHost() *fakeHost { return &fakeHost{headers: map[string]string{}} }

func (h *fakeHost) SendChat(text string)  { h.chat = append(h.chat, text) }
func (h *fakeHost) PrintMsg(msg string)   { h.notices = append(h.notices, msg) }
func (h *fakeHost) Ready() bool           { return true }
func (h *fakeHost) ExternalScriptHeader(target string) string {
	return h.headers[target]
}

func newTestInterp(t *testing.T, opts ...Option) (*Interpreter, *fakeHost) {
	t.Helper()
	host := newFakeHost()
	c := cache.New(nil, nil)
	in := New(c, vars.NewScope(), host, opts...)
	return in, host
}

func run(t *testing.T, in *Interpreter, script string) {
	t.Helper()
	if err := in.ProcessScript(script); err != nil {
		t.Fatalf("ProcessScript: %v", err)
	}
}

func TestIfElseTakesTrueBranch(t *testing.T) {
	in, host := newTestInterp(t)
	run(t, in, strings.Join([]string{
		"#if 1 > 0",
		"hello",
		"#else",
		"goodbye",
		"#end",
	}, "\n"))

	if got := host.chat; len(got) != 1 || got[0] != "hello" {
		t.Fatalf("chat = %v, want [hello]", got)
	}
}

func TestIfElseTakesFalseBranch(t *testing.T) {
	in, host := newTestInterp(t)
	run(t, in, strings.Join([]string{
		"#if 0 > 1",
		"hello",
		"#else",
		"goodbye",
		"#end",
	}, "\n"))

	if got := host.chat; len(got) != 1 || got[0] != "goodbye" {
		t.Fatalf("chat = %v, want [goodbye]", got)
	}
}

func TestElifChecksEachConditionInOrder(t *testing.T) {
	in, host := newTestInterp(t)
	run(t, in, strings.Join([]string{
		"#if 0 > 1",
		"first",
		"#elif 1 > 0",
		"second",
		"#else",
		"third",
		"#end",
	}, "\n"))

	if got := host.chat; len(got) != 1 || got[0] != "second" {
		t.Fatalf("chat = %v, want [second]", got)
	}
}

func TestRepeatRunsBlockGivenCount(t *testing.T) {
	in, host := newTestInterp(t)
	run(t, in, strings.Join([]string{
		"#repeat 3",
		"tick",
		"#end",
	}, "\n"))

	want := []string{"tick", "tick", "tick"}
	if got := host.chat; !equalSlices(got, want) {
		t.Fatalf("chat = %v, want %v", got, want)
	}
}

func TestLineSuffixRepeatsInPlace(t *testing.T) {
	in, host := newTestInterp(t)
	run(t, in, "ping x2")

	want := []string{"ping"}
	if len(host.chat) != 2 || host.chat[0] != want[0] || host.chat[1] != want[0] {
		t.Fatalf("chat = %v, want two pings", host.chat)
	}
}

func TestTryCatchRecoversFromThrow(t *testing.T) {
	in, host := newTestInterp(t)
	run(t, in, strings.Join([]string{
		"#try",
		"#throw boom",
		"unreachable",
		"#catch err",
		"$mem[err]",
		"#end",
		"after",
	}, "\n"))

	want := []string{"boom", "after"}
	if got := host.chat; !equalSlices(got, want) {
		t.Fatalf("chat = %v, want %v", got, want)
	}
}

func TestTryWithoutCatchSwallowsException(t *testing.T) {
	in, host := newTestInterp(t)
	run(t, in, strings.Join([]string{
		"#try",
		"#throw boom",
		"unreachable",
		"#end",
		"after",
	}, "\n"))

	want := []string{"after"}
	if got := host.chat; !equalSlices(got, want) {
		t.Fatalf("chat = %v, want %v", got, want)
	}
}

func TestUnhandledThrowNotifiesHostAndHaltsScript(t *testing.T) {
	in, host := newTestInterp(t)
	run(t, in, strings.Join([]string{
		"#throw boom",
		"unreachable",
	}, "\n"))

	if len(host.notices) != 1 || !strings.Contains(host.notices[0], "boom") {
		t.Fatalf("notices = %v, want one mentioning boom", host.notices)
	}
	if len(host.chat) != 0 {
		t.Fatalf("chat = %v, want none", host.chat)
	}
}

func TestSetAndArithmeticPersistAcrossLines(t *testing.T) {
	in, host := newTestInterp(t)
	run(t, in, strings.Join([]string{
		"#set hp 10",
		"#add hp 5",
		"$mem[hp]",
	}, "\n"))

	want := []string{"15"}
	if got := host.chat; !equalSlices(got, want) {
		t.Fatalf("chat = %v, want %v", got, want)
	}
}

func TestStopTerminatesEverythingImmediately(t *testing.T) {
	in, host := newTestInterp(t)
	run(t, in, strings.Join([]string{
		"first",
		"#stop",
		"second",
	}, "\n"))

	want := []string{"first"}
	if got := host.chat; !equalSlices(got, want) {
		t.Fatalf("chat = %v, want %v", got, want)
	}
	if in.Running() {
		t.Error("expected no stacks running after #stop")
	}
}

func TestReturnEndsScriptImmediately(t *testing.T) {
	in, host := newTestInterp(t)
	run(t, in, strings.Join([]string{
		"#return 42",
		"unreachable",
	}, "\n"))

	if len(host.chat) != 0 {
		t.Fatalf("chat = %v, want none", host.chat)
	}
}

func TestResultExpandsSubScriptReturnValue(t *testing.T) {
	in, host := newTestInterp(t)
	run(t, in, "$result[#return 42]")

	want := []string{"42"}
	if got := host.chat; !equalSlices(got, want) {
		t.Fatalf("chat = %v, want %v", got, want)
	}
}

// fakeExternal records the call it received and hands back a follow-up
// script to run immediately, exercising "#call"'s reentrant push onto the
// current stack.
type fakeExternal struct {
	gotTarget string
	gotBody   []string
	gotHeader string
	follow    string
}

func (f *fakeExternal) CallExternal(target string, body []string, header string) (string, bool) {
	f.gotTarget = target
	f.gotBody = body
	f.gotHeader = header
	if f.follow == "" {
		return "", false
	}
	return f.follow, true
}

func TestCallDispatchesToExternalCallerAndRunsFollowUp(t *testing.T) {
	ext := &fakeExternal{follow: "from the call"}
	in, host := newTestInterp(t, WithExternalCaller(ext))
	host.headers["py"] = "import cheats\n"

	run(t, in, strings.Join([]string{
		"before",
		"#call py",
		"do_something()",
		"#end",
		"after",
	}, "\n"))

	if ext.gotTarget != "py" {
		t.Errorf("gotTarget = %q, want py", ext.gotTarget)
	}
	if ext.gotHeader != "import cheats\n" {
		t.Errorf("gotHeader = %q", ext.gotHeader)
	}
	if len(ext.gotBody) != 1 || ext.gotBody[0] != "do_something()" {
		t.Errorf("gotBody = %v", ext.gotBody)
	}

	want := []string{"before", "from the call", "after"}
	if got := host.chat; !equalSlices(got, want) {
		t.Fatalf("chat = %v, want %v", got, want)
	}
}

func TestRestartReplaysScriptFromTop(t *testing.T) {
	in, host := newTestInterp(t)
	run(t, in, strings.Join([]string{
		"#if $mem[guard] == null",
		"#set guard done",
		"first",
		"#restart",
		"#end",
		"second",
	}, "\n"))

	// The first pass takes the #if branch (guard starts unset), sets the
	// guard, prints "first", and restarts; the second pass's #if
	// condition is now false, so it falls straight through to "second".
	want := []string{"first", "second"}
	if got := host.chat; !equalSlices(got, want) {
		t.Fatalf("chat = %v, want %v", got, want)
	}
}

func equalSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
