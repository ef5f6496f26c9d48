package script

import (
	"testing"

	"github.com/grindhollow/cheatscript/syntax"
	"github.com/grindhollow/cheatscript/token"
	"github.com/grindhollow/cheatscript/vars"
)

func mustParse(t *testing.T, src string) *syntax.File {
	t.Helper()
	f, err := syntax.Parse(src, "t.cheat")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return f
}

func TestPushPopTop(t *testing.T) {
	f := mustParse(t, "#if 1\nhi\n#end\n")
	in := New(f, vars.NewScope(), nil)
	if in.Top() != token.Invalid {
		t.Fatal("empty stack should report Invalid top")
	}
	in.Push(token.EndIf)
	if in.Top() != token.EndIf {
		t.Fatalf("Top() = %v, want EndIf", in.Top())
	}
	if got := in.Pop(); got != token.EndIf {
		t.Fatalf("Pop() = %v, want EndIf", got)
	}
	if in.NestDepth() != 0 {
		t.Fatal("stack should be empty after pop")
	}
}

func TestFindEnd(t *testing.T) {
	f := mustParse(t, "#if 1\nhi\n#end\nafter\n")
	in := New(f, vars.NewScope(), nil)
	in.Cursor = 0 // the #if line
	end, ok := in.FindEnd()
	if !ok || end != 2 {
		t.Fatalf("FindEnd() = %v, %v, want 2, true", end, ok)
	}
}

func TestFindEndNested(t *testing.T) {
	f := mustParse(t, "#if 1\n#if 2\nhi\n#end\n#end\nafter\n")
	in := New(f, vars.NewScope(), nil)
	in.Cursor = 0
	end, ok := in.FindEnd()
	if !ok || end != 4 {
		t.Fatalf("FindEnd() = %v, %v, want 4, true", end, ok)
	}
}

func TestMoveToNextTagElif(t *testing.T) {
	f := mustParse(t, "#if 1\nhi\n#elif 2\nbye\n#end\n")
	in := New(f, vars.NewScope(), nil)
	in.Cursor = 0
	in.MoveToNextTag(token.Elif)
	if in.Cursor != 2 {
		t.Fatalf("Cursor = %d, want 2 (the #elif line)", in.Cursor)
	}
}

func TestMoveToNextTagSkipsNestedIf(t *testing.T) {
	src := "#if 1\n#if 2\nhi\n#end\n#elif 3\nbye\n#end\n"
	f := mustParse(t, src)
	in := New(f, vars.NewScope(), nil)
	in.Cursor = 0
	in.MoveToNextTag(token.Elif)
	if in.Cursor != 4 {
		t.Fatalf("Cursor = %d, want 4 (the outer #elif, nested #if skipped)", in.Cursor)
	}
}

func TestTryIncrement(t *testing.T) {
	f := mustParse(t, "#repeat x3\nhi\n#end\n")
	in := New(f, vars.NewScope(), nil)
	in.SetRepeatTarget(0, 3)

	if !in.TryIncrement(0) {
		t.Fatal("first TryIncrement should succeed (0 < 2)")
	}
	if !in.TryIncrement(0) {
		t.Fatal("second TryIncrement should succeed (1 < 2)")
	}
	if in.TryIncrement(0) {
		t.Fatal("third TryIncrement should fail (2 is not < 2)")
	}
}

func TestRootScopeForNestedInstance(t *testing.T) {
	global := vars.NewScope()
	root := New(mustParse(t, "/say hi\n"), global, nil)
	root.Scope.Local.Set("x", "root-value")

	nested := NewNested(mustParse(t, "/say bye\n"), root, []string{"p1"})
	if got, _ := nested.Scope.GetRootOrGlobal("x"); got.String() != "root-value" {
		t.Fatalf("nested instance should see root's local scope as its root tier, got %q", got.String())
	}
	if nested.RootScope() != root.Scope.Local {
		t.Fatal("RootScope() should resolve to the root instance's Local scope")
	}
}
