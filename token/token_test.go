package token

import "testing"

func TestLookupDeprecatedAlias(t *testing.T) {
	tag, canonical, wasAlias, ok := Lookup("elseif")
	if !ok || !wasAlias || canonical != "elif" || tag != Elif {
		t.Fatalf("Lookup(elseif) = %v %v %v %v, want Elif/elif/true/true", tag, canonical, wasAlias, ok)
	}
}

func TestLookupCanonical(t *testing.T) {
	tag, canonical, wasAlias, ok := Lookup("if")
	if !ok || wasAlias || canonical != "if" || tag != If {
		t.Fatalf("Lookup(if) = %v %v %v %v", tag, canonical, wasAlias, ok)
	}
}

func TestLookupUnknown(t *testing.T) {
	if _, _, _, ok := Lookup("bogus"); ok {
		t.Fatal("Lookup(bogus) should not resolve")
	}
}

func TestClosingTag(t *testing.T) {
	cases := []struct {
		opener Tag
		want   Tag
	}{
		{If, EndIf},
		{Repeat, EndRepeat},
		{Try, Catch},
	}
	for _, c := range cases {
		got, ok := ClosingTag(c.opener)
		if !ok || got != c.want {
			t.Errorf("ClosingTag(%v) = %v, %v; want %v, true", c.opener, got, ok, c.want)
		}
	}
	if _, ok := ClosingTag(Call); ok {
		t.Error("Call must not be a runtime pusher")
	}
}

func TestStructuralPushIncludesCall(t *testing.T) {
	if !IsStructuralPush(Call) {
		t.Error("Call must be a structural push for nest-counting scans")
	}
	if IsRuntimePush(Call) {
		t.Error("Call must not be a runtime push")
	}
}

func TestIsPop(t *testing.T) {
	if !IsPop(End) {
		t.Error("IsPop(End) should be true")
	}
	for _, tag := range []Tag{If, Catch, EndIf, EndRepeat} {
		if IsPop(tag) {
			t.Errorf("IsPop(%v) should be false", tag)
		}
	}
}
