package reactorlog

import "testing"

func TestFormatSubstitutesPlaceholdersInOrder(t *testing.T) {
	got := Format("node {} depends on {}", "b", "a")
	want := "node b depends on a"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatLeavesExtraPlaceholderLiteral(t *testing.T) {
	got := Format("{} and {}", "only-one")
	want := "only-one and {}"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestFormatAppendsExtraArgsSpaceSeparated(t *testing.T) {
	got := Format("msg {}", "a", "b", "c")
	want := "msg a b c"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLevelOrderingGatesEmission(t *testing.T) {
	l := New(Warn)
	if l.enabled(Info) {
		t.Fatalf("expected Info to be suppressed under a Warn threshold")
	}
	if !l.enabled(Warn) || !l.enabled(Error) {
		t.Fatalf("expected Warn and Error to pass a Warn threshold")
	}
}

func TestLevelStringNames(t *testing.T) {
	cases := map[Level]string{Info: "INFO", Warn: "WARN", Error: "ERROR"}
	for lv, want := range cases {
		if got := lv.String(); got != want {
			t.Fatalf("Level(%d).String() = %q, want %q", lv, got, want)
		}
	}
}
