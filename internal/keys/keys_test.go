package keys

import "testing"

func TestRemoteLayout(t *testing.T) {
	if got := Remote("cachify", "pkg.add", "abc"); got != "cachify:pkg.add:abc" {
		t.Fatalf("got %q", got)
	}
}

func TestPatternEscapesGlob(t *testing.T) {
	if got := Pattern("app"); got != "app:*" {
		t.Fatalf("got %q", got)
	}
	if got := Pattern("a*b[1]"); got != `a\*b\[1\]:*` {
		t.Fatalf("got %q", got)
	}
}

func TestLockKeysDoNotCollide(t *testing.T) {
	if Lock("a:b", "c") == Lock("a", "b:c") {
		t.Fatalf("lock keys collided")
	}
}
