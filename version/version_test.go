package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	out := String()
	if !strings.HasPrefix(out, "spinup ") {
		t.Errorf("unexpected version line: %q", out)
	}
	if !strings.Contains(out, Version) {
		t.Errorf("version line missing %q: %q", Version, out)
	}
}
