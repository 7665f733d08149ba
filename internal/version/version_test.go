package version

import (
	"strings"
	"testing"
)

func TestStringIncludesAllFields(t *testing.T) {
	s := String()
	if !strings.HasPrefix(s, "rendergate ") {
		t.Errorf("unexpected prefix: %s", s)
	}
	for _, part := range []string{Version, GitCommit, BuildTime} {
		if !strings.Contains(s, part) {
			t.Errorf("version string %q missing %q", s, part)
		}
	}
}
