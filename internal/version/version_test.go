package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	got := String("face-extract")
	for _, want := range []string{"face-extract", Version, GitSHA, BuildTime} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}
