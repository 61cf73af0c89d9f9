package version

import (
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	got := String()
	if !strings.Contains(got, Version) || !strings.Contains(got, Commit) {
		t.Errorf("String() = %q, missing build metadata", got)
	}
}
