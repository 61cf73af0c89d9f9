package snippet

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

// fakeCanon canonicalises through a fixed alias table.
type fakeCanon map[string]string

func (f fakeCanon) Canonical(term string) (string, bool) {
	c, ok := f[term]
	return c, ok
}

var canon = fakeCanon{
	"game":   "game",
	"games":  "game",
	"poker":  "poker",
	"online": "online",
	"stock":  "stock",
}

func TestRead(t *testing.T) {
	in := strings.Join([]string{
		"online poker game games business",
		"ab",
		"",
		"stock market news business",
		"zzz qqq sports",
	}, "\n")

	got, err := Read(strings.NewReader(in), canon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 snippets, got %d", len(got))
	}

	tests := []struct {
		tokens []string
		label  string
	}{
		{[]string{"online", "poker", "game"}, "business"},
		{[]string{"stock"}, "business"},
		{[]string{}, "sports"},
	}
	for i, tc := range tests {
		if !slices.Equal(got[i].Tokens, tc.tokens) {
			t.Errorf("snippet %d: tokens %v, want %v", i, got[i].Tokens, tc.tokens)
		}
		if got[i].Label != tc.label {
			t.Errorf("snippet %d: label %q, want %q", i, got[i].Label, tc.label)
		}
	}
}

func TestRead_ShortLinesSkipped(t *testing.T) {
	got, err := Read(strings.NewReader("ab\n  \nx\n"), canon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected short lines to be skipped, got %v", got)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "train.txt")
	if err := os.WriteFile(path, []byte("poker games sports\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	got, err := ReadFile(path, canon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || !slices.Equal(got[0].Tokens, []string{"poker", "game"}) {
		t.Errorf("unexpected snippets: %v", got)
	}

	if _, err := ReadFile(filepath.Join(t.TempDir(), "none.txt"), canon); err == nil {
		t.Error("expected error for missing file")
	}
}
