// Package snippet reads labelled short-text snippets from disk.
package snippet

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/snipgram/internal/domain"
)

// minLineBytes is the shortest line worth parsing.
const minLineBytes = 3

// Canonicalizer maps a raw term to its canonical lexicon form.
type Canonicalizer interface {
	Canonical(term string) (string, bool)
}

// ReadFile loads a snippet file.
func ReadFile(path string, c Canonicalizer) ([]domain.Snippet, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open snippets %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	snippets, err := Read(f, c)
	if err != nil {
		return nil, fmt.Errorf("read snippets %s: %w", path, err)
	}
	return snippets, nil
}

// Read parses one snippet per line. The last whitespace-separated field is the
// label; the remaining terms are canonicalised and de-duplicated in order of
// first occurrence. Terms unknown to c are dropped. Lines are expected to be clean.
func Read(r io.Reader, c Canonicalizer) ([]domain.Snippet, error) {
	var out []domain.Snippet
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		s, ok := parseLine(scanner.Text(), c)
		if ok {
			out = append(out, s)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan snippets: %w", err)
	}
	return out, nil
}

func parseLine(line string, c Canonicalizer) (domain.Snippet, bool) {
	if len(line) < minLineBytes {
		return domain.Snippet{}, false
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return domain.Snippet{}, false
	}
	label := fields[len(fields)-1]

	seen := make(map[string]struct{}, len(fields)-1)
	tokens := make([]string, 0, len(fields)-1)
	for _, term := range fields[:len(fields)-1] {
		canon, ok := c.Canonical(term)
		if !ok {
			continue
		}
		if _, dup := seen[canon]; dup {
			continue
		}
		seen[canon] = struct{}{}
		tokens = append(tokens, canon)
	}
	return domain.Snippet{Tokens: tokens, Label: label}, true
}
