// Package lexicon is an in-memory lexical ontology: lemma → sense lookup and
// path similarity over the undirected hypernym graph.
package lexicon

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/kailas-cloud/snipgram/internal/domain"
)

// Compile-time check: Lexicon implements domain.Oracle.
var _ domain.Oracle = (*Lexicon)(nil)

// Lexicon resolves tokens to senses and scores sense pairs by hypernym path length.
// It is read-only after Load and safe for concurrent use.
type Lexicon struct {
	senses map[string][]domain.Sense // lemma → senses in declaration order
	lemmas map[domain.Sense][]string
	nodes  map[domain.Sense]graph.Node
	graph  *simple.UndirectedGraph
}

type record struct {
	line      int
	sense     domain.Sense
	hypernyms []string
	lemmas    []string
}

// LoadFile reads a lexicon TSV file.
func LoadFile(path string) (*Lexicon, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open lexicon %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	lex, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("load lexicon %s: %w", path, err)
	}
	return lex, nil
}

// Load parses lexicon lines of the form
//
//	sense_id<TAB>hypernym,hypernym|-<TAB>lemma,lemma
//
// Blank lines and lines starting with '#' are ignored.
func Load(r io.Reader) (*Lexicon, error) {
	var records []record
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, "\t")
		if len(parts) != 3 || parts[0] == "" {
			return nil, fmt.Errorf("line %d: expected 3 tab-separated fields: %w", lineNo, domain.ErrMalformedLexicon)
		}
		rec := record{line: lineNo, sense: domain.Sense(parts[0])}
		if parts[1] != "-" && parts[1] != "" {
			rec.hypernyms = strings.Split(parts[1], ",")
		}
		rec.lemmas = strings.Split(parts[2], ",")
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	return build(records)
}

func build(records []record) (*Lexicon, error) {
	lex := &Lexicon{
		senses: make(map[string][]domain.Sense),
		lemmas: make(map[domain.Sense][]string, len(records)),
		nodes:  make(map[domain.Sense]graph.Node, len(records)),
		graph:  simple.NewUndirectedGraph(),
	}

	for _, rec := range records {
		if _, dup := lex.nodes[rec.sense]; dup {
			return nil, fmt.Errorf("line %d: duplicate sense %q: %w", rec.line, rec.sense, domain.ErrMalformedLexicon)
		}
		n := lex.graph.NewNode()
		lex.graph.AddNode(n)
		lex.nodes[rec.sense] = n
		lex.lemmas[rec.sense] = rec.lemmas
		for _, lemma := range rec.lemmas {
			lex.senses[lemma] = append(lex.senses[lemma], rec.sense)
		}
	}

	for _, rec := range records {
		from := lex.nodes[rec.sense]
		for _, h := range rec.hypernyms {
			to, ok := lex.nodes[domain.Sense(h)]
			if !ok {
				return nil, fmt.Errorf("line %d: unknown hypernym %q: %w", rec.line, h, domain.ErrMalformedLexicon)
			}
			if from.ID() == to.ID() {
				continue
			}
			lex.graph.SetEdge(lex.graph.NewEdge(from, to))
		}
	}
	return lex, nil
}

// SensesOf returns the senses declaring token as a lemma, falling back to the
// lower-cased token. The returned slice must not be modified.
func (l *Lexicon) SensesOf(token string) []domain.Sense {
	if s, ok := l.senses[token]; ok {
		return s
	}
	return l.senses[strings.ToLower(token)]
}

// Canonical returns the first lemma of the token's first sense.
func (l *Lexicon) Canonical(token string) (string, bool) {
	sense, ok := domain.CanonicalSense(l, token)
	if !ok {
		return "", false
	}
	lemmas := l.lemmas[sense]
	if len(lemmas) == 0 {
		return "", false
	}
	return lemmas[0], true
}

// Similarity returns 1/(1+d) where d is the shortest hypernym path between a and b.
// ok is false for unknown or disconnected senses.
func (l *Lexicon) Similarity(_ context.Context, a, b domain.Sense) (float64, bool, error) {
	from, okA := l.nodes[a]
	to, okB := l.nodes[b]
	if !okA || !okB {
		return 0, false, nil
	}
	if a == b {
		return 1, true, nil
	}

	depth := -1
	var bfs traverse.BreadthFirst
	bfs.Walk(l.graph, from, func(n graph.Node, d int) bool {
		if n.ID() == to.ID() {
			depth = d
			return true
		}
		return false
	})
	if depth < 0 {
		return 0, false, nil
	}
	return 1 / float64(depth+1), true, nil
}

// Len returns the number of senses.
func (l *Lexicon) Len() int { return len(l.nodes) }
