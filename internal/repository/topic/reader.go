// Package topic reads hidden-topic tables from disk.
package topic

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/kailas-cloud/snipgram/internal/domain"
	domtopic "github.com/kailas-cloud/snipgram/internal/domain/topic"
)

var lineCleaner = strings.NewReplacer("\n", "", "\t", "", "\r", "")

// ReadFile loads a topic table file.
func ReadFile(path string) (*domtopic.Table, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open topics %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	table, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("read topics %s: %w", path, err)
	}
	return table, nil
}

// Read parses consecutive records of domtopic.RecordLines lines: a topic id
// followed by its words. Newlines and tabs are removed from every line.
// A repeated id extends the existing word list.
func Read(r io.Reader) (*domtopic.Table, error) {
	table := domtopic.NewTable()
	scanner := bufio.NewScanner(r)

	var (
		id     string
		words  []string
		inRec  int
		record int
	)
	for scanner.Scan() {
		line := lineCleaner.Replace(scanner.Text())
		if inRec == 0 {
			id = line
			words = make([]string, 0, domtopic.WordsPerTopic)
		} else {
			words = append(words, line)
		}
		inRec++
		if inRec == domtopic.RecordLines {
			table.Add(id, words...)
			inRec = 0
			record++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan topics: %w", err)
	}
	if inRec != 0 {
		return nil, fmt.Errorf("record %d (%q) has %d of %d lines: %w",
			record+1, id, inRec, domtopic.RecordLines, domain.ErrMalformedTopicTable)
	}
	return table, nil
}
