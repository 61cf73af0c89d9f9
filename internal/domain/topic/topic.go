// Package topic holds the static topic→words table and its inverted index.
package topic

// WordsPerTopic is the number of words following each topic id in a table file.
const WordsPerTopic = 200

// RecordLines is the length of one topic record (id line + words).
const RecordLines = WordsPerTopic + 1

// Table maps topic ids to their associated words. Topic order is the load order.
type Table struct {
	ids   []string
	words map[string][]string
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{words: make(map[string][]string)}
}

// Add appends words to a topic, registering the topic on first use.
// Re-adding an existing id merges the word lists.
func (t *Table) Add(id string, words ...string) {
	if _, ok := t.words[id]; !ok {
		t.ids = append(t.ids, id)
		t.words[id] = nil
	}
	t.words[id] = append(t.words[id], words...)
}

// IDs returns topic ids in load order.
func (t *Table) IDs() []string { return t.ids }

// Words returns the word list of a topic.
func (t *Table) Words(id string) []string { return t.words[id] }

// Has reports whether id is a known topic.
func (t *Table) Has(id string) bool {
	_, ok := t.words[id]
	return ok
}

// Len returns the number of topics.
func (t *Table) Len() int { return len(t.ids) }

// Index is an inverted word → topics multiset.
type Index map[string]map[string]int

// Invert builds the word → topics index over the table.
func (t *Table) Invert() Index {
	idx := make(Index)
	for _, id := range t.ids {
		for _, w := range t.words[id] {
			idx.Add(w, id)
		}
	}
	return idx
}

// Add records one (word, topic) occurrence.
func (idx Index) Add(word, topic string) {
	topics, ok := idx[word]
	if !ok {
		topics = make(map[string]int)
		idx[word] = topics
	}
	topics[topic]++
}

// Count returns how many times word was recorded under topic.
func (idx Index) Count(word, topic string) int {
	return idx[word][topic]
}
