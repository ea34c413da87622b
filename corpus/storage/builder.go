package storage

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/chronotext/chronotext/corpus"
)

// Token is one annotated token of a sentence.
type Token struct {
	Text  string
	Tag   string // part-of-speech tag, optional
	Begin int32
	End   int32
}

// EntityMention is a named-entity span. Date is set for mentions whose
// type is DATE and carries the normalized calendar date.
type EntityMention struct {
	Type  string
	Text  string
	Begin int32
	End   int32
	Date  time.Time
}

// DependencyArc is one grammatical dependency within a sentence.
type DependencyArc struct {
	Governor  string
	Relation  string
	Dependent string
	Begin     int32
	End       int32
}

// Sentence is one annotated sentence of a document.
type Sentence struct {
	ID           int32
	Tokens       []Token
	Entities     []EntityMention
	Dependencies []DependencyArc
}

// Document is an annotated document ready for indexing.
type Document struct {
	ID        int32
	Source    string
	Sentences []Sentence
}

// Writer receives finished index entries from a builder flush.
type Writer interface {
	Put(index string, key []byte, positions corpus.PositionList) error
}

// Builder accumulates index entries for a corpus in memory and flushes
// them to a Writer. Key composition here mirrors what the executors
// compose at query time: parts lowercased, joined with the delimiter,
// entity types uppercased, date keys in YYYYMMDD form.
type Builder struct {
	pending map[string]map[string]corpus.PositionList
	docs    map[int32]struct{}
	minDate time.Time
	maxDate time.Time
}

// NewBuilder creates an empty builder.
func NewBuilder() *Builder {
	pending := make(map[string]map[string]corpus.PositionList, len(IndexNames))
	for _, name := range IndexNames {
		pending[name] = make(map[string]corpus.PositionList)
	}
	return &Builder{
		pending: pending,
		docs:    make(map[int32]struct{}),
	}
}

// AddDocument indexes one document into the builder.
func (b *Builder) AddDocument(doc Document) {
	b.docs[doc.ID] = struct{}{}
	for _, sent := range doc.Sentences {
		b.addSentence(doc, sent)
	}
}

func (b *Builder) addSentence(doc Document, sent Sentence) {
	tokens := sent.Tokens

	for i, tok := range tokens {
		text := strings.ToLower(tok.Text)
		pos := corpus.Position{
			DocumentID: doc.ID,
			SentenceID: sent.ID,
			BeginChar:  tok.Begin,
			EndChar:    tok.End,
			Source:     doc.Source,
		}
		b.add(IndexUnigram, string(JoinKey(text)), pos)

		if tok.Tag != "" {
			b.add(IndexPos, string(JoinKey(strings.ToLower(tok.Tag), text)), pos)
		}

		if i+1 < len(tokens) {
			next := strings.ToLower(tokens[i+1].Text)
			span := pos
			span.EndChar = tokens[i+1].End
			b.add(IndexBigram, string(JoinKey(text, next)), span)
		}
		if i+2 < len(tokens) {
			second := strings.ToLower(tokens[i+1].Text)
			third := strings.ToLower(tokens[i+2].Text)
			span := pos
			span.EndChar = tokens[i+2].End
			b.add(IndexTrigram, string(JoinKey(text, second, third)), span)
		}
	}

	for _, ent := range sent.Entities {
		pos := corpus.Position{
			DocumentID: doc.ID,
			SentenceID: sent.ID,
			BeginChar:  ent.Begin,
			EndChar:    ent.End,
			Source:     doc.Source,
		}
		entType := strings.ToUpper(ent.Type)
		if entType == "DATE" && !ent.Date.IsZero() {
			b.add(IndexNerDate, ent.Date.Format("20060102"), pos)
			b.observeDate(ent.Date)
			continue
		}
		// Surface text keeps its case; the executor compares
		// case-insensitively and reports the stored form.
		b.add(IndexNer, string(JoinKey(entType, ent.Text)), pos)
	}

	for _, dep := range sent.Dependencies {
		pos := corpus.Position{
			DocumentID: doc.ID,
			SentenceID: sent.ID,
			BeginChar:  dep.Begin,
			EndChar:    dep.End,
			Source:     doc.Source,
		}
		key := JoinKey(
			strings.ToLower(dep.Governor),
			strings.ToLower(dep.Relation),
			strings.ToLower(dep.Dependent),
		)
		b.add(IndexDependency, string(key), pos)
	}
}

func (b *Builder) add(index, key string, pos corpus.Position) {
	b.pending[index][key] = append(b.pending[index][key], pos)
}

func (b *Builder) observeDate(d time.Time) {
	if b.minDate.IsZero() || d.Before(b.minDate) {
		b.minDate = d
	}
	if b.maxDate.IsZero() || d.After(b.maxDate) {
		b.maxDate = d
	}
}

// Flush writes every accumulated entry to the writer in deterministic
// key order.
func (b *Builder) Flush(w Writer) error {
	for _, index := range IndexNames {
		entries := b.pending[index]
		keys := make([]string, 0, len(entries))
		for k := range entries {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if err := w.Put(index, []byte(k), entries[k]); err != nil {
				return fmt.Errorf("flush %s: %w", index, err)
			}
		}
	}
	return nil
}

// DocumentCount returns the number of distinct documents indexed.
func (b *Builder) DocumentCount() int { return len(b.docs) }

// DateRange returns the earliest and latest normalized dates seen, or
// zero times if the corpus carries none.
func (b *Builder) DateRange() (time.Time, time.Time) {
	return b.minDate, b.maxDate
}

// memorySetWriter adapts an IndexSet of MemoryIndexes to the Writer
// contract.
type memorySetWriter struct {
	set *IndexSet
}

// MemoryWriter returns a Writer that targets the in-memory indexes of
// set. Indexes must have been created with NewMemoryIndex.
func MemoryWriter(set *IndexSet) Writer {
	return &memorySetWriter{set: set}
}

func (w *memorySetWriter) Put(index string, key []byte, positions corpus.PositionList) error {
	idx, ok := w.set.Index(index)
	if !ok {
		return fmt.Errorf("no such index %q", index)
	}
	mem, ok := idx.(*MemoryIndex)
	if !ok {
		return fmt.Errorf("index %q is not in-memory", index)
	}
	mem.Put(key, positions)
	return nil
}
