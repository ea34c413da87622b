package executor

import (
	"strings"
	"testing"
	"time"

	"github.com/chronotext/chronotext/corpus"
	"github.com/chronotext/chronotext/corpus/storage"
)

// einsteinBirth is the normalized date mentioned in document 3.
var einsteinBirth = time.Date(1879, time.March, 14, 0, 0, 0, 0, time.UTC)

// miniCorpus builds the three-document corpus the executor tests run
// against:
//
//	doc 1 sentence 0: "apple pie is served"
//	doc 1 sentence 1: "served daily"
//	doc 2 sentence 0: "apple juice"
//	doc 3 sentence 0: "Einstein was born in 1879"
func miniCorpus(t *testing.T) *storage.IndexSet {
	t.Helper()

	sentence := func(id int32, text string) storage.Sentence {
		sent := storage.Sentence{ID: id}
		offset := int32(0)
		for _, w := range strings.Fields(text) {
			end := offset + int32(len(w))
			sent.Tokens = append(sent.Tokens, storage.Token{Text: w, Tag: "nn", Begin: offset, End: end})
			offset = end + 1
		}
		return sent
	}

	doc3Sent := sentence(0, "Einstein was born in 1879")
	doc3Sent.Entities = []storage.EntityMention{
		{Type: "PERSON", Text: "Einstein", Begin: 0, End: 8},
		{Type: "DATE", Text: "1879", Date: einsteinBirth},
	}
	doc3Sent.Dependencies = []storage.DependencyArc{
		{Governor: "born", Relation: "nsubjpass", Dependent: "Einstein", Begin: 0, End: 17},
	}

	docs := []storage.Document{
		{ID: 1, Sentences: []storage.Sentence{
			sentence(0, "apple pie is served"),
			sentence(1, "served daily"),
		}},
		{ID: 2, Sentences: []storage.Sentence{
			sentence(0, "apple juice"),
		}},
		{ID: 3, Sentences: []storage.Sentence{doc3Sent}},
	}

	builder := storage.NewBuilder()
	for _, doc := range docs {
		builder.AddDocument(doc)
	}

	set := storage.MemoryIndexSet()
	if err := builder.Flush(storage.MemoryWriter(set)); err != nil {
		t.Fatalf("flush mini corpus: %v", err)
	}
	return set
}

func miniEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(miniCorpus(t), nil)
}

// docSet returns the sorted distinct documents of a result.
func docSet(r *corpus.QueryResult) []int32 {
	seen := map[int32]struct{}{}
	var out []int32
	for _, d := range r.Details() {
		if _, ok := seen[d.DocumentID()]; !ok {
			seen[d.DocumentID()] = struct{}{}
			out = append(out, d.DocumentID())
		}
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// sentenceUnits returns the distinct (document, sentence) pairs of a
// result.
func sentenceUnits(r *corpus.QueryResult) map[corpus.SentenceKey]struct{} {
	out := make(map[corpus.SentenceKey]struct{})
	for _, d := range r.Details() {
		out[corpus.SentenceKey{DocumentID: d.DocumentID(), SentenceID: d.SentenceID()}] = struct{}{}
	}
	return out
}
