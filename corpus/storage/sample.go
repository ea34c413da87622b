package storage

import (
	"fmt"
	"time"
)

// SampleConfig specifies the generated demo corpus.
type SampleConfig struct {
	NumDocuments int       // documents to generate
	Sentences    int       // sentences per document
	StartDate    time.Time // first article date
	OutputPath   string    // where to store the index database
}

// DefaultSampleConfig returns a small newswire-style corpus for demos
// and benchmarks.
func DefaultSampleConfig() SampleConfig {
	return SampleConfig{
		NumDocuments: 200,
		Sentences:    8,
		StartDate:    time.Date(1995, time.March, 1, 0, 0, 0, 0, time.UTC),
		OutputPath:   "testdata/sample.db",
	}
}

var (
	sampleSubjects = []string{"minister", "senator", "professor", "director", "economist"}
	samplePersons  = []string{"Meier", "Okafor", "Lindqvist", "Tanaka", "Moreau"}
	samplePlaces   = []string{"Geneva", "Nairobi", "Osaka", "Lyon", "Uppsala"}
	sampleVerbs    = []string{"announced", "visited", "criticized", "opened", "signed"}
	sampleObjects  = []string{"agreement", "exhibition", "reform", "budget", "treaty"}
)

// GenerateSample produces the annotated documents of the demo corpus.
// Content is synthetic but carries every annotation layer the indexes
// cover: tokens with tags, person and location entities, normalized
// dates, and dependency arcs.
func GenerateSample(config SampleConfig) []Document {
	docs := make([]Document, 0, config.NumDocuments)
	for d := 0; d < config.NumDocuments; d++ {
		doc := Document{ID: int32(d + 1), Source: "sample"}
		date := config.StartDate.AddDate(0, 0, d)

		for s := 0; s < config.Sentences; s++ {
			subject := sampleSubjects[(d+s)%len(sampleSubjects)]
			person := samplePersons[(d+2*s)%len(samplePersons)]
			place := samplePlaces[(d+3*s)%len(samplePlaces)]
			verb := sampleVerbs[(d+s)%len(sampleVerbs)]
			object := sampleObjects[(d+5*s)%len(sampleObjects)]

			words := []string{"the", subject, person, verb, "the", object, "in", place}
			tags := []string{"dt", "nn", "nnp", "vbd", "dt", "nn", "in", "nnp"}

			sent := Sentence{ID: int32(s)}
			offset := int32(0)
			for i, w := range words {
				end := offset + int32(len(w))
				sent.Tokens = append(sent.Tokens, Token{Text: w, Tag: tags[i], Begin: offset, End: end})
				offset = end + 1
			}

			personBegin := sent.Tokens[2].Begin
			sent.Entities = append(sent.Entities,
				EntityMention{Type: "PERSON", Text: person, Begin: personBegin, End: sent.Tokens[2].End},
				EntityMention{Type: "LOCATION", Text: place, Begin: sent.Tokens[7].Begin, End: sent.Tokens[7].End},
			)
			if s == 0 {
				sent.Entities = append(sent.Entities, EntityMention{
					Type: "DATE", Text: date.Format("2006-01-02"), Date: date,
				})
			}

			sent.Dependencies = append(sent.Dependencies,
				DependencyArc{Governor: verb, Relation: "nsubj", Dependent: person, Begin: personBegin, End: sent.Tokens[3].End},
				DependencyArc{Governor: verb, Relation: "dobj", Dependent: object, Begin: sent.Tokens[3].Begin, End: sent.Tokens[5].End},
			)
			doc.Sentences = append(doc.Sentences, sent)
		}
		docs = append(docs, doc)
	}
	return docs
}

// BuildSampleCorpus generates the demo corpus and writes its indexes
// to a Badger database at config.OutputPath.
func BuildSampleCorpus(config SampleConfig) (*Builder, error) {
	builder := NewBuilder()
	for _, doc := range GenerateSample(config) {
		builder.AddDocument(doc)
	}

	db, err := OpenBadger(config.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("create sample corpus: %w", err)
	}
	defer db.Close()

	if err := builder.Flush(db); err != nil {
		return nil, fmt.Errorf("write sample corpus: %w", err)
	}
	return builder, nil
}
