// Command build-testdb generates the sample corpus database used by
// demos and benchmarks, and registers it in the corpus metadata.
package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/chronotext/chronotext/corpus/metadata"
	"github.com/chronotext/chronotext/corpus/storage"
)

func main() {
	var docs, sentences int
	var out, metaPath, startDate string

	pflag.IntVar(&docs, "documents", 200, "number of documents to generate")
	pflag.IntVar(&sentences, "sentences", 8, "sentences per document")
	pflag.StringVar(&out, "out", "testdata/sample.db", "index database path")
	pflag.StringVar(&metaPath, "metadata", "testdata/corpora.db", "metadata registry path")
	pflag.StringVar(&startDate, "start", "1995-03-01", "first article date (YYYY-MM-DD)")
	pflag.Parse()

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	start, err := time.ParseInLocation("2006-01-02", startDate, time.UTC)
	if err != nil {
		logger.Fatal("bad start date", zap.String("start", startDate), zap.Error(err))
	}

	config := storage.SampleConfig{
		NumDocuments: docs,
		Sentences:    sentences,
		StartDate:    start,
		OutputPath:   out,
	}

	if err := os.RemoveAll(config.OutputPath); err != nil {
		logger.Fatal("remove existing database", zap.Error(err))
	}

	logger.Info("building sample corpus",
		zap.Int("documents", config.NumDocuments),
		zap.Int("sentences", config.Sentences),
		zap.String("path", config.OutputPath))

	builder, err := storage.BuildSampleCorpus(config)
	if err != nil {
		logger.Fatal("build failed", zap.Error(err))
	}

	registry, err := metadata.Open(metaPath)
	if err != nil {
		logger.Fatal("open metadata registry", zap.Error(err))
	}
	defer registry.Close()

	minDate, maxDate := builder.DateRange()
	info := metadata.Info{
		Name:          "sample",
		DocumentCount: builder.DocumentCount(),
		Indexes:       storage.IndexNames,
		StartDate:     minDate,
		EndDate:       maxDate,
	}
	if err := registry.Put(context.Background(), info); err != nil {
		logger.Fatal("register corpus", zap.Error(err))
	}

	logger.Info("done",
		zap.Int("documents", builder.DocumentCount()),
		zap.Time("from", minDate),
		zap.Time("to", maxDate))
}
