package vectorindex

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"

	"compliance-rag/internal/models"
)

const compress = false

// ChromemIndex is an Index backed by an embedded chromem-go database.
// The namespace maps to a chromem collection.
type ChromemIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewChromemIndex opens (or creates) the collection named namespace at dbPath.
// With inMemory set, nothing is persisted; used by tests.
func NewChromemIndex(dbPath, namespace string, inMemory bool) (*ChromemIndex, error) {
	var db *chromem.DB
	var err error
	if inMemory {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(dbPath, compress)
		if err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	collection, err := db.GetOrCreateCollection(namespace, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}

	return &ChromemIndex{db: db, collection: collection}, nil
}

func (x *ChromemIndex) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]chromem.Document, len(records))
	for i, rec := range records {
		docs[i] = chromem.Document{
			ID:        rec.ID,
			Content:   rec.Metadata[MetadataTextKey],
			Metadata:  rec.Metadata,
			Embedding: rec.Values,
		}
	}
	if err := x.collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	return nil
}

func (x *ChromemIndex) Query(ctx context.Context, vector []float32, topK int) ([]models.Match, error) {
	// chromem rejects queries asking for more results than stored documents,
	// and an empty collection must yield zero matches rather than an error.
	count := x.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if topK > count {
		topK = count
	}

	results, err := x.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: vector,
		NResults:       topK,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	matches := make([]models.Match, len(results))
	for i, res := range results {
		text := res.Metadata[MetadataTextKey]
		if text == "" {
			text = res.Content
		}
		matches[i] = models.Match{Score: res.Similarity, Text: text}
	}
	return matches, nil
}

func (x *ChromemIndex) Count(ctx context.Context) (int, error) {
	return x.collection.Count(), nil
}
