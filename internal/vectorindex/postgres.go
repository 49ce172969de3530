package vectorindex

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"compliance-rag/internal/models"
)

type frameworkChunk struct {
	bun.BaseModel `bun:"table:framework_chunks,alias:fc"`
	ID            string    `bun:"id,pk"`
	Namespace     string    `bun:"namespace,notnull"`
	Text          string    `bun:"text,notnull"`
	Embedding     []float32 `bun:"embedding,notnull,type:vector(1536)"`
	Score         float32   `bun:"score,scanonly"`
}

// PostgresIndex is an Index backed by Postgres with the pgvector extension.
type PostgresIndex struct {
	db        *bun.DB
	namespace string
}

func NewPostgresIndex(dsn, password, namespace string, debug bool) *PostgresIndex {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(password)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}
	return &PostgresIndex{db: db, namespace: namespace}
}

// Init creates the chunk table if it does not exist.
func (x *PostgresIndex) Init(ctx context.Context) error {
	_, err := x.db.NewCreateTable().Model((*frameworkChunk)(nil)).IfNotExists().Exec(ctx)
	return err
}

func (x *PostgresIndex) Close() error {
	return x.db.Close()
}

func (x *PostgresIndex) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]frameworkChunk, len(records))
	for i, rec := range records {
		rows[i] = frameworkChunk{
			ID:        rec.ID,
			Namespace: x.namespace,
			Text:      rec.Metadata[MetadataTextKey],
			Embedding: rec.Values,
		}
	}
	// Re-ingestion overwrites by id.
	_, err := x.db.NewInsert().
		Model(&rows).
		On("CONFLICT (id) DO UPDATE").
		Set("text = EXCLUDED.text").
		Set("embedding = EXCLUDED.embedding").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to upsert chunks: %w", err)
	}
	return nil
}

func (x *PostgresIndex) Query(ctx context.Context, vector []float32, topK int) ([]models.Match, error) {
	var rows []frameworkChunk
	err := x.db.NewSelect().
		Model(&rows).
		ColumnExpr("fc.*").
		ColumnExpr("1 - (embedding <=> ?) AS score", vector).
		Where("namespace = ?", x.namespace).
		OrderExpr("embedding <=> ?", vector).
		Limit(topK).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}

	matches := make([]models.Match, len(rows))
	for i, row := range rows {
		matches[i] = models.Match{Score: row.Score, Text: row.Text}
	}
	return matches, nil
}

func (x *PostgresIndex) Count(ctx context.Context) (int, error) {
	return x.db.NewSelect().
		Model((*frameworkChunk)(nil)).
		Where("namespace = ?", x.namespace).
		Count(ctx)
}
