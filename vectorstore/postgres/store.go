package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	_ "github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/sagealpha/backend/vectorstore"
	"go.nhat.io/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
)

var DRIVER string

func init() {
	driver, err := otelsql.Register(
		"postgres",
		otelsql.TraceQueryWithoutArgs(),
		otelsql.TraceRowsClose(),
		otelsql.TraceRowsAffected(),
		otelsql.WithSystem(semconv.DBSystemPostgreSQL),
	)
	if err != nil {
		detail := "failed to register pg vector store with otel"
		slog.ErrorContext(context.Background(), detail, "error", err)
		panic(detail)
	}

	DRIVER = driver
}

type postgresStore struct {
	options vectorstore.Options
	conn    *sql.DB
}

func (p *postgresStore) Add(ctx context.Context, docs ...vectorstore.Document) error {
	query := `
		INSERT INTO documents (
			doc_id,
			text,
			meta,
			embedding
		)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (doc_id) DO NOTHING
	`

	for _, doc := range docs {
		metaJSON, err := json.Marshal(doc.Meta)
		if err != nil {
			return err
		}
		if _, err := p.conn.ExecContext(
			ctx,
			query,
			doc.DocID,
			doc.Text,
			metaJSON,
			pgvector.NewVector(doc.Embedding),
		); err != nil {
			return err
		}
	}

	return nil
}

func (p *postgresStore) Search(ctx context.Context, query []float32, k int) ([]vectorstore.Match, error) {
	if len(query) == 0 {
		return nil, nil
	}
	if k <= 0 {
		k = vectorstore.DefaultTopK
	}

	stmt := `
		SELECT
			doc_id,
			text,
			meta,
			embedding,
			1 - (embedding <=> $1) as score
		FROM documents
		ORDER BY embedding <=> $1, doc_id
		LIMIT $2
	`

	rows, err := p.conn.QueryContext(ctx, stmt, pgvector.NewVector(query), k)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []vectorstore.Match

	for rows.Next() {
		var m vectorstore.Match
		var metaBytes []byte
		var emb pgvector.Vector

		if err := rows.Scan(&m.DocID, &m.Text, &metaBytes, &emb, &m.Score); err != nil {
			return nil, err
		}

		m.Embedding = emb.Slice()

		if err := json.Unmarshal(metaBytes, &m.Meta); err != nil {
			m.Meta = map[string]any{}
		}

		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return matches, nil
}

// Save is a no-op: rows are durable on insert.
func (p *postgresStore) Save(ctx context.Context) error {
	return nil
}

func (p *postgresStore) Len() int {
	var n int
	if err := p.conn.QueryRowContext(context.Background(), `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0
	}
	return n
}

func NewStore(opts ...vectorstore.Option) (vectorstore.Store, error) {
	options := vectorstore.NewOptions(opts...)

	conn, err := sql.Open(DRIVER, options.Location)
	if err != nil {
		return nil, err
	}

	if err := conn.PingContext(options.Context); err != nil {
		return nil, err
	}

	return &postgresStore{
		options: options,
		conn:    conn,
	}, nil
}
