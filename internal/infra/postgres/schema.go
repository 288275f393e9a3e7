// Package postgres は親チャンクストアと子チャンクのベクトルストアの
// PostgreSQL + pgvector 実装を提供します。
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaTemplate はストアが使用するテーブルとインデックスの定義。
// %d には Embedding の次元数が入る。
const schemaTemplate = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS parent_chunks (
    id           bigserial PRIMARY KEY,
    source_file  text        NOT NULL,
    parent_index integer     NOT NULL,
    content      text        NOT NULL,
    content_hash text        NOT NULL,
    synced_at    timestamptz NOT NULL,
    UNIQUE (source_file, parent_index)
);

CREATE INDEX IF NOT EXISTS idx_parent_chunks_source_file
    ON parent_chunks (source_file);

CREATE TABLE IF NOT EXISTS child_chunks (
    id        text        PRIMARY KEY,
    embedding vector(%d)  NOT NULL,
    content   text        NOT NULL,
    metadata  jsonb       NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_child_chunks_source_file
    ON child_chunks ((metadata->>'sourceFile'));

CREATE INDEX IF NOT EXISTS idx_child_chunks_embedding
    ON child_chunks USING hnsw (embedding vector_cosine_ops);
`

// Migrate はスキーマを適用する。冪等であり起動のたびに実行してよい。
func Migrate(ctx context.Context, pool *pgxpool.Pool, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("embedding dimension must be positive: got %d", dimension)
	}

	if _, err := pool.Exec(ctx, fmt.Sprintf(schemaTemplate, dimension)); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	return nil
}
