package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	docsync "github.com/jinford/askdocs/internal/core/sync"
)

// VectorStore は core/sync.VectorStore を実装する pgvector リポジトリ
type VectorStore struct {
	pool *pgxpool.Pool
}

// NewVectorStore は新しい VectorStore を返す
func NewVectorStore(pool *pgxpool.Pool) *VectorStore {
	return &VectorStore{pool: pool}
}

var _ docsync.VectorStore = (*VectorStore)(nil)

// Upsert は子チャンクをID基準で挿入または置換する
func (s *VectorStore) Upsert(ctx context.Context, records []*docsync.VectorRecord) error {
	if len(records) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, record := range records {
		metadata, err := json.Marshal(record.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata of %s: %w", record.ID, err)
		}

		batch.Queue(
			`INSERT INTO child_chunks (id, embedding, content, metadata)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (id) DO UPDATE SET
			     embedding = EXCLUDED.embedding,
			     content   = EXCLUDED.content,
			     metadata  = EXCLUDED.metadata`,
			record.ID, pgvector.NewVector(record.Vector), record.Content, metadata,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to upsert child chunk: %w", err)
		}
	}

	return nil
}

// DeleteBySourceFile は指定ファイル由来の子チャンクを全削除する
func (s *VectorStore) DeleteBySourceFile(ctx context.Context, sourceFile string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM child_chunks WHERE metadata->>'sourceFile' = $1`, sourceFile,
	); err != nil {
		return fmt.Errorf("failed to delete child chunks of %s: %w", sourceFile, err)
	}
	return nil
}

// ListAll は全エントリのIDとメタデータをID順で返す
func (s *VectorStore) ListAll(ctx context.Context) ([]*docsync.VectorEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, metadata FROM child_chunks ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list child chunks: %w", err)
	}
	defer rows.Close()

	var entries []*docsync.VectorEntry
	for rows.Next() {
		var (
			entry docsync.VectorEntry
			raw   []byte
		)
		if err := rows.Scan(&entry.ID, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan child chunk: %w", err)
		}
		if err := json.Unmarshal(raw, &entry.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata of %s: %w", entry.ID, err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read child chunks: %w", err)
	}

	return entries, nil
}

// Reset は全エントリを削除する
func (s *VectorStore) Reset(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM child_chunks`); err != nil {
		return fmt.Errorf("failed to reset child chunks: %w", err)
	}
	return nil
}
