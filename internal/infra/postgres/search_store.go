package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	pgvector "github.com/pgvector/pgvector-go"

	"github.com/jinford/askdocs/internal/core/retrieval"
)

// SearchStore は core/retrieval の VectorSearcher と ParentReader を実装する
// 読み取り専用リポジトリ
type SearchStore struct {
	pool *pgxpool.Pool
}

// NewSearchStore は新しい SearchStore を返す
func NewSearchStore(pool *pgxpool.Pool) *SearchStore {
	return &SearchStore{pool: pool}
}

var (
	_ retrieval.VectorSearcher = (*SearchStore)(nil)
	_ retrieval.ParentReader   = (*SearchStore)(nil)
)

// Query はコサイン類似度の降順で子チャンクを最大 topK 件返す
func (s *SearchStore) Query(ctx context.Context, vector []float32, topK int) ([]*retrieval.Match, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, content, metadata, 1 - (embedding <=> $1) AS similarity
		 FROM child_chunks
		 ORDER BY embedding <=> $1
		 LIMIT $2`,
		pgvector.NewVector(vector), topK,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search child chunks: %w", err)
	}
	defer rows.Close()

	var matches []*retrieval.Match
	for rows.Next() {
		var (
			match retrieval.Match
			raw   []byte
		)
		if err := rows.Scan(&match.ID, &match.Content, &raw, &match.Similarity); err != nil {
			return nil, fmt.Errorf("failed to scan search hit: %w", err)
		}
		if err := json.Unmarshal(raw, &match.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata of %s: %w", match.ID, err)
		}
		matches = append(matches, &match)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read search hits: %w", err)
	}

	return matches, nil
}

// GetParents は指定されたIDの親チャンクを返す。存在しないIDは黙って省く
func (s *SearchStore) GetParents(ctx context.Context, ids []int64) ([]*retrieval.Parent, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, source_file, content FROM parent_chunks WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get parent chunks: %w", err)
	}
	defer rows.Close()

	var parents []*retrieval.Parent
	for rows.Next() {
		parent := &retrieval.Parent{}
		if err := rows.Scan(&parent.ID, &parent.SourceFile, &parent.Content); err != nil {
			return nil, fmt.Errorf("failed to scan parent chunk: %w", err)
		}
		parents = append(parents, parent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read parent chunks: %w", err)
	}

	return parents, nil
}
