package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	docsync "github.com/jinford/askdocs/internal/core/sync"
)

// ParentStore は core/sync.Repository を実装する PostgreSQL リポジトリ
type ParentStore struct {
	pool *pgxpool.Pool
}

// NewParentStore は新しい ParentStore を返す
func NewParentStore(pool *pgxpool.Pool) *ParentStore {
	return &ParentStore{pool: pool}
}

var _ docsync.Repository = (*ParentStore)(nil)

// InsertParents は親チャンクを一括挿入し、採番されたIDを挿入順で返す
func (s *ParentStore) InsertParents(ctx context.Context, parents []*docsync.ParentChunk) ([]int64, error) {
	if len(parents) == 0 {
		return nil, nil
	}

	batch := &pgx.Batch{}
	for _, parent := range parents {
		batch.Queue(
			`INSERT INTO parent_chunks (source_file, parent_index, content, content_hash, synced_at)
			 VALUES ($1, $2, $3, $4, $5)
			 RETURNING id`,
			parent.SourceFile, parent.ParentIndex, parent.Content, parent.ContentHash, parent.SyncedAt,
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	ids := make([]int64, len(parents))
	for i := range parents {
		if err := results.QueryRow().Scan(&ids[i]); err != nil {
			return nil, fmt.Errorf("failed to insert parent chunk: %w", err)
		}
	}

	return ids, nil
}

// GetParents は指定されたIDの親チャンクを返す。存在しないIDは省かれる
func (s *ParentStore) GetParents(ctx context.Context, ids []int64) ([]*docsync.ParentChunk, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, source_file, parent_index, content, content_hash, synced_at
		 FROM parent_chunks
		 WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get parent chunks: %w", err)
	}
	defer rows.Close()

	return scanParents(rows)
}

// GetParentsBySourceFile は指定ファイルの親チャンクを parentIndex 順で返す
func (s *ParentStore) GetParentsBySourceFile(ctx context.Context, sourceFile string) ([]*docsync.ParentChunk, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, source_file, parent_index, content, content_hash, synced_at
		 FROM parent_chunks
		 WHERE source_file = $1
		 ORDER BY parent_index`,
		sourceFile,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get parent chunks of %s: %w", sourceFile, err)
	}
	defer rows.Close()

	return scanParents(rows)
}

// GetAllSourceFileHashes は全ファイルの ファイル名 → コンテンツハッシュ を返す
func (s *ParentStore) GetAllSourceFileHashes(ctx context.Context) (map[string]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT source_file, content_hash FROM parent_chunks`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list source file hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var sourceFile, hash string
		if err := rows.Scan(&sourceFile, &hash); err != nil {
			return nil, fmt.Errorf("failed to scan source file hash: %w", err)
		}
		hashes[sourceFile] = hash
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read source file hashes: %w", err)
	}

	return hashes, nil
}

// DeleteBySourceFile は指定ファイルの親チャンクを全削除する
func (s *ParentStore) DeleteBySourceFile(ctx context.Context, sourceFile string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM parent_chunks WHERE source_file = $1`, sourceFile,
	); err != nil {
		return fmt.Errorf("failed to delete parent chunks of %s: %w", sourceFile, err)
	}
	return nil
}

// DeleteAll は全親チャンクを削除する
func (s *ParentStore) DeleteAll(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM parent_chunks`); err != nil {
		return fmt.Errorf("failed to delete all parent chunks: %w", err)
	}
	return nil
}

func scanParents(rows pgx.Rows) ([]*docsync.ParentChunk, error) {
	var parents []*docsync.ParentChunk
	for rows.Next() {
		parent := &docsync.ParentChunk{}
		if err := rows.Scan(
			&parent.ID, &parent.SourceFile, &parent.ParentIndex,
			&parent.Content, &parent.ContentHash, &parent.SyncedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan parent chunk: %w", err)
		}
		parents = append(parents, parent)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read parent chunks: %w", err)
	}
	return parents, nil
}
