// Package sync はドキュメントコレクションと2つのストア(親チャンクストアと
// 子チャンクのベクトルストア)の差分同期を提供します。
//
// 同期はコンテンツハッシュの比較で追加・更新・削除・スキップを分類し、
// 更新と削除では再挿入の前に両ストアから当該ファイルの行を削除します。
// ファイル単位でコミットされるため、途中で失敗した実行は処理済みの
// ファイルを残したまま中断します。同期プロセスは同時に1つだけ動作する
// 前提です。
package sync

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"
)

// SyncService はドキュメント同期のビジネスロジックを提供する
type SyncService struct {
	repo     Repository
	vectors  VectorStore
	embedder Embedder
	source   FileSource
	chunker  Chunker
	logger   *slog.Logger
}

// NewSyncService は新しいSyncServiceを作成する
func NewSyncService(repo Repository, vectors VectorStore, embedder Embedder, source FileSource, chunker Chunker, logger *slog.Logger) *SyncService {
	return &SyncService{
		repo:     repo,
		vectors:  vectors,
		embedder: embedder,
		source:   source,
		chunker:  chunker,
		logger:   logger,
	}
}

// RunParams は同期実行のパラメータを表す
type RunParams struct {
	// Reset が true の場合、同期前に両ストアを全削除する
	Reset bool
}

// Run はファイルソースの現在の状態をストアへ差分同期する。
// いずれかのコラボレータが失敗した時点で実行を中断し、それまでに
// 処理したファイルはコミット済みのまま残る。
func (s *SyncService) Run(ctx context.Context, params RunParams) (*Result, error) {
	runID := uuid.New()
	startedAt := time.Now()
	logger := s.logger.With(slog.String("runId", runID.String()))

	if params.Reset {
		// 親ストア → ベクトルストアの順で全削除する
		if err := s.repo.DeleteAll(ctx); err != nil {
			return nil, fmt.Errorf("failed to reset parent store: %w", err)
		}
		if err := s.vectors.Reset(ctx); err != nil {
			return nil, fmt.Errorf("failed to reset vector store: %w", err)
		}
		logger.Info("cleared both stores before sync")
	}

	files, err := s.source.Files(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list source files: %w", err)
	}

	previous, err := s.repo.GetAllSourceFileHashes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load synced file hashes: %w", err)
	}

	current := make(map[string]File, len(files))
	names := make([]string, 0, len(files))
	for _, f := range files {
		current[f.Name] = f
		names = append(names, f.Name)
	}
	sort.Strings(names)

	var deleted []string
	for name := range previous {
		if _, ok := current[name]; !ok {
			deleted = append(deleted, name)
		}
	}
	sort.Strings(deleted)

	logger.Info("starting document sync",
		slog.Int("sourceFiles", len(files)),
		slog.Int("syncedFiles", len(previous)),
	)

	result := &Result{RunID: runID}

	for _, name := range deleted {
		if err := s.deleteFile(ctx, name); err != nil {
			return nil, err
		}
		result.Deleted++
		logger.Info("removed deleted file", slog.String("file", name))
	}

	syncedAt := time.Now()
	for _, name := range names {
		file := current[name]
		hash := ContentHash(file.Content)

		prevHash, known := previous[name]
		if known && prevHash == hash {
			result.Skipped++
			continue
		}

		if known {
			// 再挿入の前に既存の行を両ストアから取り除く
			if err := s.deleteFile(ctx, name); err != nil {
				return nil, err
			}
		}

		parents, children, err := s.syncFile(ctx, logger, file, hash, syncedAt)
		if err != nil {
			return nil, err
		}
		if parents == 0 {
			result.Skipped++
			continue
		}

		result.Parents += parents
		result.Children += children
		if known {
			result.Updated++
		} else {
			result.Added++
		}
	}

	result.Duration = time.Since(startedAt)
	logger.Info("document sync completed",
		slog.Int("added", result.Added),
		slog.Int("updated", result.Updated),
		slog.Int("deleted", result.Deleted),
		slog.Int("skipped", result.Skipped),
		slog.Int("parents", result.Parents),
		slog.Int("children", result.Children),
		slog.Duration("duration", result.Duration),
	)

	return result, nil
}

// deleteFile は指定ファイル由来の行を親ストア → ベクトルストアの順で削除する
func (s *SyncService) deleteFile(ctx context.Context, name string) error {
	if err := s.repo.DeleteBySourceFile(ctx, name); err != nil {
		return fmt.Errorf("failed to delete parent chunks of %s: %w", name, err)
	}
	if err := s.vectors.DeleteBySourceFile(ctx, name); err != nil {
		return fmt.Errorf("failed to delete vectors of %s: %w", name, err)
	}
	return nil
}

// syncFile は1ファイルをチャンク化して両ストアへ書き込む。
// 親チャンクの挿入でIDを採番してから子チャンクのIDを組み立てる。
// チャンクが1つも生成されないファイルは書き込まずに (0, 0, nil) を返す。
func (s *SyncService) syncFile(ctx context.Context, logger *slog.Logger, file File, hash string, syncedAt time.Time) (int, int, error) {
	chunks, err := s.chunker.Chunk(file.Content)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to chunk %s: %w", file.Name, err)
	}
	if len(chunks) == 0 {
		logger.Warn("file produced no chunks, skipping", slog.String("file", file.Name))
		return 0, 0, nil
	}

	parents := make([]*ParentChunk, len(chunks))
	for i, chunk := range chunks {
		parents[i] = &ParentChunk{
			SourceFile:  file.Name,
			ParentIndex: i,
			Content:     chunk.ParentText,
			ContentHash: hash,
			SyncedAt:    syncedAt,
		}
	}

	ids, err := s.repo.InsertParents(ctx, parents)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to insert parent chunks of %s: %w", file.Name, err)
	}
	if len(ids) != len(parents) {
		return 0, 0, fmt.Errorf("parent store returned %d ids for %d chunks of %s", len(ids), len(parents), file.Name)
	}

	var texts []string
	var records []*VectorRecord
	for i, chunk := range chunks {
		for childIndex, childText := range chunk.ChildTexts {
			texts = append(texts, childText)
			records = append(records, &VectorRecord{
				ID:      ChildID(file.Name, ids[i], childIndex),
				Content: childText,
				Metadata: ChildMetadata{
					SourceFile:  file.Name,
					ParentID:    ids[i],
					ParentIndex: i,
					ChildIndex:  childIndex,
					Hash:        hash,
					SyncedAt:    syncedAt,
				},
			})
		}
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to embed child chunks of %s: %w", file.Name, err)
	}
	if len(vectors) != len(texts) {
		return 0, 0, fmt.Errorf("embedder returned %d vectors for %d texts of %s", len(vectors), len(texts), file.Name)
	}
	for i, record := range records {
		record.Vector = vectors[i]
	}

	if err := s.vectors.Upsert(ctx, records); err != nil {
		return 0, 0, fmt.Errorf("failed to upsert vectors of %s: %w", file.Name, err)
	}

	logger.Info("synced file",
		slog.String("file", file.Name),
		slog.Int("parents", len(parents)),
		slog.Int("children", len(records)),
	)

	return len(parents), len(records), nil
}

// Verify はベクトルストアの全エントリを走査し、対応する親チャンクが
// 失われたエントリ(孤児)を報告する。孤児はエラーではなく検査結果として
// 返し、検索時には空の結果に折りたたまれる。
func (s *SyncService) Verify(ctx context.Context) (*VerifyResult, error) {
	entries, err := s.vectors.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vector entries: %w", err)
	}

	var ids []int64
	seen := make(map[int64]bool)
	for _, entry := range entries {
		if !seen[entry.Metadata.ParentID] {
			seen[entry.Metadata.ParentID] = true
			ids = append(ids, entry.Metadata.ParentID)
		}
	}

	result := &VerifyResult{Scanned: len(entries)}
	if len(ids) == 0 {
		return result, nil
	}

	parents, err := s.repo.GetParents(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load parent chunks: %w", err)
	}

	known := make(map[int64]bool, len(parents))
	for _, parent := range parents {
		known[parent.ID] = true
	}

	for _, entry := range entries {
		if !known[entry.Metadata.ParentID] {
			result.Orphans = append(result.Orphans, entry)
		}
	}

	if len(result.Orphans) > 0 {
		s.logger.Warn("found orphaned vector entries",
			slog.Int("scanned", result.Scanned),
			slog.Int("orphans", len(result.Orphans)),
		)
	}

	return result, nil
}
