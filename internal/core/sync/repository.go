package sync

import (
	"context"

	"github.com/jinford/askdocs/internal/core/chunking"
)

// Repository は親チャンクストアへのデータアクセスインターフェース
// テスト時のスタブ用に消費者側で定義
type Repository interface {
	// InsertParents は親チャンクを一括挿入し、採番されたIDを挿入順で返す
	InsertParents(ctx context.Context, parents []*ParentChunk) ([]int64, error)
	// GetParents は指定されたIDの親チャンクを取得する
	GetParents(ctx context.Context, ids []int64) ([]*ParentChunk, error)
	// GetParentsBySourceFile は指定ファイルの親チャンクを parentIndex 順で取得する
	GetParentsBySourceFile(ctx context.Context, sourceFile string) ([]*ParentChunk, error)
	// GetAllSourceFileHashes は全ファイルの ファイル名 → コンテンツハッシュ を返す
	GetAllSourceFileHashes(ctx context.Context) (map[string]string, error)
	// DeleteBySourceFile は指定ファイルの親チャンクを全削除する
	DeleteBySourceFile(ctx context.Context, sourceFile string) error
	// DeleteAll は全親チャンクを削除する
	DeleteAll(ctx context.Context) error
}

// VectorStore は子チャンクのベクトルストアインターフェース
type VectorStore interface {
	// Upsert は子チャンクをID基準で挿入または置換する
	Upsert(ctx context.Context, records []*VectorRecord) error
	// DeleteBySourceFile は指定ファイル由来の子チャンクを全削除する
	DeleteBySourceFile(ctx context.Context, sourceFile string) error
	// ListAll は全エントリのIDとメタデータを返す
	ListAll(ctx context.Context) ([]*VectorEntry, error)
	// Reset は全エントリを削除する
	Reset(ctx context.Context) error
}

// Embedder はドキュメント側Embedding生成インターフェース
type Embedder interface {
	// EmbedDocuments は複数テキストのEmbeddingを入力順で生成する
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// FileSource は同期対象ファイルの供給インターフェース
type FileSource interface {
	// Files は同期対象の全ファイルを返す
	Files(ctx context.Context) ([]File, error)
}

// Chunker はドキュメントの親子チャンク化インターフェース
type Chunker interface {
	Chunk(content string) ([]*chunking.Chunk, error)
}
