package retrieval

import "context"

// VectorSearcher は子チャンクの類似検索インターフェース
// テスト時のスタブ用に消費者側で定義
type VectorSearcher interface {
	// Query はベクトルに類似する子チャンクを類似度降順で最大 topK 件返す。
	// 類似度は [0, 1] で 1 が完全一致。
	Query(ctx context.Context, vector []float32, topK int) ([]*Match, error)
}

// ParentReader は親チャンクの取得インターフェース
type ParentReader interface {
	// GetParents は指定されたIDの親チャンクを返す。存在しないIDは黙って省く
	GetParents(ctx context.Context, ids []int64) ([]*Parent, error)
}

// Embedder はクエリ側Embedding生成インターフェース
type Embedder interface {
	// EmbedQuery は検索クエリのEmbeddingを生成する
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}
