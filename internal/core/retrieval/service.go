// Package retrieval は子チャンクのベクトル検索と親チャンクへの引き当てを
// 組み合わせた検索を提供します。
//
// 小さな子チャンクで検索精度を確保しつつ、回答コンテキストには親チャンクの
// 広い文脈を渡す、いわゆる parent-child retrieval の読み取り側です。
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

var (
	// ErrEmptyQuestion は質問が空または空白のみの場合のエラー
	ErrEmptyQuestion = errors.New("question must not be empty")

	// ErrInvalidTopK は検索件数が正でない場合のエラー
	ErrInvalidTopK = errors.New("topK must be positive")

	// ErrInvalidMinSimilarity は類似度の下限が [0, 1] の範囲外の場合のエラー
	ErrInvalidMinSimilarity = errors.New("minimum similarity must be in [0, 1]")
)

// Config は Retriever の検索パラメータを表す
type Config struct {
	TopK          int     // 子チャンク検索の最大ヒット数
	MinSimilarity float64 // これ未満の類似度のヒットは無関係として捨てる
}

// DefaultConfig はデフォルトの検索パラメータを返す
func DefaultConfig() Config {
	return Config{
		TopK:          5,
		MinSimilarity: 0.35,
	}
}

// Retriever は質問に関連する親チャンクの検索を提供する
type Retriever struct {
	searcher      VectorSearcher
	parents       ParentReader
	embedder      Embedder
	topK          int
	minSimilarity float64
	logger        *slog.Logger
}

// NewRetriever は設定を検証して新しい Retriever を作成する
func NewRetriever(searcher VectorSearcher, parents ParentReader, embedder Embedder, cfg Config, logger *slog.Logger) (*Retriever, error) {
	if cfg.TopK <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidTopK, cfg.TopK)
	}
	if cfg.MinSimilarity < 0 || cfg.MinSimilarity > 1 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidMinSimilarity, cfg.MinSimilarity)
	}

	return &Retriever{
		searcher:      searcher,
		parents:       parents,
		embedder:      embedder,
		topK:          cfg.TopK,
		minSimilarity: cfg.MinSimilarity,
		logger:        logger,
	}, nil
}

// Retrieve は質問に関連する親チャンクを類似度降順で返す。
// 類似度は各親の配下でヒットした子チャンクの最大値を採用する。
// 関連するチャンクが見つからない場合は空の結果を返す(エラーではない)。
func (r *Retriever) Retrieve(ctx context.Context, question string) ([]*ContextEntry, error) {
	// Embedding呼び出しの前にバリデーションする
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	vector, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	matches, err := r.searcher.Query(ctx, vector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search child chunks: %w", err)
	}

	// 類似度の下限はここで一度だけ適用する。親ごとに最大類似度を残し、
	// 親の出現順(最初にヒットした順)を保持する。
	best := make(map[int64]float64)
	var order []int64
	for _, match := range matches {
		if match.Similarity < r.minSimilarity {
			continue
		}
		current, seen := best[match.Metadata.ParentID]
		if !seen {
			order = append(order, match.Metadata.ParentID)
		}
		if !seen || match.Similarity > current {
			best[match.Metadata.ParentID] = match.Similarity
		}
	}

	if len(order) == 0 {
		r.logger.Info("no relevant chunks found",
			slog.Int("matches", len(matches)),
			slog.Float64("minSimilarity", r.minSimilarity),
		)
		return nil, nil
	}

	parents, err := r.parents.GetParents(ctx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to load parent chunks: %w", err)
	}
	if len(parents) == 0 {
		// ベクトルストアだけが残った古いインデックスのヒットは空として扱う
		r.logger.Warn("vector matches reference no existing parent chunks",
			slog.Int("parentIds", len(order)),
		)
		return nil, nil
	}

	byID := make(map[int64]*Parent, len(parents))
	for _, parent := range parents {
		byID[parent.ID] = parent
	}

	entries := make([]*ContextEntry, 0, len(order))
	for _, parentID := range order {
		parent, ok := byID[parentID]
		if !ok {
			r.logger.Warn("parent chunk missing for vector match", slog.Int64("parentId", parentID))
			continue
		}
		entries = append(entries, &ContextEntry{
			SourceFile: parent.SourceFile,
			Content:    parent.Content,
			Similarity: best[parentID],
		})
	}

	// 最大類似度の降順に並べる。同値は先にヒットした親が前に来る
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Similarity > entries[j].Similarity
	})

	return entries, nil
}
