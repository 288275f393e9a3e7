// Package openai は OpenAI API を使用したEmbeddingとLLM補完のアダプタを提供します。
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/jinford/askdocs/internal/core/retrieval"
	docsync "github.com/jinford/askdocs/internal/core/sync"
)

const (
	// DefaultEmbeddingModel はモデル未指定時のデフォルトモデル
	DefaultEmbeddingModel = "text-embedding-3-small"
	// DefaultEmbeddingDimension はOpenAI推奨のデフォルト次元
	DefaultEmbeddingDimension = 1536
	// MaxEmbeddingBatchSize はAPIの1リクエストあたりの最大入力数
	MaxEmbeddingBatchSize = 100
)

// Embedder は OpenAI API を使用してテキストをベクトルに変換する。
// クエリとドキュメントで別々のプレフィックスを付けられる
// (E5系モデルをOpenAI互換APIで使う場合向け。通常は空でよい)。
type Embedder struct {
	client         openai.Client
	model          string
	dimension      int
	queryPrefix    string
	documentPrefix string
}

type embedderOptions struct {
	model          string
	dimension      int
	queryPrefix    string
	documentPrefix string
}

// EmbedderOption は Embedder のオプション設定
type EmbedderOption func(*embedderOptions)

// WithEmbeddingModel はモデル名を上書きする
func WithEmbeddingModel(model string) EmbedderOption {
	return func(o *embedderOptions) {
		o.model = model
	}
}

// WithEmbeddingDimension はベクトル次元を上書きする
func WithEmbeddingDimension(dimension int) EmbedderOption {
	return func(o *embedderOptions) {
		o.dimension = dimension
	}
}

// WithTaskPrefixes はクエリ側・ドキュメント側のプレフィックスを設定する
func WithTaskPrefixes(queryPrefix, documentPrefix string) EmbedderOption {
	return func(o *embedderOptions) {
		o.queryPrefix = queryPrefix
		o.documentPrefix = documentPrefix
	}
}

// NewEmbedder は新しい Embedder を作成する
func NewEmbedder(apiKey string, opts ...EmbedderOption) *Embedder {
	options := embedderOptions{
		model:     DefaultEmbeddingModel,
		dimension: DefaultEmbeddingDimension,
	}
	for _, opt := range opts {
		opt(&options)
	}

	return &Embedder{
		client: openai.NewClient(
			option.WithAPIKey(apiKey),
		),
		model:          options.model,
		dimension:      options.dimension,
		queryPrefix:    options.queryPrefix,
		documentPrefix: options.documentPrefix,
	}
}

// EmbedQuery は検索クエリの Embedding を生成する
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := e.embedBatch(ctx, []string{e.queryPrefix + text})
	if err != nil {
		return nil, err
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings generated")
	}
	return embeddings[0], nil
}

// EmbedDocuments は複数ドキュメントの Embedding を入力順で生成する。
// APIの上限を超える入力は内部で分割してリクエストする。
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	inputs := make([]string, len(texts))
	for i, text := range texts {
		inputs[i] = e.documentPrefix + text
	}

	embeddings := make([][]float32, 0, len(inputs))
	for start := 0; start < len(inputs); start += MaxEmbeddingBatchSize {
		end := start + MaxEmbeddingBatchSize
		if end > len(inputs) {
			end = len(inputs)
		}

		batch, err := e.embedBatch(ctx, inputs[start:end])
		if err != nil {
			return nil, err
		}
		if len(batch) != end-start {
			return nil, fmt.Errorf("embedding API returned %d vectors for %d inputs", len(batch), end-start)
		}
		embeddings = append(embeddings, batch...)
	}

	return embeddings, nil
}

func (e *Embedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	params := openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
	}

	if len(texts) == 1 {
		params.Input = openai.EmbeddingNewParamsInputUnion{
			OfString: openai.String(texts[0]),
		}
	} else {
		params.Input = openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: texts,
		}
	}

	if e.dimension > 0 {
		params.Dimensions = openai.Int(int64(e.dimension))
	}

	resp, err := e.client.Embeddings.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}

	var embeddings [][]float32
	for _, data := range resp.Data {
		vector := make([]float32, len(data.Embedding))
		for i, v := range data.Embedding {
			vector[i] = float32(v)
		}
		embeddings = append(embeddings, vector)
	}

	return embeddings, nil
}

// ModelName はモデル名を返す
func (e *Embedder) ModelName() string {
	return e.model
}

// Dimension はベクトル次元数を返す
func (e *Embedder) Dimension() int {
	return e.dimension
}

// インターフェース実装の確認
var (
	_ docsync.Embedder   = (*Embedder)(nil)
	_ retrieval.Embedder = (*Embedder)(nil)
)
