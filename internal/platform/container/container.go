// Package container はコア層のサービスとインフラ層のアダプタを組み立てる
// DIコンテナを提供します。
package container

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jinford/askdocs/internal/core/answer"
	"github.com/jinford/askdocs/internal/core/chunking"
	"github.com/jinford/askdocs/internal/core/retrieval"
	docsync "github.com/jinford/askdocs/internal/core/sync"
	"github.com/jinford/askdocs/internal/infra/fsys"
	"github.com/jinford/askdocs/internal/infra/openai"
	"github.com/jinford/askdocs/internal/infra/postgres"
	"github.com/jinford/askdocs/internal/infra/tokencount"
	"github.com/jinford/askdocs/internal/platform/database"
	"github.com/jinford/askdocs/pkg/config"
)

// Embedder は同期側と検索側の両方のEmbedding生成を提供する
type Embedder interface {
	docsync.Embedder
	retrieval.Embedder
}

// ServiceContainer はアプリケーションの依存関係を保持する
type ServiceContainer struct {
	SyncService *docsync.SyncService
	Retriever   *retrieval.Retriever
	Composer    *answer.Composer
	Logger      *slog.Logger

	parentStore *postgres.ParentStore
	pool        *pgxpool.Pool
}

type containerOptions struct {
	logger       *slog.Logger
	embedder     Embedder
	llmClient    answer.CompletionClient
	fileSource   docsync.FileSource
	tokenCounter answer.TokenCounter
}

// ContainerOption は ServiceContainer 構築時のオプション
type ContainerOption func(*containerOptions)

// WithContainerLogger はロガーを差し替える
func WithContainerLogger(logger *slog.Logger) ContainerOption {
	return func(opts *containerOptions) {
		opts.logger = logger
	}
}

// WithContainerEmbedder はカスタム Embedder を注入する
func WithContainerEmbedder(embedder Embedder) ContainerOption {
	return func(opts *containerOptions) {
		opts.embedder = embedder
	}
}

// WithContainerLLMClient は LLM クライアントを差し替える
func WithContainerLLMClient(client answer.CompletionClient) ContainerOption {
	return func(opts *containerOptions) {
		opts.llmClient = client
	}
}

// WithContainerFileSource はドキュメントソースを差し替える
func WithContainerFileSource(source docsync.FileSource) ContainerOption {
	return func(opts *containerOptions) {
		opts.fileSource = source
	}
}

// WithContainerTokenCounter は TokenCounter を差し替える
func WithContainerTokenCounter(counter answer.TokenCounter) ContainerOption {
	return func(opts *containerOptions) {
		opts.tokenCounter = counter
	}
}

// NewContainer は設定からコンテナを生成する。
// データベースへ接続してスキーマを適用し、全サービスを組み立てる。
func NewContainer(ctx context.Context, cfg *config.Config, opts ...ContainerOption) (*ServiceContainer, error) {
	options := containerOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	pool, err := database.NewPool(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("データベース初期化に失敗しました: %w", err)
	}

	if err := postgres.Migrate(ctx, pool, cfg.OpenAI.EmbeddingDimension); err != nil {
		pool.Close()
		return nil, fmt.Errorf("スキーマ適用に失敗しました: %w", err)
	}

	parentStore := postgres.NewParentStore(pool)
	vectorStore := postgres.NewVectorStore(pool)
	searchStore := postgres.NewSearchStore(pool)

	// Embedder (OpenAI)
	embedder := options.embedder
	if embedder == nil {
		embedder = openai.NewEmbedder(
			cfg.OpenAI.APIKey,
			openai.WithEmbeddingModel(cfg.OpenAI.EmbeddingModel),
			openai.WithEmbeddingDimension(cfg.OpenAI.EmbeddingDimension),
		)
	}

	// LLMクライアント (OpenAI)
	llmClient := options.llmClient
	if llmClient == nil {
		client, err := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.LLMModel)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("LLMクライアント初期化に失敗しました: %w", err)
		}
		llmClient = client
	}

	// ドキュメントソース (ローカルディレクトリ)
	fileSource := options.fileSource
	if fileSource == nil {
		fileSource = fsys.NewDirectorySource(cfg.Docs.Dir, options.logger)
	}

	chunker, err := chunking.NewChunker(chunking.Config{
		ChildSize:          cfg.Chunking.ChildSize,
		ChildOverlapFactor: cfg.Chunking.ChildOverlapFactor,
		ParentSizeFactor:   cfg.Chunking.ParentSizeFactor,
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("チャンク設定が不正です: %w", err)
	}

	syncService := docsync.NewSyncService(
		parentStore, vectorStore, embedder, fileSource, chunker, options.logger,
	)

	retriever, err := retrieval.NewRetriever(searchStore, searchStore, embedder, retrieval.Config{
		TopK:          cfg.Search.TopK,
		MinSimilarity: cfg.Search.MinSimilarity,
	}, options.logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("検索設定が不正です: %w", err)
	}

	composerOpts := []answer.ComposerOption{
		answer.WithComposerLogger(options.logger),
	}
	if cfg.Answer.NoInfoMessage != "" {
		composerOpts = append(composerOpts, answer.WithNoInfoMessage(cfg.Answer.NoInfoMessage))
	}
	if cfg.Answer.ContextTokenLimit > 0 {
		counter := options.tokenCounter
		if counter == nil {
			c, err := tokencount.NewCounter()
			if err != nil {
				pool.Close()
				return nil, fmt.Errorf("トークンカウンタ初期化に失敗しました: %w", err)
			}
			counter = c
		}
		composerOpts = append(composerOpts, answer.WithTokenBudget(counter, cfg.Answer.ContextTokenLimit))
	}

	composer := answer.NewComposer(retriever, llmClient, composerOpts...)

	return &ServiceContainer{
		SyncService: syncService,
		Retriever:   retriever,
		Composer:    composer,
		Logger:      options.logger,
		parentStore: parentStore,
		pool:        pool,
	}, nil
}

// Parents は親チャンクストアを返す
func (c *ServiceContainer) Parents() docsync.Repository {
	return c.parentStore
}

// Close はコンテナが保持するリソースを解放する
func (c *ServiceContainer) Close() {
	if c.pool != nil {
		c.pool.Close()
	}
}
