// Package answer は検索結果を根拠とした質問応答(RAG)を提供します。
package answer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/mo"

	"github.com/jinford/askdocs/internal/core/retrieval"
)

// DefaultNoInfoMessage は関連情報が見つからない場合の既定の応答
const DefaultNoInfoMessage = "関連する情報が見つかりませんでした。ドキュメントが同期済みか確認してから、質問を言い換えて再度お試しください。"

// CompletionClient はLLM通信インターフェース
type CompletionClient interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Retriever は関連コンテキストの検索インターフェース
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]*retrieval.ContextEntry, error)
}

// TokenCounter はプロンプトのトークン数制御インターフェース
type TokenCounter interface {
	Count(text string) int
	Truncate(text string, limit int) string
}

// Composer は質問応答のビジネスロジックを提供する
type Composer struct {
	retriever     Retriever
	llm           CompletionClient
	tokens        mo.Option[TokenCounter]
	tokenBudget   int
	noInfoMessage string
	logger        *slog.Logger
}

type ComposerOption func(*Composer)

// WithNoInfoMessage は関連情報が見つからない場合の応答メッセージを設定する
func WithNoInfoMessage(message string) ComposerOption {
	return func(c *Composer) {
		if message != "" {
			c.noInfoMessage = message
		}
	}
}

// WithTokenBudget はコンテキストブロックのトークン上限を設定する。
// カウンタが設定されている場合のみ、上限を超えるコンテキストを切り詰める。
func WithTokenBudget(counter TokenCounter, limit int) ComposerOption {
	return func(c *Composer) {
		c.tokens = mo.Some(counter)
		c.tokenBudget = limit
	}
}

// WithComposerLogger は Composer にロガーを設定する
func WithComposerLogger(logger *slog.Logger) ComposerOption {
	return func(c *Composer) {
		c.logger = logger
	}
}

// NewComposer は新しいComposerを作成する
func NewComposer(retriever Retriever, llm CompletionClient, opts ...ComposerOption) *Composer {
	c := &Composer{
		retriever:     retriever,
		llm:           llm,
		noInfoMessage: DefaultNoInfoMessage,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = slog.Default()
	}

	return c
}

// Answer は生成された回答と根拠となった検索結果を表す
type Answer struct {
	Text    string                    `json:"text"`
	Sources []*retrieval.ContextEntry `json:"sources,omitempty"`
}

// Compose は質問に対して検索結果を根拠とした回答を生成する。
// 関連するコンテキストが見つからない場合はLLMを呼ばずに固定メッセージを返す。
func (c *Composer) Compose(ctx context.Context, question string) (*Answer, error) {
	entries, err := c.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve context: %w", err)
	}

	if len(entries) == 0 {
		c.logger.Info("no relevant context found, returning fixed message")
		return &Answer{Text: c.noInfoMessage}, nil
	}

	contextBlock := BuildContext(entries)
	if counter, ok := c.tokens.Get(); ok && c.tokenBudget > 0 {
		if count := counter.Count(contextBlock); count > c.tokenBudget {
			contextBlock = counter.Truncate(contextBlock, c.tokenBudget)
			c.logger.Warn("context block exceeded token budget, truncated",
				slog.Int("tokens", count),
				slog.Int("budget", c.tokenBudget),
			)
		}
	}

	prompt := BuildPrompt(contextBlock, question)

	c.logger.Info("generating answer",
		slog.Int("contextEntries", len(entries)),
		slog.Int("promptLength", len(prompt)),
	)

	text, err := c.llm.Complete(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to generate answer: %w", err)
	}

	return &Answer{
		Text:    text,
		Sources: entries,
	}, nil
}
