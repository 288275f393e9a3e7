// Package tokencount は tiktoken によるトークン数のカウントと切り詰めを提供します。
package tokencount

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/jinford/askdocs/internal/core/answer"
)

// Encoding は使用するトークナイザのエンコーディング名
const Encoding = "cl100k_base"

// Counter はテキストのトークン数を数え、上限に切り詰める
type Counter struct {
	encoding *tiktoken.Tiktoken
}

// NewCounter は新しいCounterを作成する
func NewCounter() (*Counter, error) {
	encoding, err := tiktoken.GetEncoding(Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
	}

	return &Counter{encoding: encoding}, nil
}

// Count はテキストのトークン数を返す
func (c *Counter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}

// Truncate はテキストを先頭から limit トークンに切り詰める。
// 上限以内のテキストはそのまま返す。
func (c *Counter) Truncate(text string, limit int) string {
	tokens := c.encoding.Encode(text, nil, nil)
	if len(tokens) <= limit {
		return text
	}
	return c.encoding.Decode(tokens[:limit])
}

// インターフェース実装の確認
var _ answer.TokenCounter = (*Counter)(nil)
