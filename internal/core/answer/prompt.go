package answer

import (
	"fmt"
	"strings"

	"github.com/jinford/askdocs/internal/core/retrieval"
)

// promptTemplate は回答生成プロンプトの固定テンプレート。
// {context} と {question} がそれぞれコンテキストブロックと質問に置換される。
const promptTemplate = `あなたは社内ドキュメントに精通したアシスタントです。
以下のコンテキスト情報を基に、ユーザーの質問に正確かつ簡潔に回答してください。

## 回答のガイドライン
- コンテキストに含まれる情報のみを使用して回答してください
- 根拠となるドキュメント(Source)を明示してください
- コンテキストに答えがない場合は、推測せずにその旨を述べてください

## コンテキスト
{context}

## ユーザーの質問
{question}

## 回答
`

// BuildContext は検索結果をコンテキストブロックに整形する。
// 各ドキュメントはヘッダ行と本文からなり、空行1つで連結される。
func BuildContext(entries []*retrieval.ContextEntry) string {
	blocks := make([]string, len(entries))
	for i, entry := range entries {
		blocks[i] = fmt.Sprintf("[Document %d] Source: %s (Best match: %.2f)\n%s",
			i+1, entry.SourceFile, entry.Similarity, entry.Content)
	}
	return strings.Join(blocks, "\n\n")
}

// BuildPrompt はテンプレートのプレースホルダを置換してプロンプトを組み立てる
func BuildPrompt(contextBlock, question string) string {
	prompt := strings.ReplaceAll(promptTemplate, "{context}", contextBlock)
	return strings.ReplaceAll(prompt, "{question}", question)
}
