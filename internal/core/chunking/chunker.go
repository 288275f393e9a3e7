// Package chunking はドキュメントを親子2階層のチャンクに分割します。
// 親チャンクは回答コンテキストとしてそのまま保存し、子チャンクは
// ベクトル検索用に埋め込む単位になります。
package chunking

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jinford/askdocs/internal/core/splitter"
)

var (
	// ErrInvalidChildSize は子チャンクサイズが正でない場合のエラー
	ErrInvalidChildSize = errors.New("child chunk size must be positive")

	// ErrInvalidOverlapFactor はオーバーラップ係数が (0,1) の範囲外の場合のエラー
	ErrInvalidOverlapFactor = errors.New("child chunk overlap factor must be in (0, 1)")

	// ErrInvalidParentFactor は親サイズ係数が 1 未満の場合のエラー
	ErrInvalidParentFactor = errors.New("parent chunk size factor must be at least 1")
)

// Config は Chunker の分割パラメータを表します
type Config struct {
	ChildSize          int     // 子チャンクの目標サイズ（ルーン数）
	ChildOverlapFactor float64 // 子チャンクのオーバーラップ係数（0 < f < 1）
	ParentSizeFactor   float64 // 親チャンクサイズ = floor(ChildSize × factor)（f ≥ 1）
}

// DefaultConfig はデフォルトの分割パラメータを返します
func DefaultConfig() Config {
	return Config{
		ChildSize:          300,
		ChildOverlapFactor: 0.2,
		ParentSizeFactor:   4,
	}
}

// Chunk は1つの親チャンクとその子チャンク列を表します
type Chunk struct {
	ParentText string
	ChildTexts []string
}

// Chunker は親子2階層のチャンク化を実行します
type Chunker struct {
	childSize    int
	childOverlap int
	parentSize   int
}

// NewChunker は設定を検証して新しい Chunker を作成します。
// 不正な設定は構築時に失敗させ、以降の分割処理では発生させません。
func NewChunker(cfg Config) (*Chunker, error) {
	if cfg.ChildSize <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidChildSize, cfg.ChildSize)
	}
	if cfg.ChildOverlapFactor <= 0 || cfg.ChildOverlapFactor >= 1 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidOverlapFactor, cfg.ChildOverlapFactor)
	}
	if cfg.ParentSizeFactor < 1 {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidParentFactor, cfg.ParentSizeFactor)
	}

	return &Chunker{
		childSize:    cfg.ChildSize,
		childOverlap: int(float64(cfg.ChildSize) * cfg.ChildOverlapFactor),
		parentSize:   int(float64(cfg.ChildSize) * cfg.ParentSizeFactor),
	}, nil
}

// Chunk はコンテンツを親チャンク列に分割し、各親の配下に子チャンク列を生成します。
// 親同士はオーバーラップしません。空または空白のみのコンテンツは空の結果を返します。
func (c *Chunker) Chunk(content string) ([]*Chunk, error) {
	parents, err := splitter.Split(content, c.parentSize, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to split parents: %w", err)
	}

	chunks := make([]*Chunk, 0, len(parents))
	for _, parentText := range parents {
		children, err := splitter.Split(parentText, c.childSize, c.childOverlap)
		if err != nil {
			return nil, fmt.Errorf("failed to split children: %w", err)
		}

		// 親末尾に残る段落区切りの空白は保存前に正規化する。
		// childSize 未満の親は trim 済み本文と等しい子をちょうど1つ持つ。
		chunks = append(chunks, &Chunk{
			ParentText: strings.TrimSpace(parentText),
			ChildTexts: children,
		})
	}

	return chunks, nil
}

// ChildSize は子チャンクの目標サイズを返します
func (c *Chunker) ChildSize() int {
	return c.childSize
}

// ChildOverlap は子チャンクのオーバーラップ幅を返します
func (c *Chunker) ChildOverlap() int {
	return c.childOverlap
}

// ParentSize は親チャンクの目標サイズを返します
func (c *Chunker) ParentSize() int {
	return c.parentSize
}
