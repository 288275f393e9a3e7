// Package splitter は境界を考慮した再帰的なテキスト分割を提供します。
//
// 分割は段落境界 → 文境界 → 固定幅の順に粗いものから試行し、
// 目標サイズを超える単位だけを次の段階に委ねます。区切り文字は直前の
// 単位に付けたまま保持するため、オーバーラップ適用前のチャンクを連結
// すると trim 済み入力が完全に復元できます。
package splitter

import (
	"errors"
	"strings"
	"unicode"
)

var (
	// ErrInvalidTargetSize は目標サイズが正でない場合のエラー
	ErrInvalidTargetSize = errors.New("target size must be positive")

	// ErrInvalidOverlapSize はオーバーラップが負または目標サイズ以上の場合のエラー
	ErrInvalidOverlapSize = errors.New("overlap size must be non-negative and smaller than target size")
)

// Split はテキストをサイズ上限・オーバーラップ付きのチャンク列に分割します。
// サイズはルーン数で数えます。オーバーラップ 0 は重複なしの分割を意味します
// （親チャンクの分割で使用）。
func Split(text string, targetSize, overlapSize int) ([]string, error) {
	if targetSize <= 0 {
		return nil, ErrInvalidTargetSize
	}
	if overlapSize < 0 || overlapSize >= targetSize {
		return nil, ErrInvalidOverlapSize
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}

	runes := []rune(trimmed)
	if len(runes) <= targetSize {
		return []string{trimmed}, nil
	}

	base := accumulate(splitParagraphs(runes), targetSize, func(paragraph []rune) [][]rune {
		// 単独で目標サイズを超える段落は文単位で分割する
		return accumulate(splitSentences(paragraph), targetSize, func(sentence []rune) [][]rune {
			// 文でも収まらない場合は固定幅で強制分割する
			return hardSplit(sentence, targetSize)
		})
	})

	return applyOverlap(base, overlapSize), nil
}

// accumulate は単位列を貪欲にチャンクへ詰め込みます。次の単位を足すと
// 目標サイズを超える場合は現在のチャンクを確定し、単独で超過する単位は
// splitOversized に委ねます。
func accumulate(units [][]rune, targetSize int, splitOversized func([]rune) [][]rune) [][]rune {
	var chunks [][]rune
	var current []rune

	for _, unit := range units {
		if len(unit) > targetSize {
			if len(current) > 0 {
				chunks = append(chunks, current)
				current = nil
			}
			chunks = append(chunks, splitOversized(unit)...)
			continue
		}

		if len(current) > 0 && len(current)+len(unit) > targetSize {
			chunks = append(chunks, current)
			current = nil
		}
		current = append(current, unit...)
	}

	if len(current) > 0 {
		chunks = append(chunks, current)
	}

	return chunks
}

// splitParagraphs は空行（改行を2つ以上含む空白の連続）を境界として
// 段落に分割します。境界の空白は直前の段落末尾に残します。
func splitParagraphs(runes []rune) [][]rune {
	var parts [][]rune
	start := 0
	i := 0

	for i < len(runes) {
		if runes[i] != '\n' {
			i++
			continue
		}

		// 改行から始まる空白の連続を読み進める
		j := i
		newlines := 0
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			if runes[j] == '\n' {
				newlines++
			}
			j++
		}

		if newlines >= 2 && j < len(runes) {
			parts = append(parts, runes[start:j])
			start = j
		}
		i = j
	}

	if start < len(runes) {
		parts = append(parts, runes[start:])
	}

	return parts
}

// splitSentences は文末記号（. ! ?）+ 空白 + 大文字という
// ヒューリスティックな文境界で分割します。空白は直前の文末尾に残します。
func splitSentences(runes []rune) [][]rune {
	var parts [][]rune
	start := 0
	i := 0

	for i < len(runes) {
		if !isSentenceTerminator(runes[i]) {
			i++
			continue
		}

		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}

		if j > i+1 && j < len(runes) && unicode.IsUpper(runes[j]) {
			parts = append(parts, runes[start:j])
			start = j
			i = j
			continue
		}
		i++
	}

	if start < len(runes) {
		parts = append(parts, runes[start:])
	}

	return parts
}

func isSentenceTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// hardSplit は単位を targetSize ルーンちょうどのスライス列（+ 末尾の端数）に
// 強制分割します。
func hardSplit(runes []rune, targetSize int) [][]rune {
	var parts [][]rune
	for start := 0; start < len(runes); start += targetSize {
		end := start + targetSize
		if end > len(runes) {
			end = len(runes)
		}
		parts = append(parts, runes[start:end])
	}
	return parts
}

// applyOverlap は確定済みチャンク列の2番目以降に、直前チャンク
// （オーバーラップ適用前）の末尾 min(overlap, len(prev)) ルーンを前置します。
// 先頭チャンクは延長しません。
func applyOverlap(base [][]rune, overlapSize int) []string {
	chunks := make([]string, len(base))
	for i, c := range base {
		chunks[i] = string(c)
	}

	if overlapSize == 0 {
		return chunks
	}

	for i := 1; i < len(base); i++ {
		prev := base[i-1]
		n := overlapSize
		if n > len(prev) {
			n = len(prev)
		}
		chunks[i] = string(prev[len(prev)-n:]) + chunks[i]
	}

	return chunks
}
