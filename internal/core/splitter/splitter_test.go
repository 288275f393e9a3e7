package splitter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplit_InvalidConfig(t *testing.T) {
	tests := []struct {
		name        string
		targetSize  int
		overlapSize int
		wantErr     error
	}{
		{name: "zero target", targetSize: 0, overlapSize: 0, wantErr: ErrInvalidTargetSize},
		{name: "negative target", targetSize: -5, overlapSize: 0, wantErr: ErrInvalidTargetSize},
		{name: "negative overlap", targetSize: 10, overlapSize: -1, wantErr: ErrInvalidOverlapSize},
		{name: "overlap equals target", targetSize: 10, overlapSize: 10, wantErr: ErrInvalidOverlapSize},
		{name: "overlap exceeds target", targetSize: 10, overlapSize: 11, wantErr: ErrInvalidOverlapSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Split("some text", tt.targetSize, tt.overlapSize)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSplit_EmptyAndShortInput(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		chunks, err := Split("", 10, 2)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("whitespace only", func(t *testing.T) {
		chunks, err := Split("  \n\n\t  ", 10, 2)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("single character", func(t *testing.T) {
		chunks, err := Split("a", 10, 2)
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, chunks)
	})

	t.Run("input fits in one chunk", func(t *testing.T) {
		chunks, err := Split("  hello world  ", 20, 5)
		require.NoError(t, err)
		assert.Equal(t, []string{"hello world"}, chunks)
	})
}

func TestSplit_ParagraphBoundaries(t *testing.T) {
	text := "para one.\n\npara two.\n\npara three."

	chunks, err := Split(text, 25, 0)
	require.NoError(t, err)

	// 2つ目の段落までは1チャンクに収まり、3つ目で溢れる
	assert.Equal(t, []string{
		"para one.\n\npara two.\n\n",
		"para three.",
	}, chunks)

	// 区切り文字を保持しているため連結で復元できる
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplit_SentenceBoundaries(t *testing.T) {
	text := "First sentence here. Second sentence here. Third one."

	chunks, err := Split(text, 25, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"First sentence here. ",
		"Second sentence here. ",
		"Third one.",
	}, chunks)
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplit_SentenceBoundaryRequiresUppercase(t *testing.T) {
	// 小文字が続く場合は文境界として扱わない（例: バージョン表記など）
	text := "see v1.2 of the guide and also v1.3 of the appendix notes."

	chunks, err := Split(text, 30, 0)
	require.NoError(t, err)

	// 文境界が見つからないため固定幅分割にフォールバックする
	for _, c := range chunks[:len(chunks)-1] {
		assert.Len(t, []rune(c), 30)
	}
	assert.Equal(t, text, strings.Join(chunks, ""))
}

func TestSplit_HardSplit(t *testing.T) {
	chunks, err := Split("abcdefghij", 3, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc", "def", "ghi", "j"}, chunks)
}

func TestSplit_OverlapIsAdditive(t *testing.T) {
	chunks, err := Split("abcdefghij", 4, 2)
	require.NoError(t, err)

	// 先頭チャンクは延長されず、以降は直前チャンク末尾2文字が前置される
	assert.Equal(t, []string{"abcd", "cdefgh", "ghij"}, chunks)
}

func TestSplit_OverlapShorterPreviousChunk(t *testing.T) {
	// 直前チャンクがオーバーラップ幅より短い場合は全体を前置する
	text := "ab\n\ncdefgh"

	base, err := Split(text, 6, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"ab\n\n", "cdefgh"}, base)

	chunks, err := Split(text, 6, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"ab\n\n", "ab\n\ncdefgh"}, chunks)
}

func TestSplit_ReconstructionInvariant(t *testing.T) {
	text := `Cooking rice starts with rinsing. Rinse until the water runs clear, then drain well.

Use a ratio of one cup rice to one and a quarter cups water. Bring to a boil over high heat.

Once boiling, cover and reduce to the lowest heat. Simmer for twelve minutes without lifting the lid. Rest for ten minutes before fluffing with a paddle.`

	const targetSize = 60
	for _, overlap := range []int{0, 10, 30} {
		base, err := Split(text, targetSize, 0)
		require.NoError(t, err)

		chunks, err := Split(text, targetSize, overlap)
		require.NoError(t, err)
		require.Len(t, chunks, len(base))

		// オーバーラップ適用前のチャンク連結は trim 済み入力を完全に復元する
		assert.Equal(t, strings.TrimSpace(text), strings.Join(base, ""))

		// 各チャンクは「既知のオーバーラップ長を除去すると」ベースと一致する
		assert.Equal(t, base[0], chunks[0])
		for i := 1; i < len(chunks); i++ {
			prev := []rune(base[i-1])
			n := overlap
			if n > len(prev) {
				n = len(prev)
			}
			overlapped := []rune(chunks[i])
			assert.Equal(t, base[i], string(overlapped[n:]))
			assert.Equal(t, string(prev[len(prev)-n:]), string(overlapped[:n]))
		}
	}
}
