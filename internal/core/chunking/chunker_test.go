package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChunker_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name:    "zero child size",
			cfg:     Config{ChildSize: 0, ChildOverlapFactor: 0.2, ParentSizeFactor: 4},
			wantErr: ErrInvalidChildSize,
		},
		{
			name:    "negative child size",
			cfg:     Config{ChildSize: -100, ChildOverlapFactor: 0.2, ParentSizeFactor: 4},
			wantErr: ErrInvalidChildSize,
		},
		{
			name:    "zero overlap factor",
			cfg:     Config{ChildSize: 300, ChildOverlapFactor: 0, ParentSizeFactor: 4},
			wantErr: ErrInvalidOverlapFactor,
		},
		{
			name:    "overlap factor of one",
			cfg:     Config{ChildSize: 300, ChildOverlapFactor: 1, ParentSizeFactor: 4},
			wantErr: ErrInvalidOverlapFactor,
		},
		{
			name:    "negative overlap factor",
			cfg:     Config{ChildSize: 300, ChildOverlapFactor: -0.5, ParentSizeFactor: 4},
			wantErr: ErrInvalidOverlapFactor,
		},
		{
			name:    "parent factor below one",
			cfg:     Config{ChildSize: 300, ChildOverlapFactor: 0.2, ParentSizeFactor: 0.5},
			wantErr: ErrInvalidParentFactor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewChunker(tt.cfg)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestNewChunker_DerivedSizes(t *testing.T) {
	chunker, err := NewChunker(Config{
		ChildSize:          300,
		ChildOverlapFactor: 0.2,
		ParentSizeFactor:   4,
	})
	require.NoError(t, err)

	assert.Equal(t, 300, chunker.ChildSize())
	assert.Equal(t, 60, chunker.ChildOverlap())
	assert.Equal(t, 1200, chunker.ParentSize())
}

func TestChunk_EmptyContent(t *testing.T) {
	chunker, err := NewChunker(DefaultConfig())
	require.NoError(t, err)

	for _, content := range []string{"", "   \n\n\t  "} {
		chunks, err := chunker.Chunk(content)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	}
}

func TestChunk_ShortContent(t *testing.T) {
	chunker, err := NewChunker(DefaultConfig())
	require.NoError(t, err)

	chunks, err := chunker.Chunk("  A short note about rice.  ")
	require.NoError(t, err)

	// childSize 未満の親は本文と等しい子をちょうど1つ持つ
	require.Len(t, chunks, 1)
	assert.Equal(t, "A short note about rice.", chunks[0].ParentText)
	assert.Equal(t, []string{"A short note about rice."}, chunks[0].ChildTexts)
}

func TestChunk_MultipleParents(t *testing.T) {
	chunker, err := NewChunker(Config{
		ChildSize:          30,
		ChildOverlapFactor: 0.2,
		ParentSizeFactor:   2,
	})
	require.NoError(t, err)

	content := strings.Join([]string{
		"Rinse the rice until the water runs clear.",
		"Use one and a quarter cups of water per cup of rice.",
		"Simmer covered for twelve minutes on the lowest heat.",
		"Rest for ten minutes before fluffing with a paddle.",
	}, "\n\n")

	chunks, err := chunker.Chunk(content)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for _, chunk := range chunks {
		assert.NotEmpty(t, chunk.ParentText)
		require.NotEmpty(t, chunk.ChildTexts)

		// 各子チャンクは親本文の連続した部分文字列になる
		for _, child := range chunk.ChildTexts {
			assert.Contains(t, chunk.ParentText, child)
		}
	}
}
