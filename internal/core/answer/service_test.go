package answer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/askdocs/internal/core/retrieval"
)

type stubRetriever struct {
	entries []*retrieval.ContextEntry
	err     error
}

func (r *stubRetriever) Retrieve(ctx context.Context, question string) ([]*retrieval.ContextEntry, error) {
	return r.entries, r.err
}

type stubLLM struct {
	response   string
	err        error
	lastPrompt string
	called     bool
}

func (l *stubLLM) Complete(ctx context.Context, prompt string) (string, error) {
	l.called = true
	l.lastPrompt = prompt
	return l.response, l.err
}

// stubTokenCounter は1文字1トークンとして数える
type stubTokenCounter struct {
	truncated bool
}

func (c *stubTokenCounter) Count(text string) int {
	return len([]rune(text))
}

func (c *stubTokenCounter) Truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	c.truncated = true
	return string(runes[:limit])
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCompose_NoContextReturnsFixedMessageWithoutLLMCall(t *testing.T) {
	llm := &stubLLM{}
	composer := NewComposer(&stubRetriever{}, llm, WithComposerLogger(testLogger()))

	answer, err := composer.Compose(context.Background(), "what is the simmer time?")
	require.NoError(t, err)

	assert.Equal(t, DefaultNoInfoMessage, answer.Text)
	assert.Empty(t, answer.Sources)
	assert.False(t, llm.called)
}

func TestCompose_CustomNoInfoMessage(t *testing.T) {
	composer := NewComposer(&stubRetriever{}, &stubLLM{},
		WithComposerLogger(testLogger()),
		WithNoInfoMessage("情報がありません"),
	)

	answer, err := composer.Compose(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, "情報がありません", answer.Text)
}

func TestCompose_PromptContainsContextAndQuestion(t *testing.T) {
	retriever := &stubRetriever{entries: []*retrieval.ContextEntry{
		{SourceFile: "rice.txt", Content: "simmer for twelve minutes", Similarity: 0.87},
		{SourceFile: "notes.txt", Content: "rest before fluffing", Similarity: 0.52},
	}}
	llm := &stubLLM{response: "twelve minutes"}
	composer := NewComposer(retriever, llm, WithComposerLogger(testLogger()))

	answer, err := composer.Compose(context.Background(), "how long should it simmer?")
	require.NoError(t, err)
	assert.Equal(t, "twelve minutes", answer.Text)
	assert.Equal(t, retriever.entries, answer.Sources)

	assert.Contains(t, llm.lastPrompt,
		"[Document 1] Source: rice.txt (Best match: 0.87)\nsimmer for twelve minutes")
	assert.Contains(t, llm.lastPrompt,
		"[Document 2] Source: notes.txt (Best match: 0.52)\nrest before fluffing")
	assert.Contains(t, llm.lastPrompt, "how long should it simmer?")
	assert.NotContains(t, llm.lastPrompt, "{context}")
	assert.NotContains(t, llm.lastPrompt, "{question}")
}

func TestBuildContext_BlocksJoinedByBlankLine(t *testing.T) {
	block := BuildContext([]*retrieval.ContextEntry{
		{SourceFile: "a.txt", Content: "first", Similarity: 0.9},
		{SourceFile: "b.txt", Content: "second", Similarity: 0.8},
	})

	assert.Equal(t,
		"[Document 1] Source: a.txt (Best match: 0.90)\nfirst\n\n[Document 2] Source: b.txt (Best match: 0.80)\nsecond",
		block)
}

func TestCompose_RetrieverErrorPropagates(t *testing.T) {
	retriever := &stubRetriever{err: retrieval.ErrEmptyQuestion}
	llm := &stubLLM{}
	composer := NewComposer(retriever, llm, WithComposerLogger(testLogger()))

	_, err := composer.Compose(context.Background(), "")
	assert.ErrorIs(t, err, retrieval.ErrEmptyQuestion)
	assert.False(t, llm.called)
}

func TestCompose_LLMErrorPropagates(t *testing.T) {
	retriever := &stubRetriever{entries: []*retrieval.ContextEntry{
		{SourceFile: "a.txt", Content: "text", Similarity: 0.9},
	}}
	llm := &stubLLM{err: errors.New("completion api down")}
	composer := NewComposer(retriever, llm, WithComposerLogger(testLogger()))

	_, err := composer.Compose(context.Background(), "question")
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to generate answer")
}

func TestCompose_ContextTruncatedToTokenBudget(t *testing.T) {
	retriever := &stubRetriever{entries: []*retrieval.ContextEntry{
		{SourceFile: "a.txt", Content: strings.Repeat("x", 500), Similarity: 0.9},
	}}
	llm := &stubLLM{response: "ok"}
	counter := &stubTokenCounter{}
	composer := NewComposer(retriever, llm,
		WithComposerLogger(testLogger()),
		WithTokenBudget(counter, 100),
	)

	_, err := composer.Compose(context.Background(), "question")
	require.NoError(t, err)
	assert.True(t, counter.truncated)
	assert.NotContains(t, llm.lastPrompt, strings.Repeat("x", 500))
}
