package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/d2r/ai/mock"
	"github.com/poiesic/d2r/core"
	"github.com/poiesic/d2r/storage"
	"github.com/poiesic/d2r/storage/badger"
)

func testRef(t *testing.T, transcripts ...string) core.ModuleRef {
	t.Helper()
	dir := t.TempDir()

	paths := make([]string, len(transcripts))
	for i, content := range transcripts {
		path := filepath.Join(dir, "lesson_"+string(rune('a'+i))+".txt")
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		paths[i] = path
	}

	return core.ModuleRef{
		Course:          "Foundations of Security",
		CourseSlug:      "foundations-of-security",
		TopicNumber:     1,
		ModuleName:      "What is security_",
		ModuleSlug:      "what-is-security",
		TranscriptPaths: paths,
	}
}

func testIndex(t *testing.T) storage.VectorIndex {
	t.Helper()
	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })
	return index
}

func TestNewStageValidatesDependencies(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	index := testIndex(t)

	_, err := NewStage(nil, embedder)
	assert.ErrorIs(t, err, ErrIndexRequired)

	_, err = NewStage(index, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	stage, err := NewStage(index, embedder)
	require.NoError(t, err)
	assert.NotNil(t, stage)
}

func TestIngestIndexesAllTranscripts(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	index := testIndex(t)
	stage, err := NewStage(index, embedder)
	require.NoError(t, err)

	ref := testRef(t,
		"Security is the practice of protecting systems.\n\nIt spans people and process.",
		"Threat modeling starts with assets.",
		"Defense in depth layers controls.",
	)

	result, err := stage.Ingest(context.Background(), ref, ref.TableName(), false)
	require.NoError(t, err)

	assert.Equal(t, 3, result.DocumentsIndexed)
	assert.False(t, result.Skipped)
	assert.Positive(t, result.ChunksUpserted)

	count, err := index.Count(context.Background(), ref.TableName())
	require.NoError(t, err)
	assert.Equal(t, result.ChunksUpserted, count)
}

func TestIngestSkipsWhenTablePopulated(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	index := testIndex(t)
	stage, err := NewStage(index, embedder)
	require.NoError(t, err)

	ref := testRef(t, "some transcript content")

	_, err = stage.Ingest(context.Background(), ref, ref.TableName(), false)
	require.NoError(t, err)
	embedder.Reset()

	result, err := stage.Ingest(context.Background(), ref, ref.TableName(), false)
	require.NoError(t, err)

	assert.True(t, result.Skipped)
	assert.Zero(t, result.DocumentsIndexed)
	assert.Zero(t, result.ChunksUpserted)
	assert.Zero(t, embedder.CallCount(), "skip must not issue embedding calls")
}

func TestIngestOverwriteRebuildsIndex(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	index := testIndex(t)
	stage, err := NewStage(index, embedder)
	require.NoError(t, err)

	ref := testRef(t, "original transcript content")

	first, err := stage.Ingest(context.Background(), ref, ref.TableName(), false)
	require.NoError(t, err)
	embedder.Reset()

	second, err := stage.Ingest(context.Background(), ref, ref.TableName(), true)
	require.NoError(t, err)

	assert.False(t, second.Skipped)
	assert.Equal(t, first.ChunksUpserted, second.ChunksUpserted)
	assert.Positive(t, embedder.CallCount(), "overwrite must re-embed")
}

func TestIngestMissingTranscriptIsFatal(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	index := testIndex(t)
	stage, err := NewStage(index, embedder)
	require.NoError(t, err)

	ref := testRef(t, "present content")
	ref.TranscriptPaths = append(ref.TranscriptPaths, filepath.Join(t.TempDir(), "missing.txt"))

	_, err = stage.Ingest(context.Background(), ref, ref.TableName(), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIngest)

	count, err := index.Count(context.Background(), ref.TableName())
	require.NoError(t, err)
	assert.Zero(t, count, "failed ingestion must not leave partial chunks")
}

func TestIngestRetriesEmbeddingFailures(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	failures := 2
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if failures > 0 {
			failures--
			return nil, errors.New("transient provider error")
		}
		vectors := make([][]float32, len(texts))
		for i := range vectors {
			vectors[i] = []float32{1, 0}
		}
		return vectors, nil
	}

	index := testIndex(t)
	stage, err := NewStage(index, embedder, WithRetryPolicy(3, time.Millisecond))
	require.NoError(t, err)

	ref := testRef(t, "transcript content")

	result, err := stage.Ingest(context.Background(), ref, ref.TableName(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.DocumentsIndexed)
}

func TestIngestFailsAfterRetriesExhausted(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("provider down")
	}

	index := testIndex(t)
	stage, err := NewStage(index, embedder, WithRetryPolicy(2, time.Millisecond))
	require.NoError(t, err)

	ref := testRef(t, "transcript content")

	_, err = stage.Ingest(context.Background(), ref, ref.TableName(), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIngest)
}

func TestIngestInvalidRef(t *testing.T) {
	stage, err := NewStage(testIndex(t), mock.NewMockEmbedder())
	require.NoError(t, err)

	ref := core.ModuleRef{Course: "c", ModuleName: "m", TopicNumber: 0}
	_, err = stage.Ingest(context.Background(), ref, "t", false)
	assert.ErrorIs(t, err, ErrIngest)
}
