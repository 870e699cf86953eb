package generate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/d2r/ai/mock"
	"github.com/poiesic/d2r/core"
	"github.com/poiesic/d2r/storage"
	"github.com/poiesic/d2r/storage/badger"
)

func testRef() core.ModuleRef {
	return core.ModuleRef{
		Course:          "Foundations of Security",
		CourseSlug:      "foundations-of-security",
		TopicNumber:     1,
		ModuleName:      "What is security_",
		ModuleSlug:      "what-is-security",
		TranscriptPaths: []string{"lesson.txt"},
	}
}

func testOutline() []core.OutlineEntry {
	return []core.OutlineEntry{
		{Order: 0, Kind: core.KindSection, Title: "Introduction", Query: "overview of security"},
		{Order: 1, Kind: core.KindSubsection, Title: "Key Concepts", Query: "key security concepts"},
		{Order: 2, Kind: core.KindSubsection, Title: "Summary", Query: "summary of the module"},
	}
}

func seedIndex(t *testing.T, index storage.VectorIndex, table string) {
	t.Helper()
	chunks := []*core.ChunkRecord{
		{Id: core.IDFromContent("a"), Source: "lesson.txt", Seq: 0, Text: "security is about protecting assets", Vector: badger.NormalizeVector([]float32{1, 0})},
		{Id: core.IDFromContent("b"), Source: "lesson.txt", Seq: 1, Text: "threats exploit vulnerabilities", Vector: badger.NormalizeVector([]float32{0, 1})},
	}
	_, err := index.Upsert(context.Background(), table, chunks)
	require.NoError(t, err)
}

func newTestStage(t *testing.T, opts ...Option) (*Stage, *mock.MockProvider, storage.VectorIndex) {
	t.Helper()

	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	provider := mock.NewMockProvider().(*mock.MockProvider)
	provider.GetMockEmbedder().EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}

	stage, err := NewStage(index, provider, opts...)
	require.NoError(t, err)
	t.Cleanup(stage.Release)

	return stage, provider, index
}

func TestNewStageValidatesDependencies(t *testing.T) {
	index, err := badger.NewMemoryIndex()
	require.NoError(t, err)
	defer index.Close()

	_, err = NewStage(nil, mock.NewMockProvider())
	assert.ErrorIs(t, err, ErrIndexRequired)

	_, err = NewStage(index, nil)
	assert.ErrorIs(t, err, ErrProviderRequired)
}

func TestGenerateWritesOneFragmentPerEntry(t *testing.T) {
	stage, provider, index := newTestStage(t)
	ref := testRef()
	seedIndex(t, index, ref.TableName())
	sectionsDir := t.TempDir()

	result, err := stage.Generate(context.Background(), ref, ref.TableName(), testOutline(), sectionsDir, false)
	require.NoError(t, err)

	require.Len(t, result.Written, 3)
	assert.Empty(t, result.SkippedOrders)
	assert.Empty(t, result.Failed)
	assert.Equal(t, 3, provider.GetMockCompleter().CallCount())

	for i, fragment := range result.Written {
		assert.Equal(t, i, fragment.Order, "fragments must come back in outline order")
		data, err := os.ReadFile(fragment.Path)
		require.NoError(t, err)
		assert.NotEmpty(t, data)
		assert.NotContains(t, string(data), "```", "fences must be stripped")
	}

	entries, err := os.ReadDir(sectionsDir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
	assert.True(t, strings.HasPrefix(entries[0].Name(), "00_"))
}

func TestGenerateSkipsExistingFragments(t *testing.T) {
	stage, provider, index := newTestStage(t)
	ref := testRef()
	seedIndex(t, index, ref.TableName())
	sectionsDir := t.TempDir()

	_, err := stage.Generate(context.Background(), ref, ref.TableName(), testOutline(), sectionsDir, false)
	require.NoError(t, err)
	provider.GetMockCompleter().Reset()

	result, err := stage.Generate(context.Background(), ref, ref.TableName(), testOutline(), sectionsDir, false)
	require.NoError(t, err)

	assert.Empty(t, result.Written)
	assert.Equal(t, []int{0, 1, 2}, result.SkippedOrders)
	assert.Zero(t, provider.GetMockCompleter().CallCount(), "skip must not call the model")
}

func TestGenerateOverwriteRegenerates(t *testing.T) {
	stage, provider, index := newTestStage(t)
	ref := testRef()
	seedIndex(t, index, ref.TableName())
	sectionsDir := t.TempDir()

	_, err := stage.Generate(context.Background(), ref, ref.TableName(), testOutline(), sectionsDir, false)
	require.NoError(t, err)
	provider.GetMockCompleter().Reset()

	result, err := stage.Generate(context.Background(), ref, ref.TableName(), testOutline(), sectionsDir, true)
	require.NoError(t, err)

	assert.Len(t, result.Written, 3)
	assert.Equal(t, 3, provider.GetMockCompleter().CallCount())
}

func TestGenerateResumesMissingFragments(t *testing.T) {
	stage, _, index := newTestStage(t)
	ref := testRef()
	seedIndex(t, index, ref.TableName())
	sectionsDir := t.TempDir()

	_, err := stage.Generate(context.Background(), ref, ref.TableName(), testOutline(), sectionsDir, false)
	require.NoError(t, err)

	// Remove one fragment to simulate a partial earlier run.
	entries, err := os.ReadDir(sectionsDir)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(sectionsDir, entries[1].Name())))

	result, err := stage.Generate(context.Background(), ref, ref.TableName(), testOutline(), sectionsDir, false)
	require.NoError(t, err)

	require.Len(t, result.Written, 1)
	assert.Equal(t, 1, result.Written[0].Order)
	assert.Equal(t, []int{0, 2}, result.SkippedOrders)
}

func TestGenerateIsolatesSectionFailures(t *testing.T) {
	stage, provider, index := newTestStage(t, WithRetryPolicy(1, time.Millisecond))
	ref := testRef()
	seedIndex(t, index, ref.TableName())
	sectionsDir := t.TempDir()

	provider.GetMockCompleter().CompleteFunc = func(ctx context.Context, prompt string, passages []string) (string, error) {
		if strings.Contains(prompt, "Key Concepts") {
			return "", errors.New("model unavailable")
		}
		return "```latex\n\\section{ok}\n```", nil
	}

	result, err := stage.Generate(context.Background(), ref, ref.TableName(), testOutline(), sectionsDir, false)
	require.NoError(t, err, "one bad section must not abort the stage")

	assert.Len(t, result.Written, 2)
	require.Len(t, result.Failed, 1)
	assert.Equal(t, 1, result.Failed[0].Order)
	assert.Equal(t, "Key Concepts", result.Failed[0].Title)

	entries, err := os.ReadDir(sectionsDir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "failed section must leave no fragment file")
}

func TestGenerateEmptyOutline(t *testing.T) {
	stage, _, _ := newTestStage(t)

	_, err := stage.Generate(context.Background(), testRef(), "t", nil, t.TempDir(), false)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, ErrEmptyOutline)
}

func TestGenerateInvalidOutlineEntry(t *testing.T) {
	stage, _, _ := newTestStage(t)

	outline := []core.OutlineEntry{{Order: 0, Kind: core.KindSection, Title: "", Query: "q"}}
	_, err := stage.Generate(context.Background(), testRef(), "t", outline, t.TempDir(), false)
	assert.ErrorIs(t, err, ErrGeneration)
	assert.ErrorIs(t, err, core.ErrInvalidOutlineEntry)
}
