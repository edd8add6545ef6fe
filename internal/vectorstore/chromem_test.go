package vectorstore_test

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/fyrsmithlabs/policybot/internal/vectorstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// keywordEmbedder maps text onto a small bag-of-words space so that
// similarity ordering is predictable.
type keywordEmbedder struct {
	err error
}

var keywordVocab = []string{"leave", "vacation", "salary", "payroll", "badge", "security"}

func (e *keywordEmbedder) embed(text string) []float32 {
	vec := make([]float32, len(keywordVocab)+1)
	vec[len(keywordVocab)] = 0.1
	for _, w := range strings.Fields(strings.ToLower(text)) {
		w = strings.Trim(w, ".,?!")
		for i, v := range keywordVocab {
			if w == v {
				vec[i]++
			}
		}
	}
	var sum float64
	for _, x := range vec {
		sum += float64(x * x)
	}
	norm := float32(math.Sqrt(sum))
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}

func (e *keywordEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = e.embed(t)
	}
	return out, nil
}

func (e *keywordEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if e.err != nil {
		return nil, e.err
	}
	return e.embed(text), nil
}

func newMemoryStore(t *testing.T) *vectorstore.ChromemStore {
	t.Helper()
	store, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{Collection: "test_docs"}, &keywordEmbedder{}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewChromemStore_RequiresEmbedder(t *testing.T) {
	_, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{}, nil, nil)
	assert.ErrorIs(t, err, vectorstore.ErrInvalidConfig)
}

func TestNewChromemStore_InvalidCollection(t *testing.T) {
	_, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{Collection: "Bad-Name"}, &keywordEmbedder{}, nil)
	assert.ErrorIs(t, err, vectorstore.ErrInvalidCollectionName)
}

func TestChromemStore_AddAndSearch(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	ids, err := store.AddDocuments(ctx, []vectorstore.Document{
		{ID: "a", Content: "Employees accrue vacation leave monthly.", Metadata: map[string]string{"source": "leave.pdf"}},
		{ID: "b", Content: "Payroll runs on the last business day. Salary is paid by transfer."},
		{ID: "c", Content: "Wear your security badge at all times."},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	results, err := store.Search(ctx, "How much vacation leave do I get?", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "leave.pdf", results[0].Metadata["source"])
	assert.Contains(t, results[0].Content, "vacation")
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
}

func TestChromemStore_SearchCapsK(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, []vectorstore.Document{{ID: "only", Content: "salary bands"}})
	require.NoError(t, err)

	results, err := store.Search(ctx, "salary", 3)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestChromemStore_SearchEmpty(t *testing.T) {
	store := newMemoryStore(t)

	results, err := store.Search(context.Background(), "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestChromemStore_SearchValidation(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	_, err := store.Search(ctx, "q", 0)
	assert.Error(t, err)
	_, err = store.Search(ctx, "", 1)
	assert.Error(t, err)
}

func TestChromemStore_ReAddReplaces(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	doc := vectorstore.Document{ID: "dup", Content: "badge policy"}
	_, err := store.AddDocuments(ctx, []vectorstore.Document{doc})
	require.NoError(t, err)
	_, err = store.AddDocuments(ctx, []vectorstore.Document{doc})
	require.NoError(t, err)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestChromemStore_Exists(t *testing.T) {
	store := newMemoryStore(t)
	ctx := context.Background()

	_, err := store.AddDocuments(ctx, []vectorstore.Document{{ID: "here", Content: "leave"}})
	require.NoError(t, err)

	ok, err := store.Exists(ctx, "here")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.Exists(ctx, "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChromemStore_AddErrors(t *testing.T) {
	ctx := context.Background()

	store := newMemoryStore(t)
	_, err := store.AddDocuments(ctx, nil)
	assert.ErrorIs(t, err, vectorstore.ErrEmptyDocuments)

	failing, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{}, &keywordEmbedder{err: errors.New("model offline")}, nil)
	require.NoError(t, err)
	_, err = failing.AddDocuments(ctx, []vectorstore.Document{{ID: "x", Content: "leave"}})
	assert.ErrorIs(t, err, vectorstore.ErrEmbeddingFailed)
}

func TestChromemStore_Persistent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	cfg := vectorstore.ChromemConfig{Path: dir, Collection: "persisted"}

	store, err := vectorstore.NewChromemStore(cfg, &keywordEmbedder{}, nil)
	require.NoError(t, err)
	_, err = store.AddDocuments(ctx, []vectorstore.Document{{ID: "p1", Content: "payroll calendar"}})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := vectorstore.NewChromemStore(cfg, &keywordEmbedder{}, nil)
	require.NoError(t, err)
	ok, err := reopened.Exists(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, ok)
}
