package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geopulse/coherence/internal/model"
)

func edge(articleID, similarID int64, similarity float64) model.CorroborationEdge {
	return model.CorroborationEdge{
		ArticleID:        articleID,
		SimilarArticleID: similarID,
		Similarity:       similarity,
		CreatedAt:        time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
}

func TestReplaceAndGetCorroborations(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	edges := []model.CorroborationEdge{
		edge(1, 2, 0.9),
		edge(1, 3, 0.7),
		edge(1, 4, 0.8),
	}
	require.NoError(t, store.ReplaceCorroborations(ctx, 1, edges))

	got, err := store.GetCorroborations(ctx, 1, 0, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(2), got[0].SimilarArticleID, "strongest first")
	assert.Equal(t, int64(4), got[1].SimilarArticleID)
	assert.Equal(t, int64(3), got[2].SimilarArticleID)
}

func TestReplaceCorroborationsReplacesWholeSet(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceCorroborations(ctx, 1, []model.CorroborationEdge{
		edge(1, 2, 0.9),
		edge(1, 3, 0.8),
	}))
	require.NoError(t, store.ReplaceCorroborations(ctx, 1, []model.CorroborationEdge{
		edge(1, 4, 0.75),
	}))

	got, err := store.GetCorroborations(ctx, 1, 0, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(4), got[0].SimilarArticleID)
}

func TestReplaceCorroborationsEmptySetClears(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceCorroborations(ctx, 1, []model.CorroborationEdge{edge(1, 2, 0.9)}))
	require.NoError(t, store.ReplaceCorroborations(ctx, 1, nil))

	got, err := store.GetCorroborations(ctx, 1, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestGetCorroborationsMinSimilarityAndLimit(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, store.ReplaceCorroborations(ctx, 1, []model.CorroborationEdge{
		edge(1, 2, 0.95),
		edge(1, 3, 0.7),
		edge(1, 4, 0.5),
	}))

	got, err := store.GetCorroborations(ctx, 1, 0.65, 10)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = store.GetCorroborations(ctx, 1, 0, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(2), got[0].SimilarArticleID)
}

func TestGetCorroborationsIsolatedArticle(t *testing.T) {
	store := setupTestDB(t)

	got, err := store.GetCorroborations(context.Background(), 7, 0, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestReplaceCorroborationsValidation(t *testing.T) {
	store := setupTestDB(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		articleID int64
		edges     []model.CorroborationEdge
	}{
		{name: "mismatched article id", articleID: 1, edges: []model.CorroborationEdge{edge(2, 3, 0.5)}},
		{name: "self edge", articleID: 1, edges: []model.CorroborationEdge{edge(1, 1, 0.5)}},
		{name: "similarity out of range", articleID: 1, edges: []model.CorroborationEdge{edge(1, 2, 1.5)}},
		{name: "non-positive article id", articleID: 0, edges: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, store.ReplaceCorroborations(ctx, tt.articleID, tt.edges))
		})
	}
}
