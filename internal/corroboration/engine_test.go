package corroboration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geopulse/coherence/internal/model"
	"github.com/geopulse/coherence/internal/similarity"
	"github.com/geopulse/coherence/internal/storage"
)

func newTestEngine() *Engine {
	return NewEngine(similarity.NewScorer(similarity.NewTextSimilarity("sequence")))
}

func storyArticle(id int64, title, content string) model.Article {
	return model.Article{
		ID:      id,
		Title:   title,
		Content: content,
		FeedURL: "https://news.example/world",
		PubDate: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		Themes:  []model.Theme{{ID: "conflict", Confidence: 0.9}},
	}
}

func TestEngineFind(t *testing.T) {
	engine := newTestEngine()

	seed := storyArticle(1, "Ceasefire agreement signed in capital", "Negotiators signed a ceasefire agreement on Monday after marathon talks.")
	twin := storyArticle(2, "Ceasefire agreement signed in capital", "Negotiators signed a ceasefire agreement on Monday after marathon talks.")
	related := storyArticle(3, "Ceasefire deal reached after talks", "A ceasefire deal was reached on Monday, negotiators said after talks.")
	unrelated := storyArticle(4, "Wheat futures slide on harvest outlook", "Wheat futures fell sharply as forecasts pointed to a record harvest.")
	unrelated.Themes = []model.Theme{{ID: "commodities", Confidence: 0.8}}

	found := engine.Find(&seed, []model.Article{twin, related, unrelated}, 0.65, 10)

	require.Len(t, found, 2)
	assert.Equal(t, int64(2), found[0].ArticleID, "perfect match ranks first")
	assert.Equal(t, int64(3), found[1].ArticleID)
	assert.InDelta(t, 1.0, found[0].Similarity, 1e-9)
	assert.Greater(t, found[0].Similarity, found[1].Similarity)
}

func TestEngineFindExcludesSelf(t *testing.T) {
	engine := newTestEngine()
	seed := storyArticle(1, "Ceasefire agreement signed", "Negotiators signed a ceasefire agreement.")

	// Even at threshold zero, where everything else would match.
	found := engine.Find(&seed, []model.Article{seed}, 0, 10)
	assert.Empty(t, found, "pool containing only the seed yields nothing")
}

func TestEngineFindEmptyPool(t *testing.T) {
	engine := newTestEngine()
	seed := storyArticle(1, "Ceasefire agreement signed", "Negotiators signed a ceasefire agreement.")

	found := engine.Find(&seed, nil, 0.5, 10)
	assert.Empty(t, found)
}

func TestEngineFindTopNTruncation(t *testing.T) {
	engine := newTestEngine()
	seed := storyArticle(1, "Ceasefire agreement signed", "Negotiators signed a ceasefire agreement on Monday.")

	candidates := make([]model.Article, 0, 5)
	for i := int64(2); i <= 6; i++ {
		candidates = append(candidates, storyArticle(i, seed.Title, seed.Content))
	}

	found := engine.Find(&seed, candidates, 0.65, 3)
	require.Len(t, found, 3)

	// All candidates score identically; stable sort keeps input order.
	assert.Equal(t, int64(2), found[0].ArticleID)
	assert.Equal(t, int64(3), found[1].ArticleID)
	assert.Equal(t, int64(4), found[2].ArticleID)
}

func TestEngineFindThresholdFilters(t *testing.T) {
	engine := newTestEngine()
	seed := storyArticle(1, "Ceasefire agreement signed", "Negotiators signed a ceasefire agreement on Monday.")
	other := storyArticle(2, "Wheat futures slide", "Wheat futures fell sharply on forecasts of a record harvest.")
	other.Themes = nil
	other.FeedURL = "https://other.example/markets"

	require.Empty(t, engine.Find(&seed, []model.Article{other}, 0.9, 10))
}

func TestEngineFindAndPersist(t *testing.T) {
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	seed := storyArticle(1, "Ceasefire agreement signed", "Negotiators signed a ceasefire agreement on Monday.")
	twin := storyArticle(2, seed.Title, seed.Content)
	require.NoError(t, store.SaveArticles(ctx, []model.Article{seed, twin}))

	engine := newTestEngine()
	found, err := engine.FindAndPersist(ctx, store, &seed, []model.Article{twin}, 0.65, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)

	edges, err := store.GetCorroborations(ctx, seed.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, seed.ID, edges[0].ArticleID)
	assert.Equal(t, twin.ID, edges[0].SimilarArticleID)
	assert.InDelta(t, found[0].Similarity, edges[0].Similarity, 1e-9)
}

func TestEngineFindAndPersistReplacesEdges(t *testing.T) {
	store, err := storage.NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ctx := context.Background()
	require.NoError(t, store.Migrate(ctx))

	seed := storyArticle(1, "Ceasefire agreement signed", "Negotiators signed a ceasefire agreement on Monday.")
	articles := []model.Article{seed}
	for i := int64(2); i <= 4; i++ {
		articles = append(articles, storyArticle(i, seed.Title, fmt.Sprintf("%s Update %d.", seed.Content, i)))
	}
	require.NoError(t, store.SaveArticles(ctx, articles))

	engine := newTestEngine()
	_, err = engine.FindAndPersist(ctx, store, &seed, articles, 0.65, 10)
	require.NoError(t, err)

	// A narrower second pass replaces the whole set rather than appending.
	_, err = engine.FindAndPersist(ctx, store, &seed, articles[:2], 0.65, 10)
	require.NoError(t, err)

	edges, err := store.GetCorroborations(ctx, seed.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, int64(2), edges[0].SimilarArticleID)
}
