package model

import "time"

// Corroboration is a run-scoped record of one similar article discovered for a
// seed article. Persisted only as rows of the corroboration edge table.
type Corroboration struct {
	FoundAt    time.Time
	Title      string
	FeedURL    string
	ArticleID  int64
	Similarity float64
}

// CorroborationEdge is a persisted article-to-article similarity row.
type CorroborationEdge struct {
	CreatedAt        time.Time
	ArticleID        int64
	SimilarArticleID int64
	Similarity       float64
}
