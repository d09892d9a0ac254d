package model

import "time"

// CoherenceReport is the aggregate result of one batch pipeline run. It is the
// sole error surface of the orchestrator: per-article failures are tallied
// here instead of propagating out of the batch call.
type CoherenceReport struct {
	StartedAt          time.Time
	FinishedAt         time.Time
	TotalArticles      int
	Analyzed           int
	ClustersFound      int
	Harmonized         int
	ConfidenceImproved int
	SentimentChanges   int
	Skipped            int
	Errors             int
}

// HarmonizationStats summarizes one harmonization pass over a batch.
type HarmonizationStats struct {
	ClustersFound int
	Harmonized    int
	Changes       int
}

// SentimentDistribution aggregates stored sentiment counts for reporting.
type SentimentDistribution struct {
	ByType     map[SentimentType]int
	Total      int
	Harmonized int
	Analyzed   int
}
