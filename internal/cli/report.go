package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/geopulse/coherence/internal/model"
)

// RenderReport formats a pipeline run report for terminal output.
func RenderReport(report *model.CoherenceReport) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Coherence Pipeline Report"))
	b.WriteString("\n")

	lines := []string{
		fmt.Sprintf("Articles:            %d", report.TotalArticles),
		fmt.Sprintf("Analyzed:            %d", report.Analyzed),
		fmt.Sprintf("Clusters found:      %d", report.ClustersFound),
		fmt.Sprintf("Harmonized:          %d", report.Harmonized),
		fmt.Sprintf("Confidence improved: %d", report.ConfidenceImproved),
		fmt.Sprintf("Sentiment changes:   %d", report.SentimentChanges),
	}

	if report.Skipped > 0 {
		lines = append(lines, WarningStyle.Render(fmt.Sprintf("Skipped:             %d", report.Skipped)))
	}
	if report.Errors > 0 {
		lines = append(lines, ErrorStyle.Render(fmt.Sprintf("Errors:              %d", report.Errors)))
	} else {
		lines = append(lines, SuccessStyle.Render("Errors:              0"))
	}

	if !report.FinishedAt.IsZero() && !report.StartedAt.IsZero() {
		lines = append(lines, SubtleStyle.Render(
			fmt.Sprintf("Duration:            %s", report.FinishedAt.Sub(report.StartedAt).Round(10*time.Millisecond))))
	}

	b.WriteString(BoxStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")

	return b.String()
}

// RenderDistribution formats a stored sentiment distribution.
func RenderDistribution(dist *model.SentimentDistribution) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Sentiment Distribution"))
	b.WriteString("\n")

	types := make([]string, 0, len(dist.ByType))
	for t := range dist.ByType {
		types = append(types, string(t))
	}
	sort.Strings(types)

	lines := make([]string, 0, len(types)+3)
	for _, t := range types {
		lines = append(lines, fmt.Sprintf("%-18s %d", t, dist.ByType[model.SentimentType(t)]))
	}
	lines = append(lines,
		SubtleStyle.Render(fmt.Sprintf("%-18s %d", "total", dist.Total)),
		SubtleStyle.Render(fmt.Sprintf("%-18s %d", "analyzed", dist.Analyzed)),
		SubtleStyle.Render(fmt.Sprintf("%-18s %d", "harmonized", dist.Harmonized)))

	b.WriteString(BoxStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")

	return b.String()
}
