// Package report assembles the final digest from themed article buckets.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"intelbrief/internal/chunker"
	"intelbrief/internal/classify"
)

var themeEmojis = map[string]string{
	classify.ThemeGeopolitical: "🌍",
	classify.ThemeCyber:        "🔒",
	classify.ThemeEmergingTech: "⚡",
	classify.ThemeNational:     "🛡️",
	classify.ThemeMilitary:     "⚔️",
	classify.ThemeRulesOrder:   "⚖️",
	classify.ThemeForesight:    "🔮",
}

const defaultEmoji = "📄"

// Report is a finished digest ready for rendering or delivery.
type Report struct {
	Title         string
	GeneratedAt   time.Time
	Sections      []Section
	TotalArticles int
}

// Section is one theme's slice of the digest. Overview is the synthesis
// split into delivery-sized chunks.
type Section struct {
	Theme    string
	Emoji    string
	Overview []string
	Articles []Article
	// Total counts every article classified under the theme, including
	// those beyond the per-theme display cap.
	Total int
}

// Article is one entry in a section.
type Article struct {
	Title     string
	URL       string
	FeedTitle string
	Published time.Time
	Summary   []string
}

// Build assembles a report from classified buckets, the per-item summaries,
// and the display limits. Bucket order is preserved.
func Build(title string, buckets []*classify.Bucket, summaries map[string]string, maxPerTheme, chunkLimit int) *Report {
	now := time.Now()
	r := &Report{
		Title:       fmt.Sprintf("%s – %s", title, now.Format("January 2, 2006")),
		GeneratedAt: now,
	}

	for _, bucket := range buckets {
		emoji, ok := themeEmojis[bucket.Theme]
		if !ok {
			emoji = defaultEmoji
		}
		section := Section{
			Theme:    bucket.Theme,
			Emoji:    emoji,
			Overview: chunker.Split(bucket.Synthesis, chunkLimit),
			Total:    len(bucket.Items),
		}

		items := bucket.Items
		if maxPerTheme > 0 && len(items) > maxPerTheme {
			items = items[:maxPerTheme]
		}
		for _, item := range items {
			section.Articles = append(section.Articles, Article{
				Title:     item.Title,
				URL:       item.WebURL(),
				FeedTitle: item.FeedTitle,
				Published: item.Published,
				Summary:   chunker.Split(summaries[item.ID], chunkLimit),
			})
		}

		r.Sections = append(r.Sections, section)
		r.TotalArticles += len(bucket.Items)
	}
	return r
}

// Render writes the report as plain text.
func (r *Report) Render(w io.Writer) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s\n%s\n\n", r.Title, strings.Repeat("=", len([]rune(r.Title))))
	fmt.Fprintf(&sb, "%d articles across %d themes\n\n", r.TotalArticles, len(r.Sections))

	for _, section := range r.Sections {
		fmt.Fprintf(&sb, "%s %s (%d articles)\n", section.Emoji, section.Theme, section.Total)
		for _, chunk := range section.Overview {
			if chunk != "" {
				fmt.Fprintf(&sb, "%s\n", chunk)
			}
		}
		sb.WriteString("\n")

		for _, article := range section.Articles {
			fmt.Fprintf(&sb, "  - %s\n", article.Title)
			if article.FeedTitle != "" {
				fmt.Fprintf(&sb, "    %s", article.FeedTitle)
				if !article.Published.IsZero() {
					fmt.Fprintf(&sb, " | %s", article.Published.Format("2006-01-02 15:04"))
				}
				sb.WriteString("\n")
			}
			for _, chunk := range article.Summary {
				if chunk != "" {
					fmt.Fprintf(&sb, "    %s\n", chunk)
				}
			}
			if article.URL != "" {
				fmt.Fprintf(&sb, "    %s\n", article.URL)
			}
		}
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
