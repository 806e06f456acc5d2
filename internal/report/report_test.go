package report

import (
	"strings"
	"testing"

	"intelbrief/internal/classify"
	"intelbrief/internal/inoreader"
)

func testBuckets() []*classify.Bucket {
	return []*classify.Bucket{
		{
			Theme:     classify.ThemeGeopolitical,
			Synthesis: "Tensions continue to rise across several theaters.",
			Items: []inoreader.Item{
				{ID: "1", Title: "Border incident reported", FeedTitle: "Wire Service"},
				{ID: "2", Title: "Sanctions expanded"},
				{ID: "3", Title: "Summit postponed"},
			},
		},
		{
			Theme:     "Novel Theme",
			Synthesis: "A new pattern emerged.",
			Items:     []inoreader.Item{{ID: "4", Title: "Unexpected development"}},
		},
	}
}

func TestBuildCapsArticlesPerTheme(t *testing.T) {
	summaries := map[string]string{"1": "s1", "2": "s2", "3": "s3", "4": "s4"}
	r := Build("Daily Brief", testBuckets(), summaries, 2, 400)

	if len(r.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(r.Sections))
	}
	first := r.Sections[0]
	if len(first.Articles) != 2 {
		t.Fatalf("expected 2 displayed articles, got %d", len(first.Articles))
	}
	// The section still reports the full theme count.
	if first.Total != 3 {
		t.Errorf("section total = %d, want 3", first.Total)
	}
	if r.TotalArticles != 4 {
		t.Errorf("report total = %d, want 4", r.TotalArticles)
	}
}

func TestBuildAssignsEmojis(t *testing.T) {
	r := Build("Daily Brief", testBuckets(), nil, 10, 400)
	if r.Sections[0].Emoji != "🌍" {
		t.Errorf("canonical theme emoji = %q", r.Sections[0].Emoji)
	}
	if r.Sections[1].Emoji != defaultEmoji {
		t.Errorf("novel theme emoji = %q, want default", r.Sections[1].Emoji)
	}
}

func TestBuildChunksLongSynthesis(t *testing.T) {
	buckets := []*classify.Bucket{{
		Theme:     classify.ThemeCyber,
		Synthesis: strings.Repeat("A fairly long sentence about intrusions. ", 30),
		Items:     []inoreader.Item{{ID: "1", Title: "t"}},
	}}
	r := Build("Daily Brief", buckets, nil, 10, 100)

	if len(r.Sections[0].Overview) < 2 {
		t.Fatalf("long synthesis not chunked: %d chunks", len(r.Sections[0].Overview))
	}
	for i, chunk := range r.Sections[0].Overview {
		if n := len([]rune(chunk)); n > 100 {
			t.Errorf("overview chunk %d has %d runes", i, n)
		}
	}
}

func TestBuildTitleCarriesDate(t *testing.T) {
	r := Build("Daily Brief", nil, nil, 10, 400)
	if !strings.HasPrefix(r.Title, "Daily Brief – ") {
		t.Fatalf("title = %q", r.Title)
	}
}

func TestRenderContainsSectionsAndLinks(t *testing.T) {
	buckets := testBuckets()
	buckets[0].Items[0].URL = "https://example.com/a"
	summaries := map[string]string{"1": "Short summary one."}
	r := Build("Daily Brief", buckets, summaries, 10, 400)

	var sb strings.Builder
	if err := r.Render(&sb); err != nil {
		t.Fatalf("Render: %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		classify.ThemeGeopolitical,
		"Tensions continue to rise",
		"Border incident reported",
		"Short summary one.",
		"https://example.com/a",
		"Wire Service",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered report missing %q", want)
		}
	}
}
