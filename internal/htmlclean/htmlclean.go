// Package htmlclean strips markup from article bodies before they are fed
// to classification and summarization.
package htmlclean

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Text extracts the visible text from an HTML fragment and collapses
// whitespace runs into single spaces. Input that fails to parse is returned
// with whitespace normalized but otherwise untouched.
func Text(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return collapse(html)
	}
	doc.Find("script, style, noscript").Remove()
	return collapse(doc.Text())
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
