// Package gemini wraps the Google Generative AI client with the three
// prompts the digest pipeline needs: theme classification, per-article
// summarization, and per-theme synthesis.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	classifyInputLimit  = 1000
	summarizeInputLimit = 4000
)

type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewClient creates a Gemini client for the given model name.
func NewClient(ctx context.Context, apiKey, modelName string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	// Deterministic output keeps classification stable across runs.
	model.SetTemperature(0)

	return &Client{client: client, model: model}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty gemini response")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		return "", fmt.Errorf("gemini response contained no text")
	}
	return out, nil
}

// Classify asks the model to put the article under exactly one of the given
// themes, returning the raw label. The model answers IRRELEVANT when the
// article fits no theme.
func (c *Client) Classify(ctx context.Context, themes []string, title, content string) (string, error) {
	prompt := fmt.Sprintf(`Classify this article into exactly one of the following themes:
%s

Respond with only the theme name, nothing else. If the article does not fit any theme, respond with IRRELEVANT.

Title: %s
Content: %s`,
		strings.Join(themes, "\n"), title, Truncate(content, classifyInputLimit))
	return c.generate(ctx, prompt)
}

// SummarizeArticle produces a short analytic summary of one article.
func (c *Client) SummarizeArticle(ctx context.Context, title, content string) (string, error) {
	prompt := fmt.Sprintf(`Summarize this article in 2-3 sentences, focusing on the key facts and their significance.

Title: %s
Content: %s`,
		title, Truncate(content, summarizeInputLimit))
	return c.generate(ctx, prompt)
}

// SynthesizeTheme writes a cohesive overview of a theme from the per-article
// digest (one bullet per article).
func (c *Client) SynthesizeTheme(ctx context.Context, theme, digest string) (string, error) {
	prompt := fmt.Sprintf(`You are writing an intelligence digest. Based on the article summaries below, write a cohesive 2-4 sentence synthesis of current developments for the theme "%s". Do not list articles individually; connect them into a single narrative.

%s`,
		theme, digest)
	return c.generate(ctx, prompt)
}

// Truncate cuts text to at most maxChars runes, preferring to end on a
// sentence boundary near the limit.
func Truncate(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}
	cut := string(runes[:maxChars])
	if idx := strings.LastIndex(cut, ". "); idx > maxChars/2 {
		return cut[:idx+1]
	}
	return cut
}
