// Package chunker splits long text into bounded pieces for delivery
// channels with message size limits.
package chunker

import "strings"

// Split breaks text into chunks of at most maxLength runes. Breaks prefer a
// sentence end, then a word boundary, and only cut mid-word when a single
// word exceeds the limit. Chunks are trimmed of surrounding whitespace.
// Empty input yields one empty chunk.
func Split(text string, maxLength int) []string {
	if maxLength <= 0 {
		return []string{strings.TrimSpace(text)}
	}

	runes := []rune(strings.TrimSpace(text))
	if len(runes) == 0 {
		return []string{""}
	}

	var chunks []string
	for len(runes) > 0 {
		if len(runes) <= maxLength {
			chunks = append(chunks, strings.TrimSpace(string(runes)))
			break
		}

		cut := breakIndex(runes, maxLength)
		chunk := strings.TrimSpace(string(runes[:cut]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		runes = trimLeadingSpace(runes[cut:])
	}
	if len(chunks) == 0 {
		return []string{""}
	}
	return chunks
}

// breakIndex picks where to split a window of maxLength runes: the last
// sentence end past the midpoint, else the last space, else the hard limit.
func breakIndex(runes []rune, maxLength int) int {
	window := runes[:maxLength]

	for i := len(window) - 2; i > maxLength/2; i-- {
		if window[i] == '.' && window[i+1] == ' ' {
			return i + 1
		}
	}
	if idx := lastSpace(window); idx > 0 {
		return idx
	}
	return maxLength
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' || runes[i] == '\n' || runes[i] == '\t' {
			return i
		}
	}
	return -1
}

func trimLeadingSpace(runes []rune) []rune {
	i := 0
	for i < len(runes) && (runes[i] == ' ' || runes[i] == '\n' || runes[i] == '\t') {
		i++
	}
	return runes[i:]
}
