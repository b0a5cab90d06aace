package energy

import (
	"strings"
	"unicode"
)

// EstimateTokens approximates the token count of text in a single scan.
// It counts maximal runs of word characters, single punctuation runes, and
// whitespace runs, which tracks sub-word tokenizer behavior closely enough
// for cost estimation. No vocabulary, no byte-pair merges.
// Empty or whitespace-only text counts as 0 tokens.
func EstimateTokens(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	count := 0
	inWord, inSpace := false, false
	for _, r := range text {
		switch {
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			if !inWord {
				count++
			}
			inWord, inSpace = true, false
		case unicode.IsSpace(r):
			if !inSpace {
				count++
			}
			inWord, inSpace = false, true
		default:
			// Every other rune is its own run.
			count++
			inWord, inSpace = false, false
		}
	}
	if count < 1 {
		count = 1
	}
	return count
}
