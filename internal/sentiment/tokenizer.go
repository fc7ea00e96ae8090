package sentiment

import "strings"

// Tokens is a lowercased, whitespace-split view of a text. Punctuation stays
// attached to the words.
type Tokens []string

func Tokenize(text string) Tokens {
	return Tokens(strings.Fields(strings.ToLower(text)))
}

func (t Tokens) Len() int { return len(t) }

func (t Tokens) At(i int) string { return t[i] }

// Prev returns the token before i, or "" at the start.
func (t Tokens) Prev(i int) string {
	if i <= 0 || i > len(t) {
		return ""
	}
	return t[i-1]
}

// Next returns the token after i, or "" at the end.
func (t Tokens) Next(i int) string {
	if i < 0 || i >= len(t)-1 {
		return ""
	}
	return t[i+1]
}
