// Package diffview tokenizes and aligns two text blobs and renders the
// alignment as styled spans for display. It is a pure transformation:
// the same two inputs always produce the same output.
package diffview

import "regexp"

// TokenKind classifies a diff token.
type TokenKind int

// Token kinds. URLs are matched first so they are never split mid-token.
const (
	TokenURL TokenKind = iota
	TokenWhitespace
	TokenWord
)

// Token is an indivisible unit of the diff alignment.
type Token struct {
	Kind TokenKind
	Text string
}

// tokenPattern matches, in order of preference: URL-like substrings,
// whitespace runs, and other non-whitespace runs.
var tokenPattern = regexp.MustCompile(`https?://\S+|\s+|\S+`)

var whitespacePattern = regexp.MustCompile(`^\s+$`)

// Tokenize splits text into URL, whitespace and word tokens.
// Concatenating the token texts reproduces the input exactly.
func Tokenize(text string) []Token {
	if text == "" {
		return nil
	}

	parts := tokenPattern.FindAllString(text, -1)
	tokens := make([]Token, 0, len(parts))
	for _, p := range parts {
		tokens = append(tokens, Token{Kind: classify(p), Text: p})
	}
	return tokens
}

func classify(s string) TokenKind {
	switch {
	case len(s) > 7 && (s[:7] == "http://" || s[:8] == "https://"):
		return TokenURL
	case whitespacePattern.MatchString(s):
		return TokenWhitespace
	default:
		return TokenWord
	}
}
