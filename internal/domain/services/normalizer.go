// Package services implements domain business logic and use cases.
package services

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"
)

// Token is one normalized word plus its position in the original content
type Token struct {
	Text  string
	ID    uint64
	Line  int // 1-based
	Start int // byte offset, inclusive
	End   int // byte offset, exclusive
}

// NormalizedDocument is the comparable token stream of a document.
// Token positions are strictly increasing, so the slice doubles as the
// offset map from token index back to (line, byte offset).
type NormalizedDocument struct {
	Tokens []Token
}

// spellingVariants folds common spelling differences in license texts
var spellingVariants = map[string]string{
	"licence":         "license",
	"licences":        "licenses",
	"licenced":        "licensed",
	"licencing":       "licensing",
	"sublicence":      "sublicense",
	"https":           "http",
	"organisation":    "organization",
	"organisations":   "organizations",
	"recognised":      "recognized",
	"authorised":      "authorized",
	"unauthorised":    "unauthorized",
	"favour":          "favor",
	"behaviour":       "behavior",
	"acknowledgement": "acknowledgment",
}

// commentLeaders are stripped before deciding whether a line is a copyright notice
const commentLeaders = " \t\r/*#;!-<>%'\""

// Normalize tokenizes content: case-folded, punctuation and whitespace
// insensitive. Copyright notice lines are left out of the stream because
// their years and holder names differ between every copy of a license.
func Normalize(content []byte) *NormalizedDocument {
	doc := &NormalizedDocument{}
	line := 1
	lineStart := 0

	for lineStart <= len(content) {
		lineEnd := lineStart
		for lineEnd < len(content) && content[lineEnd] != '\n' {
			lineEnd++
		}

		lineBytes := content[lineStart:lineEnd]
		if !isCopyrightLine(lineBytes) {
			doc.Tokens = appendLineTokens(doc.Tokens, lineBytes, lineStart, line)
		}

		line++
		lineStart = lineEnd + 1
	}

	return doc
}

// NormalizeText returns the token texts of s
func NormalizeText(s string) []string {
	doc := Normalize([]byte(s))
	words := make([]string, len(doc.Tokens))
	for i, t := range doc.Tokens {
		words[i] = t.Text
	}
	return words
}

// TokenID hashes a normalized token
func TokenID(text string) uint64 {
	return xxhash.Sum64String(text)
}

// Len returns the number of tokens
func (d *NormalizedDocument) Len() int {
	return len(d.Tokens)
}

// IDs returns the token ids in order
func (d *NormalizedDocument) IDs() []uint64 {
	ids := make([]uint64, len(d.Tokens))
	for i, t := range d.Tokens {
		ids[i] = t.ID
	}
	return ids
}

// Bag returns token id occurrence counts
func (d *NormalizedDocument) Bag() map[uint64]int {
	bag := make(map[uint64]int, len(d.Tokens))
	for _, t := range d.Tokens {
		bag[t.ID]++
	}
	return bag
}

// Span maps the token range [from, to) back to the original content.
// Byte offsets are half-open; lines are 1-based and inclusive.
func (d *NormalizedDocument) Span(from, to int) (startLine, endLine, startIndex, endIndex int) {
	first := d.Tokens[from]
	last := d.Tokens[to-1]
	return first.Line, last.Line, first.Start, last.End
}

func appendLineTokens(tokens []Token, line []byte, base, lineNo int) []Token {
	i := 0
	for i < len(line) {
		r, size := utf8.DecodeRune(line[i:])
		if !isWordRune(r) {
			i += size
			continue
		}

		start := i
		for i < len(line) {
			r, size = utf8.DecodeRune(line[i:])
			if !isWordRune(r) {
				break
			}
			i += size
		}

		text := canonicalWord(strings.ToLower(string(line[start:i])))
		tokens = append(tokens, Token{
			Text:  text,
			ID:    TokenID(text),
			Line:  lineNo,
			Start: base + start,
			End:   base + i,
		})
	}
	return tokens
}

func isWordRune(r rune) bool {
	if r == utf8.RuneError {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func canonicalWord(w string) string {
	if v, ok := spellingVariants[w]; ok {
		return v
	}
	return w
}

// isCopyrightLine reports whether a line is a copyright notice such as
// "Copyright (c) 2020 Jane Doe" or "© 2020 Jane Doe". Wrapped license prose
// like "copyright notice, this list of conditions" is not.
func isCopyrightLine(line []byte) bool {
	s := strings.ToLower(strings.TrimLeft(string(line), commentLeaders))

	switch {
	case strings.HasPrefix(s, "copyright"):
		rest := strings.TrimLeft(s[len("copyright"):], " \t")
		return strings.HasPrefix(rest, "(c)") ||
			strings.HasPrefix(rest, "©") ||
			strings.HasPrefix(rest, "<") ||
			startsWithDigit(rest)
	case strings.HasPrefix(s, "©"):
		return startsWithDigit(strings.TrimLeft(s[len("©"):], " \t"))
	case strings.HasPrefix(s, "(c)"):
		return startsWithDigit(strings.TrimLeft(s[len("(c)"):], " \t"))
	}
	return false
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}
