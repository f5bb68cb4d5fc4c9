// Package matcher implements whole-word keyword matching over free text.
//
// Text and keywords are normalized the same way: decomposed with NFD,
// combining marks dropped, lower-cased, and every run of characters that is
// not a letter or digit collapsed to a single space. A keyword matches when
// its tokens appear contiguously, in order, as whole tokens of the text.
package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize returns the canonical form used for matching.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range norm.NFD.String(s) {
		switch {
		case unicode.Is(unicode.Mn, r):
			continue
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(unicode.ToLower(r))
		default:
			pendingSpace = true
		}
	}
	return b.String()
}

// Tokens splits s into normalized whole-word tokens.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}

// Matches reports whether keyword occurs in text as a whole-word phrase.
func Matches(text, keyword string) bool {
	return NewCorpus(text).Contains(keyword)
}

// Corpus is a pre-tokenized text that can be probed with many keywords.
type Corpus struct {
	tokens []string
}

// NewCorpus tokenizes the concatenation of the given texts. Each text is a
// separate segment, so a phrase never spans two texts.
func NewCorpus(texts ...string) *Corpus {
	c := &Corpus{}
	for i, t := range texts {
		toks := Tokens(t)
		if len(toks) == 0 {
			continue
		}
		if i > 0 && len(c.tokens) > 0 {
			c.tokens = append(c.tokens, segmentBreak)
		}
		c.tokens = append(c.tokens, toks...)
	}
	return c
}

// segmentBreak cannot be produced by Normalize, which only emits letters,
// digits and single spaces.
const segmentBreak = "\x00"

// Empty reports whether the corpus has no tokens.
func (c *Corpus) Empty() bool {
	return len(c.tokens) == 0
}

// Contains reports whether keyword occurs in the corpus as a whole-word phrase.
// An empty keyword never matches.
func (c *Corpus) Contains(keyword string) bool {
	kw := Tokens(keyword)
	if len(kw) == 0 || len(kw) > len(c.tokens) {
		return false
	}
	for i := 0; i+len(kw) <= len(c.tokens); i++ {
		if c.tokens[i] != kw[0] {
			continue
		}
		match := true
		for j := 1; j < len(kw); j++ {
			if c.tokens[i+j] != kw[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// MatchAll returns the keywords that occur in the corpus, in input order.
func (c *Corpus) MatchAll(keywords []string) []string {
	var matched []string
	for _, kw := range keywords {
		if c.Contains(kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}
