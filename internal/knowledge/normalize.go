// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/whistle-consult/pkg/types"
)

// particles are Korean postpositions stripped from the end of Hangul tokens,
// longest first so "으로부터" wins over "로".
var particles = []string{
	"으로부터", "에게서", "로부터", "에서는", "으로는", "이라고", "이라는",
	"에서", "에게", "한테", "으로", "까지", "부터", "처럼", "보다", "이나", "이랑", "라고", "라는", "께서",
	"와", "과", "은", "는", "이", "가", "을", "를", "에", "의", "도", "만", "로", "랑",
}

// minStemRunes is the shortest Hangul stem a particle may be stripped down to.
const minStemRunes = 2

// Normalizer turns free text into the term vocabulary shared by documents and
// queries. The same Normalizer must be used on both sides.
type Normalizer struct {
	stopwords map[string]struct{}

	// concepts maps a normalized surface term to its concept names.
	concepts map[string][]string

	// prefixTerms holds Hangul concept terms that also match as a prefix of a
	// compound token ("금품수수" contains "금품").
	prefixTerms []string
}

// NewNormalizer builds a Normalizer from a stopword list and a concept lexicon.
// Stopwords and concept terms are themselves normalized so callers can write
// them in any case or with a trailing particle.
func NewNormalizer(stopwords []string, concepts []types.Concept) *Normalizer {
	n := &Normalizer{
		stopwords: make(map[string]struct{}, len(stopwords)),
		concepts:  make(map[string][]string),
	}
	for _, w := range stopwords {
		for _, tok := range splitWords(w) {
			n.stopwords[tok] = struct{}{}
		}
	}

	seenPrefix := make(map[string]bool)
	for _, c := range concepts {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if name == "" {
			continue
		}
		for _, term := range append([]string{name}, c.Terms...) {
			for _, tok := range splitWords(term) {
				tok = stripParticle(tok)
				if !containsString(n.concepts[tok], name) {
					n.concepts[tok] = append(n.concepts[tok], name)
				}
				if isHangul(tok) && utf8.RuneCountInString(tok) >= minStemRunes && !seenPrefix[tok] {
					seenPrefix[tok] = true
					n.prefixTerms = append(n.prefixTerms, tok)
				}
			}
		}
	}
	return n
}

// Terms returns the distinct normalized terms of text in first-seen order.
// Each surface term is followed by the concept names it expands to.
func (n *Normalizer) Terms(text string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(t string) {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}

	for _, tok := range splitWords(text) {
		if n.isStopword(tok) {
			continue
		}
		tok = stripParticle(tok)
		if n.isStopword(tok) {
			continue
		}
		add(tok)
		for _, c := range n.conceptsFor(tok) {
			add(c)
		}
	}
	return out
}

func (n *Normalizer) isStopword(tok string) bool {
	_, ok := n.stopwords[tok]
	return ok
}

func (n *Normalizer) conceptsFor(tok string) []string {
	names := n.concepts[tok]
	if !isHangul(tok) {
		return names
	}
	for _, term := range n.prefixTerms {
		if term != tok && strings.HasPrefix(tok, term) {
			for _, c := range n.concepts[term] {
				if !containsString(names, c) {
					names = append(names[:len(names):len(names)], c)
				}
			}
		}
	}
	return names
}

// splitWords case-folds text and splits it on anything that is not a letter
// or digit. Single ASCII characters are dropped; they carry no signal
// ("a", the "2" of "§2").
func splitWords(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) == 1 {
			continue
		}
		out = append(out, f)
	}
	return out
}

// stripParticle removes one trailing Korean particle from a Hangul token when
// the remaining stem is at least minStemRunes long.
func stripParticle(tok string) string {
	if !isHangul(tok) {
		return tok
	}
	for _, p := range particles {
		if !strings.HasSuffix(tok, p) {
			continue
		}
		stem := strings.TrimSuffix(tok, p)
		if utf8.RuneCountInString(stem) >= minStemRunes {
			return stem
		}
	}
	return tok
}

// isHangul reports whether the last rune of tok is a Hangul syllable.
func isHangul(tok string) bool {
	r, _ := utf8.DecodeLastRuneInString(tok)
	return unicode.Is(unicode.Hangul, r)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
