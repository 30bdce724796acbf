// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/whistle-consult/pkg/types"
)

// Result is a document paired with its relevance score.
type Result struct {
	types.Document
	Score float64 `json:"score" yaml:"score"`
}

// Retrieve ranks the corpus against query and returns at most topK documents
// scoring above RelevanceFloor, best first. Ties keep corpus order. A topK
// larger than the corpus is capped; topK below one yields nothing. Retrieve
// never fails: an empty or unmatched query returns no results.
func (b *Base) Retrieve(query string, topK int) []Result {
	if topK <= 0 {
		return nil
	}
	terms := b.norm.Terms(query)
	if len(terms) == 0 {
		return nil
	}

	var results []Result
	for i := range b.docs {
		score := b.scorer.Score(terms, &b.docs[i])
		if math.IsNaN(score) || score <= RelevanceFloor {
			continue
		}
		results = append(results, Result{Document: b.docs[i].Document, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// Search retrieves the topK best documents for query and renders them as a
// context block for a generation prompt. It returns "" when no document is
// relevant; callers treat that as "no additional context".
func (b *Base) Search(query string, topK int) string {
	return b.Format(b.Retrieve(query, topK))
}

// Format renders results in rank order. Each result gets a numbered header
// line followed by its body; results are separated by a blank line.
func (b *Base) Format(results []Result) string {
	if len(results) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[%d] %s | %s\n", i+1, r.Category.Label(), oneLine(r.Title))
		sb.WriteString(truncateRunes(compactBody(r.Body), b.maxBodyRunes))
	}
	return sb.String()
}

// oneLine collapses whitespace so a title cannot break the header line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// compactBody drops blank lines inside a body so the only blank lines in a
// context block are the separators between results.
func compactBody(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func truncateRunes(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:max])) + "…"
}
