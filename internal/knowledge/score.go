// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import "math"

// Scorer rates how relevant a document is to a normalized query. Query terms
// are distinct. Implementations must return a value at or below RelevanceFloor
// for documents sharing no term with the query, and must never rate a
// document lower because it shares more distinct query terms.
type Scorer interface {
	Score(query []string, doc *IndexedDocument) float64
}

// RelevanceFloor is the score at or below which a document is excluded.
const RelevanceFloor = 0.0

// OverlapScorer counts distinct shared terms.
type OverlapScorer struct{}

// Score implements Scorer.
func (OverlapScorer) Score(query []string, doc *IndexedDocument) float64 {
	var n float64
	for _, t := range query {
		if doc.HasTerm(t) {
			n++
		}
	}
	return n
}

// IDFScorer sums the inverse document frequency of each distinct shared term,
// so rare terms ("횡령") outweigh terms found in most documents ("신고").
type IDFScorer struct {
	idf map[string]float64
}

// NewIDFScorer computes term weights ln(1 + N/df) over docs.
func NewIDFScorer(docs []IndexedDocument) *IDFScorer {
	df := make(map[string]int)
	for i := range docs {
		for t := range docs[i].terms {
			df[t]++
		}
	}
	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for t, c := range df {
		idf[t] = math.Log1p(n / float64(c))
	}
	return &IDFScorer{idf: idf}
}

// Weight returns the weight of a term, or zero for a term no document has.
func (s *IDFScorer) Weight(term string) float64 {
	return s.idf[term]
}

// Score implements Scorer.
func (s *IDFScorer) Score(query []string, doc *IndexedDocument) float64 {
	var total float64
	for _, t := range query {
		if doc.HasTerm(t) {
			total += s.idf[t]
		}
	}
	return total
}
