// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DocumentCategory classifies a knowledge base document.
type DocumentCategory string

const (
	CategoryStatute    DocumentCategory = "statute"
	CategoryRegulation DocumentCategory = "internal-regulation"
	CategoryPrecedent  DocumentCategory = "precedent-case"
)

// Categories lists every valid DocumentCategory in display order.
var Categories = []DocumentCategory{CategoryStatute, CategoryRegulation, CategoryPrecedent}

// Valid reports whether c is one of the fixed categories.
func (c DocumentCategory) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns the Korean display label used in rendered context blocks.
func (c DocumentCategory) Label() string {
	switch c {
	case CategoryStatute:
		return "법률"
	case CategoryRegulation:
		return "내부규정"
	case CategoryPrecedent:
		return "기신고사례"
	default:
		return string(c)
	}
}

// Document is one excerpt in the static corpus: a statute clause, an
// internal regulation, or an anonymized summary of a past report.
type Document struct {
	// ID is unique across the corpus.
	ID string `json:"id" yaml:"id"`

	// Category is one of statute, internal-regulation, precedent-case.
	Category DocumentCategory `json:"category" yaml:"category"`

	// Title is a short label always included in formatted output.
	Title string `json:"title" yaml:"title"`

	// Body is the excerpt returned to the caller. Never empty.
	Body string `json:"body" yaml:"body"`

	// Keywords are curated matching terms. The loader merges them with terms
	// derived from Title and Body.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// Concept groups surface terms that should match each other. Every term is
// expanded to Name during normalization, on documents and queries alike.
type Concept struct {
	Name  string   `json:"name" yaml:"name"`
	Terms []string `json:"terms" yaml:"terms"`
}

// CorpusFile is the on-disk schema of a knowledge base definition.
type CorpusFile struct {
	// Version identifies the corpus revision shipped with the code.
	Version string `json:"version" yaml:"version"`

	// Stopwords are dropped from both documents and queries.
	Stopwords []string `json:"stopwords,omitempty" yaml:"stopwords,omitempty"`

	// Concepts is the synonym lexicon.
	Concepts []Concept `json:"concepts,omitempty" yaml:"concepts,omitempty"`

	// Documents in insertion order. Order breaks score ties.
	Documents []Document `json:"documents" yaml:"documents"`
}
