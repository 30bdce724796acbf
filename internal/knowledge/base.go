// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package knowledge holds the static corpus of statutes, internal
// regulations, and past-case summaries, and ranks its documents against
// free-text incident descriptions for prompt grounding.
//
// A Base is built once at startup and never mutated afterwards, so any
// number of goroutines may call Retrieve and Search without locking.
package knowledge

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/whistle-consult/pkg/types"
)

//go:embed corpus.yaml
var embeddedCorpus []byte

// ErrIntegrity marks a corpus definition that must not be served: duplicate
// ids, empty bodies, unknown categories.
var ErrIntegrity = errors.New("corpus integrity")

// IndexedDocument is a Document with its precomputed term set.
type IndexedDocument struct {
	types.Document
	terms map[string]struct{}
}

// HasTerm reports whether the document's term set contains t.
func (d *IndexedDocument) HasTerm(t string) bool {
	_, ok := d.terms[t]
	return ok
}

// Terms returns the document's normalized terms in sorted order.
func (d *IndexedDocument) Terms() []string {
	out := make([]string, 0, len(d.terms))
	for t := range d.terms {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Base is the immutable, in-memory knowledge base.
type Base struct {
	version      string
	norm         *Normalizer
	docs         []IndexedDocument
	scorer       Scorer
	maxBodyRunes int
}

// Option customizes a Base at load time.
type Option func(*Base)

// WithScorer replaces the default IDF scorer.
func WithScorer(s Scorer) Option {
	return func(b *Base) { b.scorer = s }
}

// WithMaxBodyRunes truncates rendered bodies to n runes. Zero disables it.
func WithMaxBodyRunes(n int) Option {
	return func(b *Base) { b.maxBodyRunes = n }
}

// New validates a corpus definition and builds a Base from it. Any integrity
// problem fails the whole load; a partially loaded Base is never returned.
func New(file types.CorpusFile, opts ...Option) (*Base, error) {
	if err := validate(file); err != nil {
		return nil, err
	}

	b := &Base{
		version: file.Version,
		norm:    NewNormalizer(file.Stopwords, file.Concepts),
		docs:    make([]IndexedDocument, len(file.Documents)),
	}

	for i, doc := range file.Documents {
		doc.Keywords = append([]string(nil), doc.Keywords...)
		terms := make(map[string]struct{})
		for _, src := range append([]string{doc.Title, doc.Body}, doc.Keywords...) {
			for _, t := range b.norm.Terms(src) {
				terms[t] = struct{}{}
			}
		}
		b.docs[i] = IndexedDocument{Document: doc, terms: terms}
	}

	for _, opt := range opts {
		opt(b)
	}
	if b.scorer == nil {
		b.scorer = NewIDFScorer(b.docs)
	}
	return b, nil
}

// Load parses a YAML corpus definition and builds a Base. Unknown fields are
// rejected so a typo in the data file fails at startup.
func Load(data []byte, opts ...Option) (*Base, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file types.CorpusFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("%w: parsing corpus: %v", ErrIntegrity, err)
	}
	return New(file, opts...)
}

// LoadFile reads and loads a YAML corpus definition from path.
func LoadFile(path string, opts ...Option) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading corpus %s: %w", path, err)
	}
	b, err := Load(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading corpus %s: %w", path, err)
	}
	return b, nil
}

var embedded = sync.OnceValues(func() (*Base, error) {
	return Load(embeddedCorpus)
})

// Embedded returns the Base built from the corpus compiled into the binary.
// It is loaded on first use and shared afterwards.
func Embedded() (*Base, error) {
	return embedded()
}

// Open returns the Base selected by cfg: the corpus file when one is
// configured, the embedded corpus otherwise.
func Open(cfg types.KnowledgeBaseConfig) (*Base, error) {
	opts := []Option{WithMaxBodyRunes(cfg.MaxBodyRunes)}
	switch {
	case cfg.CorpusFile != "":
		return LoadFile(cfg.CorpusFile, opts...)
	case cfg.MaxBodyRunes == 0:
		return Embedded()
	default:
		return Load(embeddedCorpus, opts...)
	}
}

// Version returns the corpus revision label.
func (b *Base) Version() string { return b.version }

// Len returns the number of documents.
func (b *Base) Len() int { return len(b.docs) }

// Documents returns a copy of the corpus in insertion order.
func (b *Base) Documents() []types.Document {
	out := make([]types.Document, len(b.docs))
	for i := range b.docs {
		out[i] = b.docs[i].Document
		out[i].Keywords = append([]string(nil), b.docs[i].Keywords...)
	}
	return out
}

// CountByCategory returns the number of documents per category.
func (b *Base) CountByCategory() map[types.DocumentCategory]int {
	counts := make(map[types.DocumentCategory]int, len(types.Categories))
	for i := range b.docs {
		counts[b.docs[i].Category]++
	}
	return counts
}

// Terms normalizes text with the corpus vocabulary rules.
func (b *Base) Terms(text string) []string {
	return b.norm.Terms(text)
}

func validate(file types.CorpusFile) error {
	if len(file.Documents) == 0 {
		return fmt.Errorf("%w: corpus has no documents", ErrIntegrity)
	}

	for _, c := range file.Concepts {
		name := strings.ToLower(strings.TrimSpace(c.Name))
		if words := splitWords(name); len(words) != 1 || words[0] != name {
			return fmt.Errorf("%w: concept name %q must be a single word", ErrIntegrity, c.Name)
		}
	}

	seen := make(map[string]int, len(file.Documents))
	for i, doc := range file.Documents {
		switch {
		case strings.TrimSpace(doc.ID) == "":
			return fmt.Errorf("%w: document %d has an empty id", ErrIntegrity, i)
		case strings.TrimSpace(doc.Body) == "":
			return fmt.Errorf("%w: document %q has an empty body", ErrIntegrity, doc.ID)
		case strings.TrimSpace(doc.Title) == "":
			return fmt.Errorf("%w: document %q has an empty title", ErrIntegrity, doc.ID)
		case !doc.Category.Valid():
			return fmt.Errorf("%w: document %q has unknown category %q", ErrIntegrity, doc.ID, doc.Category)
		}
		if prev, dup := seen[doc.ID]; dup {
			return fmt.Errorf("%w: duplicate document id %q (entries %d and %d)", ErrIntegrity, doc.ID, prev, i)
		}
		seen[doc.ID] = i
	}
	return nil
}
