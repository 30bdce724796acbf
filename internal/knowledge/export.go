// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// ExportEntry holds a document with its normalized term set for review.
type ExportEntry struct {
	ID       string   `json:"id" yaml:"id"`
	Category string   `json:"category" yaml:"category"`
	Title    string   `json:"title" yaml:"title"`
	Body     string   `json:"body" yaml:"body"`
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Terms    []string `json:"terms" yaml:"terms"`
}

// Export is the top-level export document.
type Export struct {
	Version   string        `json:"version" yaml:"version"`
	Documents []ExportEntry `json:"documents" yaml:"documents"`
}

// ExportYAML writes the corpus and its term sets to w as YAML.
func (b *Base) ExportYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(b.export()); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// ExportJSON writes the corpus and its term sets to w as indented JSON.
func (b *Base) ExportJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(b.export()); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}

func (b *Base) export() Export {
	out := Export{
		Version:   b.version,
		Documents: make([]ExportEntry, len(b.docs)),
	}
	for i := range b.docs {
		d := &b.docs[i]
		out.Documents[i] = ExportEntry{
			ID:       d.ID,
			Category: string(d.Category),
			Title:    d.Title,
			Body:     d.Body,
			Keywords: d.Keywords,
			Terms:    d.Terms(),
		}
	}
	return out
}
