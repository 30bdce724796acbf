// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/whistle-consult/internal/knowledge"
	"github.com/pdiddy/whistle-consult/pkg/types"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Inspect the reference corpus (search, validate, export)",
	Long: `Knowledge works with the corpus of statutes, internal regulations, and
precedent cases that grounds every consultation. By default the corpus built
into the binary is used; --corpus points at an operator-supplied YAML file.`,
}

// --- search subcommand ---

var knowledgeSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Run the retriever against a query",
	Long: `Search ranks corpus documents against the query exactly as the
consultation service does and prints the reference text the model would see.
With --json it prints the ranked documents and their scores instead.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runKnowledgeSearch,
}

func runKnowledgeSearch(cmd *cobra.Command, args []string) error {
	kb, err := openKnowledge(cmd)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	topK, _ := cmd.Flags().GetInt("top-k")
	out := cmd.OutOrStdout()

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		results := kb.Retrieve(query, topK)
		if results == nil {
			results = []knowledge.Result{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	text := kb.Search(query, topK)
	if text == "" {
		fmt.Fprintln(out, "No results found.")
		return nil
	}
	fmt.Fprintln(out, text)
	return nil
}

// --- validate subcommand ---

var knowledgeValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check corpus integrity and print document counts",
	Long: `Validate loads the corpus with the same checks the server applies at
startup (unique ids, non-empty bodies, known categories) and prints the
number of documents per category. It exits non-zero on any failure.`,
	Args: cobra.NoArgs,
	RunE: runKnowledgeValidate,
}

func runKnowledgeValidate(cmd *cobra.Command, args []string) error {
	kb, err := openKnowledge(cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	counts := kb.CountByCategory()
	fmt.Fprintf(out, "Corpus version %s: %d documents\n", kb.Version(), kb.Len())
	for _, c := range types.Categories {
		fmt.Fprintf(out, "  %-20s %-8s %d\n", c, c.Label(), counts[c])
	}
	return nil
}

// --- export subcommand ---

var knowledgeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the corpus with normalized keyword sets",
	Long: `Export writes every document together with its normalized term set, as
YAML, JSON, or a SQLite index for offline inspection. YAML and JSON go to
stdout unless --out is given; sqlite requires --out.`,
	Args: cobra.NoArgs,
	RunE: runKnowledgeExport,
}

func runKnowledgeExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	outPath, _ := cmd.Flags().GetString("out")

	kb, err := openKnowledge(cmd)
	if err != nil {
		return err
	}

	if format == "sqlite" {
		if outPath == "" {
			return fmt.Errorf("--out is required for sqlite export")
		}
		if err := kb.WriteIndex(context.Background(), outPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d documents to %s\n", kb.Len(), outPath)
		return nil
	}

	var w io.Writer = cmd.OutOrStdout()
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outPath, err)
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "yaml", "":
		err = kb.ExportYAML(w)
	case "json":
		err = kb.ExportJSON(w)
	default:
		return fmt.Errorf("unsupported format %q: use yaml, json, or sqlite", format)
	}
	if err != nil {
		return err
	}
	if outPath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d documents to %s\n", kb.Len(), outPath)
	}
	return nil
}

// --- shared helpers ---

// openKnowledge loads the corpus named by --corpus, falling back to the
// configured corpus file and then the built-in corpus.
func openKnowledge(cmd *cobra.Command) (*knowledge.Base, error) {
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return nil, err
	}
	if corpus, _ := cmd.Flags().GetString("corpus"); corpus != "" {
		cfg.Knowledge.CorpusFile = corpus
	}
	return knowledge.Open(cfg.Knowledge)
}

func init() {
	knowledgeCmd.PersistentFlags().String("corpus", "", "corpus YAML file (default: built-in corpus)")

	knowledgeSearchCmd.Flags().Int("top-k", 3, "maximum number of results")
	knowledgeSearchCmd.Flags().Bool("json", false, "output ranked documents as JSON")

	knowledgeExportCmd.Flags().String("format", "yaml", "export format: yaml, json, or sqlite")
	knowledgeExportCmd.Flags().String("out", "", "output file (required for sqlite)")

	knowledgeCmd.AddCommand(knowledgeSearchCmd)
	knowledgeCmd.AddCommand(knowledgeValidateCmd)
	knowledgeCmd.AddCommand(knowledgeExportCmd)

	rootCmd.AddCommand(knowledgeCmd)
}
