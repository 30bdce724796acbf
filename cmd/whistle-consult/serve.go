// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/whistle-consult/internal/consult"
	"github.com/pdiddy/whistle-consult/internal/gemini"
	"github.com/pdiddy/whistle-consult/internal/knowledge"
	"github.com/pdiddy/whistle-consult/internal/logging"
	"github.com/pdiddy/whistle-consult/internal/server"
	"github.com/pdiddy/whistle-consult/pkg/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the consultation HTTP API",
	Long: `Serve loads the reference corpus, connects the Gemini generator, and
serves the consultation API until interrupted.

The server refuses to start if the corpus fails its integrity checks. It
starts without an API key; chat requests then receive a configuration
warning instead of a reply.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		viper.Set("server.addr", addr)
	}
	cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	kb, err := knowledge.Open(cfg.Knowledge)
	if err != nil {
		return fmt.Errorf("loading knowledge base: %w", err)
	}

	gen := gemini.New(cfg.Gemini, logger.Named("gemini"))
	svc := consult.New(kb, gen, cfg.Knowledge, logger.Named("consult"))
	srv := server.New(cfg.Server, svc, server.Status{
		Model:     gen.Model(),
		APIKeySet: gen.Configured(),
		Documents: kb.Len(),
	}, logger.Named("server"))

	printBanner(cmd.ErrOrStderr(), cfg, kb, gen.Configured())
	logger.Info("knowledge base loaded",
		zap.String("version", kb.Version()), zap.Int("documents", kb.Len()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.Run(ctx)
}

func printBanner(w io.Writer, cfg types.Config, kb *knowledge.Base, keySet bool) {
	bold := color.New(color.Bold).SprintFunc()
	key := color.RedString("not set")
	if keySet {
		key = color.GreenString("set")
	}
	rule := strings.Repeat("=", 50)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, bold("whistle-consult: pre-report consultation API"))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Model:      %s\n", cfg.Gemini.Model)
	fmt.Fprintf(w, "API key:    %s\n", key)
	fmt.Fprintf(w, "Corpus:     %s (%d documents)\n", kb.Version(), kb.Len())
	fmt.Fprintf(w, "Address:    %s\n", cfg.Server.Addr)
	fmt.Fprintln(w, "Request logging: disabled (anonymity)")
	fmt.Fprintln(w, rule)
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}
