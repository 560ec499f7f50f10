package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ga4gh/anyvar/internal/anyvar"
	"github.com/ga4gh/anyvar/internal/translate"
	"github.com/ga4gh/anyvar/internal/vcf"
	"github.com/ga4gh/anyvar/internal/vcfingest"
)

func newIngestCmd() *cobra.Command {
	var output string
	var workers int

	cmd := &cobra.Command{
		Use:   "ingest <input.vcf>",
		Short: "Register and annotate a VCF file directly, bypassing the async queue",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), args[0], output, workers)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output VCF path (default: stdout)")
	cmd.Flags().IntVar(&workers, "workers", 0, "translation worker pool size (default: async.workers)")

	return cmd
}

func runIngest(ctx context.Context, inputPath, outputPath string, workers int) error {
	logger, err := buildLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := openStore(ctx, viper.GetString("storage.uri"))
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	proxy, err := openDataProxy(viper.GetString("dataproxy.uri"))
	if err != nil {
		return fmt.Errorf("open dataproxy: %w", err)
	}

	tr := translate.NewNormalizingTranslator(proxy)
	av := anyvar.New(tr, proxy, store)
	av.SetLogger(logger)

	pipeline := vcfingest.New(av, proxy, tr)
	pipeline.SetLogger(logger)

	if workers <= 0 {
		workers = viper.GetInt("async.workers")
	}

	parser, err := vcf.NewParser(inputPath)
	if err != nil {
		return fmt.Errorf("open input VCF: %w", err)
	}
	defer parser.Close()

	out := os.Stdout
	if outputPath != "" {
		out, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("create output VCF: %w", err)
		}
		defer out.Close()
	}

	w := vcfingest.NewWriter(out)
	return pipeline.Run(ctx, parser, w, workers)
}
