package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tagsignal/pkg/config"
	"tagsignal/pkg/logger"
	tsignal "tagsignal/pkg/signal"
	"tagsignal/pkg/storage"
)

var signalJSON bool

// signalCmd represents the signal command
var signalCmd = &cobra.Command{
	Use:   "signal",
	Short: "Compute the signal summary over the stored corpus",
	Long: `Recompute the TF-IDF signal summary over every record body in the
database, independent of any single collection run.`,
	Run: runSignal,
}

func init() {
	rootCmd.AddCommand(signalCmd)
	signalCmd.Flags().BoolVar(&signalJSON, "json", false, "emit the full summary as JSON")
}

func runSignal(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(cfg.Storage.Path, logger.GetLogger())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	texts, err := store.Texts(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(texts) == 0 {
		fmt.Println("No stored records; run 'tagsignal collect' first.")
		return
	}

	summary := tsignal.FromTexts(texts, cfg.Signal.MaxFeatures)

	if signalJSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	printTopTerms(summary, 25)
}
