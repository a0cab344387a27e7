package main

import (
	"context"
	"fmt"
	"os"
	ossignal "os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tagsignal/pkg/auth"
	"tagsignal/pkg/browser"
	"tagsignal/pkg/collector"
	"tagsignal/pkg/config"
	"tagsignal/pkg/logger"
	tsignal "tagsignal/pkg/signal"
	"tagsignal/pkg/storage"
)

var (
	collectTags        []string
	collectMinRecords  int
	collectMaxSessions int
	collectHeadless    bool
	collectStorage     string
	collectAccount     string
)

// collectCmd represents the collect command
var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run a collection pass over the configured topic tags",
	Long: `Run one collection pass: open a session per topic tag (bounded by
max-sessions), authenticate, paginate each tag's live results feed until
its share of the target is met or the feed stops yielding, persist the
deduplicated records and append a signal summary.

Credentials come from stored accounts (see 'tagsignal auth') or the
TAGSIGNAL_USERNAME / TAGSIGNAL_PASSWORD environment variables.`,
	Example: `  # Collect with the configured defaults
  tagsignal collect

  # Collect two tags with a smaller target
  tagsignal collect --tags '#nifty50,#sensex' --min-records 500`,
	Run: runCollect,
}

func init() {
	rootCmd.AddCommand(collectCmd)

	collectCmd.Flags().StringSliceVar(&collectTags, "tags", nil, "topic tags to collect (comma separated)")
	collectCmd.Flags().IntVar(&collectMinRecords, "min-records", 0, "overall record target for the run")
	collectCmd.Flags().IntVar(&collectMaxSessions, "max-sessions", 0, "maximum concurrent browser sessions")
	collectCmd.Flags().BoolVar(&collectHeadless, "headless", true, "run the browser headless")
	collectCmd.Flags().StringVar(&collectStorage, "storage-path", "", "path to the SQLite database")
	collectCmd.Flags().StringVar(&collectAccount, "account", "", "stored account to authenticate with")
}

func runCollect(cmd *cobra.Command, args []string) {
	flags := map[string]interface{}{}
	if len(collectTags) > 0 {
		flags["tags"] = collectTags
	}
	if collectMinRecords > 0 {
		flags["min-records"] = collectMinRecords
	}
	if collectMaxSessions > 0 {
		flags["max-sessions"] = collectMaxSessions
	}
	if cmd.Flags().Changed("headless") {
		flags["headless"] = collectHeadless
	}
	if collectStorage != "" {
		flags["storage-path"] = collectStorage
	}
	if logLevel != "" {
		flags["log-level"] = logLevel
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	log := logger.GetLogger()

	account, err := resolveAccount(collectAccount)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Store credentials with 'tagsignal auth login' or set TAGSIGNAL_USERNAME and TAGSIGNAL_PASSWORD.")
		os.Exit(1)
	}
	if account.UserAgent != "" {
		cfg.Browser.UserAgents = []string{account.UserAgent}
	}

	ctx, stop := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	factory := browser.NewChromeFactory(&cfg.Browser, log)
	creds := browser.Credentials{Username: account.Username, Password: account.Password}
	orch := collector.NewOrchestrator(cfg, factory, creds, log)

	result, runErr := orch.Run(ctx)
	if runErr != nil {
		log.WithError(runErr).Warn("run interrupted, persisting what was collected")
	}
	if result == nil || result.Total() == 0 {
		log.Warn("nothing collected")
		os.Exit(1)
	}

	// Persistence gets its own context so an interrupt does not lose the run
	saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := storage.Open(cfg.Storage.Path, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	inserted, err := store.SaveRecords(saveCtx, result.Records)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := store.SaveRun(saveCtx, &storage.RunSummary{
		Started:  result.Started,
		Finished: result.Finished,
		Records:  result.Total(),
		Target:   cfg.Collect.MinRecords,
		Tags:     cfg.Collect.Tags,
	}); err != nil {
		log.WithError(err).Warn("failed to persist run summary")
	}

	summary := tsignal.FromRecords(result.Records, cfg.Signal.MaxFeatures)

	fmt.Printf("\nCollected %d records (%d new) across %d tags in %s\n",
		result.Total(), inserted, len(cfg.Collect.Tags),
		result.Finished.Sub(result.Started).Round(time.Second))
	for _, st := range result.Stats {
		status := "ok"
		if st.Err != nil {
			status = st.Err.Error()
		}
		fmt.Printf("  %-12s %4d/%4d records, %3d duplicates, %2d attempts, %3d stalls  [%s]\n",
			st.Tag, st.Collected, st.Target, st.Duplicates, st.Attempts, st.Stalls, status)
	}
	printTopTerms(summary, 10)
}

func resolveAccount(username string) (*auth.Account, error) {
	manager, err := auth.NewManager()
	if err != nil {
		return nil, err
	}
	if username != "" {
		return manager.Retrieve(username)
	}
	return manager.RetrieveDefault()
}

// printTopTerms prints the strongest features by mean weight.
func printTopTerms(s *tsignal.Summary, n int) {
	if s.N == 0 || len(s.Terms) == 0 {
		return
	}

	order := make([]int, len(s.Terms))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return s.Mean[order[a]] > s.Mean[order[b]]
	})
	if n > len(order) {
		n = len(order)
	}

	fmt.Printf("\nTop signal terms over %d documents:\n", s.N)
	for _, i := range order[:n] {
		fmt.Printf("  %-24s mean %.4f  std %.4f  ±%.4f\n",
			s.Terms[i], s.Mean[i], s.Std[i], s.CI95[i])
	}
}
