package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/afero"

	"github.com/yangdangfu/ftpsync/config"
	"github.com/yangdangfu/ftpsync/journal"
	"github.com/yangdangfu/ftpsync/logger"
	"github.com/yangdangfu/ftpsync/model"
	"github.com/yangdangfu/ftpsync/planner"
	"github.com/yangdangfu/ftpsync/remote"
	"github.com/yangdangfu/ftpsync/syncer"
)

func main() {
	// Define CLI flags
	var (
		// General flags
		dryRun = flag.Bool("dry-run", false, "Print the download plan without fetching anything (env: DRY_RUN)")

		// Logger flags
		logLevel = flag.String("log-level", "", "Log level: silent, error, info, debug, verbose (env: LOG_LEVEL)")

		// Sync flags
		targetsCSV  = flag.String("targets", "", "Path to the CSV table of sync targets (env: SYNC_TARGETS_CSV)")
		mode        = flag.String("mode", "", "Sync mode: auto, override, no_override (env: SYNC_MODE)")
		workerCount = flag.Int("workers", 0, "Number of concurrent target workers (env: SYNC_WORKER_COUNT)")
		timeout     = flag.Int("timeout", 0, "FTP dial timeout in seconds (env: SYNC_TIMEOUT_SECONDS)")
		maxRPS      = flag.Int("max-rps", 0, "Max FTP requests per second per dialer (0 = no limit) (env: SYNC_MAX_RPS)")
		schedule    = flag.String("schedule", "", "Cron expression for recurring sweeps, e.g. '0 0 * * *' (env: SYNC_SCHEDULE)")

		// Journal flags
		journalEnabled = flag.Bool("journal", false, "Record download outcomes in a bbolt journal (env: JOURNAL_ENABLED)")
		journalPath    = flag.String("journal-path", "", "Path to the journal database (env: JOURNAL_BBOLT_PATH)")
		journalBucket  = flag.String("journal-bucket", "", "Journal bucket name (env: JOURNAL_BBOLT_BUCKET)")
		journalNoSync  = flag.Bool("journal-no-sync", false, "Disable fsync for the journal (env: JOURNAL_BBOLT_NO_SYNC)")

		// General flags
		showHelp = flag.Bool("help", false, "Show help message")
	)

	flag.Parse()

	if *showHelp {
		printHelp()
		os.Exit(0)
	}

	// Load base configuration from environment variables
	cfg, err := config.LoadFromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config from environment: %v\n", err)
		os.Exit(1)
	}

	// Override with CLI flags if provided
	applyFlags(cfg, flagValues{
		dryRun:         *dryRun,
		logLevel:       *logLevel,
		targetsCSV:     *targetsCSV,
		mode:           *mode,
		workerCount:    *workerCount,
		timeout:        *timeout,
		maxRPS:         *maxRPS,
		schedule:       *schedule,
		journalEnabled: *journalEnabled,
		journalPath:    *journalPath,
		journalBucket:  *journalBucket,
		journalNoSync:  *journalNoSync,
	})

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration validation error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.NewLogger(&cfg.Logger)
	log.Info("Starting FTP mirror synchronization service")
	log.Debug("Configuration loaded and validated")

	fs := afero.NewOsFs()

	// Load the target table
	targets, err := config.LoadTargets(fs, cfg.Sync.TargetsCSV)
	if err != nil {
		log.Error("Failed to load sync targets: %v", err)
		os.Exit(1)
	}
	if len(targets) == 0 {
		log.Info("No sync targets in %s, nothing to do", cfg.Sync.TargetsCSV)
		return
	}
	log.Info("Loaded %d sync targets from %s", len(targets), cfg.Sync.TargetsCSV)

	syncMode, err := model.ParseMode(cfg.Sync.Mode)
	if err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}

	// Initialize journal
	log.Debug("Initializing journal...")
	jrnl, err := journal.Create(&cfg.Journal)
	if err != nil {
		log.Error("Failed to create journal: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("Closing journal...")
		if err := jrnl.Close(); err != nil {
			log.Error("Error closing journal: %v", err)
		}
	}()

	dialer := remote.NewFTPDialer(cfg.Sync.TimeoutSeconds, cfg.Sync.MaxRPS)
	executor := syncer.NewExecutor(dialer, fs, jrnl, log)
	pool := syncer.NewPool(executor, cfg.Sync.WorkerCount, log)

	// Set up signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sweep := func() error {
		if cfg.DryRun {
			return previewSweep(ctx, dialer, fs, targets, syncMode, log)
		}
		results, err := pool.RunAll(ctx, targets, syncMode)
		if err != nil {
			return err
		}
		failed := 0
		for _, result := range results {
			if result.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d targets failed", failed, len(results))
		}
		return nil
	}

	if cfg.Sync.Schedule == "" {
		// One-shot sweep
		errChan := make(chan error, 1)
		go func() {
			log.Info("Starting synchronization sweep...")
			errChan <- sweep()
		}()

		select {
		case err := <-errChan:
			if err != nil {
				log.Error("Synchronization failed: %v", err)
				os.Exit(1)
			}
			log.Info("Synchronization completed successfully")
		case sig := <-sigChan:
			log.Info("Received signal %v, aborting...", sig)
			cancel()
			<-errChan
			os.Exit(1)
		}
		return
	}

	// Scheduled sweeps
	c := cron.New()
	_, err = c.AddFunc(cfg.Sync.Schedule, func() {
		log.Info("Scheduled sync start...")
		if err := sweep(); err != nil {
			log.Error("Scheduled sync failed: %v", err)
			return
		}
		log.Info("Scheduled sync complete.")
	})
	if err != nil {
		log.Error("Invalid schedule %q: %v", cfg.Sync.Schedule, err)
		os.Exit(1)
	}
	c.Start()
	log.Info("Scheduler running with %q, waiting for the next sweep...", cfg.Sync.Schedule)

	sig := <-sigChan
	log.Info("Received signal %v, initiating graceful shutdown...", sig)
	cancel()
	<-c.Stop().Done()
	log.Info("Shutdown completed")
}

// previewSweep prints the per-target download plan without touching the
// local tree. The plan can disagree with a later real run when the
// remote changes in between.
func previewSweep(ctx context.Context, dialer remote.Dialer, fs afero.Fs, targets []config.Target, mode model.SyncMode, log logger.Logger) error {
	var firstErr error
	for _, target := range targets {
		tlog := log.WithFields(map[string]interface{}{"host": target.Host, "dir": target.RemoteDir})

		planned, err := planner.PlanDecisions(ctx, dialer, fs, target, mode)
		if err != nil {
			tlog.Error("Planning failed: %v", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		downloads := 0
		for _, file := range planned {
			if file.Decision.Kind == model.DecisionDownload {
				downloads++
				tlog.Info("Would download %s", file.Name)
			} else {
				tlog.Debug("Would skip %s (%s)", file.Name, file.Decision.Reason)
			}
		}
		tlog.Info("Dry-run: %d of %d candidates would be downloaded", downloads, len(planned))
	}
	return firstErr
}

type flagValues struct {
	dryRun         bool
	logLevel       string
	targetsCSV     string
	mode           string
	workerCount    int
	timeout        int
	maxRPS         int
	schedule       string
	journalEnabled bool
	journalPath    string
	journalBucket  string
	journalNoSync  bool
}

func applyFlags(cfg *config.AppConfig, flags flagValues) {
	// General
	if flag.Lookup("dry-run").Value.String() == "true" {
		cfg.DryRun = flags.dryRun
	}

	// Logger
	if flags.logLevel != "" {
		cfg.Logger.Level = config.LogLevel(flags.logLevel)
	}

	// Sync
	if flags.targetsCSV != "" {
		cfg.Sync.TargetsCSV = flags.targetsCSV
	}
	if flags.mode != "" {
		cfg.Sync.Mode = flags.mode
	}
	if flags.workerCount > 0 {
		cfg.Sync.WorkerCount = flags.workerCount
	}
	if flags.timeout > 0 {
		cfg.Sync.TimeoutSeconds = flags.timeout
	}
	if flags.maxRPS > 0 {
		cfg.Sync.MaxRPS = flags.maxRPS
	}
	if flags.schedule != "" {
		cfg.Sync.Schedule = flags.schedule
	}

	// Journal
	if flag.Lookup("journal").Value.String() == "true" {
		cfg.Journal.Enabled = flags.journalEnabled
	}
	if flags.journalPath != "" {
		cfg.Journal.Bbolt.Path = flags.journalPath
	}
	if flags.journalBucket != "" {
		cfg.Journal.Bbolt.Bucket = flags.journalBucket
	}
	if flag.Lookup("journal-no-sync").Value.String() == "true" {
		cfg.Journal.Bbolt.NoSync = flags.journalNoSync
	}
}

func printHelp() {
	fmt.Println("FTP Mirror Synchronization Tool")
	fmt.Println()
	fmt.Println("Usage: ftpsync [options]")
	fmt.Println()
	fmt.Println("Downloads files matching a pattern from remote FTP directories into")
	fmt.Println("local folders, skipping files that are already in sync. Targets are")
	fmt.Println("read from a CSV table with the columns:")
	fmt.Println("  host,user,passwd,cwd,local_root,file_reg")
	fmt.Println()
	fmt.Println("Configuration can be provided via environment variables or command-line flags.")
	fmt.Println("Command-line flags take precedence over environment variables.")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Example:")
	fmt.Println("  ftpsync --targets=ncep.csv --mode=auto --workers=12")
	fmt.Println("  ftpsync --targets=ncep.csv --dry-run")
	fmt.Println("  ftpsync --targets=ncep.csv --schedule='0 0 * * *'")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DRY_RUN                - Print the plan without downloading (true/false)")
	fmt.Println("  LOG_LEVEL              - Log level (silent, error, info, debug, verbose)")
	fmt.Println("  SYNC_TARGETS_CSV       - Path to the CSV table of sync targets")
	fmt.Println("  SYNC_MODE              - Sync mode (auto, override, no_override)")
	fmt.Println("  SYNC_WORKER_COUNT      - Number of concurrent target workers")
	fmt.Println("  SYNC_TIMEOUT_SECONDS   - FTP dial timeout in seconds")
	fmt.Println("  SYNC_MAX_RPS           - Max FTP requests per second (0 = no limit)")
	fmt.Println("  SYNC_SCHEDULE          - Cron expression for recurring sweeps")
	fmt.Println("  JOURNAL_ENABLED        - Record download outcomes (true/false)")
	fmt.Println("  JOURNAL_BBOLT_PATH     - Path to the journal database")
	fmt.Println("  JOURNAL_BBOLT_BUCKET   - Journal bucket name")
	fmt.Println("  JOURNAL_BBOLT_NO_SYNC  - Disable fsync for the journal (true/false)")
}
