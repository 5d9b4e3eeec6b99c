package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/Sriram-PR/site-snapshot/pkg/config"
	"github.com/Sriram-PR/site-snapshot/pkg/crawler"
	"github.com/Sriram-PR/site-snapshot/pkg/fetch"
	sslog "github.com/Sriram-PR/site-snapshot/pkg/log"
	"github.com/Sriram-PR/site-snapshot/pkg/scope"
	"github.com/Sriram-PR/site-snapshot/pkg/storage"
	"github.com/Sriram-PR/site-snapshot/pkg/utils"
)

const version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run parses flags, crawls and saves. Returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("site-snapshot", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "Path to a YAML config overlay (compiled-in defaults when empty)")
	envFile := fs.String("env", ".env", "Optional dotenv file with SITE_SNAPSHOT_* overrides")
	logLevel := fs.String("loglevel", "info", "Log level (debug, info, warn, error)")
	validateOnly := fs.Bool("validate", false, "Validate configuration, print the effective settings as YAML and exit")
	showVersion := fs.Bool("version", false, "Show version info")

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: site-snapshot [options]\n\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  site-snapshot\n")
		fmt.Fprintf(stderr, "  site-snapshot -config shop.yaml -loglevel debug\n")
		fmt.Fprintf(stderr, "  SITE_SNAPSHOT_MAX_PAGES=20 site-snapshot\n")
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 1
	}

	if *showVersion {
		fmt.Fprintf(stdout, "site-snapshot %s\n", version)
		return 0
	}

	// --- Logger Setup ---
	logger, err := sslog.New(*logLevel, stderr)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using default 'info'. Error: %v", *logLevel, err)
	}

	// --- Load Configuration ---
	cfg, err := loadConfig(*configFile)
	if err != nil {
		logger.Errorf("Config error: %v", err)
		return 1
	}
	lookup, err := config.EnvLookup(*envFile)
	if err != nil {
		logger.Errorf("Config error: %v", err)
		return 1
	}
	applied, err := cfg.ApplyEnv(lookup)
	if err != nil {
		logger.Errorf("Config error: %v", err)
		return 1
	}
	if len(applied) > 0 {
		logger.Infof("Environment overrides applied: %s", strings.Join(applied, ", "))
	}
	warnings, err := cfg.Validate()
	for _, w := range warnings {
		logger.Warn(w)
	}
	if err != nil {
		logger.Errorf("Invalid configuration: %v", err)
		return 1
	}

	policy, err := scope.NewRuleSet(cfg.TargetHost, cfg.ScopeRules)
	if err != nil {
		logger.Errorf("Invalid scope rules: %v", err)
		return 1
	}

	if *validateOnly {
		effective, err := yaml.Marshal(&cfg)
		if err != nil {
			logger.Errorf("Could not marshal effective configuration: %v", err)
			return 1
		}
		stdout.Write(effective)
		fmt.Fprintf(stdout, "\nOK: %s, %d start URLs, rules %v\n", cfg.TargetHost, len(cfg.StartURLs), policy.Rules())
		return 0
	}

	return executeCrawl(ctx, &cfg, policy, logger, stdout)
}

// loadConfig returns the compiled-in defaults, overlaid with path when given
func loadConfig(path string) (config.AppConfig, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// newClient builds the crawl HTTP client. Tests swap it for one that trusts a local TLS server.
var newClient = fetch.NewClient

// executeCrawl wires the components, runs one session and saves its output.
// The run summary is printed to stdout as YAML.
func executeCrawl(ctx context.Context, cfg *config.AppConfig, policy *scope.RuleSet, logger *logrus.Logger, stdout io.Writer) int {
	log := logrus.NewEntry(logger)

	client := newClient(cfg.HTTPClientSettings, log)
	fetcher := fetch.NewFetcher(client, cfg.TargetHost, cfg.UserAgent, cfg.MaxPageSizeBytes, log)
	pacer := fetch.NewPacer(cfg.DelayFloor, cfg.DelaySpread, log)
	store := storage.NewMemoryStore()

	var opts []crawler.Option
	if cfg.RespectRobots {
		opts = append(opts, crawler.WithRobots(fetch.NewRobotsHandler(client, cfg.UserAgent, log)))
	}

	session, err := crawler.NewSession(cfg, fetcher, pacer, policy, store, log, opts...)
	if err != nil {
		log.Errorf("Failed to create crawl session: %v", err)
		return 1
	}

	result, err := session.Run(ctx)
	if err != nil {
		log.WithField("category", utils.CategorizeError(err)).Errorf("Crawl aborted, no output written: %v", err)
		return 1
	}

	om := crawler.NewOutputManager(cfg, log.WithField("run_id", session.RunID()))
	if err := om.Save(result); err != nil {
		log.Errorf("Failed to save output: %v", err)
		return 1
	}

	log.Infof("Total politeness delay: %v", pacer.Total())
	summary, err := yaml.Marshal(result.Stats)
	if err != nil {
		log.Warnf("Could not marshal run summary: %v", err)
		return 0
	}
	stdout.Write(summary)
	return 0
}
