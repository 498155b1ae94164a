// Package main is the erabu CLI entry point.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/erabu/internal/category"
	"github.com/hyperjump/erabu/internal/config"
	"github.com/hyperjump/erabu/internal/curation"
	"github.com/hyperjump/erabu/internal/discovery"
	"github.com/hyperjump/erabu/internal/events"
	"github.com/hyperjump/erabu/internal/filter"
	"github.com/hyperjump/erabu/internal/relevance"
	"github.com/hyperjump/erabu/internal/searchindex"
	"github.com/hyperjump/erabu/internal/server"
	"github.com/hyperjump/erabu/internal/storage"
	"github.com/hyperjump/erabu/internal/store"
	"github.com/hyperjump/erabu/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/erabu/config.yaml"

// loadConfig loads config from path. When path is the default, a
// config.yaml in the current directory takes precedence so running from
// the project dir picks up the local config.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "scan":
		runScan()
	case "list":
		runList()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("erabu version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	// Persist every store mutation and keep the search index current.
	components.Bus.Subscribe(events.KindStateChanged, func(e events.Event) {
		if e.(events.StateChanged).Path != store.FilesPath {
			return
		}
		files := components.Store.Files()
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := components.Storage.SaveFiles(ctx, files); err != nil {
			logger.Warn("persisting files failed", zap.Error(err))
		}
		if err := components.Index.Rebuild(files); err != nil {
			logger.Warn("index rebuild failed", zap.Error(err))
		}
	})

	// Seed the store from the last persisted state, then rescan.
	if persisted, err := components.Storage.LoadFiles(context.Background()); err != nil {
		logger.Warn("loading persisted files failed", zap.Error(err))
	} else if len(persisted) > 0 {
		components.Store.Set(persisted)
	}

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()

	if _, err := components.Scanner.Scan(watchCtx); err != nil {
		logger.Warn("initial scan failed", zap.Error(err))
	}
	if err := components.Watcher.Start(watchCtx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	defer components.Watcher.Stop()

	srv := server.NewServer(
		components.Controller,
		components.Categories,
		components.Store,
		components.Storage,
		components.Index,
		&cfg.Server,
		logger,
	).WithRescan(func(ctx context.Context) (int, error) {
		files, err := components.Scanner.Scan(ctx)
		return len(files), err
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runScan() {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, zap.NewNop())
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	files, err := components.Scanner.Scan(context.Background())
	if err != nil {
		fmt.Printf("Scan failed: %v\n", err)
		os.Exit(1)
	}
	if err := components.Storage.SaveFiles(context.Background(), files); err != nil {
		fmt.Printf("Persisting scan failed: %v\n", err)
		os.Exit(1)
	}
	if err := components.Index.Rebuild(files); err != nil {
		fmt.Printf("Index rebuild failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Discovered %d files across %d roots\n", len(files), len(cfg.Discover.Roots))
}

func runList() {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	relevanceBand := fs.String("relevance", "all", "relevance band: all, high, medium, low")
	status := fs.String("status", "all", "status: all, pending, approved, archived")
	search := fs.String("q", "", "substring search over name, path, and content")
	types := fs.String("types", "", "comma-separated extensions")
	sortBy := fs.String("sort", "name", "sort field: name, size, modified, relevance")
	desc := fs.Bool("desc", false, "sort descending")
	pageNum := fs.Int("page", 1, "page number")
	pageSize := fs.Int("page-size", 25, "files per page")
	_ = fs.Parse(os.Args[2:])

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, zap.NewNop())
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	files, err := components.Storage.LoadFiles(context.Background())
	if err != nil {
		fmt.Printf("Loading files failed: %v\n", err)
		os.Exit(1)
	}
	components.Store.Set(files)

	crit := filter.DefaultCriteria()
	crit.Relevance = filter.RelevanceBucket(*relevanceBand)
	crit.Status = filter.StatusBucket(*status)
	crit.Search = *search
	if *types != "" {
		crit.Types = strings.Split(*types, ",")
	}
	components.Controller.SetCriteria(crit)
	components.Controller.SetSort(filter.Sort{Field: filter.SortField(*sortBy), Desc: *desc})
	components.Controller.SetPageSize(*pageSize)
	components.Controller.SetPage(*pageNum)

	p := components.Controller.View()
	if p.TotalItems == 0 {
		fmt.Println("No files match. Run 'erabu scan' first or relax the filters.")
		return
	}
	fmt.Printf("%-40s %-9s %8s %6s  %s\n", "NAME", "STATUS", "SIZE", "SCORE", "MODIFIED")
	for i := range p.Files {
		f := &p.Files[i]
		modified := ""
		if !f.LastModified.IsZero() {
			modified = f.LastModified.Format("2006-01-02")
		}
		fmt.Printf("%-40s %-9s %8d %6d  %s\n",
			utils.Truncate(f.Name, 40),
			f.Status(),
			f.Size,
			components.Scorer.DisplayScore(f),
			modified,
		)
	}
	fmt.Printf("\nPage %d of %d (%d files)\n", p.Number, p.TotalPages, p.TotalItems)
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	components, err := initializeComponents(cfg, zap.NewNop())
	if err != nil {
		fmt.Printf("Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer components.Close()

	ctx := context.Background()
	stored, err := components.Storage.CountFiles(ctx)
	if err != nil {
		fmt.Printf("Counting files failed: %v\n", err)
		os.Exit(1)
	}
	indexed, _ := components.Index.DocCount()
	cats, _ := components.Categories.Categories(ctx)

	fmt.Printf("erabu status\n")
	fmt.Printf("  config:     %s\n", resolvedConfigPath)
	fmt.Printf("  database:   %s\n", cfg.Storage.DatabasePath)
	fmt.Printf("  index:      %s\n", cfg.Storage.BleveIndexPath)
	fmt.Printf("  roots:      %s\n", strings.Join(cfg.Discover.Roots, ", "))
	fmt.Printf("  files:      %d stored, %d indexed\n", stored, indexed)
	fmt.Printf("  categories: %d\n", len(cats))
}

// Components holds initialized services.
type Components struct {
	Bus        *events.Bus
	Store      *store.Store
	Storage    storage.Storage
	Index      *searchindex.Index
	Scorer     *relevance.Scorer
	Engine     *filter.Engine
	Controller *curation.Controller
	Categories *category.Manager
	Scanner    *discovery.Scanner
	Watcher    *discovery.Watcher
}

func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
	if c.Index != nil {
		_ = c.Index.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	stg, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	idx, err := searchindex.New(cfg.Storage.BleveIndexPath)
	if err != nil {
		_ = stg.Close()
		return nil, fmt.Errorf("failed to initialize search index: %w", err)
	}

	bus := events.NewBus()
	st := store.New(bus)
	scorer := relevance.NewScorer(&cfg.Relevance)
	engine := filter.NewEngine(scorer)

	controller := curation.NewController(st, bus, engine, scorer,
		curation.WithLogger(logger),
		curation.WithPageSize(cfg.List.PageSize),
		curation.WithAnalyzeDelay(time.Duration(cfg.List.AnalyzeDelayMS)*time.Millisecond),
	)
	categories := category.NewManager(stg, st, bus, logger)

	scanner := discovery.NewScanner(
		cfg.Discover.Roots,
		cfg.Discover.Extensions,
		cfg.Discover.RecursiveOrDefault(),
		bus,
		discovery.WithLogger(logger),
		discovery.WithPreviewChars(cfg.Discover.PreviewMaxChars),
	)
	watcher := discovery.NewWatcher(scanner)

	return &Components{
		Bus:        bus,
		Store:      st,
		Storage:    stg,
		Index:      idx,
		Scorer:     scorer,
		Engine:     engine,
		Controller: controller,
		Categories: categories,
		Scanner:    scanner,
		Watcher:    watcher,
	}, nil
}

func printUsage() {
	fmt.Println(`erabu - curate a personal knowledge file collection

Usage:
  erabu server [flags]    Start the HTTP server
  erabu scan [flags]      Discover files under the configured roots
  erabu list [flags]      List curated files from the local database
  erabu status [flags]    Show storage and index status
  erabu version           Show version
  erabu help              Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/erabu/config.yaml)
  --debug            Enable debug logging

List Flags:
  --config string      Config file path
  --relevance string   Relevance band: all, high, medium, low (default: all)
  --status string      Status: all, pending, approved, archived (default: all)
  --q string           Substring search over name, path, and content
  --types string       Comma-separated extensions (e.g. md,pdf)
  --sort string        Sort field: name, size, modified, relevance (default: name)
  --desc               Sort descending
  --page int           Page number (default: 1)
  --page-size int      Files per page (default: 25)

Examples:
  erabu server
  erabu scan
  erabu list --relevance high --sort relevance --desc
  erabu list --status pending --types md,pdf
  erabu status`)
}
