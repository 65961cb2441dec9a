// Command duelserver runs the duel HTTP API, the match relay and the lobby
// event feed.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ramonehamilton/spellduel/internal/api"
	"github.com/ramonehamilton/spellduel/internal/cards"
	"github.com/ramonehamilton/spellduel/internal/config"
	"github.com/ramonehamilton/spellduel/internal/events"
	"github.com/ramonehamilton/spellduel/internal/game"
	"github.com/ramonehamilton/spellduel/internal/match"
	"github.com/ramonehamilton/spellduel/internal/metrics"
	"github.com/ramonehamilton/spellduel/internal/relay"
	"github.com/ramonehamilton/spellduel/internal/storage"
	"github.com/ramonehamilton/spellduel/internal/version"
)

var (
	configPath  = flag.String("config", "spellduel.toml", "Path to the TOML config file")
	showVersion = flag.Bool("version", false, "Print the version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetVersion())
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	level := slog.LevelInfo
	if cfg.App.DebugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	fmt.Printf("spellduel server %s\n", version.GetVersion())
	fmt.Printf("Database: %s\n", cfg.Database.Path)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		log.Fatalf("Failed to create database directory: %v", err)
	}
	dbConfig := storage.DefaultConfig(cfg.Database.Path)
	dbConfig.AutoMigrate = true
	if dbConfig.BusyTimeout, err = cfg.GetBusyTimeout(); err != nil {
		log.Fatalf("Invalid busy timeout: %v", err)
	}
	db, err := storage.Open(dbConfig)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()
	store := storage.NewService(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := events.NewEventDispatcher()
	dispatcher.Register(events.NewLoggingObserver(cfg.App.DebugMode))
	relayMetrics := metrics.NewRelayMetrics()
	dispatcher.Register(relayMetrics.NewObserver())

	if cfg.Catalog.File != "" {
		syncCatalog := func(list []game.Card, source string) {
			saved, err := store.SaveCards(ctx, list)
			if err != nil {
				logger.Error("catalog sync failed", "file", cfg.Catalog.File, "error", err)
				return
			}
			dispatcher.Dispatch(events.NewTypedEvent(events.CatalogUpdated,
				events.CatalogUpdatedEvent{Cards: len(saved), Source: source}, ctx))
		}

		list, err := cards.LoadCards(cfg.Catalog.File)
		if err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
		syncCatalog(list, "file")

		if cfg.Catalog.Watch {
			watcher, err := cards.NewWatcher(cards.WatcherConfig{
				Path:     cfg.Catalog.File,
				OnReload: func(list []game.Card) { syncCatalog(list, "watcher") },
				Logger:   logger,
			})
			if err != nil {
				log.Fatalf("Failed to watch catalog: %v", err)
			}
			go func() {
				if err := watcher.Run(ctx); err != nil {
					logger.Error("catalog watcher stopped", "error", err)
				}
			}()
		}
	}

	var snapshots *storage.SnapshotScheduler
	if cfg.Database.SnapshotDir != "" {
		interval, err := cfg.GetSnapshotInterval()
		if err != nil {
			log.Fatalf("Invalid snapshot interval: %v", err)
		}
		snapshots, err = storage.NewSnapshotScheduler(db, storage.SchedulerConfig{
			Dir:      cfg.Database.SnapshotDir,
			Interval: interval,
			Keep:     cfg.Database.SnapshotKeep,
			Logger:   logger,
		})
		if err != nil {
			log.Fatalf("Failed to configure snapshots: %v", err)
		}
		go func() {
			if err := snapshots.Run(ctx); err != nil {
				logger.Error("snapshot scheduler stopped", "error", err)
			}
		}()
	}

	matches := match.NewService(match.Config{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     logger.With("component", "match"),
	})

	rl := relay.New(relay.Config{
		MessagesPerSecond: cfg.Relay.MessagesPerSecond,
		Burst:             cfg.Relay.Burst,
		MaxMessageBytes:   cfg.Relay.MaxMessageBytes,
		Admit:             matches.Admit,
		OnJoin:            matches.PeerJoined,
		OnFinish:          matches.Finish,
		Dispatcher:        dispatcher,
		Metrics:           relayMetrics,
	})

	timeout, err := cfg.GetRequestTimeout()
	if err != nil {
		log.Fatalf("Invalid request timeout: %v", err)
	}
	services := api.Services{
		Cards:      store,
		Decks:      store,
		Matches:    matches,
		Relay:      rl,
		Metrics:    relayMetrics,
		Dispatcher: dispatcher,
	}
	if snapshots != nil {
		services.Snapshots = snapshots
	}
	server := api.NewServer(&api.Config{
		Port:           cfg.Server.Port,
		RequestTimeout: timeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, services)
	dispatcher.Register(server.NewWebSocketObserver())

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	fmt.Printf("API server running at http://localhost:%d\n", cfg.Server.Port)
	fmt.Println("Press Ctrl+C to stop")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	fmt.Println("Server stopped.")
}
