// Command collector runs the data-collection agent: it scrapes the
// configured pages on a timer, relays snapshots to the backend through
// the sync coordinator, and serves the message API locally over HTTP
// and optionally MCP stdio.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/Nikhileshpal145/creator-os-collector/config"
	"github.com/Nikhileshpal145/creator-os-collector/credstore"
	"github.com/Nikhileshpal145/creator-os-collector/dbopen"
	"github.com/Nikhileshpal145/creator-os-collector/extract"
	"github.com/Nikhileshpal145/creator-os-collector/history"
	"github.com/Nikhileshpal145/creator-os-collector/observability"
	"github.com/Nikhileshpal145/creator-os-collector/page"
	"github.com/Nikhileshpal145/creator-os-collector/relay"
	"github.com/Nikhileshpal145/creator-os-collector/router"
)

const version = "1.0.0"

// mutationDebounce is how long the watched page's DOM must stay quiet
// before a mutation burst triggers an off-cycle re-scrape.
const mutationDebounce = 2 * time.Second

func main() {
	configPath := flag.String("config", "collector.yaml", "path to configuration file")
	logLevel := flag.String("log-level", "", "override configured log level")
	flag.Parse()

	cfg, err := config.LoadFile(*configPath)
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	var lvl slog.Level
	switch cfg.Log.Level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Agent database: history, credentials, heartbeats, metrics.
	db, err := dbopen.Open(cfg.Storage.DBPath, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("open agent db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := observability.Init(db); err != nil {
		slog.Error("init observability schema", "error", err)
		os.Exit(1)
	}

	creds, err := credstore.NewSQLite(db, cfg.Storage.KeyPath)
	if err != nil {
		slog.Error("init credential store", "error", err)
		os.Exit(1)
	}

	hist, err := history.New(db)
	if err != nil {
		slog.Error("init history", "error", err)
		os.Exit(1)
	}

	// Startup retention pass.
	if n, err := observability.CleanupHeartbeats(ctx, db, cfg.Storage.RetentionDays); err == nil && n > 0 {
		slog.Info("cleaned old heartbeats", "removed", n)
	}
	if n, err := observability.CleanupSyncEvents(ctx, db, cfg.Storage.RetentionDays); err == nil && n > 0 {
		slog.Info("cleaned old sync events", "removed", n)
	}

	coord := relay.New(relay.Config{
		BaseURL:       cfg.Backend.BaseURL,
		Freshness:     cfg.Backend.Freshness(),
		HealthTimeout: cfg.Backend.HealthTimeout(),
		SendTimeout:   cfg.Backend.SendTimeout(),
		PollInterval:  cfg.Backend.PollInterval(),
		Logger:        logger,
	}, creds)
	go coord.Run(ctx)

	heartbeat := observability.NewHeartbeatWriter(db, "collector", 15*time.Second)
	heartbeat.Start(ctx)
	defer heartbeat.Stop()

	metrics := observability.NewMetricsManager(db, 100, 5*time.Second)
	defer metrics.Close()
	if _, err := metrics.Cleanup(ctx, cfg.Storage.RetentionDays); err != nil {
		slog.Warn("metrics cleanup", "error", err)
	}

	events := observability.NewEventLogger(db)

	extractor := extract.New(extract.Config{
		MaxTextLen: cfg.Scrape.MaxTextLen,
		Markdown:   cfg.Scrape.Markdown,
		Logger:     logger,
	})

	sources, capturer := buildSources(cfg, logger)

	deps := router.Deps{
		Coordinator: coord,
		Extractor:   extractor,
		Creds:       creds,
		History:     hist,
		Capturer:    capturer,
		Logger:      logger,
	}
	if len(sources) > 0 {
		deps.Source = sources[0]
	}
	rt := router.NewAgentRouter(deps)

	if cfg.Server.MCP {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "collector",
			Version: version,
		}, nil)
		router.RegisterMCPTools(mcpSrv, rt)
		go func() {
			if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				slog.Error("mcp server", "error", err)
			}
		}()
	}

	if len(sources) > 0 {
		go scrapeLoop(ctx, cfg, sources, extractor, coord, hist, events, metrics)
	} else {
		slog.Info("no pages configured, scrape loop disabled")
	}

	srv := &http.Server{
		Addr:              cfg.Server.Listen,
		Handler:           router.NewHTTPHandler(rt, logger),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Server.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	closeSources(sources)
	slog.Info("server stopped")
}

// buildSources creates one page source per configured URL. With the
// browser source, the first page's browser also provides screenshots.
func buildSources(cfg *config.Config, logger *slog.Logger) ([]page.Source, router.Capturer) {
	var sources []page.Source
	var capturer router.Capturer

	for _, url := range cfg.Scrape.Pages {
		switch cfg.Scrape.Source {
		case "browser":
			opts := []page.BrowserOption{page.WithBrowserLogger(logger)}
			if cfg.Scrape.Headful {
				opts = append(opts, page.WithHeadful())
			}
			src := page.NewBrowserSource(url, opts...)
			if capturer == nil {
				capturer = src
			}
			sources = append(sources, src)
		default:
			opts := []page.HTTPOption{page.WithHTTPLogger(logger)}
			if cfg.Scrape.UserAgent != "" {
				opts = append(opts, page.WithUserAgent(cfg.Scrape.UserAgent))
			}
			sources = append(sources, page.NewHTTPSource(url, opts...))
		}
	}
	return sources, capturer
}

func closeSources(sources []page.Source) {
	for _, s := range sources {
		if c, ok := s.(*page.BrowserSource); ok {
			c.Close()
		}
	}
}

// scrapeLoop builds and relays a snapshot of every configured page on
// a fixed interval, and off-cycle whenever the watched page's DOM
// settles after a mutation burst. Delivery outcomes land in the sync
// event log; delivered snapshots are recorded in history and their
// detected metrics in the local timeseries.
func scrapeLoop(ctx context.Context, cfg *config.Config, sources []page.Source,
	extractor *extract.Extractor, coord *relay.Coordinator, hist *history.Store,
	events *observability.EventLogger, metrics *observability.MetricsManager) {

	// The browser source watches its page for DOM mutations; content
	// dedup in the coordinator absorbs triggers that change nothing.
	// A nil channel just never fires.
	var mutations <-chan struct{}
	if bs, ok := sources[0].(*page.BrowserSource); ok {
		ch, err := bs.Watch(ctx, mutationDebounce)
		if err != nil {
			slog.Warn("mutation watch unavailable, interval only", "error", err)
		} else {
			mutations = ch
		}
	}

	scrapeAll := func() {
		for _, src := range sources {
			snap := extractor.BuildSnapshot(ctx, src)
			out := coord.SyncSnapshot(ctx, snap)

			events.LogSync(ctx, observability.SyncEvent{
				URL:      snap.URL,
				Endpoint: relay.EndpointSyncPage,
				Status:   string(out.Status),
				Error:    out.Err,
			})

			switch out.Status {
			case relay.StatusDelivered:
				if err := hist.Record(ctx, snap); err != nil {
					slog.Warn("record history", "url", snap.URL, "error", err)
				}
				metrics.RecordPageMetrics(snap.URL, string(snap.Platform), snap.Metrics)
				slog.Info("page synced", "url", snap.URL,
					"platform", snap.Platform, "metrics", len(snap.Metrics))
			case relay.StatusSkipped:
				// Unchanged since last delivery; nothing to do.
			default:
				slog.Warn("page sync failed", "url", snap.URL,
					"status", out.Status, "error", out.Err)
			}
		}
	}

	scrapeAll()
	ticker := time.NewTicker(cfg.Scrape.Interval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			scrapeAll()
		case <-mutations:
			scrapeAll()
		}
	}
}
