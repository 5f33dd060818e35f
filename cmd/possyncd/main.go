// Package main provides the terminal sync daemon. The UI communicates via
// REST and WebSocket on localhost.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/panhaneath12/sweet-delights-pos-system/internal/auth"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/logging"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/outbox"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/pos"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/remote"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/seed"
	"github.com/panhaneath12/sweet-delights-pos-system/internal/store"
	syncpkg "github.com/panhaneath12/sweet-delights-pos-system/internal/sync"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logging.Init(os.Stdout, logging.ParseLevel(getEnv("POS_LOG_LEVEL", "info")))

	dataDir := getEnv("POS_DATA_DIR", "./data")
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		logging.Error("Failed to create data directory", err)
		os.Exit(1)
	}

	db, err := store.Open(dataDir)
	if err != nil {
		logging.Error("Failed to open local store", err)
		os.Exit(1)
	}
	defer db.Close()

	ledger := store.NewLedger(db)

	client := remote.NewRESTClient(remote.RESTConfig{
		BaseURL: getEnv("POS_REMOTE_URL", ""),
		AnonKey: getEnv("POS_REMOTE_ANON_KEY", ""),
		Token:   getEnv("POS_REMOTE_TOKEN", ""),
	})

	var orch *syncpkg.Orchestrator
	queue := outbox.NewQueue(db, client, func() bool { return orch.Online() })
	orch = syncpkg.NewOrchestrator(ledger, queue, client)

	service := pos.NewService(ledger, queue, client, func() bool { return orch.Online() })
	lockout := auth.NewLockout(db)

	ctx := context.Background()

	probeInterval := 30 * time.Second
	if raw := os.Getenv("POS_PROBE_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			probeInterval = d
		}
	}
	var probe syncpkg.Probe
	if url := os.Getenv("POS_REMOTE_URL"); url != "" {
		probe = syncpkg.HTTPProbe(url + "/rest/v1/")
	} else {
		probe = func(ctx context.Context) bool { return false }
	}
	monitor := syncpkg.NewMonitor(orch, probe, probeInterval)

	// Probe once before first-run initialization; a reachable,
	// authenticated remote bootstraps instead of seeding demo data.
	monitor.Check(ctx)

	if err := seed.Initialize(ctx, ledger, orch, client); err != nil {
		logging.Error("Initial data load failed", err)
		os.Exit(1)
	}

	hub := NewWSHub()
	orch.Subscribe(func(status syncpkg.Status) {
		hub.BroadcastSyncStatus(status)
	})

	go monitor.Start(ctx)
	defer monitor.Stop()

	api := &API{
		ledger:  ledger,
		queue:   queue,
		orch:    orch,
		service: service,
		lockout: lockout,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", api.Health)
	mux.HandleFunc("/api/login", api.Login)
	mux.HandleFunc("/api/orders/complete", api.CompleteOrder)
	mux.HandleFunc("/api/orders/printed", api.MarkPrinted)
	mux.HandleFunc("/api/sessions/open", api.OpenSession)
	mux.HandleFunc("/api/sessions/close", api.CloseSession)
	mux.HandleFunc("/api/sync/status", api.SyncStatus)
	mux.HandleFunc("/api/sync/run", api.SyncRun)
	mux.HandleFunc("/api/outbox/stats", api.OutboxStats)
	mux.HandleFunc("/api/outbox/retry", api.OutboxRetry)
	mux.HandleFunc("/api/outbox/purge", api.OutboxPurge)
	mux.HandleFunc("/ws", hub.ServeWS)

	addr := getEnv("POS_HTTP_ADDR", "127.0.0.1:8090")
	logging.Info("POS sync daemon listening", map[string]interface{}{"addr": addr})
	if err := http.ListenAndServe(addr, mux); err != nil {
		logging.Error("HTTP server stopped", err)
		os.Exit(1)
	}
}
