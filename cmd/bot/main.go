package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"labalog.org/internal/bot"
	"labalog.org/internal/bot/telegram"
	"labalog.org/internal/ledger"
	"labalog.org/internal/notify"
	"labalog.org/internal/obs"
	"labalog.org/internal/ops"
	"labalog.org/internal/registry"
	"labalog.org/internal/table"
	"labalog.org/internal/table/csvfile"
	"labalog.org/internal/table/pg"
)

var version = "0.3.1"

func main() {
	_ = godotenv.Load()

	obs.Init()
	obs.InitBuildInfo(version)

	token := os.Getenv("BOT_TOKEN")
	if token == "" {
		log.Fatal("missing BOT_TOKEN")
	}

	loc, err := time.LoadLocation(envOr("TZ", "Asia/Jakarta"))
	if err != nil {
		log.Fatalf("load timezone: %v", err)
	}

	var (
		tbl table.Table
		db  *sql.DB
	)
	switch backend := envOr("TABLE_BACKEND", "csv"); backend {
	case "csv":
		tbl = csvfile.Open(envOr("TABLE_CSV_PATH", "data/entries.csv"), ledger.Columns)
	case "pg":
		dsn := os.Getenv("LABALOG_PG_DSN")
		if dsn == "" {
			log.Fatal("missing LABALOG_PG_DSN for pg backend")
		}
		store, err := pg.Open(dsn, envOr("TABLE_NAME", "entries"))
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		tbl = store
		db = store.DB()
	default:
		log.Fatalf("unknown TABLE_BACKEND %q", backend)
	}

	reg := registry.Load(envOr("ROSTER_PATH", "data/roster.json"))

	client, err := telegram.New(token)
	if err != nil {
		log.Fatalf("connect telegram: %v", err)
	}
	log.Printf("Authorized as @%s", client.Username())

	svc := ledger.New(tbl, ledger.NewUndoStore(), loc)
	notifier := notify.New(reg, client)
	handler := bot.NewHandler(svc, reg, notifier, client)

	srv := &http.Server{
		Addr:              envOr("OPS_ADDR", ":8080"),
		Handler:           ops.New(ops.ReadyProbe{DB: db}, version).Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	log.Printf("Starting labalog-bot %s, ops on %s", version, srv.Addr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client.Poll(ctx, handler)

	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(shutdownCtx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
