package main

import (
    "context"
    "errors"
    "log"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/joho/godotenv"

    "stockdashboard/internal/api"
    "stockdashboard/internal/config"
    "stockdashboard/internal/dashboard"
    "stockdashboard/internal/httpx"
    "stockdashboard/internal/provider/finnhubadapter"
    "stockdashboard/internal/quotes"
)

func main() {
    // .env is optional; real environment variables win
    if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
        log.Printf("warning: .env: %v", err)
    }

    // Config
    cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
    if err != nil { log.Fatalf("config: %v", err) }
    if err := cfg.Validate(); err != nil { log.Fatalf("config: %v", err) }
    if cfg.UsingDemoKey() {
        log.Println("warning: FINNHUB_API_KEY not set; using the demo key, most symbols will have no data")
        cfg.Finnhub.APIKey = config.DefaultAPIKey
    }
    port := cfg.Server.Port
    timeout := time.Duration(cfg.Server.RequestTimeoutSec) * time.Second

    p, err := finnhubadapter.NewStack(cfg.Finnhub, httpx.New(timeout))
    if err != nil { log.Fatalf("provider: %v", err) }

    hub := api.NewHub()
    dash := dashboard.New(
        quotes.New(p, cfg.Dashboard.MaxConcurrency),
        dashboard.WithSymbols(cfg.Dashboard.Symbols),
        dashboard.WithRefreshInterval(time.Duration(cfg.Dashboard.RefreshIntervalSec)*time.Second),
        dashboard.WithAutoRefresh(cfg.Dashboard.AutoRefresh),
        dashboard.WithOnChange(hub.Broadcast),
    )

    startCtx, cancelStart := context.WithTimeout(context.Background(), 2*timeout)
    if err := dash.Start(startCtx); err != nil {
        log.Printf("initial load: %v", err)
    }
    cancelStart()

    apiSrv := api.New(dash, hub)
    apiSrv.RequestTimeout = 2 * timeout
    srv := &http.Server{
        Addr:              ":" + port,
        Handler:           apiSrv.Handler(),
        ReadHeaderTimeout: 5 * time.Second,
        ReadTimeout:       15 * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    go func() {
        log.Printf("server listening on :%s (%d symbols, auto-refresh=%v)", port, len(cfg.Dashboard.Symbols), cfg.Dashboard.AutoRefresh)
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatalf("server: %v", err)
        }
    }()

    // graceful shutdown
    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()
    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    _ = srv.Shutdown(shutdownCtx)
    if err := dash.Close(); err != nil {
        log.Printf("dashboard close: %v", err)
    }
}
