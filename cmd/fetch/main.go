package main

import (
    "context"
    "encoding/json"
    "errors"
    "flag"
    "fmt"
    "io"
    "log"
    "os"
    "text/tabwriter"
    "time"

    "github.com/joho/godotenv"

    "stockdashboard/internal/config"
    "stockdashboard/internal/dashboard"
    "stockdashboard/internal/httpx"
    "stockdashboard/internal/provider/finnhubadapter"
    "stockdashboard/internal/quotes"
)

func main() {
    if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
        log.Printf("warning: .env: %v", err)
    }

    var symbolsCSV string
    var search string
    var sortField string
    var desc bool
    var asJSON bool
    var timeout int
    var configPath string

    flag.StringVar(&symbolsCSV, "symbols", "", "comma-separated tickers (default: configured list)")
    flag.StringVar(&search, "search", "", "only show symbols containing this text")
    flag.StringVar(&sortField, "sort", string(dashboard.SortBySymbol), "sort by symbol, price or changePercent")
    flag.BoolVar(&desc, "desc", false, "sort descending")
    flag.BoolVar(&asJSON, "json", false, "print the view as JSON")
    flag.IntVar(&timeout, "timeout", 0, "request timeout seconds (default: configured)")
    flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to config.json or config.yaml (optional)")
    flag.Parse()

    // Load config (optional) and merge with flags
    cfg, err := config.Load(configPath)
    if err != nil { log.Fatalf("config: %v", err) }
    if symbolsCSV != "" { cfg.Dashboard.Symbols = config.SplitCSV(symbolsCSV) }
    if timeout > 0 { cfg.Server.RequestTimeoutSec = timeout }
    if err := cfg.Validate(); err != nil { log.Fatalf("config: %v", err) }
    if cfg.UsingDemoKey() {
        log.Println("warning: FINNHUB_API_KEY not set; using the demo key")
        cfg.Finnhub.APIKey = config.DefaultAPIKey
    }

    p, err := finnhubadapter.NewStack(cfg.Finnhub, httpx.New(time.Duration(cfg.Server.RequestTimeoutSec)*time.Second))
    if err != nil { log.Fatalf("provider: %v", err) }

    dash := dashboard.New(
        quotes.New(p, cfg.Dashboard.MaxConcurrency),
        dashboard.WithSymbols(cfg.Dashboard.Symbols),
        dashboard.WithAutoRefresh(false),
    )
    defer dash.Close()

    field, err := dashboard.ParseSortField(sortField)
    if err != nil { log.Fatalf("sort: %v", err) }
    // choosing the current field flips it, so only switch when it differs
    if field != dash.View().SortField {
        _ = dash.SetSort(string(field))
    }
    if desc {
        _ = dash.SetSort(string(field))
    }
    dash.SetSearchQuery(search)

    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Duration(cfg.Server.RequestTimeoutSec)*time.Second)
    defer cancel()
    if err := dash.Refresh(ctx); err != nil {
        log.Fatalf("refresh: %v", err)
    }

    v := dash.View()
    if asJSON {
        enc := json.NewEncoder(os.Stdout)
        enc.SetIndent("", "  ")
        if err := enc.Encode(v); err != nil { log.Fatalf("encode: %v", err) }
        return
    }
    if err := printTable(os.Stdout, v); err != nil { log.Fatalf("print: %v", err) }
}

func printTable(w io.Writer, v dashboard.View) error {
    tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', tabwriter.AlignRight)
    fmt.Fprintln(tw, "SYMBOL\tPRICE\tCHANGE\tCHANGE %\tPREV CLOSE\t")
    for _, r := range v.Quotes {
        fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", r.Symbol, r.PriceText, r.ChangeText, r.ChangePercentText, r.PreviousCloseText)
    }
    if err := tw.Flush(); err != nil { return err }
    _, err := fmt.Fprintf(w, "%d of %d symbols, %s %s\n", len(v.Quotes), v.Tracked, v.SortField, v.SortDirection)
    return err
}
