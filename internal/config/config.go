package config

import (
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "os"
    "path/filepath"
    "strconv"
    "strings"

    "gopkg.in/yaml.v3"
)

// DefaultAPIKey is Finnhub's public sandbox key.
const DefaultAPIKey = "demo"

type Server struct {
    Port               string `json:"port" yaml:"port"`
    RequestTimeoutSec  int    `json:"request_timeout_sec" yaml:"request_timeout_sec"`
}

type Finnhub struct {
    APIKey               string `json:"api_key" yaml:"api_key"`
    BaseURL              string `json:"base_url" yaml:"base_url"`
    MaxRequestsPerMinute int    `json:"max_requests_per_minute" yaml:"max_requests_per_minute"`
    Burst                int    `json:"burst" yaml:"burst"`
    MinRequestIntervalMs int    `json:"min_request_interval_ms" yaml:"min_request_interval_ms"`
    CacheTTLSeconds      int    `json:"cache_ttl_sec" yaml:"cache_ttl_sec"`
    CacheMaxItems        int    `json:"cache_max_items" yaml:"cache_max_items"`
}

type Dashboard struct {
    Symbols            []string `json:"symbols" yaml:"symbols"`
    RefreshIntervalSec int      `json:"refresh_interval_sec" yaml:"refresh_interval_sec"`
    AutoRefresh        bool     `json:"auto_refresh" yaml:"auto_refresh"`
    MaxConcurrency     int      `json:"max_concurrency" yaml:"max_concurrency"`
}

type Config struct {
    Server    Server    `json:"server" yaml:"server"`
    Finnhub   Finnhub   `json:"finnhub" yaml:"finnhub"`
    Dashboard Dashboard `json:"dashboard" yaml:"dashboard"`
}

func Default() Config {
    return Config{
        Server: Server{Port: "8080", RequestTimeoutSec: 10},
        Finnhub: Finnhub{
            APIKey:               DefaultAPIKey,
            BaseURL:              "https://finnhub.io/api/v1",
            MaxRequestsPerMinute: 60,
            Burst:                20,
            CacheMaxItems:        1000,
        },
        Dashboard: Dashboard{
            Symbols: []string{
                "AAPL", "MSFT", "GOOGL", "AMZN", "META", "NVDA", "TSLA",
                "NFLX", "JPM", "V", "JNJ", "WMT", "DIS",
            },
            RefreshIntervalSec: 30,
            AutoRefresh:        true,
            MaxConcurrency:     8,
        },
    }
}

// Load reads config from path, as YAML when the extension is .yaml/.yml and
// JSON otherwise. With an empty path config.json, config.yaml and config.yml
// are tried in that order. A missing file yields defaults. Environment
// variables override file values.
func Load(path string) (Config, error) {
    cfg := Default()
    if path == "" {
        for _, cand := range []string{"config.json", "config.yaml", "config.yml"} {
            if _, err := os.Stat(cand); err == nil {
                path = cand
                break
            }
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err == nil {
            if err := unmarshal(path, b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config: %w", err)
            }
        }
    }
    applyEnv(&cfg)
    return cfg, nil
}

func unmarshal(path string, b []byte, cfg *Config) error {
    switch strings.ToLower(filepath.Ext(path)) {
    case ".yaml", ".yml":
        return yaml.Unmarshal(b, cfg)
    default:
        return json.Unmarshal(b, cfg)
    }
}

// Validate reports settings the server cannot run with.
func (c Config) Validate() error {
    var errs []error
    if strings.TrimSpace(c.Server.Port) == "" {
        errs = append(errs, errors.New("server.port is empty"))
    }
    if c.Server.RequestTimeoutSec <= 0 {
        errs = append(errs, errors.New("server.request_timeout_sec must be positive"))
    }
    if strings.TrimSpace(c.Finnhub.BaseURL) == "" {
        errs = append(errs, errors.New("finnhub.base_url is empty"))
    }
    if len(splitCSV(strings.Join(c.Dashboard.Symbols, ","))) == 0 {
        errs = append(errs, errors.New("dashboard.symbols is empty"))
    }
    if c.Dashboard.RefreshIntervalSec <= 0 {
        errs = append(errs, errors.New("dashboard.refresh_interval_sec must be positive"))
    }
    return errors.Join(errs...)
}

// UsingDemoKey reports whether no real API key was configured.
func (c Config) UsingDemoKey() bool {
    k := strings.TrimSpace(c.Finnhub.APIKey)
    return k == "" || k == DefaultAPIKey
}

func applyEnv(cfg *Config) {
    if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
    if x, ok := envInt("REQUEST_TIMEOUT_SEC"); ok && x > 0 { cfg.Server.RequestTimeoutSec = x }
    if v := os.Getenv("FINNHUB_API_KEY"); v != "" { cfg.Finnhub.APIKey = v }
    if v := os.Getenv("FINNHUB_BASE_URL"); v != "" { cfg.Finnhub.BaseURL = strings.TrimRight(v, "/") }
    if x, ok := envInt("FINNHUB_MAX_RPM"); ok && x >= 0 { cfg.Finnhub.MaxRequestsPerMinute = x }
    if x, ok := envInt("FINNHUB_BURST"); ok && x > 0 { cfg.Finnhub.Burst = x }
    if x, ok := envInt("FINNHUB_MIN_INTERVAL_MS"); ok && x >= 0 { cfg.Finnhub.MinRequestIntervalMs = x }
    if x, ok := envInt("FINNHUB_CACHE_TTL_SEC"); ok && x >= 0 { cfg.Finnhub.CacheTTLSeconds = x }
    if x, ok := envInt("FINNHUB_CACHE_MAX_ITEMS"); ok && x > 0 { cfg.Finnhub.CacheMaxItems = x }
    if v := os.Getenv("SYMBOLS"); v != "" { cfg.Dashboard.Symbols = splitCSV(v) }
    if x, ok := envInt("REFRESH_INTERVAL_SEC"); ok && x > 0 { cfg.Dashboard.RefreshIntervalSec = x }
    if v := os.Getenv("AUTO_REFRESH"); v != "" {
        switch strings.ToLower(v) {
        case "1","true","yes","y": cfg.Dashboard.AutoRefresh = true
        case "0","false","no","n": cfg.Dashboard.AutoRefresh = false
        }
    }
    if x, ok := envInt("FETCH_MAX_CONCURRENCY"); ok && x > 0 { cfg.Dashboard.MaxConcurrency = x }
}

// envInt reads an integer variable. Unset or unparsable values report ok == false.
func envInt(name string) (int, bool) {
    v := strings.TrimSpace(os.Getenv(name))
    if v == "" { return 0, false }
    x, err := strconv.Atoi(v)
    if err != nil {
        log.Printf("warning: ignoring %s=%q: not an integer", name, v)
        return 0, false
    }
    return x, true
}

// SplitCSV splits a comma separated list, dropping blanks.
func SplitCSV(s string) []string { return splitCSV(s) }

func splitCSV(s string) []string {
    parts := strings.Split(s, ",")
    out := make([]string, 0, len(parts))
    for _, p := range parts {
        p = strings.TrimSpace(p)
        if p != "" { out = append(out, p) }
    }
    return out
}
