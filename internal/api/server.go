package api

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "strings"
    "time"

    "stockdashboard/internal/dashboard"
)

// Dashboard is the set of user actions the API exposes.
type Dashboard interface {
    View() dashboard.View
    Refresh(ctx context.Context) error
    AddSymbol(ctx context.Context, input string) error
    RemoveSymbol(symbol string)
    SetSearchQuery(text string)
    SetSort(field string) error
    SetAutoRefresh(enabled bool)
    ToggleAutoRefresh() bool
    SelectStock(symbol string) error
    DismissError()
}

// Server serves the dashboard over HTTP and websocket.
type Server struct {
    D   Dashboard
    Hub *Hub
    // RequestTimeout bounds refresh and add requests. Defaults to 15s.
    RequestTimeout time.Duration
}

func New(d Dashboard, hub *Hub) *Server {
    if hub == nil { hub = NewHub() }
    return &Server{D: d, Hub: hub, RequestTimeout: 15 * time.Second}
}

type errorResponse struct {
    Error string `json:"error"`
}

// Handler returns the full route table. The websocket endpoint sits outside
// the JSON middlewares since gzip and body limits do not apply to it.
func (s *Server) Handler() http.Handler {
    api := http.NewServeMux()
    api.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusOK)
        _, _ = w.Write([]byte("ok"))
    })
    api.HandleFunc("GET /api/view", s.handleView)
    api.HandleFunc("POST /api/refresh", s.handleRefresh)
    api.HandleFunc("POST /api/auto-refresh", s.handleAutoRefresh)
    api.HandleFunc("POST /api/symbols", s.handleAddSymbol)
    api.HandleFunc("DELETE /api/symbols/{symbol}", s.handleRemoveSymbol)
    api.HandleFunc("PUT /api/search", s.handleSearch)
    api.HandleFunc("PUT /api/sort", s.handleSort)
    api.HandleFunc("PUT /api/selection", s.handleSelection)
    api.HandleFunc("DELETE /api/error", s.handleDismissError)

    root := http.NewServeMux()
    root.Handle("GET /ws", s.Hub.serveWS(s.D.View, s.control))
    root.Handle("/", withJSONHeaders(withGzip(recoverPanic(limitBody(api)))))
    return root
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
    writeJSON(w, http.StatusOK, s.D.View())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
    ctx, cancel := context.WithTimeout(r.Context(), s.timeout())
    defer cancel()
    if err := s.D.Refresh(ctx); err != nil {
        writeError(w, statusFor(err), err.Error())
        return
    }
    writeJSON(w, http.StatusOK, s.D.View())
}

type autoRefreshBody struct {
    Enabled *bool `json:"enabled"`
}

// handleAutoRefresh sets auto-refresh from the body, or toggles it when the
// body is empty.
func (s *Server) handleAutoRefresh(w http.ResponseWriter, r *http.Request) {
    var b autoRefreshBody
    if err := decodeBody(r, &b); err != nil && !errors.Is(err, io.EOF) {
        writeError(w, http.StatusBadRequest, "invalid JSON body")
        return
    }
    if b.Enabled == nil {
        s.D.ToggleAutoRefresh()
    } else {
        s.D.SetAutoRefresh(*b.Enabled)
    }
    writeJSON(w, http.StatusOK, s.D.View())
}

type symbolBody struct {
    Symbol string `json:"symbol"`
}

func (s *Server) handleAddSymbol(w http.ResponseWriter, r *http.Request) {
    var b symbolBody
    if err := decodeBody(r, &b); err != nil {
        writeError(w, http.StatusBadRequest, "invalid JSON body")
        return
    }
    if strings.TrimSpace(b.Symbol) == "" {
        writeError(w, http.StatusBadRequest, "symbol cannot be empty")
        return
    }
    ctx, cancel := context.WithTimeout(r.Context(), s.timeout())
    defer cancel()
    if err := s.D.AddSymbol(ctx, b.Symbol); err != nil {
        writeError(w, statusFor(err), err.Error())
        return
    }
    writeJSON(w, http.StatusCreated, s.D.View())
}

func (s *Server) handleRemoveSymbol(w http.ResponseWriter, r *http.Request) {
    s.D.RemoveSymbol(r.PathValue("symbol"))
    writeJSON(w, http.StatusOK, s.D.View())
}

type searchBody struct {
    Query string `json:"query"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
    var b searchBody
    if err := decodeBody(r, &b); err != nil {
        writeError(w, http.StatusBadRequest, "invalid JSON body")
        return
    }
    s.D.SetSearchQuery(b.Query)
    writeJSON(w, http.StatusOK, s.D.View())
}

type sortBody struct {
    Field string `json:"field"`
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
    var b sortBody
    if err := decodeBody(r, &b); err != nil {
        writeError(w, http.StatusBadRequest, "invalid JSON body")
        return
    }
    if err := s.D.SetSort(b.Field); err != nil {
        writeError(w, http.StatusBadRequest, err.Error())
        return
    }
    writeJSON(w, http.StatusOK, s.D.View())
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request) {
    var b symbolBody
    if err := decodeBody(r, &b); err != nil {
        writeError(w, http.StatusBadRequest, "invalid JSON body")
        return
    }
    if err := s.D.SelectStock(b.Symbol); err != nil {
        writeError(w, statusFor(err), err.Error())
        return
    }
    writeJSON(w, http.StatusOK, s.D.View())
}

func (s *Server) handleDismissError(w http.ResponseWriter, r *http.Request) {
    s.D.DismissError()
    writeJSON(w, http.StatusOK, s.D.View())
}

// control applies an action received over the websocket. The resulting view
// reaches the client through the hub broadcast.
func (s *Server) control(ctrl controlMsg) error {
    switch ctrl.Action {
    case "refresh":
        ctx, cancel := context.WithTimeout(context.Background(), s.timeout())
        defer cancel()
        return s.D.Refresh(ctx)
    case "add":
        ctx, cancel := context.WithTimeout(context.Background(), s.timeout())
        defer cancel()
        return s.D.AddSymbol(ctx, ctrl.Value)
    case "remove":
        s.D.RemoveSymbol(ctrl.Value)
    case "search":
        s.D.SetSearchQuery(ctrl.Value)
    case "sort":
        return s.D.SetSort(ctrl.Value)
    case "select":
        return s.D.SelectStock(ctrl.Value)
    case "toggle-auto-refresh":
        s.D.ToggleAutoRefresh()
    case "dismiss":
        s.D.DismissError()
    default:
        return fmt.Errorf("unknown action %q", ctrl.Action)
    }
    return nil
}

func (s *Server) timeout() time.Duration {
    if s.RequestTimeout <= 0 { return 15 * time.Second }
    return s.RequestTimeout
}

// statusFor maps dashboard errors to HTTP statuses.
func statusFor(err error) int {
    var (
        dup    *dashboard.DuplicateSymbolError
        failed *dashboard.FetchFailedError
        empty  *dashboard.EmptyResultError
    )
    switch {
    case errors.As(err, &dup):
        return http.StatusConflict
    case errors.As(err, &failed), errors.As(err, &empty):
        return http.StatusBadGateway
    case errors.Is(err, dashboard.ErrNotTracked):
        return http.StatusNotFound
    case errors.Is(err, dashboard.ErrClosed):
        return http.StatusServiceUnavailable
    case errors.Is(err, context.DeadlineExceeded):
        return http.StatusGatewayTimeout
    }
    return http.StatusInternalServerError
}

func decodeBody(r *http.Request, v any) error {
    dec := json.NewDecoder(r.Body)
    dec.DisallowUnknownFields()
    return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
    w.WriteHeader(status)
    enc := json.NewEncoder(w)
    enc.SetEscapeHTML(false)
    _ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
    writeJSON(w, status, errorResponse{Error: msg})
}
