package dashboard

import (
	"context"
	"errors"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"stockdashboard/internal/provider"
	"stockdashboard/internal/scheduler"
)

// DefaultSymbols is the tracked set a controller starts with.
var DefaultSymbols = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "META", "NVDA", "TSLA",
	"NFLX", "JPM", "V", "JNJ", "WMT", "DIS",
}

// QuoteFetcher is the part of *quotes.Fetcher the controller needs.
type QuoteFetcher interface {
	FetchMany(ctx context.Context, symbols []string) []provider.Quote
	FetchOneOrNil(ctx context.Context, symbol string) (provider.Quote, bool)
}

type options struct {
	symbols     []string
	interval    time.Duration
	autoRefresh bool
	onChange    func(View)
	logger      *log.Logger
	now         func() time.Time
}

// Option configures a Controller.
type Option func(*options)

// WithSymbols replaces DefaultSymbols as the initial tracked set.
func WithSymbols(symbols []string) Option {
	return func(o *options) { o.symbols = slices.Clone(symbols) }
}

// WithRefreshInterval sets the auto-refresh period.
func WithRefreshInterval(d time.Duration) Option {
	return func(o *options) { o.interval = d }
}

// WithAutoRefresh sets whether Start enables the periodic refresh.
func WithAutoRefresh(enabled bool) Option {
	return func(o *options) { o.autoRefresh = enabled }
}

// WithOnChange registers a hook that receives the view after every state change.
// It is called without the controller lock held.
func WithOnChange(fn func(View)) Option {
	return func(o *options) { o.onChange = fn }
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Controller owns the tracked set and view state of one dashboard.
type Controller struct {
	fetcher  QuoteFetcher
	onChange func(View)
	logger   *log.Logger
	now      func() time.Time
	auto     *scheduler.AutoRefresh

	// base is cancelled by Close and bounds every fetch.
	base   context.Context
	cancel context.CancelFunc

	// autoMu serializes auto-refresh changes so autoOn and the scheduler agree.
	autoMu sync.Mutex

	mu         sync.Mutex
	set        trackedSet
	search     string
	sortField  SortField
	sortDir    SortDirection
	selected   string
	errMsg     string
	autoOn     bool
	started    bool
	closed     bool
	seq        uint64
	applied    uint64
	refreshing int
	adding     int
	updatedAt  time.Time
}

// New creates a controller. Nothing is fetched until Start or Refresh.
func New(fetcher QuoteFetcher, opts ...Option) *Controller {
	o := options{
		symbols:     DefaultSymbols,
		interval:    scheduler.DefaultInterval,
		autoRefresh: true,
		logger:      log.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	base, cancel := context.WithCancel(context.Background())
	c := &Controller{
		fetcher:   fetcher,
		onChange:  o.onChange,
		logger:    o.logger,
		now:       o.now,
		base:      base,
		cancel:    cancel,
		set:       newTrackedSet(o.symbols, nil),
		sortField: SortBySymbol,
		sortDir:   Ascending,
		autoOn:    o.autoRefresh,
	}
	c.auto = scheduler.New(o.interval, c.tick, o.logger)
	return c
}

// Start performs the initial load and then enables auto-refresh if requested.
// A failed initial load is returned but does not prevent auto-refresh.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	closed := c.closed
	c.mu.Unlock()
	if closed {
		return ErrClosed
	}

	err := c.Refresh(ctx)

	c.autoMu.Lock()
	defer c.autoMu.Unlock()
	c.mu.Lock()
	c.started = true
	auto := c.autoOn && !c.closed
	c.mu.Unlock()
	if auto {
		c.auto.Enable()
	}
	return err
}

// Close cancels in-flight fetches, stops the scheduler and waits for a running
// tick to return. Results that arrive afterwards are discarded.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	return c.auto.Close(context.Background())
}

func (c *Controller) tick() {
	if err := c.Refresh(c.base); err != nil && !errors.Is(err, ErrClosed) {
		c.logger.Printf("auto-refresh: %v", err)
	}
}

// Refresh re-fetches every tracked symbol and replaces the tracked set with
// the result. Only the most recently started refresh that completes is applied;
// older ones finishing later are dropped. When nothing could be fetched the
// previous set is kept and an *EmptyResultError is returned. If ctx ends before
// the fetch completes the result is dropped and ctx's error returned.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.seq++
	seq := c.seq
	symbols := slices.Clone(c.set.symbols)
	c.refreshing++
	c.errMsg = ""
	c.mu.Unlock()
	c.notify()

	fctx, done := c.bind(ctx)
	quotes := c.fetcher.FetchMany(fctx, symbols)
	ctxErr := fctx.Err()
	done()

	var err error
	c.mu.Lock()
	c.refreshing--
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrClosed
	case ctxErr != nil:
		c.logger.Printf("refresh #%d: %v, result dropped", seq, ctxErr)
		err = ctxErr
	case seq < c.applied:
		c.logger.Printf("refresh #%d: superseded by #%d, result dropped", seq, c.applied)
	case len(symbols) > 0 && len(quotes) == 0:
		c.applied = seq
		err = &EmptyResultError{Requested: len(symbols)}
		c.errMsg = err.Error()
	default:
		c.applied = seq
		c.set = newTrackedSet(symbols, quotes)
		c.updatedAt = c.now()
	}
	c.mu.Unlock()
	c.notify()
	return err
}

// AddSymbol starts tracking one symbol. Blank input is ignored. A symbol that
// already has a quote is rejected without a request. A symbol that is tracked
// but failed its last refresh is not a duplicate: it is fetched again and its
// quote filled in, keeping its place in the list. If ctx ends before the fetch
// completes nothing changes and ctx's error is returned.
func (c *Controller) AddSymbol(ctx context.Context, input string) error {
	sym := provider.NormalizeSymbol(input)
	if sym == "" {
		return nil
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.set.has(sym) {
		err := &DuplicateSymbolError{Symbol: sym}
		c.errMsg = err.Error()
		c.mu.Unlock()
		c.notify()
		return err
	}
	c.adding++
	c.errMsg = ""
	c.mu.Unlock()
	c.notify()

	fctx, done := c.bind(ctx)
	q, ok := c.fetcher.FetchOneOrNil(fctx, sym)
	ctxErr := fctx.Err()
	done()

	var err error
	c.mu.Lock()
	c.adding--
	switch {
	case c.closed:
		c.mu.Unlock()
		return ErrClosed
	case ctxErr != nil:
		err = ctxErr
	case !ok:
		err = &FetchFailedError{Symbol: sym}
		c.errMsg = err.Error()
	default:
		q.Symbol = sym
		c.set = c.set.with(q)
		c.updatedAt = c.now()
	}
	c.mu.Unlock()
	c.notify()
	return err
}

// RemoveSymbol stops tracking a symbol. Removing an untracked symbol is a no-op.
func (c *Controller) RemoveSymbol(symbol string) {
	sym := provider.NormalizeSymbol(symbol)
	c.mu.Lock()
	if c.closed || sym == "" {
		c.mu.Unlock()
		return
	}
	c.set = c.set.without(sym)
	if c.selected == sym {
		c.selected = ""
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) SetSearchQuery(text string) {
	c.update(func() { c.search = strings.TrimSpace(text) })
}

// SetSort orders the view by field. Choosing the current field again flips
// the direction; a new field starts ascending.
func (c *Controller) SetSort(field string) error {
	f, err := ParseSortField(field)
	if err != nil {
		return err
	}
	c.update(func() {
		if f == c.sortField {
			c.sortDir = c.sortDir.flip()
			return
		}
		c.sortField = f
		c.sortDir = Ascending
	})
	return nil
}

// SetAutoRefresh turns the periodic refresh on or off. Before Start only the
// preference is recorded.
func (c *Controller) SetAutoRefresh(enabled bool) {
	c.autoMu.Lock()
	ok := c.applyAutoRefresh(func(bool) bool { return enabled })
	c.autoMu.Unlock()
	if ok {
		c.notify()
	}
}

// ToggleAutoRefresh flips auto-refresh and returns the new setting.
func (c *Controller) ToggleAutoRefresh() bool {
	var next bool
	c.autoMu.Lock()
	ok := c.applyAutoRefresh(func(cur bool) bool {
		next = !cur
		return next
	})
	c.autoMu.Unlock()
	if ok {
		c.notify()
	}
	return next
}

// applyAutoRefresh sets autoOn to decide(autoOn) and brings the scheduler in
// line. The caller holds autoMu. It reports false once the controller is closed.
func (c *Controller) applyAutoRefresh(decide func(cur bool) bool) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	enabled := decide(c.autoOn)
	c.autoOn = enabled
	started := c.started
	c.mu.Unlock()

	if started {
		if enabled {
			c.auto.Enable()
		} else {
			c.auto.Disable()
		}
	}
	return true
}

// SelectStock picks the quote shown in detail. An empty symbol clears it.
func (c *Controller) SelectStock(symbol string) error {
	sym := provider.NormalizeSymbol(symbol)
	c.mu.Lock()
	if sym != "" && !c.set.has(sym) {
		c.mu.Unlock()
		return ErrNotTracked
	}
	c.selected = sym
	c.mu.Unlock()
	c.notify()
	return nil
}

func (c *Controller) DismissError() {
	c.update(func() { c.errMsg = "" })
}

// View derives the current display: filter by search text, then sort.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows := Derive(c.set.list(), c.search, c.sortField, c.sortDir)
	v := View{
		Quotes:        make([]Row, 0, len(rows)),
		Error:         c.errMsg,
		Loading:       c.refreshing > 0,
		Adding:        c.adding > 0,
		AutoRefresh:   c.autoOn,
		Search:        c.search,
		SortField:     c.sortField,
		SortDirection: c.sortDir,
		Tracked:       len(c.set.symbols),
		UpdatedAt:     c.updatedAt,
		PriceChart:    PriceChart(rows, c.selected),
		ChangeChart:   ChangeChart(rows),
	}
	for _, q := range rows {
		v.Quotes = append(v.Quotes, NewRow(q))
	}
	if q, ok := c.set.get(c.selected); ok {
		r := NewRow(q)
		v.Selected = &r
	}
	return v
}

func (c *Controller) update(fn func()) {
	c.mu.Lock()
	fn()
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange(c.View())
	}
}

// bind derives a context from ctx that is also cancelled by Close.
func (c *Controller) bind(ctx context.Context) (context.Context, func()) {
	fctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.base, cancel)
	return fctx, func() {
		stop()
		cancel()
	}
}
