// Package listing drives the product listing of the home page: category
// browsing, debounced search and the fetches they trigger.
package listing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/debounce"
	"github.com/fjod/go_cart/storefront/internal/domain"
)

// DefaultDebounce is the keystroke delay before a typed query is searched.
const DefaultDebounce = 300 * time.Millisecond

type Mode string

const (
	ModeBrowse Mode = "browse"
	ModeSearch Mode = "search"
)

// State is a snapshot of the listing.
type State struct {
	Mode     Mode             `json:"mode"`
	Category string           `json:"category"`
	Query    string           `json:"query"`
	Title    string           `json:"title"`
	Products []domain.Product `json:"products"`
	Loading  bool             `json:"loading"`
}

// Controller owns the (category, query) pair of one session and keeps the
// product list in sync with it. Only the response of the most recent fetch
// is ever applied.
type Controller struct {
	api       catalog.API
	logger    *slog.Logger
	debouncer *debounce.Debouncer[keystroke]

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu          sync.Mutex
	category    string
	query       string
	products    []domain.Product
	gen         uint64
	loading     bool
	idle        chan struct{}
	cancelFetch context.CancelFunc
	closed      bool
	// intent counts user actions; a debounced keystroke only applies if
	// nothing happened after it was typed.
	intent uint64
}

type keystroke struct {
	text   string
	intent uint64
}

// NewController starts browsing all products. A non-positive delay uses DefaultDebounce.
func NewController(api catalog.API, delay time.Duration, logger *slog.Logger) *Controller {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		api:      api,
		logger:   logger.With("component", "listing"),
		ctx:      ctx,
		cancel:   cancel,
		category: catalog.AllCategories,
		products: []domain.Product{},
		idle:     closedChan(),
	}
	c.debouncer = debounce.New(delay, c.onStableQuery)

	c.mu.Lock()
	c.fetchLocked()
	c.mu.Unlock()
	return c
}

// SelectCategory browses category and drops the search text, including a
// keystroke that has not been searched yet.
func (c *Controller) SelectCategory(category string) {
	if category == "" {
		category = catalog.AllCategories
	}
	c.debouncer.Cancel()
	c.apply(category, "")
}

// Type feeds one raw keystroke of the search box.
func (c *Controller) Type(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.intent++
	c.debouncer.Set(keystroke{text: text, intent: c.intent})
}

func (c *Controller) onStableQuery(k keystroke) {
	const op = "Controller.onStableQuery"

	query := strings.TrimSpace(k.text)
	if query == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if k.intent != c.intent {
		c.logger.Debug("dropping superseded keystroke", "op", op, "query", query)
		return
	}
	c.applyLocked(catalog.AllCategories, query)
}

// Search switches to search mode for q and resets the category. An empty
// query returns to browsing all products.
func (c *Controller) Search(q string) {
	c.debouncer.Cancel()
	c.apply(catalog.AllCategories, strings.TrimSpace(q))
}

// Refresh refetches the current pair.
func (c *Controller) Refresh() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.fetchLocked()
}

func (c *Controller) apply(category, query string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.intent++
	c.applyLocked(category, query)
}

func (c *Controller) applyLocked(category, query string) {
	if c.closed || (category == c.category && query == c.query) {
		return
	}
	c.category = category
	c.query = query
	c.fetchLocked()
}

func (c *Controller) fetchLocked() {
	if c.cancelFetch != nil {
		c.cancelFetch()
	}
	c.gen++
	gen := c.gen
	category, query := c.category, c.query

	if !c.loading {
		c.loading = true
		c.idle = make(chan struct{})
	}

	ctx, cancel := context.WithCancel(c.ctx)
	c.cancelFetch = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()

		products, err := c.load(ctx, category, query)
		c.finish(gen, products, err)
	}()
}

func (c *Controller) load(ctx context.Context, category, query string) ([]domain.Product, error) {
	if query != "" {
		products, err := c.api.Search(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("search %q: %w", query, err)
		}
		return products, nil
	}
	products, err := c.api.ListByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list category %q: %w", category, err)
	}
	return products, nil
}

func (c *Controller) finish(gen uint64, products []domain.Product, err error) {
	const op = "Controller.finish"

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		c.logger.Debug("discarding stale listing response", "op", op, "gen", gen, "current", c.gen)
		return
	}

	if err != nil {
		if !c.closed {
			c.logger.Error("failed to load products", "op", op, "err", err)
		}
		products = nil
	}
	if products == nil {
		products = []domain.Product{}
	}
	c.products = products
	c.loading = false
	c.cancelFetch = nil
	close(c.idle)
}

// State returns the current listing.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	mode := ModeBrowse
	if c.query != "" {
		mode = ModeSearch
	}
	products := make([]domain.Product, len(c.products))
	copy(products, c.products)

	return State{
		Mode:     mode,
		Category: c.category,
		Query:    c.query,
		Title:    title(c.category, c.query),
		Products: products,
		Loading:  c.loading,
	}
}

// WaitIdle blocks until the current fetch has finished or ctx is done.
func (c *Controller) WaitIdle(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the debouncer, cancels in-flight fetches and waits for them.
func (c *Controller) Close() {
	c.debouncer.Stop()

	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
}

func title(category, query string) string {
	switch {
	case query != "":
		return fmt.Sprintf("Search results for %q", query)
	case category == catalog.AllCategories:
		return "All Products"
	default:
		return category
	}
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
