package browse

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/devstorm/docstorm-api/pkg/client"
)

// StaleAfter is how long a hidden, unfiltered catalog may sit before a
// visibility regain triggers a refresh.
const StaleAfter = 60 * time.Second

// CourseFetcher is the slice of the API client the controller needs.
type CourseFetcher interface {
	SearchCourses(ctx context.Context, filters client.Filters) ([]client.Course, error)
}

// Snapshot is a consistent view of the controller state for rendering.
type Snapshot struct {
	Courses    []client.Course
	Page       int
	TotalPages int
	Total      int
	Loading    bool
	Err        error
	Filters    client.Filters
}

// Controller owns the catalog view state: the active filters, the last
// successful result set, the loading flag and the current page. Every fetch
// carries a generation number; a response older than the latest issued
// generation is discarded, so a slow early response can never overwrite a
// newer one. Starting a fetch cancels the context of the previous in-flight
// request.
type Controller struct {
	fetcher  CourseFetcher
	logger   *zap.Logger
	pageSize int
	now      func() time.Time

	mu         sync.Mutex
	filters    client.Filters
	courses    []client.Course
	page       int
	loading    bool
	lastErr    error
	lastFetch  time.Time
	generation uint64
	cancel     context.CancelFunc
}

// ControllerOption customizes a Controller.
type ControllerOption func(*Controller)

// WithPageSize overrides the default page size of 6.
func WithPageSize(size int) ControllerOption {
	return func(c *Controller) {
		if size > 0 {
			c.pageSize = size
		}
	}
}

// WithControllerLogger sets the logger.
func WithControllerLogger(logger *zap.Logger) ControllerOption {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// withClock fixes the clock, for staleness tests.
func withClock(now func() time.Time) ControllerOption {
	return func(c *Controller) {
		c.now = now
	}
}

// NewController constructs a Controller. Call Load to run the initial fetch.
func NewController(fetcher CourseFetcher, opts ...ControllerOption) *Controller {
	c := &Controller{
		fetcher:  fetcher,
		logger:   zap.NewNop(),
		pageSize: DefaultPageSize,
		now:      time.Now,
		page:     1,
		courses:  []client.Course{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load runs the initial fetch.
func (c *Controller) Load(ctx context.Context) {
	c.fetch(ctx)
}

// SetFilters replaces the filter state, resets to page 1 and refetches. A
// no-op when the filters did not change.
func (c *Controller) SetFilters(ctx context.Context, filters client.Filters) {
	c.mu.Lock()
	if filters == c.filters {
		c.mu.Unlock()
		return
	}
	c.filters = filters
	c.page = 1
	c.mu.Unlock()

	c.fetch(ctx)
}

// Refresh refetches with the current filters, keeping the page.
func (c *Controller) Refresh(ctx context.Context) {
	c.fetch(ctx)
}

// VisibilityRegained is called when the catalog screen becomes visible
// again. It refetches only when no filter is active and the last fetch is
// older than the staleness window, mirroring how the dashboard refreshes its
// recommendation feed but never clobbers an active search.
func (c *Controller) VisibilityRegained(ctx context.Context) {
	c.mu.Lock()
	stale := !c.lastFetch.IsZero() && c.now().Sub(c.lastFetch) >= StaleAfter
	empty := c.filters.IsEmpty()
	c.mu.Unlock()

	if stale && empty {
		c.fetch(ctx)
	}
}

// SetPage moves to the given page, clamped to the valid range.
func (c *Controller) SetPage(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.page = ClampPage(page, len(c.courses), c.pageSize)
}

// Snapshot returns the current state, with Courses already cut to the
// current page.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	page := ClampPage(c.page, len(c.courses), c.pageSize)
	return Snapshot{
		Courses:    Page(c.courses, page, c.pageSize),
		Page:       page,
		TotalPages: TotalPages(len(c.courses), c.pageSize),
		Total:      len(c.courses),
		Loading:    c.loading,
		Err:        c.lastErr,
		Filters:    c.filters,
	}
}

// fetch runs a generation-tagged fetch in the calling goroutine. Concurrent
// fetches are safe: whichever started last wins, the rest are discarded on
// return.
func (c *Controller) fetch(ctx context.Context) {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.generation++
	gen := c.generation
	filters := c.filters
	c.loading = true
	c.mu.Unlock()

	courses, err := c.fetcher.SearchCourses(fetchCtx, filters)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		// A newer fetch was issued while this one was in flight.
		return
	}
	c.loading = false
	c.lastFetch = c.now()
	if err != nil {
		// Previous results stay on screen; only the error is recorded.
		c.lastErr = err
		c.logger.Warn("course fetch failed", zap.Error(err))
		return
	}
	c.lastErr = nil
	c.courses = courses
	c.page = ClampPage(c.page, len(c.courses), c.pageSize)
}
