// Package directory implements the live customer directory query controller.
package directory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/customer"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/domain/shared"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/logger"
	"github.com/kevinvaddoriya1/TempDairyFrontend-sub001/internal/infrastructure/telemetry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultDebounce is the quiet period before a search fetch fires
const DefaultDebounce = 300 * time.Millisecond

var (
	// ErrSelectionDisabled is returned when selecting outside selection mode
	ErrSelectionDisabled = shared.NewDomainError("INVALID_STATE", "Selection mode is off")

	// ErrNothingSelected is returned by BulkDelete with an empty selection
	ErrNothingSelected = shared.NewDomainError("VALIDATION_ERROR", "No customers selected")

	// ErrClosed is returned after the controller has been closed
	ErrClosed = shared.NewDomainError("INVALID_STATE", "Directory session is closed")
)

// Options configures a Controller
type Options struct {
	PageSize     int
	Debounce     time.Duration
	Timers       TimerFactory
	FetchTimeout time.Duration
	// DeleteLimiter paces bulk deletes; nil means unlimited
	DeleteLimiter *rate.Limiter
	Metrics       *telemetry.DashboardMetrics
	Logger        *zap.Logger
}

// Filters is a combined filter change
type Filters struct {
	MilkType    string                `json:"milkType"`
	Subcategory string                `json:"subcategory"`
	Status      customer.StatusFilter `json:"status"`
}

// State is a copy of the controller state
type State struct {
	Query         customer.Query        `json:"query"`
	SearchText    string                `json:"searchText"`
	SearchPending bool                  `json:"searchPending"`
	Seq           uint64                `json:"seq"`
	Loading       bool                  `json:"loading"`
	Result        *customer.QueryResult `json:"result"`
	Error         string                `json:"error,omitempty"`
	SelectionMode bool                  `json:"selectionMode"`
	Selected      []string              `json:"selected"`
}

// BulkDeleteResult reports each id's outcome
type BulkDeleteResult struct {
	Deleted []string          `json:"deleted"`
	Failed  map[string]string `json:"failed"`
}

// Controller composes search, filters, sort and page into one customer query.
// Search text is debounced; every other change fetches immediately. Each fetch
// carries a sequence number and only the latest issued one may update the result.
type Controller struct {
	directory customer.Directory
	opts      Options
	logger    *zap.Logger

	mu            sync.Mutex
	query         customer.Query
	searchText    string
	pending       Timer
	debounceGen   uint64
	seq           uint64
	loading       bool
	result        *customer.QueryResult
	lastErr       error
	selectionMode bool
	selected      map[string]struct{}
	closed        bool
}

// NewController creates a Controller with the default query
func NewController(directory customer.Directory, opts Options) *Controller {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Timers == nil {
		opts.Timers = RealTimers
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Controller{
		directory: directory,
		opts:      opts,
		logger:    opts.Logger,
		query:     customer.NewQuery(opts.PageSize),
		selected:  make(map[string]struct{}),
	}
}

// Load fetches the current query immediately
func (c *Controller) Load(ctx context.Context) State {
	return c.issue(ctx)
}

// SetSearch captures text and (re)starts the debounce wait
func (c *Controller) SetSearch(text string) State {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return c.State()
	}
	c.searchText = text
	c.stopPendingLocked()
	c.debounceGen++
	gen := c.debounceGen
	c.pending = c.opts.Timers(c.opts.Debounce, func() { c.fireSearch(gen) })
	c.mu.Unlock()
	return c.State()
}

// ClearSearch empties the search and fetches immediately
func (c *Controller) ClearSearch(ctx context.Context) State {
	c.mu.Lock()
	c.stopPendingLocked()
	c.debounceGen++
	c.searchText = ""
	c.query = c.query.WithSearch("")
	c.mu.Unlock()
	return c.issue(ctx)
}

// SetMilkType changes the milk type filter; the subcategory is cleared on change
func (c *Controller) SetMilkType(ctx context.Context, milkType string) State {
	c.mu.Lock()
	before := c.query
	c.query = c.query.WithMilkType(milkType)
	changed := c.query != before
	c.mu.Unlock()
	if !changed {
		return c.State()
	}
	return c.issue(ctx)
}

// SetSubcategory changes the subcategory filter, which needs a milk type
func (c *Controller) SetSubcategory(ctx context.Context, subcategory string) (State, error) {
	c.mu.Lock()
	q, err := c.query.WithSubcategory(subcategory)
	if err != nil {
		c.mu.Unlock()
		return c.State(), err
	}
	c.query = q
	c.mu.Unlock()
	return c.issue(ctx), nil
}

// SetStatus changes the status filter
func (c *Controller) SetStatus(ctx context.Context, status customer.StatusFilter) (State, error) {
	c.mu.Lock()
	q, err := c.query.WithStatus(status)
	if err != nil {
		c.mu.Unlock()
		return c.State(), err
	}
	c.query = q
	c.mu.Unlock()
	return c.issue(ctx), nil
}

// SetFilters applies milk type, subcategory and status as one change
func (c *Controller) SetFilters(ctx context.Context, f Filters) (State, error) {
	c.mu.Lock()
	q := c.query.WithMilkType(f.MilkType)
	q, err := q.WithSubcategory(f.Subcategory)
	if err == nil {
		q, err = q.WithStatus(f.Status)
	}
	if err != nil {
		c.mu.Unlock()
		return c.State(), err
	}
	q.Page = 1
	c.query = q
	c.mu.Unlock()
	return c.issue(ctx), nil
}

// ClearFilters removes every filter
func (c *Controller) ClearFilters(ctx context.Context) State {
	state, _ := c.SetFilters(ctx, Filters{Status: customer.StatusAll})
	return state
}

// ToggleSort flips the order on the active field or sorts another field ascending
func (c *Controller) ToggleSort(ctx context.Context, field string) (State, error) {
	c.mu.Lock()
	q, err := c.query.ToggleSort(field)
	if err != nil {
		c.mu.Unlock()
		return c.State(), err
	}
	c.query = q
	c.mu.Unlock()
	return c.issue(ctx), nil
}

// SetPage moves to page
func (c *Controller) SetPage(ctx context.Context, page int) (State, error) {
	c.mu.Lock()
	q, err := c.query.WithPage(page)
	if err != nil {
		c.mu.Unlock()
		return c.State(), err
	}
	c.query = q
	c.mu.Unlock()
	return c.issue(ctx), nil
}

// SetPageSize changes the page size and returns to page 1
func (c *Controller) SetPageSize(ctx context.Context, size int) State {
	c.mu.Lock()
	c.query = c.query.WithPageSize(size)
	c.mu.Unlock()
	return c.issue(ctx)
}

// SetSelectionMode turns selection on or off; off clears the selection
func (c *Controller) SetSelectionMode(on bool) State {
	c.mu.Lock()
	c.selectionMode = on
	if !on {
		c.selected = make(map[string]struct{})
	}
	c.mu.Unlock()
	return c.State()
}

// Toggle selects or deselects one customer
func (c *Controller) Toggle(id string) (State, error) {
	c.mu.Lock()
	if !c.selectionMode {
		c.mu.Unlock()
		return c.State(), ErrSelectionDisabled
	}
	if _, ok := c.selected[id]; ok {
		delete(c.selected, id)
	} else {
		c.selected[id] = struct{}{}
	}
	c.mu.Unlock()
	return c.State(), nil
}

// SelectAll selects every customer on the loaded page, or clears them when all
// of them are already selected
func (c *Controller) SelectAll() (State, error) {
	c.mu.Lock()
	if !c.selectionMode {
		c.mu.Unlock()
		return c.State(), ErrSelectionDisabled
	}
	var ids []string
	if c.result != nil {
		ids = c.result.IDs()
	}
	all := len(ids) > 0
	for _, id := range ids {
		if _, ok := c.selected[id]; !ok {
			all = false
			break
		}
	}
	for _, id := range ids {
		if all {
			delete(c.selected, id)
		} else {
			c.selected[id] = struct{}{}
		}
	}
	c.mu.Unlock()
	return c.State(), nil
}

// BulkDelete deletes every selected customer, one call per id. Any failure is
// reported as a single PARTIAL_FAILURE error; failed ids stay selected.
func (c *Controller) BulkDelete(ctx context.Context) (BulkDeleteResult, error) {
	c.mu.Lock()
	ids := sortedKeys(c.selected)
	c.mu.Unlock()

	result := BulkDeleteResult{Deleted: []string{}, Failed: map[string]string{}}
	if len(ids) == 0 {
		return result, ErrNothingSelected
	}

	log := logger.WithLogger(ctx, c.logger)
	for _, id := range ids {
		if c.opts.DeleteLimiter != nil {
			if err := c.opts.DeleteLimiter.Wait(ctx); err != nil {
				result.Failed[id] = err.Error()
				continue
			}
		}
		if err := c.directory.Delete(ctx, id); err != nil {
			log.Warn("Customer delete failed", zap.String("customer_id", id), zap.Error(err))
			result.Failed[id] = err.Error()
			continue
		}
		result.Deleted = append(result.Deleted, id)
	}

	c.mu.Lock()
	for _, id := range result.Deleted {
		delete(c.selected, id)
	}
	if len(result.Failed) == 0 {
		c.selectionMode = false
	}
	c.mu.Unlock()

	c.opts.Metrics.RecordBulkDelete(ctx, len(result.Deleted), len(result.Failed))
	log.Info("Bulk delete finished",
		zap.Int("deleted", len(result.Deleted)),
		zap.Int("failed", len(result.Failed)),
	)

	c.issue(ctx)

	if len(result.Failed) > 0 {
		return result, shared.ErrPartialFailure.WithCause(
			fmt.Errorf("%d of %d customers could not be deleted", len(result.Failed), len(ids)))
	}
	return result, nil
}

// Refresh re-issues the current query
func (c *Controller) Refresh(ctx context.Context) State {
	return c.issue(ctx)
}

// State returns a copy of the controller state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Query:         c.query,
		SearchText:    c.searchText,
		SearchPending: c.pending != nil,
		Seq:           c.seq,
		Loading:       c.loading,
		SelectionMode: c.selectionMode,
		Selected:      sortedKeys(c.selected),
	}
	if c.result != nil {
		r := *c.result
		r.Items = append([]customer.Customer{}, r.Items...)
		s.Result = &r
	}
	if c.lastErr != nil {
		s.Error = c.lastErr.Error()
	}
	return s
}

// Close stops any pending search; later debounced fetches are dropped
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopPendingLocked()
}

func (c *Controller) fireSearch(gen uint64) {
	c.mu.Lock()
	if c.closed || gen != c.debounceGen {
		c.mu.Unlock()
		return
	}
	c.pending = nil
	before := c.query
	c.query = c.query.WithSearch(c.searchText)
	changed := c.query != before
	c.mu.Unlock()

	if changed {
		c.issue(context.Background())
	}
}

// issue fetches the current query under a new sequence number
func (c *Controller) issue(ctx context.Context) State {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return c.State()
	}
	c.seq++
	seq := c.seq
	q := c.query
	c.loading = true
	c.mu.Unlock()

	if c.opts.FetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.FetchTimeout)
		defer cancel()
	}

	c.opts.Metrics.RecordDirectoryQuery(ctx)
	res, err := c.directory.List(ctx, q)
	c.apply(ctx, seq, res, err)
	return c.State()
}

func (c *Controller) apply(ctx context.Context, seq uint64, res customer.QueryResult, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.opts.Metrics.RecordStaleDiscard(ctx)
		c.logger.Debug("Discarding stale directory response",
			zap.Uint64("seq", seq),
			zap.Uint64("latest", c.seq),
		)
		return
	}

	c.loading = false
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.WithLogger(ctx, c.logger).Warn("Directory query failed", zap.Error(err))
		}
		c.lastErr = err
		return
	}
	if res.Items == nil {
		res.Items = []customer.Customer{}
	}
	c.lastErr = nil
	c.result = &res
}

func (c *Controller) stopPendingLocked() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
