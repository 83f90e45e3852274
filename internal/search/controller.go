// Package search implements the interactive place-search flow: keystroke
// debouncing, stale-result suppression and selection short-circuiting on top
// of a geocoding client.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/wanderplan/wanderplan-backend/logger"
	"github.com/wanderplan/wanderplan-backend/pkg/geocoder"
	"github.com/wanderplan/wanderplan-backend/types"
)

const (
	// MinQueryLength is the shortest trimmed query that triggers a lookup.
	MinQueryLength = 3

	DefaultDebounce    = 800 * time.Millisecond
	DefaultResultLimit = 5
)

// Config wires a Controller to its geocoding client and its observer
// callbacks. Callbacks are invoked from timer goroutines and must be safe to
// call concurrently with controller methods.
type Config struct {
	Client   geocoder.Client
	Debounce time.Duration
	Limit    int

	// OnResults receives the current suggestion list. It is called with an
	// empty slice when suggestions are cleared.
	OnResults func([]types.PlaceCandidate)

	// OnError receives lookup failures. A failed lookup clears the
	// suggestion list before the error is reported.
	OnError func(error)

	// OnSearching reports whether a lookup is in flight.
	OnSearching func(bool)
}

// Controller tracks one user's search session. Exactly one lookup is pending
// at a time: every text change cancels the previously scheduled lookup, and
// a generation counter discards responses that arrive after a newer lookup
// was started.
type Controller struct {
	mu sync.Mutex

	client   geocoder.Client
	debounce time.Duration
	limit    int

	onResults   func([]types.PlaceCandidate)
	onError     func(error)
	onSearching func(bool)

	ctx    context.Context
	cancel context.CancelFunc

	query           string
	selectedAddress string
	lastResults     []types.PlaceCandidate
	timer           *time.Timer
	generation      uint64
	inFlightGen     uint64
	inFlight        bool
	closed          bool
}

func NewController(cfg Config) *Controller {
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultResultLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		client:      cfg.Client,
		debounce:    cfg.Debounce,
		limit:       cfg.Limit,
		onResults:   cfg.OnResults,
		onError:     cfg.OnError,
		onSearching: cfg.OnSearching,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// OnTextChanged records the new input text and reschedules the pending
// lookup. Queries shorter than MinQueryLength clear the suggestions, and
// text matching the currently selected address never triggers a lookup.
func (c *Controller) OnTextChanged(text string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	trimmed := strings.TrimSpace(text)
	c.query = trimmed
	c.stopTimerLocked()

	// Every edit invalidates whatever response is still in flight.
	c.generation++

	if len(trimmed) < MinQueryLength {
		c.lastResults = nil
		c.setSearchingLocked(false)
		c.mu.Unlock()
		c.emitResults([]types.PlaceCandidate{})
		return
	}

	// The UI echoes the selected address back into the field; that echo
	// clears the panel instead of starting a lookup.
	if c.selectedAddress != "" && trimmed == c.selectedAddress {
		c.lastResults = nil
		c.setSearchingLocked(false)
		c.mu.Unlock()
		c.emitResults([]types.PlaceCandidate{})
		return
	}

	c.timer = time.AfterFunc(c.debounce, func() {
		c.fire(trimmed)
	})
	c.mu.Unlock()
}

// OnFocus re-emits the suggestions from the last completed lookup so a
// dismissed panel reappears. Focusing never starts a new lookup; with no
// cached suggestions it is a no-op.
func (c *Controller) OnFocus() {
	c.mu.Lock()
	if c.closed || len(c.lastResults) == 0 {
		c.mu.Unlock()
		return
	}
	cached := append([]types.PlaceCandidate(nil), c.lastResults...)
	c.mu.Unlock()
	c.emitResults(cached)
}

// OnSelect records the chosen candidate and returns its full address, which
// the caller puts back into the input field. The echoed text will not start
// another lookup.
func (c *Controller) OnSelect(candidate types.PlaceCandidate) string {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return candidate.Address
	}
	c.stopTimerLocked()
	c.generation++
	c.selectedAddress = candidate.Address
	c.query = candidate.Address
	c.lastResults = nil
	c.setSearchingLocked(false)
	c.mu.Unlock()

	c.emitResults([]types.PlaceCandidate{})
	return candidate.Address
}

// Reset clears the text, the selection and any pending lookup.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.stopTimerLocked()
	c.generation++
	c.query = ""
	c.selectedAddress = ""
	c.lastResults = nil
	c.setSearchingLocked(false)
	c.mu.Unlock()

	c.emitResults([]types.PlaceCandidate{})
}

// Close cancels the pending lookup and releases the controller. Responses
// arriving after Close are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopTimerLocked()
	c.generation++
	c.mu.Unlock()
	c.cancel()
}

// fire runs on the timer goroutine once the debounce interval elapses.
func (c *Controller) fire(text string) {
	c.mu.Lock()
	if c.closed || c.query != text {
		c.mu.Unlock()
		return
	}
	if len(text) < MinQueryLength || (c.selectedAddress != "" && text == c.selectedAddress) {
		c.mu.Unlock()
		return
	}
	gen := c.generation
	c.inFlightGen = gen
	c.setSearchingLocked(true)
	ctx := c.ctx
	c.mu.Unlock()

	results, err := c.client.Search(ctx, text, c.limit)

	c.mu.Lock()
	if c.inFlightGen == gen {
		c.setSearchingLocked(false)
	}
	if c.closed || c.generation != gen {
		c.mu.Unlock()
		logger.GetLogger().Debugw("Discarding stale place search response", "query", text)
		return
	}

	if err != nil {
		c.lastResults = nil
		c.mu.Unlock()
		logger.GetLogger().Warnw("Place search lookup failed", "query", text, "error", err)
		c.emitResults([]types.PlaceCandidate{})
		if c.onError != nil {
			c.onError(err)
		}
		return
	}

	c.lastResults = results
	c.mu.Unlock()
	c.emitResults(results)
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Controller) setSearchingLocked(searching bool) {
	if c.inFlight == searching {
		return
	}
	c.inFlight = searching
	if c.onSearching != nil {
		go c.onSearching(searching)
	}
}

// IsSearching reports whether a lookup is currently in flight.
func (c *Controller) IsSearching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

func (c *Controller) emitResults(results []types.PlaceCandidate) {
	if c.onResults != nil {
		c.onResults(results)
	}
}
