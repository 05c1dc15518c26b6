package catalog

import (
	"container/list"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/arenadeck/deckscout/internal/domain"
	"github.com/arenadeck/deckscout/internal/metrics"
	"github.com/arenadeck/deckscout/internal/scryfall"
)

const (
	// DefaultSetCatalogTTL bounds how long the upstream set list is reused.
	DefaultSetCatalogTTL = time.Hour

	// DefaultCardPoolTTL bounds how long a set's card pool is reused.
	DefaultCardPoolTTL = 30 * time.Minute

	// DefaultCardPoolCapacity bounds the number of cached card pools.
	DefaultCardPoolCapacity = 100
)

// Source is the upstream paginated card catalog.
type Source interface {
	// ListSets fetches the full set catalog.
	ListSets(ctx context.Context) ([]scryfall.Set, error)

	// SearchCardsPage fetches one page of cards for a set code and reports
	// whether more pages remain.
	SearchCardsPage(ctx context.Context, setCode string, page int) ([]domain.CardSummary, bool, error)
}

// setsEntry is the single-slot set catalog tier.
type setsEntry struct {
	ready     chan struct{}
	data      []scryfall.Set
	err       error
	fetchedAt time.Time
}

// poolEntry is one cached card pool. While ready is open the fetch is still
// in flight and callers wait on it instead of fetching again.
type poolEntry struct {
	ready     chan struct{}
	cards     []domain.CardSummary
	err       error
	fetchedAt time.Time
	elem      *list.Element
}

// Cache is a two-tier, TTL-expiring cache over the upstream card catalog.
// Concurrent misses for the same key collapse into a single upstream fetch;
// the card pool tier evicts least-recently-used entries beyond its capacity.
type Cache struct {
	source  Source
	logger  *zap.Logger
	setTTL  time.Duration
	poolTTL time.Duration
	cap     int

	mu    sync.Mutex
	sets  *setsEntry
	pools map[string]*poolEntry
	order *list.List // front = most recently used, values are pool keys
}

// NewCache creates a catalog cache over the given upstream source.
func NewCache(source Source, setTTL, poolTTL time.Duration, capacity int, logger *zap.Logger) *Cache {
	if capacity < 1 {
		capacity = DefaultCardPoolCapacity
	}
	return &Cache{
		source:  source,
		logger:  logger,
		setTTL:  setTTL,
		poolTTL: poolTTL,
		cap:     capacity,
		pools:   make(map[string]*poolEntry),
		order:   list.New(),
	}
}

// GetAllSets returns the cached set catalog, fetching it at most once per TTL
// window regardless of how many callers arrive during the fetch.
func (c *Cache) GetAllSets(ctx context.Context) ([]scryfall.Set, error) {
	c.mu.Lock()
	e := c.sets
	if e == nil || (done(e.ready) && time.Since(e.fetchedAt) >= c.setTTL) {
		e = &setsEntry{ready: make(chan struct{})}
		c.sets = e
		c.mu.Unlock()
		metrics.CacheEvents.WithLabelValues("sets", "miss").Inc()

		// The fetch is detached from the triggering caller's context so
		// cancelling that caller cannot fail waiters whose own contexts
		// are still live.
		go c.fetchSets(context.WithoutCancel(ctx), e)
	} else {
		c.mu.Unlock()
		if done(e.ready) {
			metrics.CacheEvents.WithLabelValues("sets", "hit").Inc()
		}
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.ready:
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.data, nil
}

// fetchSets fetches the set catalog and completes the entry. Failed fetches
// are not cached; the next caller retries.
func (c *Cache) fetchSets(ctx context.Context, e *setsEntry) {
	data, err := c.source.ListSets(ctx)
	c.mu.Lock()
	e.data, e.err, e.fetchedAt = data, err, time.Now()
	if err != nil && c.sets == e {
		c.sets = nil
	}
	c.mu.Unlock()
	close(e.ready)
}

// GetSetByCode resolves a set code against the cached catalog,
// case-insensitively. Unknown codes fail with ErrUnknownSetCode.
func (c *Cache) GetSetByCode(ctx context.Context, code string) (scryfall.Set, error) {
	sets, err := c.GetAllSets(ctx)
	if err != nil {
		return scryfall.Set{}, err
	}
	for _, s := range sets {
		if strings.EqualFold(s.Code, code) {
			return s, nil
		}
	}
	return scryfall.Set{}, fmt.Errorf("%w: %q", domain.ErrUnknownSetCode, code)
}

// GetCardsBySetCode returns the full card pool for a set code. The code is
// validated against the set catalog first. A cold key triggers exactly one
// upstream pagination sequence shared by all concurrent callers; the cached
// entry is populated only after every page succeeded.
func (c *Cache) GetCardsBySetCode(ctx context.Context, code string) ([]domain.CardSummary, error) {
	if _, err := c.GetSetByCode(ctx, code); err != nil {
		return nil, err
	}
	key := strings.ToLower(code)

	c.mu.Lock()
	e, ok := c.pools[key]
	if ok && done(e.ready) && time.Since(e.fetchedAt) >= c.poolTTL {
		c.removeLocked(key, e)
		ok = false
	}
	if ok {
		if e.elem != nil {
			c.order.MoveToFront(e.elem)
		}
		c.mu.Unlock()
		if done(e.ready) {
			metrics.CacheEvents.WithLabelValues("cards", "hit").Inc()
		}
	} else {
		e = &poolEntry{ready: make(chan struct{})}
		c.pools[key] = e
		e.elem = c.order.PushFront(key)
		c.evictLocked()
		c.mu.Unlock()
		metrics.CacheEvents.WithLabelValues("cards", "miss").Inc()

		// Detached from the triggering caller's context, same as the set
		// tier: every waiter gets the identical pool even if that caller's
		// job is cancelled mid-pagination.
		go c.fetchPool(context.WithoutCancel(ctx), key, e)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-e.ready:
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.cards, nil
}

// fetchPool paginates the upstream source for key and completes the entry.
// All-or-nothing: a failure on any page discards the partial result and
// removes the entry so nothing stale is served.
func (c *Cache) fetchPool(ctx context.Context, key string, e *poolEntry) {
	var cards []domain.CardSummary
	var err error

	for page := 1; ; page++ {
		var pageCards []domain.CardSummary
		var hasMore bool
		pageCards, hasMore, err = c.source.SearchCardsPage(ctx, key, page)
		if err != nil {
			cards = nil
			break
		}
		cards = append(cards, pageCards...)
		if !hasMore {
			break
		}
	}

	c.mu.Lock()
	e.cards, e.err, e.fetchedAt = cards, err, time.Now()
	if err != nil && c.pools[key] == e {
		c.removeLocked(key, e)
	}
	c.mu.Unlock()
	close(e.ready)

	if err != nil {
		c.logger.Warn("Card pool fetch failed",
			zap.String("set_code", key),
			zap.Error(err),
		)
		return
	}
	c.logger.Debug("Card pool cached",
		zap.String("set_code", key),
		zap.Int("cards", len(cards)),
	)
}

// evictLocked drops least-recently-used completed entries until the pool
// count fits the capacity. In-flight entries are never evicted, so a key is
// fetched by at most one goroutine at a time.
func (c *Cache) evictLocked() {
	for len(c.pools) > c.cap {
		evicted := false
		for el := c.order.Back(); el != nil; el = el.Prev() {
			key := el.Value.(string)
			e := c.pools[key]
			if e == nil || !done(e.ready) {
				continue
			}
			c.removeLocked(key, e)
			metrics.CacheEvents.WithLabelValues("cards", "evict").Inc()
			evicted = true
			break
		}
		if !evicted {
			return
		}
	}
}

func (c *Cache) removeLocked(key string, e *poolEntry) {
	if c.pools[key] == e {
		delete(c.pools, key)
	}
	if e.elem != nil {
		c.order.Remove(e.elem)
		e.elem = nil
	}
}

// Len reports the number of cached card pools, in-flight ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pools)
}

func done(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
