package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arenadeck/deckscout/internal/domain"
	"github.com/arenadeck/deckscout/internal/scryfall"
)

type page struct {
	cards   []domain.CardSummary
	hasMore bool
}

// fakeSource is an in-memory upstream with call counting and optional
// per-page failures.
type fakeSource struct {
	mu        sync.Mutex
	sets      []scryfall.Set
	pages     map[string][]page
	failPage  map[string]int // key -> 1-based page number that fails
	fetchLag  time.Duration
	setLag    time.Duration
	gate      chan struct{} // when set, page fetches block until it closes
	setCalls  int
	pageCalls map[string]int
}

func newFakeSource(codes ...string) *fakeSource {
	s := &fakeSource{
		pages:     make(map[string][]page),
		failPage:  make(map[string]int),
		pageCalls: make(map[string]int),
	}
	for _, code := range codes {
		s.sets = append(s.sets, scryfall.Set{Code: code, Name: "Set " + code})
	}
	return s
}

func (s *fakeSource) ListSets(ctx context.Context) ([]scryfall.Set, error) {
	if s.setLag > 0 {
		select {
		case <-time.After(s.setLag):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, ctx.Err())
		}
	}
	s.mu.Lock()
	s.setCalls++
	s.mu.Unlock()
	return s.sets, nil
}

func (s *fakeSource) SearchCardsPage(ctx context.Context, setCode string, pageNum int) ([]domain.CardSummary, bool, error) {
	if s.gate != nil {
		select {
		case <-s.gate:
		case <-ctx.Done():
			return nil, false, fmt.Errorf("%w: %v", domain.ErrUpstream, ctx.Err())
		}
	}
	if s.fetchLag > 0 {
		select {
		case <-time.After(s.fetchLag):
		case <-ctx.Done():
			return nil, false, fmt.Errorf("%w: %v", domain.ErrUpstream, ctx.Err())
		}
	}
	s.mu.Lock()
	s.pageCalls[setCode]++
	fail := s.failPage[setCode]
	pages := s.pages[setCode]
	s.mu.Unlock()

	if fail != 0 && pageNum == fail {
		return nil, false, fmt.Errorf("%w: page %d exploded", domain.ErrUpstream, pageNum)
	}
	if pageNum < 1 || pageNum > len(pages) {
		return nil, false, fmt.Errorf("%w: no such page %d", domain.ErrUpstream, pageNum)
	}
	p := pages[pageNum-1]
	return p.cards, p.hasMore, nil
}

func cards(names ...string) []domain.CardSummary {
	out := make([]domain.CardSummary, 0, len(names))
	for _, n := range names {
		out = append(out, domain.CardSummary{Name: n})
	}
	return out
}

func names(cs []domain.CardSummary) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.Name)
	}
	return out
}

func newTestCache(src Source, capacity int) *Cache {
	return NewCache(src, time.Hour, time.Hour, capacity, zap.NewNop())
}

func TestGetAllSets_SingleFetchWithinTTL(t *testing.T) {
	src := newFakeSource("fin")
	c := newTestCache(src, 10)

	for i := 0; i < 2; i++ {
		sets, err := c.GetAllSets(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(sets) != 1 || sets[0].Code != "fin" {
			t.Fatalf("unexpected sets: %+v", sets)
		}
	}
	if src.setCalls != 1 {
		t.Errorf("expected 1 upstream set fetch, got %d", src.setCalls)
	}
}

func TestGetAllSets_RefetchAfterExpiry(t *testing.T) {
	src := newFakeSource("fin")
	c := NewCache(src, 30*time.Millisecond, time.Hour, 10, zap.NewNop())

	if _, err := c.GetAllSets(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := c.GetAllSets(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.setCalls != 2 {
		t.Errorf("expected 2 upstream set fetches, got %d", src.setCalls)
	}
}

func TestGetCardsBySetCode_ConcatenatesPagesInOrder(t *testing.T) {
	src := newFakeSource("fin")
	src.pages["fin"] = []page{
		{cards: cards("c1", "c2"), hasMore: true},
		{cards: cards("c3"), hasMore: false},
	}
	c := newTestCache(src, 10)

	got, err := c.GetCardsBySetCode(context.Background(), "FIN")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"c1", "c2", "c3"}
	gotNames := names(got)
	if len(gotNames) != len(want) {
		t.Fatalf("expected %v, got %v", want, gotNames)
	}
	for i := range want {
		if gotNames[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, gotNames)
		}
	}
	if src.pageCalls["fin"] != 2 {
		t.Errorf("expected 2 page fetches, got %d", src.pageCalls["fin"])
	}
	if c.Len() != 1 {
		t.Errorf("expected 1 cached pool, got %d", c.Len())
	}

	// Second call within TTL is a pure hit.
	if _, err := c.GetCardsBySetCode(context.Background(), "fin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if src.pageCalls["fin"] != 2 {
		t.Errorf("expected cache hit, got %d page fetches", src.pageCalls["fin"])
	}
}

func TestGetCardsBySetCode_UnknownCode(t *testing.T) {
	src := newFakeSource("fin")
	c := newTestCache(src, 10)

	_, err := c.GetCardsBySetCode(context.Background(), "nope")
	if !errors.Is(err, domain.ErrUnknownSetCode) {
		t.Fatalf("expected ErrUnknownSetCode, got %v", err)
	}
	if src.pageCalls["nope"] != 0 {
		t.Errorf("expected no page fetches for unknown code, got %d", src.pageCalls["nope"])
	}
}

func TestGetCardsBySetCode_PageFailureDiscardsPartialResult(t *testing.T) {
	src := newFakeSource("fin")
	src.pages["fin"] = []page{
		{cards: cards("c1", "c2"), hasMore: true},
		{cards: cards("c3"), hasMore: false},
	}
	src.failPage["fin"] = 2
	c := newTestCache(src, 10)

	_, err := c.GetCardsBySetCode(context.Background(), "fin")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expected nothing cached after page failure, got %d entries", c.Len())
	}

	// A later attempt retries from scratch and succeeds.
	src.mu.Lock()
	src.failPage["fin"] = 0
	src.mu.Unlock()

	got, err := c.GetCardsBySetCode(context.Background(), "fin")
	if err != nil {
		t.Fatalf("unexpected error on retry: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("expected 3 cards after retry, got %d", len(got))
	}
}

func TestGetCardsBySetCode_SingleFlight(t *testing.T) {
	src := newFakeSource("fin")
	src.pages["fin"] = []page{{cards: cards("c1", "c2"), hasMore: false}}
	src.fetchLag = 50 * time.Millisecond
	c := newTestCache(src, 10)

	const n = 16
	results := make([][]domain.CardSummary, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.GetCardsBySetCode(context.Background(), "FIN")
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: unexpected error: %v", i, errs[i])
		}
		if len(results[i]) != 2 || results[i][0].Name != "c1" {
			t.Fatalf("caller %d: unexpected result %+v", i, results[i])
		}
	}
	if src.pageCalls["fin"] != 1 {
		t.Errorf("expected exactly 1 upstream pagination sequence, got %d", src.pageCalls["fin"])
	}
}

func TestGetCardsBySetCode_LRUEviction(t *testing.T) {
	src := newFakeSource("aaa", "bbb", "ccc")
	for _, code := range []string{"aaa", "bbb", "ccc"} {
		src.pages[code] = []page{{cards: cards(code + "-1"), hasMore: false}}
	}
	c := newTestCache(src, 2)

	ctx := context.Background()
	if _, err := c.GetCardsBySetCode(ctx, "aaa"); err != nil {
		t.Fatal(err)
	}
	if _, err := c.GetCardsBySetCode(ctx, "bbb"); err != nil {
		t.Fatal(err)
	}
	// Touch aaa so bbb becomes the least recently used entry.
	if _, err := c.GetCardsBySetCode(ctx, "aaa"); err != nil {
		t.Fatal(err)
	}
	// ccc exceeds the capacity and evicts bbb.
	if _, err := c.GetCardsBySetCode(ctx, "ccc"); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 2 {
		t.Fatalf("expected 2 cached pools, got %d", c.Len())
	}

	if _, err := c.GetCardsBySetCode(ctx, "bbb"); err != nil {
		t.Fatal(err)
	}
	if src.pageCalls["bbb"] != 2 {
		t.Errorf("expected bbb to be refetched after eviction, got %d fetches", src.pageCalls["bbb"])
	}
	if src.pageCalls["aaa"] != 1 {
		t.Errorf("expected aaa to stay cached, got %d fetches", src.pageCalls["aaa"])
	}
}

func TestGetCardsBySetCode_CancelledFirstCallerDoesNotFailWaiters(t *testing.T) {
	src := newFakeSource("fin")
	src.pages["fin"] = []page{{cards: cards("c1", "c2"), hasMore: false}}
	src.fetchLag = 150 * time.Millisecond
	c := newTestCache(src, 10)

	// The caller that triggers the fetch is cancelled mid-flight, the way a
	// superseded job is.
	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := c.GetCardsBySetCode(leaderCtx, "fin")
		leaderErr <- err
	}()

	time.Sleep(30 * time.Millisecond)
	waiterRes := make(chan []domain.CardSummary, 1)
	waiterErr := make(chan error, 1)
	go func() {
		got, err := c.GetCardsBySetCode(context.Background(), "fin")
		waiterRes <- got
		waiterErr <- err
	}()

	time.Sleep(30 * time.Millisecond)
	cancelLeader()

	if err := <-leaderErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller: expected context.Canceled, got %v", err)
	}
	if err := <-waiterErr; err != nil {
		t.Fatalf("waiter with a live context failed: %v", err)
	}
	got := <-waiterRes
	if len(got) != 2 || got[0].Name != "c1" {
		t.Fatalf("waiter got a partial result: %+v", got)
	}
	if src.pageCalls["fin"] != 1 {
		t.Errorf("expected exactly 1 upstream pagination sequence, got %d", src.pageCalls["fin"])
	}
}

func TestGetAllSets_CancelledFirstCallerDoesNotFailWaiters(t *testing.T) {
	src := newFakeSource("fin")
	src.setLag = 150 * time.Millisecond
	c := newTestCache(src, 10)

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := c.GetAllSets(leaderCtx)
		leaderErr <- err
	}()

	time.Sleep(30 * time.Millisecond)
	cancelLeader()

	if err := <-leaderErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled caller: expected context.Canceled, got %v", err)
	}

	sets, err := c.GetAllSets(context.Background())
	if err != nil {
		t.Fatalf("follow-up caller failed: %v", err)
	}
	if len(sets) != 1 || sets[0].Code != "fin" {
		t.Fatalf("unexpected sets: %+v", sets)
	}
	if src.setCalls != 1 {
		t.Errorf("expected exactly 1 upstream set fetch, got %d", src.setCalls)
	}
}

func TestGetCardsBySetCode_AbandonedWaitLeavesEntryUsable(t *testing.T) {
	src := newFakeSource("fin")
	src.pages["fin"] = []page{{cards: cards("c1"), hasMore: false}}
	src.fetchLag = 100 * time.Millisecond
	c := newTestCache(src, 10)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.GetCardsBySetCode(ctx, "fin")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded for the abandoning caller, got %v", err)
	}

	// The fetch completes on its own; the next caller hits the cache.
	time.Sleep(150 * time.Millisecond)
	got, err := c.GetCardsBySetCode(context.Background(), "fin")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "c1" {
		t.Fatalf("unexpected cards: %+v", got)
	}
	if src.pageCalls["fin"] != 1 {
		t.Errorf("expected the abandoned fetch to be reused, got %d fetches", src.pageCalls["fin"])
	}
}

func TestGetCardsBySetCode_InFlightEntriesAreNeverEvicted(t *testing.T) {
	src := newFakeSource("aaa", "bbb", "ccc")
	for _, code := range []string{"aaa", "bbb", "ccc"} {
		src.pages[code] = []page{{cards: cards(code + "-1"), hasMore: false}}
	}
	src.gate = make(chan struct{})
	c := newTestCache(src, 1)

	// Two concurrent cold fetches exceed the capacity while both are still
	// in flight; neither may be evicted mid-fetch.
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, code := range []string{"aaa", "bbb"} {
		wg.Add(1)
		go func(i int, code string) {
			defer wg.Done()
			_, errs[i] = c.GetCardsBySetCode(context.Background(), code)
		}(i, code)
	}

	// Both entries registered and held in flight before the gate opens.
	deadline := time.Now().Add(2 * time.Second)
	for c.Len() != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 2 in-flight entries, got %d", c.Len())
		}
		time.Sleep(time.Millisecond)
	}
	close(src.gate)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent caller %d failed: %v", i, err)
		}
	}
	if c.Len() != 2 {
		t.Fatalf("expected both in-flight entries retained, got %d", c.Len())
	}

	// The next insertion trims the completed entries back to capacity.
	if _, err := c.GetCardsBySetCode(context.Background(), "ccc"); err != nil {
		t.Fatal(err)
	}
	if c.Len() != 1 {
		t.Errorf("expected capacity restored after completed entries were evictable, got %d", c.Len())
	}
	if src.pageCalls["ccc"] != 1 {
		t.Errorf("expected 1 fetch for ccc, got %d", src.pageCalls["ccc"])
	}
}
