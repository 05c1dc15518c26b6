package scryfall

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/arenadeck/deckscout/internal/domain"
)

func TestListSets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sets" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != userAgent {
			t.Errorf("unexpected user agent %q", ua)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"has_more":false,"data":[
			{"id":"1","code":"fin","name":"Final Fantasy","set_type":"expansion","card_count":300},
			{"id":"2","code":"dmu","name":"Dominaria United","set_type":"expansion","card_count":281}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	sets, err := c.ListSets(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sets) != 2 || sets[0].Code != "fin" || sets[1].Code != "dmu" {
		t.Fatalf("unexpected sets: %+v", sets)
	}
}

func TestSearchCardsPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/cards/search" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("q") != "e:fin" {
			t.Errorf("unexpected query %q", q.Get("q"))
		}
		switch q.Get("page") {
		case "1":
			w.Write([]byte(`{"total_cards":3,"has_more":true,"data":[{"name":"Card A","rarity":"rare"},{"name":"Card B","rarity":"common"}]}`))
		case "2":
			w.Write([]byte(`{"total_cards":3,"has_more":false,"data":[{"name":"Card C","rarity":"uncommon"}]}`))
		default:
			t.Errorf("unexpected page %q", q.Get("page"))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, zap.NewNop())

	cards, more, err := c.SearchCardsPage(context.Background(), "fin", 1)
	if err != nil {
		t.Fatalf("page 1: unexpected error: %v", err)
	}
	if !more || len(cards) != 2 || cards[0].Name != "Card A" {
		t.Fatalf("page 1: cards=%+v more=%v", cards, more)
	}

	cards, more, err = c.SearchCardsPage(context.Background(), "fin", 2)
	if err != nil {
		t.Fatalf("page 2: unexpected error: %v", err)
	}
	if more || len(cards) != 1 || cards[0].Name != "Card C" {
		t.Fatalf("page 2: cards=%+v more=%v", cards, more)
	}
}

func TestGetJSON_Non200IsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"object":"error","code":"not_found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	_, err := c.ListSets(context.Background())
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestGetJSON_MalformedBodyIsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": [truncated`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second, zap.NewNop())
	_, err := c.ListSets(context.Background())
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestGetJSON_ConnectionRefusedIsUpstreamError(t *testing.T) {
	// Server closed before the request so the dial fails.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(srv.URL, time.Second, zap.NewNop())
	_, err := c.ListSets(context.Background())
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestGetJSON_HonoursContext(t *testing.T) {
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 30*time.Second, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()

	_, err := c.ListSets(ctx)
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected ErrUpstream on cancellation, got %v", err)
	}
}
