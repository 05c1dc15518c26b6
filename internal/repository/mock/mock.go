package mock

import (
	"context"
	"sync"

	"github.com/arenadeck/deckscout/internal/domain"
	"github.com/arenadeck/deckscout/internal/repository"
)

var (
	_ repository.DeckRepository = (*DeckRepository)(nil)
	_ repository.SetRepository  = (*SetRepository)(nil)
	_ repository.ResultStore    = (*ResultStore)(nil)
)

// DeckRepository is an in-memory mock with error hooks for testing.
type DeckRepository struct {
	mu    sync.RWMutex
	decks map[int]*domain.Deck
	next  int

	GetByIDFunc func(ctx context.Context, id int) (*domain.Deck, error)
}

// NewDeckRepository creates an empty mock deck repository.
func NewDeckRepository() *DeckRepository {
	return &DeckRepository{decks: make(map[int]*domain.Deck), next: 1}
}

func (m *DeckRepository) GetByID(ctx context.Context, id int) (*domain.Deck, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	deck, ok := m.decks[id]
	if !ok {
		return nil, domain.ErrDeckNotFound
	}
	return deck, nil
}

func (m *DeckRepository) List(ctx context.Context) ([]*domain.Deck, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	decks := make([]*domain.Deck, 0, len(m.decks))
	for _, d := range m.decks {
		decks = append(decks, d)
	}
	return decks, nil
}

func (m *DeckRepository) Save(ctx context.Context, deck *domain.Deck) (*domain.Deck, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if deck.ID == 0 {
		deck.ID = m.next
		m.next++
	}
	m.decks[deck.ID] = deck
	return deck, nil
}

func (m *DeckRepository) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.decks[id]; !ok {
		return domain.ErrDeckNotFound
	}
	delete(m.decks, id)
	return nil
}

// SetRepository is an in-memory mock with error hooks for testing.
type SetRepository struct {
	mu   sync.RWMutex
	sets map[int]*domain.MtgSet
	next int

	GetByIDFunc func(ctx context.Context, id int) (*domain.MtgSet, error)
}

// NewSetRepository creates an empty mock set repository.
func NewSetRepository() *SetRepository {
	return &SetRepository{sets: make(map[int]*domain.MtgSet), next: 1}
}

func (m *SetRepository) GetByID(ctx context.Context, id int) (*domain.MtgSet, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	set, ok := m.sets[id]
	if !ok {
		return nil, domain.ErrSetNotFound
	}
	return set, nil
}

func (m *SetRepository) List(ctx context.Context) ([]*domain.MtgSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sets := make([]*domain.MtgSet, 0, len(m.sets))
	for _, s := range m.sets {
		sets = append(sets, s)
	}
	return sets, nil
}

func (m *SetRepository) Save(ctx context.Context, set *domain.MtgSet) (*domain.MtgSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if set.ID == 0 {
		set.ID = m.next
		m.next++
	}
	m.sets[set.ID] = set
	return set, nil
}

func (m *SetRepository) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sets[id]; !ok {
		return domain.ErrSetNotFound
	}
	delete(m.sets, id)
	return nil
}

// ResultStore is an in-memory mock of the recommendation result store.
type ResultStore struct {
	mu      sync.RWMutex
	results map[string]*domain.RecommendationResult

	SaveFunc func(ctx context.Context, principal string, result *domain.RecommendationResult) error
}

// NewResultStore creates an empty mock result store.
func NewResultStore() *ResultStore {
	return &ResultStore{results: make(map[string]*domain.RecommendationResult)}
}

func (m *ResultStore) Save(ctx context.Context, principal string, result *domain.RecommendationResult) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, principal, result)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results[principal] = result
	return nil
}

func (m *ResultStore) Get(ctx context.Context, principal string) (*domain.RecommendationResult, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	result, ok := m.results[principal]
	if !ok {
		return nil, domain.ErrNoResult
	}
	return result, nil
}
