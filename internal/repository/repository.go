package repository

import (
	"context"

	"github.com/arenadeck/deckscout/internal/domain"
)

// DeckRepository defines persistence for registered decks.
type DeckRepository interface {
	// GetByID fetches a deck, failing with domain.ErrDeckNotFound if absent.
	GetByID(ctx context.Context, id int) (*domain.Deck, error)

	// List returns all registered decks.
	List(ctx context.Context) ([]*domain.Deck, error)

	// Save inserts or updates a deck and returns the stored version.
	Save(ctx context.Context, deck *domain.Deck) (*domain.Deck, error)

	// Delete removes a deck by ID.
	Delete(ctx context.Context, id int) error
}

// SetRepository defines persistence for registered card sets.
type SetRepository interface {
	// GetByID fetches a set, failing with domain.ErrSetNotFound if absent.
	GetByID(ctx context.Context, id int) (*domain.MtgSet, error)

	// List returns all registered sets.
	List(ctx context.Context) ([]*domain.MtgSet, error)

	// Save inserts a set and returns the stored version.
	Save(ctx context.Context, set *domain.MtgSet) (*domain.MtgSet, error)

	// Delete removes a set by ID.
	Delete(ctx context.Context, id int) error
}

// ResultStore keeps the last completed recommendation per principal.
type ResultStore interface {
	// Save stores the result for a principal, replacing any prior one.
	Save(ctx context.Context, principal string, result *domain.RecommendationResult) error

	// Get fetches the stored result, failing with domain.ErrNoResult if absent.
	Get(ctx context.Context, principal string) (*domain.RecommendationResult, error)
}
