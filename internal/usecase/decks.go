package usecase

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/arenadeck/deckscout/internal/domain"
	"github.com/arenadeck/deckscout/internal/repository"
)

// DeckUsecase handles CRUD for registered decks.
type DeckUsecase struct {
	decks  repository.DeckRepository
	sets   repository.SetRepository
	logger *zap.Logger
}

// NewDeckUsecase creates a new DeckUsecase.
func NewDeckUsecase(decks repository.DeckRepository, sets repository.SetRepository, logger *zap.Logger) *DeckUsecase {
	return &DeckUsecase{decks: decks, sets: sets, logger: logger}
}

// Get fetches a deck by ID.
func (uc *DeckUsecase) Get(ctx context.Context, id int) (*domain.Deck, error) {
	return uc.decks.GetByID(ctx, id)
}

// List returns all registered decks.
func (uc *DeckUsecase) List(ctx context.Context) ([]*domain.Deck, error) {
	return uc.decks.List(ctx)
}

// Save validates and persists a deck.
func (uc *DeckUsecase) Save(ctx context.Context, deck *domain.Deck) (*domain.Deck, error) {
	if strings.TrimSpace(deck.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalidDeck)
	}
	if !deck.Identity.Primary.IsValid() {
		return nil, fmt.Errorf("%w: invalid primary color %q", domain.ErrInvalidDeck, deck.Identity.Primary)
	}
	for _, c := range deck.Identity.Colors {
		if !c.IsValid() {
			return nil, fmt.Errorf("%w: invalid color %q", domain.ErrInvalidDeck, c)
		}
	}
	// The deck must reference a registered set.
	if _, err := uc.sets.GetByID(ctx, deck.SetID); err != nil {
		return nil, err
	}

	saved, err := uc.decks.Save(ctx, deck)
	if err != nil {
		return nil, err
	}
	uc.logger.Info("Deck saved",
		zap.Int("deck_id", saved.ID),
		zap.String("name", saved.Name),
	)
	return saved, nil
}

// Delete removes a deck by ID.
func (uc *DeckUsecase) Delete(ctx context.Context, id int) error {
	return uc.decks.Delete(ctx, id)
}

// SetUsecase handles CRUD for registered card sets.
type SetUsecase struct {
	sets   repository.SetRepository
	logger *zap.Logger
}

// NewSetUsecase creates a new SetUsecase.
func NewSetUsecase(sets repository.SetRepository, logger *zap.Logger) *SetUsecase {
	return &SetUsecase{sets: sets, logger: logger}
}

// Get fetches a set by ID.
func (uc *SetUsecase) Get(ctx context.Context, id int) (*domain.MtgSet, error) {
	return uc.sets.GetByID(ctx, id)
}

// List returns all registered sets.
func (uc *SetUsecase) List(ctx context.Context) ([]*domain.MtgSet, error) {
	return uc.sets.List(ctx)
}

// Save persists a set registration.
func (uc *SetUsecase) Save(ctx context.Context, set *domain.MtgSet) (*domain.MtgSet, error) {
	if strings.TrimSpace(set.Code) == "" {
		return nil, fmt.Errorf("%w: code is required", domain.ErrInvalidSet)
	}
	set.Code = strings.ToLower(set.Code)
	return uc.sets.Save(ctx, set)
}

// Delete removes a set by ID.
func (uc *SetUsecase) Delete(ctx context.Context, id int) error {
	return uc.sets.Delete(ctx, id)
}
