package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/arenadeck/deckscout/internal/domain"
	"github.com/arenadeck/deckscout/internal/repository"
)

// Ensure pgDeckRepo implements repository.DeckRepository.
var _ repository.DeckRepository = (*pgDeckRepo)(nil)

type pgDeckRepo struct {
	pool *pgxpool.Pool
}

// NewDeckRepository creates a PostgreSQL-backed deck repository.
func NewDeckRepository(pool *pgxpool.Pool) repository.DeckRepository {
	return &pgDeckRepo{pool: pool}
}

const deckColumns = `id, name, arena_deck, set_id, primary_color, colors, cards, tags, notes, created_at`

func (r *pgDeckRepo) GetByID(ctx context.Context, id int) (*domain.Deck, error) {
	query := `SELECT ` + deckColumns + ` FROM decks WHERE id = $1`

	deck, err := scanDeck(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDeckNotFound
		}
		return nil, fmt.Errorf("postgres: get deck by id: %w", err)
	}
	return deck, nil
}

func (r *pgDeckRepo) List(ctx context.Context) ([]*domain.Deck, error) {
	query := `SELECT ` + deckColumns + ` FROM decks ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: list decks: %w", err)
	}
	defer rows.Close()

	var decks []*domain.Deck
	for rows.Next() {
		deck, err := scanDeck(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan deck: %w", err)
		}
		decks = append(decks, deck)
	}
	return decks, rows.Err()
}

func (r *pgDeckRepo) Save(ctx context.Context, deck *domain.Deck) (*domain.Deck, error) {
	cards, err := json.Marshal(deck.Cards)
	if err != nil {
		return nil, fmt.Errorf("postgres: marshal deck cards: %w", err)
	}

	colors := make([]string, 0, len(deck.Identity.Colors))
	for _, c := range deck.Identity.Colors {
		colors = append(colors, string(c))
	}

	if deck.ID == 0 {
		query := `
			INSERT INTO decks (name, arena_deck, set_id, primary_color, colors, cards, tags, notes, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, created_at`

		now := time.Now().UTC()
		err = r.pool.QueryRow(ctx, query,
			deck.Name, deck.ArenaDeck, deck.SetID, string(deck.Identity.Primary),
			colors, cards, deck.Tags, deck.Notes, now,
		).Scan(&deck.ID, &deck.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("postgres: insert deck: %w", err)
		}
		return deck, nil
	}

	query := `
		UPDATE decks
		SET name = $1, arena_deck = $2, set_id = $3, primary_color = $4,
		    colors = $5, cards = $6, tags = $7, notes = $8
		WHERE id = $9`

	tag, err := r.pool.Exec(ctx, query,
		deck.Name, deck.ArenaDeck, deck.SetID, string(deck.Identity.Primary),
		colors, cards, deck.Tags, deck.Notes, deck.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: update deck: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrDeckNotFound
	}
	return deck, nil
}

func (r *pgDeckRepo) Delete(ctx context.Context, id int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM decks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: delete deck: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDeckNotFound
	}
	return nil
}

func scanDeck(row pgx.Row) (*domain.Deck, error) {
	deck := &domain.Deck{}
	var primary string
	var colors []string
	var cards []byte

	err := row.Scan(
		&deck.ID, &deck.Name, &deck.ArenaDeck, &deck.SetID,
		&primary, &colors, &cards, &deck.Tags, &deck.Notes, &deck.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	deck.Identity.Primary = domain.Color(primary)
	for _, c := range colors {
		deck.Identity.Colors = append(deck.Identity.Colors, domain.Color(c))
	}
	if len(cards) > 0 {
		if err := json.Unmarshal(cards, &deck.Cards); err != nil {
			return nil, fmt.Errorf("unmarshal deck cards: %w", err)
		}
	}
	return deck, nil
}
