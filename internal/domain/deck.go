package domain

import "time"

// Deck represents a registered Arena deck throughout its lifecycle.
type Deck struct {
	ID        int            `json:"id"`
	Name      string         `json:"name"`
	ArenaDeck string         `json:"arena_deck"`
	SetID     int            `json:"set_id"`
	Identity  ColorIdentity  `json:"identity"`
	Cards     map[string]int `json:"cards"`
	Tags      []string       `json:"tags,omitempty"`
	Notes     string         `json:"notes,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// MtgSet is a card set a user has registered decks against.
type MtgSet struct {
	ID        int       `json:"id"`
	Code      string    `json:"code"`
	CreatedAt time.Time `json:"created_at"`
}

// CardSummary is the slice of upstream card data the scorer consumes.
// Field names follow the upstream catalog wire format.
type CardSummary struct {
	Name          string   `json:"name"`
	Rarity        string   `json:"rarity"`
	ColorIdentity []string `json:"color_identity"`
	TypeLine      string   `json:"type_line,omitempty"`
	OracleText    string   `json:"oracle_text,omitempty"`
	Keywords      []string `json:"keywords,omitempty"`
}
