package scryfall

import "github.com/arenadeck/deckscout/internal/domain"

// Set describes one entry of the upstream set catalog.
type Set struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	ReleasedAt    string `json:"released_at,omitempty"`
	SetType       string `json:"set_type"`
	CardCount     int    `json:"card_count"`
	Digital       bool   `json:"digital"`
	ParentSetCode string `json:"parent_set_code,omitempty"`
}

// setListResponse is the wire shape of GET /sets.
type setListResponse struct {
	HasMore bool  `json:"has_more"`
	Data    []Set `json:"data"`
}

// cardListResponse is the wire shape of one GET /cards/search page.
type cardListResponse struct {
	TotalCards int                  `json:"total_cards"`
	HasMore    bool                 `json:"has_more"`
	NextPage   string               `json:"next_page,omitempty"`
	Data       []domain.CardSummary `json:"data"`
}
