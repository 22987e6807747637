package rugcheck

import "time"

// NewToken is one entry from the new-tokens listing.
type NewToken struct {
	Mint      string    `json:"mint"`
	Name      string    `json:"name"`
	Symbol    string    `json:"symbol"`
	Creator   string    `json:"creator"`
	CreatedAt time.Time `json:"createAt"`
}

// summaryResponse is the raw report summary shape.
type summaryResponse struct {
	ScoreNormalised *int           `json:"score_normalised"`
	TokenMeta       *tokenMeta     `json:"tokenMeta"`
	Creator         string         `json:"creator"`
	Risks           []riskResponse `json:"risks"`
}

type tokenMeta struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

type riskResponse struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Level       string `json:"level"`
}
