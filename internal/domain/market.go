package domain

import "time"

type Item struct {
	ID                int64     `json:"id" dynamodbav:"id"`
	Name              string    `json:"name" dynamodbav:"name"`
	Type              string    `json:"type" dynamodbav:"type"`
	MarketValue       int64     `json:"market_value" dynamodbav:"market_value"`
	Circulation       int64     `json:"circulation" dynamodbav:"circulation"`
	Watched           bool      `json:"watched" dynamodbav:"watched"`
	LowestBazaarPrice int64     `json:"lowest_bazaar_price" dynamodbav:"lowest_bazaar_price"`
	UpdatedAt         time.Time `json:"updated" dynamodbav:"updated_at"`
}

type Stock struct {
	StockID       int64     `json:"stock_id" dynamodbav:"stock_id"`
	Acronym       string    `json:"acronym" dynamodbav:"acronym"`
	Name          string    `json:"name" dynamodbav:"name"`
	CurrentPrice  float64   `json:"current_price" dynamodbav:"current_price"`
	PreviousPrice float64   `json:"previous_price" dynamodbav:"previous_price"`
	ChangePercent float64   `json:"change_percent" dynamodbav:"change_percent"`
	UpdatedAt     time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Event is one entry of a user's Torn event log.
type Event struct {
	LogHash   string    `json:"log_hash" dynamodbav:"log_hash"`
	UserID    int64     `json:"user_id" dynamodbav:"user_id"`
	EventID   string    `json:"event_id" dynamodbav:"event_id"`
	Timestamp int64     `json:"timestamp" dynamodbav:"timestamp"`
	Text      string    `json:"text" dynamodbav:"text"`
	Seen      bool      `json:"seen" dynamodbav:"seen"`
	SyncedAt  time.Time `json:"synced_at" dynamodbav:"synced_at"`
}
