package domain

import "time"

// ChainTarget is a queued player whose status is refreshed by the chain-status function.
type ChainTarget struct {
	TornID      int64     `json:"torn_id" dynamodbav:"torn_id"`
	Name        string    `json:"name" dynamodbav:"name"`
	Status      string    `json:"status" dynamodbav:"status"`
	Description string    `json:"description" dynamodbav:"description"`
	Until       int64     `json:"until" dynamodbav:"until"`
	CheckedAt   time.Time `json:"checked_at" dynamodbav:"checked_at"`
}
