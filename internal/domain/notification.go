package domain

import "time"

// Notice is a message addressed to a user before device tokens are resolved.
type Notice struct {
	UserID int64
	Kind   string
	Title  string
	Body   string
}

// NotificationMessage is one push message for one device token. It is built,
// batched, sent and discarded.
type NotificationMessage struct {
	PushToken string
	Title     string
	Body      string
}

// Notification is the history row written for every notice that was sent.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	UserID         int64     `json:"user_id" dynamodbav:"user_id"`
	Kind           string    `json:"kind" dynamodbav:"kind"`
	Title          string    `json:"title" dynamodbav:"title"`
	Body           string    `json:"body" dynamodbav:"body"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
}
