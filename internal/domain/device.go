package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

type Device struct {
	DeviceID  string    `json:"id" dynamodbav:"device_id"`
	UserID    int64     `json:"user_id" dynamodbav:"user_id"`
	Token     string    `json:"token" dynamodbav:"token"` // push token, or SNS endpoint ARN
	Platform  string    `json:"platform" dynamodbav:"platform"`
	Enable    bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

// DeviceIDForToken is the devices table key for a push token. One token maps
// to one row.
func DeviceIDForToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:16])
}
