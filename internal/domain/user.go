package domain

import "time"

// UserCredential is one user's decrypted Torn API key. It is read fresh on
// every invocation and never stored anywhere else.
type UserCredential struct {
	UserID       int64  `json:"user_id" db:"user_id"`
	DecryptedKey string `json:"-" db:"decrypted_key"`
}

type User struct {
	UserID       int64           `json:"user_id" dynamodbav:"user_id"`
	Name         string          `json:"name" dynamodbav:"name"`
	EncryptedKey string          `json:"-" dynamodbav:"encrypted_key"`
	Enabled      bool            `json:"enabled" dynamodbav:"enabled"`
	NotifyPrefs  map[string]bool `json:"notify_prefs,omitempty" dynamodbav:"notify_prefs,omitempty"`
	UserStatusFlags
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Wants reports whether the user accepts push messages for f.
// A missing preference counts as enabled.
func (u *User) Wants(f Flag) bool {
	if v, ok := u.NotifyPrefs[string(f)]; ok {
		return v
	}
	return true
}
