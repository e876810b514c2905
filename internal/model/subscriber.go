package model

import "time"

// Subscriber is a Telegram chat receiving the periodic household summary.
type Subscriber struct {
	ChatID       int64     `json:"chat_id"`
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	SubscribedAt time.Time `json:"subscribed_at"`
}
