package model

import "time"

// User is a registered account keyed by the Telegram handle.
// The UUID is generated when a signup conversation starts; the row only
// exists once the user has picked a default currency.
type User struct {
	UserUUID            string `gorm:"primaryKey;size:36"`
	TelegramAccount     string `gorm:"uniqueIndex"`
	DefaultCurrencyCode string
	ChatID              int64
	FirstName           string
	LastName            string
	Email               string
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
