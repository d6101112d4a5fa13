package models

import (
	"time"
)

// User represents a player account in the system.
// Accounts are provisioned on the first successful Discord sign-in and are
// looked up by their provider snowflake on every following login.
type User struct {
	// ID is the unique identifier for the user.
	ID uint64 `gorm:"primaryKey"`
	// Username is the display name taken from the Discord profile.
	Username string `gorm:"size:100;not null"`
	// Snowflake is the Discord user id. Exactly one account exists per snowflake.
	Snowflake string `gorm:"uniqueIndex;size:32;not null"`
	// AvatarURL is the CDN URL of the user's Discord avatar (may be empty).
	AvatarURL string `gorm:"size:255"`
	// CreatedAt is the timestamp when the user was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time
}
