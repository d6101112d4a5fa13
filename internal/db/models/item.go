package models

import (
	"time"
)

// Item represents a single inventory entry owned by a user.
// An owner holds at most one entry per item name; repeated adds update the count.
type Item struct {
	// ID is the unique identifier for the item.
	ID uint64 `gorm:"primaryKey"`
	// OwnerID references the owning user.
	OwnerID uint64 `gorm:"uniqueIndex:idx_items_owner_name;not null"`
	// Name is the item name, unique per owner.
	Name string `gorm:"uniqueIndex:idx_items_owner_name;size:100;not null"`
	// Count is the number of pieces the owner holds.
	Count int `gorm:"not null"`
	// CreatedAt is the timestamp when the item was created (managed by GORM).
	CreatedAt time.Time
	// UpdatedAt is the timestamp when the item was last updated (managed by GORM).
	UpdatedAt time.Time
}
