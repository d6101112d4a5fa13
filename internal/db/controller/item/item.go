// Package item provides CRUD operations for inventory items.
package item

import (
	"errors"

	"gorm.io/gorm"

	"github.com/lootledger/lootledger/internal/db/models"
)

const (
	ownerNameQueryPattern = "owner_id = ? AND name = ?"
)

var (
	// ErrItemNameEmpty is returned when attempting to create/update an item with an empty name.
	ErrItemNameEmpty = errors.New("item name cannot be empty")
	// ErrOwnerIDZero is returned when the owning user id is missing.
	ErrOwnerIDZero = errors.New("item owner id cannot be zero")
	// ErrNegativeCount is returned when an item count below zero is supplied.
	ErrNegativeCount = errors.New("item count cannot be negative")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// ListByOwner retrieves all items owned by the given user, ordered by name.
func ListByOwner(db *gorm.DB, ownerID uint64) ([]models.Item, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if ownerID == 0 {
		return nil, ErrOwnerIDZero
	}

	var items []models.Item
	result := db.Where("owner_id = ?", ownerID).Order("name").Find(&items)
	if result.Error != nil {
		return nil, result.Error
	}

	return items, nil
}

// Upsert creates an item or updates the count of an existing (owner, name) entry.
func Upsert(db *gorm.DB, ownerID uint64, name string, count int) (*models.Item, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if ownerID == 0 {
		return nil, ErrOwnerIDZero
	}
	if name == "" {
		return nil, ErrItemNameEmpty
	}
	if count < 0 {
		return nil, ErrNegativeCount
	}

	var item models.Item
	result := db.Where(ownerNameQueryPattern, ownerID, name).First(&item)

	switch {
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		item = models.Item{
			OwnerID: ownerID,
			Name:    name,
			Count:   count,
		}

		if err := db.Create(&item).Error; err != nil {
			return nil, err
		}
	case result.Error != nil:
		return nil, result.Error
	default:
		item.Count = count

		if err := db.Save(&item).Error; err != nil {
			return nil, err
		}
	}

	return &item, nil
}

// Delete removes an item owned by the given user. Deleting a missing item is a no-op.
func Delete(db *gorm.DB, ownerID uint64, name string) error {
	if db == nil {
		return ErrDBNil
	}
	if ownerID == 0 {
		return ErrOwnerIDZero
	}
	if name == "" {
		return ErrItemNameEmpty
	}

	return db.Where(ownerNameQueryPattern, ownerID, name).Delete(&models.Item{}).Error
}
