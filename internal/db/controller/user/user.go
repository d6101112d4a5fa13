// Package user provides lookup and provisioning operations for user accounts.
package user

import (
	"errors"

	"gorm.io/gorm"

	"github.com/lootledger/lootledger/internal/db/models"
)

const (
	snowflakeQueryPattern = "snowflake = ?"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrSnowflakeEmpty is returned when attempting to query or create a user with an empty snowflake.
	ErrSnowflakeEmpty = errors.New("user snowflake cannot be empty")
	// ErrUserAlreadyExists is returned when attempting to create a user whose snowflake is already taken.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// GetBySnowflake retrieves a user by its Discord snowflake.
func GetBySnowflake(db *gorm.DB, snowflake string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if snowflake == "" {
		return nil, ErrSnowflakeEmpty
	}

	var user models.User
	result := db.Where(snowflakeQueryPattern, snowflake).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &user, nil
}

// GetByID retrieves a user by its primary key.
func GetByID(db *gorm.DB, id uint64) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var user models.User
	result := db.First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}

	return &user, nil
}

// Create provisions a new user account for the given Discord identity.
func Create(db *gorm.DB, username, snowflake, avatarURL string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if snowflake == "" {
		return nil, ErrSnowflakeEmpty
	}

	// Check if the snowflake is already taken
	var existing models.User
	result := db.Where(snowflakeQueryPattern, snowflake).First(&existing)
	if result.Error == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	user := &models.User{
		Username:  username,
		Snowflake: snowflake,
		AvatarURL: avatarURL,
	}

	result = db.Create(user)
	if result.Error != nil {
		return nil, result.Error
	}

	return user, nil
}
