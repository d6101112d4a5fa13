// Package session implements the server-side session lifecycle.
//
// A session is an opaque random id mapped to a small JSON record in the
// configured storage backend. The Manager owns the three lifecycle
// operations: Create on a successful login handshake, Validate on every
// guarded request, and Invalidate on logout. Absence of a session is a
// normal outcome, not an error.
package session

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/gofiber/storage"
	"gorm.io/gorm"

	"github.com/lootledger/lootledger/internal/db/controller/user"
	"github.com/lootledger/lootledger/internal/db/models"
)

// CookieName is the name of the session cookie.
const CookieName = "session"

// Data represents the stored session record.
type Data struct {
	UserID uint64
}

// Manager owns the session lifecycle against a storage backend and the user directory.
type Manager struct {
	store  *fibersession.Store
	db     *gorm.DB
	expiry time.Duration
}

// New creates a session Manager on top of the provided storage backend.
func New(st storage.Storage, db *gorm.DB, expiry time.Duration) *Manager {
	if st == nil {
		panic("storage is nil")
	}

	if db == nil {
		panic("db is nil")
	}

	return &Manager{
		store: fibersession.New(fibersession.Config{
			Storage: st,
		}),
		db:     db,
		expiry: expiry,
	}
}

// Expiry returns the configured session lifetime.
func (m *Manager) Expiry() time.Duration {
	return m.expiry
}

// Create allocates a new session owned by the given user and returns its id.
func (m *Manager) Create(userID uint64) (string, error) {
	sessionID, err := GenerateSessionID()
	if err != nil {
		return "", err
	}

	out, err := json.Marshal(Data{UserID: userID})
	if err != nil {
		return "", err
	}

	if err = m.store.Storage.Set(sessionID, out, m.expiry); err != nil {
		return "", err
	}

	return sessionID, nil
}

// Validate looks up a session id and resolves its owning user.
// A missing, expired or malformed session and a session whose user no longer
// exists all report absent; only storage failures surface as errors.
func (m *Manager) Validate(sessionID string) (*models.User, bool, error) {
	if sessionID == "" {
		return nil, false, nil
	}

	raw, err := m.store.Storage.Get(sessionID)
	if err != nil {
		return nil, false, err
	}

	if len(raw) == 0 {
		return nil, false, nil
	}

	var data Data
	if err = json.Unmarshal(raw, &data); err != nil || data.UserID == 0 {
		// unreadable record, drop it
		_ = m.store.Storage.Delete(sessionID)

		return nil, false, nil
	}

	owner, err := user.GetByID(m.db, data.UserID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			// orphaned session, drop it so it never validates again
			_ = m.store.Storage.Delete(sessionID)

			return nil, false, nil
		}

		return nil, false, err
	}

	return owner, true, nil
}

// Invalidate deletes a session. Invalidating a missing or already
// invalidated session is a no-op.
func (m *Manager) Invalidate(sessionID string) error {
	if sessionID == "" {
		return nil
	}

	return m.store.Storage.Delete(sessionID)
}

// GenerateSessionID generates a new secure random session ID.
func GenerateSessionID() (string, error) {
	// 32 bytes = 256 bits
	b := make([]byte, 32) //nolint:mnd
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
