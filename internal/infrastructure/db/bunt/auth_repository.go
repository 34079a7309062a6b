package bunt

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/buntdb"

	"github.com/ZaspDragon/timeclock-api/internal/core/domain"
)

const userKeyPrefix = "user:"

// AuthRepository stores one JSON user per "user:<email>" key, keeping the
// local backend self-contained: no external services needed at all.
type AuthRepository struct {
	db *buntdb.DB
}

func NewAuthRepository(db *buntdb.DB) *AuthRepository {
	return &AuthRepository{db: db}
}

func (r *AuthRepository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	created := *user
	created.ID = newUserID()

	err := r.db.Update(func(tx *buntdb.Tx) error {
		key := userKeyPrefix + user.Email
		if _, err := tx.Get(key); err == nil {
			return domain.ErrUserExists
		} else if !errors.Is(err, buntdb.ErrNotFound) {
			return err
		}

		bs, err := json.Marshal(storedUser(created))
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
		_, _, err = tx.Set(key, string(bs), nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (r *AuthRepository) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	var su storedUser
	err := r.db.View(func(tx *buntdb.Tx) error {
		v, err := tx.Get(userKeyPrefix + email)
		if err != nil {
			return err
		}
		return json.Unmarshal([]byte(v), &su)
	})
	if errors.Is(err, buntdb.ErrNotFound) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read user: %w", err)
	}
	u := domain.User(su)
	return &u, nil
}

// storedUser re-declares User with the password hash included in JSON; the
// domain struct hides it from API responses with `json:"-"`.
type storedUser struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Company      string    `json:"company"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// newUserID returns a random 12-hex-digit identifier.
func newUserID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		// fallback: use current nanoseconds
		return fmt.Sprintf("%012x", time.Now().UnixNano()&0xFFFFFFFFFFFF)
	}
	return fmt.Sprintf("%x", b)
}
