package user

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User is the read-only projection of a registered user.
type User struct {
	id        uuid.UUID
	name      string
	email     string
	updatedAt time.Time
}

// Reconstruct rebuilds a User from persistence or catalog event data.
func Reconstruct(id uuid.UUID, name, email string, updatedAt time.Time) *User {
	return &User{id: id, name: name, email: email, updatedAt: updatedAt}
}

func (u *User) ID() uuid.UUID        { return u.id }
func (u *User) Name() string         { return u.name }
func (u *User) Email() string        { return u.email }
func (u *User) UpdatedAt() time.Time { return u.updatedAt }

// UserRepository defines read and sync operations on the user projection.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*User, error)
	Upsert(ctx context.Context, user *User) error
}
