package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/tgienger/tasktrack/internal/models"
)

// UserDirectory is a fixed, read-only list of users
type UserDirectory struct {
	users []models.User
}

// NewUserDirectory creates the directory with its three seeded users
func NewUserDirectory() *UserDirectory {
	now := time.Now().UTC()
	return &UserDirectory{users: []models.User{
		{
			ID:        "1",
			Name:      "Alex Rivera",
			Email:     "alex@example.com",
			Role:      models.RoleAdmin,
			Avatar:    "https://example.com/avatars/alex.png",
			CreatedAt: now,
		},
		{
			ID:        "2",
			Name:      "Morgan Lee",
			Email:     "morgan@example.com",
			Role:      models.RoleManager,
			Avatar:    "https://example.com/avatars/morgan.png",
			CreatedAt: now,
		},
		{
			ID:        "3",
			Name:      "Sam Taylor",
			Email:     "sam@example.com",
			Role:      models.RoleDeveloper,
			CreatedAt: now,
		},
	}}
}

// FindAll returns a copy of every user
func (d *UserDirectory) FindAll(ctx context.Context) ([]models.User, error) {
	return append([]models.User(nil), d.users...), nil
}

// FindByID returns the user with the given ID or models.ErrNotFound
func (d *UserDirectory) FindByID(ctx context.Context, id string) (models.User, error) {
	for _, u := range d.users {
		if u.ID == id {
			return u, nil
		}
	}
	return models.User{}, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
}

// CurrentUser returns the signed-in user. There is no authentication, so
// this is always the first user.
func (d *UserDirectory) CurrentUser(ctx context.Context) (models.User, error) {
	return d.users[0], nil
}
