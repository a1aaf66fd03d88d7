// internal/notification/contacts.go

package notification

import (
	"context"

	"github.com/imadgeboyega/covenant-backend/internal/profile"
)

// Contact holds the per-channel addresses of one user
type Contact struct {
	Name      string
	Email     string
	Phone     string
	PushToken string
}

// ContactLookup resolves a user id to their contact addresses
type ContactLookup interface {
	Contact(ctx context.Context, userID string) (Contact, error)
}

type profileContacts struct {
	store profile.Store
}

// NewProfileContacts reads contacts from the profile store
func NewProfileContacts(store profile.Store) ContactLookup {
	return &profileContacts{store: store}
}

func (c *profileContacts) Contact(ctx context.Context, userID string) (Contact, error) {
	p, err := c.store.GetByID(ctx, userID)
	if err != nil {
		return Contact{}, err
	}
	return Contact{
		Name:      p.Name,
		Email:     p.Email,
		Phone:     p.Phone,
		PushToken: p.PushToken,
	}, nil
}
