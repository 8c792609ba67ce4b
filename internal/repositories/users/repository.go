package users

import (
	"context"

	"github.com/lettucedream/roster/internal/identifier"
	"github.com/lettucedream/roster/internal/models"
)

type Repository interface {
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id identifier.ID) (*models.User, error)
	// FindByIDForUpdate is FindByID that also locks the row until the
	// surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id identifier.ID) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}
