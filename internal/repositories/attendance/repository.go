package attendance

import (
	"context"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/lettucedream/roster/internal/identifier"
	"github.com/lettucedream/roster/internal/models"
)

type Repository interface {
	Insert(ctx context.Context, a *models.Attendance) error
	// FindByUserID returns the user's visits oldest first. The query runs
	// when the sequence is ranged over, not when FindByUserID is called.
	FindByUserID(ctx context.Context, userID identifier.ID) iter.Seq2[*models.Attendance, error]
	FindOpenByUserID(ctx context.Context, userID identifier.ID) (*models.Attendance, error)
	CountByUserID(ctx context.Context, userID identifier.ID) (int, error)
	Close(ctx context.Context, id uuid.UUID, at time.Time) error
}
