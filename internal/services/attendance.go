package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/lettucedream/roster/internal/common"
	"github.com/lettucedream/roster/internal/dbx"
	"github.com/lettucedream/roster/internal/identifier"
	"github.com/lettucedream/roster/internal/logging"
	"github.com/lettucedream/roster/internal/models"
	"github.com/lettucedream/roster/internal/repositories/repomanager"
)

// AttendanceService records visits. A user with an open visit is
// INCOMPLETE; checking out marks them COMPLETE again.
type AttendanceService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	now         func() time.Time
}

func NewAttendanceService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *AttendanceService {
	return &AttendanceService{db: db, repomanager: m, logger: logger, now: time.Now}
}

// CheckIn opens a visit for userID. A second check-in while a visit is open
// is rejected.
func (s *AttendanceService) CheckIn(ctx context.Context, userID identifier.ID, note string) (*models.Attendance, error) {
	var visit *models.Attendance

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		visits := s.repomanager.Attendance(tx)
		if open, err := visits.FindOpenByUserID(ctx, userID); err == nil {
			return fmt.Errorf("%w: %s is already checked in since %s", common.ErrorValidation, userID, open.CheckIn.Format(time.RFC3339))
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		visit, err = models.NewAttendance(userID, s.now().UTC(), note)
		if err != nil {
			return err
		}
		if err := visits.Insert(ctx, visit); err != nil {
			return err
		}

		user.AttendanceStatus = models.AttendanceIncomplete
		return s.repomanager.Users(tx).Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "checked in", "user_id", userID.String(), "attendance_id", visit.ID.String())
	return visit, nil
}

// CheckOut closes the user's open visit. Without one it returns
// common.ErrorNotFound.
func (s *AttendanceService) CheckOut(ctx context.Context, userID identifier.ID) (*models.Attendance, error) {
	var visit *models.Attendance

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		user, err := s.lockUser(ctx, tx, userID)
		if err != nil {
			return err
		}

		visits := s.repomanager.Attendance(tx)
		visit, err = visits.FindOpenByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return fmt.Errorf("%w: %s has no open visit", common.ErrorNotFound, userID)
			}
			return err
		}
		if err := visit.Close(s.now().UTC()); err != nil {
			return err
		}
		if err := visits.Close(ctx, visit.ID, *visit.CheckOut); err != nil {
			return err
		}

		user.AttendanceStatus = models.AttendanceComplete
		return s.repomanager.Users(tx).Update(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "checked out", "user_id", userID.String(), "attendance_id", visit.ID.String(), "duration", visit.Duration())
	return visit, nil
}

// History yields the user's visits oldest first. Nothing is queried until
// the sequence is ranged over; an unknown user yields common.ErrUnknownUser.
func (s *AttendanceService) History(ctx context.Context, userID identifier.ID) iter.Seq2[*models.Attendance, error] {
	return func(yield func(*models.Attendance, error) bool) {
		if _, err := s.findUser(ctx, s.db, userID); err != nil {
			yield(nil, err)
			return
		}
		for a, err := range s.repomanager.Attendance(s.db).FindByUserID(ctx, userID) {
			if !yield(a, err) {
				return
			}
		}
	}
}

// Visits counts the user's recorded visits.
func (s *AttendanceService) Visits(ctx context.Context, userID identifier.ID) (int, error) {
	if _, err := s.findUser(ctx, s.db, userID); err != nil {
		return 0, err
	}
	return s.repomanager.Attendance(s.db).CountByUserID(ctx, userID)
}

func (s *AttendanceService) findUser(ctx context.Context, db dbx.DBTX, userID identifier.ID) (*models.User, error) {
	u, err := s.repomanager.Users(db).FindByID(ctx, userID)
	return u, unknownUser(err, userID)
}

// lockUser is findUser holding the user's row until tx ends, so check-ins
// and check-outs of one user run one at a time.
func (s *AttendanceService) lockUser(ctx context.Context, tx dbx.DBTX, userID identifier.ID) (*models.User, error) {
	u, err := s.repomanager.Users(tx).FindByIDForUpdate(ctx, userID)
	return u, unknownUser(err, userID)
}

// unknownUser reports a missing user as common.ErrUnknownUser.
func unknownUser(err error, userID identifier.ID) error {
	if errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("%w: %s", common.ErrUnknownUser, userID)
	}
	return err
}
