package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lettucedream/roster/internal/common"
	"github.com/lettucedream/roster/internal/dbx"
	"github.com/lettucedream/roster/internal/identifier"
	"github.com/lettucedream/roster/internal/logging"
	"github.com/lettucedream/roster/internal/models"
	"github.com/lettucedream/roster/internal/repositories/repomanager"
)

type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	generator   *identifier.Generator
	sequence    identifier.SequenceDefinition
	validator   *Validator
	logger      logging.Logger
	now         func() time.Time
}

// NewUserService resolves the user sequence up front so a missing definition
// fails at startup rather than on the first sign-up.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, gen *identifier.Generator,
	sequences *identifier.Registry, sequenceName string, logger logging.Logger) (*UserService, error) {

	def, err := sequences.Lookup(sequenceName)
	if err != nil {
		return nil, err
	}

	v, err := NewValidator()
	if err != nil {
		return nil, err
	}

	return &UserService{
		db:          db,
		repomanager: m,
		generator:   gen,
		sequence:    def,
		validator:   v,
		logger:      logger,
		now:         time.Now,
	}, nil
}

// Create validates in, mints an id and stores the user. If minting fails
// nothing is written. A duplicate id is reported as an alert and returned;
// it is never resolved by minting again.
func (s *UserService) Create(ctx context.Context, in models.NewUser) (*models.User, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, err
	}

	id, err := s.generator.Next(ctx, s.sequence)
	if err != nil {
		return nil, fmt.Errorf("error minting user id: %w", err)
	}

	user := in.Build(id, s.now().UTC())

	if err := s.repomanager.Users(s.db).Insert(ctx, user); err != nil {
		if errors.Is(err, common.ErrDuplicateIdentifier) {
			s.logger.Error(ctx, "minted identifier already stored",
				"alert", true, "user_id", id.String(), "sequence", s.sequence.Name, "error", err)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user created", "user_id", id.String(), "role", user.Role)
	return user, nil
}

func (s *UserService) Get(ctx context.Context, id identifier.ID) (*models.User, error) {
	if _, err := s.sequence.Parse(id); err != nil {
		return nil, err
	}
	return s.repomanager.Users(s.db).FindByID(ctx, id)
}

// Update applies upd and stores the result. The id and creation time are
// never changed.
func (s *UserService) Update(ctx context.Context, id identifier.ID, upd models.UserUpdate) (*models.User, error) {
	if upd.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", common.ErrorValidation)
	}
	return s.modify(ctx, id, func(u *models.User) error {
		if err := u.Apply(upd); err != nil {
			return err
		}
		return s.validator.Validate(profileOf(u))
	})
}

// RecordLogin sets the user's last login to now.
func (s *UserService) RecordLogin(ctx context.Context, id identifier.ID) (*models.User, error) {
	now := s.now().UTC()
	return s.modify(ctx, id, func(u *models.User) error {
		u.LastLogin = now
		return nil
	})
}

func (s *UserService) SetAttendanceStatus(ctx context.Context, id identifier.ID, status models.AttendanceStatus) (*models.User, error) {
	return s.modify(ctx, id, func(u *models.User) error {
		return u.Apply(models.UserUpdate{AttendanceStatus: &status})
	})
}

// modify loads, changes and stores one user inside a transaction.
func (s *UserService) modify(ctx context.Context, id identifier.ID, fn func(*models.User) error) (*models.User, error) {
	if _, err := s.sequence.Parse(id); err != nil {
		return nil, err
	}

	var user *models.User
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		u, err := repo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
		if err := repo.Update(ctx, u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}
