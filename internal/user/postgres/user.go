package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	userDatamodel "github.com/frahmantamala/smartsupply/internal/core/datamodel/user"
	"github.com/frahmantamala/smartsupply/internal/user"
)

const uniqueViolation = "23505"

type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository expects db to be opened with TranslateError enabled.
func NewUserRepository(db *gorm.DB) user.Directory {
	return &UserRepository{db: db}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("email = ?", user.NormalizeEmail(email)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return user.FromDataModel(&u), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return user.FromDataModel(&u), nil
}

func (r *UserRepository) Create(ctx context.Context, nu user.NewUser) (*user.User, error) {
	row := user.ToDataModel(nu)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, user.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user.FromDataModel(row), nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
