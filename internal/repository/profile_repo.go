package repository

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KevDevLee/namens-tinder/internal/db"
	"github.com/KevDevLee/namens-tinder/internal/domain"
)

// ProfileRepository maps users to their parent role.
type ProfileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// Upsert writes the role for a user id, replacing any previous role.
func (r *ProfileRepository) Upsert(ctx context.Context, userID uint64, role domain.Role) error {
	profile := db.Profile{ID: userID, Role: role}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
		}).
		Create(&profile).Error
	return errors.Wrapf(err, "upsert profile %d", userID)
}

// GetByRole returns the profile holding role. Wraps gorm.ErrRecordNotFound
// when nobody has signed up with it yet.
func (r *ProfileRepository) GetByRole(ctx context.Context, role domain.Role) (db.Profile, error) {
	var p db.Profile
	err := r.db.WithContext(ctx).Where("role = ?", role).Take(&p).Error
	return p, errors.Wrapf(err, "profile for role %s", role)
}

func (r *ProfileRepository) Get(ctx context.Context, userID uint64) (db.Profile, error) {
	var p db.Profile
	err := r.db.WithContext(ctx).Take(&p, userID).Error
	return p, errors.Wrapf(err, "profile %d", userID)
}

// AccountRepository stores sign-in credentials.
type AccountRepository struct {
	db *gorm.DB
}

func NewAccountRepository(database *gorm.DB) *AccountRepository {
	return &AccountRepository{db: database}
}

// Create inserts the account and its profile in one transaction.
func (r *AccountRepository) Create(ctx context.Context, acc *db.Account) error {
	acc.Email = strings.ToLower(strings.TrimSpace(acc.Email))
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(acc).Error; err != nil {
			return err
		}
		return NewProfileRepository(tx).Upsert(ctx, acc.ID, acc.Role)
	})
	return errors.Wrapf(err, "create account %s", acc.Email)
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (db.Account, error) {
	var acc db.Account
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		Take(&acc).Error
	return acc, errors.Wrapf(err, "account %s", email)
}

func (r *AccountRepository) TouchLogin(ctx context.Context, id uint64, at time.Time) error {
	err := r.db.WithContext(ctx).Model(&db.Account{}).Where("id = ?", id).Update("last_login_at", at).Error
	return errors.Wrapf(err, "touch login %d", id)
}

// LegacyLikeRepository reads the pre-decisions likes table.
type LegacyLikeRepository struct {
	db *gorm.DB
}

func NewLegacyLikeRepository(database *gorm.DB) *LegacyLikeRepository {
	return &LegacyLikeRepository{db: database}
}

// List returns every legacy like in insertion order.
func (r *LegacyLikeRepository) List(ctx context.Context) ([]db.Like, error) {
	var rows []db.Like
	err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error
	return rows, errors.Wrap(err, "list legacy likes")
}
