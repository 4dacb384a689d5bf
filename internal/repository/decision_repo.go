package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/KevDevLee/namens-tinder/internal/db"
	"github.com/KevDevLee/namens-tinder/internal/domain"
)

// DecisionRepository provides data access methods for the Decision model.
// It encapsulates all queries against the decisions log.
type DecisionRepository struct {
	db *gorm.DB
}

// NewDecisionRepository creates a new repository bound to the given DB connection.
func NewDecisionRepository(database *gorm.DB) *DecisionRepository {
	return &DecisionRepository{db: database}
}

// LatestPage returns one page of a user's decision rows, newest first.
//
// Behavior:
//   - Rows are ordered by id DESC, so the first row seen for a name is its
//     latest decision.
//   - offset/limit select the page; callers loop until a short page.
//
// Example:
//
//	repo.LatestPage(ctx, 7, 0, 1000) // newest 1000 rows of user 7
func (r *DecisionRepository) LatestPage(ctx context.Context, userID uint64, offset, limit int) ([]db.Decision, error) {
	var rows []db.Decision
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrapf(err, "list decisions of user %d", userID)
	}
	return rows, nil
}

// Upsert records a decision keyed by (user_id, name_id).
//
// Behavior:
//   - If the pair has rows → the newest one is updated with the new decision.
//   - If it doesn't → a new row is inserted.
//   - Older duplicate rows are left alone; they never win the latest-row read.
//
// Example:
//
//	repo.Upsert(ctx, 1, 2, domain.Like) // user 1 likes name 2
func (r *DecisionRepository) Upsert(ctx context.Context, userID, nameID uint64, decision domain.Decision) (db.Decision, error) {
	var row db.Decision
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND name_id = ?", userID, nameID).
			Order("id DESC").
			Take(&row).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			row = db.Decision{UserID: userID, NameID: nameID, Decision: decision}
			return tx.Create(&row).Error
		case err != nil:
			return err
		case row.Decision == decision:
			return nil
		}
		row.Decision = decision
		return tx.Model(&row).Update("decision", decision).Error
	})
	if err != nil {
		return db.Decision{}, errors.Wrapf(err, "upsert decision user=%d name=%d", userID, nameID)
	}
	return row, nil
}

// Append inserts a decision row without looking at existing rows for the pair.
// Only the legacy import uses it.
func (r *DecisionRepository) Append(ctx context.Context, userID, nameID uint64, decision domain.Decision) (db.Decision, error) {
	row := db.Decision{UserID: userID, NameID: nameID, Decision: decision}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return db.Decision{}, errors.Wrapf(err, "append decision user=%d name=%d", userID, nameID)
	}
	return row, nil
}

// LatestForPair returns the newest row for (user, name). found is false when
// the user never decided on the name.
func (r *DecisionRepository) LatestForPair(ctx context.Context, userID, nameID uint64) (row db.Decision, found bool, err error) {
	err = r.db.WithContext(ctx).
		Where("user_id = ? AND name_id = ?", userID, nameID).
		Order("id DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Decision{}, false, nil
	}
	if err != nil {
		return db.Decision{}, false, errors.Wrapf(err, "latest decision user=%d name=%d", userID, nameID)
	}
	return row, true, nil
}

// DeletePair removes every row of (user, name) and reports how many went.
func (r *DecisionRepository) DeletePair(ctx context.Context, userID, nameID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND name_id = ?", userID, nameID).
		Delete(&db.Decision{})
	if res.Error != nil {
		return 0, errors.Wrapf(res.Error, "delete decisions user=%d name=%d", userID, nameID)
	}
	return res.RowsAffected, nil
}

// DeleteByID removes a single row owned by userID and returns it.
// gorm.ErrRecordNotFound (wrapped) means the row does not exist for that user.
func (r *DecisionRepository) DeleteByID(ctx context.Context, userID, decisionID uint64) (db.Decision, error) {
	var row db.Decision
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", decisionID, userID).Take(&row).Error; err != nil {
			return err
		}
		return tx.Delete(&row).Error
	})
	if err != nil {
		return db.Decision{}, errors.Wrapf(err, "delete decision %d of user %d", decisionID, userID)
	}
	return row, nil
}
