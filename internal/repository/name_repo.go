package repository

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/KevDevLee/namens-tinder/internal/db"
	"github.com/KevDevLee/namens-tinder/internal/domain"
	"github.com/KevDevLee/namens-tinder/internal/utils/pagination"
)

// NameRepository provides data access methods for the shared name list.
type NameRepository struct {
	db *gorm.DB
}

func NewNameRepository(database *gorm.DB) *NameRepository {
	return &NameRepository{db: database}
}

// Create inserts a name; the caller checks for duplicates first.
func (r *NameRepository) Create(ctx context.Context, name *db.Name) error {
	if err := r.db.WithContext(ctx).Create(name).Error; err != nil {
		return errors.Wrapf(err, "insert name %q", name.Name)
	}
	return nil
}

// FindByNameFold looks a name up ignoring letter case, umlauts included.
func (r *NameRepository) FindByNameFold(ctx context.Context, name string) (db.Name, bool, error) {
	var row db.Name
	err := r.db.WithContext(ctx).
		Where("name_fold = ?", domain.FoldName(name)).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Name{}, false, nil
	}
	if err != nil {
		return db.Name{}, false, errors.Wrapf(err, "find name %q", name)
	}
	return row, true, nil
}

// ListAfter returns up to limit names with id > afterID in ascending id order.
// letter, when set, must be a single letter (see domain.ParseLetter) and keeps
// names starting with it in any case.
func (r *NameRepository) ListAfter(
	ctx context.Context,
	afterID uint64,
	filter domain.GenderFilter,
	letter string,
	limit int,
) ([]db.Name, error) {
	var rows []db.Name
	query := withGender(r.db.WithContext(ctx), filter).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit)
	l, err := domain.ParseLetter(letter)
	if err != nil {
		return nil, errors.Wrapf(err, "list names by letter %q", letter)
	}
	if l != "" {
		query = query.Where("name_fold LIKE ?", domain.FoldName(l)+"%")
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list names")
	}
	return rows, nil
}

// Page returns the names in [offset, offset+limit) ordered by name.
func (r *NameRepository) Page(ctx context.Context, filter domain.GenderFilter, offset, limit int) ([]db.Name, error) {
	var rows []db.Name
	err := withGender(r.db.WithContext(ctx), filter).
		Order("name ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "page names")
	}
	return rows, nil
}

// FetchAll reads the whole (filtered) name list page by page. On error the
// names read so far are returned with the error.
func (r *NameRepository) FetchAll(ctx context.Context, filter domain.GenderFilter) ([]db.Name, error) {
	return pagination.FetchAll(ctx, pagination.PageSize, func(ctx context.Context, offset, limit int) ([]db.Name, error) {
		return r.Page(ctx, filter, offset, limit)
	})
}

// ListByIDs resolves ids to names. Unknown ids are skipped.
func (r *NameRepository) ListByIDs(ctx context.Context, ids []uint64) ([]db.Name, error) {
	var all []db.Name
	for start := 0; start < len(ids); start += pagination.PageSize {
		end := min(start+pagination.PageSize, len(ids))
		var rows []db.Name
		if err := r.db.WithContext(ctx).Where("id IN ?", ids[start:end]).Find(&rows).Error; err != nil {
			return all, errors.Wrap(err, "list names by id")
		}
		all = append(all, rows...)
	}
	return all, nil
}

func (r *NameRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&db.Name{}).Count(&n).Error
	return n, errors.Wrap(err, "count names")
}

func withGender(q *gorm.DB, filter domain.GenderFilter) *gorm.DB {
	if filter == "" || filter == domain.FilterAll {
		return q
	}
	return q.Where("gender = ?", string(filter))
}
