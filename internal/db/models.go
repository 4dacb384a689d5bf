package db

import (
	"time"

	"gorm.io/gorm"

	"github.com/KevDevLee/namens-tinder/internal/domain"
)

// Name is a candidate baby name shared by both parents.
//
// NameFold holds domain.FoldName(Name); its unique index keeps the list free
// of names differing only in letter case.
type Name struct {
	ID        uint64        `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string        `gorm:"size:128;not null;index:idx_names_name" json:"name"`
	NameFold  string        `gorm:"size:128;not null;default:'';uniqueIndex:idx_names_name_fold" json:"-"`
	Gender    domain.Gender `gorm:"size:16;not null;default:unknown;index:idx_names_gender" json:"gender"`
	CreatedAt time.Time     `gorm:"autoCreateTime" json:"-"`
}

func (n *Name) BeforeSave(*gorm.DB) error {
	n.NameFold = domain.FoldName(n.Name)
	return nil
}

// Decision is one row of a parent's decision log.
//
// There is no unique key on (user_id, name_id): imported and legacy rows may
// repeat a pair. Readers take the row with the highest id.
//
// Indexes:
//   - idx_decisions_user_id(user_id, id DESC) serves the newest-first page reads.
//   - idx_decisions_user_name(user_id, name_id, id) serves pair lookups.
type Decision struct {
	ID        uint64          `gorm:"primaryKey;autoIncrement;index:idx_decisions_user_id,priority:2,sort:desc;index:idx_decisions_user_name,priority:3"`
	UserID    uint64          `gorm:"not null;index:idx_decisions_user_id,priority:1;index:idx_decisions_user_name,priority:1"`
	NameID    uint64          `gorm:"not null;index:idx_decisions_user_name,priority:2"`
	Decision  domain.Decision `gorm:"size:8;not null"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
	UpdatedAt time.Time       `gorm:"autoUpdateTime"`
}

// Profile mirrors the account role so the partner can be looked up by role.
type Profile struct {
	ID        uint64      `gorm:"primaryKey;autoIncrement:false"`
	Role      domain.Role `gorm:"size:8;not null;uniqueIndex:idx_profiles_role"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime"`
}

// Account holds sign-in credentials. Role is the account metadata copy.
type Account struct {
	ID           uint64      `gorm:"primaryKey;autoIncrement"`
	Email        string      `gorm:"uniqueIndex:idx_accounts_email;size:128;not null"`
	PasswordHash string      `gorm:"size:255;not null"`
	Role         domain.Role `gorm:"size:8;not null"`
	LastLoginAt  *time.Time
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

// Like is the pre-decisions table where "me"/"her" marked liked names.
type Like struct {
	ID     uint64 `gorm:"primaryKey;autoIncrement"`
	User   string `gorm:"column:user;size:8;not null"`
	NameID uint64 `gorm:"not null"`
}

// Models lists every table managed by AutoMigrate.
func Models() []any {
	return []any{&Name{}, &Decision{}, &Profile{}, &Account{}, &Like{}}
}
