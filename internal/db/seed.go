package db

import (
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/KevDevLee/namens-tinder/internal/domain"
	"github.com/KevDevLee/namens-tinder/internal/logger"
)

// SeedPassword is the password of both seeded parent accounts.
const SeedPassword = "password"

var seedNames = []struct {
	name   string
	gender domain.Gender
}{
	{"Anna", domain.Female}, {"Emma", domain.Female}, {"Mia", domain.Female},
	{"Sophia", domain.Female}, {"Lina", domain.Female}, {"Ella", domain.Female},
	{"Clara", domain.Female}, {"Frieda", domain.Female}, {"Ida", domain.Female},
	{"Lea", domain.Female}, {"Marie", domain.Female}, {"Jule", domain.Female},
	{"Noah", domain.Male}, {"Ben", domain.Male}, {"Paul", domain.Male},
	{"Leon", domain.Male}, {"Finn", domain.Male}, {"Elias", domain.Male},
	{"Felix", domain.Male}, {"Jonas", domain.Male}, {"Emil", domain.Male},
	{"Oskar", domain.Male}, {"Theo", domain.Male}, {"Lukas", domain.Male},
	{"Luca", domain.Unknown}, {"Kim", domain.Unknown},
}

// SeedTestData resets the database and populates it with demo data.
//
// Behavior:
//  1. Clears names, decisions, profiles, accounts and legacy likes.
//  2. Creates the demo name list.
//  3. Creates papa@example.com and mama@example.com (password SeedPassword)
//     with mirrored profiles.
//  4. Lets each parent decide on ~60% of the names; every third name papa
//     likes is liked by mama too, so matches show up immediately.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	// --- Fresh start ---
	for _, table := range []string{"decisions", "likes", "profiles", "accounts", "names"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	logger.Info("cleared existing data")

	names := make([]Name, 0, len(seedNames))
	for _, n := range seedNames {
		names = append(names, Name{Name: n.name, Gender: n.gender})
	}
	if err := db.Create(&names).Error; err != nil {
		return fmt.Errorf("failed to seed names: %w", err)
	}
	logger.Info("seeded names", "count", len(names))

	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	parents := map[domain.Role]*Account{}
	for _, role := range []domain.Role{domain.Papa, domain.Mama} {
		acc := &Account{
			Email:        fmt.Sprintf("%s@example.com", role),
			PasswordHash: string(hash),
			Role:         role,
		}
		if err := db.Create(acc).Error; err != nil {
			return fmt.Errorf("failed to seed account: %w", err)
		}
		profile := Profile{ID: acc.ID, Role: role}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
		}).Create(&profile).Error; err != nil {
			return fmt.Errorf("failed to seed profile: %w", err)
		}
		parents[role] = acc
	}

	kinds := domain.Decisions
	counter := 0
	for _, n := range names {
		if r.Intn(100) >= 60 {
			continue
		}
		papaKind := kinds[r.Intn(len(kinds))]
		mamaKind := kinds[r.Intn(len(kinds))]
		if papaKind == domain.Like {
			if counter%3 == 0 {
				mamaKind = domain.Like
			}
			counter++
		}
		rows := []Decision{
			{UserID: parents[domain.Papa].ID, NameID: n.ID, Decision: papaKind},
			{UserID: parents[domain.Mama].ID, NameID: n.ID, Decision: mamaKind},
		}
		if err := db.Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to seed decision: %w", err)
		}
	}

	logger.Info("seeding completed")
	return nil
}
