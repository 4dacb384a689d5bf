package db

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/KevDevLee/namens-tinder/internal/config"
	"github.com/KevDevLee/namens-tinder/internal/domain"
	"github.com/KevDevLee/namens-tinder/internal/logger"
)

func TestDialectorFor(t *testing.T) {
	for driver, name := range map[string]string{
		"":         "mysql",
		"mysql":    "mysql",
		"postgres": "postgres",
		"sqlite":   "sqlite",
	} {
		d, err := dialectorFor(driver, "dsn")
		require.NoError(t, err, driver)
		assert.Equal(t, name, d.Name(), driver)
	}

	_, err := dialectorFor("oracle", "dsn")
	assert.Error(t, err)
}

func TestParseGormLogLevel(t *testing.T) {
	lvl, err := parseGormLogLevel(" Info ")
	require.NoError(t, err)
	assert.Equal(t, gormlogger.Info, lvl)

	lvl, err = parseGormLogLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, defaultGormLogLevel, lvl)

	l, err := newGormLogger("")
	require.NoError(t, err)
	assert.Equal(t, defaultGormLogLevel, l.(*gormSlogLogger).logLevel)
}

func TestGormLogger_SlowQueryGoesToSlog(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(os.Stdout) })

	l, err := newGormLogger("warn")
	require.NoError(t, err)

	l.Trace(context.Background(), time.Now().Add(-time.Second), func() (string, int64) {
		return "SELECT 1", 1
	}, nil)
	assert.Contains(t, buf.String(), "gorm slow query")

	buf.Reset()
	l.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 1 }, nil)
	assert.Empty(t, buf.String())
}

func TestSeedTestData(t *testing.T) {
	cfg := &config.Config{}
	cfg.DB.Driver = "sqlite"
	cfg.DB.DSN = "file:seedtest?mode=memory&cache=shared"
	cfg.Log.GormLevel = "silent"

	database, err := NewDB(cfg)
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	// a second run starts from scratch
	require.NoError(t, SeedTestData(database))
	require.NoError(t, SeedTestData(database))

	var names int64
	require.NoError(t, database.Model(&Name{}).Count(&names).Error)
	assert.Equal(t, int64(len(seedNames)), names)

	var accounts []Account
	require.NoError(t, database.Order("id").Find(&accounts).Error)
	require.Len(t, accounts, 2)
	for _, acc := range accounts {
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(SeedPassword)))

		var p Profile
		require.NoError(t, database.Take(&p, acc.ID).Error)
		assert.Equal(t, acc.Role, p.Role)
	}
	assert.Equal(t, []domain.Role{domain.Papa, domain.Mama}, []domain.Role{accounts[0].Role, accounts[1].Role})

	var decisions []Decision
	require.NoError(t, database.Find(&decisions).Error)
	seen := map[[2]uint64]bool{}
	for _, d := range decisions {
		key := [2]uint64{d.UserID, d.NameID}
		assert.False(t, seen[key], "pair decided twice")
		seen[key] = true
		assert.True(t, d.Decision.Valid())
	}
}

func TestMigrate_BackfillsNameFold(t *testing.T) {
	database, err := gorm.Open(sqlite.Open("file:foldbackfill?mode=memory&cache=shared"),
		&gorm.Config{Logger: gormlogger.Discard})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.Exec(`CREATE TABLE names (
		id integer PRIMARY KEY AUTOINCREMENT,
		name varchar(128) NOT NULL,
		gender varchar(16) NOT NULL DEFAULT 'unknown',
		created_at datetime)`).Error)
	require.NoError(t, database.Exec("INSERT INTO names (name, gender) VALUES ('Änne', 'w'), ('Ben', 'm')").Error)

	require.NoError(t, Migrate(database))
	require.NoError(t, Migrate(database))

	var folds []string
	require.NoError(t, database.Model(&Name{}).Order("id").Pluck("name_fold", &folds).Error)
	assert.Equal(t, []string{domain.FoldName("Änne"), "ben"}, folds)

	assert.Error(t, database.Create(&Name{Name: "änne"}).Error)
}
