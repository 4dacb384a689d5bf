package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
	"gorm.io/gorm"

	"github.com/KevDevLee/namens-tinder/internal/cache"
	"github.com/KevDevLee/namens-tinder/internal/config"
	"github.com/KevDevLee/namens-tinder/internal/db"
	"github.com/KevDevLee/namens-tinder/internal/logger"
	"github.com/KevDevLee/namens-tinder/internal/repository"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "namectl",
		Usage: "Maintenance commands for the name picker database",
		Commands: []*cli.Command{
			seedCommand(),
			addNameCommand(),
			importNamesCommand(),
			migrateLikesCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type env struct {
	cfg *config.Config
	db  *gorm.DB
	log *slog.Logger
}

func open() (env, error) {
	cfg := config.New()
	logger.InitFromConfig(cfg)

	database, err := db.NewDB(cfg)
	if err != nil {
		return env{}, err
	}
	return env{cfg: cfg, db: database, log: logger.L()}, nil
}

// dropStats clears the cached stats snapshot after a bulk write. Redis being
// down only costs a stale snapshot until its TTL runs out.
func (e env) dropStats(ctx context.Context) {
	rc := cache.NewRedisCache(e.cfg)
	defer rc.Close()
	if err := rc.InvalidateStats(ctx); err != nil {
		e.log.Warn("stats cache invalidate failed", "err", err)
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Reset the database and load demo names, accounts and decisions",
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := open()
			if err != nil {
				return err
			}
			if err := db.SeedTestData(e.db); err != nil {
				return err
			}
			e.dropStats(ctx)
			e.log.Info("seeding completed", "password", db.SeedPassword)
			return nil
		},
	}
}

func addNameCommand() *cli.Command {
	return &cli.Command{
		Name:  "add-name",
		Usage: "Add one name to the shared list",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "name", Required: true},
			&cli.StringFlag{Name: "gender", Usage: "m, w or empty"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := open()
			if err != nil {
				return err
			}
			res, err := importNames(ctx, repository.NewNameRepository(e.db), []nameRow{
				{Name: c.String("name"), Gender: c.String("gender")},
			})
			if err != nil {
				return err
			}
			if res.Added == 0 {
				return fmt.Errorf("%q is already on the list", c.String("name"))
			}
			e.dropStats(ctx)
			e.log.Info("name added", "name", c.String("name"))
			return nil
		},
	}
}

func importNamesCommand() *cli.Command {
	return &cli.Command{
		Name:  "import-names",
		Usage: "Import names from a CSV file with name,gender columns",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Required: true},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			data, err := os.ReadFile(c.String("file"))
			if err != nil {
				return err
			}
			rows, skipped, err := parseNamesCSV(data)
			if err != nil {
				return fmt.Errorf("parse %s: %w", c.String("file"), err)
			}

			e, err := open()
			if err != nil {
				return err
			}
			res, err := importNames(ctx, repository.NewNameRepository(e.db), rows)
			if err != nil {
				return err
			}
			e.dropStats(ctx)
			e.log.Info("import finished",
				"added", res.Added, "duplicates", res.Duplicates, "invalid", res.Invalid+skipped)
			return nil
		},
	}
}

func migrateLikesCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate-likes",
		Usage: "Copy legacy likes into the decisions table",
		Action: func(ctx context.Context, c *cli.Command) error {
			e, err := open()
			if err != nil {
				return err
			}
			if err := db.Migrate(e.db); err != nil {
				return err
			}
			res, err := migrateLikes(ctx, e.log,
				repository.NewLegacyLikeRepository(e.db),
				repository.NewProfileRepository(e.db),
				repository.NewDecisionRepository(e.db),
			)
			if err != nil {
				return err
			}
			e.dropStats(ctx)
			e.log.Info("legacy likes migrated",
				"copied", res.Copied, "already_decided", res.Existing, "unmapped", res.Unmapped)
			return nil
		},
	}
}
