package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/KevDevLee/namens-tinder/internal/db"
	"github.com/KevDevLee/namens-tinder/internal/domain"
	"github.com/KevDevLee/namens-tinder/internal/repository"
)

type nameRow struct {
	Name   string
	Gender string
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// parseNamesCSV reads name,gender records. A leading header row and blank
// lines are skipped; skipped counts records without a name.
func parseNamesCSV(data []byte) (rows []nameRow, skipped int, err error) {
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM)))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, skipped, err
		}
		if first {
			first = false
			if strings.EqualFold(strings.TrimSpace(record[0]), "name") {
				continue
			}
		}

		row := nameRow{Name: strings.TrimSpace(record[0])}
		if len(record) > 1 {
			row.Gender = strings.TrimSpace(record[1])
		}
		if row.Name == "" {
			skipped++
			continue
		}
		rows = append(rows, row)
	}
	return rows, skipped, nil
}

type importResult struct {
	Added      int
	Duplicates int
	Invalid    int
}

// importNames inserts rows that are not on the list yet in any letter case.
// Rows with an unknown gender are counted as invalid and left out.
func importNames(ctx context.Context, names *repository.NameRepository, rows []nameRow) (importResult, error) {
	var res importResult
	for _, r := range rows {
		name := strings.TrimSpace(r.Name)
		g, err := domain.ParseGender(r.Gender)
		if name == "" || err != nil {
			res.Invalid++
			continue
		}

		_, exists, err := names.FindByNameFold(ctx, name)
		if err != nil {
			return res, err
		}
		if exists {
			res.Duplicates++
			continue
		}
		if err := names.Create(ctx, &db.Name{Name: name, Gender: g}); err != nil {
			return res, err
		}
		res.Added++
	}
	return res, nil
}

// legacyRoles maps the user column of the likes table to a parent role.
var legacyRoles = map[string]domain.Role{
	"me":  domain.Papa,
	"her": domain.Mama,
}

type migrateResult struct {
	Copied   int
	Existing int
	Unmapped int
}

// migrateLikes appends a like decision for every legacy like whose parent has
// a profile. Pairs that already have a decision keep it, so running twice
// copies nothing new.
func migrateLikes(
	ctx context.Context,
	log *slog.Logger,
	likes *repository.LegacyLikeRepository,
	profiles *repository.ProfileRepository,
	decisions *repository.DecisionRepository,
) (migrateResult, error) {
	var res migrateResult

	rows, err := likes.List(ctx)
	if err != nil {
		return res, err
	}

	ids := map[domain.Role]uint64{}
	for _, role := range []domain.Role{domain.Papa, domain.Mama} {
		p, err := profiles.GetByRole(ctx, role)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("no profile for role, its likes stay behind", "role", role)
			continue
		}
		if err != nil {
			return res, err
		}
		ids[role] = p.ID
	}

	for _, l := range rows {
		userID := ids[legacyRoles[strings.ToLower(strings.TrimSpace(l.User))]]
		if userID == 0 {
			res.Unmapped++
			continue
		}

		_, found, err := decisions.LatestForPair(ctx, userID, l.NameID)
		if err != nil {
			return res, err
		}
		if found {
			res.Existing++
			continue
		}
		if _, err := decisions.Append(ctx, userID, l.NameID, domain.Like); err != nil {
			return res, err
		}
		res.Copied++
	}
	return res, nil
}
