package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/joeblew999/plat-japanmap/internal/service"
)

var schema = []string{`
CREATE OR REPLACE TABLE prefectures (
	id       INTEGER PRIMARY KEY,
	name     VARCHAR NOT NULL,
	name_ja  VARCHAR NOT NULL,
	grp      VARCHAR,
	color    VARCHAR,
	area_km2 DOUBLE,
	min_lon  DOUBLE,
	min_lat  DOUBLE,
	max_lon  DOUBLE,
	max_lat  DOUBLE
)`, `
CREATE OR REPLACE TABLE region_groups (
	name        VARCHAR PRIMARY KEY,
	color       VARCHAR,
	prefectures INTEGER
)`}

// LoadCatalog replaces the prefectures and region_groups tables with the
// given rows.
func LoadCatalog(ctx context.Context, conn *sql.DB, regions []service.RegionInfo, groups []service.GroupInfo) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create catalog tables: %w", err)
		}
	}

	for _, r := range regions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO prefectures VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Name, r.NameJa, r.Group, r.Color, r.AreaKm2,
			r.BBox[0], r.BBox[1], r.BBox[2], r.BBox[3],
		)
		if err != nil {
			return fmt.Errorf("insert prefecture %d: %w", r.ID, err)
		}
	}
	for _, g := range groups {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO region_groups VALUES (?, ?, ?)`,
			g.Name, g.Color, len(g.Prefectures),
		); err != nil {
			return fmt.Errorf("insert group %s: %w", g.Name, err)
		}
	}

	return tx.Commit()
}
