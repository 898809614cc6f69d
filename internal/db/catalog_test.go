package db

import (
	"context"
	"testing"

	"github.com/joeblew999/plat-japanmap/internal/geometry"
	"github.com/joeblew999/plat-japanmap/internal/service"
)

func TestLoadCatalog(t *testing.T) {
	conn, err := Open(Config{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()

	regions := []service.RegionInfo{
		{Properties: geometry.Properties{ID: 13, Name: "Tokyo To", NameJa: "東京都"}, Group: "kanto", Color: "#fca5a5", AreaKm2: 2194},
		{Properties: geometry.Properties{ID: 1, Name: "Hokkai Do", NameJa: "北海道"}, Group: "hokkaido", Color: "#93c5fd", AreaKm2: 83424},
	}
	groups := []service.GroupInfo{
		{Name: "hokkaido", Color: "#93c5fd", Prefectures: []int{1}},
		{Name: "kanto", Color: "#fca5a5", Prefectures: []int{8, 9, 10, 11, 12, 13, 14}},
	}

	ctx := context.Background()
	if err := LoadCatalog(ctx, conn, regions, groups); err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}

	var name string
	if err := conn.QueryRowContext(ctx, `SELECT name_ja FROM prefectures ORDER BY area_km2 DESC LIMIT 1`).Scan(&name); err != nil {
		t.Fatal(err)
	}
	if name != "北海道" {
		t.Errorf("largest prefecture = %s, want 北海道", name)
	}

	var kanto int
	if err := conn.QueryRowContext(ctx, `SELECT prefectures FROM region_groups WHERE name = 'kanto'`).Scan(&kanto); err != nil {
		t.Fatal(err)
	}
	if kanto != 7 {
		t.Errorf("kanto count = %d, want 7", kanto)
	}

	// Reloading replaces the rows.
	if err := LoadCatalog(ctx, conn, regions[:1], nil); err != nil {
		t.Fatalf("reload: %v", err)
	}
	var n int
	conn.QueryRowContext(ctx, `SELECT count(*) FROM prefectures`).Scan(&n)
	if n != 1 {
		t.Errorf("after reload count = %d, want 1", n)
	}
}

func TestOpenOnDisk(t *testing.T) {
	dir := t.TempDir()
	conn, err := Open(Config{DataDir: dir, DBName: "test"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()
	if _, err := conn.Exec(`CREATE TABLE t (x INTEGER)`); err != nil {
		t.Errorf("create table: %v", err)
	}
}
