package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openMem(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), MemoryPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func pop(v int64) *int64 { return &v }

var sample = []City{
	{Name: "Абакан", Lat: 53.72, Lon: 91.43, Population: pop(165183)},
	{Name: "Москва", Lat: 55.75, Lon: 37.61, Population: pop(11514330)},
	{Name: "Московский", Lat: 55.59, Lon: 37.35},
	{Name: "Санкт-Петербург", Lat: 59.93, Lon: 30.31, Population: pop(4848742)},
}

func TestFindFirst_CaseInsensitiveFirstMatch(t *testing.T) {
	ctx := context.Background()
	repo := openMem(t)
	if err := repo.ReplaceCities(ctx, sample); err != nil {
		t.Fatalf("replace: %v", err)
	}

	c, err := repo.FindFirst(ctx, "моск")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if c.Name != "Москва" || c.Lat != 55.75 || c.Lon != 37.61 {
		t.Fatalf("want first match Москва, got %+v", c)
	}
	if c.Population == nil || *c.Population != 11514330 {
		t.Fatalf("unexpected population: %v", c.Population)
	}

	c, err = repo.FindFirst(ctx, "  САНКТ ")
	if err != nil || c.Name != "Санкт-Петербург" {
		t.Fatalf("want Санкт-Петербург, got %+v, %v", c, err)
	}
}

func TestFindFirst_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := openMem(t)
	if err := repo.ReplaceCities(ctx, sample); err != nil {
		t.Fatalf("replace: %v", err)
	}
	for _, q := range []string{"Лондон", "", "   "} {
		if _, err := repo.FindFirst(ctx, q); !errors.Is(err, ErrNoCity) {
			t.Fatalf("%q: want ErrNoCity, got %v", q, err)
		}
	}
}

func TestFindFirst_NullPopulation(t *testing.T) {
	ctx := context.Background()
	repo := openMem(t)
	if err := repo.ReplaceCities(ctx, sample); err != nil {
		t.Fatalf("replace: %v", err)
	}
	c, err := repo.FindFirst(ctx, "московский")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if c.Population != nil {
		t.Fatalf("want nil population, got %v", *c.Population)
	}
}

func TestReplaceCities_Replaces(t *testing.T) {
	ctx := context.Background()
	repo := openMem(t)
	if err := repo.ReplaceCities(ctx, sample); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if err := repo.ReplaceCities(ctx, sample[:1]); err != nil {
		t.Fatalf("replace: %v", err)
	}
	n, err := repo.CountCities(ctx)
	if err != nil || n != 1 {
		t.Fatalf("want 1 row, got %d (%v)", n, err)
	}
}

func TestOpenSQLite_FileSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "geo", "cities.db")

	repo, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := repo.ReplaceCities(ctx, sample); err != nil {
		t.Fatalf("replace: %v", err)
	}
	_ = repo.Close()

	// Migrations must not re-run or wipe data.
	repo, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	n, err := repo.CountCities(ctx)
	if err != nil || n != len(sample) {
		t.Fatalf("want %d rows, got %d (%v)", len(sample), n, err)
	}
}
