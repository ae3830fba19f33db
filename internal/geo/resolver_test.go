package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rosoporto/weather-bot/internal/store"
)

const towns = "city,region_name,lat,lon,population\n" +
	"Абаза,Хакасия,52.65,90.08,17111\n" +
	"Москва,Москва,55.7522,37.6156,11514330\n" +
	"Московский,Москва,55.5991,37.3549,\n" +
	"Санкт-Петербург,Санкт-Петербург,59.9386,30.3141,4848742\n"

func newResolver(t *testing.T, h http.HandlerFunc) *Resolver {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	repo, err := store.OpenSQLite(context.Background(), store.MemoryPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return NewResolver(repo, srv.URL, time.Second, zap.NewNop())
}

func TestResolve_FirstCaseInsensitiveMatch(t *testing.T) {
	var hits atomic.Int32
	r := newResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(towns))
	})
	ctx := context.Background()

	loc, err := r.Resolve(ctx, "моск")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if loc.City != "Москва" || loc.Lat != 55.7522 || loc.Lon != 37.6156 {
		t.Fatalf("want Москва row, got %+v", loc)
	}

	loc, err = r.Resolve(ctx, "ПЕТЕРБУРГ")
	if err != nil || loc.City != "Санкт-Петербург" {
		t.Fatalf("want Санкт-Петербург, got %+v (%v)", loc, err)
	}

	if _, err := r.Resolve(ctx, "Лондон"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("dataset must be downloaded once, got %d downloads", n)
	}
}

func TestResolve_DownloadFailureIsNotFoundAndRetried(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	r := newResolver(t, func(w http.ResponseWriter, _ *http.Request) {
		if fail.Load() {
			http.Error(w, "boom", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(towns))
	})
	ctx := context.Background()

	if _, err := r.Resolve(ctx, "Москва"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound on download failure, got %v", err)
	}

	fail.Store(false)
	loc, err := r.Resolve(ctx, "Москва")
	if err != nil || loc.City != "Москва" {
		t.Fatalf("want recovery after failed download, got %+v (%v)", loc, err)
	}
}

func TestParseCSV_HeaderDriven(t *testing.T) {
	src := "\ufeffpopulation,lon,lat,city\n" +
		"100,37.6,55.7,Москва\n" +
		"x,bad,55.7,Сломанный\n" +
		",30.3,59.9,Санкт-Петербург\n"
	cities, err := ParseCSV(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cities) != 2 {
		t.Fatalf("want 2 rows, got %d", len(cities))
	}
	if cities[0].Name != "Москва" || cities[0].Lon != 37.6 || *cities[0].Population != 100 {
		t.Fatalf("unexpected first row: %+v", cities[0])
	}
	if cities[1].Population != nil {
		t.Fatalf("blank population must be nil")
	}
}

func TestParseCSV_MissingColumn(t *testing.T) {
	if _, err := ParseCSV(strings.NewReader("name,lat,lon\nX,1,2\n")); err == nil {
		t.Fatalf("expected error for missing city column")
	}
	if _, err := ParseCSV(strings.NewReader("city,lat,lon\n")); err == nil {
		t.Fatalf("expected error for empty dataset")
	}
}
