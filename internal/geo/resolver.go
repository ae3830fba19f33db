package geo

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rosoporto/weather-bot/internal/domain"
	"github.com/rosoporto/weather-bot/internal/metrics"
	"github.com/rosoporto/weather-bot/internal/store"
)

// DefaultDatasetURL is the ru-cities towns dataset.
const DefaultDatasetURL = "https://raw.githubusercontent.com/epogrebnyak/ru-cities/main/assets/towns.csv"

// ErrNotFound means the query matched nothing or the dataset is unavailable.
var ErrNotFound = errors.New("city not found")

// Resolver turns free-text city names into coordinates using the gazetteer.
// The dataset is downloaded on first use and kept in repo; a failed download
// is retried on the next lookup.
type Resolver struct {
	repo   store.CityRepo
	url    string
	http   *http.Client
	log    *zap.Logger
	mu     sync.Mutex
	loaded bool
}

// NewResolver creates a resolver. timeout bounds the dataset download.
func NewResolver(repo store.CityRepo, url string, timeout time.Duration, log *zap.Logger) *Resolver {
	if url == "" {
		url = DefaultDatasetURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Resolver{
		repo: repo,
		url:  url,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// Resolve returns the first dataset city whose name contains query, ignoring case.
func (r *Resolver) Resolve(ctx context.Context, query string) (domain.Location, error) {
	if err := r.ensureLoaded(ctx); err != nil {
		r.log.Error("gazetteer unavailable", zap.String("url", r.url), zap.Error(err))
		metrics.IncGazetteerLookup("error")
		return domain.Location{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	c, err := r.repo.FindFirst(ctx, query)
	if err != nil {
		if errors.Is(err, store.ErrNoCity) {
			metrics.IncGazetteerLookup("not_found")
			return domain.Location{}, ErrNotFound
		}
		r.log.Error("gazetteer lookup failed", zap.String("query", query), zap.Error(err))
		metrics.IncGazetteerLookup("error")
		return domain.Location{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	metrics.IncGazetteerLookup("found")
	return domain.Location{City: c.Name, Lat: c.Lat, Lon: c.Lon}, nil
}

func (r *Resolver) ensureLoaded(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.loaded {
		return nil
	}

	// A file-backed index may already hold a previous download.
	if n, err := r.repo.CountCities(ctx); err == nil && n > 0 {
		r.log.Info("gazetteer reused", zap.Int("cities", n))
		metrics.SetGazetteerCities(n)
		r.loaded = true
		return nil
	}

	cities, err := r.download(ctx)
	if err != nil {
		return err
	}
	if err := r.repo.ReplaceCities(ctx, cities); err != nil {
		return fmt.Errorf("store cities: %w", err)
	}
	r.log.Info("gazetteer loaded", zap.Int("cities", len(cities)))
	metrics.SetGazetteerCities(len(cities))
	r.loaded = true
	return nil
}

func (r *Resolver) download(ctx context.Context) ([]store.City, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: status %d", resp.StatusCode)
	}
	return ParseCSV(resp.Body)
}

// ParseCSV reads a gazetteer CSV. Columns are located by header name; "city",
// "lat" and "lon" are required, "population" is optional. Rows with
// unparsable coordinates are skipped.
func ParseCSV(src io.Reader) ([]store.City, error) {
	rd := csv.NewReader(src)
	rd.FieldsPerRecord = -1

	header, err := rd.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, need := range []string{"city", "lat", "lon"} {
		if _, ok := col[need]; !ok {
			return nil, fmt.Errorf("missing column %q", need)
		}
	}
	popIdx, hasPop := col["population"]

	var cities []store.City
	for {
		rec, err := rd.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		name := field(rec, col["city"])
		lat, errLat := strconv.ParseFloat(field(rec, col["lat"]), 64)
		lon, errLon := strconv.ParseFloat(field(rec, col["lon"]), 64)
		if name == "" || errLat != nil || errLon != nil {
			continue
		}
		c := store.City{Name: name, Lat: lat, Lon: lon}
		if hasPop {
			if p, err := strconv.ParseInt(field(rec, popIdx), 10, 64); err == nil {
				c.Population = &p
			}
		}
		cities = append(cities, c)
	}
	if len(cities) == 0 {
		return nil, errors.New("dataset is empty")
	}
	return cities, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
