package store

import (
	"context"
	"errors"
)

// ErrNoCity is returned when no gazetteer row matches a query.
var ErrNoCity = errors.New("city not found")

// CityRepo defines storage operations for the gazetteer index.
type CityRepo interface {
	ReplaceCities(ctx context.Context, cities []City) error
	FindFirst(ctx context.Context, query string) (*City, error)
	CountCities(ctx context.Context) (int, error)
	Close() error
}
