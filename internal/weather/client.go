package weather

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rosoporto/weather-bot/internal/metrics"
)

// ErrUnavailable is returned for any failed provider call: network error,
// non-200 status, non-200 "cod" or an unexpected payload.
var ErrUnavailable = errors.New("weather unavailable")

// Config configures the OpenWeatherMap client.
type Config struct {
	BaseURL string
	APIKey  string
	Lang    string
	Timeout time.Duration
}

// Client calls the OpenWeatherMap current-weather endpoint. One attempt per call.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

// NewClient creates a weather client. Timeout defaults to 10s.
func NewClient(cfg Config, log *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
}

type apiResponse struct {
	Cod  json.RawMessage `json:"cod"`
	Name string          `json:"name"`
	Main *struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind *struct {
		Speed json.Number `json:"speed"`
	} `json:"wind"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Visibility *float64 `json:"visibility"` // meters
}

// Current returns conditions for the given coordinates.
func (c *Client) Current(ctx context.Context, lat, lon float64) (Report, error) {
	start := time.Now()
	rep, err := c.current(ctx, lat, lon)
	metrics.ObserveWeatherRequest(time.Since(start), err == nil)
	if err != nil {
		c.log.Warn("weather request failed",
			zap.Float64("lat", lat), zap.Float64("lon", lon), zap.Error(err))
		return Report{}, err
	}
	return rep, nil
}

func (c *Client) current(ctx context.Context, lat, lon float64) (Report, error) {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("appid", c.cfg.APIKey)
	q.Set("units", "metric")
	if c.cfg.Lang != "" {
		q.Set("lang", c.cfg.Lang)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return Report{}, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Report{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var body apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Report{}, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	// "cod" is a number on success and sometimes a string on errors.
	if cod := string(bytes.Trim(body.Cod, `"`)); cod != "200" {
		return Report{}, fmt.Errorf("%w: cod %s", ErrUnavailable, cod)
	}
	if len(body.Weather) == 0 {
		return Report{}, fmt.Errorf("%w: empty weather block", ErrUnavailable)
	}
	if body.Main == nil {
		return Report{}, fmt.Errorf("%w: missing main block", ErrUnavailable)
	}
	if body.Wind == nil || body.Wind.Speed == "" {
		return Report{}, fmt.Errorf("%w: missing wind speed", ErrUnavailable)
	}
	if body.Visibility == nil {
		return Report{}, fmt.Errorf("%w: missing visibility", ErrUnavailable)
	}

	return Report{
		Place:        body.Name,
		Temp:         body.Main.Temp,
		FeelsLike:    body.Main.FeelsLike,
		Humidity:     body.Main.Humidity,
		WindSpeed:    body.Wind.Speed,
		VisibilityKM: *body.Visibility / 1000,
		Description:  capitalize(body.Weather[0].Description),
		Icon:         body.Weather[0].Icon,
	}, nil
}
