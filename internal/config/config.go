package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// MaxQuickCityBytes keeps "city:<name>" within Telegram's 64-byte callback data.
const MaxQuickCityBytes = 64 - len("city:")

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken      string        `envconfig:"TG_API_TOKEN" required:"true"`
	WeatherAPIKey string        `envconfig:"WEATHER_API_KEY" required:"true"`
	WeatherAPIURL string        `envconfig:"WEATHER_API_URL" default:"https://api.openweathermap.org/data/2.5/weather"`
	WeatherLang   string        `envconfig:"WEATHER_LANG" default:"ru"`
	GazetteerURL  string        `envconfig:"GAZETTEER_URL" default:"https://raw.githubusercontent.com/epogrebnyak/ru-cities/main/assets/towns.csv"`
	GazetteerDB   string        `envconfig:"GAZETTEER_DB_PATH" default:":memory:"`
	QuickCities   []string      `envconfig:"QUICK_CITIES" default:"Москва,Санкт-Петербург,Новосибирск,Екатеринбург"`
	TZ            string        `envconfig:"BOT_TZ"` // empty = process local
	TickInterval  time.Duration `envconfig:"TICK_INTERVAL" default:"1s"`
	HTTPTimeout   time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	Env           string        `envconfig:"APP_ENV" default:"development"` // development|production
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`      // debug|info|warn|error
	LogFile       string        `envconfig:"LOG_FILE"`
	HTTPAddr      string        `envconfig:"HTTP_ADDR" default:":8080"` // healthz + metrics
}

// Load reads an optional .env file, then environment variables into Config.
// Values from .env win over the process environment.
func Load() (Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path.
func LoadFrom(dotenv string) (Config, error) {
	var cfg Config
	if err := godotenv.Overload(dotenv); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load %s: %w", dotenv, err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	for _, c := range cfg.QuickCities {
		if c == "" || len(c) > MaxQuickCityBytes {
			return cfg, fmt.Errorf("QUICK_CITIES entry %q must be 1..%d bytes", c, MaxQuickCityBytes)
		}
	}
	if cfg.TickInterval <= 0 {
		return cfg, fmt.Errorf("TICK_INTERVAL must be positive, got %s", cfg.TickInterval)
	}
	return cfg, nil
}
