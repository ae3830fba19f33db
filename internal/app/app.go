package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/rosoporto/weather-bot/internal/config"
	"github.com/rosoporto/weather-bot/internal/delivery"
	"github.com/rosoporto/weather-bot/internal/domain"
	"github.com/rosoporto/weather-bot/internal/geo"
	"github.com/rosoporto/weather-bot/internal/metrics"
	"github.com/rosoporto/weather-bot/internal/scheduler"
	"github.com/rosoporto/weather-bot/internal/session"
	"github.com/rosoporto/weather-bot/internal/store"
	"github.com/rosoporto/weather-bot/internal/telegram"
	"github.com/rosoporto/weather-bot/internal/weather"
)

type App struct {
	cfg     config.Config
	log     *zap.Logger
	loc     *time.Location
	bot     *tgbotapi.BotAPI
	httpSrv *http.Server
	repo    store.CityRepo
	sched   *scheduler.Scheduler
	router  *telegram.Router
}

func New(cfg config.Config, log *zap.Logger) (*App, error) {
	loc, err := domain.ValidateTZ(cfg.TZ)
	if err != nil {
		return nil, err
	}

	bot, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	bot.Debug = false

	metrics.MustRegister()

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      newOpsRouter(),
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	return &App{cfg: cfg, log: log, loc: loc, bot: bot, httpSrv: srv}, nil
}

// newOpsRouter serves liveness and Prometheus metrics.
func newOpsRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Handle("/metrics", promhttp.Handler())
	return r
}

func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting weather-bot",
		zap.String("bot", a.bot.Self.UserName),
		zap.String("http", a.cfg.HTTPAddr),
		zap.String("tz", a.loc.String()),
	)

	// Open SQLite and run migrations.
	repo, err := store.OpenSQLite(ctx, a.cfg.GazetteerDB)
	if err != nil {
		a.log.Error("open sqlite failed", zap.Error(err))
		return err
	}
	a.repo = repo
	a.log.Info("sqlite ready", zap.String("path", a.cfg.GazetteerDB))

	sessions := session.NewStore()
	resolver := geo.NewResolver(repo, a.cfg.GazetteerURL, a.cfg.HTTPTimeout, a.log)
	wc := weather.NewClient(weather.Config{
		BaseURL: a.cfg.WeatherAPIURL,
		APIKey:  a.cfg.WeatherAPIKey,
		Lang:    a.cfg.WeatherLang,
		Timeout: a.cfg.HTTPTimeout,
	}, a.log)

	deliv := delivery.New(sessions, wc, telegram.NewSender(a.bot), a.log, delivery.WithLocation(a.loc))
	a.sched = scheduler.New(a.log, deliv,
		scheduler.WithInterval(a.cfg.TickInterval),
		scheduler.WithLocation(a.loc),
	)

	if err := telegram.RegisterCommands(a.bot); err != nil {
		a.log.Warn("register commands failed", zap.Error(err))
	}

	a.router = telegram.NewRouter(a.bot, a.log, telegram.Deps{
		Sessions:    sessions,
		Resolver:    resolver,
		Weather:     wc,
		Scheduler:   a.sched,
		Notifier:    deliv,
		QuickCities: a.cfg.QuickCities,
	})

	go func() {
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("http server error", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.sched.Run(ctx)
	}()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updCh := a.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			a.log.Info("shutdown signal received")
			a.bot.StopReceivingUpdates()
			wg.Wait()

			shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := a.httpSrv.Shutdown(shCtx)
			cancel()

			if err != nil {
				a.log.Warn("http server shutdown error", zap.Error(err))
			}
			if a.repo != nil {
				_ = a.repo.Close()
			}
			return nil

		case upd := <-updCh:
			a.router.HandleUpdate(ctx, upd)
		}
	}
}
