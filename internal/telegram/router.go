package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/rosoporto/weather-bot/internal/domain"
	"github.com/rosoporto/weather-bot/internal/metrics"
	"github.com/rosoporto/weather-bot/internal/scheduler"
	"github.com/rosoporto/weather-bot/internal/session"
	"github.com/rosoporto/weather-bot/internal/weather"
)

// Messenger is the part of *tgbotapi.BotAPI the router uses.
type Messenger interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// CityResolver turns free text into a location.
type CityResolver interface {
	Resolve(ctx context.Context, query string) (domain.Location, error)
}

// WeatherChecker confirms the provider serves a location.
type WeatherChecker interface {
	Current(ctx context.Context, lat, lon float64) (weather.Report, error)
}

// JobScheduler owns the per-chat daily jobs.
type JobScheduler interface {
	Schedule(chatID int64, at domain.Clock) scheduler.Job
	CancelJob(chatID int64, id string) bool
}

// Notifier sends an immediate report.
type Notifier interface {
	SendNow(ctx context.Context, chatID int64)
}

// Deps are the collaborators of a Router.
type Deps struct {
	Sessions    *session.Store
	Resolver    CityResolver
	Weather     WeatherChecker
	Scheduler   JobScheduler
	Notifier    Notifier
	QuickCities []string
}

type commandHandler func(r *Router, ctx context.Context, chatID int64)
type textHandler func(r *Router, ctx context.Context, chatID int64, text string)

// Router wires Telegram updates to handlers. Commands and free text are
// dispatched through tables; free text is routed by the chat's state.
type Router struct {
	bot         Messenger
	log         *zap.Logger
	sessions    *session.Store
	resolver    CityResolver
	weather     WeatherChecker
	sched       JobScheduler
	notifier    Notifier
	quickCities []string

	commands map[string]commandHandler
	states   map[domain.State]textHandler
}

// NewRouter creates a new Telegram router.
func NewRouter(bot Messenger, log *zap.Logger, deps Deps) *Router {
	return &Router{
		bot:         bot,
		log:         log,
		sessions:    deps.Sessions,
		resolver:    deps.Resolver,
		weather:     deps.Weather,
		sched:       deps.Scheduler,
		notifier:    deps.Notifier,
		quickCities: deps.QuickCities,
		// /cancel is registered with Telegram but intentionally absent here:
		// it goes through the generic text path.
		commands: map[string]commandHandler{
			"start":  (*Router).handleStart,
			"now":    (*Router).handleNow,
			"change": (*Router).handleChange,
			"reset":  (*Router).handleReset,
			"help":   (*Router).handleHelp,
		},
		states: map[domain.State]textHandler{
			domain.StateNew:                (*Router).handleNewChat,
			domain.StateWaitingForLocation: (*Router).handleCityText,
			domain.StateWaitingForTime:     (*Router).handleTimeText,
			domain.StateWaitingForChange:   (*Router).handleChangeChoice,
			domain.StateConfigured:         (*Router).handleConfiguredText,
		},
	}
}

// HandleUpdate routes a single update to appropriate handler.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.CallbackQuery != nil:
		metrics.IncUpdate("callback")
		r.handleCallback(ctx, upd.CallbackQuery)

	case upd.Message != nil && upd.Message.Chat != nil && upd.Message.Location != nil:
		metrics.IncUpdate("location")
		loc := upd.Message.Location
		r.handleLocation(ctx, upd.Message.Chat.ID, loc.Latitude, loc.Longitude)

	case upd.Message != nil && upd.Message.Chat != nil:
		metrics.IncUpdate("message")
		r.handleMessage(ctx, upd.Message.Chat.ID, strings.TrimSpace(upd.Message.Text))
	}
}

func (r *Router) handleMessage(ctx context.Context, chatID int64, text string) {
	if cmd, ok := parseCommand(text); ok {
		if h, found := r.commands[cmd]; found {
			r.log.Debug("command", zap.Int64("chatID", chatID), zap.String("cmd", cmd))
			h(r, ctx, chatID)
			return
		}
	}
	r.handleText(ctx, chatID, text)
}

func (r *Router) handleText(ctx context.Context, chatID int64, text string) {
	state := r.sessions.State(chatID)
	h, ok := r.states[state]
	if !ok {
		r.log.Warn("no handler for state", zap.Int64("chatID", chatID), zap.String("state", string(state)))
		return
	}
	h(r, ctx, chatID, text)
}

func (r *Router) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if err := r.answerCallback(cb.ID, ""); err != nil {
		r.log.Debug("answer callback failed", zap.Error(err))
	}
	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case data == cbCityOther:
		r.askLocation(chatID)

	case strings.HasPrefix(data, cbCityPrefix):
		if r.sessions.State(chatID) != domain.StateWaitingForLocation {
			r.sendText(chatID, startFirstText)
			return
		}
		r.setLocationByName(ctx, chatID, strings.TrimPrefix(data, cbCityPrefix))

	case strings.HasPrefix(data, cbTimePrefix):
		if r.sessions.State(chatID) != domain.StateWaitingForTime {
			r.sendText(chatID, startFirstText)
			return
		}
		r.setTime(chatID, strings.TrimPrefix(data, cbTimePrefix))

	default:
		// Unknown callback — ignore silently
	}
}

// parseCommand extracts "start" from "/start", "/start@my_bot" or "/start arg".
func parseCommand(text string) (string, bool) {
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	name := strings.Fields(text)[0][1:]
	if i := strings.IndexByte(name, '@'); i >= 0 {
		name = name[:i]
	}
	if name == "" {
		return "", false
	}
	return strings.ToLower(name), true
}
