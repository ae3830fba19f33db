package delivery

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rosoporto/weather-bot/internal/domain"
	"github.com/rosoporto/weather-bot/internal/metrics"
	"github.com/rosoporto/weather-bot/internal/weather"
)

// User-facing notices.
const (
	NotConfiguredText = "❌ Локация не настроена. Используйте /start для настройки."
	UnavailableText   = "❌ Не удалось получить информацию о погоде."
	TryLaterText      = "❌ Произошла ошибка. Попробуйте позже."
)

const stampLayout = "02.01.2006 15:04"

// Sender sends a plain text message to a chat.
type Sender interface {
	SendMessage(chatID int64, text string) error
}

// WeatherProvider returns current conditions for coordinates.
type WeatherProvider interface {
	Current(ctx context.Context, lat, lon float64) (weather.Report, error)
}

// Sessions is the read side of the session store.
type Sessions interface {
	Get(chatID int64) (domain.Session, bool)
}

type trigger string

const (
	triggerManual    trigger = "manual"
	triggerScheduled trigger = "scheduled"
)

// Service assembles and sends weather reports.
type Service struct {
	sessions Sessions
	weather  WeatherProvider
	sender   Sender
	log      *zap.Logger
	loc      *time.Location
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithLocation sets the zone of the "⏰ Время" stamp (default time.Local).
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a delivery service.
func New(sessions Sessions, wp WeatherProvider, sender Sender, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		sessions: sessions,
		weather:  wp,
		sender:   sender,
		log:      log,
		loc:      time.Local,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SendNow delivers a report on user request. An unconfigured chat gets a notice.
func (s *Service) SendNow(ctx context.Context, chatID int64) {
	s.deliver(ctx, chatID, triggerManual)
}

// DeliverScheduled delivers a report from the scheduler. An unconfigured chat
// (reset after scheduling) is skipped silently.
func (s *Service) DeliverScheduled(ctx context.Context, chatID int64) {
	s.deliver(ctx, chatID, triggerScheduled)
}

func (s *Service) deliver(ctx context.Context, chatID int64, trig trigger) {
	log := s.log.With(zap.Int64("chatID", chatID), zap.String("trigger", string(trig)))
	defer func() {
		if r := recover(); r != nil {
			log.Error("delivery panicked", zap.Any("panic", r), zap.Stack("stack"))
			metrics.IncDelivery(string(trig), "error")
			s.notify(log, chatID, TryLaterText)
		}
	}()

	sess, ok := s.sessions.Get(chatID)
	if !ok || sess.Location == nil {
		if trig == triggerScheduled {
			log.Debug("no location; scheduled delivery skipped")
			metrics.IncDelivery(string(trig), "skipped")
			return
		}
		metrics.IncDelivery(string(trig), "not_configured")
		s.notify(log, chatID, NotConfiguredText)
		return
	}
	loc := *sess.Location

	rep, err := s.weather.Current(ctx, loc.Lat, loc.Lon)
	if err != nil {
		log.Warn("weather unavailable", zap.Error(err))
		metrics.IncDelivery(string(trig), "unavailable")
		s.notify(log, chatID, UnavailableText)
		return
	}

	text := fmt.Sprintf("⏰ Время: %s\n\n%s",
		s.now().In(s.loc).Format(stampLayout),
		rep.Format(displayCity(loc, rep)),
	)
	if err := s.sender.SendMessage(chatID, text); err != nil {
		log.Error("send report failed", zap.Error(err))
		metrics.IncDelivery(string(trig), "error")
		s.notify(log, chatID, TryLaterText)
		return
	}
	metrics.IncDelivery(string(trig), "sent")
	log.Info("weather delivered", zap.String("city", loc.City))
}

// notify is best effort and never panics out of a delivery.
func (s *Service) notify(log *zap.Logger, chatID int64, text string) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("notify panicked", zap.Any("panic", r))
		}
	}()
	if err := s.sender.SendMessage(chatID, text); err != nil {
		log.Warn("notify failed", zap.Error(err))
	}
}

func displayCity(loc domain.Location, rep weather.Report) string {
	switch {
	case loc.City != "":
		return loc.City
	case rep.Place != "":
		return rep.Place
	default:
		return fmt.Sprintf("%.4f, %.4f", loc.Lat, loc.Lon)
	}
}
