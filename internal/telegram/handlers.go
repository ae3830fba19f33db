package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/rosoporto/weather-bot/internal/domain"
)

// --- Generic helpers ---

func (r *Router) send(c tgbotapi.Chattable) {
	if _, err := r.bot.Send(c); err != nil {
		r.log.Warn("send failed", zap.Error(err))
	}
}

func (r *Router) sendText(chatID int64, text string) {
	r.send(tgbotapi.NewMessage(chatID, text))
}

func (r *Router) answerCallback(id, text string) error {
	_, err := r.bot.Request(tgbotapi.NewCallback(id, text))
	return err
}

// --- Prompts ---

func (r *Router) askCity(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, askCityText)
	msg.ReplyMarkup = cityKeyboard(r.quickCities)
	r.send(msg)
}

// askLocation (re)enters the location step and asks for a city or a shared location.
func (r *Router) askLocation(chatID int64) {
	r.sessions.Update(chatID, func(s *domain.Session) { s.State = domain.StateWaitingForLocation })
	msg := tgbotapi.NewMessage(chatID, askLocationText)
	msg.ReplyMarkup = locationKeyboard()
	r.send(msg)
}

func (r *Router) askTime(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = timeKeyboard()
	r.send(msg)
}

// cancelJob drops the job the chat's session points at, if any.
func (r *Router) cancelJob(chatID int64) {
	if sess, ok := r.sessions.Get(chatID); ok && sess.JobID != "" {
		r.sched.CancelJob(chatID, sess.JobID)
	}
}

// --- Commands ---

func (r *Router) handleStart(_ context.Context, chatID int64) {
	r.sendText(chatID, greetText)
	r.cancelJob(chatID)
	r.sessions.Reset(chatID)
	r.askCity(chatID)
}

func (r *Router) handleNow(ctx context.Context, chatID int64) {
	r.notifier.SendNow(ctx, chatID)
}

func (r *Router) handleChange(_ context.Context, chatID int64) {
	if _, ok := r.sessions.Get(chatID); !ok {
		r.sendText(chatID, startFirstText)
		return
	}
	r.sessions.Update(chatID, func(s *domain.Session) { s.State = domain.StateWaitingForChange })
	msg := tgbotapi.NewMessage(chatID, askChangeText)
	msg.ReplyMarkup = changeKeyboard()
	r.send(msg)
}

func (r *Router) handleReset(_ context.Context, chatID int64) {
	r.cancelJob(chatID)
	r.sessions.Delete(chatID)
	r.log.Info("session reset", zap.Int64("chatID", chatID))
	r.sendText(chatID, resetText)
	r.askLocation(chatID)
}

func (r *Router) handleHelp(_ context.Context, chatID int64) {
	r.sendText(chatID, helpText)
}

// --- Free text by state ---

func (r *Router) handleNewChat(_ context.Context, chatID int64, _ string) {
	r.askLocation(chatID)
}

func (r *Router) handleCityText(ctx context.Context, chatID int64, text string) {
	r.setLocationByName(ctx, chatID, text)
}

func (r *Router) handleTimeText(_ context.Context, chatID int64, text string) {
	r.setTime(chatID, text)
}

func (r *Router) handleChangeChoice(_ context.Context, chatID int64, text string) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case changeLocation:
		r.askLocation(chatID)
	case changeTime:
		r.sessions.Update(chatID, func(s *domain.Session) { s.State = domain.StateWaitingForTime })
		r.askTime(chatID, changeTimeText)
	default:
		r.sendText(chatID, badChangeText)
	}
}

func (r *Router) handleConfiguredText(_ context.Context, chatID int64, _ string) {
	r.sendText(chatID, configuredHint)
}

// --- Location flow ---

// setLocationByName stores a location only when the gazetteer knows the city
// and the weather provider serves its coordinates.
func (r *Router) setLocationByName(ctx context.Context, chatID int64, name string) {
	loc, err := r.resolver.Resolve(ctx, name)
	if err != nil {
		r.log.Debug("city not resolved", zap.Int64("chatID", chatID), zap.String("query", name), zap.Error(err))
		r.sendText(chatID, cityNotFoundText)
		return
	}
	if _, err := r.weather.Current(ctx, loc.Lat, loc.Lon); err != nil {
		r.log.Warn("provider rejected location", zap.Int64("chatID", chatID), zap.String("city", loc.City), zap.Error(err))
		r.sendText(chatID, cityNotFoundText)
		return
	}

	r.sessions.Update(chatID, func(s *domain.Session) {
		s.Location = &loc
		s.State = domain.StateWaitingForTime
	})
	r.log.Info("location set", zap.Int64("chatID", chatID), zap.String("city", loc.City))
	r.askTime(chatID, fmt.Sprintf(cityAcceptedFmt, loc.City))
}

func (r *Router) handleLocation(_ context.Context, chatID int64, lat, lon float64) {
	if r.sessions.State(chatID) != domain.StateWaitingForLocation {
		r.sendText(chatID, startFirstText)
		return
	}
	r.sessions.Update(chatID, func(s *domain.Session) {
		s.Location = &domain.Location{Lat: lat, Lon: lon}
		s.State = domain.StateWaitingForTime
	})
	r.log.Info("location shared", zap.Int64("chatID", chatID))
	r.askTime(chatID, coordsAcceptedTxt)
}

// --- Time flow ---

func (r *Router) setTime(chatID int64, text string) {
	at, err := domain.ParseClock(text)
	if err != nil {
		r.sendText(chatID, badTimeText)
		return
	}

	job := r.sched.Schedule(chatID, at)
	r.sessions.Update(chatID, func(s *domain.Session) {
		s.NotifyTime = &at
		s.State = domain.StateConfigured
		s.JobID = job.ID
	})

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf(configuredFmt, at))
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	r.send(msg)
}
