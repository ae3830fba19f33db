package telegram

import tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

// UI texts in Russian
const (
	greetText         = "Привет! Я бот погоды. Давайте настроим ваши уведомления."
	askCityText       = "Пожалуйста, выберите город:"
	askLocationText   = "Пожалуйста, отправьте свое местоположение или введите название города:"
	cityNotFoundText  = "❌ Не удалось найти город. Пожалуйста, введите корректное название."
	cityAcceptedFmt   = "Отлично! Город: %s.\n\nТеперь введите время для ежедневного уведомления (в формате ЧЧ:ММ):"
	coordsAcceptedTxt = "Отлично!\n\nТеперь введите время (24 ч формат) для ежедневного уведомления (в формате ЧЧ:ММ).\n\n" +
		"Пример: 07:45 (сообщение о погоде придет вам утром в 7:45)"
	changeTimeText  = "Введите новое время для ежедневного уведомления (в формате ЧЧ:ММ):"
	badTimeText     = "Неверный формат времени. Пожалуйста, введите время в формате ЧЧ:ММ."
	configuredFmt   = "Настройка завершена! Вы будете получать уведомления в %s ежедневно."
	askChangeText   = "Что вы хотите изменить? Выберите: location или time"
	badChangeText   = "Пожалуйста, выберите 'location' или 'time'"
	startFirstText  = "Пожалуйста, начните настройку с помощью /start"
	resetText       = "Настройки сброшены. Начните заново с /start."
	configuredHint  = "Уведомления уже настроены. /now — погода сейчас, /change — изменить настройки, /reset — начать заново."
	shareButtonText = "Отправить местоположение"
	otherCityText   = "Другой"
	helpText        = "🌦 Я присылаю прогноз погоды каждый день в выбранное время.\n\n" +
		"/start — настроить город и время\n" +
		"/now — погода прямо сейчас\n" +
		"/change — изменить город или время\n" +
		"/reset — сбросить настройки\n" +
		"/help — эта справка"
)

// Callback data
const (
	cbCityPrefix = "city:"
	cbCityOther  = "city:other"
	cbTimePrefix = "time:"
)

// Change-menu answers; matched case-insensitively.
const (
	changeLocation = "location"
	changeTime     = "time"
)

var quickTimes = []string{"08:00", "12:00", "18:00"}

// cityKeyboard lists quick-pick cities one per row, followed by "other".
func cityKeyboard(cities []string) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(cities)+1)
	for _, c := range cities {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(c, cbCityPrefix+c),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(otherCityText, cbCityOther),
	))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func timeKeyboard() tgbotapi.InlineKeyboardMarkup {
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(quickTimes))
	for _, t := range quickTimes {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(t, cbTimePrefix+t))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func locationKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonLocation(shareButtonText),
		),
	)
	kb.OneTimeKeyboard = true
	return kb
}

func changeKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(changeLocation),
			tgbotapi.NewKeyboardButton(changeTime),
		),
	)
	kb.OneTimeKeyboard = true
	return kb
}
