package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var botCommands = []tgbotapi.BotCommand{
	{Command: "start", Description: "Настроить уведомления"},
	{Command: "now", Description: "Прогноз погоды"},
	{Command: "change", Description: "Изменить настройки"},
	{Command: "reset", Description: "Сбросить настройки"},
	{Command: "help", Description: "Помощь"},
	{Command: "cancel", Description: "Остановить бота"},
}

// RegisterCommands publishes the command menu shown by Telegram clients.
func RegisterCommands(bot Messenger) error {
	if _, err := bot.Request(tgbotapi.NewSetMyCommands(botCommands...)); err != nil {
		return fmt.Errorf("set my commands: %w", err)
	}
	return nil
}

// Sender sends plain text through the bot. It satisfies delivery.Sender.
type Sender struct {
	bot Messenger
}

func NewSender(bot Messenger) *Sender {
	return &Sender{bot: bot}
}

// SendMessage sends a plain text message to the given chat.
func (s *Sender) SendMessage(chatID int64, text string) error {
	_, err := s.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}
