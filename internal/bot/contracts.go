package bot

import (
	tg "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender is the part of tg.BotAPI the notifier uses.
type Sender interface {
	Send(c tg.Chattable) (tg.Message, error)
}
