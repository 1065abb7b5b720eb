package main

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vodeneev/surebetbot/internal/pkg/config"
	"github.com/Vodeneev/surebetbot/internal/pkg/telegram"
)

type telegramBot struct {
	api      *tgbotapi.BotAPI
	notifier *telegram.Notifier
}

func newTelegramBot(cfg config.TelegramConfig) (*telegramBot, error) {
	api, err := telegram.NewBot(cfg.BotToken)
	if err != nil {
		return nil, err
	}
	n := telegram.NewNotifier(api, telegram.Options{SendInterval: cfg.SendInterval})
	return &telegramBot{api: api, notifier: n}, nil
}
